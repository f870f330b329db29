package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tobind/quill/internal/sandbox"
)

// WriteFileTool writes content to a file inside the workspace. Targets outside
// the workspace or inside system directories are rejected before any write.
type WriteFileTool struct {
	workspace string
}

// NewWriteFileTool creates a new write_file tool.
func NewWriteFileTool(workspace string) *WriteFileTool {
	return &WriteFileTool{workspace: workspace}
}

func (t *WriteFileTool) Name() string       { return "write_file" }
func (t *WriteFileTool) Category() Category { return CategoryCoding }

func (t *WriteFileTool) Description() string {
	return "Write content to a file in the workspace. Creates parent directories by default. Returns the absolute path and bytes written."
}

func (t *WriteFileTool) InputSchema() map[string]any {
	return objectSchema(map[string]any{
		"path":        prop("string", "Path to the file to write, relative to the workspace"),
		"content":     prop("string", "Content to write to the file"),
		"create_dirs": prop("boolean", "Create parent directories if they don't exist (default: true)"),
	}, "path", "content")
}

type writeFileInput struct {
	Path       string `json:"path"`
	Content    string `json:"content"`
	CreateDirs *bool  `json:"create_dirs"`
}

type writeFileOutput struct {
	Path         string `json:"path"`
	BytesWritten int    `json:"bytes_written"`
}

// Execute writes content to the file.
func (t *WriteFileTool) Execute(_ context.Context, argsJSON string) (string, error) {
	var input writeFileInput
	if err := json.Unmarshal([]byte(argsJSON), &input); err != nil {
		return "", fmt.Errorf("write_file: parse input: %w", err)
	}
	if input.Path == "" {
		return "", fmt.Errorf("write_file: path is required")
	}

	absPath, err := sandbox.ValidatePath(input.Path, t.workspace)
	if err != nil {
		return "", fmt.Errorf("write_file: %w", err)
	}

	createDirs := true
	if input.CreateDirs != nil {
		createDirs = *input.CreateDirs
	}
	if createDirs {
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return "", fmt.Errorf("write_file: create dirs: %w", err)
		}
	}

	data := []byte(input.Content)
	if err := os.WriteFile(absPath, data, 0644); err != nil {
		return "", fmt.Errorf("write_file: %w", err)
	}

	result := writeFileOutput{
		Path:         absPath,
		BytesWritten: len(data),
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("write_file: marshal result: %w", err)
	}
	return string(out), nil
}

var _ Tool = (*WriteFileTool)(nil)
