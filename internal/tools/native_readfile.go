package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tobind/quill/internal/sandbox"
)

// ReadFileTool reads file contents with optional offset and limit. Paths are
// resolved against the workspace but reads are not confined to it.
type ReadFileTool struct {
	workspace string
}

// NewReadFileTool creates a new read_file tool.
func NewReadFileTool(workspace string) *ReadFileTool {
	return &ReadFileTool{workspace: workspace}
}

func (t *ReadFileTool) Name() string       { return "read_file" }
func (t *ReadFileTool) Category() Category { return CategoryCoding }

func (t *ReadFileTool) Description() string {
	return "Read the contents of a file. Returns the text content with optional line offset and limit."
}

func (t *ReadFileTool) InputSchema() map[string]any {
	return objectSchema(map[string]any{
		"path":   prop("string", "Path to the file to read"),
		"offset": prop("integer", "Line offset (0-based) to start reading from"),
		"limit":  prop("integer", "Maximum number of lines to return"),
	}, "path")
}

type readFileInput struct {
	Path   string `json:"path"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

type readFileOutput struct {
	Content   string `json:"content"`
	Lines     int    `json:"lines"`
	Truncated bool   `json:"truncated"`
}

// Execute reads the file and returns its contents as JSON.
func (t *ReadFileTool) Execute(_ context.Context, argsJSON string) (string, error) {
	var input readFileInput
	if err := json.Unmarshal([]byte(argsJSON), &input); err != nil {
		return "", fmt.Errorf("read_file: parse input: %w", err)
	}
	if input.Path == "" {
		return "", fmt.Errorf("read_file: path is required")
	}

	path := input.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(t.workspace, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read_file: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	totalLines := len(lines)
	truncated := false

	if input.Offset > 0 {
		if input.Offset >= len(lines) {
			lines = nil
		} else {
			lines = lines[input.Offset:]
		}
	}
	if input.Limit > 0 && input.Limit < len(lines) {
		lines = lines[:input.Limit]
		truncated = true
	}

	result := readFileOutput{
		Content:   sandbox.Truncate(strings.Join(lines, "\n"), sandbox.DefaultMaxOutput),
		Lines:     totalLines,
		Truncated: truncated,
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("read_file: marshal result: %w", err)
	}
	return string(out), nil
}

var _ Tool = (*ReadFileTool)(nil)
