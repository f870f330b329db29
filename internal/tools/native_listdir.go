package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const maxListEntries = 1000

// skipDirs are directory names never descended into during recursive listing.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".venv":        true,
	"__pycache__":  true,
}

// ListDirTool lists directory contents.
type ListDirTool struct {
	workspace string
}

// NewListDirTool creates a new list_dir tool.
func NewListDirTool(workspace string) *ListDirTool {
	return &ListDirTool{workspace: workspace}
}

func (t *ListDirTool) Name() string       { return "list_dir" }
func (t *ListDirTool) Category() Category { return CategoryCoding }

func (t *ListDirTool) Description() string {
	return "List directory contents. Supports recursive listing and glob pattern filtering."
}

func (t *ListDirTool) InputSchema() map[string]any {
	return objectSchema(map[string]any{
		"path":      prop("string", "Path to the directory to list (default: the workspace)"),
		"recursive": prop("boolean", "List recursively (default: false)"),
		"pattern":   prop("string", "Glob pattern to filter entries (e.g. \"*.go\")"),
	})
}

type listDirInput struct {
	Path      string `json:"path"`
	Recursive bool   `json:"recursive"`
	Pattern   string `json:"pattern"`
}

type listDirEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "file" or "dir"
	Size int64  `json:"size"`
}

type listDirOutput struct {
	Entries []listDirEntry `json:"entries"`
	Total   int            `json:"total"`
}

// Execute lists the directory contents.
func (t *ListDirTool) Execute(_ context.Context, argsJSON string) (string, error) {
	var input listDirInput
	if err := json.Unmarshal([]byte(argsJSON), &input); err != nil {
		return "", fmt.Errorf("list_dir: parse input: %w", err)
	}

	dir := input.Path
	if dir == "" {
		dir = t.workspace
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(t.workspace, dir)
	}

	var entries []listDirEntry
	if input.Recursive {
		entries = listDirRecursive(dir, input.Pattern)
	} else {
		var err error
		entries, err = listDirFlat(dir, input.Pattern)
		if err != nil {
			return "", fmt.Errorf("list_dir: %w", err)
		}
	}

	result := listDirOutput{
		Entries: entries,
		Total:   len(entries),
	}
	if result.Entries == nil {
		result.Entries = []listDirEntry{}
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("list_dir: marshal result: %w", err)
	}
	return string(out), nil
}

func listDirFlat(dir, pattern string) ([]listDirEntry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var entries []listDirEntry
	for _, de := range dirEntries {
		if pattern != "" {
			matched, _ := filepath.Match(pattern, de.Name())
			if !matched {
				continue
			}
		}

		entry := listDirEntry{
			Name: de.Name(),
			Path: filepath.Join(dir, de.Name()),
			Type: entryType(de),
		}
		if info, err := de.Info(); err == nil {
			entry.Size = info.Size()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func listDirRecursive(root, pattern string) []listDirEntry {
	var entries []listDirEntry
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		if path == root {
			return nil
		}
		if pattern != "" {
			matched, _ := filepath.Match(pattern, d.Name())
			if !matched {
				return nil
			}
		}

		entry := listDirEntry{
			Name: d.Name(),
			Path: path,
			Type: entryType(d),
		}
		if info, err := d.Info(); err == nil {
			entry.Size = info.Size()
		}
		entries = append(entries, entry)

		if len(entries) >= maxListEntries {
			return filepath.SkipAll
		}
		return nil
	})
	return entries
}

func entryType(d fs.DirEntry) string {
	if d.IsDir() {
		return "dir"
	}
	return "file"
}

var _ Tool = (*ListDirTool)(nil)
