package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// systemDirs are never valid mutation targets, whatever the workspace is.
var systemDirs = []string{
	"/etc", "/usr", "/bin", "/sbin", "/boot",
	"/dev", "/proc", "/sys", "/lib", "/lib64",
}

// PathError reports a rejected filesystem path.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %q rejected: %s", e.Path, e.Reason)
}

// ValidatePath checks that path, resolved against workspaceRoot, stays inside
// the workspace and outside system directories. Symlinks along the existing
// prefix of the path are resolved so a pre-existing parent symlink cannot
// smuggle a write outside the workspace; when no parent exists yet there is
// nothing to resolve and the literal path is judged. Returns the resolved
// absolute path on success.
func ValidatePath(path, workspaceRoot string) (string, error) {
	if path == "" {
		return "", &PathError{Path: path, Reason: "empty path"}
	}

	root := filepath.Clean(workspaceRoot)
	if !filepath.IsAbs(root) {
		abs, err := filepath.Abs(root)
		if err != nil {
			return "", fmt.Errorf("resolve workspace root: %w", err)
		}
		root = abs
	}
	if real, err := filepath.EvalSymlinks(root); err == nil {
		root = real
	}

	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(root, resolved)
	}
	resolved = filepath.Clean(resolved)

	// Resolve symlinks over the longest existing prefix.
	if real, err := evalSymlinksExisting(resolved); err == nil {
		resolved = real
	}

	for _, dir := range systemDirs {
		if isUnder(resolved, dir) {
			return "", &PathError{Path: path, Reason: fmt.Sprintf("inside system directory %s", dir)}
		}
	}

	if !isUnder(resolved, root) {
		return "", &PathError{Path: path, Reason: fmt.Sprintf("outside workspace %s", root)}
	}

	return resolved, nil
}

// isUnder returns true if child is equal to or a descendant of parent.
func isUnder(child, parent string) bool {
	if child == parent {
		return true
	}
	return strings.HasPrefix(child, parent+string(filepath.Separator))
}

// evalSymlinksExisting resolves symlinks for the longest existing prefix of a
// path. Components that do not exist yet are appended unresolved.
func evalSymlinksExisting(path string) (string, error) {
	real, err := filepath.EvalSymlinks(path)
	if err == nil {
		return real, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}

	dir := filepath.Dir(path)
	if dir == path {
		return "", err
	}

	resolvedDir, err := evalSymlinksExisting(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedDir, filepath.Base(path)), nil
}
