package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/tobind/quill/internal/sandbox"
)

// Registry manages loaded skills and runs them.
type Registry struct {
	skills map[string]*Skill
	runner *sandbox.Runner
}

// NewRegistry creates a new skill registry. Script skills execute under the
// given sandbox runner.
func NewRegistry(runner *sandbox.Runner) *Registry {
	return &Registry{
		skills: make(map[string]*Skill),
		runner: runner,
	}
}

// LoadDirs scans each directory recursively for skill.jsonc manifests and
// loads them. A manifest that fails to load is logged and skipped; a missing
// directory is not an error.
func (r *Registry) LoadDirs(dirs ...string) error {
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			slog.Debug("skills directory not found, skipping", "dir", dir)
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(dir), "**/skill.jsonc")
		if err != nil {
			return fmt.Errorf("scan skills dir %s: %w", dir, err)
		}
		sort.Strings(matches)

		for _, m := range matches {
			path := filepath.Join(dir, m)
			skill, err := LoadSkill(path)
			if err != nil {
				slog.Warn("failed to load skill", "path", path, "error", err)
				continue
			}
			if err := r.Register(skill); err != nil {
				slog.Warn("failed to register skill", "name", skill.Name, "error", err)
				continue
			}
		}
	}
	return nil
}

// Register adds a skill. Duplicate names are an error: unlike tools, two
// skills silently shadowing each other would change which script runs.
func (r *Registry) Register(skill *Skill) error {
	if _, exists := r.skills[skill.Name]; exists {
		return fmt.Errorf("skill %q already registered", skill.Name)
	}
	r.skills[skill.Name] = skill
	return nil
}

// Get returns the skill with the given name, or nil.
func (r *Registry) Get(name string) *Skill {
	return r.skills[name]
}

// All returns all registered skills sorted by name.
func (r *Registry) All() []*Skill {
	result := make([]*Skill, 0, len(r.skills))
	for _, s := range r.skills {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Names returns all registered skill names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.skills))
	for name := range r.skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Suggest returns up to three skill names close to the given one. A name is
// close when either string contains the other, case-insensitively.
func (r *Registry) Suggest(name string) []string {
	needle := strings.ToLower(name)
	var out []string
	for _, candidate := range r.Names() {
		lc := strings.ToLower(candidate)
		if strings.Contains(lc, needle) || strings.Contains(needle, lc) {
			out = append(out, candidate)
			if len(out) == 3 {
				break
			}
		}
	}
	return out
}

// scriptResult is the optional JSON envelope a skill script may print.
type scriptResult struct {
	Success *bool  `json:"success"`
	Output  string `json:"output"`
	Error   string `json:"error"`
}

// Execute runs the named skill and returns its output. Unknown names come
// back as NotFoundError with suggestions, non-runnable skills as
// UnavailableError. Content skills return their instruction text; script
// skills run under the sandbox.
func (r *Registry) Execute(ctx context.Context, name, argsJSON string) (string, error) {
	skill := r.Get(name)
	if skill == nil {
		return "", &NotFoundError{Name: name, Suggestions: r.Suggest(name)}
	}

	ok, reason := skill.Available()
	if !ok {
		return "", &UnavailableError{Name: name, Reason: reason}
	}

	if skill.Script == "" {
		return skill.Content, nil
	}

	res := r.runner.Run(ctx, skill.ScriptPath(), argsJSON)
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = res.Output
		}
		return "", fmt.Errorf("skill %q failed (exit %d): %s", name, res.ExitCode, msg)
	}

	return interpretScriptOutput(name, res.Output)
}

// interpretScriptOutput unwraps the optional result envelope. Anything that is
// not a well-formed envelope is returned as-is: scripts are free to print
// plain text.
func interpretScriptOutput(name, stdout string) (string, error) {
	trimmed := strings.TrimSpace(stdout)
	if !strings.HasPrefix(trimmed, "{") {
		return stdout, nil
	}

	var env scriptResult
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil || env.Success == nil {
		return stdout, nil
	}

	if !*env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Output
		}
		return "", fmt.Errorf("skill %q failed: %s", name, msg)
	}
	return env.Output, nil
}
