// Package skills loads declarative skill definitions from disk and executes
// them, either as instruction content handed back to the model or as scripts
// run under the process sandbox.
package skills

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// Skill is one declarative skill loaded from a skill.jsonc manifest.
type Skill struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Content     string   `json:"content,omitempty"`  // instruction text returned to the model
	Script      string   `json:"script,omitempty"`   // executable path, relative to the manifest
	Disabled    bool     `json:"disabled,omitempty"`
	Reason      string   `json:"reason,omitempty"`   // shown when disabled
	Requires    []string `json:"requires,omitempty"` // binaries that must be on PATH

	// Dir is the manifest's directory, set at load time.
	Dir string `json:"-"`
}

// LoadSkill reads a JSONC skill manifest from disk.
func LoadSkill(path string) (*Skill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skill %s: %w", path, err)
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse skill %s: %w", path, err)
	}

	var s Skill
	if err := json.Unmarshal(std, &s); err != nil {
		return nil, fmt.Errorf("parse skill %s: %w", path, err)
	}
	s.Dir = filepath.Dir(path)

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validate skill %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks the manifest for consistency.
func (s *Skill) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("skill name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("skill %q: description is required", s.Name)
	}
	if s.Content == "" && s.Script == "" {
		return fmt.Errorf("skill %q: content or script is required", s.Name)
	}
	if s.Script != "" && filepath.IsAbs(s.Script) {
		return fmt.Errorf("skill %q: script path must be relative to the manifest", s.Name)
	}
	return nil
}

// ScriptPath returns the script's absolute path, or "" for content skills.
func (s *Skill) ScriptPath() string {
	if s.Script == "" {
		return ""
	}
	return filepath.Join(s.Dir, s.Script)
}

// Available reports whether the skill can run right now. Disabled skills and
// skills with missing required binaries are unavailable; the reason says why.
func (s *Skill) Available() (bool, string) {
	if s.Disabled {
		reason := s.Reason
		if reason == "" {
			reason = "disabled"
		}
		return false, reason
	}

	var missing []string
	for _, bin := range s.Requires {
		if _, err := exec.LookPath(bin); err != nil {
			missing = append(missing, bin)
		}
	}
	if len(missing) > 0 {
		return false, fmt.Sprintf("missing required binaries: %s", strings.Join(missing, ", "))
	}
	return true, ""
}
