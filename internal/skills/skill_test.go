package skills

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "skill.jsonc")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSkill(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `{
		// a content-only skill
		"name": "greet",
		"description": "Says hello",
		"content": "Respond with a friendly greeting.",
	}`)

	s, err := LoadSkill(path)
	if err != nil {
		t.Fatalf("LoadSkill: %v", err)
	}
	if s.Name != "greet" {
		t.Errorf("name = %q", s.Name)
	}
	if s.Dir != dir {
		t.Errorf("dir = %q, want %q", s.Dir, dir)
	}
	if ok, _ := s.Available(); !ok {
		t.Error("skill should be available")
	}
}

func TestLoadSkillValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing name", `{"description":"d","content":"c"}`, "name is required"},
		{"missing description", `{"name":"x","content":"c"}`, "description is required"},
		{"no content or script", `{"name":"x","description":"d"}`, "content or script"},
		{"absolute script", `{"name":"x","description":"d","script":"/bin/sh"}`, "relative"},
		{"bad jsonc", `{"name": `, "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tt.body)
			_, err := LoadSkill(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestSkillAvailable(t *testing.T) {
	s := &Skill{Name: "x", Description: "d", Content: "c", Disabled: true, Reason: "deprecated"}
	ok, reason := s.Available()
	if ok || reason != "deprecated" {
		t.Errorf("Available() = %v, %q", ok, reason)
	}

	s = &Skill{Name: "x", Description: "d", Content: "c", Requires: []string{"definitely-not-a-binary-xyz"}}
	ok, reason = s.Available()
	if ok {
		t.Error("skill with missing binary should be unavailable")
	}
	if !strings.Contains(reason, "definitely-not-a-binary-xyz") {
		t.Errorf("reason = %q", reason)
	}

	s = &Skill{Name: "x", Description: "d", Content: "c", Requires: []string{"sh"}}
	if ok, reason := s.Available(); !ok {
		t.Errorf("sh should be found: %q", reason)
	}
}

func TestScriptPath(t *testing.T) {
	s := &Skill{Script: "run.sh", Dir: "/skills/greet"}
	if got := s.ScriptPath(); got != "/skills/greet/run.sh" {
		t.Errorf("ScriptPath = %q", got)
	}
	s = &Skill{Dir: "/skills/greet"}
	if got := s.ScriptPath(); got != "" {
		t.Errorf("content skill ScriptPath = %q", got)
	}
}
