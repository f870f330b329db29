package tools

import "testing"

func TestPolicyAllows(t *testing.T) {
	tests := []struct {
		name       string
		mode       PolicyMode
		names      []string
		categories []Category
		tool       string
		category   Category
		want       bool
	}{
		{"allowlist name match", ModeAllowlist, []string{"read_file"}, nil, "read_file", CategoryCoding, true},
		{"allowlist name miss", ModeAllowlist, []string{"read_file"}, nil, "write_file", CategoryCoding, false},
		{"allowlist category match", ModeAllowlist, nil, []Category{CategoryCoding}, "write_file", CategoryCoding, true},
		{"allowlist category miss", ModeAllowlist, nil, []Category{CategorySystem}, "write_file", CategoryCoding, false},
		{"allowlist name or category", ModeAllowlist, []string{"run_command"}, []Category{CategoryCoding}, "run_command", CategorySystem, true},
		{"allowlist empty denies all", ModeAllowlist, nil, nil, "read_file", CategoryCoding, false},
		{"denylist name match", ModeDenylist, []string{"run_command"}, nil, "run_command", CategorySystem, false},
		{"denylist name miss", ModeDenylist, []string{"run_command"}, nil, "read_file", CategoryCoding, true},
		{"denylist category match", ModeDenylist, nil, []Category{CategorySystem}, "run_command", CategorySystem, false},
		{"denylist empty allows all", ModeDenylist, nil, nil, "anything", CategoryMeta, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPolicy(tt.mode, tt.names, tt.categories)
			if err != nil {
				t.Fatalf("NewPolicy: %v", err)
			}
			if got := p.Allows(tt.tool, tt.category); got != tt.want {
				t.Errorf("Allows(%q, %q) = %v, want %v", tt.tool, tt.category, got, tt.want)
			}
		})
	}
}

func TestPolicyNilAllowsEverything(t *testing.T) {
	var p *Policy
	if !p.Allows("anything", CategoryMeta) {
		t.Error("nil policy should allow all tools")
	}
}

func TestNewPolicyRejectsUnknownMode(t *testing.T) {
	if _, err := NewPolicy("blocklist", nil, nil); err == nil {
		t.Error("expected error for unknown mode")
	}
}
