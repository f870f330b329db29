package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tobind/quill/internal/config"
)

type fakeTool struct {
	name     string
	category Category
	result   string
}

func (f *fakeTool) Name() string                { return f.name }
func (f *fakeTool) Description() string         { return "fake " + f.name }
func (f *fakeTool) Category() Category          { return f.category }
func (f *fakeTool) InputSchema() map[string]any { return objectSchema(map[string]any{}) }
func (f *fakeTool) Execute(context.Context, string) (string, error) {
	return f.result, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "alpha", category: CategoryCoding})
	r.Register(&fakeTool{name: "beta", category: CategorySystem})

	if _, ok := r.Get("alpha"); !ok {
		t.Fatal("alpha not found")
	}
	if _, ok := r.Get("missing"); ok {
		t.Fatal("missing tool reported as found")
	}

	list := r.List()
	if len(list) != 2 || list[0].Name() != "alpha" || list[1].Name() != "beta" {
		t.Errorf("List() order wrong: %v", names(list))
	}
}

func TestRegistryDuplicateReplacesKeepingOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "alpha", category: CategoryCoding, result: "old"})
	r.Register(&fakeTool{name: "beta", category: CategorySystem})
	r.Register(&fakeTool{name: "alpha", category: CategoryCoding, result: "new"})

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("len(List()) = %d, want 2", len(list))
	}
	if list[0].Name() != "alpha" {
		t.Errorf("replacement lost position: %v", names(list))
	}
	got, _ := list[0].Execute(context.Background(), "{}")
	if got != "new" {
		t.Errorf("Execute = %q, want the replacement tool", got)
	}
}

func TestRegistryIsAllowed(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "read_file", category: CategoryCoding})
	r.Register(&fakeTool{name: "run_command", category: CategorySystem})

	// No policy: everything registered is allowed, unknown names never are.
	if !r.IsAllowed("read_file") {
		t.Error("no policy should allow read_file")
	}
	if r.IsAllowed("unknown") {
		t.Error("unknown tool must not be allowed")
	}

	p, err := NewPolicy(ModeAllowlist, []string{"read_file"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	r.SetPolicy(p)

	if !r.IsAllowed("read_file") {
		t.Error("allowlisted tool denied")
	}
	if r.IsAllowed("run_command") {
		t.Error("non-allowlisted tool permitted")
	}

	r.ClearPolicy()
	if !r.IsAllowed("run_command") {
		t.Error("ClearPolicy should restore allow-all")
	}
}

func TestRegistrySchemasFollowPolicy(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "read_file", category: CategoryCoding})
	r.Register(&fakeTool{name: "run_command", category: CategorySystem})

	p, err := NewPolicy(ModeDenylist, nil, []Category{CategorySystem})
	if err != nil {
		t.Fatal(err)
	}
	r.SetPolicy(p)

	schemas := r.Schemas()
	if len(schemas) != 1 {
		t.Fatalf("len(Schemas()) = %d, want 1", len(schemas))
	}
	if schemas[0].Name != "read_file" {
		t.Errorf("schema name = %q", schemas[0].Name)
	}
	if schemas[0].InputSchema == nil {
		t.Error("schema missing input_schema")
	}
}

func TestApplyPolicyConfigExpandsGroups(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "read_file", category: CategoryCoding})
	r.Register(&fakeTool{name: "write_file", category: CategoryCoding})
	r.Register(&fakeTool{name: "run_command", category: CategorySystem})
	r.DefineGroup("files", []string{"read_file", "write_file"})

	err := r.ApplyPolicyConfig(&config.PolicyConfig{
		Mode:   "allowlist",
		Groups: []string{"files"},
	})
	if err != nil {
		t.Fatalf("ApplyPolicyConfig: %v", err)
	}

	if !r.IsAllowed("read_file") || !r.IsAllowed("write_file") {
		t.Error("group members should be allowed")
	}
	if r.IsAllowed("run_command") {
		t.Error("tool outside the group permitted")
	}
}

func TestApplyPolicyConfigUnknownGroup(t *testing.T) {
	r := NewRegistry()
	err := r.ApplyPolicyConfig(&config.PolicyConfig{
		Mode:   "allowlist",
		Groups: []string{"nope"},
	})
	if err == nil {
		t.Fatal("expected error for unknown group")
	}
}

func TestLoadGroups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "groups.yaml")
	data := "groups:\n  files:\n    - read_file\n    - write_file\n  shell: [run_command]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadGroups(path); err != nil {
		t.Fatalf("LoadGroups: %v", err)
	}

	files, ok := r.Group("files")
	if !ok || len(files) != 2 {
		t.Errorf("group files = %v, %v", files, ok)
	}
	shell, ok := r.Group("shell")
	if !ok || len(shell) != 1 || shell[0] != "run_command" {
		t.Errorf("group shell = %v, %v", shell, ok)
	}
}

func names(ts []Tool) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name()
	}
	return out
}
