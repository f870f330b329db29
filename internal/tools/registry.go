package tools

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tobind/quill/internal/config"
	"github.com/tobind/quill/internal/providers"
)

// Registry holds the registered tools, named groups, and the active policy.
// Registration happens at startup; policy swaps and lookups are safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]Tool
	groups map[string][]string

	policy atomic.Pointer[Policy]
}

// NewRegistry creates an empty registry with no policy (everything allowed).
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Tool),
		groups: make(map[string][]string),
	}
}

// Register adds a tool. Registering a name twice replaces the earlier tool in
// place, keeping its position, and logs the collision.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if _, exists := r.byName[name]; exists {
		slog.Warn("tool registered twice, replacing", "tool", name)
	} else {
		r.order = append(r.order, name)
	}
	r.byName[name] = t
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// List returns all registered tools in registration order, ignoring policy.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// SetPolicy atomically swaps the active policy. A nil policy allows all tools.
func (r *Registry) SetPolicy(p *Policy) {
	r.policy.Store(p)
}

// ClearPolicy removes the active policy.
func (r *Registry) ClearPolicy() {
	r.policy.Store(nil)
}

// IsAllowed reports whether the named tool passes the active policy. Unknown
// tools are never allowed.
func (r *Registry) IsAllowed(name string) bool {
	t, ok := r.Get(name)
	if !ok {
		return false
	}
	return r.policy.Load().Allows(t.Name(), t.Category())
}

// Allowed returns the tools passing the active policy, in registration order.
func (r *Registry) Allowed() []Tool {
	p := r.policy.Load()
	var out []Tool
	for _, t := range r.List() {
		if p.Allows(t.Name(), t.Category()) {
			out = append(out, t)
		}
	}
	return out
}

// Schemas returns provider-facing schemas for the allowed tools. This is what
// a completion request advertises to the model.
func (r *Registry) Schemas() []providers.ToolSchema {
	allowed := r.Allowed()
	out := make([]providers.ToolSchema, 0, len(allowed))
	for _, t := range allowed {
		out = append(out, providers.ToolSchema{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	return out
}

// DefineGroup names a set of tools for use in policies. Members that are not
// registered are kept: groups may be defined before all tools are.
func (r *Registry) DefineGroup(name string, members []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[name] = append([]string(nil), members...)
}

// Group returns the members of a named group.
func (r *Registry) Group(name string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members, ok := r.groups[name]
	return members, ok
}

// ApplyPolicyConfig builds and installs a policy from configuration, expanding
// group references into tool names. An unknown group is an error: a policy
// silently missing tools it meant to name is worse than failing at startup.
func (r *Registry) ApplyPolicyConfig(cfg *config.PolicyConfig) error {
	if cfg == nil {
		r.ClearPolicy()
		return nil
	}

	names := append([]string(nil), cfg.Tools...)
	for _, g := range cfg.Groups {
		members, ok := r.Group(g)
		if !ok {
			return fmt.Errorf("policy references unknown tool group %q", g)
		}
		names = append(names, members...)
	}

	categories := make([]Category, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		categories = append(categories, Category(c))
	}

	p, err := NewPolicy(PolicyMode(cfg.Mode), names, categories)
	if err != nil {
		return err
	}
	r.SetPolicy(p)
	return nil
}
