package tools

import (
	"fmt"
	"sort"
)

// PolicyMode selects how the policy's sets are interpreted.
type PolicyMode string

const (
	// ModeAllowlist permits only tools matched by name or category.
	ModeAllowlist PolicyMode = "allowlist"
	// ModeDenylist permits everything except tools matched by name or category.
	ModeDenylist PolicyMode = "denylist"
)

// Policy is an immutable allow/deny decision over tools. A nil policy allows
// everything; build new policies instead of mutating a live one.
type Policy struct {
	mode       PolicyMode
	names      map[string]bool
	categories map[Category]bool
}

// NewPolicy builds a policy from a mode and the matched names and categories.
func NewPolicy(mode PolicyMode, names []string, categories []Category) (*Policy, error) {
	switch mode {
	case ModeAllowlist, ModeDenylist:
	default:
		return nil, fmt.Errorf("unknown policy mode %q", mode)
	}

	p := &Policy{
		mode:       mode,
		names:      make(map[string]bool, len(names)),
		categories: make(map[Category]bool, len(categories)),
	}
	for _, n := range names {
		p.names[n] = true
	}
	for _, c := range categories {
		p.categories[c] = true
	}
	return p, nil
}

// Mode returns the policy's mode.
func (p *Policy) Mode() PolicyMode { return p.mode }

// Allows reports whether a tool with the given name and category passes the
// policy. A tool matches when its name or its category is in the policy sets;
// allowlist mode permits matches, denylist mode rejects them.
func (p *Policy) Allows(name string, category Category) bool {
	if p == nil {
		return true
	}
	matched := p.names[name] || p.categories[category]
	if p.mode == ModeAllowlist {
		return matched
	}
	return !matched
}

// Names returns the sorted tool names the policy matches on.
func (p *Policy) Names() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.names))
	for n := range p.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
