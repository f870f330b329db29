package providers

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tobind/quill/internal/config"
)

// Registry holds provider adapters in registration order. Availability is
// re-evaluated on every query; nothing is cached between calls.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Provider
	order    []string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Provider)}
}

// NewRegistryFromConfig builds adapters for each configured provider, in
// config order. Unknown drivers are an error.
func NewRegistryFromConfig(cfgs []config.ProviderConfig) (*Registry, error) {
	r := NewRegistry()
	for _, pc := range cfgs {
		p, err := newProvider(pc)
		if err != nil {
			return nil, err
		}
		r.Register(p)
	}
	return r, nil
}

func newProvider(cfg config.ProviderConfig) (Provider, error) {
	switch strings.ToLower(cfg.Driver) {
	case "anthropic":
		return NewAnthropic(cfg), nil
	case "openai":
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("provider %q: unknown driver %q", cfg.Name, cfg.Driver)
	}
}

// Register adds an adapter keyed by its name, silently overwriting any
// previous adapter with the same name. Its original position in registration
// order is kept on overwrite.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[p.Name()]; !exists {
		r.order = append(r.order, p.Name())
	}
	r.adapters[p.Name()] = p
}

// Get returns the named adapter, or nil.
func (r *Registry) Get(name string) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adapters[name]
}

// Default returns the first registered adapter whose credentials are present,
// or nil if none qualifies.
func (r *Registry) Default() Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		if p := r.adapters[name]; p.Available() {
			return p
		}
	}
	return nil
}

// Available returns all currently-available adapters in registration order.
func (r *Registry) Available() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Provider
	for _, name := range r.order {
		if p := r.adapters[name]; p.Available() {
			out = append(out, p)
		}
	}
	return out
}

// All returns every registered adapter in registration order.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.adapters[name])
	}
	return out
}
