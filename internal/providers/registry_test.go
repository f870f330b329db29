package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/tobind/quill/internal/config"
)

// fakeProvider is a test double with switchable availability.
type fakeProvider struct {
	name      string
	available bool
	resp      *CompletionResponse
	err       error
}

func (f *fakeProvider) Name() string    { return f.name }
func (f *fakeProvider) Available() bool { return f.available }
func (f *fakeProvider) Complete(context.Context, *CompletionRequest) (*CompletionResponse, error) {
	return f.resp, f.err
}

func TestRegistry_DefaultPicksFirstAvailable(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeProvider{name: "a", available: false})
	r.Register(&fakeProvider{name: "b", available: true})
	r.Register(&fakeProvider{name: "c", available: true})

	d := r.Default()
	if d == nil || d.Name() != "b" {
		t.Fatalf("expected default b, got %v", d)
	}
}

func TestRegistry_DefaultNoneAvailable(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeProvider{name: "a"})

	if d := r.Default(); d != nil {
		t.Fatalf("expected nil default, got %s", d.Name())
	}
}

func TestRegistry_AvailabilityNotCached(t *testing.T) {
	r := NewRegistry()
	p := &fakeProvider{name: "a", available: false}
	r.Register(p)

	if d := r.Default(); d != nil {
		t.Fatal("expected no default while unavailable")
	}

	// Credentials appear between calls; the registry must observe it.
	p.available = true
	if d := r.Default(); d == nil || d.Name() != "a" {
		t.Fatal("expected a to become the default")
	}
}

func TestRegistry_RegisterOverwritesSilently(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeProvider{name: "a", available: false})
	r.Register(&fakeProvider{name: "b", available: true})
	r.Register(&fakeProvider{name: "a", available: true}) // same name, new adapter

	// Overwrite keeps the original registration position: a precedes b.
	if d := r.Default(); d == nil || d.Name() != "a" {
		t.Fatalf("expected overwritten a as default, got %v", d)
	}

	avail := r.Available()
	if len(avail) != 2 || avail[0].Name() != "a" || avail[1].Name() != "b" {
		t.Fatalf("unexpected available order: %v", avail)
	}
}

func TestRegistry_AvailableOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeProvider{name: "one", available: true})
	r.Register(&fakeProvider{name: "two", available: false})
	r.Register(&fakeProvider{name: "three", available: true})

	avail := r.Available()
	if len(avail) != 2 || avail[0].Name() != "one" || avail[1].Name() != "three" {
		t.Fatalf("unexpected available set: %v", avail)
	}
}

func TestNewRegistryFromConfig(t *testing.T) {
	r, err := NewRegistryFromConfig([]config.ProviderConfig{
		{Name: "claude", Driver: "anthropic", Model: "claude-sonnet-4-6"},
		{Name: "local", Driver: "openai", BaseURL: "http://localhost:11434/v1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.All()) != 2 {
		t.Fatalf("expected 2 adapters, got %d", len(r.All()))
	}
	if r.Get("claude") == nil || r.Get("local") == nil {
		t.Fatal("adapters not registered by name")
	}
}

func TestNewRegistryFromConfig_UnknownDriver(t *testing.T) {
	_, err := NewRegistryFromConfig([]config.ProviderConfig{
		{Name: "x", Driver: "mystery"},
	})
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestWrapError_Classification(t *testing.T) {
	cases := []struct {
		in   string
		want ErrorKind
	}{
		{"401 unauthorized", ErrAuth},
		{"429 too many requests", ErrRateLimit},
		{"prompt is too long: context length exceeded", ErrContextLength},
		{"model not found", ErrNotFound},
		{"dial tcp: connection refused", ErrConnection},
		{"something odd happened", ErrUnknown},
	}

	for _, tc := range cases {
		err := WrapError("test", errors.New(tc.in))
		var pe *Error
		if !errors.As(err, &pe) {
			t.Fatalf("expected *Error for %q", tc.in)
		}
		if pe.Kind != tc.want {
			t.Errorf("%q: expected kind %s, got %s", tc.in, tc.want, pe.Kind)
		}
	}

	if WrapError("test", nil) != nil {
		t.Error("expected nil for nil error")
	}
}
