package providers

import (
	"fmt"
	"strings"
)

// ErrorKind classifies provider failures.
type ErrorKind string

const (
	ErrAuth          ErrorKind = "auth"
	ErrRateLimit     ErrorKind = "rate_limit"
	ErrContextLength ErrorKind = "context_length"
	ErrNotFound      ErrorKind = "not_found"
	ErrConnection    ErrorKind = "connection"
	ErrUnknown       ErrorKind = "unknown"
)

// Error is a provider-level failure: the backend rejected the request or was
// unreachable. It is fatal to the current turn but never retried here.
type Error struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WrapError classifies a backend SDK error into a provider Error.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Provider: provider, Kind: classify(err), Err: err}
}

// classify maps common SDK error texts onto error kinds.
func classify(err error) ErrorKind {
	s := strings.ToLower(err.Error())

	switch {
	case containsAny(s, "401", "403", "unauthorized", "invalid api key", "api key", "forbidden", "authentication"):
		return ErrAuth
	case containsAny(s, "429", "rate limit", "quota", "too many requests", "overloaded"):
		return ErrRateLimit
	case containsAny(s, "context length", "too many tokens", "token limit", "prompt is too long"):
		return ErrContextLength
	case containsAny(s, "model not found", "404", "not found"):
		return ErrNotFound
	case containsAny(s, "connection", "eof", "timeout", "deadline", "dial", "refused"):
		return ErrConnection
	default:
		return ErrUnknown
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
