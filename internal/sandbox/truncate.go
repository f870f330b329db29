package sandbox

import (
	"io"
	"sync"
)

// TruncationMarker is appended to output that exceeded its cap.
const TruncationMarker = "\n...[output truncated]"

// Truncate caps s at max bytes, appending the truncation marker. Truncating
// output already truncated at the same cap is a no-op: the marker is never
// stacked.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	if len(s) <= max+len(TruncationMarker) && hasMarker(s) {
		return s
	}
	return s[:max] + TruncationMarker
}

func hasMarker(s string) bool {
	return len(s) >= len(TruncationMarker) && s[len(s)-len(TruncationMarker):] == TruncationMarker
}

// capBuffer is an io.Writer keeping at most max bytes; the rest is dropped.
// It bounds memory regardless of how much a child process writes.
type capBuffer struct {
	mu        sync.Mutex
	max       int
	buf       []byte
	truncated bool
}

func newCapBuffer(max int) *capBuffer {
	return &capBuffer{max: max}
}

func (b *capBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	room := b.max - len(b.buf)
	if room > 0 {
		if len(p) <= room {
			b.buf = append(b.buf, p...)
		} else {
			b.buf = append(b.buf, p[:room]...)
			b.truncated = true
		}
	} else if len(p) > 0 {
		b.truncated = true
	}
	// Report full consumption so the child never sees a write error.
	return len(p), nil
}

// String returns the captured bytes, with the truncation marker appended when
// anything was dropped.
func (b *capBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.truncated {
		return string(b.buf) + TruncationMarker
	}
	return string(b.buf)
}

var _ io.Writer = (*capBuffer)(nil)
