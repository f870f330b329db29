package storage

import (
	"log/slog"

	"github.com/tobind/quill/internal/events"
)

// UsageTracker subscribes to LLM call events and persists token usage.
type UsageTracker struct {
	store       *UsageStore
	unsubscribe func()
}

// NewUsageTracker wires a tracker onto the bus.
func NewUsageTracker(bus *events.Bus, store *UsageStore) *UsageTracker {
	ut := &UsageTracker{store: store}
	ut.unsubscribe = bus.Subscribe(ut.handleEvent, events.EventLLMCall)
	return ut
}

// Close unsubscribes the tracker from the event bus.
func (ut *UsageTracker) Close() {
	if ut.unsubscribe != nil {
		ut.unsubscribe()
	}
}

func (ut *UsageTracker) handleEvent(e events.Event) {
	input := intPayload(e, "input_tokens")
	output := intPayload(e, "output_tokens")
	if input == 0 && output == 0 {
		return
	}

	provider, _ := e.Payload["provider"].(string)
	err := ut.store.Record(UsageRecord{
		SessionID:    e.SessionID,
		Provider:     provider,
		InputTokens:  input,
		OutputTokens: output,
		Timestamp:    e.Timestamp,
	})
	if err != nil {
		slog.Error("usage tracker: record", "session_id", e.SessionID, "error", err)
	}
}

// intPayload reads an integer payload field whether it arrived as int or, after
// a JSON round trip, as float64.
func intPayload(e events.Event, key string) int {
	switch v := e.Payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
