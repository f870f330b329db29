// Package events provides an in-memory event bus using Go channels.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var ErrBusClosed = errors.New("event bus is closed")

// EventType represents the type of event.
type EventType string

const (
	// Agent loop
	EventLLMCall    EventType = "llm.call"
	EventTurnFailed EventType = "turn.failed"

	// Tools
	EventToolCall   EventType = "tool.call"
	EventToolResult EventType = "tool.result"
	EventToolDenied EventType = "tool.denied"

	// Skills
	EventSkillStarted   EventType = "skill.started"
	EventSkillCompleted EventType = "skill.completed"
)

// EventSource identifies the component that emitted an event.
type EventSource string

const (
	SourceAgent   EventSource = "agent"
	SourceTool    EventSource = "tool"
	SourceSkill   EventSource = "skill"
	SourceGateway EventSource = "gateway"
)

// Event represents an event in the system.
type Event struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id,omitempty"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    EventSource    `json:"source"`
	Payload   map[string]any `json:"payload"`
}

var eventIDCounter uint64

// New creates a new event with the current timestamp.
func New(eventType EventType, source EventSource, sessionID string, payload map[string]any) Event {
	seq := atomic.AddUint64(&eventIDCounter, 1)
	return Event{
		ID:        fmt.Sprintf("%d-%d", time.Now().UnixNano(), seq),
		SessionID: sessionID,
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    source,
		Payload:   payload,
	}
}

// Subscriber is a function that receives events.
type Subscriber func(Event)

type subscription struct {
	eventTypes []EventType
	handler    Subscriber
}

// Bus is an in-memory event bus. Publishing never blocks: when the buffer is
// full the event is dropped.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]*subscription
	nextID      int
	eventChan   chan Event
	history     []Event
	histMax     int
	histPos     int
	closed      bool
	done        chan struct{}
	wg          sync.WaitGroup
}

// NewBus creates a new event bus with the given channel buffer size.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	b := &Bus{
		subscribers: make(map[int]*subscription),
		eventChan:   make(chan Event, bufferSize),
		history:     make([]Event, 0, bufferSize),
		histMax:     bufferSize,
		done:        make(chan struct{}),
	}
	b.wg.Add(1)
	go b.dispatch()
	return b
}

func (b *Bus) dispatch() {
	defer b.wg.Done()
	for {
		select {
		case event := <-b.eventChan:
			b.record(event)
			b.notify(event)
		case <-b.done:
			// Drain what is already queued before exiting.
			for {
				select {
				case event := <-b.eventChan:
					b.record(event)
					b.notify(event)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) record(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.history) < b.histMax {
		b.history = append(b.history, event)
		return
	}
	b.history[b.histPos] = event
	b.histPos = (b.histPos + 1) % b.histMax
}

func (b *Bus) notify(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subscribers {
		if matches(sub, event) {
			sub.handler(event)
		}
	}
}

func matches(sub *subscription, event Event) bool {
	if len(sub.eventTypes) == 0 {
		return true
	}
	for _, t := range sub.eventTypes {
		if t == event.Type {
			return true
		}
	}
	return false
}

// Publish sends an event to the bus. Drops the event if the bus is closed or full.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return
	}

	select {
	case b.eventChan <- event:
	default:
	}
}

// PublishSync sends an event and blocks until accepted or the context is done.
func (b *Bus) PublishSync(ctx context.Context, event Event) error {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return ErrBusClosed
	}

	select {
	case b.eventChan <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers a handler for specific event types (all types when empty).
// Returns an unsubscribe function.
func (b *Bus) Subscribe(handler Subscriber, eventTypes ...EventType) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subscribers[id] = &subscription{eventTypes: eventTypes, handler: handler}

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
	}
}

// History returns up to limit most recent events, oldest first.
func (b *Bus) History(limit int) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ordered := make([]Event, 0, len(b.history))
	if len(b.history) == b.histMax {
		ordered = append(ordered, b.history[b.histPos:]...)
		ordered = append(ordered, b.history[:b.histPos]...)
	} else {
		ordered = append(ordered, b.history...)
	}

	if limit > 0 && len(ordered) > limit {
		ordered = ordered[len(ordered)-limit:]
	}
	return ordered
}

// Close stops the dispatch loop. Events published after Close are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	close(b.done)
	b.wg.Wait()
}
