package pipeline

import "sync"

// Event represents a pipeline lifecycle event.
// Minimal and stable: name + step name and optional fields via key/values.
type Event struct {
	Name   string         `json:"name"`
	Step   string         `json:"step,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// EventPublisher receives events from the runner. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// MemoryPublisher stores events in-memory, used by the status API and tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
