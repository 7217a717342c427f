// Package memory provides an in-process event publisher that records
// everything it is handed. Tests assert against its event log.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/studyhallco/studyhall/pkg/eventstream"
)

// Publisher implements eventstream.Publisher by appending to a slice.
type Publisher struct {
	mu     sync.Mutex
	events []eventstream.Event
	closed bool
}

// NewPublisher creates an empty in-memory publisher.
func NewPublisher() *Publisher {
	return &Publisher{
		events: make([]eventstream.Event, 0),
	}
}

// Publish records the event in arrival order.
func (p *Publisher) Publish(_ context.Context, event eventstream.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	p.events = append(p.events, event)
	return nil
}

// Events returns a snapshot of everything published so far.
func (p *Publisher) Events() []eventstream.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]eventstream.Event, len(p.events))
	copy(out, p.events)
	return out
}

// Close marks the publisher closed; further publishes fail.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	return nil
}

var _ eventstream.Publisher = (*Publisher)(nil)
