package eventstream

import "context"

// NopPublisher drops every event. Used when no bus is configured.
type NopPublisher struct{}

// NewNopPublisher creates a publisher that discards everything.
func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

func (*NopPublisher) Publish(context.Context, Event) error { return nil }

func (*NopPublisher) Close() error { return nil }

var _ Publisher = (*NopPublisher)(nil)
