package shared

import "context"

// EventHandler reacts to delivered events. Handlers see envelopes rather
// than typed events because the producer may be another service.
type EventHandler interface {
	Handle(ctx context.Context, envelope *Envelope) error
	// EventTypes lists the types the handler wants; empty means all of them
	EventTypes() []string
}

// EventPublisher hands events to the message broker
type EventPublisher interface {
	// Publish sends events in the given order
	Publish(ctx context.Context, events ...DomainEvent) error
}
