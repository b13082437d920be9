package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Envelope is the wire representation of a domain event on the broker
type Envelope struct {
	EventID       string          `json:"eventId"`
	AggregateID   string          `json:"aggregateId"`
	AggregateType string          `json:"aggregateType"`
	EventType     string          `json:"eventType"`
	TenantID      string          `json:"tenantId,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Metadata      EventMetadata   `json:"metadata"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a domain event for transport
func NewEnvelope(event DomainEvent) (*Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event.EventType(), err)
	}

	env := &Envelope{
		EventID:       event.EventID().String(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		EventType:     event.EventType(),
		TenantID:      event.TenantID(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
	}
	if m := event.Metadata(); m != nil {
		env.Metadata = *m
	}
	return env, nil
}

// Marshal encodes the envelope as JSON
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// DecodePayload unmarshals the event-specific payload into v
func (e *Envelope) DecodePayload(v any) error {
	if len(e.Payload) == 0 {
		return errors.New("envelope has no payload")
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.EventType, err)
	}
	return nil
}

// DecodeEnvelope parses a serialized envelope and checks its required header fields
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.EventID == "" || env.EventType == "" || env.AggregateID == "" {
		return nil, errors.New("decode envelope: missing eventId, eventType or aggregateId")
	}
	return &env, nil
}
