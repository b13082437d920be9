package shared

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleEvent struct {
	BaseDomainEvent
	Note string `json:"note"`
}

func (e *sampleEvent) WithMetadata(m EventMetadata) DomainEvent {
	c := *e
	c.BaseDomainEvent = e.BaseDomainEvent.CopyWithMetadata(m)
	return &c
}

type sampleAggregate struct {
	TenantAggregateRoot
}

func TestBaseAggregateRoot_EventBuffer(t *testing.T) {
	agg := &sampleAggregate{TenantAggregateRoot: NewTenantAggregateRoot("acme")}
	assert.True(t, agg.IsNew())
	assert.Equal(t, "acme", agg.GetTenantID())

	e1 := &sampleEvent{BaseDomainEvent: NewBaseDomainEvent("Sample", "Sample", agg.ID, "acme"), Note: "one"}
	e2 := &sampleEvent{BaseDomainEvent: NewBaseDomainEvent("Sample", "Sample", agg.ID, "acme"), Note: "two"}
	agg.AddDomainEvent(e1)
	agg.AddDomainEvent(e2)

	snapshot := agg.GetDomainEvents()
	agg.ClearDomainEvents()

	require.Len(t, snapshot, 2)
	assert.Same(t, e1, snapshot[0])
	assert.Same(t, e2, snapshot[1])
	assert.False(t, agg.HasPendingEvents())
	assert.Nil(t, agg.GetDomainEvents())
}

func TestBaseDomainEvent_CopyWithMetadata(t *testing.T) {
	original := &sampleEvent{BaseDomainEvent: NewBaseDomainEvent("Sample", "Sample", "agg-1", "acme"), Note: "x"}

	enriched := original.WithMetadata(EventMetadata{CorrelationID: "corr-1", UserID: "u-1"})

	assert.Nil(t, original.Metadata(), "original must not be mutated")
	require.NotNil(t, enriched.Metadata())
	assert.Equal(t, "corr-1", enriched.Metadata().CorrelationID)
	assert.Equal(t, original.EventID(), enriched.EventID())
	assert.Equal(t, original.OccurredAt(), enriched.OccurredAt())
	assert.Equal(t, "x", enriched.(*sampleEvent).Note)
}

func TestEnvelope_RoundTrip(t *testing.T) {
	evt := &sampleEvent{BaseDomainEvent: NewBaseDomainEvent("Sample", "Sample", "agg-1", "acme"), Note: "hello"}
	enriched := evt.WithMetadata(EventMetadata{CorrelationID: "c", CausationID: "k"})

	env, err := NewEnvelope(enriched)
	require.NoError(t, err)
	assert.JSONEq(t, `{"note":"hello"}`, string(env.Payload))

	data, err := env.Marshal()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"eventId", "aggregateId", "aggregateType", "eventType", "occurredAt", "metadata", "payload"} {
		assert.Contains(t, raw, key)
	}

	decoded, err := DecodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, evt.EventID().String(), decoded.EventID)
	assert.Equal(t, "agg-1", decoded.AggregateID)
	assert.Equal(t, "acme", decoded.TenantID)
	assert.Equal(t, "c", decoded.Metadata.CorrelationID)
	assert.Equal(t, "k", decoded.Metadata.CausationID)

	var payload struct {
		Note string `json:"note"`
	}
	require.NoError(t, decoded.DecodePayload(&payload))
	assert.Equal(t, "hello", payload.Note)
}

func TestDecodeEnvelope_RejectsIncompleteHeader(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{"eventType":"X"}`))
	assert.Error(t, err)

	_, err = DecodeEnvelope([]byte(`not json`))
	assert.Error(t, err)
}

func TestErrors(t *testing.T) {
	t.Run("domain errors match by code", func(t *testing.T) {
		err := SchemaNotProvisioned("acme")
		assert.True(t, errors.Is(err, ErrSchemaNotProvisioned))
		assert.False(t, errors.Is(err, ErrNotFound))
		assert.Contains(t, err.Error(), "acme")
	})

	t.Run("retryable classification", func(t *testing.T) {
		assert.True(t, IsRetryable(SchemaNotProvisioned("acme")))
		assert.True(t, IsRetryable(ConcurrencyConflict("Tenant", "acme", 3)))
		assert.False(t, IsRetryable(ErrInvalidState))
		assert.False(t, IsRetryable(NewValidationError("bad", nil)))
	})

	t.Run("validation error lists fields in order", func(t *testing.T) {
		err := NewValidationError("invalid command", map[string]string{"name": "required", "id": "required"})
		assert.Equal(t, "invalid command (id: required; name: required)", err.Error())
		assert.True(t, IsValidationError(err))
	})
}
