package messaging

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/wms/backend/internal/domain/shared"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeReader struct {
	ch        chan kafka.Message
	mu        sync.Mutex
	committed []kafka.Message
	closed    bool
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{ch: make(chan kafka.Message, len(msgs)+1)}
	for _, m := range msgs {
		r.ch <- m
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case m, ok := <-r.ch:
		if !ok {
			return kafka.Message{}, io.EOF
		}
		return m, nil
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

type dispatchFunc func(ctx context.Context, env *shared.Envelope) error

func (f dispatchFunc) Dispatch(ctx context.Context, env *shared.Envelope) error { return f(ctx, env) }

type stockEvent struct {
	shared.BaseDomainEvent
	Quantity int `json:"quantity"`
}

func (e *stockEvent) WithMetadata(m shared.EventMetadata) shared.DomainEvent {
	c := *e
	c.BaseDomainEvent = e.BaseDomainEvent.CopyWithMetadata(m)
	return &c
}

func newStockEvent(aggID string, qty int) *stockEvent {
	return &stockEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("StockReceived", "InventoryItem", aggID, "acme"),
		Quantity:        qty,
	}
}

func message(partition int, offset int64, aggID string) kafka.Message {
	env := &shared.Envelope{
		EventID:     uuid.NewString(),
		AggregateID: aggID,
		EventType:   "StockReceived",
		TenantID:    "acme",
		Metadata:    shared.EventMetadata{CorrelationID: "corr-" + aggID},
		Payload:     []byte(`{}`),
	}
	value, err := env.Marshal()
	if err != nil {
		panic(err)
	}
	return kafka.Message{Topic: "inventory-events", Partition: partition, Offset: offset, Key: []byte(aggID), Value: value}
}
