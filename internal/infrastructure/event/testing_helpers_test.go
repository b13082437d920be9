package event

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wms/backend/internal/domain/shared"
)

// sampleEvent is a minimal closed-set event used across the package tests
type sampleEvent struct {
	shared.BaseDomainEvent
	Note string `json:"note"`
}

func newSampleEvent(eventType, aggregateID string) *sampleEvent {
	return &sampleEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Sample", aggregateID, "acme"),
		Note:            "n",
	}
}

func (e *sampleEvent) WithMetadata(m shared.EventMetadata) shared.DomainEvent {
	c := *e
	c.BaseDomainEvent = e.BaseDomainEvent.CopyWithMetadata(m)
	return &c
}

// recordingPublisher captures every Publish call
type recordingPublisher struct {
	mu    sync.Mutex
	calls [][]shared.DomainEvent
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, append([]shared.DomainEvent(nil), events...))
	return p.err
}

func (p *recordingPublisher) published() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.DomainEvent
	for _, c := range p.calls {
		out = append(out, c...)
	}
	return out
}

// MockEventHandler is a mock implementation of shared.EventHandler
type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, env *shared.Envelope) error {
	args := m.Called(ctx, env)
	return args.Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Claim(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Claimed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// handlerFunc adapts a function to shared.EventHandler
type handlerFunc struct {
	types []string
	fn    func(ctx context.Context, env *shared.Envelope) error
}

func (h *handlerFunc) Handle(ctx context.Context, env *shared.Envelope) error { return h.fn(ctx, env) }

func (h *handlerFunc) EventTypes() []string { return h.types }
