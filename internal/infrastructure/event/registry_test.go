package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/domain/shared"
)

func noop() *handlerFunc {
	return &handlerFunc{fn: func(context.Context, *shared.Envelope) error { return nil }}
}

func TestHandlerRegistry_Handlers(t *testing.T) {
	r := NewHandlerRegistry()
	specific, all := noop(), noop()

	r.Register(specific, "A", "B")
	r.Register(all)

	hs := r.Handlers("A")
	require.Len(t, hs, 2)
	assert.Same(t, specific, hs[0])
	assert.Same(t, all, hs[1])

	assert.Len(t, r.Handlers("Unknown"), 1)
	assert.Equal(t, []string{"A", "B"}, r.Types())
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	r := NewHandlerRegistry()
	h1, h2 := noop(), noop()
	r.Register(h1, "A")
	r.Register(h2, "A")
	r.Register(h1)

	r.Unregister(h1)

	hs := r.Handlers("A")
	require.Len(t, hs, 1)
	assert.Same(t, h2, hs[0])

	r.Unregister(h2)
	assert.Empty(t, r.Types())
}

func TestHandlerRegistry_DispatchJoinsErrors(t *testing.T) {
	r := NewHandlerRegistry()
	errA := errors.New("a")
	r.Register(&handlerFunc{fn: func(context.Context, *shared.Envelope) error { return errA }}, "A")
	r.Register(&handlerFunc{fn: func(context.Context, *shared.Envelope) error { panic("b") }}, "A")

	err := r.Dispatch(context.Background(), &shared.Envelope{EventID: "e1", EventType: "A"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.Contains(t, err.Error(), "panicked")

	assert.NoError(t, r.Dispatch(context.Background(), &shared.Envelope{EventID: "e2", EventType: "Z"}))
}
