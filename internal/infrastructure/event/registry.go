package event

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/wms/backend/internal/domain/shared"
)

// HandlerRegistry routes envelopes to the handlers subscribed to their type.
// Handlers registered without types receive every envelope.
type HandlerRegistry struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	catchAll []shared.EventHandler
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{byType: make(map[string][]shared.EventHandler)}
}

// Register subscribes handler to eventTypes, or to everything when none are given
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		r.catchAll = append(r.catchAll, handler)
		return
	}
	for _, t := range eventTypes {
		r.byType[t] = append(r.byType[t], handler)
	}
}

// Unregister removes handler from every subscription
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	isTarget := func(h shared.EventHandler) bool { return h == handler }
	r.catchAll = slices.DeleteFunc(r.catchAll, isTarget)
	for t, hs := range r.byType {
		hs = slices.DeleteFunc(hs, isTarget)
		if len(hs) == 0 {
			delete(r.byType, t)
			continue
		}
		r.byType[t] = hs
	}
}

// Handlers returns the handlers for eventType followed by the catch-all handlers
func (r *HandlerRegistry) Handlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]shared.EventHandler, 0, len(r.byType[eventType])+len(r.catchAll))
	out = append(out, r.byType[eventType]...)
	return append(out, r.catchAll...)
}

// Types returns the sorted event types with at least one dedicated handler
func (r *HandlerRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Dispatch hands env to every matching handler and joins their errors.
// A panicking handler is reported as an error; the others still run.
// Envelopes nobody subscribed to are ignored.
func (r *HandlerRegistry) Dispatch(ctx context.Context, env *shared.Envelope) error {
	var errs []error
	for _, h := range r.Handlers(env.EventType) {
		if err := safeHandle(ctx, h, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func safeHandle(ctx context.Context, h shared.EventHandler, env *shared.Envelope) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panicked on %s %s: %v", env.EventType, env.EventID, rec)
		}
	}()
	return h.Handle(ctx, env)
}
