package shared

import (
	"context"
	"sync"
)

// TransactionManager runs a block inside a transaction scope.
//
// The context handed to fn carries the transaction and an after-commit hook
// list. Hooks registered through RegisterAfterCommit fire, in registration
// order, only after fn returned nil and the commit succeeded. A nested Run
// joins the outer scope.
type TransactionManager interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

type txScopeKey struct{}

// TxScope collects after-commit hooks for one transaction
type TxScope struct {
	mu    sync.Mutex
	hooks []func(ctx context.Context)
	done  bool
}

// BeginTxScope attaches a fresh scope to ctx.
// Transaction managers call it once per outermost transaction.
func BeginTxScope(ctx context.Context) (context.Context, *TxScope) {
	scope := &TxScope{}
	return context.WithValue(ctx, txScopeKey{}, scope), scope
}

// TxScopeFromContext returns the active scope, if any
func TxScopeFromContext(ctx context.Context) (*TxScope, bool) {
	scope, ok := ctx.Value(txScopeKey{}).(*TxScope)
	if !ok || scope == nil {
		return nil, false
	}
	scope.mu.Lock()
	defer scope.mu.Unlock()
	if scope.done {
		return nil, false
	}
	return scope, true
}

// InTransaction reports whether ctx carries an open transaction scope
func InTransaction(ctx context.Context) bool {
	_, ok := TxScopeFromContext(ctx)
	return ok
}

// RegisterAfterCommit defers fn until the active transaction commits.
// It returns false when no transaction is open; the caller decides whether to
// run fn immediately.
func RegisterAfterCommit(ctx context.Context, fn func(ctx context.Context)) bool {
	scope, ok := TxScopeFromContext(ctx)
	if !ok {
		return false
	}
	scope.mu.Lock()
	defer scope.mu.Unlock()
	if scope.done {
		return false
	}
	scope.hooks = append(scope.hooks, fn)
	return true
}

// Committed closes the scope and runs its hooks in registration order.
// ctx should be the caller's context from before the transaction started.
func (s *TxScope) Committed(ctx context.Context) {
	hooks := s.close()
	for _, hook := range hooks {
		hook(ctx)
	}
}

// RolledBack closes the scope and discards its hooks
func (s *TxScope) RolledBack() {
	s.close()
}

func (s *TxScope) close() []func(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hooks := s.hooks
	s.hooks = nil
	s.done = true
	return hooks
}
