// Package transaction provides the GORM-backed transaction scope.
//
// The open *gorm.DB transaction travels in the context so repositories called
// inside Manager.Run share it without any extra parameter.
package transaction

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/shared"
)

type txKey struct{}

// WithTx stores tx in ctx
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// FromContext returns the transaction stored in ctx, if any
func FromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// DB returns the ambient transaction when present, otherwise base.
// The result is bound to ctx.
func DB(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx, ok := FromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return base.WithContext(ctx)
}

// Manager implements shared.TransactionManager on top of gorm.DB.Transaction
type Manager struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewManager creates a new transaction manager
func NewManager(db *gorm.DB, logger *zap.Logger) *Manager {
	return &Manager{db: db, logger: logger}
}

// Run executes fn in a transaction. A nested call joins the outer transaction
// and its hooks fire with the outer commit.
func (m *Manager) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := FromContext(ctx); ok {
		return fn(ctx)
	}

	txCtx, scope := shared.BeginTxScope(ctx)
	err := m.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(txCtx, tx))
	})
	if err != nil {
		scope.RolledBack()
		m.logger.Debug("transaction rolled back", zap.Error(err))
		return err
	}

	scope.Committed(ctx)
	return nil
}

var _ shared.TransactionManager = (*Manager)(nil)
