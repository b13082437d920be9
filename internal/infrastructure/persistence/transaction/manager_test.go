package transaction

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wms/backend/internal/domain/shared"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestManager_Run(t *testing.T) {
	t.Run("commit runs after-commit hooks outside the transaction", func(t *testing.T) {
		db, mock := setupMockDB(t)
		m := NewManager(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectCommit()

		var (
			sawTx      bool
			hookRan    bool
			hookInTx   bool
			hookHasSQL bool
		)
		err := m.Run(context.Background(), func(ctx context.Context) error {
			_, sawTx = FromContext(ctx)
			ok := shared.RegisterAfterCommit(ctx, func(hookCtx context.Context) {
				hookRan = true
				hookInTx = shared.InTransaction(hookCtx)
				_, hookHasSQL = FromContext(hookCtx)
			})
			assert.True(t, ok)
			return nil
		})

		require.NoError(t, err)
		assert.True(t, sawTx)
		assert.True(t, hookRan)
		assert.False(t, hookInTx)
		assert.False(t, hookHasSQL)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error rolls back and drops hooks", func(t *testing.T) {
		db, mock := setupMockDB(t)
		m := NewManager(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		hookRan := false
		err := m.Run(context.Background(), func(ctx context.Context) error {
			shared.RegisterAfterCommit(ctx, func(context.Context) { hookRan = true })
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.False(t, hookRan)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested run joins the outer transaction", func(t *testing.T) {
		db, mock := setupMockDB(t)
		m := NewManager(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectCommit()

		var order []string
		err := m.Run(context.Background(), func(ctx context.Context) error {
			outer, _ := FromContext(ctx)
			return m.Run(ctx, func(inner context.Context) error {
				innerTx, _ := FromContext(inner)
				assert.Same(t, outer, innerTx)
				shared.RegisterAfterCommit(inner, func(context.Context) { order = append(order, "inner") })
				return nil
			})
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"inner"}, order)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit failure drops hooks", func(t *testing.T) {
		db, mock := setupMockDB(t)
		m := NewManager(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

		hookRan := false
		err := m.Run(context.Background(), func(ctx context.Context) error {
			shared.RegisterAfterCommit(ctx, func(context.Context) { hookRan = true })
			return nil
		})

		assert.Error(t, err)
		assert.False(t, hookRan)
	})
}

func TestDB_FallsBackToBase(t *testing.T) {
	db, _ := setupMockDB(t)
	assert.NotNil(t, DB(context.Background(), db))
}
