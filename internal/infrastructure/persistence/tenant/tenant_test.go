package tenant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wms/backend/internal/domain/shared"
)

func TestSchemaName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"simple id", "acme", "tenant_acme_schema", false},
		{"normalized", "  ACME_2 ", "tenant_acme_2_schema", false},
		{"empty", "", "", true},
		{"hyphen", "acme-co", "", true},
		{"quote injection", `acme"; drop`, "", true},
		{"leading digit", "9lives", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SchemaName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchemaName_InvalidIsValidationError(t *testing.T) {
	_, err := SchemaName("acme-co")
	assert.True(t, shared.IsValidationError(err))
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	_, err := r.Resolve(ctx, "acme")
	assert.ErrorIs(t, err, shared.ErrSchemaNotProvisioned)
	assert.True(t, shared.IsRetryable(err))

	require.NoError(t, r.Register(ctx, "acme", "tenant_acme_schema"))
	require.NoError(t, r.Register(ctx, "ACME", "tenant_acme_schema"))
	assert.Error(t, r.Register(ctx, "acme", "elsewhere"))

	schema, err := r.Resolve(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "tenant_acme_schema", schema)

	_, err = r.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrTenantIDRequired)
}

type countingResolver struct {
	calls int
	err   error
}

func (c *countingResolver) Resolve(_ context.Context, tenantID string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return "tenant_" + tenantID + "_schema", nil
}

func TestCachedResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("caches hits until expiry", func(t *testing.T) {
		next := &countingResolver{}
		c := NewCachedResolver(next, time.Minute)
		now := time.Now()
		c.now = func() time.Time { return now }

		for range 3 {
			schema, err := c.Resolve(ctx, "acme")
			require.NoError(t, err)
			assert.Equal(t, "tenant_acme_schema", schema)
		}
		assert.Equal(t, 1, next.calls)

		now = now.Add(2 * time.Minute)
		_, err := c.Resolve(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, 2, next.calls)
	})

	t.Run("does not cache misses", func(t *testing.T) {
		next := &countingResolver{err: shared.SchemaNotProvisioned("acme")}
		c := NewCachedResolver(next, time.Minute)

		_, err := c.Resolve(ctx, "acme")
		assert.ErrorIs(t, err, shared.ErrSchemaNotProvisioned)

		next.err = nil
		schema, err := c.Resolve(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, "tenant_acme_schema", schema)
		assert.Equal(t, 2, next.calls)
	})
}

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&TenantSchemaModel{}))
	return db
}

func TestGormRegistry(t *testing.T) {
	ctx := context.Background()
	r := NewGormRegistry(setupSQLiteDB(t))

	_, err := r.Resolve(ctx, "acme")
	assert.ErrorIs(t, err, shared.ErrSchemaNotProvisioned)

	require.NoError(t, r.Register(ctx, "acme", "tenant_acme_schema"))
	require.NoError(t, r.Register(ctx, "acme", "tenant_acme_schema"))
	require.NoError(t, r.Register(ctx, "beta", "tenant_beta_schema"))

	schema, err := r.Resolve(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, "tenant_acme_schema", schema)

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "acme", all[0].TenantID)
	assert.Equal(t, "beta", all[1].TenantID)
}

func TestTenantDB_Table(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	registry := NewRegistry()
	require.NoError(t, registry.Register(context.Background(), "acme", "tenant_acme_schema"))
	tdb := NewTenantDB(db, registry)

	t.Run("qualifies table with the tenant schema", func(t *testing.T) {
		mock.ExpectQuery(`SELECT count\(\*\) FROM "tenant_acme_schema"."inventory_items"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		q, err := tdb.Table(context.Background(), "acme", "inventory_items")
		require.NoError(t, err)

		var n int64
		require.NoError(t, q.Count(&n).Error)
		assert.Equal(t, int64(3), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown tenant is not provisioned", func(t *testing.T) {
		_, err := tdb.Table(context.Background(), "ghost", "inventory_items")
		assert.ErrorIs(t, err, shared.ErrSchemaNotProvisioned)
	})

	t.Run("missing tenant id", func(t *testing.T) {
		_, err := tdb.Table(context.Background(), "", "inventory_items")
		assert.True(t, errors.Is(err, ErrTenantIDRequired))
	})
}
