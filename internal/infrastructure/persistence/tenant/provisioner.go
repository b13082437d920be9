package tenant

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/infrastructure/migration"
)

// Provisioner creates and migrates tenant schemas
type Provisioner struct {
	db        *gorm.DB
	registrar Registrar
	logger    *zap.Logger
}

// NewProvisioner creates a new Provisioner
func NewProvisioner(db *gorm.DB, registrar Registrar, logger *zap.Logger) *Provisioner {
	return &Provisioner{db: db, registrar: registrar, logger: logger.Named("provisioner")}
}

// Provision creates the tenant's schema if needed, brings its tables to the
// latest migration and records the mapping. Safe to call repeatedly.
func (p *Provisioner) Provision(ctx context.Context, tenantID string) (string, error) {
	schema, err := SchemaName(tenantID)
	if err != nil {
		return "", err
	}
	log := p.logger.With(zap.String("tenant_id", NormalizeID(tenantID)), zap.String("schema", schema))

	if err := p.Migrate(ctx, schema); err != nil {
		return "", err
	}
	if err := p.registrar.Register(ctx, tenantID, schema); err != nil {
		return "", err
	}

	log.Info("Tenant schema provisioned")
	return schema, nil
}

// Migrate creates schema when missing and applies pending tenant migrations
func (p *Provisioner) Migrate(ctx context.Context, schema string) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}

	if _, err := conn.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(schema)); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to create schema %s: %w", schema, err)
	}

	return migrateSchema(ctx, conn, schema, p.logger)
}

// migrateSchema takes ownership of conn
func migrateSchema(ctx context.Context, conn *sql.Conn, schema string, logger *zap.Logger) error {
	m, err := migration.NewForSchema(ctx, conn, schema, logger)
	if err != nil {
		_ = conn.Close()
		return err
	}

	upErr := m.Up()
	closeErr := m.Close()
	if upErr != nil {
		return fmt.Errorf("failed to migrate schema %s: %w", schema, upErr)
	}
	if closeErr != nil {
		logger.Warn("Failed to release migration connection", zap.String("schema", schema), zap.Error(closeErr))
	}
	return nil
}
