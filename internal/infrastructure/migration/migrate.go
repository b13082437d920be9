package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// Scope selects which migration set a Migrator applies
type Scope string

const (
	// ScopePublic holds the shared tables (tenants, tenant_schemas)
	ScopePublic Scope = "public"
	// ScopeTenant holds the tables created inside every tenant schema
	ScopeTenant Scope = "tenant"
)

//go:embed sql/public/*.sql sql/tenant/*.sql
var migrationFS embed.FS

// MigrationsTable is the version table name used in every schema
const MigrationsTable = "schema_migrations"

// Migrator handles database migrations using golang-migrate
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
	// conn is set for schema-bound migrators; its search_path is reset on Close
	conn *sql.Conn
}

// Embedded lists the base names of the migrations compiled into the binary for scope
func Embedded(scope Scope) ([]string, error) {
	switch scope {
	case ScopePublic, ScopeTenant:
	default:
		return nil, fmt.Errorf("unknown migration scope %q", scope)
	}
	return ListMigrationsFS(migrationFS, "sql/"+string(scope))
}

// New creates a Migrator for the public schema.
// Closing the Migrator closes db.
func New(db *sql.DB, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	src, err := iofs.New(migrationFS, "sql/"+string(ScopePublic))
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded public migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &Migrator{
		migrate: m,
		logger:  logger.With(zap.String("scope", string(ScopePublic))),
	}, nil
}

// NewForSchema creates a Migrator that applies the tenant migration set inside
// schema. The schema must already exist. conn is pinned to schema through
// search_path until Close, which also releases conn.
func NewForSchema(ctx context.Context, conn *sql.Conn, schema string, logger *zap.Logger) (*Migrator, error) {
	if _, err := conn.ExecContext(ctx, "SELECT set_config('search_path', $1, false)", schema); err != nil {
		return nil, fmt.Errorf("failed to bind search_path to %s: %w", schema, err)
	}

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{
		SchemaName:      schema,
		MigrationsTable: MigrationsTable,
	})
	if err != nil {
		resetSearchPath(conn)
		return nil, fmt.Errorf("failed to create postgres driver for %s: %w", schema, err)
	}

	src, err := iofs.New(migrationFS, "sql/"+string(ScopeTenant))
	if err != nil {
		resetSearchPath(conn)
		return nil, fmt.Errorf("failed to open embedded tenant migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		resetSearchPath(conn)
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &Migrator{
		migrate: m,
		logger:  logger.With(zap.String("scope", string(ScopeTenant)), zap.String("schema", schema)),
		conn:    conn,
	}, nil
}

func resetSearchPath(conn *sql.Conn) {
	_, _ = conn.ExecContext(context.Background(), "RESET search_path")
}

// Up applies every pending migration
func (m *Migrator) Up() error {
	return m.apply("up", m.migrate.Up)
}

// Down reverts every applied migration
func (m *Migrator) Down() error {
	return m.apply("down", m.migrate.Down)
}

// Steps moves n migrations forward, or back when n is negative
func (m *Migrator) Steps(n int) error {
	return m.apply(fmt.Sprintf("steps %+d", n), func() error { return m.migrate.Steps(n) })
}

func (m *Migrator) apply(op string, run func() error) error {
	log := m.logger.With(zap.String("op", op))
	log.Info("Applying migrations")

	switch err := run(); {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("Schema already at target version")
		return nil
	case err != nil:
		return fmt.Errorf("migrate %s: %w", op, err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	log.Info("Migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Version returns the current migration version; 0 when nothing was applied
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force sets the migration version without running migrations.
// Only for repairing a dirty version table.
func (m *Migrator) Force(version int) error {
	m.logger.Warn("Forcing migration version", zap.Int("version", version))

	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and database driver
func (m *Migrator) Close() error {
	if m.conn != nil {
		resetSearchPath(m.conn)
	}
	sourceErr, dbErr := m.migrate.Close()
	if sourceErr != nil {
		return fmt.Errorf("failed to close source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close database: %w", dbErr)
	}
	return nil
}
