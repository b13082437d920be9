package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/telemetry"
)

// Database is the shared gorm handle. Tenant tables are reached through
// tenant.TenantDB, global tables through DB directly.
type Database struct {
	DB *gorm.DB
}

// Options tweak how NewDatabase opens the pool
type Options struct {
	// Tracing attaches the otelgorm plugin
	Tracing bool
	// SlowThreshold overrides the gorm slow query threshold
	SlowThreshold time.Duration
}

// NewDatabase opens the postgres pool and verifies it answers.
// Error translation is on so repositories see gorm.ErrDuplicatedKey.
func NewDatabase(cfg *config.DatabaseConfig, zapLogger *zap.Logger, opts Options) (*Database, error) {
	var gormOpts []logger.GormLoggerOption
	if opts.SlowThreshold > 0 {
		gormOpts = append(gormOpts, logger.WithSlowThreshold(opts.SlowThreshold))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 logger.NewGormLogger(zapLogger, logger.MapGormLogLevel(cfg.LogLevel), gormOpts...),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	d := &Database{DB: db}
	pool, err := d.pool()
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := pool.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if opts.Tracing {
		if err := telemetry.RegisterOtelGorm(db, cfg.DBName, zapLogger); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Database) pool() (*sql.DB, error) {
	pool, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return pool, nil
}

// Ping reports whether the database answers before ctx expires
func (d *Database) Ping(ctx context.Context) error {
	pool, err := d.pool()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

// Close releases the pool
func (d *Database) Close() error {
	pool, err := d.pool()
	if err != nil {
		return err
	}
	return pool.Close()
}

// StatsCollector exposes the pool statistics (open, in use, idle, waits)
// as Prometheus metrics labelled with dbName
func (d *Database) StatsCollector(dbName string) (prometheus.Collector, error) {
	pool, err := d.pool()
	if err != nil {
		return nil, err
	}
	return collectors.NewDBStatsCollector(pool, dbName), nil
}
