package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/migration"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"github.com/wms/backend/internal/infrastructure/persistence/tenant"
)

const defaultSQLRoot = "internal/infrastructure/migration/sql"

func main() {
	var (
		sqlRoot  string
		logLevel string
	)
	flag.StringVar(&sqlRoot, "path", defaultSQLRoot, "Root of the public/ and tenant/ migration directories (create and list)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// commands that do not need a database
	switch command {
	case "create":
		if len(args) < 3 {
			log.Fatal("Usage: migrate create <public|tenant> <name> [description]")
		}
		description := ""
		if len(args) > 3 {
			description = args[3]
		}
		mf, err := migration.CreateMigration(sqlRoot, migration.Scope(args[1]), args[2], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created successfully",
			zap.String("scope", string(mf.Scope)),
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return
	case "list":
		scope := migration.ScopePublic
		if len(args) > 1 {
			scope = migration.Scope(args[1])
		}
		names, err := migration.Embedded(scope)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		log.Info("Embedded migrations", zap.String("scope", string(scope)), zap.Int("count", len(names)))
		for _, n := range names {
			fmt.Println("  -", n)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	ctx := context.Background()

	switch command {
	case "tenants", "provision":
		if err := runTenantCommand(ctx, cfg, log, args); err != nil {
			log.Fatal("Tenant migration failed", zap.Error(err))
		}
		return
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	m, err := migration.New(db, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() { _ = m.Close() }()

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}

	case "down":
		if len(args) < 2 || (args[1] != "-confirm" && args[1] != "--confirm") {
			log.Fatal("Rolling back the public schema drops the tenant registry. Use 'migrate down -confirm'.")
		}
		if err := m.Down(); err != nil {
			log.Fatal("Migration down failed", zap.Error(err))
		}

	case "step":
		if len(args) < 2 {
			log.Fatal("Step count required. Usage: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		if err := m.Steps(n); err != nil {
			log.Fatal("Migration step failed", zap.Error(err))
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("Failed to get version", zap.Error(err))
		}
		if version == 0 {
			log.Info("No migrations applied")
		} else {
			log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		}

	case "force":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		if err := m.Force(version); err != nil {
			log.Fatal("Force version failed", zap.Error(err))
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

// runTenantCommand brings every registered tenant schema up to date, or
// provisions the single tenant named in args.
func runTenantCommand(ctx context.Context, cfg *config.Config, log *zap.Logger, args []string) error {
	db, err := persistence.NewDatabase(&cfg.Database, log, persistence.Options{})
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	registry := tenant.NewGormRegistry(db.DB)
	p := tenant.NewProvisioner(db.DB, registry, log)

	if args[0] == "provision" {
		if len(args) < 2 {
			return fmt.Errorf("usage: migrate provision <tenant-id>")
		}
		_, err := p.Provision(ctx, args[1])
		return err
	}

	schemas, err := registry.List(ctx)
	if err != nil {
		return err
	}
	log.Info("Migrating tenant schemas", zap.Int("count", len(schemas)))
	var failed int
	for _, s := range schemas {
		if err := p.Migrate(ctx, s.SchemaName); err != nil {
			failed++
			log.Error("Tenant schema migration failed",
				zap.String("tenant_id", s.TenantID),
				zap.String("schema", s.SchemaName),
				zap.Error(err),
			)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d tenant schemas failed to migrate", failed, len(schemas))
	}
	return nil
}

func printUsage() {
	fmt.Println(`WMS Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Public schema commands:
  up                           Apply all pending public migrations
  down -confirm                Roll back all public migrations
  step <n>                     Apply n migrations (positive=up, negative=down)
  version                      Show current public migration version
  force <version>              Force set the version (repairs a dirty table)

Tenant schema commands:
  tenants                      Apply pending tenant migrations to every registered schema
  provision <tenant-id>        Create, migrate and register one tenant schema

Authoring:
  create <public|tenant> <name> [desc]  Create a new migration file pair
  list [public|tenant]                  List embedded migrations

Flags:
  -path string          Migration root for create (default: ` + defaultSQLRoot + `)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  WMS_DATABASE_HOST, WMS_DATABASE_PORT, WMS_DATABASE_USER,
  WMS_DATABASE_PASSWORD, WMS_DATABASE_DBNAME, WMS_DATABASE_SSLMODE`)
}
