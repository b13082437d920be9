package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wms/backend/internal/application/command"
	identityapp "github.com/wms/backend/internal/application/identity"
	inventoryapp "github.com/wms/backend/internal/application/inventory"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/cache"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/event"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/messaging"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"github.com/wms/backend/internal/infrastructure/persistence/tenant"
	"github.com/wms/backend/internal/infrastructure/persistence/transaction"
	"github.com/wms/backend/internal/infrastructure/telemetry"
	"github.com/wms/backend/internal/interfaces/http/handler"
	"github.com/wms/backend/internal/interfaces/http/middleware"
	"github.com/wms/backend/internal/interfaces/http/router"
)

// schemaCacheTTL bounds how long a tenant's schema name is reused without a registry lookup
const schemaCacheTTL = time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wms-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		Output:   cfg.Log.Output,
		Service:  cfg.App.Service,
		Sampling: cfg.Log.Sampling,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting WMS backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	otelProviders, err := telemetry.Setup(ctx, telemetry.ConfigFor(cfg, ""), log)
	if err != nil {
		return err
	}
	defer shutdown(log, "telemetry", otelProviders.Shutdown)

	eventMetrics, err := otelProviders.EventMetrics("wms.events")
	if err != nil {
		return fmt.Errorf("init event metrics: %w", err)
	}

	db, err := persistence.NewDatabase(&cfg.Database, log, persistence.Options{Tracing: cfg.Telemetry.DBTraceEnabled})
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	registry := tenant.NewGormRegistry(db.DB)
	tdb := tenant.NewTenantDB(db.DB, tenant.NewCachedResolver(registry, schemaCacheTTL))
	provisioner := tenant.NewProvisioner(db.DB, registry, log)
	txManager := transaction.NewManager(db.DB, log)

	var (
		tenantRepo   identity.TenantRepository         = persistence.NewGormTenantRepository(db.DB)
		itemRepo     inventory.InventoryItemRepository = persistence.NewGormInventoryItemRepository(tdb)
		transferRepo                                   = persistence.NewGormStockTransferRepository(tdb)
	)

	checks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}

	// without brokers the invalidation listener runs inside the publish hook
	inProcessEvents := len(cfg.Kafka.Brokers) == 0
	repoOpts := []cache.RepositoryOption{cache.WithWriteThrough(!inProcessEvents)}

	var store cache.Store
	if cfg.Cache.Enabled {
		store, err = newCacheStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		if rs, ok := store.(*cache.RedisStore); ok {
			defer func() { _ = rs.Close() }()
			checks["redis"] = rs.Ping
		}
		tenantRepo = cache.NewCachedTenantRepository(tenantRepo,
			cache.NewAside[cache.TenantSnapshot](store, cfg.Cache.TTL, log, eventMetrics), repoOpts...)
		itemRepo = cache.NewCachedInventoryItemRepository(itemRepo,
			cache.NewAside[cache.InventoryItemSnapshot](store, cfg.Cache.TTL, log, eventMetrics), repoOpts...)
	}

	promRegistry := prometheus.NewRegistry()
	dbStats, err := db.StatsCollector(cfg.Database.DBName)
	if err != nil {
		return err
	}
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		dbStats,
	)

	handlers := event.NewHandlerRegistry()
	idempotency, err := cache.OpenIdempotencyStore(ctx, cfg.Redis, log, false)
	if err != nil {
		return err
	}
	defer func() { _ = idempotency.Close() }()

	handlers.Register(event.NewIdempotentHandler(
		identityapp.NewTenantProvisioningHandler(provisioner, log), idempotency, log,
		event.WithHandlerMetrics(eventMetrics),
	), identity.EventTypeTenantCreated)
	handlers.Register(inventoryapp.NewStockDepletedHandler(inventoryapp.NewLoggingStockAlertNotifier(log), log),
		inventory.EventTypeStockDepleted)
	if store != nil {
		listener := cache.NewInvalidationListener(store, log, cache.WithInvalidationMetrics(eventMetrics))
		handlers.Register(listener, listener.EventTypes()...)
	}

	g, gctx := errgroup.WithContext(ctx)

	var publisher shared.EventPublisher
	if !inProcessEvents {
		if err := messaging.WaitForBrokers(ctx, cfg.Kafka.Brokers, cfg.Kafka.ConnAttempts, cfg.Kafka.ConnTimeout, log); err != nil {
			return err
		}
		kp := messaging.NewKafkaPublisher(messaging.NewKafkaWriter(cfg.Kafka), cfg.EventsTopic(), log)
		defer func() { _ = kp.Close() }()
		publisher = kp

		consumer := messaging.NewConsumer(
			messaging.NewKafkaReader(cfg.Kafka, cfg.App.Service+"-workers", []string{cfg.EventsTopic()}),
			handlers,
			messaging.ConsumerOptions{
				Workers:       cfg.Kafka.Workers,
				CommitTimeout: cfg.Kafka.CommitTimeout,
				MaxRetries:    cfg.Kafka.MaxRetries,
			},
			messaging.NewConsumerMetrics(promRegistry, "server"),
			log.Named("consumer"),
		)
		g.Go(func() error { return consumer.Run(gctx) })
	} else {
		log.Warn("No Kafka brokers configured, delivering events in process")
		publisher = event.NewInMemoryEventBusWithRegistry(handlers, log)
	}

	exec := command.NewExecutor(txManager, event.NewPostCommitPublisher(publisher, log, eventMetrics), command.NewValidator(), log)
	tenantService := identityapp.NewTenantService(exec, tenantRepo, log)
	stockService := inventoryapp.NewStockService(exec, itemRepo, log)
	transferService := inventoryapp.NewTransferService(exec, itemRepo, transferRepo, log)

	serviceName := ""
	if otelProviders.Enabled() {
		serviceName = cfg.App.Name
	}
	engine := router.New(router.Config{
		ServiceName: serviceName,
		JWT: middleware.JWTConfig{
			Secret:   cfg.Auth.JWTSecret,
			Issuer:   cfg.Auth.Issuer,
			Required: cfg.App.Env == "production",
		},
	}, log).
		Root(handler.NewSystemHandler(checks, 2*time.Second)).
		Platform(handler.NewTenantHandler(tenantService)).
		Tenant(handler.NewInventoryHandler(stockService, transferService)).
		Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	metricsSrv := &http.Server{
		Addr:              ":" + cfg.HTTP.MetricsPort,
		Handler:           promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	for _, s := range []*http.Server{srv, metricsSrv} {
		g.Go(func() error {
			log.Info("Server starting", zap.String("addr", s.Addr))
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", s.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return errors.Join(srv.Shutdown(sctx), metricsSrv.Shutdown(sctx))
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		return err
	}
	log.Info("Server exited gracefully")
	return nil
}

func newCacheStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (cache.Store, error) {
	if !cfg.Redis.Enabled {
		log.Warn("Redis disabled, read-model cache is local to this process")
		return cache.NewInMemoryStore(), nil
	}
	store, err := cache.NewRedisStore(ctx, cfg.Redis, cfg.Cache.Timeout)
	if err != nil {
		return nil, fmt.Errorf("connect cache: %w", err)
	}
	return store, nil
}

func shutdown(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Warn("Failed to shut down "+name, zap.Error(err))
	}
}
