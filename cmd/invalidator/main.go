// Command invalidator keeps the shared read-model cache coherent by evicting
// keys named by events consumed from the broker.
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

	"github.com/wms/backend/internal/infrastructure/cache"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/event"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/messaging"
	"github.com/wms/backend/internal/infrastructure/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wms-invalidator: %v\n", err)
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
		Service:  cfg.App.Service + "-invalidator",
		Sampling: cfg.Log.Sampling,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !cfg.Redis.Enabled {
		return errors.New("redis must be enabled: the invalidator evicts from the shared cache")
	}
	store, err := cache.NewRedisStore(ctx, cfg.Redis, cfg.Cache.Timeout)
	if err != nil {
		return fmt.Errorf("connect cache: %w", err)
	}
	defer func() { _ = store.Close() }()

	otelProviders, err := telemetry.Setup(ctx, telemetry.ConfigFor(cfg, "invalidator"), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelProviders.Shutdown(context.Background()); err != nil {
			log.Warn("Failed to shut down telemetry", zap.Error(err))
		}
	}()
	eventMetrics, err := otelProviders.EventMetrics("wms.invalidator")
	if err != nil {
		return fmt.Errorf("init event metrics: %w", err)
	}

	listener := cache.NewInvalidationListener(store, log, cache.WithInvalidationMetrics(eventMetrics))
	handlers := event.NewHandlerRegistry()
	handlers.Register(listener, listener.EventTypes()...)

	if err := messaging.WaitForBrokers(ctx, cfg.Kafka.Brokers, cfg.Kafka.ConnAttempts, cfg.Kafka.ConnTimeout, log); err != nil {
		return err
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	consumer := messaging.NewConsumer(
		messaging.NewKafkaReader(cfg.Kafka, cfg.Kafka.GroupID, cfg.Kafka.Topics),
		handlers,
		messaging.ConsumerOptions{
			Workers:       cfg.Kafka.Workers,
			CommitTimeout: cfg.Kafka.CommitTimeout,
			MaxRetries:    cfg.Kafka.MaxRetries,
		},
		messaging.NewConsumerMetrics(promRegistry, "invalidator"),
		log.Named("consumer"),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	metricsSrv := &http.Server{
		Addr:              ":" + cfg.HTTP.MetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("Invalidator starting",
		zap.Strings("topics", cfg.Kafka.Topics),
		zap.String("group_id", cfg.Kafka.GroupID),
		zap.Strings("event_types", handlers.Types()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return consumer.Run(gctx) })
	g.Go(func() error {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve metrics: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return metricsSrv.Shutdown(sctx)
	})
	return g.Wait()
}
