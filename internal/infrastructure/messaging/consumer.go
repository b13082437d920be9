package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/event"
	"github.com/wms/backend/internal/infrastructure/logger"
)

// MessageReader is the part of *kafka.Reader the consumer needs
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Dispatcher hands an envelope to the interested handlers
type Dispatcher interface {
	Dispatch(ctx context.Context, env *shared.Envelope) error
}

// NewKafkaReader builds a consumer group reader over topics.
// Offsets are committed explicitly after each message is handled.
func NewKafkaReader(cfg config.KafkaConfig, groupID string, topics []string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     groupID,
		GroupTopics: topics,
		MinBytes:    10e3,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
}

// ConsumerOptions tune a Consumer
type ConsumerOptions struct {
	Workers       int
	CommitTimeout time.Duration
	MaxRetries    int
	RetryBackoff  time.Duration
}

// Consumer reads envelopes and dispatches them on a fixed pool of workers.
//
// Messages are routed to workers by partition, so deliveries from one
// partition (one aggregate, given keyed publication) are handled in order.
// An offset is committed once its message is handled. A message that still
// fails after MaxRetries is logged and committed so its partition keeps
// moving; undecodable messages are committed right away.
type Consumer struct {
	reader     MessageReader
	dispatcher Dispatcher
	opts       ConsumerOptions
	metrics    *ConsumerMetrics
	logger     *zap.Logger
}

// NewConsumer creates a consumer; nil metrics disables instrumentation
func NewConsumer(reader MessageReader, dispatcher Dispatcher, opts ConsumerOptions, metrics *ConsumerMetrics, logger *zap.Logger) *Consumer {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.CommitTimeout <= 0 {
		opts.CommitTimeout = 5 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 200 * time.Millisecond
	}
	if metrics == nil {
		metrics = NewConsumerMetrics(prometheus.NewRegistry(), "unregistered")
	}
	return &Consumer{
		reader:     reader,
		dispatcher: dispatcher,
		opts:       opts,
		metrics:    metrics,
		logger:     logger,
	}
}

// Run consumes until ctx is cancelled, then drains the workers and closes
// the reader. It returns nil on a clean shutdown.
func (c *Consumer) Run(ctx context.Context) error {
	queues := make([]chan kafka.Message, c.opts.Workers)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan kafka.Message, 16)
		wg.Add(1)
		go func(q <-chan kafka.Message) {
			defer wg.Done()
			for msg := range q {
				if ctx.Err() != nil {
					// queued but not handled: redelivered after restart
					continue
				}
				c.process(ctx, msg)
			}
		}(queues[i])
	}

	c.logger.Info("Consumer started", zap.Int("workers", c.opts.Workers))

	var runErr error
fetch:
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				break
			}
			if errors.Is(err, io.EOF) {
				// reader closed
				break
			}
			c.logger.Error("Failed to fetch message", zap.Error(err))
			runErr = fmt.Errorf("fetch message: %w", err)
			break
		}

		q := queues[msg.Partition%len(queues)]
		select {
		case q <- msg:
		case <-ctx.Done():
			break fetch
		}
	}

	for _, q := range queues {
		close(q)
	}
	wg.Wait()

	if err := c.reader.Close(); err != nil {
		c.logger.Warn("Failed to close reader", zap.Error(err))
	}
	c.logger.Info("Consumer stopped")
	return runErr
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Consumer worker panicked", zap.Any("panic", r))
		}
	}()

	env, err := shared.DecodeEnvelope(msg.Value)
	if err != nil {
		c.metrics.Deliveries.WithLabelValues(headerValue(msg, HeaderEventType), OutcomeMalformed).Inc()
		c.logger.Error("Dropping undecodable message",
			zap.String("topic", msg.Topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		c.commit(ctx, msg)
		return
	}

	hctx, span := startDeliverySpan(event.DeliveryContext(ctx, env), msg, env.EventType)
	defer span.End()
	log := logger.WithLogger(hctx, c.logger).With(
		zap.String("event_id", env.EventID),
		zap.String("event_type", env.EventType),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
	)

	start := time.Now()
	err = c.handleWithRetry(hctx, env)
	c.metrics.Duration.WithLabelValues(env.EventType).Observe(time.Since(start).Seconds())

	if ctx.Err() != nil {
		// Handlers may swallow errors caused by the cancellation, so the
		// outcome is unknown. Leave the offset uncommitted for redelivery.
		log.Info("Shutting down, leaving event uncommitted", zap.Error(err))
		return
	}
	if err != nil {
		c.metrics.Deliveries.WithLabelValues(env.EventType, OutcomeFailed).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "handler gave up")
		log.Error("Giving up on event", zap.Int("attempts", c.opts.MaxRetries+1), zap.Error(err))
	} else {
		c.metrics.Deliveries.WithLabelValues(env.EventType, OutcomeHandled).Inc()
		log.Debug("Event handled")
	}
	c.commit(ctx, msg)
}

func (c *Consumer) handleWithRetry(ctx context.Context, env *shared.Envelope) error {
	var err error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			c.metrics.Retries.WithLabelValues(env.EventType).Inc()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * c.opts.RetryBackoff):
			}
		}
		if err = c.dispatcher.Dispatch(ctx, env); err == nil {
			return nil
		}
	}
	return err
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	// the commit outlives cancellation of ctx so a handled message is not redelivered
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.CommitTimeout)
	defer cancel()
	if err := c.reader.CommitMessages(commitCtx, msg); err != nil {
		c.logger.Error("Failed to commit offset",
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
	}
}

func headerValue(msg kafka.Message, key string) string {
	return headerCarrier{headers: &msg.Headers}.Get(key)
}
