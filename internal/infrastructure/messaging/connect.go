package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	defaultConnAttempts = 10
	defaultConnTimeout  = time.Second
)

// WaitForBrokers dials the first broker until it answers a metadata request,
// sleeping connTimeout between attempts
func WaitForBrokers(ctx context.Context, brokers []string, attempts int, connTimeout time.Duration, logger *zap.Logger) error {
	if len(brokers) == 0 {
		return errors.New("kafka: no brokers configured")
	}
	if attempts <= 0 {
		attempts = defaultConnAttempts
	}
	if connTimeout <= 0 {
		connTimeout = defaultConnTimeout
	}

	var err error
	for left := attempts; left > 0; left-- {
		if err = ping(ctx, brokers[0]); err == nil {
			return nil
		}
		logger.Info("Kafka is not reachable yet, retrying",
			zap.String("broker", brokers[0]),
			zap.Int("attempts_left", left-1),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(connTimeout):
		}
	}
	return fmt.Errorf("kafka: broker unreachable after %d attempts: %w", attempts, err)
}

func ping(ctx context.Context, broker string) error {
	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return fmt.Errorf("dial %s: %w", broker, err)
	}
	defer conn.Close()

	if _, err := conn.Brokers(); err != nil {
		return fmt.Errorf("list brokers: %w", err)
	}
	return nil
}
