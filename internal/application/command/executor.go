// Package command runs state-changing use cases through one pipeline:
// validate, then inside a transaction load, mutate, save and schedule the
// aggregate's events for publication after commit.
package command

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/logger"
)

var tracer = otel.Tracer("github.com/wms/backend/internal/application/command")

// Publisher schedules events for delivery once the ambient transaction commits
type Publisher interface {
	Schedule(ctx context.Context, events []shared.DomainEvent)
}

// Executor carries the collaborators every command needs
type Executor struct {
	tx        shared.TransactionManager
	publisher Publisher
	validator *Validator
	logger    *zap.Logger
}

// NewExecutor creates an executor
func NewExecutor(tx shared.TransactionManager, publisher Publisher, validator *Validator, logger *zap.Logger) *Executor {
	return &Executor{tx: tx, publisher: publisher, validator: validator, logger: logger}
}

// Validate checks cmd before any side effect
func (e *Executor) Validate(cmd any) error {
	if cmd == nil {
		return nil
	}
	return e.validator.Validate(cmd)
}

// InTransaction runs fn in a transaction scope. Use it when one command
// changes several aggregates, together with Commit for each of them.
func (e *Executor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return e.tx.Run(ctx, fn)
}

// Pipeline describes one single-aggregate command
type Pipeline[A shared.AggregateRoot] struct {
	// Name labels log lines
	Name string
	// Command is validated first when set
	Command any
	// Load fetches the aggregate or constructs a new one
	Load func(ctx context.Context) (A, error)
	// Mutate applies the business operation; nil for creation commands
	Mutate func(ctx context.Context, agg A) error
	// Save persists the aggregate
	Save func(ctx context.Context, agg A) error
}

// Execute runs p and returns the persisted aggregate.
// Any error rolls the transaction back and no event leaves the process.
func Execute[A shared.AggregateRoot](ctx context.Context, e *Executor, p Pipeline[A]) (A, error) {
	var result A
	ctx, span := tracer.Start(ctx, "command "+p.Name, trace.WithAttributes(
		attribute.String("wms.command", p.Name),
		attribute.String("wms.tenant_id", logger.GetTenantID(ctx)),
	))
	defer span.End()

	if err := e.Validate(p.Command); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return result, err
	}

	err := e.tx.Run(ctx, func(txCtx context.Context) error {
		agg, err := p.Load(txCtx)
		if err != nil {
			return err
		}
		if p.Mutate != nil {
			if err := p.Mutate(txCtx, agg); err != nil {
				return err
			}
		}
		if err := Commit(txCtx, e, agg, p.Save); err != nil {
			return err
		}
		result = agg
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("wms.retryable", shared.IsRetryable(err)))
		logger.WithLogger(ctx, e.logger).Debug("Command failed",
			zap.String("command", p.Name),
			zap.Bool("retryable", shared.IsRetryable(err)),
			zap.Error(err),
		)
		var zero A
		return zero, err
	}
	span.SetAttributes(
		attribute.String("wms.aggregate_id", result.GetID()),
		attribute.Int("wms.aggregate_version", result.GetVersion()),
	)
	return result, nil
}

// Commit saves agg and hands its pending events to the publisher.
//
// The events are snapshotted before the save and the buffer is cleared only
// after it succeeds, so a failed save leaves the aggregate untouched.
func Commit[A shared.AggregateRoot](ctx context.Context, e *Executor, agg A, save func(ctx context.Context, agg A) error) error {
	events := agg.GetDomainEvents()
	if err := save(ctx, agg); err != nil {
		return err
	}
	agg.ClearDomainEvents()
	if len(events) > 0 {
		e.publisher.Schedule(ctx, events)
	}
	return nil
}
