package event

import (
	"context"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/logger"
)

// Enrich attaches metadata to event exactly once.
// An event that already carries metadata is returned as is; otherwise a copy
// carrying m is returned and event itself is left untouched.
func Enrich(event shared.DomainEvent, m shared.EventMetadata) shared.DomainEvent {
	if event.Metadata() != nil {
		return event
	}
	return event.WithMetadata(m)
}

// MetadataFromContext collects correlation, causation and actor ids from ctx
func MetadataFromContext(ctx context.Context) shared.EventMetadata {
	return shared.EventMetadata{
		CorrelationID: logger.GetCorrelationID(ctx),
		CausationID:   logger.GetCausationID(ctx),
		UserID:        logger.GetUserID(ctx),
	}
}

// EnrichAll enriches every event with the metadata carried by ctx, keeping order
func EnrichAll(ctx context.Context, events []shared.DomainEvent) []shared.DomainEvent {
	m := MetadataFromContext(ctx)
	out := make([]shared.DomainEvent, len(events))
	for i, e := range events {
		out[i] = Enrich(e, m)
	}
	return out
}
