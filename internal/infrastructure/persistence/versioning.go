package persistence

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/shared"
)

// saveVersioned writes an aggregate with optimistic locking.
//
// Version 0 inserts row with version 1. Any other version updates the row
// only while its stored version still equals the aggregate's; zero affected
// rows means another writer got there first. On success the aggregate carries
// the new version.
func saveVersioned(q *gorm.DB, agg shared.AggregateRoot, aggregateType string, row any, setRowVersion func(int), updates map[string]any) error {
	current := agg.GetVersion()

	if current == 0 {
		setRowVersion(1)
		if err := q.Create(row).Error; err != nil {
			return translateError(err, aggregateType, agg.GetID())
		}
		agg.SetVersion(1)
		return nil
	}

	next := current + 1
	updates["version"] = next
	updates["updated_at"] = agg.GetUpdatedAt()

	result := q.Where("id = ? AND version = ?", agg.GetID(), current).Updates(updates)
	if result.Error != nil {
		return translateError(result.Error, aggregateType, agg.GetID())
	}
	if result.RowsAffected == 0 {
		return shared.ConcurrencyConflict(aggregateType, agg.GetID(), current)
	}

	agg.SetVersion(next)
	return nil
}

// translateError maps gorm sentinel errors onto domain errors
func translateError(err error, aggregateType, id string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewDomainError(shared.ErrNotFound.Code, fmt.Sprintf("%s %s not found", aggregateType, id))
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewDomainError(shared.ErrAlreadyExists.Code, fmt.Sprintf("%s %s already exists", aggregateType, id))
	default:
		return fmt.Errorf("persist %s %s: %w", aggregateType, id, err)
	}
}
