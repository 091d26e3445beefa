package repository

import (
	"context"

	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
)

// AlertHistoryRepository is the append-only alert log written on registration
type AlertHistoryRepository interface {
	Append(ctx context.Context, records []entity.AlertRecord) error

	// All returns the log in append order with Position set to each row's index
	All(ctx context.Context) ([]entity.AlertRecord, error)

	// MarkResolved flips the Resolved flag of the row at position
	MarkResolved(ctx context.Context, position int) error
}
