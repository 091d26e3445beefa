// internal/domain/repository/rate_history_repository.go
package repository

import (
	"context"

	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
)

// RateHistoryRepository is the append-only log of fetched TRM values
type RateHistoryRepository interface {
	// Append records a sample after every successful fetch
	Append(ctx context.Context, sample entity.RateSample) error

	// Last returns the most recently appended sample, or nil when the log is empty
	Last(ctx context.Context) (*entity.RateSample, error)

	// All returns every sample in append order
	All(ctx context.Context) ([]entity.RateSample, error)
}
