package service

import (
	"context"
	"fmt"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/damon-houk/freight-ops-tracker/internal/domain/repository"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/cache"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/logger"
)

// Trend compares tomorrow's TRM with today's
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// TRMSummary is today's and tomorrow's TRM after manual overrides
type TRMSummary struct {
	Today    entity.Rate
	Tomorrow entity.Rate
	Trend    Trend
}

// TRMService answers rate lookups and invoicing advice for the HTTP layer
type TRMService struct {
	resolver Resolver
	advisor  Advisor
	history  repository.RateHistoryRepository
	logger   logger.Logger
	now      func() time.Time
}

// NewTRMService creates a new TRM service
func NewTRMService(resolver Resolver, advisor Advisor, history repository.RateHistoryRepository, log logger.Logger) *TRMService {
	return &TRMService{
		resolver: resolver,
		advisor:  advisor,
		history:  history,
		logger:   logger.OrDefault(log),
		now:      time.Now,
	}
}

// Rate resolves the TRM for one date
func (s *TRMService) Rate(ctx context.Context, date time.Time) entity.Rate {
	return s.resolver.Resolve(ctx, cache.NewRateCache(0), date)
}

// Summary resolves today's and tomorrow's TRM. A nonzero override replaces the
// resolved value for its day.
func (s *TRMService) Summary(ctx context.Context, ov Overrides) TRMSummary {
	today := entity.Day(s.now())
	rc := cache.NewRateCache(0)

	summary := TRMSummary{
		Today:    s.resolver.Resolve(ctx, rc, today),
		Tomorrow: s.resolver.Resolve(ctx, rc, today.AddDate(0, 0, 1)),
	}
	if ov.Today != 0 {
		summary.Today = entity.Rate{Date: today, Value: ov.Today, Source: entity.SourceManual}
	}
	if ov.Tomorrow != 0 {
		summary.Tomorrow = entity.Rate{Date: today.AddDate(0, 0, 1), Value: ov.Tomorrow, Source: entity.SourceManual}
	}

	switch diff := summary.Tomorrow.Value - summary.Today.Value; {
	case diff > 0:
		summary.Trend = TrendUp
	case diff < 0:
		summary.Trend = TrendDown
	default:
		summary.Trend = TrendFlat
	}
	return summary
}

// Advice suggests the invoicing day for an arrival date
func (s *TRMService) Advice(ctx context.Context, arrival time.Time, ov Overrides) Advice {
	if ov.Reference.IsZero() {
		ov.Reference = entity.Day(s.now())
	}
	return s.advisor.Suggest(ctx, cache.NewRateCache(0), arrival, ov)
}

// History returns every fetched TRM sample in append order
func (s *TRMService) History(ctx context.Context) ([]entity.RateSample, error) {
	samples, err := s.history.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read TRM history: %w", err)
	}
	return samples, nil
}
