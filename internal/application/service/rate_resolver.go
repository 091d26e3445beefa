// internal/application/service/rate_resolver.go

// Package service holds the tracker's application logic
package service

import (
	"context"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/damon-houk/freight-ops-tracker/internal/domain/repository"
	domain "github.com/damon-houk/freight-ops-tracker/internal/domain/service"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/cache"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/metrics"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/middleware"
)

// Resolver returns the TRM for a date using the caller's cache
type Resolver interface {
	Resolve(ctx context.Context, rc *cache.RateCache, date time.Time) entity.Rate
}

// RateResolver resolves a TRM by cache, then the official source, then the last known value
type RateResolver struct {
	source  domain.RateSource
	history repository.RateHistoryRepository
	logger  logger.Logger
}

var _ Resolver = (*RateResolver)(nil)

// NewRateResolver creates a new rate resolver
func NewRateResolver(source domain.RateSource, history repository.RateHistoryRepository, log logger.Logger) *RateResolver {
	return &RateResolver{
		source:  source,
		history: history,
		logger:  logger.OrDefault(log),
	}
}

// Resolve never fails: a missing value is reported as a zero Rate with SourceNone
func (r *RateResolver) Resolve(ctx context.Context, rc *cache.RateCache, date time.Time) entity.Rate {
	day := entity.Day(date)
	requestID := middleware.GetRequestID(ctx)

	if v, ok := rc.Get(day); ok {
		return r.resolved(entity.Rate{Date: day, Value: v, Source: entity.SourceCache})
	}

	outcome := r.source.FetchRate(ctx, day)
	if outcome.OK() && outcome.Value > 0 {
		rc.Put(day, outcome.Value)
		if err := r.history.Append(ctx, entity.RateSample{Date: day, Value: outcome.Value}); err != nil {
			r.logger.Error("Failed to append TRM history", map[string]interface{}{
				"request_id": requestID,
				"date":       day.Format(entity.DateLayout),
				"error":      err.Error(),
			})
		}
		return r.resolved(entity.Rate{Date: day, Value: outcome.Value, Source: entity.SourceFetch})
	}

	fields := map[string]interface{}{
		"request_id": requestID,
		"date":       day.Format(entity.DateLayout),
		"outcome":    string(outcome.Kind),
	}
	if outcome.Err != nil {
		fields["error"] = outcome.Err.Error()
	}
	r.logger.Info("Official TRM unavailable, falling back to last known value", fields)

	last, err := r.history.Last(ctx)
	if err != nil {
		r.logger.Error("Failed to read TRM history", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		return r.resolved(entity.Rate{Date: day, Source: entity.SourceNone})
	}
	if last == nil || last.Value <= 0 {
		return r.resolved(entity.Rate{Date: day, Source: entity.SourceNone})
	}

	return r.resolved(entity.Rate{Date: day, Value: last.Value, Source: entity.SourceHistory})
}

func (r *RateResolver) resolved(rate entity.Rate) entity.Rate {
	metrics.IncTRMResolution(string(rate.Source))
	return rate
}
