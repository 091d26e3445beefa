package service

import (
	"context"
	"fmt"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/damon-houk/freight-ops-tracker/internal/domain/repository"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/middleware"
)

// AlertService serves the alert list and the alert history
type AlertService struct {
	shipments repository.ShipmentRepository
	history   repository.AlertHistoryRepository
	generator *AlertGenerator
	logger    logger.Logger
	now       func() time.Time
}

// NewAlertService creates a new alert service
func NewAlertService(
	shipments repository.ShipmentRepository,
	history repository.AlertHistoryRepository,
	generator *AlertGenerator,
	log logger.Logger,
) *AlertService {
	return &AlertService{
		shipments: shipments,
		history:   history,
		generator: generator,
		logger:    logger.OrDefault(log),
		now:       time.Now,
	}
}

// Alerts returns the reminders due within the window starting today
func (s *AlertService) Alerts(ctx context.Context, w Window, ov Overrides) ([]entity.Alert, error) {
	records, err := s.shipments.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load shipments: %w", err)
	}

	today := entity.Day(s.now())
	if ov.Reference.IsZero() {
		ov.Reference = today
	}
	return s.generator.Window(ctx, records, today, w, ov), nil
}

// History returns the alert log in append order
func (s *AlertService) History(ctx context.Context) ([]entity.AlertRecord, error) {
	records, err := s.history.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read alert history: %w", err)
	}
	return records, nil
}

// Resolve marks the alert history entry at position as handled
func (s *AlertService) Resolve(ctx context.Context, position int) error {
	if position < 0 {
		return fmt.Errorf("%w: position must not be negative", entity.ErrValidation)
	}
	if err := s.history.MarkResolved(ctx, position); err != nil {
		return fmt.Errorf("failed to resolve alert %d: %w", position, err)
	}

	s.logger.Info("Alert resolved", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"position":   position,
	})
	return nil
}
