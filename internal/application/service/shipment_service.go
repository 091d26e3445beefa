package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/damon-houk/freight-ops-tracker/internal/domain/repository"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/cache"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/middleware"
)

// RegisterInput is a shipment as typed on the register form. Dates are YYYY-MM-DD;
// the milestone notes are free text ("lista", "pendiente", ...).
type RegisterInput struct {
	ID                string
	Mode              string
	Direction         string
	Client            string
	ArrivalDate       string
	CertificationDate string
	CertificationNote string
	ReleaseDate       string
	ReleaseNote       string
}

// BoardRow is a shipment with its computed scheduling fields
type BoardRow struct {
	Shipment         *entity.Shipment
	CertificationDue time.Time
	ReleaseDue       time.Time
	DaysToArrival    int
	Advice           Advice
}

// ShipmentService manages the shipment register
type ShipmentService struct {
	repo      repository.ShipmentRepository
	history   repository.AlertHistoryRepository
	advisor   Advisor
	generator *AlertGenerator
	logger    logger.Logger
	now       func() time.Time
}

// NewShipmentService creates a new shipment service
func NewShipmentService(
	repo repository.ShipmentRepository,
	history repository.AlertHistoryRepository,
	advisor Advisor,
	generator *AlertGenerator,
	log logger.Logger,
) *ShipmentService {
	return &ShipmentService{
		repo:      repo,
		history:   history,
		advisor:   advisor,
		generator: generator,
		logger:    logger.OrDefault(log),
		now:       time.Now,
	}
}

// Register validates the input, assigns milestone statuses and upserts the shipment.
// The shipment's scheduled events are then appended to the alert history; a history
// failure is logged and does not undo the write.
func (s *ShipmentService) Register(ctx context.Context, in RegisterInput, ov Overrides) (*entity.Shipment, error) {
	requestID := middleware.GetRequestID(ctx)
	today := entity.Day(s.now())

	shipment, err := buildShipment(in, today)
	if err != nil {
		s.logger.Warn("Shipment rejected", map[string]interface{}{
			"request_id": requestID,
			"id":         in.ID,
			"error":      err.Error(),
		})
		return nil, err
	}

	if err := s.repo.Upsert(ctx, shipment); err != nil {
		return nil, fmt.Errorf("failed to save shipment %s: %w", shipment.ID, err)
	}

	s.logger.Info("Shipment registered", map[string]interface{}{
		"request_id":           requestID,
		"id":                   shipment.ID,
		"client":               shipment.Client,
		"arrival_date":         shipment.ArrivalDate.Format(entity.DateLayout),
		"certification_status": string(shipment.Certification.Status),
		"release_status":       string(shipment.Release.Status),
	})

	if ov.Reference.IsZero() {
		ov.Reference = today
	}
	events := s.generator.Scheduled(ctx, shipment, ov)
	records := make([]entity.AlertRecord, 0, len(events))
	registeredAt := s.now().UTC()
	for _, e := range events {
		records = append(records, entity.AlertRecord{
			RegisteredAt: registeredAt,
			ShipmentID:   e.ShipmentID,
			Client:       e.Client,
			Kind:         e.Kind,
			EventDate:    e.EventDate,
		})
	}
	if err := s.history.Append(ctx, records); err != nil {
		s.logger.Error("Failed to append alert history", map[string]interface{}{
			"request_id": requestID,
			"id":         shipment.ID,
			"error":      err.Error(),
		})
	}

	return shipment, nil
}

func buildShipment(in RegisterInput, today time.Time) (*entity.Shipment, error) {
	shipment := &entity.Shipment{
		ID:     strings.TrimSpace(in.ID),
		Client: strings.TrimSpace(in.Client),
	}

	var err error
	if strings.TrimSpace(in.Mode) != "" {
		if shipment.Mode, err = entity.ParseTransportMode(in.Mode); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(in.Direction) != "" {
		if shipment.Direction, err = entity.ParseDirection(in.Direction); err != nil {
			return nil, err
		}
	}
	if shipment.ArrivalDate, err = parseOptionalDay("arrival_date", in.ArrivalDate); err != nil {
		return nil, err
	}
	if err := shipment.Validate(); err != nil {
		return nil, err
	}

	certDate, err := parseOptionalDay("certification_date", in.CertificationDate)
	if err != nil {
		return nil, err
	}
	releaseDate, err := parseOptionalDay("release_date", in.ReleaseDate)
	if err != nil {
		return nil, err
	}
	shipment.Certification = entity.NewMilestone(certDate, in.CertificationNote, today)
	shipment.Release = entity.NewMilestone(releaseDate, in.ReleaseNote, today)

	return shipment, nil
}

func parseOptionalDay(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	d, err := entity.ParseDay(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD, got %q", entity.ErrValidation, field, value)
	}
	return d, nil
}

// Get returns one shipment by consecutive-id
func (s *ShipmentService) Get(ctx context.Context, id string) (*entity.Shipment, error) {
	return s.repo.FindByID(ctx, strings.TrimSpace(id))
}

// List returns the register sorted by consecutive-id
func (s *ShipmentService) List(ctx context.Context) ([]*entity.Shipment, error) {
	shipments, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments: %w", err)
	}
	sort.SliceStable(shipments, func(i, j int) bool {
		return shipments[i].ID < shipments[j].ID
	})
	return shipments, nil
}

// Board lists the register with due dates, days to arrival and the suggested invoicing day
func (s *ShipmentService) Board(ctx context.Context, ov Overrides) ([]BoardRow, error) {
	shipments, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	today := entity.Day(s.now())
	if ov.Reference.IsZero() {
		ov.Reference = today
	}

	rc := cache.NewRateCache(0)
	advice := make(map[time.Time]Advice)
	rows := make([]BoardRow, 0, len(shipments))
	for _, sh := range shipments {
		row := BoardRow{Shipment: sh}
		if !sh.ArrivalDate.IsZero() {
			arrival := entity.Day(sh.ArrivalDate)
			row.CertificationDue = sh.CertificationDueDate()
			row.ReleaseDue = sh.ReleaseDueDate()
			row.DaysToArrival = entity.DaysBetween(today, arrival)

			a, ok := advice[arrival]
			if !ok {
				a = s.advisor.Suggest(ctx, rc, arrival, ov)
				advice[arrival] = a
			}
			row.Advice = a
		}
		rows = append(rows, row)
	}

	s.logger.Debug("Board built", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"rows":       len(rows),
		"rates":      rc.Size(),
	})
	return rows, nil
}

// Delete removes the given consecutive-ids and returns how many existed
func (s *ShipmentService) Delete(ctx context.Context, ids []string) (int, error) {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			clean = append(clean, id)
		}
	}
	if len(clean) == 0 {
		return 0, fmt.Errorf("%w: no ids to delete", entity.ErrValidation)
	}

	removed, err := s.repo.Delete(ctx, clean)
	if err != nil {
		return 0, fmt.Errorf("failed to delete shipments: %w", err)
	}

	s.logger.Info("Shipments deleted", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"requested":  len(clean),
		"removed":    removed,
	})
	return removed, nil
}
