package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/cache"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/metrics"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/middleware"
)

// Window selects how far ahead the alert list looks
type Window string

const (
	WindowToday Window = "today"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowAll   Window = "all"
)

// windowDays is the number of calendar days each bounded window covers, today included
var windowDays = map[Window]int{
	WindowToday: 1,
	WindowWeek:  7,
	WindowMonth: 30,
}

// ParseWindow maps a query value to a Window; empty means today
func ParseWindow(s string) (Window, error) {
	w := Window(strings.ToLower(strings.TrimSpace(s)))
	if w == "" {
		return WindowToday, nil
	}
	if _, ok := windowDays[w]; ok || w == WindowAll {
		return w, nil
	}
	return "", fmt.Errorf("%w: unknown alert window %q", entity.ErrValidation, s)
}

// AlertGenerator derives reminders from the shipment register
type AlertGenerator struct {
	advisor Advisor
	logger  logger.Logger
}

// NewAlertGenerator creates a new alert generator
func NewAlertGenerator(advisor Advisor, log logger.Logger) *AlertGenerator {
	return &AlertGenerator{
		advisor: advisor,
		logger:  logger.OrDefault(log),
	}
}

// run carries the per-generation state: one rate cache and one advice per arrival date
type run struct {
	ctx     context.Context
	rc      *cache.RateCache
	ov      Overrides
	advisor Advisor
	advice  map[time.Time]Advice
}

func (g *AlertGenerator) newRun(ctx context.Context, ov Overrides) *run {
	return &run{
		ctx:     ctx,
		rc:      cache.NewRateCache(0),
		ov:      ov,
		advisor: g.advisor,
		advice:  make(map[time.Time]Advice),
	}
}

func (r *run) adviceFor(arrival time.Time) Advice {
	if a, ok := r.advice[arrival]; ok {
		return a
	}
	a := r.advisor.Suggest(r.ctx, r.rc, arrival, r.ov)
	r.advice[arrival] = a
	return a
}

// Generate returns the alerts due on today, sorted by event date. Records without
// a usable arrival date are skipped.
func (g *AlertGenerator) Generate(ctx context.Context, records []*entity.Shipment, today time.Time, ov Overrides) []entity.Alert {
	return g.Window(ctx, records, today, WindowToday, ov)
}

// Window returns the alerts due on each day of the window starting at today, or
// every scheduled event for WindowAll
func (g *AlertGenerator) Window(ctx context.Context, records []*entity.Shipment, today time.Time, w Window, ov Overrides) []entity.Alert {
	r := g.newRun(ctx, ov)
	alerts := make([]entity.Alert, 0)

	if w == WindowAll {
		for _, rec := range records {
			alerts = append(alerts, r.scheduled(rec)...)
		}
	} else {
		days, ok := windowDays[w]
		if !ok {
			days = 1
		}
		start := entity.Day(today)
		for i := 0; i < days; i++ {
			day := start.AddDate(0, 0, i)
			for _, rec := range records {
				alerts = append(alerts, r.dueOn(rec, day)...)
			}
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].EventDate.Before(alerts[j].EventDate)
	})

	g.record(ctx, w, alerts)
	return alerts
}

// Scheduled lists every event of one record at its own date, sorted by date
func (g *AlertGenerator) Scheduled(ctx context.Context, rec *entity.Shipment, ov Overrides) []entity.Alert {
	alerts := g.newRun(ctx, ov).scheduled(rec)
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].EventDate.Before(alerts[j].EventDate)
	})
	return alerts
}

// dueOn checks one record against one day in kind order: arrival, certification, release, invoice
func (r *run) dueOn(rec *entity.Shipment, day time.Time) []entity.Alert {
	if rec == nil || rec.ArrivalDate.IsZero() {
		return nil
	}
	arrival := entity.Day(rec.ArrivalDate)

	var alerts []entity.Alert
	if arrival.Equal(day) {
		alerts = append(alerts, newAlert(entity.AlertArrivalToday, rec, day))
	}
	if rec.CertificationDueDate().Equal(day) {
		alerts = append(alerts, newAlert(entity.AlertCertificationDue, rec, day))
	}
	if rec.ReleaseDueDate().Equal(day) {
		alerts = append(alerts, newAlert(entity.AlertReleaseDue, rec, day))
	}

	// the suggested day is always within one day of arrival
	if d := entity.DaysBetween(day, arrival); d >= -1 && d <= 1 {
		advice := r.adviceFor(arrival)
		if advice.HasData && advice.BestDate.Equal(day) {
			alerts = append(alerts, newAlert(entity.AlertInvoiceDay, rec, day))
		}
	}
	return alerts
}

// scheduled lists every event of a record at its own date
func (r *run) scheduled(rec *entity.Shipment) []entity.Alert {
	if rec == nil || rec.ArrivalDate.IsZero() {
		return nil
	}
	arrival := entity.Day(rec.ArrivalDate)

	alerts := []entity.Alert{
		newAlert(entity.AlertArrivalToday, rec, arrival),
		newAlert(entity.AlertCertificationDue, rec, rec.CertificationDueDate()),
		newAlert(entity.AlertReleaseDue, rec, rec.ReleaseDueDate()),
	}
	if advice := r.adviceFor(arrival); advice.HasData {
		alerts = append(alerts, newAlert(entity.AlertInvoiceDay, rec, advice.BestDate))
	}
	return alerts
}

func newAlert(kind entity.AlertKind, rec *entity.Shipment, eventDate time.Time) entity.Alert {
	return entity.Alert{
		Kind:        kind,
		ShipmentID:  rec.ID,
		Client:      rec.Client,
		EventDate:   eventDate,
		ArrivalDate: entity.Day(rec.ArrivalDate),
	}
}

func (g *AlertGenerator) record(ctx context.Context, w Window, alerts []entity.Alert) {
	byKind := make(map[entity.AlertKind]int)
	for _, a := range alerts {
		byKind[a.Kind]++
	}
	for kind, n := range byKind {
		metrics.AddAlerts(string(kind), n)
	}

	g.logger.Info("Alerts generated", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"window":     string(w),
		"count":      len(alerts),
	})
}
