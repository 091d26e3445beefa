package service

import (
	"context"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/cache"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/middleware"
)

// Overrides are manual TRM values typed in by staff for "today" and "tomorrow".
// Zero means not supplied. Reference is the calendar day the values were typed for.
type Overrides struct {
	Today     float64
	Tomorrow  float64
	Reference time.Time
}

// Candidate slots around the arrival date
const (
	SlotDayBefore = iota
	SlotArrival
	SlotDayAfter
	slotCount
)

// Advice is the suggested invoicing day for one arrival date
type Advice struct {
	ArrivalDate time.Time              `json:"arrival_date"`
	BestDate    time.Time              `json:"best_date"`
	BestRate    float64                `json:"best_rate"`
	HasData     bool                   `json:"has_data"`
	Candidates  [slotCount]entity.Rate `json:"candidates"`
}

// Advisor suggests the invoicing day for an arrival date
type Advisor interface {
	Suggest(ctx context.Context, rc *cache.RateCache, arrival time.Time, ov Overrides) Advice
}

// DayAdvisor compares the TRM on the day before, the day of and the day after arrival
type DayAdvisor struct {
	resolver       Resolver
	alignOverrides bool
	logger         logger.Logger
}

var _ Advisor = (*DayAdvisor)(nil)

// NewDayAdvisor creates a new day advisor. With alignOverrides false the manual
// values overwrite the arrival and day-after slots whatever the arrival date is;
// with it true they only replace the slots whose dates match Overrides.Reference
// and the day after it.
func NewDayAdvisor(resolver Resolver, alignOverrides bool, log logger.Logger) *DayAdvisor {
	return &DayAdvisor{
		resolver:       resolver,
		alignOverrides: alignOverrides,
		logger:         logger.OrDefault(log),
	}
}

// Suggest picks the candidate day with the strictly highest positive TRM.
// Ties keep the earliest slot.
func (a *DayAdvisor) Suggest(ctx context.Context, rc *cache.RateCache, arrival time.Time, ov Overrides) Advice {
	arrival = entity.Day(arrival)
	advice := Advice{ArrivalDate: arrival}

	// Slots resolve in order so a fallback only sees the history written by earlier days.
	for slot := 0; slot < slotCount; slot++ {
		date := arrival.AddDate(0, 0, slot-SlotArrival)
		rate := a.resolver.Resolve(ctx, rc, date)
		rate.Date = date
		advice.Candidates[slot] = rate
	}

	a.applyOverrides(&advice, ov)

	for _, c := range advice.Candidates {
		if !c.Valid() {
			continue
		}
		if !advice.HasData || c.Value > advice.BestRate {
			advice.HasData = true
			advice.BestDate = c.Date
			advice.BestRate = c.Value
		}
	}

	a.logger.Debug("Invoicing day suggested", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"arrival":    arrival.Format(entity.DateLayout),
		"has_data":   advice.HasData,
		"best_date":  formatOptionalDay(advice.BestDate),
		"best_rate":  advice.BestRate,
	})

	return advice
}

func (a *DayAdvisor) applyOverrides(advice *Advice, ov Overrides) {
	manual := func(slot int, value float64) {
		advice.Candidates[slot] = entity.Rate{
			Date:   advice.Candidates[slot].Date,
			Value:  value,
			Source: entity.SourceManual,
		}
	}

	if !a.alignOverrides {
		if ov.Today != 0 {
			manual(SlotArrival, ov.Today)
		}
		if ov.Tomorrow != 0 {
			manual(SlotDayAfter, ov.Tomorrow)
		}
		return
	}

	if ov.Reference.IsZero() {
		return
	}
	today := entity.Day(ov.Reference)
	tomorrow := today.AddDate(0, 0, 1)
	for slot, c := range advice.Candidates {
		switch {
		case ov.Today != 0 && c.Date.Equal(today):
			manual(slot, ov.Today)
		case ov.Tomorrow != 0 && c.Date.Equal(tomorrow):
			manual(slot, ov.Tomorrow)
		}
	}
}

func formatOptionalDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(entity.DateLayout)
}
