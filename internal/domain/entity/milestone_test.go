package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewMilestone(t *testing.T) {
	writeDay := time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		date   time.Time
		note   string
		expect MilestoneStatus
	}{
		{"no date", time.Time{}, "", StatusUnscheduled},
		{"done without date", time.Time{}, "Lista", StatusDone},
		{"done synonym with accents", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), " Completádo ", StatusDone},
		{"past and not done", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), "en trámite", StatusOverdue},
		{"same day", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "", StatusPending},
		{"future", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "pendiente", StatusPending},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMilestone(tc.date, tc.note, writeDay)
			assert.Equal(t, tc.expect, m.Status)
		})
	}
}

func TestShipmentValidate(t *testing.T) {
	s := &Shipment{}
	err := s.Validate()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "id, client, mode, direction, arrival_date")

	s = &Shipment{
		ID:          "A1",
		Client:      "ACME",
		Mode:        ModeAir,
		Direction:   DirectionImport,
		ArrivalDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	assert.NoError(t, s.Validate())
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), s.CertificationDueDate())
	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), s.ReleaseDueDate())
}

func TestParseEnums(t *testing.T) {
	m, err := ParseTransportMode("Marítimo")
	assert.NoError(t, err)
	assert.Equal(t, ModeMaritime, m)

	m, err = ParseTransportMode("rail")
	assert.NoError(t, err)
	assert.Equal(t, ModeRail, m)

	_, err = ParseTransportMode("pipeline")
	assert.ErrorIs(t, err, ErrValidation)

	d, err := ParseDirection("Exportación")
	assert.NoError(t, err)
	assert.Equal(t, DirectionExport, d)

	_, err = ParseDirection("transit")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDayHelpers(t *testing.T) {
	a := time.Date(2024, 3, 3, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, 3, 10, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 7, DaysBetween(a, b))
	assert.Equal(t, -7, DaysBetween(b, a))
	assert.True(t, SameDay(a, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)))

	d, err := ParseDay("2024-03-10")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDay("10/03/2024")
	assert.Error(t, err)
}
