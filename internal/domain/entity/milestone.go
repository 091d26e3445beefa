package entity

import (
	"strings"
	"time"
)

// MilestoneStatus is fixed when a shipment is written, never re-derived from free text on read
type MilestoneStatus string

const (
	StatusPending     MilestoneStatus = "Pending"
	StatusDone        MilestoneStatus = "Done"
	StatusOverdue     MilestoneStatus = "Overdue"
	StatusUnscheduled MilestoneStatus = "Unscheduled"
)

// doneSynonyms are the free-text answers staff use to mean a milestone is finished
var doneSynonyms = map[string]struct{}{
	"lista":      {},
	"listo":      {},
	"completado": {},
	"completada": {},
	"completo":   {},
	"hecho":      {},
	"hecha":      {},
	"terminado":  {},
	"terminada":  {},
	"finalizado": {},
	"finalizada": {},
	"realizado":  {},
	"realizada":  {},
	"done":       {},
	"ok":         {},
}

// Milestone is a process step scheduled before arrival (freight certification, release request)
type Milestone struct {
	Date   time.Time       `json:"date,omitempty"`
	Status MilestoneStatus `json:"status"`
	Note   string          `json:"note,omitempty"`
}

// NewMilestone assigns the status for a milestone written on writeDay
func NewMilestone(date time.Time, note string, writeDay time.Time) Milestone {
	m := Milestone{Note: strings.TrimSpace(note)}
	if !date.IsZero() {
		m.Date = Day(date)
	}

	switch {
	case IsDoneText(note):
		m.Status = StatusDone
	case m.Date.IsZero():
		m.Status = StatusUnscheduled
	case m.Date.Before(Day(writeDay)):
		m.Status = StatusOverdue
	default:
		m.Status = StatusPending
	}
	return m
}

// IsDoneText reports whether the free text is one of the accepted "done" synonyms
func IsDoneText(s string) bool {
	_, ok := doneSynonyms[normalizeText(s)]
	return ok
}

var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ñ", "n",
)

func normalizeText(s string) string {
	return strings.ToLower(accentFolder.Replace(strings.TrimSpace(s)))
}
