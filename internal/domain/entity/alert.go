package entity

import (
	"errors"
	"time"
)

// AlertKind names the reminder being raised
type AlertKind string

const (
	AlertArrivalToday     AlertKind = "ArrivalToday"
	AlertCertificationDue AlertKind = "CertificationDue"
	AlertReleaseDue       AlertKind = "ReleaseDue"
	AlertInvoiceDay       AlertKind = "InvoiceDay"
)

// Alert is a transient reminder derived from a shipment and a reference day
type Alert struct {
	Kind        AlertKind `json:"kind"`
	ShipmentID  string    `json:"shipment_id"`
	Client      string    `json:"client"`
	EventDate   time.Time `json:"event_date"`
	ArrivalDate time.Time `json:"arrival_date"`
}

// AlertRecord is one row of the append-only alert history
type AlertRecord struct {
	Position     int       `json:"position"`
	RegisteredAt time.Time `json:"registered_at"`
	ShipmentID   string    `json:"shipment_id"`
	Client       string    `json:"client"`
	Kind         AlertKind `json:"kind"`
	EventDate    time.Time `json:"event_date"`
	Resolved     bool      `json:"resolved"`
}

// ErrAlertRecordNotFound is returned when no alert history row exists at a position
var ErrAlertRecordNotFound = errors.New("alert history entry not found")
