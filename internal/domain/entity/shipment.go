package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrShipmentNotFound is returned when no shipment exists for a consecutive-id
	ErrShipmentNotFound = errors.New("shipment not found")
	// ErrValidation wraps every user input rejection
	ErrValidation = errors.New("validation failed")
)

// Scheduling offsets relative to the arrival date
const (
	CertificationLeadDays = 7
	ReleaseLeadDays       = 2
)

// TransportMode is the way the cargo travels
type TransportMode string

const (
	ModeMaritime TransportMode = "Maritime"
	ModeAir      TransportMode = "Air"
	ModeLand     TransportMode = "Land"
	ModeRail     TransportMode = "Rail"
)

// Direction tells whether the operation is an import or an export
type Direction string

const (
	DirectionImport Direction = "Import"
	DirectionExport Direction = "Export"
)

var modeAliases = map[string]TransportMode{
	"maritime":    ModeMaritime,
	"maritimo":    ModeMaritime,
	"sea":         ModeMaritime,
	"air":         ModeAir,
	"aereo":       ModeAir,
	"land":        ModeLand,
	"terrestre":   ModeLand,
	"rail":        ModeRail,
	"ferroviario": ModeRail,
}

var directionAliases = map[string]Direction{
	"import":      DirectionImport,
	"importacion": DirectionImport,
	"export":      DirectionExport,
	"exportacion": DirectionExport,
}

// ParseTransportMode accepts the English names and the Spanish labels used on the register
func ParseTransportMode(s string) (TransportMode, error) {
	if m, ok := modeAliases[normalizeText(s)]; ok {
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown transport mode %q", ErrValidation, s)
}

// ParseDirection accepts the English names and the Spanish labels used on the register
func ParseDirection(s string) (Direction, error) {
	if d, ok := directionAliases[normalizeText(s)]; ok {
		return d, nil
	}
	return "", fmt.Errorf("%w: unknown direction %q", ErrValidation, s)
}

// Shipment is one registered freight operation, keyed by its consecutive-id
type Shipment struct {
	ID            string        `json:"id"`
	Mode          TransportMode `json:"mode"`
	Direction     Direction     `json:"direction"`
	Client        string        `json:"client"`
	ArrivalDate   time.Time     `json:"arrival_date"`
	Certification Milestone     `json:"certification"`
	Release       Milestone     `json:"release"`
}

// CertificationDueDate is the day freight certification has to be filed
func (s *Shipment) CertificationDueDate() time.Time {
	return Day(s.ArrivalDate).AddDate(0, 0, -CertificationLeadDays)
}

// ReleaseDueDate is the day the release request has to be filed
func (s *Shipment) ReleaseDueDate() time.Time {
	return Day(s.ArrivalDate).AddDate(0, 0, -ReleaseLeadDays)
}

// Validate ensures the shipment carries every required field
func (s *Shipment) Validate() error {
	var missing []string
	if strings.TrimSpace(s.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(s.Client) == "" {
		missing = append(missing, "client")
	}
	if s.Mode == "" {
		missing = append(missing, "mode")
	}
	if s.Direction == "" {
		missing = append(missing, "direction")
	}
	if s.ArrivalDate.IsZero() {
		missing = append(missing, "arrival_date")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}
