package handler

import (
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/application/service"
	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// RegisterShipmentRequest is the body of POST /operations. Dates are YYYY-MM-DD.
type RegisterShipmentRequest struct {
	ID                string `json:"id"`
	Mode              string `json:"mode"`
	Direction         string `json:"direction"`
	Client            string `json:"client"`
	ArrivalDate       string `json:"arrival_date"`
	CertificationDate string `json:"certification_date,omitempty"`
	CertificationNote string `json:"certification_note,omitempty"`
	ReleaseDate       string `json:"release_date,omitempty"`
	ReleaseNote       string `json:"release_note,omitempty"`
}

func (r RegisterShipmentRequest) input() service.RegisterInput {
	return service.RegisterInput{
		ID:                r.ID,
		Mode:              r.Mode,
		Direction:         r.Direction,
		Client:            r.Client,
		ArrivalDate:       r.ArrivalDate,
		CertificationDate: r.CertificationDate,
		CertificationNote: r.CertificationNote,
		ReleaseDate:       r.ReleaseDate,
		ReleaseNote:       r.ReleaseNote,
	}
}

// MilestoneResponse is a milestone with its stored status
type MilestoneResponse struct {
	Date   string `json:"date,omitempty"`
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// ShipmentResponse is one stored shipment
type ShipmentResponse struct {
	ID            string            `json:"id"`
	Mode          string            `json:"mode"`
	Direction     string            `json:"direction"`
	Client        string            `json:"client"`
	ArrivalDate   string            `json:"arrival_date"`
	Certification MilestoneResponse `json:"certification"`
	Release       MilestoneResponse `json:"release"`
}

// BoardRowResponse is a shipment with its computed scheduling fields
type BoardRowResponse struct {
	ShipmentResponse
	CertificationDue string  `json:"certification_due,omitempty"`
	ReleaseDue       string  `json:"release_due,omitempty"`
	DaysToArrival    int     `json:"days_to_arrival"`
	HasTRMData       bool    `json:"has_trm_data"`
	BestInvoiceDate  string  `json:"best_invoice_date,omitempty"`
	BestTRM          float64 `json:"best_trm"`
}

// DeleteShipmentsRequest is the body of DELETE /operations
type DeleteShipmentsRequest struct {
	IDs []string `json:"ids"`
}

// DeleteShipmentsResponse reports how many of the requested ids existed
type DeleteShipmentsResponse struct {
	Removed int `json:"removed"`
}

// ImportRejection is one spreadsheet row that was not stored
type ImportRejection struct {
	Row   int    `json:"row"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

// ImportResponse summarizes a spreadsheet import
type ImportResponse struct {
	Imported int               `json:"imported"`
	Rejected []ImportRejection `json:"rejected"`
}

// AlertResponse is one reminder
type AlertResponse struct {
	Kind        string `json:"kind"`
	ShipmentID  string `json:"shipment_id"`
	Client      string `json:"client"`
	EventDate   string `json:"event_date"`
	ArrivalDate string `json:"arrival_date"`
}

// AlertRecordResponse is one alert history entry
type AlertRecordResponse struct {
	Position     int    `json:"position"`
	RegisteredAt string `json:"registered_at"`
	ShipmentID   string `json:"shipment_id"`
	Client       string `json:"client"`
	Kind         string `json:"kind"`
	EventDate    string `json:"event_date"`
	Resolved     bool   `json:"resolved"`
}

// RateResponse is a resolved TRM
type RateResponse struct {
	Date   string  `json:"date"`
	Value  float64 `json:"value"`
	Source string  `json:"source"`
}

// TRMSummaryResponse is today's and tomorrow's TRM with the trend between them
type TRMSummaryResponse struct {
	Today    RateResponse `json:"today"`
	Tomorrow RateResponse `json:"tomorrow"`
	Trend    string       `json:"trend"`
}

// AdviceResponse is the suggested invoicing day for an arrival date
type AdviceResponse struct {
	ArrivalDate string         `json:"arrival_date"`
	HasData     bool           `json:"has_data"`
	BestDate    string         `json:"best_date,omitempty"`
	BestRate    float64        `json:"best_rate"`
	Candidates  []RateResponse `json:"candidates"`
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(entity.DateLayout)
}

func toMilestoneResponse(m entity.Milestone) MilestoneResponse {
	return MilestoneResponse{
		Date:   formatDay(m.Date),
		Status: string(m.Status),
		Note:   m.Note,
	}
}

func toShipmentResponse(s *entity.Shipment) ShipmentResponse {
	return ShipmentResponse{
		ID:            s.ID,
		Mode:          string(s.Mode),
		Direction:     string(s.Direction),
		Client:        s.Client,
		ArrivalDate:   formatDay(s.ArrivalDate),
		Certification: toMilestoneResponse(s.Certification),
		Release:       toMilestoneResponse(s.Release),
	}
}

func toBoardRowResponse(row service.BoardRow) BoardRowResponse {
	return BoardRowResponse{
		ShipmentResponse: toShipmentResponse(row.Shipment),
		CertificationDue: formatDay(row.CertificationDue),
		ReleaseDue:       formatDay(row.ReleaseDue),
		DaysToArrival:    row.DaysToArrival,
		HasTRMData:       row.Advice.HasData,
		BestInvoiceDate:  formatDay(row.Advice.BestDate),
		BestTRM:          row.Advice.BestRate,
	}
}

func toAlertResponses(alerts []entity.Alert) []AlertResponse {
	out := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, AlertResponse{
			Kind:        string(a.Kind),
			ShipmentID:  a.ShipmentID,
			Client:      a.Client,
			EventDate:   formatDay(a.EventDate),
			ArrivalDate: formatDay(a.ArrivalDate),
		})
	}
	return out
}

func toAlertRecordResponses(records []entity.AlertRecord) []AlertRecordResponse {
	out := make([]AlertRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, AlertRecordResponse{
			Position:     r.Position,
			RegisteredAt: r.RegisteredAt.UTC().Format(time.RFC3339),
			ShipmentID:   r.ShipmentID,
			Client:       r.Client,
			Kind:         string(r.Kind),
			EventDate:    formatDay(r.EventDate),
			Resolved:     r.Resolved,
		})
	}
	return out
}

func toRateResponse(r entity.Rate) RateResponse {
	return RateResponse{
		Date:   formatDay(r.Date),
		Value:  r.Value,
		Source: string(r.Source),
	}
}

func toAdviceResponse(a service.Advice) AdviceResponse {
	resp := AdviceResponse{
		ArrivalDate: formatDay(a.ArrivalDate),
		HasData:     a.HasData,
		BestDate:    formatDay(a.BestDate),
		BestRate:    a.BestRate,
		Candidates:  make([]RateResponse, 0, len(a.Candidates)),
	}
	for _, c := range a.Candidates {
		resp.Candidates = append(resp.Candidates, toRateResponse(c))
	}
	return resp
}
