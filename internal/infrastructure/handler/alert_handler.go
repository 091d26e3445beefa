package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/application/service"
	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/export"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/metrics"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// AlertHandler serves the alert list, the alert history and the PDF report
type AlertHandler struct {
	service *service.AlertService
	logger  logger.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(service *service.AlertService, log logger.Logger) *AlertHandler {
	return &AlertHandler{
		service: service,
		logger:  logger.OrDefault(log),
	}
}

func (h *AlertHandler) windowAlerts(r *http.Request) (service.Window, []entity.Alert, error) {
	w, err := service.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		return "", nil, err
	}
	ov, err := parseOverrides(r)
	if err != nil {
		return "", nil, err
	}
	alerts, err := h.service.Alerts(r.Context(), w, ov)
	if err != nil {
		return "", nil, err
	}
	return w, alerts, nil
}

// ListAlerts returns the reminders of ?window=today|week|month|all
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	_, alerts, err := h.windowAlerts(r)
	if err != nil {
		sendServiceError(w, h.logger, err, "list alerts", requestID)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toAlertResponses(alerts), requestID)
}

// ListHistory returns the alert history log
func (h *AlertHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	records, err := h.service.History(r.Context())
	if err != nil {
		sendServiceError(w, h.logger, err, "read the alert history", requestID)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toAlertRecordResponses(records), requestID)
}

// ResolveAlert marks one alert history entry as handled
func (h *AlertHandler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	position, err := strconv.Atoi(mux.Vars(r)["position"])
	if err != nil {
		sendErrorResponse(w, h.logger, "Invalid position",
			"position must be an integer", http.StatusBadRequest, requestID)
		return
	}

	if err := h.service.Resolve(r.Context(), position); err != nil {
		sendServiceError(w, h.logger, err, "resolve the alert", requestID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Report renders the alert window as a PDF
func (h *AlertHandler) Report(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	win, alerts, err := h.windowAlerts(r)
	if err != nil {
		sendServiceError(w, h.logger, err, "build the alert report", requestID)
		return
	}

	data, err := export.BuildAlertPDF(string(win), time.Now().UTC(), alerts)
	if err != nil {
		metrics.IncExport("pdf", metrics.ResultError)
		sendServiceError(w, h.logger, err, "build the alert report", requestID)
		return
	}
	metrics.IncExport("pdf", metrics.ResultSuccess)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="alertas-`+string(win)+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("Failed to write alert report", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}
}

// RegisterRoutes registers the alert handler routes
func (h *AlertHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/alerts", h.ListAlerts).Methods(http.MethodGet)
	router.HandleFunc("/alerts/history", h.ListHistory).Methods(http.MethodGet)
	router.HandleFunc("/alerts/history/{position}/resolve", h.ResolveAlert).Methods(http.MethodPost)
	router.HandleFunc("/alerts/report.pdf", h.Report).Methods(http.MethodGet)

	h.logger.Info("Alert routes registered", map[string]interface{}{
		"routes": []string{
			"GET /alerts",
			"GET /alerts/history",
			"POST /alerts/history/{position}/resolve",
			"GET /alerts/report.pdf",
		},
	})
}
