package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/application/service"
	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// TRMHandler serves rate lookups and invoicing advice
type TRMHandler struct {
	service *service.TRMService
	logger  logger.Logger
}

// NewTRMHandler creates a new TRM handler
func NewTRMHandler(service *service.TRMService, log logger.Logger) *TRMHandler {
	return &TRMHandler{
		service: service,
		logger:  logger.OrDefault(log),
	}
}

// GetRate resolves the TRM for ?date=, today when omitted
func (h *TRMHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	date := time.Now()
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := entity.ParseDay(raw)
		if err != nil {
			sendErrorResponse(w, h.logger, "Invalid date format",
				"Date must be in YYYY-MM-DD format", http.StatusBadRequest, requestID)
			return
		}
		date = parsed
	}

	writeJSON(w, h.logger, http.StatusOK, toRateResponse(h.service.Rate(r.Context(), date)), requestID)
}

// GetSummary returns today's and tomorrow's TRM and the trend
func (h *TRMHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	ov, err := parseOverrides(r)
	if err != nil {
		sendServiceError(w, h.logger, err, "summarize the TRM", requestID)
		return
	}

	summary := h.service.Summary(r.Context(), ov)
	writeJSON(w, h.logger, http.StatusOK, TRMSummaryResponse{
		Today:    toRateResponse(summary.Today),
		Tomorrow: toRateResponse(summary.Tomorrow),
		Trend:    string(summary.Trend),
	}, requestID)
}

// GetAdvice suggests the invoicing day for ?arrival=
func (h *TRMHandler) GetAdvice(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	arrival, err := entity.ParseDay(strings.TrimSpace(r.URL.Query().Get("arrival")))
	if err != nil {
		sendErrorResponse(w, h.logger, "Invalid arrival date",
			"arrival must be in YYYY-MM-DD format", http.StatusBadRequest, requestID)
		return
	}

	ov, err := parseOverrides(r)
	if err != nil {
		sendServiceError(w, h.logger, err, "suggest an invoicing day", requestID)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, toAdviceResponse(h.service.Advice(r.Context(), arrival, ov)), requestID)
}

// RegisterRoutes registers the TRM handler routes
func (h *TRMHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/trm", h.GetRate).Methods(http.MethodGet)
	router.HandleFunc("/trm/summary", h.GetSummary).Methods(http.MethodGet)
	router.HandleFunc("/advice", h.GetAdvice).Methods(http.MethodGet)

	h.logger.Info("TRM routes registered", map[string]interface{}{
		"routes": []string{
			"GET /trm",
			"GET /trm/summary",
			"GET /advice",
		},
	})
}
