// internal/infrastructure/handler/response.go

// Package handler exposes the tracker over HTTP
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/damon-houk/freight-ops-tracker/internal/application/service"
	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/logger"
)

func writeJSON(w http.ResponseWriter, log logger.Logger, statusCode int, body interface{}, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	writeJSON(w, log, statusCode, ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	}, requestID)
}

// sendServiceError maps a service error onto its HTTP status
func sendServiceError(w http.ResponseWriter, log logger.Logger, err error, action, requestID string) {
	switch {
	case errors.Is(err, entity.ErrValidation):
		log.Warn("Request rejected", map[string]interface{}{
			"request_id": requestID,
			"action":     action,
			"error":      err.Error(),
		})
		sendErrorResponse(w, log, "Invalid request", err.Error(), http.StatusBadRequest, requestID)
	case errors.Is(err, entity.ErrShipmentNotFound):
		sendErrorResponse(w, log, "Shipment not found",
			"The requested shipment could not be found", http.StatusNotFound, requestID)
	case errors.Is(err, entity.ErrAlertRecordNotFound):
		sendErrorResponse(w, log, "Alert not found",
			"The requested alert history entry could not be found", http.StatusNotFound, requestID)
	default:
		log.Error("Unexpected error", map[string]interface{}{
			"request_id": requestID,
			"action":     action,
			"error":      err.Error(),
		})
		sendErrorResponse(w, log, "Internal server error",
			fmt.Sprintf("An unexpected error occurred while trying to %s", action),
			http.StatusInternalServerError, requestID)
	}
}

// parseOverrides reads the manual TRM values from trm_today and trm_tomorrow
func parseOverrides(r *http.Request) (service.Overrides, error) {
	var ov service.Overrides
	var err error
	if ov.Today, err = parseRate(r, "trm_today"); err != nil {
		return ov, err
	}
	if ov.Tomorrow, err = parseRate(r, "trm_tomorrow"); err != nil {
		return ov, err
	}
	return ov, nil
}

func parseRate(r *http.Request, name string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative number, got %q", entity.ErrValidation, name, raw)
	}
	return v, nil
}
