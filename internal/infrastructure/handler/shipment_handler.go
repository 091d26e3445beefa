package handler

import (
	"encoding/json"
	"net/http"

	"github.com/damon-houk/freight-ops-tracker/internal/application/service"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// ShipmentHandler handles HTTP requests for the shipment register
type ShipmentHandler struct {
	service *service.ShipmentService
	logger  logger.Logger
}

// NewShipmentHandler creates a new shipment handler
func NewShipmentHandler(service *service.ShipmentService, log logger.Logger) *ShipmentHandler {
	return &ShipmentHandler{
		service: service,
		logger:  logger.OrDefault(log),
	}
}

// RegisterShipment creates or overwrites a shipment
func (h *ShipmentHandler) RegisterShipment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req RegisterShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	ov, err := parseOverrides(r)
	if err != nil {
		sendServiceError(w, h.logger, err, "register the shipment", requestID)
		return
	}

	shipment, err := h.service.Register(r.Context(), req.input(), ov)
	if err != nil {
		sendServiceError(w, h.logger, err, "register the shipment", requestID)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, toShipmentResponse(shipment), requestID)
}

// GetShipment returns one shipment by consecutive-id
func (h *ShipmentHandler) GetShipment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := mux.Vars(r)["id"]

	shipment, err := h.service.Get(r.Context(), id)
	if err != nil {
		sendServiceError(w, h.logger, err, "retrieve the shipment", requestID)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, toShipmentResponse(shipment), requestID)
}

// Board lists every shipment with its computed scheduling fields
func (h *ShipmentHandler) Board(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	ov, err := parseOverrides(r)
	if err != nil {
		sendServiceError(w, h.logger, err, "list shipments", requestID)
		return
	}

	rows, err := h.service.Board(r.Context(), ov)
	if err != nil {
		sendServiceError(w, h.logger, err, "list shipments", requestID)
		return
	}

	resp := make([]BoardRowResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, toBoardRowResponse(row))
	}
	writeJSON(w, h.logger, http.StatusOK, resp, requestID)
}

// DeleteShipments removes the ids listed in the body
func (h *ShipmentHandler) DeleteShipments(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req DeleteShipmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body must be a JSON object with an ids array", http.StatusBadRequest, requestID)
		return
	}

	h.delete(w, r, req.IDs, requestID)
}

// DeleteShipment removes one shipment
func (h *ShipmentHandler) DeleteShipment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	h.delete(w, r, []string{mux.Vars(r)["id"]}, requestID)
}

func (h *ShipmentHandler) delete(w http.ResponseWriter, r *http.Request, ids []string, requestID string) {
	removed, err := h.service.Delete(r.Context(), ids)
	if err != nil {
		sendServiceError(w, h.logger, err, "delete shipments", requestID)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, DeleteShipmentsResponse{Removed: removed}, requestID)
}

// RegisterRoutes registers the shipment handler routes
func (h *ShipmentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/operations", h.RegisterShipment).Methods(http.MethodPost)
	router.HandleFunc("/operations", h.Board).Methods(http.MethodGet)
	router.HandleFunc("/operations", h.DeleteShipments).Methods(http.MethodDelete)
	router.HandleFunc("/operations/{id}", h.GetShipment).Methods(http.MethodGet)
	router.HandleFunc("/operations/{id}", h.DeleteShipment).Methods(http.MethodDelete)

	h.logger.Info("Shipment routes registered", map[string]interface{}{
		"routes": []string{
			"POST /operations",
			"GET /operations",
			"DELETE /operations",
			"GET /operations/{id}",
			"DELETE /operations/{id}",
		},
	})
}
