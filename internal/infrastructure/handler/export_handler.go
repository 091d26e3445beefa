package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/damon-houk/freight-ops-tracker/internal/application/service"
	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/export"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/metrics"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

const maxImportBytes = 10 << 20

// ExportHandler moves the register in and out as an xlsx workbook
type ExportHandler struct {
	shipments *service.ShipmentService
	trm       *service.TRMService
	logger    logger.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(shipments *service.ShipmentService, trm *service.TRMService, log logger.Logger) *ExportHandler {
	return &ExportHandler{
		shipments: shipments,
		trm:       trm,
		logger:    logger.OrDefault(log),
	}
}

// ExportRegister downloads the board and the TRM history
func (h *ExportHandler) ExportRegister(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	ov, err := parseOverrides(r)
	if err != nil {
		sendServiceError(w, h.logger, err, "export the register", requestID)
		return
	}
	rows, err := h.shipments.Board(r.Context(), ov)
	if err != nil {
		sendServiceError(w, h.logger, err, "export the register", requestID)
		return
	}
	samples, err := h.trm.History(r.Context())
	if err != nil {
		sendServiceError(w, h.logger, err, "export the register", requestID)
		return
	}

	data, err := export.BuildRegisterXLSX(rows, samples)
	if err != nil {
		metrics.IncExport("xlsx", metrics.ResultError)
		sendServiceError(w, h.logger, err, "export the register", requestID)
		return
	}
	metrics.IncExport("xlsx", metrics.ResultSuccess)

	h.logger.Info("Register exported", map[string]interface{}{
		"request_id": requestID,
		"rows":       len(rows),
		"samples":    len(samples),
		"bytes":      len(data),
	})

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="operaciones.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("Failed to write workbook", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}
}

// ImportRegister upserts every valid row of an uploaded workbook. The workbook is
// read from the multipart field "file" or, for other content types, the raw body.
func (h *ExportHandler) ImportRegister(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			sendErrorResponse(w, h.logger, "Invalid upload",
				"The workbook must be sent in the multipart field \"file\"", http.StatusBadRequest, requestID)
			return
		}
		defer file.Close()
		body = file
	}

	rows, err := export.ParseRegisterXLSX(body)
	if err != nil {
		h.logger.Warn("Unreadable workbook", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		metrics.IncExport("xlsx_import", metrics.ResultError)
		description := "The upload is not a readable xlsx workbook"
		if errors.Is(err, export.ErrMissingColumn) {
			description = err.Error()
		}
		sendErrorResponse(w, h.logger, "Invalid workbook", description, http.StatusBadRequest, requestID)
		return
	}

	ov, err := parseOverrides(r)
	if err != nil {
		sendServiceError(w, h.logger, err, "import the register", requestID)
		return
	}

	resp := ImportResponse{Rejected: make([]ImportRejection, 0)}
	for _, row := range rows {
		if _, err := h.shipments.Register(r.Context(), row.Input, ov); err != nil {
			if !errors.Is(err, entity.ErrValidation) {
				sendServiceError(w, h.logger, err, "import the register", requestID)
				return
			}
			resp.Rejected = append(resp.Rejected, ImportRejection{
				Row:   row.Line,
				ID:    row.Input.ID,
				Error: err.Error(),
			})
			continue
		}
		resp.Imported++
	}
	metrics.IncExport("xlsx_import", metrics.ResultSuccess)

	h.logger.Info("Register imported", map[string]interface{}{
		"request_id": requestID,
		"imported":   resp.Imported,
		"rejected":   len(resp.Rejected),
	})
	writeJSON(w, h.logger, http.StatusOK, resp, requestID)
}

// RegisterRoutes registers the export routes. They must be added before the
// /operations/{id} routes so the literal paths win.
func (h *ExportHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/operations/export.xlsx", h.ExportRegister).Methods(http.MethodGet)
	router.HandleFunc("/operations/import", h.ImportRegister).Methods(http.MethodPost)

	h.logger.Info("Export routes registered", map[string]interface{}{
		"routes": []string{
			"GET /operations/export.xlsx",
			"POST /operations/import",
		},
	})
}
