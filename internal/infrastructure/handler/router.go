package handler

import (
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups every route owner of the API
type Handlers struct {
	Shipments *ShipmentHandler
	Alerts    *AlertHandler
	TRM       *TRMHandler
	Export    *ExportHandler
}

// NewRouter wires the middleware chain, the API routes and /metrics
func NewRouter(h Handlers, log logger.Logger) *mux.Router {
	log = logger.OrDefault(log)

	router := mux.NewRouter()
	router.Use(middleware.Chain(log)...)

	h.Export.RegisterRoutes(router)
	h.Shipments.RegisterRoutes(router)
	h.Alerts.RegisterRoutes(router)
	h.TRM.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	return router
}
