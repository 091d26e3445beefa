package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/damon-houk/freight-ops-tracker/internal/application/service"
	"github.com/damon-houk/freight-ops-tracker/internal/config"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/api"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/db"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/handler"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.GetDefaultLogger().Fatal("Failed to load configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log := logger.NewJSONLogger(os.Stdout, cfg.Level())
	logger.SetDefaultLogger(log)
	log.Info("Starting freight operations tracker", map[string]interface{}{
		"addr":            cfg.Addr,
		"data_dir":        cfg.DataDir,
		"trm_base_url":    cfg.TRM.BaseURL,
		"align_overrides": cfg.Advisor.AlignOverrides,
	})

	metrics.Init()

	badgerDB, err := db.Open(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to open database", map[string]interface{}{
			"data_dir": cfg.DataDir,
			"error":    err.Error(),
		})
	}
	defer func() {
		if err := badgerDB.Close(); err != nil {
			log.Error("Error closing database", map[string]interface{}{"error": err.Error()})
		}
	}()

	// Repositories
	shipmentRepo := db.NewBadgerShipmentRepository(badgerDB, log.WithField("component", "shipment_repository"))
	rateRepo, err := db.NewBadgerRateHistoryRepository(badgerDB)
	if err != nil {
		log.Fatal("Failed to open TRM history", map[string]interface{}{"error": err.Error()})
	}
	defer rateRepo.Close()
	alertRepo, err := db.NewBadgerAlertHistoryRepository(badgerDB)
	if err != nil {
		log.Fatal("Failed to open alert history", map[string]interface{}{"error": err.Error()})
	}
	defer alertRepo.Close()

	trmClient := api.NewTRMClient(api.Options{
		BaseURL:    cfg.TRM.BaseURL,
		Timeout:    cfg.TRM.Timeout,
		MaxRetries: cfg.TRM.MaxRetries,
		Backoff:    cfg.TRM.Backoff,
		Logger:     log,
	})

	// Services
	resolver := service.NewRateResolver(trmClient, rateRepo, log.WithField("component", "rate_resolver"))
	advisor := service.NewDayAdvisor(resolver, cfg.Advisor.AlignOverrides, log.WithField("component", "day_advisor"))
	generator := service.NewAlertGenerator(advisor, log.WithField("component", "alert_generator"))
	shipments := service.NewShipmentService(shipmentRepo, alertRepo, advisor, generator, log)
	alerts := service.NewAlertService(shipmentRepo, alertRepo, generator, log)
	trm := service.NewTRMService(resolver, advisor, rateRepo, log)

	router := handler.NewRouter(handler.Handlers{
		Shipments: handler.NewShipmentHandler(shipments, log),
		Alerts:    handler.NewAlertHandler(alerts, log),
		TRM:       handler.NewTRMHandler(trm, log),
		Export:    handler.NewExportHandler(shipments, trm, log),
	}, log)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", map[string]interface{}{"addr": cfg.Addr})
		serveErr <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", map[string]interface{}{"error": err.Error()})
		}
	case sig := <-stop:
		log.Info("Shutting down", map[string]interface{}{"signal": sig.String()})
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Graceful shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}
}
