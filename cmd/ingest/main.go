package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/weather-ingest/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-ingest/internal/adapter/kafka"
	"github.com/couchcryptid/weather-ingest/internal/adapter/visualcrossing"
	"github.com/couchcryptid/weather-ingest/internal/adapter/warehouse"
	"github.com/couchcryptid/weather-ingest/internal/config"
	"github.com/couchcryptid/weather-ingest/internal/ingest"
	"github.com/couchcryptid/weather-ingest/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store, err := warehouse.NewStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open warehouse", "error", err)
		os.Exit(1)
	}

	// Fallback source is feature-flagged via WEATHER_API_KEY.
	var fallback ingest.FallbackSource
	if cfg.FallbackEnabled() {
		fallback = visualcrossing.NewClient(cfg.WeatherAPIKey, cfg.LocationLat, cfg.LocationLon, cfg.WeatherAPITimeout, logger)
		metrics.FallbackEnabled.Set(1)
		logger.Info("weather api fallback enabled", "timeout", cfg.WeatherAPITimeout)
	} else {
		logger.Info("weather api fallback disabled")
	}

	var publisher ingest.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("observation publisher enabled", "topic", cfg.KafkaTopic)
	} else {
		logger.Info("observation publisher disabled")
	}

	resolver := ingest.NewResolver(store, fallback, logger, metrics)
	dateIngestor := ingest.NewDateIngestor(store, resolver, publisher, logger, metrics)
	rangeIngestor := ingest.NewRangeIngestor(dateIngestor, logger)
	dispatcher := ingest.NewDispatcher(rangeIngestor, dateIngestor, nil, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, dispatcher, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("warehouse close error", "error", err)
	}

	logger.Info("shutdown complete")
}
