// Command backfill runs a date-range ingestion directly against the
// warehouse, without going through the HTTP trigger. Intended for the
// first-run historical load and for re-running slices of the window after
// source gaps are filled.
//
// Usage:
//
//	go run ./cmd/backfill -historical
//	go run ./cmd/backfill -start 2023-06-01 -end 2023-06-30
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/weather-ingest/internal/adapter/visualcrossing"
	"github.com/couchcryptid/weather-ingest/internal/adapter/warehouse"
	"github.com/couchcryptid/weather-ingest/internal/config"
	"github.com/couchcryptid/weather-ingest/internal/ingest"
	"github.com/couchcryptid/weather-ingest/internal/observability"
)

func main() {
	historical := flag.Bool("historical", false, "backfill the full historical window")
	startStr := flag.String("start", "", "range start date (YYYY-MM-DD)")
	endStr := flag.String("end", "", "range end date (YYYY-MM-DD)")
	flag.Parse()

	start, end, err := resolveRange(*historical, *startStr, *endStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

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
	defer store.Close()

	var fallback ingest.FallbackSource
	if cfg.FallbackEnabled() {
		fallback = visualcrossing.NewClient(cfg.WeatherAPIKey, cfg.LocationLat, cfg.LocationLon, cfg.WeatherAPITimeout, logger)
		metrics.FallbackEnabled.Set(1)
	}

	resolver := ingest.NewResolver(store, fallback, logger, metrics)
	dateIngestor := ingest.NewDateIngestor(store, resolver, nil, logger, metrics)
	rangeIngestor := ingest.NewRangeIngestor(dateIngestor, logger)

	report := rangeIngestor.IngestRange(context.Background(), start, end)

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Error("failed to render report", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if len(report.Errors) > 0 {
		os.Exit(1)
	}
}

func resolveRange(historical bool, startStr, endStr string) (time.Time, time.Time, error) {
	if historical {
		if startStr != "" || endStr != "" {
			return time.Time{}, time.Time{}, fmt.Errorf("-historical and -start/-end are mutually exclusive")
		}
		return ingest.HistoricalStart, ingest.HistoricalEnd, nil
	}

	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("either -historical or both -start and -end are required")
	}

	start, err := time.Parse(time.DateOnly, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -start: %v", err)
	}
	end, err := time.Parse(time.DateOnly, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -end: %v", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("-end must not precede -start")
	}
	return start, end, nil
}
