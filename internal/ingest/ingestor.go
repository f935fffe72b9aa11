package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-ingest/internal/domain"
	"github.com/couchcryptid/weather-ingest/internal/observability"
)

// DestinationStore is the destination-table slice of the warehouse: an
// existence check keyed by date and a single-row insert.
type DestinationStore interface {
	// ObservationExists reports whether a record for date is already present.
	// A missing destination table is "absent", not an error.
	ObservationExists(ctx context.Context, date time.Time) (bool, error)

	InsertObservation(ctx context.Context, obs domain.Observation) error
}

// ObservationResolver yields the canonical observation for a date.
type ObservationResolver interface {
	Resolve(ctx context.Context, date time.Time) (domain.Observation, error)
}

// Publisher emits inserted observations to downstream consumers.
type Publisher interface {
	PublishObservation(ctx context.Context, obs domain.Observation) error
}

// DateIngestor ingests one calendar date end-to-end: existence gate, source
// resolution, insert. Exactly one write per successful call; zero writes on
// the skipped and failure paths.
type DateIngestor struct {
	store     DestinationStore
	resolver  ObservationResolver
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewDateIngestor creates a DateIngestor. Pass a nil publisher to disable
// downstream event emission.
func NewDateIngestor(store DestinationStore, resolver ObservationResolver, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *DateIngestor {
	return &DateIngestor{
		store:     store,
		resolver:  resolver,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Ingest processes a single date. The date's time-of-day component, if any,
// is truncated before use. Repeated calls are idempotent: once a record
// exists the outcome is OutcomeSkipped.
func (di *DateIngestor) Ingest(ctx context.Context, date time.Time) (domain.Outcome, error) {
	date = domain.ToDateUTC(date)
	start := time.Now()
	di.metrics.DatesProcessed.Inc()

	exists, err := di.store.ObservationExists(ctx, date)
	if err != nil {
		// Fail open: re-attempting ingestion is recoverable, silently
		// skipping a date is not.
		di.logger.Warn("existence check failed, assuming absent",
			"date", date.Format(time.DateOnly), "error", err)
		exists = false
	}
	if exists {
		di.metrics.DatesSkipped.Inc()
		di.logger.Debug("observation already present, skipping", "date", date.Format(time.DateOnly))
		return domain.OutcomeSkipped, nil
	}

	obs, err := di.resolver.Resolve(ctx, date)
	if err != nil {
		di.metrics.IngestErrors.Inc()
		if errors.Is(err, domain.ErrNoDataAvailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}

	if err := di.store.InsertObservation(ctx, obs); err != nil {
		di.metrics.IngestErrors.Inc()
		return "", fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}

	di.metrics.DatesInserted.Inc()
	di.metrics.IngestDuration.Observe(time.Since(start).Seconds())
	di.logger.Info("observation ingested",
		"date", date.Format(time.DateOnly), "condition", obs.Condition)

	di.publish(ctx, obs)
	return domain.OutcomeInserted, nil
}

// publish emits the inserted observation when a publisher is configured.
// Publishing is best-effort; a failure never fails the ingestion.
func (di *DateIngestor) publish(ctx context.Context, obs domain.Observation) {
	if di.publisher == nil {
		return
	}
	if err := di.publisher.PublishObservation(ctx, obs); err != nil {
		di.logger.Warn("publish observation failed",
			"date", obs.DateString(), "error", err)
	}
}
