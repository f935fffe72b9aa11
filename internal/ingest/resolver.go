package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-ingest/internal/domain"
	"github.com/couchcryptid/weather-ingest/internal/observability"
)

// PrimarySource queries the bulk GSOD dataset for one date. A nil summary
// with a nil error means the dataset has no usable rows for that date.
type PrimarySource interface {
	QueryDailySummary(ctx context.Context, date time.Time) (*domain.DailySummary, error)
}

// FallbackSource fetches one day from the external weather API. A nil day
// with a nil error means the API returned an empty timeline.
type FallbackSource interface {
	FetchDay(ctx context.Context, date time.Time) (*domain.TimelineDay, error)
}

// Resolver produces a canonical observation for a date, preferring the bulk
// dataset and falling back to the external API only when the primary query
// errors or comes back empty.
type Resolver struct {
	primary  PrimarySource
	fallback FallbackSource
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewResolver creates a Resolver. Pass a nil fallback when no API key is
// configured; the gap only surfaces as an error for dates that need it.
func NewResolver(primary PrimarySource, fallback FallbackSource, logger *slog.Logger, metrics *observability.Metrics) *Resolver {
	return &Resolver{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		metrics:  metrics,
	}
}

// Resolve returns the observation for date, or a domain.NoDataError carrying
// both failure causes when neither source yields usable data.
func (r *Resolver) Resolve(ctx context.Context, date time.Time) (domain.Observation, error) {
	date = domain.ToDateUTC(date)

	var primaryCause string
	row, err := r.primary.QueryDailySummary(ctx, date)
	switch {
	case err != nil:
		primaryCause = err.Error()
		r.metrics.SourceQueries.WithLabelValues("gsod", "error").Inc()
		r.logger.Warn("primary source query failed, trying fallback",
			"date", date.Format(time.DateOnly), "error", err)
	case row == nil:
		primaryCause = "no rows for date"
		r.metrics.SourceQueries.WithLabelValues("gsod", "miss").Inc()
		r.logger.Debug("primary source has no data, trying fallback",
			"date", date.Format(time.DateOnly))
	default:
		r.metrics.SourceQueries.WithLabelValues("gsod", "hit").Inc()
		return domain.FromDailySummary(date, *row), nil
	}

	if r.fallback == nil {
		return domain.Observation{}, &domain.NoDataError{
			Date:          date,
			PrimaryCause:  primaryCause,
			FallbackCause: domain.ErrConfigurationMissing.Error(),
		}
	}

	var fallbackCause string
	day, err := r.fallback.FetchDay(ctx, date)
	switch {
	case err != nil:
		fallbackCause = err.Error()
		r.metrics.SourceQueries.WithLabelValues("visualcrossing", "error").Inc()
	case day == nil:
		fallbackCause = "empty timeline payload"
		r.metrics.SourceQueries.WithLabelValues("visualcrossing", "miss").Inc()
	default:
		r.metrics.SourceQueries.WithLabelValues("visualcrossing", "hit").Inc()
		r.logger.Info("resolved via fallback source", "date", date.Format(time.DateOnly))
		return domain.FromTimelineDay(date, *day), nil
	}

	return domain.Observation{}, &domain.NoDataError{
		Date:          date,
		PrimaryCause:  primaryCause,
		FallbackCause: fallbackCause,
	}
}
