package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-ingest/internal/domain"
)

// progressInterval is how many processed dates pass between progress log
// lines during a long backfill.
const progressInterval = 30

// SingleDateIngestor processes one date and reports the outcome.
type SingleDateIngestor interface {
	Ingest(ctx context.Context, date time.Time) (domain.Outcome, error)
}

// RangeIngestor iterates a closed date interval sequentially, isolating
// per-date failures so one bad date never aborts the batch.
type RangeIngestor struct {
	ingestor SingleDateIngestor
	logger   *slog.Logger
}

// NewRangeIngestor creates a RangeIngestor around a single-date ingestor.
func NewRangeIngestor(ingestor SingleDateIngestor, logger *slog.Logger) *RangeIngestor {
	return &RangeIngestor{ingestor: ingestor, logger: logger}
}

// IngestRange processes every date in [start, end], inclusive both ends and
// ascending, and returns the aggregate report. Per-date failures are recorded
// in the report's error list and iteration continues.
func (ri *RangeIngestor) IngestRange(ctx context.Context, start, end time.Time) domain.RangeReport {
	start = domain.ToDateUTC(start)
	end = domain.ToDateUTC(end)

	ri.logger.Info("backfill started",
		"start", start.Format(time.DateOnly), "end", end.Format(time.DateOnly))

	report := domain.RangeReport{Errors: []domain.DateError{}}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		outcome, err := ri.ingestor.Ingest(ctx, d)
		report.TotalDates++

		switch {
		case err != nil:
			report.Errors = append(report.Errors, domain.DateError{
				Date:    d.Format(time.DateOnly),
				Message: err.Error(),
			})
			ri.logger.Error("date ingestion failed",
				"date", d.Format(time.DateOnly), "error", err)
		case outcome == domain.OutcomeSkipped:
			report.Skipped++
		default:
			report.Inserted++
		}

		if report.TotalDates%progressInterval == 0 {
			ri.logger.Info("backfill progress",
				"processed", report.TotalDates,
				"inserted", report.Inserted,
				"skipped", report.Skipped,
				"errors", len(report.Errors))
		}
	}

	ri.logger.Info("backfill complete",
		"total_dates", report.TotalDates,
		"inserted", report.Inserted,
		"skipped", report.Skipped,
		"errors", len(report.Errors))

	return report
}
