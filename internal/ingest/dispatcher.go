package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/weather-ingest/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Historical backfill window. Bounded to keep bulk-dataset queries cheap; the
// daily mode covers everything after it.
var (
	HistoricalStart = time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	HistoricalEnd   = time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// RangeRunner runs a closed-interval backfill.
type RangeRunner interface {
	IngestRange(ctx context.Context, start, end time.Time) domain.RangeReport
}

// Dispatcher routes a validated ingestion request to the range or date
// ingestor and maps the outcome to the response contract. It is the final
// boundary: every failure becomes a structured error response.
type Dispatcher struct {
	ranges RangeRunner
	dates  SingleDateIngestor
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher. Pass a nil clock to use real time.
func NewDispatcher(ranges RangeRunner, dates SingleDateIngestor, clock clockwork.Clock, logger *slog.Logger) *Dispatcher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Dispatcher{ranges: ranges, dates: dates, clock: clock, logger: logger}
}

// Dispatch executes the request and returns a response with status 200 and a
// summary, or status 500 with an error description. It never panics outward.
func (d *Dispatcher) Dispatch(ctx context.Context, req domain.Request) (resp domain.Response) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("ingestion panicked", "mode", req.Mode, "panic", r)
			resp = errorResponse(fmt.Sprintf("internal error: %v", r))
		}
	}()

	switch req.Mode {
	case domain.ModeHistorical:
		d.logger.Info("historical ingestion requested",
			"start", HistoricalStart.Format(time.DateOnly),
			"end", HistoricalEnd.Format(time.DateOnly))
		report := d.ranges.IngestRange(ctx, HistoricalStart, HistoricalEnd)
		return domain.Response{
			Status: http.StatusOK,
			Mode:   domain.ModeHistorical,
			Message: fmt.Sprintf("historical ingestion completed: %d inserted, %d skipped, %d errors",
				report.Inserted, report.Skipped, len(report.Errors)),
			Report: &report,
		}

	case domain.ModeSingleDate:
		return d.ingestOne(ctx, domain.ModeSingleDate, domain.ToDateUTC(req.Date))

	case domain.ModeDaily:
		yesterday := domain.YesterdayUTC(d.clock.Now())
		return d.ingestOne(ctx, domain.ModeDaily, yesterday)

	default:
		return errorResponse(fmt.Sprintf("unknown ingestion mode %q", req.Mode))
	}
}

func (d *Dispatcher) ingestOne(ctx context.Context, mode domain.Mode, date time.Time) domain.Response {
	outcome, err := d.dates.Ingest(ctx, date)
	if err != nil {
		d.logger.Error("ingestion failed", "mode", mode, "date", date.Format(time.DateOnly), "error", err)
		return errorResponse(err.Error())
	}

	var msg string
	if outcome == domain.OutcomeSkipped {
		msg = fmt.Sprintf("observation for %s already present, skipped", date.Format(time.DateOnly))
	} else {
		msg = fmt.Sprintf("observation for %s ingested", date.Format(time.DateOnly))
	}

	return domain.Response{Status: http.StatusOK, Mode: mode, Message: msg}
}

func errorResponse(msg string) domain.Response {
	return domain.Response{Status: http.StatusInternalServerError, Error: msg}
}
