package ingest_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/couchcryptid/weather-ingest/internal/domain"
	"github.com/couchcryptid/weather-ingest/internal/ingest"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRangeRunner struct {
	start, end time.Time
	report     domain.RangeReport
}

func (f *fakeRangeRunner) IngestRange(_ context.Context, start, end time.Time) domain.RangeReport {
	f.start, f.end = start, end
	return f.report
}

type fakeDateRunner struct {
	date    time.Time
	outcome domain.Outcome
	err     error
	panics  bool
}

func (f *fakeDateRunner) Ingest(_ context.Context, date time.Time) (domain.Outcome, error) {
	if f.panics {
		panic("ingestor blew up")
	}
	f.date = date
	return f.outcome, f.err
}

func TestDispatcher_Historical(t *testing.T) {
	ranges := &fakeRangeRunner{report: domain.RangeReport{TotalDates: 214, Inserted: 200, Skipped: 14, Errors: []domain.DateError{}}}
	d := ingest.NewDispatcher(ranges, &fakeDateRunner{}, nil, discardLogger())

	resp := d.Dispatch(context.Background(), domain.Request{Mode: domain.ModeHistorical})

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, domain.ModeHistorical, resp.Mode)
	assert.Equal(t, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), ranges.start)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), ranges.end)
	require.NotNil(t, resp.Report)
	assert.Equal(t, 214, resp.Report.TotalDates)
	assert.Contains(t, resp.Message, "200 inserted")
}

func TestDispatcher_SingleDateTruncatesTimeOfDay(t *testing.T) {
	dates := &fakeDateRunner{outcome: domain.OutcomeInserted}
	d := ingest.NewDispatcher(&fakeRangeRunner{}, dates, nil, discardLogger())

	resp := d.Dispatch(context.Background(), domain.Request{
		Mode: domain.ModeSingleDate,
		Date: time.Date(2024, time.January, 15, 18, 45, 0, 0, time.UTC),
	})

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, domain.ModeSingleDate, resp.Mode)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), dates.date)
	assert.Contains(t, resp.Message, "2024-01-15 ingested")
}

func TestDispatcher_SingleDateSkipped(t *testing.T) {
	dates := &fakeDateRunner{outcome: domain.OutcomeSkipped}
	d := ingest.NewDispatcher(&fakeRangeRunner{}, dates, nil, discardLogger())

	resp := d.Dispatch(context.Background(), domain.Request{Mode: domain.ModeSingleDate, Date: testDate})

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, resp.Message, "already present")
}

func TestDispatcher_DailyUsesYesterdayUTC(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.March, 10, 2, 15, 0, 0, time.UTC))
	dates := &fakeDateRunner{outcome: domain.OutcomeInserted}
	d := ingest.NewDispatcher(&fakeRangeRunner{}, dates, clock, discardLogger())

	resp := d.Dispatch(context.Background(), domain.Request{Mode: domain.ModeDaily})

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, domain.ModeDaily, resp.Mode)
	assert.Equal(t, time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC), dates.date)
}

func TestDispatcher_FailureBecomesErrorResponse(t *testing.T) {
	dates := &fakeDateRunner{err: &domain.NoDataError{Date: testDate, PrimaryCause: "no rows for date", FallbackCause: "down"}}
	d := ingest.NewDispatcher(&fakeRangeRunner{}, dates, nil, discardLogger())

	resp := d.Dispatch(context.Background(), domain.Request{Mode: domain.ModeSingleDate, Date: testDate})

	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Contains(t, resp.Error, "no data")
	assert.Empty(t, resp.Message)
}

func TestDispatcher_PanicBecomesErrorResponse(t *testing.T) {
	d := ingest.NewDispatcher(&fakeRangeRunner{}, &fakeDateRunner{panics: true}, nil, discardLogger())

	resp := d.Dispatch(context.Background(), domain.Request{Mode: domain.ModeDaily})

	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Contains(t, resp.Error, "internal error")
}

func TestDispatcher_UnknownMode(t *testing.T) {
	d := ingest.NewDispatcher(&fakeRangeRunner{}, &fakeDateRunner{}, nil, discardLogger())

	resp := d.Dispatch(context.Background(), domain.Request{Mode: "bogus"})

	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Contains(t, resp.Error, "unknown ingestion mode")
}
