package ingest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/weather-ingest/internal/domain"
	"github.com/couchcryptid/weather-ingest/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory destination table keyed by ISO date.
type fakeStore struct {
	rows      map[string]domain.Observation
	existsErr error
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]domain.Observation{}}
}

func (s *fakeStore) ObservationExists(_ context.Context, date time.Time) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	_, ok := s.rows[date.Format(time.DateOnly)]
	return ok, nil
}

func (s *fakeStore) InsertObservation(_ context.Context, obs domain.Observation) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.rows[obs.DateString()] = obs
	return nil
}

type fakeResolver struct {
	err   error
	calls int
}

func (r *fakeResolver) Resolve(_ context.Context, date time.Time) (domain.Observation, error) {
	r.calls++
	if r.err != nil {
		return domain.Observation{}, r.err
	}
	return domain.Observation{Date: domain.ToDateUTC(date), Condition: "Clear"}, nil
}

type fakePublisher struct {
	published []domain.Observation
	err       error
}

func (p *fakePublisher) PublishObservation(_ context.Context, obs domain.Observation) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, obs)
	return nil
}

func newIngestor(store *fakeStore, resolver *fakeResolver, pub ingest.Publisher) *ingest.DateIngestor {
	return ingest.NewDateIngestor(store, resolver, pub, discardLogger(), testMetrics())
}

func TestDateIngestor_InsertsWhenAbsent(t *testing.T) {
	store := newFakeStore()
	di := newIngestor(store, &fakeResolver{}, nil)

	outcome, err := di.Ingest(context.Background(), testDate)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeInserted, outcome)
	assert.Len(t, store.rows, 1)
}

func TestDateIngestor_Idempotent(t *testing.T) {
	store := newFakeStore()
	resolver := &fakeResolver{}
	di := newIngestor(store, resolver, nil)

	first, err := di.Ingest(context.Background(), testDate)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeInserted, first)

	second, err := di.Ingest(context.Background(), testDate)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSkipped, second)

	assert.Len(t, store.rows, 1, "exactly one stored record after repeated calls")
	assert.Equal(t, 1, resolver.calls, "skipped call must not touch the sources")
}

func TestDateIngestor_TruncatesTimeOfDay(t *testing.T) {
	store := newFakeStore()
	di := newIngestor(store, &fakeResolver{}, nil)

	withTime := time.Date(2023, time.June, 15, 14, 30, 0, 0, time.UTC)
	_, err := di.Ingest(context.Background(), withTime)
	require.NoError(t, err)

	_, ok := store.rows["2023-06-15"]
	assert.True(t, ok)
}

func TestDateIngestor_ResolverNoDataPropagates(t *testing.T) {
	store := newFakeStore()
	noData := &domain.NoDataError{Date: testDate, PrimaryCause: "no rows for date", FallbackCause: "down"}
	di := newIngestor(store, &fakeResolver{err: noData}, nil)

	_, err := di.Ingest(context.Background(), testDate)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoDataAvailable)
	assert.Empty(t, store.rows, "no partial writes on failure")
}

func TestDateIngestor_OtherResolverFailureIsSourceUnavailable(t *testing.T) {
	store := newFakeStore()
	di := newIngestor(store, &fakeResolver{err: context.DeadlineExceeded}, nil)

	_, err := di.Ingest(context.Background(), testDate)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Empty(t, store.rows)
}

func TestDateIngestor_WriteFailure(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("quota exceeded")
	pub := &fakePublisher{}
	di := newIngestor(store, &fakeResolver{}, pub)

	_, err := di.Ingest(context.Background(), testDate)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWriteFailed)
	assert.Empty(t, pub.published, "nothing published when the write fails")
}

func TestDateIngestor_ExistenceCheckFailsOpen(t *testing.T) {
	store := newFakeStore()
	store.existsErr = errors.New("transient query failure")
	di := newIngestor(store, &fakeResolver{}, nil)

	outcome, err := di.Ingest(context.Background(), testDate)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeInserted, outcome, "a failed existence check re-attempts ingestion")
}

func TestDateIngestor_PublishesInsertedObservation(t *testing.T) {
	pub := &fakePublisher{}
	di := newIngestor(newFakeStore(), &fakeResolver{}, pub)

	_, err := di.Ingest(context.Background(), testDate)
	require.NoError(t, err)
	require.Len(t, pub.published, 1)
	assert.Equal(t, "2023-06-15", pub.published[0].DateString())
}

func TestDateIngestor_PublishFailureDoesNotFailIngest(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{err: errors.New("broker down")}
	di := newIngestor(store, &fakeResolver{}, pub)

	outcome, err := di.Ingest(context.Background(), testDate)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeInserted, outcome)
	assert.Len(t, store.rows, 1)
}
