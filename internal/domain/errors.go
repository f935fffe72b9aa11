package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors forming the ingestion failure taxonomy. Callers classify
// wrapped failures with errors.Is.
var (
	// ErrNoDataAvailable means both sources failed or returned nothing for a
	// date. Retryable later, if source data appears.
	ErrNoDataAvailable = errors.New("no data available from any source")

	// ErrSourceUnavailable means a transient query or network failure kept the
	// resolver from producing an observation. Retryable immediately.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrWriteFailed means the warehouse rejected the insert. The record was
	// resolved but not persisted; a retry re-resolves and re-attempts.
	ErrWriteFailed = errors.New("warehouse write failed")

	// ErrConfigurationMissing means the fallback source was needed but no API
	// key or HTTP client is configured. Not retryable without operator action.
	ErrConfigurationMissing = errors.New("fallback source not configured")
)

// NoDataError carries the date and both failure causes when neither source
// yielded usable data.
type NoDataError struct {
	Date          time.Time
	PrimaryCause  string
	FallbackCause string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data for %s: primary: %s; fallback: %s",
		e.Date.Format(time.DateOnly), e.PrimaryCause, e.FallbackCause)
}

// Unwrap ties NoDataError into the sentinel taxonomy.
func (e *NoDataError) Unwrap() error { return ErrNoDataAvailable }
