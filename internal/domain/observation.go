package domain

import "time"

// Observation is the canonical weather record, exactly one per calendar date
// in the destination table. Nullable fields stay nil when the contributing
// source field was absent; only precipitation defaults to zero.
type Observation struct {
	Date            time.Time `json:"date"`
	TemperatureC    *float64  `json:"temperature"`
	HumidityPct     *float64  `json:"humidity"`
	WindSpeedMS     *float64  `json:"wind_speed"`
	PrecipitationMM float64   `json:"precipitation"`
	Condition       string    `json:"weather_condition"`
	IngestedAt      time.Time `json:"ingestion_timestamp"`
}

// DateString renders the observation date as an ISO-8601 calendar date.
func (o Observation) DateString() string {
	return o.Date.Format(time.DateOnly)
}

// DailySummary is the aggregated primary-source row for one station and date.
// All values are in GSOD source units (Fahrenheit, knots, inches) and nil
// when the warehouse aggregate was NULL.
type DailySummary struct {
	AvgTempF      *float64
	MaxTempF      *float64
	MinTempF      *float64
	AvgWindKnots  *float64
	TotalPrecipIn *float64
}

// TimelineDay is one day of the fallback API payload, already metric.
type TimelineDay struct {
	TempMax    *float64 `json:"tempmax"`
	Humidity   *float64 `json:"humidity"`
	WindSpeed  *float64 `json:"windspeed"`
	Precip     *float64 `json:"precip"`
	Conditions string   `json:"conditions"`
}

// Mode identifies which ingestion variant a request selects.
type Mode string

const (
	ModeHistorical Mode = "historical"
	ModeSingleDate Mode = "single_date"
	ModeDaily      Mode = "daily"
)

// Request is the validated ingestion request. Date is set only for
// ModeSingleDate; the other modes fully determine their own dates.
type Request struct {
	Mode Mode
	Date time.Time
}

// Response is the dispatcher's outcome contract: status 200 with a mode and
// summary message, or status 500 with an error description.
type Response struct {
	Status  int          `json:"status"`
	Mode    Mode         `json:"mode,omitempty"`
	Message string       `json:"message,omitempty"`
	Report  *RangeReport `json:"report,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Outcome is the result of ingesting a single date.
type Outcome string

const (
	OutcomeInserted Outcome = "inserted"
	OutcomeSkipped  Outcome = "skipped"
)

// RangeReport summarizes a backfill over a closed date interval.
type RangeReport struct {
	TotalDates int         `json:"total_dates"`
	Inserted   int         `json:"inserted"`
	Skipped    int         `json:"skipped"`
	Errors     []DateError `json:"errors"`
}

// DateError records a per-date ingestion failure inside a range.
type DateError struct {
	Date    string `json:"date"`
	Message string `json:"message"`
}

// ToDateUTC truncates a timestamp to a date-only value at UTC midnight.
// Sources and callers may carry a time-of-day component; the warehouse key
// never does.
func ToDateUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// YesterdayUTC returns the previous calendar date relative to now, at UTC
// midnight. Used by the daily ingestion mode.
func YesterdayUTC(now time.Time) time.Time {
	return ToDateUTC(now.UTC().AddDate(0, 0, -1))
}

// DaysInclusive counts the dates in the closed interval [start, end].
func DaysInclusive(start, end time.Time) int {
	return int(ToDateUTC(end).Sub(ToDateUTC(start))/(24*time.Hour)) + 1
}
