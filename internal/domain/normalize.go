package domain

import (
	"math"
	"time"
)

// FromDailySummary builds a canonical observation from an aggregated GSOD row,
// converting imperial source units to metric and deriving the condition label.
// GSOD has no humidity column, so humidity stays nil on this path.
func FromDailySummary(date time.Time, row DailySummary) Observation {
	tempC := round1Ptr(FahrenheitToCelsius(row.AvgTempF))
	windMS := round1Ptr(KnotsToMetersPerSecond(row.AvgWindKnots))
	precipMM := round1(InchesToMillimeters(row.TotalPrecipIn))

	return Observation{
		Date:            ToDateUTC(date),
		TemperatureC:    tempC,
		HumidityPct:     nil,
		WindSpeedMS:     windMS,
		PrecipitationMM: precipMM,
		Condition:       classifyCondition(precipMM, tempC),
		IngestedAt:      clock.Now().UTC(),
	}
}

// FromTimelineDay builds a canonical observation from one day of the fallback
// API payload. Values arrive already metric; the source-reported condition
// string is kept verbatim.
func FromTimelineDay(date time.Time, day TimelineDay) Observation {
	var precipMM float64
	if day.Precip != nil {
		precipMM = *day.Precip
	}

	return Observation{
		Date:            ToDateUTC(date),
		TemperatureC:    day.TempMax,
		HumidityPct:     day.Humidity,
		WindSpeedMS:     day.WindSpeed,
		PrecipitationMM: precipMM,
		Condition:       day.Conditions,
		IngestedAt:      clock.Now().UTC(),
	}
}

// classifyCondition labels a primary-source observation via an ordered
// decision list. Each branch excludes the next, so no overlap is possible;
// a nil temperature never reaches the cold branch.
func classifyCondition(precipMM float64, tempC *float64) string {
	switch {
	case precipMM > 5:
		return "Rain"
	case precipMM > 0:
		return "Drizzle"
	case tempC != nil && *tempC < 0:
		return "Cold"
	default:
		return "Clear"
	}
}

// round1 rounds to one decimal place, matching the precision stored by the
// original warehouse loaders.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round1Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round1(*v)
	return &r
}
