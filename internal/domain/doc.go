// Package domain models canonical daily weather observations and the raw
// source records they are built from.
//
// # Data Sources
//
// The primary source is the NOAA Global Surface Summary of the Day (GSOD)
// dataset, a pre-populated bulk table in the warehouse keyed by station and
// date. GSOD carries imperial units:
//
//	temp, max, min  → degrees Fahrenheit
//	wdsp            → knots
//	prcp            → inches
//
// Rows are aggregated per date (a station can report multiple rows per day)
// and converted to canonical metric units before storage. GSOD has no direct
// humidity column, so observations built from it carry a null humidity;
// deriving relative humidity from the dewpoint column is a possible future
// refinement.
//
// The fallback source is the Visual Crossing timeline API, used only for
// dates the bulk dataset does not cover. Its payload is already metric
// (unitGroup=metric): tempmax °C, windspeed m/s, precip mm, humidity percent.
//
// # Canonical Units
//
// Every stored observation uses Celsius, millimeters, and meters per second,
// with humidity as a 0–100 percentage and the date as a calendar date with no
// time-of-day component. Temperature, humidity, and wind speed are null when
// the source had nothing usable; precipitation defaults to 0.0 instead
// because "no precipitation recorded" and "dry day" are indistinguishable in
// both sources.
//
// # Condition Classification
//
// Observations from the primary source get a condition label from an ordered
// decision list over the converted values:
//
//	precipitation > 5 mm   → "Rain"
//	precipitation > 0 mm   → "Drizzle"
//	temperature < 0 °C     → "Cold"
//	otherwise              → "Clear"
//
// Each branch excludes the next by construction order, so the labels never
// overlap. A null temperature can never reach the "Cold" branch and falls
// through to "Clear". Fallback observations keep the condition string the API
// reported, verbatim.
package domain
