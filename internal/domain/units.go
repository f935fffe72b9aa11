package domain

// Unit conversions from GSOD source units to canonical metric units.
// All are total over optional input: nil propagates, except precipitation
// where an absent value means a dry day and becomes 0.0.

// FahrenheitToCelsius converts °F to °C, propagating nil.
func FahrenheitToCelsius(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := (*f - 32) * 5 / 9
	return &c
}

// InchesToMillimeters converts inches to millimeters, treating nil as 0.0.
func InchesToMillimeters(v *float64) float64 {
	if v == nil {
		return 0.0
	}
	return *v * 25.4
}

// KnotsToMetersPerSecond converts knots to m/s, propagating nil.
func KnotsToMetersPerSecond(v *float64) *float64 {
	if v == nil {
		return nil
	}
	ms := *v * 0.514
	return &ms
}
