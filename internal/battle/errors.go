package battle

import "errors"

var (
	// ErrMissingData is returned when a series is absent, empty or holds non-finite values.
	ErrMissingData = errors.New("missing weather data")
	// ErrMismatchedLengths is returned when the series arrays differ in length.
	ErrMismatchedLengths = errors.New("weather data arrays have different lengths")
	// ErrInvalidConfiguration is returned when cities or thresholds are missing or unusable.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrLocationNotFound is returned when a city cannot be resolved to coordinates.
	ErrLocationNotFound = errors.New("location not found")
	// ErrUpstream is returned when a geocoding or weather service fails or answers malformed data.
	ErrUpstream = errors.New("upstream service failure")
)
