package battle

import (
	"fmt"
	"math"
	"strings"
)

// Reduce validates a raw hourly series and reduces it to the extrema used by Decide.
// Validation order: every series non-empty (ErrMissingData), equal lengths
// (ErrMismatchedLengths), finite values (ErrMissingData).
// When several hours share an extreme value the earliest one wins.
func Reduce(series RawHourlySeries, name string) (LocationExtrema, error) {
	if len(series.Timestamps) == 0 || len(series.Temperature) == 0 ||
		len(series.ApparentTemperature) == 0 || len(series.Rainfall) == 0 {
		return LocationExtrema{}, fmt.Errorf("%s: %w: empty data array(s)", name, ErrMissingData)
	}

	n := len(series.Timestamps)
	if len(series.Temperature) != n || len(series.ApparentTemperature) != n || len(series.Rainfall) != n {
		return LocationExtrema{}, fmt.Errorf("%s: %w (time=%d temperature=%d apparent=%d rain=%d)",
			name, ErrMismatchedLengths, n, len(series.Temperature), len(series.ApparentTemperature), len(series.Rainfall))
	}

	if err := checkFinite(series); err != nil {
		return LocationExtrema{}, fmt.Errorf("%s: %w", name, err)
	}

	iMax, iMin, iRain := 0, 0, 0
	for i := 1; i < n; i++ {
		if series.ApparentTemperature[i] > series.ApparentTemperature[iMax] {
			iMax = i
		}
		if series.ApparentTemperature[i] < series.ApparentTemperature[iMin] {
			iMin = i
		}
		if series.Rainfall[i] > series.Rainfall[iRain] {
			iRain = i
		}
	}

	return LocationExtrema{
		Name: name,

		MaxApparentTemp:           series.ApparentTemperature[iMax],
		MaxApparentTempTime:       hourOfDay(series.Timestamps[iMax]),
		MaxApparentTempActualTemp: series.Temperature[iMax],

		MinApparentTemp:           series.ApparentTemperature[iMin],
		MinApparentTempTime:       hourOfDay(series.Timestamps[iMin]),
		MinApparentTempActualTemp: series.Temperature[iMin],

		MaxRainfall:     series.Rainfall[iRain],
		MaxRainfallTime: hourOfDay(series.Timestamps[iRain]),
	}, nil
}

func checkFinite(series RawHourlySeries) error {
	fields := []struct {
		name   string
		values []float64
	}{
		{"temperature", series.Temperature},
		{"apparent temperature", series.ApparentTemperature},
		{"rain", series.Rainfall},
	}
	for _, f := range fields {
		for i, v := range f.values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %s at index %d is not a finite number", ErrMissingData, f.name, i)
			}
		}
	}
	return nil
}

// hourOfDay returns the time component of an ISO-8601 date-time ("2024-01-01T13:00" -> "13:00").
func hourOfDay(ts string) string {
	if _, clock, ok := strings.Cut(ts, "T"); ok {
		return clock
	}
	return ts
}
