package battle

import (
	"strings"
)

// Criterion names the rule that decided a battle.
type Criterion string

const (
	CriterionMaxApparentTemp Criterion = "maxApparentTemp"
	CriterionMinApparentTemp Criterion = "minApparentTemp"
	CriterionMaxRainfall     Criterion = "maxRainfall"
	CriterionTie             Criterion = "tie"
)

// NoWinner is the winner name reported for a tie.
const NoWinner = "None"

// Label returns the human-readable form used in reports.
func (c Criterion) Label() string {
	switch c {
	case CriterionMaxApparentTemp:
		return "max real feel"
	case CriterionMinApparentTemp:
		return "min real feel"
	case CriterionMaxRainfall:
		return "max rain"
	default:
		return "tie"
	}
}

// Coordinates is a resolved geographic position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Key returns a canonical string key for caching this city's coordinates.
func Key(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// RawHourlySeries is one day of hourly observations as returned by a weather source.
// All four slices are expected to be non-empty and of equal length.
type RawHourlySeries struct {
	Timestamps          []string  `json:"time"`
	Temperature         []float64 `json:"temperature_2m"`
	ApparentTemperature []float64 `json:"apparent_temperature"`
	Rainfall            []float64 `json:"rain"`
}

// LocationExtrema is the reduced summary of one location's hourly series.
type LocationExtrema struct {
	Name string `json:"name"`

	MaxApparentTemp           float64 `json:"maxApparentTempC"`
	MaxApparentTempTime       string  `json:"maxApparentTempTime"`
	MaxApparentTempActualTemp float64 `json:"maxApparentTempActualC"`

	MinApparentTemp           float64 `json:"minApparentTempC"`
	MinApparentTempTime       string  `json:"minApparentTempTime"`
	MinApparentTempActualTemp float64 `json:"minApparentTempActualC"`

	MaxRainfall     float64 `json:"maxRainfallMm"`
	MaxRainfallTime string  `json:"maxRainfallTime"`
}

// Decision is the outcome of a battle: the winner's name (NoWinner on a tie)
// and the criterion that decided it.
type Decision struct {
	Winner    string    `json:"winner"`
	Criterion Criterion `json:"criterion"`
}

// IsTie reports whether no rule produced a winner.
func (d Decision) IsTie() bool {
	return d.Criterion == CriterionTie
}

// Thresholds gate the temperature rules of Decide.
type Thresholds struct {
	Hot  float64 `json:"hot"`
	Cold float64 `json:"cold"`
}

// Result bundles everything produced by a single battle run.
type Result struct {
	RunID    string             `json:"run_id"`
	Cities   [2]LocationExtrema `json:"cities"`
	Decision Decision           `json:"decision"`
	Report   string             `json:"report"`
}
