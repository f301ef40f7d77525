package battle

import (
	"fmt"
	"strconv"
	"strings"
)

const degreeC = "°C"

// Render formats two reduced locations and the decision into the text report.
func Render(a, b LocationExtrema, d Decision) string {
	var sb strings.Builder

	sb.WriteString("Max temperature\n")
	fmt.Fprintf(&sb, "%s : %s - %s : %s\n",
		a.Name,
		temperaturePair(a.MaxApparentTempActualTemp, a.MaxApparentTemp, a.MaxApparentTempTime),
		temperaturePair(b.MaxApparentTempActualTemp, b.MaxApparentTemp, b.MaxApparentTempTime),
		b.Name)

	sb.WriteString("Min temperature\n")
	fmt.Fprintf(&sb, "%s : %s - %s : %s\n",
		a.Name,
		temperaturePair(a.MinApparentTempActualTemp, a.MinApparentTemp, a.MinApparentTempTime),
		temperaturePair(b.MinApparentTempActualTemp, b.MinApparentTemp, b.MinApparentTempTime),
		b.Name)

	sb.WriteString("Max rain\n")
	fmt.Fprintf(&sb, "%s : %smm at %s - %smm at %s : %s\n",
		a.Name, number(a.MaxRainfall), a.MaxRainfallTime,
		number(b.MaxRainfall), b.MaxRainfallTime, b.Name)

	sb.WriteString("\n")
	if d.IsTie() {
		sb.WriteString("No winner: it's a tie!\n")
	} else {
		fmt.Fprintf(&sb, "Winner: %s on %s!\n", d.Winner, d.Criterion.Label())
	}

	return sb.String()
}

func temperaturePair(actual, apparent float64, at string) string {
	return fmt.Sprintf("%s%s (Real Feel %s%s) at %s", number(actual), degreeC, number(apparent), degreeC, at)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
