package battle

// Decide picks the winner between two reduced locations.
//
// Rules are tried in order and the first one producing a strict winner decides:
//  1. heat: if either max real feel reaches t.Hot, the higher max wins.
//  2. cold: if either min real feel is at or below t.Cold, the lower min wins.
//  3. rain: if either location saw rain, the higher max rainfall wins.
//
// Otherwise the result is a tie.
func Decide(a, b LocationExtrema, t Thresholds) Decision {
	if a.MaxApparentTemp >= t.Hot || b.MaxApparentTemp >= t.Hot {
		switch {
		case a.MaxApparentTemp > b.MaxApparentTemp:
			return Decision{Winner: a.Name, Criterion: CriterionMaxApparentTemp}
		case b.MaxApparentTemp > a.MaxApparentTemp:
			return Decision{Winner: b.Name, Criterion: CriterionMaxApparentTemp}
		}
	}

	if a.MinApparentTemp <= t.Cold || b.MinApparentTemp <= t.Cold {
		switch {
		case a.MinApparentTemp < b.MinApparentTemp:
			return Decision{Winner: a.Name, Criterion: CriterionMinApparentTemp}
		case b.MinApparentTemp < a.MinApparentTemp:
			return Decision{Winner: b.Name, Criterion: CriterionMinApparentTemp}
		}
	}

	if a.MaxRainfall > 0 || b.MaxRainfall > 0 {
		switch {
		case a.MaxRainfall > b.MaxRainfall:
			return Decision{Winner: a.Name, Criterion: CriterionMaxRainfall}
		case b.MaxRainfall > a.MaxRainfall:
			return Decision{Winner: b.Name, Criterion: CriterionMaxRainfall}
		}
	}

	return Decision{Winner: NoWinner, Criterion: CriterionTie}
}
