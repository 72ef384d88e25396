package progression

import "math"

// Checkpoint is the expected value of a metric at a given week on the path
// from current to target.
type Checkpoint struct {
	Week  int     `json:"week"`
	Value float64 `json:"value"`
}

// Build interpolates linearly from start to target over the given number of
// weeks, one checkpoint per week. A nil start assumes 80% of target, which
// errs conservative for both directions.
//
// TODO: phase-aware progression (slow start, taper) once per-category phase
// curves land.
func Build(start *float64, target float64, weeks int) []Checkpoint {
	if weeks < 1 {
		weeks = 1
	}

	from := target * 0.8
	if start != nil {
		from = *start
	}

	stepSize := (target - from) / float64(weeks)

	out := make([]Checkpoint, 0, weeks)
	for w := 1; w <= weeks; w++ {
		out = append(out, Checkpoint{
			Week:  w,
			Value: round2(from + stepSize*float64(w)),
		})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
