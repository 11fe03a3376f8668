package strike

import (
	"math"
	"slices"

	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript"
	"github.com/FACorreiaa/transcript-strike/pkg/numeric"
)

// Average is a weighted average grade. It is undefined when no numeric,
// non-zero-weight course contributes.
type Average struct {
	Value   float64
	Defined bool
}

// Undefined is the average of an empty contribution set.
var Undefined = Average{Value: math.NaN()}

func (a Average) String() string {
	if !a.Defined {
		return "NaN"
	}
	return numeric.Format(a.Value)
}

// Better reports whether a is lower than b by more than eps. A defined average
// is always better than an undefined one.
func (a Average) Better(b Average, eps float64) bool {
	switch {
	case !a.Defined:
		return false
	case !b.Defined:
		return true
	default:
		return a.Value < b.Value-eps
	}
}

// Ties reports whether a and b are both defined and within eps.
func (a Average) Ties(b Average, eps float64) bool {
	return a.Defined && b.Defined && numeric.ApproxEqual(a.Value, b.Value, eps)
}

// WeightedAverage computes Σ(grade·credits·weight) / Σ(credits·weight) over the
// numeric courses. Passed and zero-weight courses never contribute.
func WeightedAverage(courses []transcript.Course) Average {
	return evaluate(courses, nil)
}

// Evaluate returns the average of the courses left after striking c. Every
// course whose label is struck is excluded.
func Evaluate(courses []transcript.Course, c Combination) Average {
	return evaluate(courses, c.Labels(courses))
}

func evaluate(courses []transcript.Course, struck []string) Average {
	var sum, weight float64
	for _, c := range courses {
		if !c.Counts() || slices.Contains(struck, c.Label) {
			continue
		}
		g, _ := c.Grade.Value()
		w := c.Credits * c.WeightModifier
		sum += g * w
		weight += w
	}

	if weight == 0 {
		return Undefined
	}
	return Average{Value: sum / weight, Defined: true}
}
