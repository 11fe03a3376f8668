package strike

import (
	"iter"
	"math"
	"math/bits"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript"
)

// DefaultCreditCap is the maximum credit volume that may be struck.
const DefaultCreditCap = 30.0

// Combination is one admissible strike set: at most one course per category.
type Combination struct {
	// Struck holds indices into the course list, ordered by category.
	Struck  []int
	Credits float64
}

// Size returns the number of struck courses.
func (c Combination) Size() int { return len(c.Struck) }

// Labels returns the labels of the struck courses.
func (c Combination) Labels(courses []transcript.Course) []string {
	labels := make([]string, len(c.Struck))
	for i, idx := range c.Struck {
		labels[i] = courses[idx].Label
	}
	return labels
}

// Enumerator walks every admissible combination in order of increasing size.
// Struck credits are summed exactly, and a partial choice that already
// exceeds the cap is not extended since credits are never negative.
type Enumerator struct {
	groups  []Group
	credits []decimal.Decimal
	floats  []float64
	limit   decimal.Decimal
	yielded uint64
}

// NewEnumerator prepares the enumeration over the given candidate groups.
// Credits must be non-negative.
func NewEnumerator(courses []transcript.Course, groups []Group, creditCap float64) *Enumerator {
	e := &Enumerator{
		groups:  groups,
		credits: make([]decimal.Decimal, len(courses)),
		floats:  make([]float64, len(courses)),
		limit:   decimal.NewFromFloat(creditCap),
	}
	for i, c := range courses {
		e.credits[i] = decimal.NewFromFloat(c.Credits)
		e.floats[i] = c.Credits
	}
	return e
}

// Total returns the number of combinations without the credit cap, that is
// the product of (candidates + 1) over all groups. It saturates at MaxUint64.
func (e *Enumerator) Total() uint64 {
	total := uint64(1)
	for _, g := range e.groups {
		hi, lo := bits.Mul64(total, uint64(len(g.Candidates))+1)
		if hi != 0 {
			return math.MaxUint64
		}
		total = lo
	}
	return total
}

// Yielded returns how many combinations the last iteration produced.
func (e *Enumerator) Yielded() uint64 { return e.yielded }

// Rejected returns how many combinations were discarded by the cap. It is
// only meaningful after a complete iteration.
func (e *Enumerator) Rejected() uint64 {
	total := e.Total()
	if total == math.MaxUint64 || e.yielded > total {
		return 0
	}
	return total - e.yielded
}

// All yields every admissible combination. The empty combination comes
// first. Each yielded Struck slice is freshly allocated.
func (e *Enumerator) All() iter.Seq[Combination] {
	return func(yield func(Combination) bool) {
		e.yielded = 0
		picked := make([]int, 0, len(e.groups))

		var walk func(k, start int, sum decimal.Decimal) bool
		walk = func(k, start int, sum decimal.Decimal) bool {
			if len(picked) == k {
				e.yielded++
				return yield(e.combination(picked))
			}
			// not enough groups left to reach k
			for g := start; g <= len(e.groups)-(k-len(picked)); g++ {
				for _, idx := range e.groups[g].Candidates {
					next := sum.Add(e.credits[idx])
					if next.GreaterThan(e.limit) {
						continue
					}
					picked = append(picked, idx)
					ok := walk(k, g+1, next)
					picked = picked[:len(picked)-1]
					if !ok {
						return false
					}
				}
			}
			return true
		}

		for k := 0; k <= len(e.groups); k++ {
			if !walk(k, 0, decimal.Zero) {
				return
			}
		}
	}
}

func (e *Enumerator) combination(picked []int) Combination {
	c := Combination{Struck: make([]int, len(picked))}
	copy(c.Struck, picked)
	for _, idx := range picked {
		c.Credits += e.floats[idx]
	}
	return c
}
