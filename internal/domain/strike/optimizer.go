package strike

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript"
	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/weights"
	"github.com/FACorreiaa/transcript-strike/pkg/numeric"
)

var (
	// ErrBudgetExceeded is returned when the search evaluates more
	// combinations than Options.MaxCombinations allows.
	ErrBudgetExceeded = errors.New("strike search budget exceeded")
	// ErrInvalidCourse is returned for courses with negative or non-finite
	// credits, weights or grades.
	ErrInvalidCourse = errors.New("invalid course")
)

// ctxCheckEvery is how many combinations are evaluated between context checks.
const ctxCheckEvery = 1024

// Options configure a search.
type Options struct {
	// CreditCap bounds the struck credits of a combination.
	CreditCap float64
	// MaxCombinations stops the search with ErrBudgetExceeded once more
	// combinations were evaluated. Zero means unlimited.
	MaxCombinations uint64
	// Epsilon is the tolerance for tie detection.
	Epsilon float64
	// Weights, when set, replaces every course's weight modifier with the
	// table lookup of its label.
	Weights *weights.Table
}

// DefaultOptions returns the 30 credit cap with the default tie tolerance.
func DefaultOptions() Options {
	return Options{
		CreditCap: DefaultCreditCap,
		Epsilon:   numeric.DefaultEpsilon,
	}
}

// Result of a search.
type Result struct {
	Best     Average
	Baseline Average
	// Winners are the struck label sets reaching Best, each sorted, without
	// duplicates. An undefined Best has no winners.
	Winners [][]string

	Categories int
	Candidates int
	Evaluated  uint64
	Rejected   uint64
	Duration   time.Duration
}

// Optimizer runs the exhaustive strike search.
type Optimizer struct {
	opts   Options
	logger *slog.Logger
}

// NewOptimizer creates an optimizer. A nil logger discards output.
func NewOptimizer(opts Options, logger *slog.Logger) *Optimizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Epsilon < 0 || math.IsNaN(opts.Epsilon) {
		opts.Epsilon = 0
	}
	return &Optimizer{opts: opts, logger: logger}
}

type winner struct {
	labels []string
	value  float64
}

// Optimize evaluates every admissible combination and selects the minimal
// average. The courses are not modified.
func (o *Optimizer) Optimize(ctx context.Context, courses []transcript.Course) (*Result, error) {
	start := time.Now()

	courses, err := o.prepare(courses)
	if err != nil {
		return nil, err
	}

	groups := Candidates(courses)
	enum := NewEnumerator(courses, groups, o.opts.CreditCap)
	result := &Result{
		Best:       Undefined,
		Baseline:   WeightedAverage(courses),
		Categories: len(groups),
		Candidates: CandidateCount(groups),
	}

	o.logger.DebugContext(ctx, "strike search started",
		"courses", len(courses),
		"categories", result.Categories,
		"candidates", result.Candidates,
		"combinations_upper_bound", enum.Total())

	var (
		winners []winner
		seen    = make(map[string]struct{})
	)

	for combo := range enum.All() {
		result.Evaluated = enum.Yielded()
		if o.opts.MaxCombinations > 0 && result.Evaluated > o.opts.MaxCombinations {
			return nil, fmt.Errorf("%w: more than %d combinations", ErrBudgetExceeded, o.opts.MaxCombinations)
		}
		if result.Evaluated%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("strike search after %d combinations: %w", result.Evaluated, err)
			}
		}

		avg := Evaluate(courses, combo)
		switch {
		case avg.Better(result.Best, o.opts.Epsilon):
			o.logger.DebugContext(ctx, "new best average", "average", avg.String(), "struck", combo.Size())
			result.Best = avg
			winners = winners[:0]
			clear(seen)
		case avg.Ties(result.Best, o.opts.Epsilon):
			result.Best.Value = min(result.Best.Value, avg.Value)
		default:
			continue
		}

		labels := combo.Labels(courses)
		slices.Sort(labels)
		labels = slices.Compact(labels)
		key := strings.Join(labels, "\x00")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		winners = append(winners, winner{labels: labels, value: avg.Value})
	}

	result.Rejected = enum.Rejected()
	result.Winners = o.finalize(result.Best, winners)
	result.Duration = time.Since(start)

	o.logger.InfoContext(ctx, "strike search finished",
		"best", result.Best.String(),
		"baseline", result.Baseline.String(),
		"winners", len(result.Winners),
		"evaluated", result.Evaluated,
		"rejected", result.Rejected,
		"duration", result.Duration)

	return result, nil
}

// prepare validates the courses and applies the weight override on a copy.
func (o *Optimizer) prepare(courses []transcript.Course) ([]transcript.Course, error) {
	out := make([]transcript.Course, len(courses))
	for i, c := range courses {
		if o.opts.Weights != nil {
			c.WeightModifier = o.opts.Weights.Lookup(c.Label)
		}
		if err := validateCourse(c); err != nil {
			return nil, fmt.Errorf("course %d (%q): %w", i, c.Label, err)
		}
		out[i] = c
	}
	return out, nil
}

func validateCourse(c transcript.Course) error {
	if c.Credits < 0 || math.IsNaN(c.Credits) || math.IsInf(c.Credits, 0) {
		return fmt.Errorf("%w: credits %v", ErrInvalidCourse, c.Credits)
	}
	if c.WeightModifier < 0 || math.IsNaN(c.WeightModifier) || math.IsInf(c.WeightModifier, 0) {
		return fmt.Errorf("%w: weight %v", ErrInvalidCourse, c.WeightModifier)
	}
	if v, ok := c.Grade.Value(); ok && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return fmt.Errorf("%w: grade %v", ErrInvalidCourse, v)
	}
	return nil
}

// finalize drops candidates that drifted out of the tolerance of the final
// best value and orders the rest by size, then lexically.
func (o *Optimizer) finalize(best Average, winners []winner) [][]string {
	if !best.Defined {
		return nil
	}

	out := make([][]string, 0, len(winners))
	for _, w := range winners {
		if numeric.ApproxEqual(w.value, best.Value, o.opts.Epsilon) {
			out = append(out, w.labels)
		}
	}

	slices.SortFunc(out, func(a, b []string) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return slices.Compare(a, b)
	})
	return out
}
