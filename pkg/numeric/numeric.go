// Package numeric parses the comma-decimal numbers found in German transcript
// cells and provides exact arithmetic helpers built on shopspring/decimal, so
// credit bookkeeping never drifts the way repeated float subtraction does.
package numeric

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmpty is returned when a cell holds no number at all.
var ErrEmpty = errors.New("empty number")

// DefaultEpsilon is the tolerance used when comparing averages for ties.
const DefaultEpsilon = 1e-9

// ParseCommaDecimal parses a cell such as "7,5" or "1,3". Every comma is read as
// a decimal point; thousands separators do not occur in grade or credit cells.
func ParseCommaDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmpty
	}

	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return d, nil
}

// ParseFloat is ParseCommaDecimal converted to float64.
func ParseFloat(s string) (float64, error) {
	d, err := ParseCommaDecimal(s)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

// ParseCredits parses a credit cell. Unparsable or negative values yield 0 and
// false; the caller decides whether to record the degradation.
func ParseCredits(s string) (decimal.Decimal, bool) {
	d, err := ParseCommaDecimal(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// ApproxEqual compares two finite values with an absolute tolerance.
func ApproxEqual(a, b, eps float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	return math.Abs(a-b) <= eps
}

// Format renders a value with the shortest representation that round-trips.
func Format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
