// Package weights holds the course weight table: a static mapping from course
// name to the multiplier applied to its credits in the weighted average.
// Courses missing from the table weigh 1.0.
package weights

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/transcript-strike/pkg/numeric"
)

// DefaultWeight applies to every course without an entry.
const DefaultWeight = 1.0

// ErrInvalidWeight is returned for negative, non-finite or unparsable weights.
var ErrInvalidWeight = errors.New("invalid weight")

var builtin = map[string]float64{
	"Bachelorarbeit": 1.5,
	"Kolloquium":     1.5,
	// Ungraded in practice but listed so a stray grade never counts.
	"Software-Projektpraktikum":            0.0,
	"Systemprogrammierung":                 0.0,
	"Nicht-technisches Wahlfach Mentoring": 0.0,
}

// Table is an immutable weight table. The zero value is an empty table where
// every course weighs DefaultWeight.
type Table struct {
	entries map[string]float64
}

// Entry is one row of the table.
type Entry struct {
	Label  string  `csv:"label" json:"label"`
	Weight float64 `csv:"weight" json:"weight"`
}

// Default returns the built-in table.
func Default() *Table {
	t, _ := New(builtin)
	return t
}

// New copies entries into a table after validating every weight.
func New(entries map[string]float64) (*Table, error) {
	t := &Table{entries: make(map[string]float64, len(entries))}
	for label, w := range entries {
		if err := validate(label, w); err != nil {
			return nil, err
		}
		t.entries[label] = w
	}
	return t, nil
}

func validate(label string, w float64) error {
	if strings.TrimSpace(label) == "" {
		return fmt.Errorf("%w: empty label", ErrInvalidWeight)
	}
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return fmt.Errorf("%w: %q has weight %v", ErrInvalidWeight, label, w)
	}
	return nil
}

// Lookup returns the weight for label, or DefaultWeight.
func (t *Table) Lookup(label string) float64 {
	if w, ok := t.Get(label); ok {
		return w
	}
	return DefaultWeight
}

// Get returns the explicit weight for label, if any.
func (t *Table) Get(label string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	w, ok := t.entries[label]
	return w, ok
}

// Len returns the number of explicit entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns the table sorted by label.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, 0, len(t.entries))
	for label, w := range t.entries {
		out = append(out, Entry{Label: label, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Merge returns a new table holding t's entries overridden by other's.
func (t *Table) Merge(other *Table) *Table {
	merged := &Table{entries: make(map[string]float64, t.Len()+other.Len())}
	for _, e := range t.Entries() {
		merged.entries[e.Label] = e.Weight
	}
	for _, e := range other.Entries() {
		merged.entries[e.Label] = e.Weight
	}
	return merged
}

type csvRow struct {
	Label  string `csv:"label"`
	Weight string `csv:"weight"`
}

// LoadCSV reads a table from CSV with a "label,weight" header. Weights may use
// a decimal comma.
func LoadCSV(r io.Reader) (*Table, error) {
	var rows []csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse weights CSV: %w", err)
	}

	entries := make(map[string]float64, len(rows))
	for i, row := range rows {
		label := strings.TrimSpace(row.Label)
		w, err := numeric.ParseFloat(row.Weight)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidWeight, i+2, err)
		}
		if _, dup := entries[label]; dup {
			return nil, fmt.Errorf("%w: line %d: duplicate label %q", ErrInvalidWeight, i+2, label)
		}
		entries[label] = w
	}
	return New(entries)
}

// LoadFile reads a CSV table from path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open weights file: %w", err)
	}
	defer f.Close()
	return LoadCSV(f)
}

// WriteCSV writes the table in the format LoadCSV reads.
func (t *Table) WriteCSV(w io.Writer) error {
	entries := t.Entries()
	if entries == nil {
		entries = []Entry{}
	}
	if err := gocsv.Marshal(&entries, w); err != nil {
		return fmt.Errorf("failed to write weights CSV: %w", err)
	}
	return nil
}

// Suggestion is a table key that closely resembles a label without an entry.
type Suggestion struct {
	Label    string
	Key      string
	Distance int
}

// Suggest looks for a table key within maxDistance edits of label, ignoring
// case. It returns false when label has an exact entry or nothing is close.
// Extraction uses it to flag labels that probably should have matched.
func (t *Table) Suggest(label string, maxDistance int) (Suggestion, bool) {
	if t.Len() == 0 || maxDistance <= 0 {
		return Suggestion{}, false
	}
	if _, ok := t.Get(label); ok {
		return Suggestion{}, false
	}

	folded := strings.ToLower(label)
	best := Suggestion{Distance: maxDistance + 1}
	for _, e := range t.Entries() {
		d := fuzzy.LevenshteinDistance(folded, strings.ToLower(e.Label))
		if d < best.Distance {
			best = Suggestion{Label: label, Key: e.Label, Distance: d}
		}
	}
	if best.Distance > maxDistance {
		return Suggestion{}, false
	}
	return best, true
}
