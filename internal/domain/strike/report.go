package strike

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Report is the presentable outcome of a search.
type Report struct {
	ID                    uuid.UUID  `json:"id"`
	BestAverage           *float64   `json:"best_average"`
	Defined               bool       `json:"defined"`
	BaselineAverage       *float64   `json:"baseline_average"`
	Winners               [][]string `json:"winners"`
	CombinationsEvaluated uint64     `json:"combinations_evaluated"`
	CombinationsRejected  uint64     `json:"combinations_rejected"`

	best Average
}

// NewReport builds a report with a fresh ID.
func NewReport(r *Result) *Report {
	rep := &Report{
		ID:                    uuid.New(),
		Defined:               r.Best.Defined,
		Winners:               r.Winners,
		CombinationsEvaluated: r.Evaluated,
		CombinationsRejected:  r.Rejected,
		best:                  r.Best,
	}
	if rep.Winners == nil {
		rep.Winners = [][]string{}
	}
	if r.Best.Defined {
		v := r.Best.Value
		rep.BestAverage = &v
	}
	if r.Baseline.Defined {
		v := r.Baseline.Value
		rep.BaselineAverage = &v
	}
	return rep
}

// Text renders the plain report:
//
//	Best possible grade: 1.5
//	The following strike combinations lead to this grade:
//	[
//	    "Y",
//	]
func (r *Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Best possible grade: %s\n", r.best)
	b.WriteString("The following strike combinations lead to this grade:\n")
	for _, labels := range r.Winners {
		b.WriteString(formatLabels(labels))
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteText writes Text to w.
func (r *Report) WriteText(w io.Writer) error {
	_, err := io.WriteString(w, r.Text())
	return err
}

// WriteJSON writes the indented JSON form to w.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// formatLabels renders a label list one quoted label per line.
func formatLabels(labels []string) string {
	if len(labels) == 0 {
		return "[]"
	}
	var b strings.Builder
	b.WriteString("[\n")
	for _, l := range labels {
		b.WriteString("    ")
		b.WriteString(strconv.Quote(l))
		b.WriteString(",\n")
	}
	b.WriteString("]")
	return b.String()
}
