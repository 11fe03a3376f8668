// Package transcript defines the course records extracted from a transcript of
// records and the raw table shapes they are extracted from.
package transcript

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Section names that the extraction and the strike search treat specially.
const (
	// SectionThesis is the final-thesis block. Its courses are never strike candidates.
	SectionThesis = "Abschlussarbeit"
	// SectionPreferenceElectives holds preference electives that never count.
	SectionPreferenceElectives = "Mastervorzugsfächer"
)

// Row kinds found in the "Typ" column.
const (
	KindSection = "RK" // group marker
	KindCourse  = "MK" // course record
)

// GradeKind discriminates a Grade.
type GradeKind int

const (
	GradePassed GradeKind = iota
	GradeNumeric
)

func (k GradeKind) String() string {
	switch k {
	case GradeNumeric:
		return "numeric"
	default:
		return "passed"
	}
}

// Grade is either Passed (no numeric contribution) or a numeric score where
// lower is better.
type Grade struct {
	kind  GradeKind
	value float64
}

// Passed returns an ungraded pass.
func Passed() Grade { return Grade{kind: GradePassed} }

// Numeric returns a numeric grade.
func Numeric(v float64) Grade { return Grade{kind: GradeNumeric, value: v} }

// IsNumeric reports whether the grade carries a value.
func (g Grade) IsNumeric() bool { return g.kind == GradeNumeric }

// Value returns the numeric value and true, or 0 and false for Passed.
func (g Grade) Value() (float64, bool) {
	if g.kind != GradeNumeric {
		return 0, false
	}
	return g.value, true
}

func (g Grade) String() string {
	if g.kind == GradeNumeric {
		return strconv.FormatFloat(g.value, 'f', -1, 64)
	}
	return "passed"
}

type gradeJSON struct {
	Kind  string   `json:"kind"`
	Value *float64 `json:"value,omitempty"`
}

// MarshalJSON encodes the grade as {"kind":"passed"} or {"kind":"numeric","value":1.3}.
func (g Grade) MarshalJSON() ([]byte, error) {
	out := gradeJSON{Kind: g.kind.String()}
	if g.kind == GradeNumeric {
		v := g.value
		out.Value = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (g *Grade) UnmarshalJSON(data []byte) error {
	var in gradeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("decode grade: %w", err)
	}
	switch in.Kind {
	case "passed":
		*g = Passed()
	case "numeric":
		if in.Value == nil {
			return fmt.Errorf("decode grade: numeric grade without value")
		}
		*g = Numeric(*in.Value)
	default:
		return fmt.Errorf("decode grade: unknown kind %q", in.Kind)
	}
	return nil
}

// Course is one extracted course record. Records are created once by the
// interpreter and passed around by value.
type Course struct {
	Category       string  `json:"category"`
	Label          string  `json:"label"`
	Grade          Grade   `json:"grade"`
	Credits        float64 `json:"credits"`
	WeightModifier float64 `json:"weight_modifier"`
}

// Counts reports whether the course contributes to a weighted average at all.
func (c Course) Counts() bool {
	return c.Grade.IsNumeric() && c.WeightModifier != 0
}

// Strikable reports whether the course may be excluded from the average.
// Thesis courses, passed courses and zero-weight courses are never candidates.
func (c Course) Strikable() bool {
	return c.Category != SectionThesis && c.Counts()
}
