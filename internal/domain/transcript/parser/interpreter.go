// Package parser reconstructs course records from the raw rows a table
// extractor produces for a transcript of records, and decodes those rows from
// the supported input formats.
package parser

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript"
	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/weights"
	"github.com/FACorreiaa/transcript-strike/pkg/numeric"
)

// Recognized row widths.
//
//	full:   Modul-ID | Typ | Module/Fächer | Note | Vm | Ang | CP | Datum | Sem
//	thesis: Modul-ID |       Module/Fächer | Note | Vm | Ang | CP | Datum | Sem
const (
	fullRowCells   = 9
	thesisRowCells = 8
)

// DefaultThesisCredits is the credit volume of the synthetic thesis section.
const DefaultThesisCredits = 15.0

// Grade cells that mean "passed" without a numeric value. Anything else that
// fails to parse is still read as passed but recorded as degraded.
var passMarkers = map[string]bool{
	"B":          true,
	"BE":         true,
	"bestanden":  true,
	"mit Erfolg": true,
}

// SkipReason says why a row produced no record.
type SkipReason string

const (
	SkipShape              SkipReason = "shape"
	SkipKind               SkipReason = "kind"
	SkipSectionMarker      SkipReason = "section_marker"
	SkipEmptyGrade         SkipReason = "empty_grade"
	SkipPreferenceElective SkipReason = "preference_elective"
)

// Degradation records a cell that could not be read and was replaced by its
// fallback value.
type Degradation struct {
	Index  int    `json:"index"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

// Result holds the extracted courses and row statistics.
type Result struct {
	Courses        []transcript.Course
	TotalRows      int
	ParsedRows     int
	SectionsOpened int
	Skipped        map[SkipReason]int
	Degraded       []Degradation
}

// SkippedRows returns the number of rows that produced neither a record nor a section.
func (r *Result) SkippedRows() int {
	n := 0
	for _, c := range r.Skipped {
		n += c
	}
	return n
}

// Config configures the interpreter.
type Config struct {
	ThesisCredits float64
	Weights       *weights.Table
}

// DefaultConfig returns the configuration for the built-in weight table.
func DefaultConfig() Config {
	return Config{
		ThesisCredits: DefaultThesisCredits,
		Weights:       weights.Default(),
	}
}

// Interpreter turns a row stream into course records. It holds no state
// between calls and is safe for concurrent use.
type Interpreter struct {
	config Config
	logger *slog.Logger
}

// Option customizes an Interpreter.
type Option func(*Interpreter)

// WithLogger attaches a logger for per-row debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Interpreter) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// NewInterpreter creates an interpreter.
func NewInterpreter(config Config, opts ...Option) *Interpreter {
	in := &Interpreter{
		config: config,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// section is the open section cursor. remaining is advisory bookkeeping kept
// exact so the zero test in opensSection is reliable.
type section struct {
	name      string
	remaining decimal.Decimal
}

// opensSection is the section-boundary heuristic. The layout has no explicit
// nesting markers: a group row opens a section when none is open, or when the
// open section's credit quota is used up exactly and the group row carries
// positive credits. Every other group row is a nested group and is ignored.
func opensSection(cur *section, credits decimal.Decimal) bool {
	if cur == nil {
		return true
	}
	return cur.remaining.IsZero() && credits.IsPositive()
}

type positionedRow struct {
	table, row int
	cells      []string
}

// Interpret processes every row of every table in order.
func (in *Interpreter) Interpret(tables []transcript.Table) (*Result, error) {
	var rows []positionedRow
	for ti, t := range tables {
		for ri, r := range t.Data {
			rows = append(rows, positionedRow{table: ti, row: ri, cells: r.Texts()})
		}
	}
	return in.run(rows)
}

// InterpretRows processes plain rows as a single table.
func (in *Interpreter) InterpretRows(rows [][]string) (*Result, error) {
	positioned := make([]positionedRow, len(rows))
	for i, cells := range rows {
		positioned[i] = positionedRow{row: i, cells: cells}
	}
	return in.run(positioned)
}

func (in *Interpreter) run(rows []positionedRow) (*Result, error) {
	result := &Result{
		Courses: make([]transcript.Course, 0, len(rows)/2),
		Skipped: make(map[SkipReason]int),
	}
	thesisCredits := decimal.NewFromFloat(in.config.ThesisCredits)

	var cursor *section
	skip := func(idx int, reason SkipReason) {
		result.Skipped[reason]++
		in.logger.Debug("row skipped", "index", idx, "reason", string(reason))
	}
	rowErr := func(idx int, r positionedRow, err error) *RowError {
		return &RowError{Index: idx, Table: r.table, Row: r.row, Cells: len(r.cells), Err: err}
	}

	for idx, r := range rows {
		result.TotalRows++
		cells := r.cells

		var kind, name, gradeText, creditText string
		switch len(cells) {
		case fullRowCells:
			kind = strings.TrimSpace(cells[1])
			name, gradeText, creditText = cells[2], cells[3], cells[6]
		case thesisRowCells:
			name, gradeText, creditText = cells[1], cells[2], cells[5]
			if strings.TrimSpace(name) == transcript.SectionThesis {
				cursor = &section{name: transcript.SectionThesis, remaining: thesisCredits}
				result.SectionsOpened++
				in.logger.Debug("section opened", "index", idx, "section", cursor.name, "credits", cursor.remaining.String())
				continue
			}
			if cursor == nil || cursor.name != transcript.SectionThesis {
				return nil, rowErr(idx, r, ErrThesisLayout)
			}
			kind = transcript.KindCourse
		default:
			skip(idx, SkipShape)
			continue
		}

		label := normalizeLabel(name)
		credits, creditsOK := numeric.ParseCredits(creditText)

		switch kind {
		case transcript.KindSection:
			if opensSection(cursor, credits) {
				cursor = &section{name: label, remaining: credits}
				result.SectionsOpened++
				in.logger.Debug("section opened", "index", idx, "section", label, "credits", credits.String())
			} else {
				skip(idx, SkipSectionMarker)
			}
			continue
		case transcript.KindCourse:
		default:
			skip(idx, SkipKind)
			continue
		}

		gradeText = strings.TrimSpace(gradeText)
		if gradeText == "" {
			skip(idx, SkipEmptyGrade)
			continue
		}
		if cursor == nil {
			return nil, rowErr(idx, r, ErrNoOpenSection)
		}
		if cursor.name == transcript.SectionPreferenceElectives {
			skip(idx, SkipPreferenceElective)
			continue
		}

		grade, gradeOK := parseGrade(gradeText)
		if !gradeOK {
			result.Degraded = append(result.Degraded, Degradation{Index: idx, Column: "grade", Value: gradeText})
		}
		if !creditsOK {
			result.Degraded = append(result.Degraded, Degradation{Index: idx, Column: "credits", Value: creditText})
		}

		creditValue, _ := credits.Float64()
		result.Courses = append(result.Courses, transcript.Course{
			Category:       cursor.name,
			Label:          label,
			Grade:          grade,
			Credits:        creditValue,
			WeightModifier: in.config.Weights.Lookup(label),
		})
		result.ParsedRows++
		cursor.remaining = cursor.remaining.Sub(credits)
	}

	return result, nil
}

// parseGrade reads a grade cell. The boolean is false when the cell was
// neither a number nor a known pass marker.
func parseGrade(text string) (transcript.Grade, bool) {
	v, err := numeric.ParseFloat(text)
	if err == nil {
		return transcript.Numeric(v), true
	}
	return transcript.Passed(), passMarkers[text]
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func normalizeLabel(name string) string {
	return lineBreaks.Replace(name)
}
