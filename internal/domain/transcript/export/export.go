// Package export writes extracted course records to CSV, XLSX and JSON, and
// reads the CSV and JSON forms back.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript"
	"github.com/FACorreiaa/transcript-strike/pkg/numeric"
)

// ErrUnsupportedFormat is returned for unknown export formats.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format of an export file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// passedText is the grade column value of passed courses.
const passedText = "passed"

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Courses"

var header = []string{"category", "label", "grade", "credits", "weight_modifier"}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch Format(ext) {
	case FormatCSV, FormatXLSX, FormatJSON:
		return Format(ext), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Write dispatches to the writer of the given format.
func Write(w io.Writer, format Format, courses []transcript.Course) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, courses)
	case FormatXLSX:
		return WriteXLSX(w, courses)
	case FormatJSON:
		return WriteJSON(w, courses)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Read dispatches to the reader of the given format. XLSX is write-only.
func Read(r io.Reader, format Format) ([]transcript.Course, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatJSON:
		return ReadJSON(r)
	}
	return nil, fmt.Errorf("%w: cannot read %q", ErrUnsupportedFormat, format)
}

type csvRecord struct {
	Category       string  `csv:"category"`
	Label          string  `csv:"label"`
	Grade          string  `csv:"grade"`
	Credits        float64 `csv:"credits"`
	WeightModifier float64 `csv:"weight_modifier"`
}

func gradeText(g transcript.Grade) string {
	if v, ok := g.Value(); ok {
		return numeric.Format(v)
	}
	return passedText
}

// WriteCSV writes one line per course below a header.
func WriteCSV(w io.Writer, courses []transcript.Course) error {
	records := make([]csvRecord, len(courses))
	for i, c := range courses {
		records[i] = csvRecord{
			Category:       c.Category,
			Label:          c.Label,
			Grade:          gradeText(c.Grade),
			Credits:        c.Credits,
			WeightModifier: c.WeightModifier,
		}
	}
	if err := gocsv.Marshal(&records, w); err != nil {
		return fmt.Errorf("failed to write courses CSV: %w", err)
	}
	return nil
}

// ReadCSV reads the WriteCSV form. Grades other than "passed" must be numeric;
// a decimal comma is accepted.
func ReadCSV(r io.Reader) ([]transcript.Course, error) {
	var records []csvRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("failed to parse courses CSV: %w", err)
	}

	courses := make([]transcript.Course, len(records))
	for i, rec := range records {
		grade := transcript.Passed()
		if text := strings.TrimSpace(rec.Grade); !strings.EqualFold(text, passedText) {
			v, err := numeric.ParseFloat(text)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid grade %q: %w", i+2, rec.Grade, err)
			}
			grade = transcript.Numeric(v)
		}
		courses[i] = transcript.Course{
			Category:       rec.Category,
			Label:          rec.Label,
			Grade:          grade,
			Credits:        rec.Credits,
			WeightModifier: rec.WeightModifier,
		}
	}
	return courses, nil
}

// WriteXLSX writes a workbook with a single sheet. Numeric grades, credits and
// weights are stored as numbers.
func WriteXLSX(w io.Writer, courses []transcript.Course) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &row); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "E1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, c := range courses {
		var grade interface{} = passedText
		if v, ok := c.Grade.Value(); ok {
			grade = v
		}
		values := []interface{}{c.Category, c.Label, grade, c.Credits, c.WeightModifier}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "B", 40); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteJSON writes the courses as an indented JSON array.
func WriteJSON(w io.Writer, courses []transcript.Course) error {
	if courses == nil {
		courses = []transcript.Course{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(courses); err != nil {
		return fmt.Errorf("failed to encode courses: %w", err)
	}
	return nil
}

// ReadJSON reads the WriteJSON form.
func ReadJSON(r io.Reader) ([]transcript.Course, error) {
	var courses []transcript.Course
	if err := json.NewDecoder(r).Decode(&courses); err != nil {
		return nil, fmt.Errorf("failed to decode courses: %w", err)
	}
	return courses, nil
}
