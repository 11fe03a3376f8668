package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript"
	tt "github.com/FACorreiaa/transcript-strike/internal/domain/transcript/transcripttest"
	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/weights"
)

func interpret(t *testing.T, rows [][]string) *Result {
	t.Helper()
	result, err := NewInterpreter(DefaultConfig()).InterpretRows(rows)
	require.NoError(t, err)
	return result
}

func labels(courses []transcript.Course) []string {
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.Label
	}
	return out
}

func TestInterpreter_Sections(t *testing.T) {
	t.Run("course records take the open section", func(t *testing.T) {
		result := interpret(t, [][]string{
			tt.FullRow("RK", "Pflichtbereich", "", "10"),
			tt.FullRow("MK", "Analysis", "1,3", "5"),
			tt.FullRow("MK", "Algebra", "2,0", "5"),
		})

		require.Len(t, result.Courses, 2)
		assert.Equal(t, "Pflichtbereich", result.Courses[0].Category)
		assert.Equal(t, transcript.Numeric(1.3), result.Courses[0].Grade)
		assert.Equal(t, 5.0, result.Courses[1].Credits)
		assert.Equal(t, 1, result.SectionsOpened)
		assert.Equal(t, 2, result.ParsedRows)
	})

	t.Run("nested group row while credits remain is a no-op", func(t *testing.T) {
		result := interpret(t, [][]string{
			tt.FullRow("RK", "Pflichtbereich", "", "10"),
			tt.FullRow("MK", "Analysis", "1,3", "5"),
			tt.FullRow("RK", "Vertiefung", "", "5"),
			tt.FullRow("MK", "Algebra", "2,0", "5"),
		})

		require.Len(t, result.Courses, 2)
		assert.Equal(t, "Pflichtbereich", result.Courses[1].Category)
		assert.Equal(t, 1, result.Skipped[SkipSectionMarker])
	})

	t.Run("exhausted section reopens on positive group row", func(t *testing.T) {
		result := interpret(t, [][]string{
			tt.FullRow("RK", "Pflichtbereich", "", "7,5"),
			tt.FullRow("MK", "Analysis", "1,3", "2,5"),
			tt.FullRow("MK", "Algebra", "2,0", "5"),
			tt.FullRow("RK", "Wahlbereich", "", "5"),
			tt.FullRow("MK", "Robotik", "1,7", "5"),
		})

		require.Len(t, result.Courses, 3)
		assert.Equal(t, "Wahlbereich", result.Courses[2].Category)
		assert.Equal(t, 2, result.SectionsOpened)
	})

	t.Run("exhausted section ignores zero-credit group row", func(t *testing.T) {
		result := interpret(t, [][]string{
			tt.FullRow("RK", "Pflichtbereich", "", "5"),
			tt.FullRow("MK", "Analysis", "1,3", "5"),
			tt.FullRow("RK", "Leer", "", "0"),
			tt.FullRow("MK", "Nachtrag", "2,3", "0"),
		})

		require.Len(t, result.Courses, 2)
		assert.Equal(t, "Pflichtbereich", result.Courses[1].Category)
	})

	t.Run("cursor stays open after the quota is used up", func(t *testing.T) {
		result := interpret(t, [][]string{
			tt.FullRow("RK", "Pflichtbereich", "", "5"),
			tt.FullRow("MK", "Analysis", "1,3", "5"),
			tt.FullRow("MK", "Zusatz", "2,0", "5"),
		})

		require.Len(t, result.Courses, 2)
		assert.Equal(t, "Pflichtbereich", result.Courses[1].Category)
	})

	t.Run("section names are normalized", func(t *testing.T) {
		result := interpret(t, [][]string{
			tt.FullRow("RK", "Pflicht\nbereich", "", "5"),
			tt.FullRow("MK", "Analysis", "1,3", "5"),
		})

		assert.Equal(t, "Pflicht bereich", result.Courses[0].Category)
	})
}

func TestInterpreter_CourseRows(t *testing.T) {
	t.Run("skips empty grades", func(t *testing.T) {
		result := interpret(t, [][]string{
			tt.FullRow("RK", "Pflicht", "", "10"),
			tt.FullRow("MK", "Offen", "", "5"),
			tt.FullRow("MK", "Offen 2", "   ", "5"),
			tt.FullRow("MK", "Analysis", "1,0", "5"),
		})

		assert.Equal(t, []string{"Analysis"}, labels(result.Courses))
		assert.Equal(t, 2, result.Skipped[SkipEmptyGrade])
	})

	t.Run("empty-grade row before any section is skipped", func(t *testing.T) {
		result := interpret(t, [][]string{
			tt.FullRow("MK", "Offen", "", "5"),
		})
		assert.Empty(t, result.Courses)
	})

	t.Run("skips preference electives", func(t *testing.T) {
		result := interpret(t, [][]string{
			tt.FullRow("RK", transcript.SectionPreferenceElectives, "", "10"),
			tt.FullRow("MK", "Vorzug", "1,0", "5"),
		})

		assert.Empty(t, result.Courses)
		assert.Equal(t, 1, result.Skipped[SkipPreferenceElective])
	})

	t.Run("skips other kinds and shapes", func(t *testing.T) {
		result := interpret(t, [][]string{
			{"Modul-ID", "Typ", "Module/Fächer", "Note", "Vm", "Ang", "CP", "Datum", "Sem"},
			{"only", "three", "cells"},
			{},
			tt.FullRow("RK", "Pflicht", "", "5"),
			tt.FullRow("PK", "Prüfung", "1,0", "5"),
			tt.FullRow("MK", "Analysis", "1,0", "5"),
		})

		assert.Equal(t, []string{"Analysis"}, labels(result.Courses))
		assert.Equal(t, 2, result.Skipped[SkipKind])
		assert.Equal(t, 2, result.Skipped[SkipShape])
		assert.Equal(t, 4, result.SkippedRows())
		assert.Equal(t, 6, result.TotalRows)
	})

	t.Run("normalizes line breaks in labels", func(t *testing.T) {
		result := interpret(t, [][]string{
			tt.FullRow("RK", "Pflicht", "", "10"),
			tt.FullRow("MK", "Software-\nProjektpraktikum", "1,0", "5"),
			tt.FullRow("MK", "Nicht-technisches\r\nWahlfach\rMentoring", "2,0", "5"),
		})

		assert.Equal(t, []string{"Software- Projektpraktikum", "Nicht-technisches Wahlfach Mentoring"}, labels(result.Courses))
		assert.Equal(t, 0.0, result.Courses[1].WeightModifier)
		assert.Equal(t, 1.0, result.Courses[0].WeightModifier)
	})

	t.Run("degrades unreadable cells", func(t *testing.T) {
		result := interpret(t, [][]string{
			tt.FullRow("RK", "Pflicht", "", "10"),
			tt.FullRow("MK", "Praktikum", "B", "5"),
			tt.FullRow("MK", "Seminar", "teilgenommen", "x"),
		})

		require.Len(t, result.Courses, 2)
		assert.False(t, result.Courses[0].Grade.IsNumeric())
		assert.False(t, result.Courses[1].Grade.IsNumeric())
		assert.Equal(t, 0.0, result.Courses[1].Credits)
		assert.Equal(t, []Degradation{
			{Index: 2, Column: "grade", Value: "teilgenommen"},
			{Index: 2, Column: "credits", Value: "x"},
		}, result.Degraded)
	})

	t.Run("uses the configured weight table", func(t *testing.T) {
		table, err := weights.New(map[string]float64{"Analysis": 2})
		require.NoError(t, err)

		result, err := NewInterpreter(Config{ThesisCredits: 15, Weights: table}).InterpretRows([][]string{
			tt.FullRow("RK", "Pflicht", "", "5"),
			tt.FullRow("MK", "Analysis", "1,0", "5"),
		})
		require.NoError(t, err)
		assert.Equal(t, 2.0, result.Courses[0].WeightModifier)
	})
}

func TestInterpreter_Thesis(t *testing.T) {
	t.Run("thesis block opens synthetic section", func(t *testing.T) {
		result := interpret(t, [][]string{
			tt.FullRow("RK", "Pflicht", "", "5"),
			tt.FullRow("MK", "Analysis", "1,3", "5"),
			tt.ThesisRow("Abschlussarbeit", "", ""),
			tt.ThesisRow("Bachelorarbeit", "1,7", "12"),
			tt.ThesisRow("Kolloquium", "1,0", "3"),
		})

		require.Len(t, result.Courses, 3)
		thesis := result.Courses[1]
		assert.Equal(t, transcript.SectionThesis, thesis.Category)
		assert.Equal(t, "Bachelorarbeit", thesis.Label)
		assert.Equal(t, 1.5, thesis.WeightModifier)
		assert.Equal(t, 12.0, thesis.Credits)
	})

	t.Run("thesis marker overrides an open section", func(t *testing.T) {
		result := interpret(t, [][]string{
			tt.FullRow("RK", "Pflicht", "", "30"),
			tt.ThesisRow("Abschlussarbeit", "", ""),
			tt.ThesisRow("Bachelorarbeit", "1,7", "12"),
		})
		assert.Equal(t, transcript.SectionThesis, result.Courses[0].Category)
	})

	t.Run("8-cell row outside thesis block fails", func(t *testing.T) {
		_, err := NewInterpreter(DefaultConfig()).InterpretRows([][]string{
			tt.FullRow("RK", "Pflicht", "", "5"),
			tt.ThesisRow("Bachelorarbeit", "1,7", "12"),
		})

		require.ErrorIs(t, err, ErrThesisLayout)
		var rowErr *RowError
		require.ErrorAs(t, err, &rowErr)
		assert.Equal(t, 1, rowErr.Index)
		assert.Equal(t, 8, rowErr.Cells)
	})

	t.Run("8-cell row with no section fails", func(t *testing.T) {
		_, err := NewInterpreter(DefaultConfig()).InterpretRows([][]string{
			tt.ThesisRow("Bachelorarbeit", "1,7", "12"),
		})
		assert.ErrorIs(t, err, ErrThesisLayout)
	})
}

func TestInterpreter_NoOpenSection(t *testing.T) {
	_, err := NewInterpreter(DefaultConfig()).InterpretRows([][]string{
		{"id", "MK", "Analysis", "1,3", "", "", "5", "", ""},
	})

	require.ErrorIs(t, err, ErrNoOpenSection)
	assert.Contains(t, err.Error(), "row 0 (9 cells)")
}

func TestInterpreter_Tables(t *testing.T) {
	tables := transcript.TablesFromStrings([][][]string{
		{tt.FullRow("RK", "Pflicht", "", "5"), tt.FullRow("MK", "Analysis", "1,3", "5")},
		{tt.ThesisRow("Bachelorarbeit", "1,7", "12")},
	})

	_, err := NewInterpreter(DefaultConfig()).Interpret(tables)
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 1, rowErr.Table)
	assert.Equal(t, 0, rowErr.Row)
	assert.Equal(t, 2, rowErr.Index)
}

func TestInterpreter_GeneratedTranscript(t *testing.T) {
	gen := tt.NewGenerator(42)
	rows := gen.Rows(4, 5)

	in := NewInterpreter(DefaultConfig())
	first, err := in.InterpretRows(rows)
	require.NoError(t, err)

	// 4 sections × 5 graded courses + 2 thesis courses
	assert.Len(t, first.Courses, 22)
	assert.Equal(t, 5, first.SectionsOpened)
	assert.Equal(t, 4, first.Skipped[SkipSectionMarker])
	assert.Equal(t, 4, first.Skipped[SkipEmptyGrade])

	categories := map[string]int{}
	for _, c := range first.Courses {
		categories[c.Category]++
	}
	assert.Len(t, categories, 5)
	assert.Equal(t, 2, categories[transcript.SectionThesis])

	second, err := in.InterpretRows(rows)
	require.NoError(t, err)
	assert.Equal(t, first.Courses, second.Courses)
}
