// Package e2etest provides end-to-end tests of the transcript pipeline over
// fixture files.
package e2etest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript"
	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/export"
	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/parser"
	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/service"
)

const testDataDir = "testdata"

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(testDataDir, name))
	require.NoError(t, err, "failed to read fixture %s", name)
	require.NotEmpty(t, data)
	return data
}

// TestCSVTranscript runs a semicolon separated export with sections, a nested
// group row, a pass/fail course, zero-weight courses, an unfinished course, a
// preference elective and the thesis block.
func TestCSVTranscript(t *testing.T) {
	data := readFixture(t, "transcript.csv")
	svc := service.NewService(service.DefaultConfig(), nil, nil)

	t.Run("Extract", func(t *testing.T) {
		extraction, err := svc.Extract(context.Background(), bytes.NewReader(data), "transcript.csv", parser.FormatAuto)
		require.NoError(t, err)

		assert.True(t, extraction.Layout.Recognized())
		assert.True(t, extraction.Layout.ThesisBlock)

		result := extraction.Result
		assert.Len(t, result.Courses, 9)
		assert.Equal(t, 4, result.SectionsOpened)
		assert.Equal(t, 1, result.Skipped[parser.SkipKind])
		assert.Equal(t, 1, result.Skipped[parser.SkipSectionMarker])
		assert.Equal(t, 1, result.Skipped[parser.SkipEmptyGrade])
		assert.Equal(t, 1, result.Skipped[parser.SkipPreferenceElective])
		assert.Empty(t, result.Degraded)
		assert.Empty(t, extraction.Warnings)

		byLabel := map[string]transcript.Course{}
		for _, c := range result.Courses {
			byLabel[c.Label] = c
		}
		assert.Equal(t, "Pflichtbereich", byLabel["Lineare Algebra"].Category)
		assert.False(t, byLabel["Software-Projektpraktikum"].Grade.IsNumeric())
		assert.Equal(t, 0.0, byLabel["Systemprogrammierung"].WeightModifier)
		assert.Equal(t, transcript.SectionThesis, byLabel["Kolloquium"].Category)
		assert.Equal(t, 1.5, byLabel["Bachelorarbeit"].WeightModifier)
		assert.NotContains(t, byLabel, "Vorgezogenes Mastermodul")
		assert.NotContains(t, byLabel, "Compilerbau")
	})

	t.Run("Report", func(t *testing.T) {
		run, err := svc.Report(context.Background(), bytes.NewReader(data), "transcript.csv", parser.FormatAuto)
		require.NoError(t, err)

		assert.InDelta(t, 86.45/47.5, run.Result.Baseline.Value, 1e-9)
		assert.InDelta(t, 56.45/37.5, run.Result.Best.Value, 1e-9)
		assert.Equal(t, [][]string{{"Datenbanken", "Lineare Algebra"}}, run.Result.Winners)
		assert.Equal(t, uint64(12), run.Result.Evaluated)
		assert.Zero(t, run.Result.Rejected)
	})

	t.Run("TightCap", func(t *testing.T) {
		cfg := service.DefaultConfig()
		cfg.Strike.CreditCap = 5

		run, err := service.NewService(cfg, nil, nil).Report(context.Background(), bytes.NewReader(data), "transcript.csv", parser.FormatAuto)
		require.NoError(t, err)

		assert.Equal(t, [][]string{{"Datenbanken"}}, run.Result.Winners)
		assert.Equal(t, uint64(6), run.Result.Rejected)
	})
}

// TestTabulaTranscript reads tabula-java output spread over two pages.
func TestTabulaTranscript(t *testing.T) {
	data := readFixture(t, "example.tabula.json")

	reg := prometheus.NewRegistry()
	metrics := service.NewMetrics(reg)
	svc := service.NewService(service.DefaultConfig(), metrics, nil)

	run, err := svc.Report(context.Background(), bytes.NewReader(data), "example.tabula.json", parser.FormatAuto)
	require.NoError(t, err)

	assert.Len(t, run.Extraction.Courses(), 3)
	assert.Equal(t, "Best possible grade: 1.5\n"+
		"The following strike combinations lead to this grade:\n"+
		"[\n    \"Y\",\n]\n", run.Report.Text())

	count, err := testutil.GatherAndCount(reg, "strike_combinations_evaluated_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// TestExportRoundTrip extracts the CSV fixture, exports it in every format and
// reports from the re-read records.
func TestExportRoundTrip(t *testing.T) {
	data := readFixture(t, "transcript.csv")
	svc := service.NewService(service.DefaultConfig(), nil, nil)

	extraction, err := svc.Extract(context.Background(), bytes.NewReader(data), "transcript.csv", parser.FormatAuto)
	require.NoError(t, err)
	direct, err := svc.ReportCourses(context.Background(), extraction.Courses())
	require.NoError(t, err)

	for _, format := range []export.Format{export.FormatCSV, export.FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, export.Write(&buf, format, extraction.Courses()))

			courses, err := export.Read(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, extraction.Courses(), courses)

			run, err := svc.ReportCourses(context.Background(), courses)
			require.NoError(t, err)
			assert.Equal(t, direct.Report.Text(), run.Report.Text())
		})
	}

	t.Run("xlsx", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, export.WriteXLSX(&buf, extraction.Courses()))

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows(export.SheetName)
		require.NoError(t, err)
		assert.Len(t, rows, len(extraction.Courses())+1)
	})
}
