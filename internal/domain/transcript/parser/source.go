package parser

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript"
)

// Format names a transcript input encoding.
type Format string

const (
	FormatAuto   Format = ""
	FormatTabula Format = "tabula" // tabula-java JSON with cell geometry
	FormatJSON   Format = "json"   // tables → rows → cell texts
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatTabula, FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// DetectFormat guesses the format from the file name, falling back to content.
func DetectFormat(filename string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".csv", ".tsv":
		return FormatCSV
	}

	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(trimmed, []byte("PK")):
		return FormatXLSX
	case bytes.HasPrefix(trimmed, []byte("[")):
		return detectJSONFormat(trimmed)
	default:
		return FormatCSV
	}
}

// detectJSONFormat tells tabula output (array of objects) from nested arrays.
func detectJSONFormat(data []byte) Format {
	inner := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("[")))
	if bytes.HasPrefix(inner, []byte("{")) {
		return FormatTabula
	}
	return FormatJSON
}

// DecodeTables reads all tables from r.
func DecodeTables(r io.Reader, filename string, format Format) ([]transcript.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if format == FormatAuto {
		format = DetectFormat(filename, data)
	}

	switch format {
	case FormatTabula:
		return decodeTabula(data)
	case FormatJSON:
		return decodeNestedJSON(data)
	case FormatCSV:
		return decodeCSV(data)
	case FormatXLSX:
		return decodeXLSX(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func decodeTabula(data []byte) ([]transcript.Table, error) {
	var tables []transcript.Table
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("failed to parse tabula JSON: %w", err)
	}
	return tables, nil
}

func decodeNestedJSON(data []byte) ([]transcript.Table, error) {
	var raw [][][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse table JSON: %w", err)
	}
	return transcript.TablesFromStrings(raw), nil
}

// decodeCSV reads one table. The delimiter is whichever of ';', ',' and tab
// occurs most often in the first line.
func decodeCSV(data []byte) ([]transcript.Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // row widths vary by design

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return transcript.TablesFromStrings([][][]string{records}), nil
}

func detectDelimiter(data []byte) rune {
	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}

	best, bestCount := ',', 0
	for _, d := range []rune{';', ',', '\t'} {
		if n := bytes.Count(firstLine, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// decodeXLSX reads every sheet as one table. Spreadsheet readers drop trailing
// empty cells, so rows are padded back to the sheet's used width.
func decodeXLSX(data []byte) ([]transcript.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	var (
		raw      [][][]string
		inThesis bool
	)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}

		padded := make([][]string, 0, len(rows))
		for _, row := range rows {
			if len(row) == 0 {
				continue
			}
			if len(row) > 1 && strings.TrimSpace(row[1]) == transcript.SectionThesis {
				inThesis = true
			}
			padded = append(padded, padRow(row, inThesis))
		}
		raw = append(raw, padded)
	}
	return transcript.TablesFromStrings(raw), nil
}

// padRow restores the trailing empty cells excelize drops. Rows with a record
// kind in the second column take the full width, other rows take the thesis
// width once the thesis block has started. Rows are never shortened.
func padRow(row []string, inThesis bool) []string {
	width := fullRowCells
	if !hasRecordKind(row) && (inThesis || len(row) == thesisRowCells) {
		width = thesisRowCells
	}
	for len(row) < width {
		row = append(row, "")
	}
	return row
}

func hasRecordKind(row []string) bool {
	if len(row) < 2 {
		return false
	}
	switch strings.TrimSpace(row[1]) {
	case transcript.KindSection, transcript.KindCourse:
		return true
	}
	return false
}
