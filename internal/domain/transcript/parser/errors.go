package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrThesisLayout means an 8-cell row showed up outside the thesis block,
	// so the assumed transcript layout does not hold.
	ErrThesisLayout = errors.New("8-cell row outside the Abschlussarbeit section")

	// ErrNoOpenSection means a graded course row came before any section marker.
	ErrNoOpenSection = errors.New("course row without an open section")

	// ErrUnsupportedFormat is returned by the decoders for unknown input formats.
	ErrUnsupportedFormat = errors.New("unsupported input format")
)

// RowError is a fatal structural error tied to one input row.
type RowError struct {
	Index int // position in the flattened row stream, 0-based
	Table int // table index, 0-based
	Row   int // row index within the table, 0-based
	Cells int // observed cell count
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("table %d, row %d (%d cells): %v", e.Table, e.Row, e.Cells, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
