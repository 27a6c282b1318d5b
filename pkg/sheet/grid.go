// Package sheet defines the decoder-facing representation of a workbook and
// the structure detector that locates header and data rows.
package sheet

import (
	"context"
	"io"
	"strings"
)

// CellGrid is one sheet reduced to rows of string cells, with the empty
// string for blank cells. It is immutable input to the pipeline.
type CellGrid [][]string

// Sheet is one named tabular page of a decoded workbook.
type Sheet struct {
	Name string
	Grid CellGrid
}

// Decoder converts a raw workbook document into sheets of string cells.
// Implementations fail with *models.DecodeError for corrupt, encrypted, or
// unrecognized-format input.
type Decoder interface {
	Decode(ctx context.Context, r io.Reader) ([]Sheet, error)
}

// IsBlankRow reports whether every cell of the row is blank.
func IsBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// nonBlankCells counts the cells of a row carrying any non-whitespace text.
func nonBlankCells(row []string) int {
	count := 0
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			count++
		}
	}
	return count
}
