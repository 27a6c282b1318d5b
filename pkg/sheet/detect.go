package sheet

// Structure is the detector's result: the header row (nil and index -1 for
// headerless sheets) and the data rows that follow it, with fully blank rows
// dropped.
type Structure struct {
	Header      []string
	HeaderIndex int
	DataRows    CellGrid
	// DataRowIndexes maps each data row back to its position in the
	// original grid, for row-context metadata and error reporting.
	DataRowIndexes []int
}

// DetectStructure scans at most the first scanRows rows for the first row
// with at least two non-blank cells; that row is the header and everything
// after it is data. When no such row exists the sheet is treated as
// headerless with row 0 as the first data row. The worst case is zero data
// rows, never an error.
func DetectStructure(grid CellGrid, scanRows int) Structure {
	if scanRows <= 0 {
		scanRows = 10
	}

	headerIndex := -1
	limit := scanRows
	if len(grid) < limit {
		limit = len(grid)
	}
	for i := 0; i < limit; i++ {
		if nonBlankCells(grid[i]) >= 2 {
			headerIndex = i
			break
		}
	}

	s := Structure{HeaderIndex: headerIndex}
	dataStart := 0
	if headerIndex >= 0 {
		s.Header = grid[headerIndex]
		dataStart = headerIndex + 1
	}

	for i := dataStart; i < len(grid); i++ {
		if IsBlankRow(grid[i]) {
			continue
		}
		s.DataRows = append(s.DataRows, grid[i])
		s.DataRowIndexes = append(s.DataRowIndexes, i)
	}

	return s
}
