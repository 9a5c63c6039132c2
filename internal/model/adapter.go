package model

import (
	"strconv"

	"github.com/kobzarvs/tabedit/internal/grid"
)

var _ grid.DataModel = (*Model)(nil)

func (m *Model) RowCount(region grid.Region) int {
	switch region {
	case grid.Body, grid.RowHeader:
		return m.Rows()
	case grid.ColumnHeader, grid.CornerHeader:
		return 1
	}
	return 0
}

func (m *Model) ColumnCount(region grid.Region) int {
	switch region {
	case grid.Body, grid.ColumnHeader:
		return m.Columns()
	case grid.RowHeader, grid.CornerHeader:
		return 1
	}
	return 0
}

// Data answers cell queries per region. Row-header cells are 1-based body
// row numbers; column-header cells always read absolute row 0 whatever row
// is asked for.
func (m *Model) Data(region grid.Region, row, col int) string {
	switch region {
	case grid.Body:
		return m.Value(row, col)
	case grid.RowHeader:
		if row < 0 || row >= m.Rows() {
			return ""
		}
		return strconv.Itoa(row + 1)
	case grid.ColumnHeader:
		if col < 0 || col >= m.Columns() {
			return ""
		}
		return m.Header(col)
	}
	return ""
}

// SetData writes value over a rowSpan x columnSpan block of the body, or
// renames a column when aimed at the column header.
func (m *Model) SetData(region grid.Region, row, col int, value string, rowSpan, columnSpan int) bool {
	switch region {
	case grid.Body:
		rowSpan, columnSpan = max(1, rowSpan), max(1, columnSpan)
		return m.SetCells(grid.Selection{Row: row, Column: col, RowEnd: row + rowSpan - 1, ColumnEnd: col + columnSpan - 1}, value)
	case grid.ColumnHeader:
		return m.SetHeader(col, value)
	}
	return false
}
