package model

import (
	"strings"

	"github.com/kobzarvs/tabedit/internal/dsv"
	"github.com/kobzarvs/tabedit/internal/grid"
)

// Clipboard text is tab separated with double-quote quoting.
const (
	clipDelimiter = '\t'
	clipQuote     = '"'
)

// SetCell writes a single body cell.
func (m *Model) SetCell(row, col int, value string) bool {
	return m.SetCells(grid.Cell(row, col), value)
}

// SetCells writes value into every cell of sel, clipped to the grid.
func (m *Model) SetCells(sel grid.Selection, value string) bool {
	return m.fill("set-data", sel, value)
}

// ClearCells blanks the selected cells.
func (m *Model) ClearCells(sel grid.Selection) bool {
	return m.fill("clear-cells", sel, "")
}

// ClearRows blanks every cell of the selected rows.
func (m *Model) ClearRows(sel grid.Selection) bool {
	sel = sel.Normalize()
	sel.Column, sel.ColumnEnd = 0, m.Columns()-1
	return m.fill("clear-rows", sel, "")
}

// ClearColumns blanks every body cell of the selected columns.
func (m *Model) ClearColumns(sel grid.Selection) bool {
	sel = sel.Normalize()
	sel.Row, sel.RowEnd = 0, m.Rows()-1
	return m.fill("clear-columns", sel, "")
}

// clip returns sel restricted to the body, or false when nothing is left.
func (m *Model) clip(sel grid.Selection) (grid.Selection, bool) {
	sel = sel.Normalize()
	rows, cols := m.Rows(), m.Columns()
	if rows == 0 || cols == 0 || sel.Row >= rows || sel.Column >= cols || sel.RowEnd < 0 || sel.ColumnEnd < 0 {
		return sel, false
	}
	return sel.Clamp(rows, cols), true
}

// fill records one overlay write per cell whose value actually changes.
// Single-cell edits are absorbed by the overlay; anything larger also asks
// for a re-parse.
func (m *Model) fill(name string, sel grid.Selection, value string) bool {
	sel, ok := m.clip(sel)
	if !ok {
		return false
	}
	if !m.begin(name) {
		return false
	}
	for r := sel.Row; r <= sel.RowEnd; r++ {
		row := m.rows.At(r + 1)
		for c := sel.Column; c <= sel.ColumnEnd; c++ {
			if m.cell(r+1, c) != value {
				m.set(row, m.cols.At(c), value)
			}
		}
	}
	m.selection = sel
	bulk := sel.Rows()*sel.Columns() > 1
	return m.commit(grid.Cells(grid.Body, sel), bulk)
}

// SetHeader renames column col.
func (m *Model) SetHeader(col int, value string) bool {
	if col < 0 || col >= m.Columns() || m.rows.Len() == 0 {
		return false
	}
	if !m.begin("rename-column") {
		return false
	}
	if m.cell(0, col) != value {
		m.set(m.rows.At(0), m.cols.At(col), value)
	}
	c := grid.Change{Kind: grid.CellsChanged, Region: grid.ColumnHeader, Column: col, RowSpan: 1, ColumnSpan: 1}
	return m.commit(c, false)
}

// Copy renders the selected cells as TSV.
func (m *Model) Copy(sel grid.Selection) string {
	sel, ok := m.clip(sel)
	if !ok {
		return ""
	}
	lines := make([]string, 0, sel.Rows())
	fields := make([]string, 0, sel.Columns())
	for r := sel.Row; r <= sel.RowEnd; r++ {
		fields = fields[:0]
		for c := sel.Column; c <= sel.ColumnEnd; c++ {
			fields = append(fields, dsv.QuoteField(m.Value(r, c), clipDelimiter, clipQuote))
		}
		lines = append(lines, strings.Join(fields, "\t"))
	}
	return strings.Join(lines, "\n")
}

// Cut copies the selection and clears it in one transaction.
func (m *Model) Cut(sel grid.Selection) (string, bool) {
	text := m.Copy(sel)
	if !m.begin("cut") {
		return "", false
	}
	m.fill("clear-cells", sel, "")
	return text, m.commit(grid.Change{}, true)
}

// Paste writes TSV text with its top-left cell at row, col. Anything that
// would fall outside the grid is dropped.
func (m *Model) Paste(row, col int, text string) bool {
	if text == "" {
		return false
	}
	target, ok := m.clip(grid.Cell(row, col))
	if !ok {
		return false
	}
	row, col = target.Row, target.Column
	src := dsv.Parse(text, dsv.Options{Delimiter: clipDelimiter, Quote: clipQuote})
	if src.Rows() == 0 {
		return false
	}
	if !m.begin("paste") {
		return false
	}
	endRow, endCol := row, col
	for r := 0; r < src.Rows() && row+r < m.Rows(); r++ {
		rowSlot := m.rows.At(row + r + 1)
		for c := 0; c < src.FieldCount(r) && col+c < m.Columns(); c++ {
			v := src.Value(r, c)
			if m.cell(row+r+1, col+c) != v {
				m.set(rowSlot, m.cols.At(col+c), v)
			}
			endRow, endCol = max(endRow, row+r), max(endCol, col+c)
		}
	}
	sel := grid.Selection{Row: row, Column: col, RowEnd: endRow, ColumnEnd: endCol}
	m.selection = sel
	return m.commit(grid.Cells(grid.Body, sel), true)
}
