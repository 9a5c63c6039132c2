package model

import (
	"github.com/kobzarvs/tabedit/internal/grid"
	"github.com/kobzarvs/tabedit/internal/history"
	"github.com/kobzarvs/tabedit/internal/index"
)

// InsertRows inserts count blank rows so that the first one becomes body
// row at. at is clamped to [0, Rows()].
func (m *Model) InsertRows(at, count int) bool {
	if count <= 0 {
		return false
	}
	at = clamp(at, 0, m.Rows())
	if !m.begin("insert-rows") {
		return false
	}
	if m.rows.Len() == 0 {
		m.spliceRows(0, 0, m.rows.Fresh(1))
		header := m.rows.At(0)
		for c := range m.cols.Len() {
			m.set(header, m.cols.At(c), grid.ColumnLabel(c))
		}
	}
	m.spliceRows(at+1, 0, m.rows.Fresh(count))
	m.selection = grid.Cell(at, m.cursorColumn()).Clamp(m.Rows(), m.Columns())
	return m.commit(grid.Change{Kind: grid.RowsInserted, Region: grid.Body, Index: at, Span: count}, true)
}

// RemoveRows removes up to count rows starting at body row at.
func (m *Model) RemoveRows(at, count int) bool {
	n := m.Rows()
	if count <= 0 || n == 0 {
		return false
	}
	at = clamp(at, 0, n-1)
	count = min(count, n-at)
	if !m.begin("remove-rows") {
		return false
	}
	m.spliceRows(at+1, count, nil)
	m.selection = grid.Cell(at, m.cursorColumn()).Clamp(m.Rows(), m.Columns())
	return m.commit(grid.Change{Kind: grid.RowsRemoved, Region: grid.Body, Index: at, Span: count}, true)
}

// MoveRows drops the span rows starting at start onto row end. Moving a
// span onto itself records nothing.
func (m *Model) MoveRows(start, end, span int) bool {
	n := m.Rows()
	if span <= 0 || start < 0 || start+span > n {
		return false
	}
	end = clamp(end, 0, n-1)
	dest, ok := index.MoveDestination(n, start, end, span)
	if !ok {
		return false
	}
	if !m.begin("move-rows") {
		return false
	}
	remove, insert, _, _ := m.rows.Move(start+1, end+1, span)
	m.log.Record(history.Op{Kind: history.RowSplice, Splice: remove})
	m.log.Record(history.Op{Kind: history.RowSplice, Splice: insert})
	sel := m.selection.Normalize()
	m.selection = grid.Selection{Row: dest, Column: sel.Column, RowEnd: dest + span - 1, ColumnEnd: sel.ColumnEnd}
	return m.commit(grid.Change{Kind: grid.RowsMoved, Region: grid.Body, Index: start, Span: span, Destination: dest}, true)
}

// InsertColumns inserts count blank columns at at, clamped to
// [0, Columns()].
func (m *Model) InsertColumns(at, count int) bool {
	if count <= 0 {
		return false
	}
	at = clamp(at, 0, m.Columns())
	origin := m.columnOrigins()
	if !m.begin("insert-columns") {
		return false
	}
	m.spliceColumns(at, 0, m.cols.Fresh(count))
	m.relabel(origin)
	m.selection = grid.Cell(m.cursorRow(), at).Clamp(m.Rows(), m.Columns())
	return m.commit(grid.Change{Kind: grid.ColumnsInserted, Region: grid.Body, Index: at, Span: count}, true)
}

func (m *Model) RemoveColumns(at, count int) bool {
	n := m.Columns()
	if count <= 0 || n == 0 {
		return false
	}
	at = clamp(at, 0, n-1)
	count = min(count, n-at)
	origin := m.columnOrigins()
	if !m.begin("remove-columns") {
		return false
	}
	m.spliceColumns(at, count, nil)
	m.relabel(origin)
	m.selection = grid.Cell(m.cursorRow(), at).Clamp(m.Rows(), m.Columns())
	return m.commit(grid.Change{Kind: grid.ColumnsRemoved, Region: grid.Body, Index: at, Span: count}, true)
}

func (m *Model) MoveColumns(start, end, span int) bool {
	n := m.Columns()
	if span <= 0 || start < 0 || start+span > n {
		return false
	}
	end = clamp(end, 0, n-1)
	dest, ok := index.MoveDestination(n, start, end, span)
	if !ok {
		return false
	}
	origin := m.columnOrigins()
	if !m.begin("move-columns") {
		return false
	}
	remove, insert, _, _ := m.cols.Move(start, end, span)
	m.log.Record(history.Op{Kind: history.ColumnSplice, Splice: remove})
	m.log.Record(history.Op{Kind: history.ColumnSplice, Splice: insert})
	m.relabel(origin)
	sel := m.selection.Normalize()
	m.selection = grid.Selection{Row: sel.Row, Column: dest, RowEnd: sel.RowEnd, ColumnEnd: dest + span - 1}
	return m.commit(grid.Change{Kind: grid.ColumnsMoved, Region: grid.Body, Index: start, Span: span, Destination: dest}, true)
}

func (m *Model) columnOrigins() map[index.Slot]int {
	origin := make(map[index.Slot]int, m.cols.Len())
	for i := range m.cols.Len() {
		origin[m.cols.At(i)] = i
	}
	return origin
}

// relabel keeps generated header labels in step with column positions.
// A header that reads as the label of its old position is generated and
// is renamed for its new position; any other header travels with its
// column. New columns get the label of where they landed.
func (m *Model) relabel(origin map[index.Slot]int) {
	if m.rows.Len() == 0 {
		return
	}
	header := m.rows.At(0)
	for c := range m.cols.Len() {
		slot := m.cols.At(c)
		cur := m.cell(0, c)
		if old, ok := origin[slot]; ok && (old == c || cur != grid.ColumnLabel(old)) {
			continue
		}
		if label := grid.ColumnLabel(c); cur != label {
			m.set(header, slot, label)
		}
	}
}

func (m *Model) cursorRow() int    { return max(0, m.selection.Row) }
func (m *Model) cursorColumn() int { return max(0, m.selection.Column) }
