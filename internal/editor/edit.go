package editor

import (
	"slices"

	"github.com/kobzarvs/tabedit/internal/grid"
)

// editSession is a cell edit in progress. Nothing reaches the grid until
// it is committed.
type editSession struct {
	region   grid.Region
	row      int
	col      int
	rowSpan  int
	colSpan  int
	original string
	buf      []rune
	pos      int
}

func (s *editSession) insert(r rune) {
	s.buf = slices.Insert(s.buf, s.pos, r)
	s.pos++
}

func (s *editSession) deleteBack() {
	if s.pos == 0 {
		return
	}
	s.buf = slices.Delete(s.buf, s.pos-1, s.pos)
	s.pos--
}

func (s *editSession) deleteForward() {
	if s.pos >= len(s.buf) {
		return
	}
	s.buf = slices.Delete(s.buf, s.pos, s.pos+1)
}

// follow moves the session with structural changes. It returns false when
// the edited cell is gone or was overwritten underneath the session.
func (s *editSession) follow(c grid.Change) bool {
	switch c.Kind {
	case grid.ModelReset:
		return false
	case grid.CellsChanged:
		if c.Region != s.region {
			return true
		}
		if s.region == grid.ColumnHeader {
			return s.col < c.Column || s.col >= c.Column+c.ColumnSpan
		}
		return !overlaps(s.row, s.col, c)
	case grid.RowsInserted, grid.RowsRemoved, grid.RowsMoved:
		if s.region == grid.ColumnHeader {
			return true
		}
		row, ok := shift(s.row, c)
		s.row = row
		return ok
	case grid.ColumnsInserted, grid.ColumnsRemoved, grid.ColumnsMoved:
		col, ok := shift(s.col, c)
		s.col = col
		return ok
	}
	return true
}

func overlaps(row, col int, c grid.Change) bool {
	return row >= c.Row && row < c.Row+max(1, c.RowSpan) &&
		col >= c.Column && col < c.Column+max(1, c.ColumnSpan)
}

// shift maps position i through an insert, remove or move along one axis.
func shift(i int, c grid.Change) (int, bool) {
	switch c.Kind {
	case grid.RowsInserted, grid.ColumnsInserted:
		if i >= c.Index {
			return i + c.Span, true
		}
	case grid.RowsRemoved, grid.ColumnsRemoved:
		switch {
		case i >= c.Index+c.Span:
			return i - c.Span, true
		case i >= c.Index:
			return i, false
		}
	case grid.RowsMoved, grid.ColumnsMoved:
		if i >= c.Index && i < c.Index+c.Span {
			return c.Destination + i - c.Index, true
		}
		// take the span out, then put it back at Destination
		if i > c.Index {
			i -= c.Span
		}
		if i >= c.Destination {
			i += c.Span
		}
	}
	return i, true
}
