package grid

// Selection is a rectangle of body cells, corners inclusive. Row/Column is
// the anchor where the cursor sits.
type Selection struct {
	Row       int
	Column    int
	RowEnd    int
	ColumnEnd int
}

// Cell selects a single cell.
func Cell(row, col int) Selection {
	return Selection{Row: row, Column: col, RowEnd: row, ColumnEnd: col}
}

// Normalize orders the corners so Row <= RowEnd and Column <= ColumnEnd.
func (s Selection) Normalize() Selection {
	if s.RowEnd < s.Row {
		s.Row, s.RowEnd = s.RowEnd, s.Row
	}
	if s.ColumnEnd < s.Column {
		s.Column, s.ColumnEnd = s.ColumnEnd, s.Column
	}
	return s
}

func (s Selection) Rows() int {
	n := s.Normalize()
	return n.RowEnd - n.Row + 1
}

func (s Selection) Columns() int {
	n := s.Normalize()
	return n.ColumnEnd - n.Column + 1
}

func (s Selection) Contains(row, col int) bool {
	n := s.Normalize()
	return row >= n.Row && row <= n.RowEnd && col >= n.Column && col <= n.ColumnEnd
}

// Clamp keeps the selection inside a rows x columns grid.
func (s Selection) Clamp(rows, columns int) Selection {
	clamp := func(v, n int) int {
		if n <= 0 {
			return 0
		}
		return max(0, min(v, n-1))
	}
	return Selection{
		Row:       clamp(s.Row, rows),
		Column:    clamp(s.Column, columns),
		RowEnd:    clamp(s.RowEnd, rows),
		ColumnEnd: clamp(s.ColumnEnd, columns),
	}
}
