package grid

type ChangeKind int

const (
	NoChange ChangeKind = iota
	CellsChanged
	RowsInserted
	RowsRemoved
	RowsMoved
	ColumnsInserted
	ColumnsRemoved
	ColumnsMoved
	ModelReset
)

func (k ChangeKind) String() string {
	switch k {
	case CellsChanged:
		return "cells-changed"
	case RowsInserted:
		return "rows-inserted"
	case RowsRemoved:
		return "rows-removed"
	case RowsMoved:
		return "rows-moved"
	case ColumnsInserted:
		return "columns-inserted"
	case ColumnsRemoved:
		return "columns-removed"
	case ColumnsMoved:
		return "columns-moved"
	case ModelReset:
		return "model-reset"
	}
	return "none"
}

// Change describes what a renderer has to repaint. Index/Span/Destination
// apply to row and column kinds; Row/Column/RowSpan/ColumnSpan to
// CellsChanged. A move takes the span at Index and leaves it starting at
// Destination.
type Change struct {
	Kind        ChangeKind
	Region      Region
	Index       int
	Span        int
	Destination int
	Row         int
	Column      int
	RowSpan     int
	ColumnSpan  int
}

func Reset() Change { return Change{Kind: ModelReset} }

// Cells is a CellsChanged change over sel.
func Cells(region Region, sel Selection) Change {
	sel = sel.Normalize()
	return Change{
		Kind:       CellsChanged,
		Region:     region,
		Row:        sel.Row,
		Column:     sel.Column,
		RowSpan:    sel.RowEnd - sel.Row + 1,
		ColumnSpan: sel.ColumnEnd - sel.Column + 1,
	}
}

// Inverse describes the repaint needed when the change is undone.
func (c Change) Inverse() Change {
	inv := c
	switch c.Kind {
	case RowsInserted:
		inv.Kind = RowsRemoved
	case RowsRemoved:
		inv.Kind = RowsInserted
	case ColumnsInserted:
		inv.Kind = ColumnsRemoved
	case ColumnsRemoved:
		inv.Kind = ColumnsInserted
	case RowsMoved, ColumnsMoved:
		inv.Index, inv.Destination = c.Destination, c.Index
	}
	return inv
}

// Merge combines two changes recorded in one transaction. Cell changes in
// the same region merge into their bounding box; anything else falls back
// to a reset.
func (c Change) Merge(other Change) Change {
	switch {
	case c.Kind == NoChange:
		return other
	case other.Kind == NoChange, c == other:
		return c
	case c.Kind == CellsChanged && other.Kind == CellsChanged && c.Region == other.Region:
		row := min(c.Row, other.Row)
		col := min(c.Column, other.Column)
		rowEnd := max(c.Row+c.RowSpan, other.Row+other.RowSpan)
		colEnd := max(c.Column+c.ColumnSpan, other.Column+other.ColumnSpan)
		return Change{Kind: CellsChanged, Region: c.Region, Row: row, Column: col, RowSpan: rowEnd - row, ColumnSpan: colEnd - col}
	}
	return Reset()
}

// Cells returns how many cells the change touches given the grid size;
// renderers and models use it to decide on a coarse reset.
func (c Change) Cells(rows, columns int) int {
	switch c.Kind {
	case CellsChanged:
		return c.RowSpan * c.ColumnSpan
	case RowsInserted, RowsRemoved, RowsMoved:
		return c.Span * columns
	case ColumnsInserted, ColumnsRemoved, ColumnsMoved:
		return c.Span * rows
	case ModelReset:
		return rows * columns
	}
	return 0
}
