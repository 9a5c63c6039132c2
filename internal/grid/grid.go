// Package grid defines the data protocol between a table model and the
// widget that paints it. Renderers depend on DataModel only.
package grid

// Region is one of the fixed areas of a grid.
type Region int

const (
	Body Region = iota
	RowHeader
	ColumnHeader
	CornerHeader
)

func (r Region) String() string {
	switch r {
	case Body:
		return "body"
	case RowHeader:
		return "row-header"
	case ColumnHeader:
		return "column-header"
	case CornerHeader:
		return "corner-header"
	}
	return "unknown"
}

// DataModel is what a renderer needs from a table.
type DataModel interface {
	RowCount(region Region) int
	ColumnCount(region Region) int
	Data(region Region, row, column int) string
	// SetData writes value into every cell of the rowSpan x columnSpan
	// block at row, column. It reports whether anything was recorded.
	SetData(region Region, row, column int, value string, rowSpan, columnSpan int) bool
	// Subscribe registers fn for change notifications. Handlers run after
	// the change is fully applied and must not mutate the model.
	Subscribe(fn func(Change)) (cancel func())
}

// ColumnLabel returns the spreadsheet-style label of column n: A..Z, AA, AB...
func ColumnLabel(n int) string {
	if n < 0 {
		return ""
	}
	var buf [16]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('A' + n%26)
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return string(buf[i:])
}
