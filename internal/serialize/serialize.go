// Package serialize rebuilds delimited text from a parsed buffer, the
// logical row and column order and the value overlay.
package serialize

import (
	"strings"

	"github.com/kobzarvs/tabedit/internal/dsv"
	"github.com/kobzarvs/tabedit/internal/index"
	"github.com/kobzarvs/tabedit/internal/overlay"
)

// Run is a stretch of logical columns [Start, End) that maps onto
// consecutive physical columns beginning at Physical. Unbacked runs have
// Physical == -1.
type Run struct {
	Start    int
	End      int
	Physical int
}

func (r Run) Backed() bool { return r.Physical >= 0 }

// Pattern computes the column slice pattern shared by every row.
func Pattern(columns []index.Slot) []Run {
	var runs []Run
	for i, slot := range columns {
		p, backed := slot.Physical()
		if !backed {
			p = -1
		}
		if n := len(runs); n > 0 {
			last := &runs[n-1]
			switch {
			case backed && last.Backed() && last.Physical+(last.End-last.Start) == p:
				last.End++
				continue
			case !backed && !last.Backed():
				last.End++
				continue
			}
		}
		runs = append(runs, Run{Start: i, End: i + 1, Physical: p})
	}
	return runs
}

// Source is everything needed to produce the document text.
type Source struct {
	Buffer  *dsv.Buffer
	Rows    []index.Slot
	Columns []index.Slot
	Values  *overlay.Overlay
}

// Serialize renders src. Rows without overlay values copy each backed run
// of the pattern out of the buffer in one slice; other cells are emitted
// one field at a time.
func Serialize(src Source) string {
	buf := src.Buffer
	if len(src.Rows) == 0 {
		return ""
	}
	delim, quote := buf.Delimiter(), buf.Quote()
	runs := Pattern(src.Columns)

	var sb strings.Builder
	sb.Grow(len(buf.Text()) + len(src.Rows))
	lineStart := 0
	for i, row := range src.Rows {
		if i > 0 {
			sb.WriteString(buf.RowDelimiter())
		}
		lineStart = sb.Len()
		pr, rowBacked := row.Physical()
		edited := src.Values.RowHasValues(row)
		for j, run := range runs {
			if j > 0 {
				sb.WriteByte(delim)
			}
			if rowBacked && !edited && run.Backed() {
				last := run.Physical + run.End - run.Start - 1
				if text, ok := buf.Span(pr, run.Physical, last); ok {
					sb.WriteString(text)
					continue
				}
			}
			for c := run.Start; c < run.End; c++ {
				if c > run.Start {
					sb.WriteByte(delim)
				}
				sb.WriteString(field(buf, row, src.Columns[c], src.Values, delim, quote))
			}
		}
	}
	if endsWithDelimiter(buf, sb.Len() == lineStart) {
		sb.WriteString(buf.RowDelimiter())
	}
	return sb.String()
}

// Naive renders src field by field. It is the reference Serialize must
// match byte for byte.
func Naive(src Source) string {
	buf := src.Buffer
	if len(src.Rows) == 0 {
		return ""
	}
	delim, quote := buf.Delimiter(), buf.Quote()
	lines := make([]string, 0, len(src.Rows))
	for _, row := range src.Rows {
		fields := make([]string, 0, len(src.Columns))
		for _, col := range src.Columns {
			fields = append(fields, field(buf, row, col, src.Values, delim, quote))
		}
		lines = append(lines, strings.Join(fields, string(delim)))
	}
	out := strings.Join(lines, buf.RowDelimiter())
	if endsWithDelimiter(buf, lines[len(lines)-1] == "") {
		out += buf.RowDelimiter()
	}
	return out
}

// endsWithDelimiter reports whether a row delimiter closes the text. An
// empty last line must be closed, or it reads back as the terminator of
// the line before it.
func endsWithDelimiter(buf *dsv.Buffer, lastEmpty bool) bool {
	return buf.Trailing() || lastEmpty
}

func field(buf *dsv.Buffer, row, col index.Slot, values *overlay.Overlay, delim, quote byte) string {
	if v, ok := values.Get(row, col); ok {
		return dsv.QuoteField(v, delim, quote)
	}
	pr, rowBacked := row.Physical()
	pc, colBacked := col.Physical()
	if rowBacked && colBacked {
		return buf.Field(pr, pc)
	}
	return ""
}
