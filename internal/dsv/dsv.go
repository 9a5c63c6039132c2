// Package dsv parses delimiter-separated text into an offset index so that
// any field can be sliced out of the original buffer without rescanning.
package dsv

import (
	"strings"
)

// detectWindow is how many leading bytes are inspected to guess the row
// delimiter.
const detectWindow = 5000

type Options struct {
	Delimiter byte
	Quote     byte
	// RowDelimiter is detected from the text when empty.
	RowDelimiter string
}

func DefaultOptions() Options {
	return Options{Delimiter: ',', Quote: '"'}
}

// Buffer is an immutable parsed document. Field offsets are stored as
// start/end pairs in one flat slice; rows index into it.
type Buffer struct {
	text         string
	delimiter    byte
	quote        byte
	rowDelimiter string
	trailing     bool
	rowStart     []int // first field of row i, len(rowStart) == rows+1
	fields       []int // start,end byte offsets per field
	columns      int
}

// Parse indexes text. It never fails: an unterminated quote extends the
// field to the end of the buffer and ragged rows are kept as they are.
func Parse(text string, opts Options) *Buffer {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.Quote == 0 {
		opts.Quote = '"'
	}
	rd := opts.RowDelimiter
	if rd == "" {
		rd = DetectRowDelimiter(text)
	}
	b := &Buffer{
		text:         text,
		delimiter:    opts.Delimiter,
		quote:        opts.Quote,
		rowDelimiter: rd,
	}
	n := len(text)
	if n == 0 {
		b.rowStart = []int{0}
		return b
	}

	delim, quote := opts.Delimiter, opts.Quote
	atRowEnd := func(pos int) bool {
		if text[pos] != rd[0] {
			return false
		}
		return len(rd) == 1 || strings.HasPrefix(text[pos:], rd)
	}

	pos := 0
	for {
		b.rowStart = append(b.rowStart, len(b.fields)/2)
		for {
			start := pos
			if pos < n && text[pos] == quote {
				pos++
				for pos < n {
					if text[pos] == quote {
						if pos+1 < n && text[pos+1] == quote {
							pos += 2
							continue
						}
						pos++
						break
					}
					pos++
				}
			}
			for pos < n && text[pos] != delim && !atRowEnd(pos) {
				pos++
			}
			b.fields = append(b.fields, start, pos)
			if pos < n && text[pos] == delim {
				pos++
				continue
			}
			break
		}
		count := len(b.fields)/2 - b.rowStart[len(b.rowStart)-1]
		if count > b.columns {
			b.columns = count
		}
		if pos >= n {
			break
		}
		pos += len(rd)
		if pos >= n {
			b.trailing = true
			break
		}
	}
	b.rowStart = append(b.rowStart, len(b.fields)/2)
	return b
}

// DetectRowDelimiter guesses "\n", "\r\n" or "\r" from the head of text.
func DetectRowDelimiter(text string) string {
	sample := text
	if len(sample) > detectWindow {
		sample = sample[:detectWindow]
	}
	cr := strings.IndexByte(sample, '\r')
	if cr < 0 {
		return "\n"
	}
	if lf := strings.IndexByte(sample, '\n'); lf >= 0 && lf < cr {
		return "\n"
	}
	total := strings.Count(sample, "\r")
	crlf := strings.Count(sample, "\r\n")
	if crlf*2 >= total {
		return "\r\n"
	}
	return "\r"
}

func (b *Buffer) Text() string         { return b.text }
func (b *Buffer) Delimiter() byte      { return b.delimiter }
func (b *Buffer) Quote() byte          { return b.quote }
func (b *Buffer) RowDelimiter() string { return b.rowDelimiter }

// Trailing reports whether the text ended with a row delimiter.
func (b *Buffer) Trailing() bool { return b.trailing }

func (b *Buffer) Rows() int { return len(b.rowStart) - 1 }

// Columns is the width of the widest row.
func (b *Buffer) Columns() int { return b.columns }

// FieldCount returns how many fields row actually has.
func (b *Buffer) FieldCount(row int) int {
	if row < 0 || row >= b.Rows() {
		return 0
	}
	return b.rowStart[row+1] - b.rowStart[row]
}

// Offset returns the byte range of a field. ok is false when the row has no
// such field.
func (b *Buffer) Offset(row, col int) (start, end int, ok bool) {
	if col < 0 || col >= b.FieldCount(row) {
		return 0, 0, false
	}
	i := (b.rowStart[row] + col) * 2
	return b.fields[i], b.fields[i+1], true
}

// Field returns the raw text of a field, quotes included. Missing fields of
// short rows read as "".
func (b *Buffer) Field(row, col int) string {
	start, end, ok := b.Offset(row, col)
	if !ok {
		return ""
	}
	return b.text[start:end]
}

// Value returns the unquoted value of a field.
func (b *Buffer) Value(row, col int) string {
	return Unquote(b.Field(row, col), b.quote)
}

// Span returns the raw text from the start of field first to the end of
// field last, delimiters included. ok is false when the row is too short.
func (b *Buffer) Span(row, first, last int) (string, bool) {
	start, _, ok := b.Offset(row, first)
	if !ok {
		return "", false
	}
	_, end, ok := b.Offset(row, last)
	if !ok {
		return "", false
	}
	return b.text[start:end], true
}

// RowText returns the raw text of a row without its delimiter.
func (b *Buffer) RowText(row int) string {
	count := b.FieldCount(row)
	if count == 0 {
		return ""
	}
	s, _ := b.Span(row, 0, count-1)
	return s
}
