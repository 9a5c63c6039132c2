package dsv

import (
	"strings"
)

// Unquote strips the surrounding quotes of a raw field and collapses doubled
// quotes. Text after the closing quote is kept verbatim; an unterminated
// quote runs to the end of the field.
func Unquote(raw string, quote byte) string {
	if len(raw) == 0 || raw[0] != quote {
		return raw
	}
	var sb strings.Builder
	sb.Grow(len(raw))
	i := 1
	for i < len(raw) {
		c := raw[i]
		if c == quote {
			if i+1 < len(raw) && raw[i+1] == quote {
				sb.WriteByte(quote)
				i += 2
				continue
			}
			sb.WriteString(raw[i+1:])
			return sb.String()
		}
		sb.WriteByte(c)
		i++
	}
	return sb.String()
}

// NeedsQuote reports whether value must be quoted to survive a round trip.
func NeedsQuote(value string, delimiter, quote byte) bool {
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case delimiter, quote, '\n', '\r':
			return true
		}
	}
	return false
}

// QuoteField renders value as a field, quoting only when needed.
func QuoteField(value string, delimiter, quote byte) string {
	if !NeedsQuote(value, delimiter, quote) {
		return value
	}
	q := string(quote)
	return q + strings.ReplaceAll(value, q, q+q) + q
}

// CountOutsideQuotes counts delimiter bytes in line that are not inside a
// quoted section.
func CountOutsideQuotes(line string, delimiter, quote byte) int {
	count := 0
	inQuote := false
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == quote:
			inQuote = !inQuote
		case !inQuote && line[i] == delimiter:
			count++
		}
	}
	return count
}
