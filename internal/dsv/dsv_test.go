package dsv

import (
	"strings"
	"testing"
)

func TestParseOffsets(t *testing.T) {
	b := Parse("A,B,C\n1,2,3\nabc,5,6\n7,8,9", DefaultOptions())
	if b.Rows() != 4 {
		t.Fatalf("rows = %d, want 4", b.Rows())
	}
	if b.Columns() != 3 {
		t.Fatalf("columns = %d, want 3", b.Columns())
	}
	if got := b.Field(2, 0); got != "abc" {
		t.Fatalf("field(2,0) = %q, want %q", got, "abc")
	}
	start, end, ok := b.Offset(2, 0)
	if !ok || start != 12 || end != 15 {
		t.Fatalf("offset(2,0) = %d..%d ok=%v, want 12..15 true", start, end, ok)
	}
	if b.Trailing() {
		t.Fatalf("trailing = true, want false")
	}
}

func TestParseTrailingDelimiter(t *testing.T) {
	b := Parse("a,b\nc,d\n", DefaultOptions())
	if b.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", b.Rows())
	}
	if !b.Trailing() {
		t.Fatalf("trailing = false, want true")
	}
}

func TestParseQuotedFields(t *testing.T) {
	text := "name,note\n\"Smith, J\",\"said \"\"hi\"\"\nthen left\"\nx,y"
	b := Parse(text, DefaultOptions())
	if b.Rows() != 3 {
		t.Fatalf("rows = %d, want 3", b.Rows())
	}
	if got := b.Value(1, 0); got != "Smith, J" {
		t.Fatalf("value(1,0) = %q, want %q", got, "Smith, J")
	}
	if got := b.Value(1, 1); got != "said \"hi\"\nthen left" {
		t.Fatalf("value(1,1) = %q", got)
	}
	if got := b.Field(1, 0); got != "\"Smith, J\"" {
		t.Fatalf("field(1,0) = %q", got)
	}
}

func TestParseUnterminatedQuote(t *testing.T) {
	b := Parse("a,b\n\"open,c\nd,e", DefaultOptions())
	if b.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", b.Rows())
	}
	if got := b.Value(1, 0); got != "open,c\nd,e" {
		t.Fatalf("value(1,0) = %q", got)
	}
	if b.FieldCount(1) != 1 {
		t.Fatalf("field count = %d, want 1", b.FieldCount(1))
	}
}

func TestParseRaggedRows(t *testing.T) {
	b := Parse("a,b,c\nd\ne,f", DefaultOptions())
	if b.Columns() != 3 {
		t.Fatalf("columns = %d, want 3", b.Columns())
	}
	if got := b.Field(1, 2); got != "" {
		t.Fatalf("missing field = %q, want empty", got)
	}
	if _, ok := b.Span(1, 0, 2); ok {
		t.Fatalf("span over short row ok = true, want false")
	}
}

func TestParseEmpty(t *testing.T) {
	b := Parse("", DefaultOptions())
	if b.Rows() != 0 || b.Columns() != 0 {
		t.Fatalf("rows=%d columns=%d, want 0 0", b.Rows(), b.Columns())
	}
}

func TestParseCRLFAndCR(t *testing.T) {
	b := Parse("a,b\r\nc,d\r\n", DefaultOptions())
	if b.RowDelimiter() != "\r\n" {
		t.Fatalf("row delimiter = %q, want CRLF", b.RowDelimiter())
	}
	if b.Rows() != 2 || b.Field(1, 1) != "d" {
		t.Fatalf("rows=%d field=%q", b.Rows(), b.Field(1, 1))
	}
	b = Parse("a,b\rc,d", DefaultOptions())
	if b.RowDelimiter() != "\r" || b.Rows() != 2 {
		t.Fatalf("cr parse: delimiter=%q rows=%d", b.RowDelimiter(), b.Rows())
	}
}

func TestDetectRowDelimiter(t *testing.T) {
	cases := map[string]string{
		"":                "\n",
		"a\nb":            "\n",
		"a\r\nb\r\nc":     "\r\n",
		"a\rb\rc":         "\r",
		"a\nb\r\nc":       "\n",
		"a\rb\rc\r\nd\re": "\r",
	}
	for in, want := range cases {
		if got := DetectRowDelimiter(in); got != want {
			t.Fatalf("DetectRowDelimiter(%q) = %q, want %q", in, got, want)
		}
	}
	long := strings.Repeat("x", detectWindow) + "\r\n"
	if got := DetectRowDelimiter(long); got != "\n" {
		t.Fatalf("delimiter past window = %q, want default", got)
	}
}

func TestSpanIncludesDelimiters(t *testing.T) {
	b := Parse("1,\"2,5\",3,4", DefaultOptions())
	s, ok := b.Span(0, 1, 2)
	if !ok || s != "\"2,5\",3" {
		t.Fatalf("span = %q ok=%v", s, ok)
	}
}

func TestQuoteField(t *testing.T) {
	if got := QuoteField("plain", ',', '"'); got != "plain" {
		t.Fatalf("QuoteField plain = %q", got)
	}
	if got := QuoteField("a,b", ',', '"'); got != "\"a,b\"" {
		t.Fatalf("QuoteField comma = %q", got)
	}
	if got := QuoteField("say \"x\"", ',', '"'); got != "\"say \"\"x\"\"\"" {
		t.Fatalf("QuoteField quote = %q", got)
	}
	if got := Unquote(QuoteField("line\nbreak", '\t', '"'), '"'); got != "line\nbreak" {
		t.Fatalf("round trip = %q", got)
	}
}

func TestSniff(t *testing.T) {
	if got := Sniff("a\tb\tc\n1\t2\t3\n4\t5\t6\n", '"'); got != '\t' {
		t.Fatalf("Sniff tsv = %q", got)
	}
	if got := Sniff("a;b\n1;2\n3;4\n", '"'); got != ';' {
		t.Fatalf("Sniff semicolon = %q", got)
	}
	if got := Sniff("single column\nvalues\n", '"'); got != ',' {
		t.Fatalf("Sniff fallback = %q", got)
	}
	if d, ok := DelimiterForPath("/tmp/data.TSV"); !ok || d != '\t' {
		t.Fatalf("DelimiterForPath = %q %v", d, ok)
	}
}
