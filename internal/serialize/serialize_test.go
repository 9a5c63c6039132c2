package serialize

import (
	"math/rand/v2"
	"testing"

	"github.com/kobzarvs/tabedit/internal/dsv"
	"github.com/kobzarvs/tabedit/internal/index"
	"github.com/kobzarvs/tabedit/internal/overlay"
)

const sample = "A,B,C\n1,2,3\nabc,5,6\n7,8,9"

func sourceOf(text string) (Source, *index.Map, *index.Map) {
	buf := dsv.Parse(text, dsv.DefaultOptions())
	rows, cols := index.Identity(buf.Rows()), index.Identity(buf.Columns())
	return Source{Buffer: buf, Rows: rows.Slots(), Columns: cols.Slots(), Values: overlay.New()}, rows, cols
}

func TestRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		text  string
		delim byte
	}{
		{"", ','},
		{"\n", ','},
		{sample, ','},
		{sample + "\n", ','},
		{"a\tb\r\nc\td\r\n", '\t'},
		{"x;y\ry;z", ';'},
		{"\"quoted, field\",\"with \"\"quotes\"\"\"\n\"multi\nline\",2\n", ','},
		{"a,,\n,,\n,,c", ','},
	} {
		buf := dsv.Parse(tc.text, dsv.Options{Delimiter: tc.delim})
		src := Source{
			Buffer:  buf,
			Rows:    index.Identity(buf.Rows()).Slots(),
			Columns: index.Identity(buf.Columns()).Slots(),
			Values:  overlay.New(),
		}
		if got := Serialize(src); got != tc.text {
			t.Fatalf("Serialize(Parse(%q)) = %q", tc.text, got)
		}
	}
}

func TestEmptyLastLineIsTerminated(t *testing.T) {
	src, rows, _ := sourceOf("h\nv")
	rows.Splice(2, 0, rows.Fresh(1))
	src.Rows = rows.Slots()
	want := "h\nv\n\n"
	if got := Serialize(src); got != want {
		t.Fatalf("Serialize = %q, want %q", got, want)
	}
	if got := Naive(src); got != want {
		t.Fatalf("Naive = %q, want %q", got, want)
	}
	if n := dsv.Parse(want, dsv.DefaultOptions()).Rows(); n != 3 {
		t.Fatalf("parsed rows = %d, want 3", n)
	}
}

func TestPattern(t *testing.T) {
	cols := []index.Slot{index.Backed(0), index.Backed(1), index.Unbacked(0), index.Unbacked(1), index.Backed(3), index.Backed(2), index.Backed(3)}
	got := Pattern(cols)
	want := []Run{
		{Start: 0, End: 2, Physical: 0},
		{Start: 2, End: 4, Physical: -1},
		{Start: 4, End: 5, Physical: 3},
		{Start: 5, End: 7, Physical: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("Pattern = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("run %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if Pattern(nil) != nil {
		t.Fatalf("Pattern(nil) not empty")
	}
}

func TestInsertedRowAndColumn(t *testing.T) {
	src, rows, cols := sourceOf(sample)
	rows.Splice(1, 0, rows.Fresh(1))
	cols.Splice(3, 0, cols.Fresh(1))
	src.Rows, src.Columns = rows.Slots(), cols.Slots()
	want := "A,B,C,\n,,,\n1,2,3,\nabc,5,6,\n7,8,9,"
	if got := Serialize(src); got != want {
		t.Fatalf("Serialize = %q, want %q", got, want)
	}
}

func TestMovedAndEdited(t *testing.T) {
	src, rows, cols := sourceOf(sample)
	rows.Move(1, 2, 1)
	cols.Move(0, 2, 1)
	src.Rows, src.Columns = rows.Slots(), cols.Slots()
	src.Values.Set(src.Rows[2], index.Backed(1), "x,y")
	want := "B,C,A\n5,6,abc\n\"x,y\",3,1\n8,9,7"
	if got := Serialize(src); got != want {
		t.Fatalf("Serialize = %q, want %q", got, want)
	}
	if got := Naive(src); got != want {
		t.Fatalf("Naive = %q, want %q", got, want)
	}
}

func TestRaggedRowsArePadded(t *testing.T) {
	src, _, _ := sourceOf("a,b,c\nd\ne,f")
	want := "a,b,c\nd,,\ne,f,"
	if got := Serialize(src); got != want {
		t.Fatalf("Serialize = %q, want %q", got, want)
	}
}

var values = []string{"", "v", "a,b", "q\"q", "line\nbreak", " "}

func TestMatchesNaive(t *testing.T) {
	texts := []string{sample, sample + "\n", "a,b\n\"c,d\",e\nf\n", "h1,h2,h3,h4\r\n1,2,3,4\r\n5,6,7,8\r\n9,10,11,12"}
	r := rand.New(rand.NewPCG(7, 11))
	for _, text := range texts {
		for trial := range 200 {
			src, rows, cols := sourceOf(text)
			for range 1 + r.IntN(12) {
				mutate(r, rows, cols, src.Values)
			}
			src.Rows, src.Columns = rows.Slots(), cols.Slots()
			got, want := Serialize(src), Naive(src)
			if got != want {
				t.Fatalf("text %q trial %d:\nrows %v cols %v\nSerialize = %q\nNaive     = %q", text, trial, src.Rows, src.Columns, got, want)
			}
		}
	}
}

func mutate(r *rand.Rand, rows, cols *index.Map, ov *overlay.Overlay) {
	pick := func(m *index.Map) int {
		if m.Len() == 0 {
			return 0
		}
		return r.IntN(m.Len())
	}
	switch r.IntN(7) {
	case 0:
		rows.Splice(pick(rows), 0, rows.Fresh(1+r.IntN(2)))
	case 1:
		cols.Splice(pick(cols), 0, cols.Fresh(1+r.IntN(2)))
	case 2:
		rows.Splice(pick(rows), 1, nil)
	case 3:
		cols.Splice(pick(cols), 1, nil)
	case 4:
		rows.Move(pick(rows), pick(rows), 1)
	case 5:
		cols.Move(pick(cols), pick(cols), 1)
	default:
		if rows.Len() > 0 && cols.Len() > 0 {
			ov.Set(rows.At(pick(rows)), cols.At(pick(cols)), values[r.IntN(len(values))])
		}
	}
}
