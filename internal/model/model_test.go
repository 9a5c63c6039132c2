package model

import (
	"math/rand/v2"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kobzarvs/tabedit/internal/grid"
	"github.com/kobzarvs/tabedit/internal/logger"
)

const sample = "A,B,C\n1,2,3\nabc,5,6\n7,8,9"

func newModel(text string) *Model {
	return New(text, DefaultOptions())
}

func record(m *Model) *[]grid.Change {
	var got []grid.Change
	m.Subscribe(func(c grid.Change) { got = append(got, c) })
	return &got
}

func TestInsertRowAtTop(t *testing.T) {
	m := newModel(sample)
	if !m.InsertRows(0, 1) {
		t.Fatalf("InsertRows returned false")
	}
	if got, want := m.Text(), "A,B,C\n,,\n1,2,3\nabc,5,6\n7,8,9"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestRemoveFirstColumnRelabels(t *testing.T) {
	m := newModel(sample)
	m.RemoveColumns(0, 1)
	if got, want := m.Text(), "A,B\n2,3\n5,6\n8,9"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
	m.Undo()
	if got := m.Text(); got != sample {
		t.Fatalf("after undo text = %q, want %q", got, sample)
	}
}

func TestMoveRowDown(t *testing.T) {
	m := newModel(sample)
	changes := record(m)
	if !m.MoveRows(0, 1, 1) {
		t.Fatalf("MoveRows returned false")
	}
	if got, want := m.Text(), "A,B,C\nabc,5,6\n1,2,3\n7,8,9"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
	want := grid.Change{Kind: grid.RowsMoved, Region: grid.Body, Index: 0, Span: 1, Destination: 1}
	if len(*changes) != 1 || (*changes)[0] != want {
		t.Fatalf("changes = %+v, want [%+v]", *changes, want)
	}
	if sel := m.Selection(); sel.Row != 1 || sel.RowEnd != 1 {
		t.Fatalf("selection = %+v, want row 1", sel)
	}
}

func TestSetDataThenUndo(t *testing.T) {
	m := newModel(sample)
	if !m.SetData(grid.Body, 1, 0, "123", 1, 1) {
		t.Fatalf("SetData returned false")
	}
	if got := m.Data(grid.Body, 1, 0); got != "123" {
		t.Fatalf("cell = %q, want 123", got)
	}
	if got, want := m.Text(), "A,B,C\n1,2,3\n123,5,6\n7,8,9"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
	m.Undo()
	if got := m.Text(); got != sample {
		t.Fatalf("after undo text = %q, want %q", got, sample)
	}
}

func TestPasteIsClipped(t *testing.T) {
	m := newModel(sample)
	if !m.Paste(0, 2, "paste-1\tpaste-2") {
		t.Fatalf("Paste returned false")
	}
	if got, want := m.Text(), "A,B,C\n1,2,paste-1\nabc,5,6\n7,8,9"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
	if sel := m.Selection(); sel != grid.Cell(0, 2) {
		t.Fatalf("selection = %+v, want pasted cell", sel)
	}
}

func TestInsertColumnAtEndAddsLabel(t *testing.T) {
	m := newModel(sample)
	m.InsertColumns(m.ColumnCount(grid.Body), 1)
	if got, want := m.Text(), "A,B,C,D\n1,2,3,\nabc,5,6,\n7,8,9,"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
	if got := m.Data(grid.ColumnHeader, 0, 3); got != "D" {
		t.Fatalf("header = %q, want D", got)
	}
}

func TestNamedHeadersFollowTheirColumn(t *testing.T) {
	m := newModel("name,age\nann,31\nbob,42")
	m.MoveColumns(0, 1, 1)
	if got, want := m.Text(), "age,name\n31,ann\n42,bob"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
	m.InsertColumns(0, 1)
	if got, want := m.Header(0), "A"; got != want {
		t.Fatalf("new header = %q, want %q", got, want)
	}
}

func TestMoveOntoItselfRecordsNothing(t *testing.T) {
	m := newModel(sample)
	changes := record(m)
	if m.MoveRows(1, 1, 1) || m.MoveColumns(2, 2, 1) {
		t.Fatalf("no-op move reported a change")
	}
	if m.MoveRows(0, 1, 3) || m.MoveColumns(0, 2, 3) {
		t.Fatalf("drop inside the moved span reported a change")
	}
	if got := m.Text(); got != sample {
		t.Fatalf("text = %q, want %q", got, sample)
	}
	if len(*changes) != 0 || m.CanUndo() {
		t.Fatalf("changes=%d canUndo=%v, want 0 false", len(*changes), m.CanUndo())
	}
}

func TestInsertRemoveSymmetry(t *testing.T) {
	m := newModel(sample)
	before := m.rows.Slots()
	m.InsertRows(2, 1)
	m.RemoveRows(2, 1)
	if !slices.Equal(m.rows.Slots(), before) {
		t.Fatalf("rows = %v, want %v", m.rows.Slots(), before)
	}
	if got := m.Text(); got != sample {
		t.Fatalf("text = %q, want %q", got, sample)
	}
}

func TestUndoRedoInverseLaw(t *testing.T) {
	m := newModel(sample + "\n")
	texts := []string{m.Text()}
	steps := []func() bool{
		func() bool { return m.InsertRows(1, 2) },
		func() bool { return m.SetCell(1, 1, "x\ty") },
		func() bool { return m.MoveColumns(0, 2, 1) },
		func() bool { return m.RemoveRows(0, 1) },
		func() bool { return m.Paste(0, 0, "p,q\tr\nline2") },
		func() bool { return m.ClearColumns(grid.Cell(0, 1)) },
		func() bool { return m.InsertColumns(1, 1) },
		func() bool { return m.MoveRows(3, 0, 1) },
		func() bool { _, ok := m.Cut(grid.Selection{Row: 0, Column: 0, RowEnd: 1, ColumnEnd: 1}); return ok },
		func() bool { return m.SetHeader(2, "named") },
	}
	for i, step := range steps {
		if !step() {
			t.Fatalf("step %d recorded nothing", i)
		}
		texts = append(texts, m.Text())
	}
	for i := len(steps) - 1; i >= 0; i-- {
		if !m.Undo() {
			t.Fatalf("undo %d failed", i)
		}
		if got := m.Text(); got != texts[i] {
			t.Fatalf("after undo %d text = %q, want %q", i, got, texts[i])
		}
	}
	if m.Undo() {
		t.Fatalf("undo past the baseline succeeded")
	}
	if m.Dirty() {
		t.Fatalf("dirty after undoing everything")
	}
	for i := 1; i < len(texts); i++ {
		if !m.Redo() {
			t.Fatalf("redo %d failed", i)
		}
		if got := m.Text(); got != texts[i] {
			t.Fatalf("after redo %d text = %q, want %q", i, got, texts[i])
		}
	}
	if m.Redo() {
		t.Fatalf("redo with empty stack succeeded")
	}
}

func TestRandomEditsUndoToBaseline(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for trial := range 50 {
		m := newModel(sample)
		rows, cols := m.rows.Slots(), m.cols.Slots()
		n := 0
		for range 20 {
			if randomEdit(r, m) {
				n++
			}
		}
		for range n {
			if !m.Undo() {
				t.Fatalf("trial %d: undo failed", trial)
			}
		}
		if m.Text() != sample || !slices.Equal(m.rows.Slots(), rows) || !slices.Equal(m.cols.Slots(), cols) {
			t.Fatalf("trial %d: text = %q rows %v cols %v", trial, m.Text(), m.rows.Slots(), m.cols.Slots())
		}
		if m.values.Len() != 0 {
			t.Fatalf("trial %d: %d overlay values left", trial, m.values.Len())
		}
	}
}

func randomEdit(r *rand.Rand, m *Model) bool {
	row := func() int { return r.IntN(max(1, m.Rows())) }
	col := func() int { return r.IntN(max(1, m.Columns())) }
	switch r.IntN(8) {
	case 0:
		return m.InsertRows(row(), 1+r.IntN(2))
	case 1:
		return m.RemoveRows(row(), 1)
	case 2:
		return m.MoveRows(row(), row(), 1)
	case 3:
		return m.InsertColumns(col(), 1)
	case 4:
		return m.RemoveColumns(col(), 1)
	case 5:
		return m.MoveColumns(col(), col(), 1)
	case 6:
		return m.Paste(row(), col(), "a\tb\nc\td")
	default:
		return m.SetCell(row(), col(), []string{"", "v", "q\"", "x,y"}[r.IntN(4)])
	}
}

func TestOverlayReadBeforeReparse(t *testing.T) {
	m := newModel(sample)
	sched := &fakeScheduler{}
	m.SetReparser(sched)
	m.SetCell(2, 2, "edited")
	if got := m.Value(2, 2); got != "edited" {
		t.Fatalf("value = %q, want edited", got)
	}
	if len(sched.snaps) != 0 {
		t.Fatalf("single cell edit scheduled a reparse")
	}
}

func TestReadsOutOfRange(t *testing.T) {
	m := newModel(sample)
	if m.Value(-1, 0) != "" || m.Value(0, 9) != "" || m.Data(grid.RowHeader, 7, 0) != "" {
		t.Fatalf("out of range reads are not blank")
	}
	if got := m.Data(grid.ColumnHeader, 5, 1); got != "B" {
		t.Fatalf("column header = %q, want B", got)
	}
	if got := m.Data(grid.RowHeader, 2, 0); got != "3" {
		t.Fatalf("row header = %q, want 3", got)
	}
	if m.RowCount(grid.Body) != 3 || m.ColumnCount(grid.Body) != 3 || m.RowCount(grid.ColumnHeader) != 1 {
		t.Fatalf("counts = %d %d %d", m.RowCount(grid.Body), m.ColumnCount(grid.Body), m.RowCount(grid.ColumnHeader))
	}
}

func TestOutOfRangeMutationsClamp(t *testing.T) {
	m := newModel(sample)
	m.InsertRows(99, 1)
	if got, want := m.Text(), sample+"\n,,"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
	m.RemoveRows(2, 99)
	if got, want := m.Text(), "A,B,C\n1,2,3\nabc,5,6"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
	if m.SetCell(5, 0, "x") || m.Paste(9, 9, "x") {
		t.Fatalf("write outside the grid succeeded")
	}
}

func TestBlankLastRowSurvivesReload(t *testing.T) {
	m := newModel("A\nx")
	m.InsertRows(1, 1)
	text := m.Text()
	if text != "A\nx\n\n" {
		t.Fatalf("text = %q, want %q", text, "A\nx\n\n")
	}
	reread := newModel(text)
	if reread.Rows() != m.Rows() || reread.Text() != text {
		t.Fatalf("reread rows = %d text = %q, want %d %q", reread.Rows(), reread.Text(), m.Rows(), text)
	}

	m.RemoveColumns(0, 1)
	if got := newModel(m.Text()).Rows(); got != m.Rows() {
		t.Fatalf("zero-column reread rows = %d, want %d", got, m.Rows())
	}
}

func TestEmptyDocument(t *testing.T) {
	m := newModel("")
	if m.Rows() != 0 || m.Columns() != 0 || m.Text() != "" {
		t.Fatalf("rows=%d cols=%d text=%q", m.Rows(), m.Columns(), m.Text())
	}
	m.InsertRows(0, 1)
	m.InsertColumns(0, 2)
	if got, want := m.Text(), "A,B\n,"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
	m.SetCell(0, 1, "v")
	if got, want := m.Text(), "A,B\n,v"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestCopyCutQuoting(t *testing.T) {
	m := newModel("h1,h2\n\"a\tb\",c\n\"x\"\"y\",z")
	sel := grid.Selection{Row: 0, Column: 0, RowEnd: 1, ColumnEnd: 1}
	if got, want := m.Copy(sel), "\"a\tb\"\tc\n\"x\"\"y\"\tz"; got != want {
		t.Fatalf("copy = %q, want %q", got, want)
	}
	text, ok := m.Cut(grid.Cell(1, 1))
	if !ok || text != "z" {
		t.Fatalf("cut = %q %v, want z true", text, ok)
	}
	if got := m.Value(1, 1); got != "" {
		t.Fatalf("cut cell = %q, want empty", got)
	}
	m.Undo()
	if got := m.Value(1, 1); got != "z" {
		t.Fatalf("after undo cell = %q, want z", got)
	}
	if m.CanUndo() {
		t.Fatalf("cut left more than one transaction")
	}
}

func TestUnchangedWriteRecordsNothing(t *testing.T) {
	m := newModel(sample)
	changes := record(m)
	if m.SetCell(0, 0, "1") {
		t.Fatalf("writing the current value reported a change")
	}
	if len(*changes) != 0 || m.Dirty() {
		t.Fatalf("changes=%d dirty=%v", len(*changes), m.Dirty())
	}
}

func TestLargeChangeBecomesReset(t *testing.T) {
	opts := DefaultOptions()
	opts.ResetThreshold = 4
	m := New(sample, opts)
	changes := record(m)
	m.ClearRows(grid.Selection{Row: 0, RowEnd: 1})
	if len(*changes) != 1 || (*changes)[0].Kind != grid.ModelReset {
		t.Fatalf("changes = %+v, want one model reset", *changes)
	}
	m.SetCell(2, 0, "")
	if last := (*changes)[len(*changes)-1]; last.Kind != grid.CellsChanged {
		t.Fatalf("small change kind = %v, want cells-changed", last.Kind)
	}
}

func TestUndoNotifiesInverseAndRestoresSelection(t *testing.T) {
	m := newModel(sample)
	m.SetSelection(grid.Cell(2, 1))
	m.InsertRows(0, 2)
	changes := record(m)
	m.Undo()
	want := grid.Change{Kind: grid.RowsRemoved, Region: grid.Body, Index: 0, Span: 2}
	if len(*changes) != 1 || (*changes)[0] != want {
		t.Fatalf("changes = %+v, want [%+v]", *changes, want)
	}
	if got := m.Selection(); got != grid.Cell(2, 1) {
		t.Fatalf("selection = %+v, want (2,1)", got)
	}
	m.Redo()
	if got := m.Selection(); got != grid.Cell(0, 1) {
		t.Fatalf("selection after redo = %+v, want (0,1)", got)
	}
}

func TestMutationDuringNotificationIsRejected(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger.Use(zap.New(core))
	defer logger.Use(nil)

	m := newModel(sample)
	var inner []bool
	m.Subscribe(func(grid.Change) {
		inner = append(inner, m.SetCell(0, 0, "loop"), m.Undo())
	})
	m.SetCell(1, 1, "x")
	if len(inner) != 2 || inner[0] || inner[1] {
		t.Fatalf("re-entrant calls = %v, want [false false]", inner)
	}
	if got := m.Value(0, 0); got != "1" {
		t.Fatalf("re-entrant write landed: %q", got)
	}
	if n := logs.FilterMessage("model: mutation rejected during notification").Len(); n != 2 {
		t.Fatalf("warnings = %d, want 2", n)
	}
	if !m.SetCell(0, 0, "after") {
		t.Fatalf("mutation after notification rejected")
	}
}

func TestSubscribeCancel(t *testing.T) {
	m := newModel(sample)
	n := 0
	cancel := m.Subscribe(func(grid.Change) { n++ })
	m.SetCell(0, 0, "a")
	cancel()
	m.SetCell(0, 0, "b")
	if n != 1 {
		t.Fatalf("notifications = %d, want 1", n)
	}
}

func TestDirtyTracking(t *testing.T) {
	m := newModel(sample)
	if m.Dirty() {
		t.Fatalf("fresh model is dirty")
	}
	m.SetCell(0, 0, "x")
	if !m.Dirty() {
		t.Fatalf("edited model is clean")
	}
	m.MarkSaved(m.Text())
	if m.Dirty() {
		t.Fatalf("dirty after save")
	}
	m.Undo()
	if !m.Dirty() {
		t.Fatalf("clean after undoing past the save point")
	}
	m.Redo()
	if m.Dirty() {
		t.Fatalf("dirty after redoing back to the save point")
	}
}

func TestReloadIgnoresOwnText(t *testing.T) {
	m := newModel(sample)
	m.SetCell(0, 0, "x")
	saved := m.Text()
	m.MarkSaved(saved)
	changes := record(m)
	if m.Reload(saved) {
		t.Fatalf("reload of own text applied")
	}
	if !m.CanUndo() {
		t.Fatalf("history lost on ignored reload")
	}
	if !m.Reload("q,r\n1,2") {
		t.Fatalf("external reload ignored")
	}
	if m.CanUndo() || m.Dirty() || m.Text() != "q,r\n1,2" {
		t.Fatalf("canUndo=%v dirty=%v text=%q", m.CanUndo(), m.Dirty(), m.Text())
	}
	if len(*changes) != 1 || (*changes)[0].Kind != grid.ModelReset {
		t.Fatalf("changes = %+v, want one reset", *changes)
	}
}
