// Package model is the editable table behind one open document. It owns the
// parsed buffer, the logical row and column maps, the value overlay and the
// transaction log, and exposes the result through grid.DataModel.
//
// Absolute row 0 is the header line. Body row r is absolute row r+1; every
// exported operation takes body coordinates.
package model

import (
	"slices"
	"strconv"

	"github.com/kobzarvs/tabedit/internal/dsv"
	"github.com/kobzarvs/tabedit/internal/grid"
	"github.com/kobzarvs/tabedit/internal/history"
	"github.com/kobzarvs/tabedit/internal/index"
	"github.com/kobzarvs/tabedit/internal/logger"
	"github.com/kobzarvs/tabedit/internal/overlay"
	"github.com/kobzarvs/tabedit/internal/serialize"
)

// DefaultResetThreshold is the number of cells above which a change is
// reported as a model reset instead of a precise region.
const DefaultResetThreshold = 10000

type Options struct {
	Parse          dsv.Options
	ResetThreshold int
}

func DefaultOptions() Options {
	return Options{Parse: dsv.DefaultOptions(), ResetThreshold: DefaultResetThreshold}
}

// Scheduler accepts snapshots for background re-parsing.
type Scheduler interface {
	Schedule(s Snapshot) error
}

type subscriber struct {
	id int
	fn func(grid.Change)
}

type Model struct {
	opts   Options
	buf    *dsv.Buffer
	rows   *index.Map
	cols   *index.Map
	values *overlay.Overlay
	log    *history.Log

	selection    grid.Selection
	observers    []subscriber
	nextObserver int
	transmitting bool

	savedSeq   int
	lastText   string
	generation int
	pending    bool
	reparser   Scheduler
}

// New parses text and starts a fresh history with it as the baseline.
func New(text string, opts Options) *Model {
	if opts.ResetThreshold == 0 {
		opts.ResetThreshold = DefaultResetThreshold
	}
	m := &Model{opts: opts, log: history.New()}
	m.load(text)
	return m
}

func (m *Model) load(text string) {
	m.buf = dsv.Parse(text, m.opts.Parse)
	m.rows = index.Identity(m.buf.Rows())
	m.cols = index.Identity(m.buf.Columns())
	m.values = overlay.New()
	m.log.Reset()
	m.savedSeq = m.log.Seq()
	m.lastText = text
	m.pending = false
	m.generation++
	m.selection = grid.Cell(0, 0).Clamp(m.Rows(), m.Columns())
	logger.Info("model: loaded",
		"rows", m.buf.Rows(),
		"columns", m.buf.Columns(),
		"row-delimiter", strconv.Quote(m.buf.RowDelimiter()),
	)
}

// SetReparser installs the scheduler used after bulk edits.
func (m *Model) SetReparser(s Scheduler) { m.reparser = s }

// Rows is the number of body rows.
func (m *Model) Rows() int { return max(0, m.rows.Len()-1) }

func (m *Model) Columns() int { return m.cols.Len() }

func (m *Model) Delimiter() byte { return m.buf.Delimiter() }

// Value returns the body cell at row, col.
func (m *Model) Value(row, col int) string {
	if row < 0 || row >= m.Rows() {
		return ""
	}
	return m.cell(row+1, col)
}

// Header returns the column header text.
func (m *Model) Header(col int) string {
	if m.rows.Len() == 0 {
		return grid.ColumnLabel(col)
	}
	return m.cell(0, col)
}

// cell reads an absolute cell: overlay first, then the buffer; unbacked
// cells without an overlay value are blank.
func (m *Model) cell(row, col int) string {
	if row < 0 || row >= m.rows.Len() || col < 0 || col >= m.cols.Len() {
		return ""
	}
	rs, cs := m.rows.At(row), m.cols.At(col)
	if v, ok := m.values.Get(rs, cs); ok {
		return v
	}
	pr, rowBacked := rs.Physical()
	pc, colBacked := cs.Physical()
	if !rowBacked || !colBacked {
		return ""
	}
	return m.buf.Value(pr, pc)
}

// Text serializes the current state.
func (m *Model) Text() string {
	return serialize.Serialize(serialize.Source{
		Buffer:  m.buf,
		Rows:    m.rows.Slots(),
		Columns: m.cols.Slots(),
		Values:  m.values,
	})
}

func (m *Model) Selection() grid.Selection { return m.selection }

func (m *Model) SetSelection(sel grid.Selection) {
	m.selection = sel.Clamp(m.Rows(), m.Columns())
}

func (m *Model) CanUndo() bool { return m.log.CanUndo() }
func (m *Model) CanRedo() bool { return m.log.CanRedo() }

// Dirty reports whether the state differs from the last save or load.
func (m *Model) Dirty() bool { return m.log.Seq() != m.savedSeq }

// MarkSaved records that text, produced by Text, is now on disk.
func (m *Model) MarkSaved(text string) {
	m.savedSeq = m.log.Seq()
	m.lastText = text
}

// Synced reports whether no re-parse is outstanding.
func (m *Model) Synced() bool { return !m.pending }

// Generation increases with every applied change.
func (m *Model) Generation() int { return m.generation }

// Reload replaces the document after an external change. Text the model
// produced itself is recognised and ignored.
func (m *Model) Reload(text string) bool {
	if m.rejected("reload") {
		return false
	}
	if text == m.lastText {
		logger.Debug("model: reload ignored, text is current")
		return false
	}
	return m.Replace(text)
}

// Replace loads text unconditionally, dropping edits and history.
func (m *Model) Replace(text string) bool {
	if m.rejected("replace") {
		return false
	}
	m.load(text)
	m.notify(grid.Reset())
	return true
}

// Subscribe registers fn for change notifications.
func (m *Model) Subscribe(fn func(grid.Change)) (cancel func()) {
	m.nextObserver++
	id := m.nextObserver
	m.observers = append(m.observers, subscriber{id: id, fn: fn})
	return func() {
		m.observers = slices.DeleteFunc(m.observers, func(o subscriber) bool { return o.id == id })
	}
}

func (m *Model) rejected(op string) bool {
	if m.transmitting {
		logger.Warn("model: mutation rejected during notification", "op", op)
		return true
	}
	return false
}

func (m *Model) begin(name string) bool {
	if m.rejected(name) {
		return false
	}
	m.log.Begin(name, m.selection)
	return true
}

// commit closes the transaction opened by begin. Inside a nested
// transaction it only reports whether anything is pending.
func (m *Model) commit(c grid.Change, structural bool) bool {
	if c.Kind != grid.NoChange {
		m.log.Notify(c)
	}
	if structural {
		m.log.MarkStructural()
	}
	tx, ok := m.log.End(m.selection)
	if !ok {
		return m.log.Pending()
	}
	logger.Debug("model: commit", "name", tx.Name, "ops", len(tx.Ops), "seq", tx.Seq)
	m.changed(tx.Change, tx.Structural)
	return true
}

func (m *Model) changed(c grid.Change, structural bool) {
	m.generation++
	if structural || m.pending {
		m.scheduleReparse()
	}
	m.notify(c)
}

func (m *Model) notify(c grid.Change) {
	if c.Kind == grid.NoChange {
		return
	}
	if c.Kind != grid.ModelReset && c.Cells(m.rows.Len(), m.cols.Len()) > m.opts.ResetThreshold {
		c = grid.Reset()
	}
	m.transmitting = true
	defer func() { m.transmitting = false }()
	for _, o := range slices.Clone(m.observers) {
		o.fn(c)
	}
}

func (m *Model) apply(op history.Op) {
	switch op.Kind {
	case history.RowSplice:
		m.rows.Apply(op.Splice)
	case history.ColumnSplice:
		m.cols.Apply(op.Splice)
	case history.ValueSet:
		m.values.Apply(op.Value)
	}
}

func (m *Model) spliceRows(at, remove int, insert []index.Slot) {
	if s := m.rows.Splice(at, remove, insert); !s.Empty() {
		m.log.Record(history.Op{Kind: history.RowSplice, Splice: s})
	}
}

func (m *Model) spliceColumns(at, remove int, insert []index.Slot) {
	if s := m.cols.Splice(at, remove, insert); !s.Empty() {
		m.log.Record(history.Op{Kind: history.ColumnSplice, Splice: s})
	}
}

func (m *Model) set(row, col index.Slot, value string) {
	m.log.Record(history.Op{Kind: history.ValueSet, Value: m.values.Set(row, col, value)})
}

// Undo reverts the last transaction and restores the selection it started
// with.
func (m *Model) Undo() bool {
	if m.rejected("undo") {
		return false
	}
	tx, ok := m.log.Undo(history.TargetFunc(m.apply))
	if !ok {
		return false
	}
	m.selection = tx.Before.Clamp(m.Rows(), m.Columns())
	logger.Debug("model: undo", "name", tx.Name)
	m.changed(tx.Change.Inverse(), tx.Structural)
	return true
}

// Redo re-applies the last undone transaction.
func (m *Model) Redo() bool {
	if m.rejected("redo") {
		return false
	}
	tx, ok := m.log.Redo(history.TargetFunc(m.apply))
	if !ok {
		return false
	}
	m.selection = tx.After.Clamp(m.Rows(), m.Columns())
	logger.Debug("model: redo", "name", tx.Name)
	m.changed(tx.Change, tx.Structural)
	return true
}

func clamp(v, lo, hi int) int { return max(lo, min(v, hi)) }
