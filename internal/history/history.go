// Package history records model mutations as invertible transactions and
// replays them for undo and redo.
package history

import (
	"slices"

	"github.com/kobzarvs/tabedit/internal/grid"
	"github.com/kobzarvs/tabedit/internal/index"
	"github.com/kobzarvs/tabedit/internal/overlay"
)

type OpKind int

const (
	RowSplice OpKind = iota
	ColumnSplice
	ValueSet
)

// Op is a single recorded mutation of the row map, the column map or the
// value overlay.
type Op struct {
	Kind   OpKind
	Splice index.Splice
	Value  overlay.Change
}

func (o Op) Inverse() Op {
	switch o.Kind {
	case ValueSet:
		return Op{Kind: o.Kind, Value: o.Value.Inverse()}
	default:
		return Op{Kind: o.Kind, Splice: o.Splice.Inverse()}
	}
}

// Transaction is the unit of undo. Ops are kept in the order they were
// applied; Change is what the grid was told when the transaction committed.
type Transaction struct {
	Name       string
	Seq        int
	Ops        []Op
	Change     grid.Change
	Before     grid.Selection
	After      grid.Selection
	Structural bool
}

// Target applies ops to whatever owns the state.
type Target interface {
	Apply(op Op)
}

// TargetFunc adapts a function to Target.
type TargetFunc func(Op)

func (f TargetFunc) Apply(op Op) { f(op) }

// Log holds the undo and redo stacks of one document. The bottom of the
// undo stack is the baseline and is never undone.
type Log struct {
	undo  []*Transaction
	redo  []*Transaction
	open  *Transaction
	depth int
	seq   int
}

func New() *Log {
	l := &Log{}
	l.Reset()
	return l
}

// Reset drops all history and starts over from a new baseline.
func (l *Log) Reset() {
	l.seq++
	l.undo = []*Transaction{{Name: "baseline", Seq: l.seq}}
	l.redo = nil
	l.open = nil
	l.depth = 0
}

// Begin opens a transaction. Nested calls join the outermost one, which
// commits when the matching End brings the depth back to zero.
func (l *Log) Begin(name string, before grid.Selection) {
	l.depth++
	if l.depth == 1 {
		l.open = &Transaction{Name: name, Before: before}
	}
}

// Recording reports whether a transaction is open.
func (l *Log) Recording() bool { return l.depth > 0 }

// Record appends an already applied op to the open transaction.
func (l *Log) Record(op Op) {
	if l.open == nil {
		return
	}
	l.open.Ops = append(l.open.Ops, op)
}

// Notify merges a grid change into the open transaction.
func (l *Log) Notify(c grid.Change) {
	if l.open == nil {
		return
	}
	l.open.Change = l.open.Change.Merge(c)
}

// MarkStructural flags the open transaction as one that changes the shape
// of the document.
func (l *Log) MarkStructural() {
	if l.open != nil {
		l.open.Structural = true
	}
}

// Pending reports whether the open transaction has recorded anything.
func (l *Log) Pending() bool { return l.open != nil && len(l.open.Ops) > 0 }

// End closes one level of nesting. At the outermost level a transaction
// with ops is pushed and returned; an empty one is dropped.
func (l *Log) End(after grid.Selection) (*Transaction, bool) {
	if l.depth == 0 {
		return nil, false
	}
	l.depth--
	if l.depth > 0 {
		return nil, false
	}
	t := l.open
	l.open = nil
	if t == nil || len(t.Ops) == 0 {
		return nil, false
	}
	l.seq++
	t.Seq = l.seq
	t.After = after
	l.undo = append(l.undo, t)
	l.redo = nil
	return t, true
}

// Undo inverts the most recent transaction on target and moves it to the
// redo stack.
func (l *Log) Undo(target Target) (*Transaction, bool) {
	if l.depth > 0 || len(l.undo) <= 1 {
		return nil, false
	}
	t := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]
	for _, op := range slices.Backward(t.Ops) {
		target.Apply(op.Inverse())
	}
	l.redo = append(l.redo, t)
	return t, true
}

// Redo re-applies the most recently undone transaction.
func (l *Log) Redo(target Target) (*Transaction, bool) {
	if l.depth > 0 || len(l.redo) == 0 {
		return nil, false
	}
	t := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	for _, op := range t.Ops {
		target.Apply(op)
	}
	l.undo = append(l.undo, t)
	return t, true
}

func (l *Log) CanUndo() bool { return len(l.undo) > 1 }
func (l *Log) CanRedo() bool { return len(l.redo) > 0 }

// Depth is the number of undoable transactions.
func (l *Log) Depth() int { return len(l.undo) - 1 }

// Seq identifies the current state: the sequence number of the transaction
// on top of the undo stack.
func (l *Log) Seq() int { return l.undo[len(l.undo)-1].Seq }
