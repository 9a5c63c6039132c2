// Package overlay holds cell values edited since the buffer was parsed.
package overlay

import (
	"maps"

	"github.com/kobzarvs/tabedit/internal/index"
)

// Key addresses a cell by the slots of its row and column, so values follow
// their cell through moves and survive removal for undo.
type Key struct {
	Row    index.Slot
	Column index.Slot
}

// Change is one recorded write. Had/Has tell whether a value was present
// before and after; only an undo of a first write removes an entry.
type Change struct {
	Key Key
	Old string
	Had bool
	New string
	Has bool
}

func (c Change) Inverse() Change {
	return Change{Key: c.Key, Old: c.New, Had: c.Has, New: c.Old, Has: c.Had}
}

type Overlay struct {
	values map[Key]string
	perRow map[index.Slot]int
}

func New() *Overlay {
	return &Overlay{
		values: make(map[Key]string),
		perRow: make(map[index.Slot]int),
	}
}

func (o *Overlay) Get(row, col index.Slot) (string, bool) {
	v, ok := o.values[Key{Row: row, Column: col}]
	return v, ok
}

// Set stores value and returns the change that was applied.
func (o *Overlay) Set(row, col index.Slot, value string) Change {
	key := Key{Row: row, Column: col}
	old, had := o.values[key]
	c := Change{Key: key, Old: old, Had: had, New: value, Has: true}
	o.Apply(c)
	return c
}

// Apply replays a change.
func (o *Overlay) Apply(c Change) {
	_, present := o.values[c.Key]
	if c.Has {
		o.values[c.Key] = c.New
		if !present {
			o.perRow[c.Key.Row]++
		}
		return
	}
	if present {
		delete(o.values, c.Key)
		if o.perRow[c.Key.Row]--; o.perRow[c.Key.Row] <= 0 {
			delete(o.perRow, c.Key.Row)
		}
	}
}

// RowHasValues reports whether any cell of row is overridden.
func (o *Overlay) RowHasValues(row index.Slot) bool {
	return o.perRow[row] > 0
}

func (o *Overlay) Len() int { return len(o.values) }

// Clone returns an independent copy.
func (o *Overlay) Clone() *Overlay {
	return &Overlay{values: maps.Clone(o.values), perRow: maps.Clone(o.perRow)}
}

// Equal reports whether both overlays hold the same values.
func (o *Overlay) Equal(other *Overlay) bool {
	return maps.Equal(o.values, other.values)
}
