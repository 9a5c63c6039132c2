// Package index maps logical grid positions to physical rows or columns of
// the parsed buffer.
package index

import (
	"fmt"
	"slices"
)

// Slot is what sits at one logical position: either a physical row/column
// of the buffer or an unbacked entry created by an insert. Unbacked slots
// carry their own id so overlay values can be keyed on them.
type Slot struct {
	id     int
	backed bool
}

func Backed(physical int) Slot { return Slot{id: physical, backed: true} }

func Unbacked(id int) Slot { return Slot{id: id} }

// Physical returns the physical index and true for backed slots.
func (s Slot) Physical() (int, bool) {
	if !s.backed {
		return -1, false
	}
	return s.id, true
}

func (s Slot) IsBacked() bool { return s.backed }

func (s Slot) String() string {
	if s.backed {
		return fmt.Sprintf("%d", s.id)
	}
	return fmt.Sprintf("new#%d", s.id)
}

// Splice is one applied edit: Removed were taken out at Index and Inserted
// put in their place. It carries enough to be replayed or inverted.
type Splice struct {
	Index    int
	Removed  []Slot
	Inserted []Slot
}

// Inverse returns the splice that undoes s.
func (s Splice) Inverse() Splice {
	return Splice{Index: s.Index, Removed: s.Inserted, Inserted: s.Removed}
}

func (s Splice) Empty() bool { return len(s.Removed) == 0 && len(s.Inserted) == 0 }

// Map is the ordered logical-to-physical mapping for one axis.
type Map struct {
	slots     []Slot
	nextFresh int
}

// Identity maps logical i to physical i for n entries.
func Identity(n int) *Map {
	slots := make([]Slot, n)
	for i := range slots {
		slots[i] = Backed(i)
	}
	return &Map{slots: slots}
}

// FromSlots builds a map over a copy of slots.
func FromSlots(slots []Slot) *Map {
	m := &Map{slots: slices.Clone(slots)}
	for _, s := range slots {
		if !s.backed && s.id >= m.nextFresh {
			m.nextFresh = s.id + 1
		}
	}
	return m
}

func (m *Map) Len() int { return len(m.slots) }

func (m *Map) At(i int) Slot { return m.slots[i] }

// Resolve returns the physical index at logical i, or false when the
// position is unbacked or out of range.
func (m *Map) Resolve(i int) (int, bool) {
	if i < 0 || i >= len(m.slots) {
		return -1, false
	}
	return m.slots[i].Physical()
}

// Slots returns a copy of the current order.
func (m *Map) Slots() []Slot { return slices.Clone(m.slots) }

// Fresh allocates n unbacked slots that have never been used on this map.
func (m *Map) Fresh(n int) []Slot {
	out := make([]Slot, n)
	for i := range out {
		out[i] = Unbacked(m.nextFresh)
		m.nextFresh++
	}
	return out
}

// Splice removes up to remove entries at index and inserts insert there.
// index and remove are clamped to the map. The returned splice records what
// was actually removed.
func (m *Map) Splice(index, remove int, insert []Slot) Splice {
	index = max(0, min(index, len(m.slots)))
	remove = max(0, min(remove, len(m.slots)-index))
	removed := slices.Clone(m.slots[index : index+remove])
	m.slots = slices.Delete(m.slots, index, index+remove)
	m.slots = slices.Insert(m.slots, index, insert...)
	return Splice{Index: index, Removed: removed, Inserted: slices.Clone(insert)}
}

// Apply replays a recorded splice.
func (m *Map) Apply(s Splice) {
	m.Splice(s.Index, len(s.Removed), s.Inserted)
}

// MoveDestination returns where a span of length span starting at start
// lands when dropped on end. Removing the source first shifts everything
// after it, so a forward move lands at end-span+1. ok is false for moves
// that change nothing, including a drop inside the span itself.
func MoveDestination(total, start, end, span int) (int, bool) {
	if span <= 0 || start < 0 || start+span > total || (end >= start && end < start+span) {
		return start, false
	}
	dest := end
	if end > start {
		dest = end - span + 1
	}
	dest = max(0, min(dest, total-span))
	return dest, dest != start
}

// Move relocates [start, start+span) so it is dropped on end. It is
// expressed as a remove splice followed by an insert splice so that undo
// can replay the pair in reverse.
func (m *Map) Move(start, end, span int) (remove, insert Splice, dest int, ok bool) {
	dest, ok = MoveDestination(len(m.slots), start, end, span)
	if !ok {
		return Splice{}, Splice{}, start, false
	}
	remove = m.Splice(start, span, nil)
	insert = m.Splice(dest, 0, remove.Removed)
	return remove, insert, dest, true
}

// Validate checks that no physical index appears twice.
func (m *Map) Validate() error {
	seen := make(map[Slot]int, len(m.slots))
	for i, s := range m.slots {
		if j, ok := seen[s]; ok {
			return fmt.Errorf("slot %s at %d and %d", s, j, i)
		}
		seen[s] = i
	}
	return nil
}
