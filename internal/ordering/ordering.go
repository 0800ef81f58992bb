// Package ordering computes dense order values for sibling items after a
// drag inside a group or across groups.
//
// Orders are renumbered 0, 1, 2, ... for every group a move touches. Groups
// the move does not touch keep whatever values they had.
package ordering

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

var (
	ErrItemNotFound    = errors.New("item not found in source group")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Item is one sibling as seen by the engine.
type Item struct {
	ID    uuid.UUID
	Group string
	Order int
}

// Move relocates ID from FromIndex in FromGroup to ToIndex in ToGroup.
// The item is located by ID; FromIndex is only a hint from the caller's view.
type Move struct {
	ID        uuid.UUID
	FromGroup string
	ToGroup   string
	FromIndex int
	ToIndex   int
}

// Update is the new placement of one touched item.
type Update struct {
	ID    uuid.UUID
	Group string
	Order int
}

// Sequence returns the items of group sorted by order. Ties keep their
// relative position in items.
func Sequence(items []Item, group string) []Item {
	seq := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Group == group {
			seq = append(seq, it)
		}
	}
	sort.SliceStable(seq, func(i, j int) bool {
		return seq[i].Order < seq[j].Order
	})
	return seq
}

// Plan applies m to items and returns one update per item in every touched
// group. A move to the position the item already holds returns no updates.
func Plan(items []Item, m Move) ([]Update, error) {
	if m.ToIndex < 0 {
		return nil, fmt.Errorf("%w: to index %d", ErrIndexOutOfRange, m.ToIndex)
	}

	source := Sequence(items, m.FromGroup)
	from := indexOf(source, m.ID)
	if from < 0 {
		return nil, fmt.Errorf("%w: %s in %q", ErrItemNotFound, m.ID, m.FromGroup)
	}

	moved := source[from]
	source = remove(source, from)

	if m.FromGroup == m.ToGroup {
		to := clamp(m.ToIndex, len(source))
		if to == from {
			return nil, nil
		}
		source = insert(source, to, moved)
		return renumber(source, m.FromGroup), nil
	}

	dest := Sequence(items, m.ToGroup)
	moved.Group = m.ToGroup
	dest = insert(dest, clamp(m.ToIndex, len(dest)), moved)

	updates := renumber(source, m.FromGroup)
	return append(updates, renumber(dest, m.ToGroup)...), nil
}

func indexOf(seq []Item, id uuid.UUID) int {
	for i, it := range seq {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func remove(seq []Item, i int) []Item {
	out := make([]Item, 0, len(seq)-1)
	out = append(out, seq[:i]...)
	return append(out, seq[i+1:]...)
}

func insert(seq []Item, i int, it Item) []Item {
	out := make([]Item, 0, len(seq)+1)
	out = append(out, seq[:i]...)
	out = append(out, it)
	return append(out, seq[i:]...)
}

// clamp pins an index past the end to an append.
func clamp(i, n int) int {
	if i > n {
		return n
	}
	return i
}

func renumber(seq []Item, group string) []Update {
	updates := make([]Update, len(seq))
	for i, it := range seq {
		updates[i] = Update{ID: it.ID, Group: group, Order: i}
	}
	return updates
}
