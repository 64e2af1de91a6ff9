package dnd

import (
	"errors"
	"fmt"
)

// ItemID identifies a draggable item (a patient card or a species row).
type ItemID int64

// ContainerID identifies an orderable list of items (a home column).
type ContainerID int64

var (
	ErrUnknownContainer = errors.New("unknown container")
	ErrUnknownItem      = errors.New("unknown item")
	ErrDuplicateItem    = errors.New("duplicate item")
)

// Lists holds the ordered item ids of every container on a board.
//
// Every item is owned by exactly one container. Mutations go through Move,
// which detaches and re-inserts in one step.
type Lists struct {
	containers []ContainerID
	items      map[ContainerID][]ItemID
	owner      map[ItemID]ContainerID
}

func NewLists() *Lists {
	return &Lists{
		items: map[ContainerID][]ItemID{},
		owner: map[ItemID]ContainerID{},
	}
}

// Add registers a container with its initial order. Adding to an existing
// container appends.
func (l *Lists) Add(c ContainerID, items ...ItemID) error {
	if _, ok := l.items[c]; !ok {
		l.containers = append(l.containers, c)
		l.items[c] = []ItemID{}
	}
	for _, it := range items {
		if prev, ok := l.owner[it]; ok {
			return fmt.Errorf("%w: item %d already in container %d", ErrDuplicateItem, it, prev)
		}
		l.items[c] = append(l.items[c], it)
		l.owner[it] = c
	}
	return nil
}

// Containers returns container ids in registration order.
func (l *Lists) Containers() []ContainerID {
	return append([]ContainerID{}, l.containers...)
}

func (l *Lists) Has(c ContainerID) bool {
	_, ok := l.items[c]
	return ok
}

// Order returns a copy of the container's item order. Unknown containers
// yield an empty, non-nil slice.
func (l *Lists) Order(c ContainerID) []ItemID {
	return append([]ItemID{}, l.items[c]...)
}

// Owner returns the container holding item and the item's index within it.
func (l *Lists) Owner(item ItemID) (ContainerID, int, bool) {
	c, ok := l.owner[item]
	if !ok {
		return 0, -1, false
	}
	for i, it := range l.items[c] {
		if it == item {
			return c, i, true
		}
	}
	return 0, -1, false
}

// Move detaches item from its container and inserts it into to at index.
// index is expressed in the coordinates of the destination list with the
// item already removed; it is clamped to [0, len].
func (l *Lists) Move(item ItemID, to ContainerID, index int) error {
	dst, ok := l.items[to]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownContainer, to)
	}
	from, at, ok := l.Owner(item)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownItem, item)
	}

	src := l.items[from]
	rest := make([]ItemID, 0, len(src)-1)
	rest = append(rest, src[:at]...)
	rest = append(rest, src[at+1:]...)
	l.items[from] = rest
	if from == to {
		dst = rest
	}

	if index < 0 {
		index = 0
	}
	if index > len(dst) {
		index = len(dst)
	}
	out := make([]ItemID, 0, len(dst)+1)
	out = append(out, dst[:index]...)
	out = append(out, item)
	out = append(out, dst[index:]...)
	l.items[to] = out
	l.owner[item] = to
	return nil
}

func (l *Lists) Clone() *Lists {
	out := NewLists()
	for _, c := range l.containers {
		_ = out.Add(c, l.items[c]...)
	}
	return out
}

// Equal reports whether both boards hold the same containers in the same
// order with the same item orders.
func (l *Lists) Equal(o *Lists) bool {
	if len(l.containers) != len(o.containers) {
		return false
	}
	for i, c := range l.containers {
		if o.containers[i] != c {
			return false
		}
		a, b := l.items[c], o.items[c]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}
