package dnd

import (
	"errors"
	"reflect"
	"testing"
)

func mustLists(t *testing.T, containers map[ContainerID][]ItemID, order ...ContainerID) *Lists {
	t.Helper()
	l := NewLists()
	for _, c := range order {
		if err := l.Add(c, containers[c]...); err != nil {
			t.Fatalf("add %d: %v", c, err)
		}
	}
	return l
}

func TestLists_MoveWithinContainer(t *testing.T) {
	l := mustLists(t, map[ContainerID][]ItemID{1: {1, 2, 3}}, 1)
	if err := l.Move(2, 1, 2); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := l.Order(1); !reflect.DeepEqual(got, []ItemID{1, 3, 2}) {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestLists_MoveAcrossContainers(t *testing.T) {
	l := mustLists(t, map[ContainerID][]ItemID{1: {1, 2}, 2: {5}}, 1, 2)
	if err := l.Move(1, 2, 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := l.Order(1); !reflect.DeepEqual(got, []ItemID{2}) {
		t.Fatalf("sender order: %v", got)
	}
	if got := l.Order(2); !reflect.DeepEqual(got, []ItemID{1, 5}) {
		t.Fatalf("receiver order: %v", got)
	}
	if c, i, ok := l.Owner(1); !ok || c != 2 || i != 0 {
		t.Fatalf("owner after move: %d %d %v", c, i, ok)
	}
}

func TestLists_MoveClampsIndex(t *testing.T) {
	l := mustLists(t, map[ContainerID][]ItemID{1: {1, 2, 3}}, 1)
	if err := l.Move(1, 1, 99); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := l.Order(1); !reflect.DeepEqual(got, []ItemID{2, 3, 1}) {
		t.Fatalf("unexpected order: %v", got)
	}
	if err := l.Move(1, 1, -4); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := l.Order(1); !reflect.DeepEqual(got, []ItemID{1, 2, 3}) {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestLists_MoveRejectsUnknown(t *testing.T) {
	l := mustLists(t, map[ContainerID][]ItemID{1: {1}}, 1)
	if err := l.Move(1, 9, 0); !errors.Is(err, ErrUnknownContainer) {
		t.Fatalf("expected ErrUnknownContainer, got %v", err)
	}
	if err := l.Move(7, 1, 0); !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("expected ErrUnknownItem, got %v", err)
	}
	if got := l.Order(1); !reflect.DeepEqual(got, []ItemID{1}) {
		t.Fatalf("failed move changed the board: %v", got)
	}
}

func TestLists_AddRejectsDuplicates(t *testing.T) {
	l := NewLists()
	if err := l.Add(1, 1, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := l.Add(2, 2); !errors.Is(err, ErrDuplicateItem) {
		t.Fatalf("expected ErrDuplicateItem, got %v", err)
	}
}

func TestLists_NeverLosesOrDuplicates(t *testing.T) {
	l := mustLists(t, map[ContainerID][]ItemID{1: {1, 2, 3}, 2: {4, 5}, 3: {}}, 1, 2, 3)
	moves := []struct {
		item ItemID
		to   ContainerID
		idx  int
	}{
		{1, 2, 1}, {5, 3, 0}, {4, 1, 0}, {2, 2, 9}, {3, 3, 0}, {1, 1, 1},
	}
	for _, mv := range moves {
		if err := l.Move(mv.item, mv.to, mv.idx); err != nil {
			t.Fatalf("move %+v: %v", mv, err)
		}
		seen := map[ItemID]int{}
		for _, c := range l.Containers() {
			for _, it := range l.Order(c) {
				seen[it]++
			}
		}
		if len(seen) != 5 {
			t.Fatalf("expected 5 distinct items after %+v, got %v", mv, seen)
		}
		for it, n := range seen {
			if n != 1 {
				t.Fatalf("item %d appears %d times after %+v", it, n, mv)
			}
		}
	}
}

func TestLists_CloneIsIndependent(t *testing.T) {
	l := mustLists(t, map[ContainerID][]ItemID{1: {1, 2}}, 1)
	c := l.Clone()
	if err := l.Move(1, 1, 1); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := c.Order(1); !reflect.DeepEqual(got, []ItemID{1, 2}) {
		t.Fatalf("clone changed with original: %v", got)
	}
	if c.Equal(l) {
		t.Fatalf("expected clone to differ after move")
	}
}
