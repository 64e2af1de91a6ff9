package dnd

import "testing"

// column builds a container at x with 3-row cards stacked from row 1.
func column(id ContainerID, x int, items ...ItemID) ContainerLayout {
	c := ContainerLayout{ID: id, Bounds: Rect{X: x, Y: 0, W: 10, H: 20}}
	for i, it := range items {
		c.Children = append(c.Children, ChildLayout{
			Item:   it,
			Bounds: Rect{X: x, Y: 1 + i*3, W: 10, H: 3},
		})
	}
	return c
}

func TestResolve_InsertBeforeFirstChildBelowMidpoint(t *testing.T) {
	l := Layout{Containers: []ContainerLayout{column(1, 0, 10, 20, 30)}}

	cases := []struct {
		name string
		p    Point
		want int
	}{
		{"above everything", Point{X: 2, Y: 0}, 0},
		{"top half of first", Point{X: 2, Y: 1}, 0},
		{"bottom half of first", Point{X: 2, Y: 3}, 1},
		{"top half of last", Point{X: 2, Y: 7}, 2},
		{"below everything", Point{X: 2, Y: 15}, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Resolve(l, tc.p, 0)
			if !ok {
				t.Fatalf("expected a target")
			}
			if got.Container != 1 || got.Index != tc.want {
				t.Fatalf("got %+v, want container 1 index %d", got, tc.want)
			}
		})
	}
}

func TestResolve_SkipsDraggedItem(t *testing.T) {
	l := Layout{Containers: []ContainerLayout{column(1, 0, 1, 2, 3)}}

	got, ok := Resolve(l, Point{X: 2, Y: 18}, 2)
	if !ok {
		t.Fatalf("expected a target")
	}
	if got.Index != 2 {
		t.Fatalf("expected index 2 after removing the dragged item, got %d", got.Index)
	}
}

func TestResolve_NoContainer(t *testing.T) {
	l := Layout{Containers: []ContainerLayout{column(1, 0, 1), column(2, 12, 5)}}
	if _, ok := Resolve(l, Point{X: 11, Y: 3}, 0); ok {
		t.Fatalf("expected no target in the gap between columns")
	}
	if _, ok := Resolve(l, Point{X: 50, Y: 3}, 0); ok {
		t.Fatalf("expected no target outside the board")
	}
}

func TestResolve_EdgesInclusive(t *testing.T) {
	l := Layout{Containers: []ContainerLayout{column(1, 0)}}
	for _, p := range []Point{{X: 0, Y: 0}, {X: 9, Y: 19}} {
		if _, ok := Resolve(l, p, 0); !ok {
			t.Fatalf("expected %+v to be inside", p)
		}
	}
	if _, ok := Resolve(l, Point{X: 10, Y: 0}, 0); ok {
		t.Fatalf("expected column 10 to be outside a 10-wide rect at 0")
	}
}

func TestResolve_OverlapFirstInZOrderWins(t *testing.T) {
	a := column(1, 0, 1)
	b := column(2, 5, 2)
	got, ok := Resolve(Layout{Containers: []ContainerLayout{a, b}}, Point{X: 7, Y: 2}, 0)
	if !ok || got.Container != 1 {
		t.Fatalf("expected container 1 to win the overlap, got %+v ok=%v", got, ok)
	}
	got, ok = Resolve(Layout{Containers: []ContainerLayout{b, a}}, Point{X: 7, Y: 2}, 0)
	if !ok || got.Container != 2 {
		t.Fatalf("expected container 2 to win when listed first, got %+v ok=%v", got, ok)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	l := Layout{Containers: []ContainerLayout{column(1, 0, 1, 2), column(2, 12, 5)}}
	p := Point{X: 13, Y: 2}
	first, ok1 := Resolve(l, p, 1)
	second, ok2 := Resolve(l, p, 1)
	if ok1 != ok2 || first != second {
		t.Fatalf("expected identical results, got %+v/%v and %+v/%v", first, ok1, second, ok2)
	}
}
