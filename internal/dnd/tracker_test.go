package dnd

import "testing"

func handleHit(item ItemID, c ContainerID) Hit {
	return Hit{Kind: HitHandle, Item: item, Container: c, Bounds: Rect{X: 0, Y: 2, W: 10, H: 3}}
}

func TestTracker_EndReportsOnce(t *testing.T) {
	var tr Tracker
	if _, ok := tr.Begin(PointerEvent{PointerID: 3, Button: ButtonPrimary, Pos: Point{X: 4, Y: 2}}, handleHit(7, 1)); !ok {
		t.Fatalf("begin refused")
	}
	s, ok := tr.End(3, false)
	if !ok || s.Item != 7 || s.Cancelled {
		t.Fatalf("unexpected end: %+v ok=%v", s, ok)
	}
	if _, ok := tr.End(3, false); ok {
		t.Fatalf("second end must report false")
	}
	if _, ok := tr.Active(); ok {
		t.Fatalf("session still active after end")
	}
}

func TestTracker_IgnoresOtherPointers(t *testing.T) {
	var tr Tracker
	tr.Begin(PointerEvent{PointerID: 1, Button: ButtonPrimary, Pos: Point{X: 4, Y: 2}}, handleHit(7, 1))

	if _, ok := tr.Track(PointerEvent{PointerID: 2, Pos: Point{X: 9, Y: 9}}); ok {
		t.Fatalf("move from another pointer was tracked")
	}
	if _, ok := tr.End(2, false); ok {
		t.Fatalf("another pointer ended the session")
	}
	if _, ok := tr.Begin(PointerEvent{PointerID: 2, Button: ButtonPrimary}, handleHit(8, 1)); ok {
		t.Fatalf("a second session started while one is captured")
	}

	m, ok := tr.Track(PointerEvent{PointerID: 1, Pos: Point{X: 6, Y: 5}})
	if !ok || m.Delta != (Point{X: 2, Y: 3}) {
		t.Fatalf("unexpected motion %+v ok=%v", m, ok)
	}
	s, _ := tr.Active()
	if s.Offset != (Point{X: 4, Y: 0}) || s.Last != (Point{X: 6, Y: 5}) {
		t.Fatalf("unexpected session %+v", s)
	}
}

func TestTracker_LostCaptureCancels(t *testing.T) {
	var tr Tracker
	tr.Begin(PointerEvent{PointerID: 1, Button: ButtonPrimary}, handleHit(7, 1))

	if _, ok := tr.LostCapture(2); ok {
		t.Fatalf("lost capture for a pointer that holds nothing")
	}
	s, ok := tr.LostCapture(1)
	if !ok || !s.Cancelled {
		t.Fatalf("expected a cancelled session, got %+v ok=%v", s, ok)
	}
	if _, ok := tr.Track(PointerEvent{PointerID: 1, Pos: Point{X: 1, Y: 1}}); ok {
		t.Fatalf("moves after lost capture must be ignored")
	}
}
