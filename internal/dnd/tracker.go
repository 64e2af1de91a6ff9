package dnd

// Button is the pointer button reported with a press.
type Button int

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonMiddle
	ButtonSecondary
)

// PointerEvent is one pointer-down/move/up sample.
type PointerEvent struct {
	PointerID int
	Button    Button
	Pos       Point
}

// HitKind classifies what lies under the pointer at press time.
type HitKind int

const (
	// HitNone: outside the board.
	HitNone HitKind = iota
	// HitHandle: the drag handle of an item.
	HitHandle
	// HitItem: the body of an item, not the handle.
	HitItem
	// HitInteractive: a button, link, input or other excluded element.
	HitInteractive
	// HitBackground: empty board area between or below items.
	HitBackground
)

// Hit describes the element under a press.
type Hit struct {
	Kind      HitKind
	Item      ItemID
	Container ContainerID
	// Bounds of the item when Kind is HitHandle or HitItem.
	Bounds Rect
}

// SessionKind tells an item drag apart from a board scroll drag.
type SessionKind int

const (
	SessionItem SessionKind = iota
	SessionScroll
)

// Session is the ephemeral state of one in-progress pointer drag.
type Session struct {
	PointerID int
	Kind      SessionKind

	Item        ItemID
	Origin      ContainerID
	OriginIndex int
	// Offset is the grab point relative to the item's top-left corner.
	Offset Point

	Start Point
	Last  Point

	Cancelled bool
}

// Motion is what Track reports for a captured pointer move.
type Motion struct {
	Pos   Point
	Delta Point
	// SuppressSelection asks the host to swallow the event instead of
	// starting a text selection.
	SuppressSelection bool
}

// Tracker turns raw pointer events into at most one drag session.
//
// Begin captures the pointer; only events for the captured pointer id are
// tracked until End releases it.
type Tracker struct {
	active   bool
	captured int
	session  Session

	// Scroll enables background drags (SessionScroll).
	Scroll bool
}

// Begin starts a session for a primary-button press on a drag handle, or on
// empty background when Scroll is set. It returns false when the press is
// ignored.
func (t *Tracker) Begin(ev PointerEvent, hit Hit) (Session, bool) {
	if t.active || ev.Button != ButtonPrimary {
		return Session{}, false
	}

	s := Session{
		PointerID: ev.PointerID,
		Start:     ev.Pos,
		Last:      ev.Pos,
	}
	switch hit.Kind {
	case HitHandle:
		s.Kind = SessionItem
		s.Item = hit.Item
		s.Origin = hit.Container
		s.Offset = ev.Pos.Sub(Point{X: hit.Bounds.X, Y: hit.Bounds.Y})
	case HitBackground:
		if !t.Scroll {
			return Session{}, false
		}
		s.Kind = SessionScroll
	default:
		return Session{}, false
	}

	t.active = true
	t.captured = ev.PointerID
	t.session = s
	return s, true
}

// Active reports the current session, if any.
func (t *Tracker) Active() (Session, bool) {
	return t.session, t.active
}

// Track records a move. It is a no-op without an active session or when the
// event belongs to another pointer.
func (t *Tracker) Track(ev PointerEvent) (Motion, bool) {
	if !t.active || ev.PointerID != t.captured {
		return Motion{}, false
	}
	m := Motion{
		Pos:               ev.Pos,
		Delta:             ev.Pos.Sub(t.session.Last),
		SuppressSelection: true,
	}
	t.session.Last = ev.Pos
	return m, true
}

// End releases capture and returns the finished session. It reports true
// exactly once per session.
func (t *Tracker) End(pointerID int, cancelled bool) (Session, bool) {
	if !t.active || pointerID != t.captured {
		return Session{}, false
	}
	s := t.session
	s.Cancelled = cancelled
	t.active = false
	t.captured = 0
	t.session = Session{}
	return s, true
}

// LostCapture cancels the session held by pointerID.
func (t *Tracker) LostCapture(pointerID int) (Session, bool) {
	return t.End(pointerID, true)
}

// setOriginIndex records where the item sat when the drag started.
func (t *Tracker) setOriginIndex(i int) {
	if t.active {
		t.session.OriginIndex = i
	}
}
