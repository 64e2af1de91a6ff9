package dnd

// Phase is the controller's position in Idle → Dragging → (Resolving)* →
// Dropped → Idle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseResolving
	PhaseDropped
)

func (p Phase) String() string {
	switch p {
	case PhaseDragging:
		return "dragging"
	case PhaseResolving:
		return "resolving"
	case PhaseDropped:
		return "dropped"
	default:
		return "idle"
	}
}

// Gate suspends new item drags while it reports busy.
type Gate interface {
	Busy() bool
}

// Outcome is what a released session produced.
type Outcome struct {
	Session Session
	Drop    Drop
	// Change is valid when HasChange is set.
	Change    Change
	HasChange bool
	// Snapshot is the board before the drag started. Pass it to Restore to
	// roll back a change the server rejected.
	Snapshot *Lists
}

// Controller routes pointer events through the tracker, resolver and mutator
// and turns a completed drag into a Change.
type Controller struct {
	lists   *Lists
	tracker Tracker
	mutator Mutator
	gate    Gate

	phase    Phase
	snapshot *Lists

	// OnPhase, when set, observes every phase transition.
	OnPhase func(Phase)
}

func NewController(lists *Lists, m Mutator, gate Gate) *Controller {
	if lists == nil {
		lists = NewLists()
	}
	if m == nil {
		m = NewGhostMutator()
	}
	return &Controller{lists: lists, mutator: m, gate: gate}
}

func (c *Controller) Lists() *Lists { return c.lists }

func (c *Controller) Phase() Phase { return c.phase }

// EnableScroll lets presses on empty background start scroll sessions.
func (c *Controller) EnableScroll(on bool) { c.tracker.Scroll = on }

func (c *Controller) Session() (Session, bool) { return c.tracker.Active() }

func (c *Controller) Preview() (Preview, bool) {
	if s, ok := c.tracker.Active(); !ok || s.Kind != SessionItem {
		return Preview{}, false
	}
	return c.mutator.Preview()
}

// Replace swaps in a freshly loaded board. It reports whether any order
// changed; an in-progress drag survives a reload that changes nothing and is
// cancelled otherwise.
func (c *Controller) Replace(lists *Lists) bool {
	if lists == nil {
		lists = NewLists()
	}
	if c.lists != nil && c.lists.Equal(lists) {
		return false
	}
	if s, ok := c.tracker.Active(); ok {
		c.Cancel(s.PointerID)
	}
	c.lists = lists
	return true
}

// Restore rolls the board back to a snapshot taken at drag start.
func (c *Controller) Restore(snapshot *Lists) {
	if snapshot == nil {
		return
	}
	c.Replace(snapshot.Clone())
}

// Press starts a session. Item drags are refused while the gate is busy or
// when the pressed item is not on the board.
func (c *Controller) Press(ev PointerEvent, hit Hit) (Session, bool) {
	if c.phase != PhaseIdle {
		return Session{}, false
	}
	var originIndex int
	if hit.Kind == HitHandle {
		if c.gate != nil && c.gate.Busy() {
			return Session{}, false
		}
		owner, idx, ok := c.lists.Owner(hit.Item)
		if !ok || owner != hit.Container {
			return Session{}, false
		}
		originIndex = idx
	}

	s, ok := c.tracker.Begin(ev, hit)
	if !ok {
		return Session{}, false
	}
	if s.Kind == SessionItem {
		c.tracker.setOriginIndex(originIndex)
		s.OriginIndex = originIndex
		c.snapshot = c.lists.Clone()
		c.mutator.Start(s, c.lists)
	}
	c.setPhase(PhaseDragging)
	return s, true
}

// Move feeds a pointer move. For item sessions the ghost follows and the
// target is re-resolved against layout; a point over no container keeps the
// last target.
func (c *Controller) Move(ev PointerEvent, layout Layout) (Motion, bool) {
	m, ok := c.tracker.Track(ev)
	if !ok {
		return Motion{}, false
	}
	s, _ := c.tracker.Active()
	if s.Kind == SessionItem {
		c.setPhase(PhaseResolving)
		c.mutator.Follow(m.Pos)
		if t, ok := Resolve(layout, m.Pos, s.Item); ok {
			c.mutator.Retarget(t)
		}
	}
	return m, true
}

// Release ends the session held by pointerID and reports what it produced.
func (c *Controller) Release(pointerID int) (Outcome, bool) {
	s, ok := c.tracker.End(pointerID, false)
	if !ok {
		return Outcome{}, false
	}
	c.setPhase(PhaseDropped)
	defer c.setPhase(PhaseIdle)

	out := Outcome{Session: s}
	if s.Kind != SessionItem {
		return out, true
	}

	snap := c.snapshot
	c.snapshot = nil
	d, err := c.mutator.Drop()
	if err != nil {
		// Board and session disagree; leave the board as it was.
		c.lists = snap
		return out, true
	}
	out.Drop = d
	out.Snapshot = snap
	out.Change, out.HasChange = ChangeFor(d, c.lists)
	return out, true
}

// Cancel abandons the session held by pointerID without touching the board.
func (c *Controller) Cancel(pointerID int) bool {
	s, ok := c.tracker.End(pointerID, true)
	return c.abandon(s, ok)
}

// LostCapture is Cancel for a pointer the host can no longer follow, such as
// a terminal losing focus mid-drag.
func (c *Controller) LostCapture(pointerID int) bool {
	s, ok := c.tracker.LostCapture(pointerID)
	return c.abandon(s, ok)
}

func (c *Controller) abandon(s Session, ok bool) bool {
	if !ok {
		return false
	}
	if s.Kind == SessionItem {
		c.mutator.Cancel()
	}
	c.snapshot = nil
	c.setPhase(PhaseIdle)
	return true
}

func (c *Controller) setPhase(p Phase) {
	if c.phase == p {
		return
	}
	c.phase = p
	if c.OnPhase != nil {
		c.OnPhase(p)
	}
}
