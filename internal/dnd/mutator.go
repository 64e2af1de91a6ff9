package dnd

import "errors"

// Drop is the outcome of a finished item drag.
type Drop struct {
	Item      ItemID
	From      ContainerID
	FromIndex int
	To        ContainerID
	Index     int
	// Moved is false when the item ended where it started or no target was
	// ever resolved.
	Moved bool
}

// Preview is what the host draws while a drag is in progress.
type Preview struct {
	Item ItemID
	// Ghost is set when a visual proxy follows the pointer; GhostAt is its
	// top-left corner.
	Ghost   bool
	GhostAt Point
	// Slot is the last resolved target, if HasSlot.
	Slot    Target
	HasSlot bool
}

// Mutator applies a drag to the lists. Implementations differ in when the
// real order changes, but at Drop the item must sit at the last resolved
// target, moved by a single detach+insert.
type Mutator interface {
	Start(s Session, lists *Lists)
	Follow(p Point)
	Retarget(t Target)
	Drop() (Drop, error)
	Cancel()
	Preview() (Preview, bool)
}

var errNoDrag = errors.New("no drag in progress")

// GhostMutator keeps the real item in place and moves a ghost with the
// pointer. Lists change only in Drop.
type GhostMutator struct {
	lists   *Lists
	session Session
	active  bool

	ghostAt   Point
	target    Target
	hasTarget bool
}

func NewGhostMutator() *GhostMutator { return &GhostMutator{} }

func (g *GhostMutator) Start(s Session, lists *Lists) {
	g.lists = lists
	g.session = s
	g.active = true
	g.ghostAt = s.Start.Sub(s.Offset)
	g.target = Target{}
	g.hasTarget = false
}

func (g *GhostMutator) Follow(p Point) {
	if !g.active {
		return
	}
	g.ghostAt = p.Sub(g.session.Offset)
}

func (g *GhostMutator) Retarget(t Target) {
	if !g.active {
		return
	}
	g.target = t
	g.hasTarget = true
}

func (g *GhostMutator) Drop() (Drop, error) {
	if !g.active {
		return Drop{}, errNoDrag
	}
	defer g.reset()

	from, at, ok := g.lists.Owner(g.session.Item)
	if !ok {
		return Drop{}, ErrUnknownItem
	}
	d := Drop{
		Item:      g.session.Item,
		From:      from,
		FromIndex: at,
		To:        from,
		Index:     at,
	}
	if !g.hasTarget {
		return d, nil
	}
	if err := g.lists.Move(d.Item, g.target.Container, g.target.Index); err != nil {
		return d, err
	}
	d.To, d.Index, _ = g.lists.Owner(d.Item)
	d.Moved = d.To != d.From || d.Index != d.FromIndex
	return d, nil
}

func (g *GhostMutator) Cancel() { g.reset() }

func (g *GhostMutator) Preview() (Preview, bool) {
	if !g.active {
		return Preview{}, false
	}
	return Preview{
		Item:    g.session.Item,
		Ghost:   true,
		GhostAt: g.ghostAt,
		Slot:    g.target,
		HasSlot: g.hasTarget,
	}, true
}

func (g *GhostMutator) reset() {
	g.active = false
	g.session = Session{}
	g.hasTarget = false
	g.target = Target{}
	g.lists = nil
}
