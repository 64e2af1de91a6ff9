package dnd

// ChildLayout is the on-screen placement of one item.
type ChildLayout struct {
	Item   ItemID
	Bounds Rect
}

// ContainerLayout is the on-screen placement of a container and its items,
// in display order.
type ContainerLayout struct {
	ID       ContainerID
	Bounds   Rect
	Children []ChildLayout
}

// Layout lists candidate containers in z-order. When rectangles overlap the
// first container that contains the point wins.
type Layout struct {
	Containers []ContainerLayout
}

// Target is a resolved drop position: insert before Index in Container, with
// the dragged item already removed from the container's order.
type Target struct {
	Container ContainerID
	Index     int
}

// Resolve finds the drop target under p. dragged is skipped when computing
// the insertion index. Resolve is a pure function of its inputs.
func Resolve(l Layout, p Point, dragged ItemID) (Target, bool) {
	for _, c := range l.Containers {
		if !c.Bounds.Contains(p) {
			continue
		}
		idx := 0
		for _, ch := range c.Children {
			if ch.Item == dragged {
				continue
			}
			if ch.Bounds.above(p.Y) {
				return Target{Container: c.ID, Index: idx}, true
			}
			idx++
		}
		return Target{Container: c.ID, Index: idx}, true
	}
	return Target{}, false
}
