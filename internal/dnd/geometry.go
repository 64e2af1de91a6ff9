package dnd

// Point is a pointer position in screen cells (column, row).
type Point struct {
	X int
	Y int
}

func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Rect is a bounding rectangle in screen cells. Edges are inclusive on both
// sides: a rect at X=0 with W=4 covers columns 0..3.
type Rect struct {
	X int
	Y int
	W int
	H int
}

func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

func (r Rect) Right() int { return r.X + r.W - 1 }

func (r Rect) Bottom() int { return r.Y + r.H - 1 }

// Contains reports whether p lies within r, edges included.
func (r Rect) Contains(p Point) bool {
	if r.Empty() {
		return false
	}
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// above reports whether y is above the vertical midpoint of r. Computed in
// doubled coordinates so odd heights don't round.
func (r Rect) above(y int) bool {
	return 2*y < 2*r.Y+r.H
}
