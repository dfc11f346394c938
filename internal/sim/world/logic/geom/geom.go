// Package geom holds the planar math shared by the simulation: points,
// axis-aligned rectangles, wall-aware movement and zone projection.
package geom

import "math"

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (a Vec2) Add(b Vec2) Vec2      { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2      { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(k float64) Vec2 { return Vec2{a.X * k, a.Y * k} }
func (a Vec2) Len() float64         { return math.Hypot(a.X, a.Y) }
func (a Vec2) Dist(b Vec2) float64  { return a.Sub(b).Len() }

// Normalized returns the unit vector of a, or the zero vector.
func (a Vec2) Normalized() Vec2 {
	l := a.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Centered builds a w×h rectangle centered on c.
func Centered(c Vec2, w, h float64) Rect {
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }
func (r Rect) Center() Vec2    { return Vec2{r.X + r.W/2, r.Y + r.H/2} }

// Contains reports whether p lies inside r (edges inclusive on the top-left).
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Overlaps reports whether r and o share a non-empty area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Inflate grows r by d on every side.
func (r Rect) Inflate(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPoint keeps p inside r.
func ClampPoint(p Vec2, r Rect) Vec2 {
	return Vec2{Clamp(p.X, r.X, r.Right()), Clamp(p.Y, r.Y, r.Bottom())}
}

// StepToward moves pos toward target by at most dist and reports arrival.
func StepToward(pos, target Vec2, dist, stopWithin float64) (Vec2, bool) {
	d := target.Sub(pos)
	l := d.Len()
	if l <= stopWithin {
		return pos, true
	}
	if dist >= l {
		return target, true
	}
	return pos.Add(d.Scale(dist / l)), false
}

// MoveAxisSeparated applies delta to a w×h body centered on pos, one axis at
// a time, cancelling the component of an axis that would overlap a wall.
func MoveAxisSeparated(pos, delta Vec2, w, h float64, walls []Rect) Vec2 {
	next := Vec2{pos.X + delta.X, pos.Y}
	if delta.X != 0 && hitsAny(Centered(next, w, h), walls) {
		next.X = pos.X
	}
	cand := Vec2{next.X, pos.Y + delta.Y}
	if delta.Y != 0 && hitsAny(Centered(cand, w, h), walls) {
		cand.Y = pos.Y
	}
	return cand
}

func hitsAny(r Rect, walls []Rect) bool {
	for _, w := range walls {
		if r.Overlaps(w) {
			return true
		}
	}
	return false
}

// ProjectOutside returns p unchanged when it is outside zone. Otherwise p is
// moved along the ray from the zone center through p to just past the zone
// edge. A point exactly at the center is pushed straight up.
func ProjectOutside(p Vec2, zone Rect, padding float64) (Vec2, bool) {
	if !zone.Contains(p) {
		return p, false
	}
	c := zone.Center()
	d := p.Sub(c)
	if d.Len() == 0 {
		d = Vec2{0, -1}
	}
	hw, hh := zone.W/2, zone.H/2
	t := math.Inf(1)
	if d.X != 0 {
		t = math.Min(t, hw/math.Abs(d.X))
	}
	if d.Y != 0 {
		t = math.Min(t, hh/math.Abs(d.Y))
	}
	edge := c.Add(d.Scale(t))
	return edge.Add(d.Normalized().Scale(padding)), true
}
