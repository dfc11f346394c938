// Package hazards moves the world's mobile entities: night ghosts, the day
// hunter and the wandering NPCs.
package hazards

import (
	"math"
	"math/rand"

	"candysurvival.ai/internal/sim/world/logic/geom"
)

// Body is the shared position and bounding box of every mobile entity.
type Body struct {
	Pos   geom.Vec2
	W, H  float64
	Speed float64
}

func (b Body) Bounds() geom.Rect { return geom.Centered(b.Pos, b.W, b.H) }

// Arena is the static geometry hazards move through.
type Arena struct {
	World    geom.Rect
	Movement geom.Rect
	Safe     geom.Rect
	Walls    []geom.Rect
	Tile     float64
}

// InSafe is edge-inclusive, unlike Rect.Contains.
func (a Arena) InSafe(p geom.Vec2) bool {
	s := a.Safe
	return p.X >= s.X && p.X <= s.Right() && p.Y >= s.Y && p.Y <= s.Bottom()
}

func (a Arena) inWorld(p geom.Vec2) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= a.World.W && p.Y <= a.World.H
}

// keepOutside pushes p out of zone. Zones are tested edge-inclusive so a body
// sitting exactly on the edge is still moved off it.
func keepOutside(p geom.Vec2, zone geom.Rect, padding float64) (geom.Vec2, bool) {
	return geom.ProjectOutside(p, geom.Rect{X: zone.X, Y: zone.Y, W: zone.W + 1e-9, H: zone.H + 1e-9}, padding)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

func polar(rng *rand.Rand, lo, hi float64) geom.Vec2 {
	angle := rng.Float64() * 2 * math.Pi
	r := uniform(rng, lo, hi)
	return geom.V(math.Cos(angle)*r, math.Sin(angle)*r)
}

// Blocked reports whether an entity may not be placed at p.
type Blocked func(p geom.Vec2) bool
