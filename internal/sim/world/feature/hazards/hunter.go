package hazards

import (
	"math"
	"math/rand"

	"candysurvival.ai/internal/sim/world/logic/geom"
)

type HunterState int

const (
	Patrol HunterState = iota
	Engaged
)

func (s HunterState) String() string {
	if s == Engaged {
		return "ENGAGED"
	}
	return "PATROL"
}

type HunterConfig struct {
	Speed float64
	Size  float64
}

// Hunter patrols the quadrant up-left of the safe zone by day and chases the
// player while they stand inside its trigger region.
type Hunter struct {
	Body
	Home    geom.Vec2
	Trigger geom.Rect
	State   HunterState

	target    geom.Vec2
	hasTarget bool
}

// PlaceHunter builds a hunter at home, falling back to fallback when home is
// blocked, and always outside the safe zone.
func PlaceHunter(cfg HunterConfig, home, fallback geom.Vec2, a Arena, blocked Blocked) *Hunter {
	if blocked != nil && blocked(home) && !blocked(fallback) {
		home = fallback
	}
	if a.InSafe(home) {
		home, _ = keepOutside(home, a.Safe, 4)
	}
	c := a.Safe.Center()
	return &Hunter{
		Body: Body{Pos: home, W: cfg.Size, H: cfg.Size, Speed: cfg.Speed},
		Home: home,
		Trigger: geom.Rect{
			W: math.Max(a.Tile, c.X-a.Tile),
			H: math.Max(a.Tile, c.Y-a.Tile),
		},
	}
}

func (h *Hunter) PatrolTarget() (geom.Vec2, bool) { return h.target, h.hasTarget }

func (h *Hunter) pickPatrolTarget(a Arena, blocked Blocked, rng *rand.Rand) geom.Vec2 {
	c := a.Safe.Center()
	for i := 0; i < 20; i++ {
		angle := uniform(rng, -math.Pi*0.85, -math.Pi*0.15)
		r := uniform(rng, 40, math.Max(80, a.Tile*5))
		p := geom.ClampPoint(h.Home.Add(geom.V(math.Cos(angle)*r, math.Sin(angle)*r)), a.Movement)
		if p.X > c.X-a.Tile || p.Y > c.Y-a.Tile {
			continue
		}
		if a.InSafe(p) {
			continue
		}
		if blocked == nil || !blocked(p) {
			return p
		}
	}
	return h.Home
}

// Update advances the hunter and reports whether it caught the player.
func (h *Hunter) Update(dt float64, a Arena, player Body, blocked Blocked, rng *rand.Rand) bool {
	pp := player.Pos
	inTrigger := h.Trigger.W > 0 && h.Trigger.H > 0 && h.Trigger.Contains(pp)
	if inTrigger && !a.InSafe(pp) {
		h.State = Engaged
		h.hasTarget = false
	} else {
		h.State = Patrol
	}

	var target geom.Vec2
	if h.State == Engaged {
		target = pp
	} else {
		if !h.hasTarget || h.Pos.Dist(h.target) <= a.Tile {
			h.target = h.pickPatrolTarget(a, blocked, rng)
			h.hasTarget = true
		}
		target = h.target
	}

	if d := target.Sub(h.Pos); d.Len() > 0 {
		h.Pos = geom.MoveAxisSeparated(h.Pos, d.Normalized().Scale(h.Speed*dt), h.W, h.H, a.Walls)
		h.Pos = geom.ClampPoint(h.Pos, a.Movement)
	}
	if np, moved := keepOutside(h.Pos, a.Safe, 8); moved {
		h.Pos = np
	}
	return h.State == Engaged && h.Bounds().Overlaps(player.Bounds())
}
