package hazards

import (
	"math"
	"math/rand"

	"candysurvival.ai/internal/sim/world/logic/geom"
)

type WandererConfig struct {
	Speed      float64
	Size       float64
	IntervalMs int64
	Radius     float64
}

// Wanderer is a harmless NPC that strolls between random nearby points.
type Wanderer struct {
	ID uint64
	Body
	Line string

	target       geom.Vec2
	hasTarget    bool
	nextWanderMs int64
}

func NewWanderer(id uint64, pos geom.Vec2, cfg WandererConfig) *Wanderer {
	return &Wanderer{ID: id, Body: Body{Pos: pos, W: cfg.Size, H: cfg.Size, Speed: cfg.Speed}}
}

func (n *Wanderer) Target() (geom.Vec2, bool) { return n.target, n.hasTarget }

func (n *Wanderer) retarget(nowMs int64, cfg WandererConfig, a Arena, rng *rand.Rand) {
	for i := 0; i < 6; i++ {
		angle := rng.Float64() * 2 * math.Pi
		d := uniform(rng, 30, math.Max(40, cfg.Radius))
		p := geom.ClampPoint(n.Pos.Add(geom.V(math.Cos(angle)*d, math.Sin(angle)*d)), a.Movement)
		if hitsWall(geom.Centered(p, a.Tile, a.Tile), a.Walls) {
			continue
		}
		n.target = p
		n.hasTarget = true
		n.nextWanderMs = nowMs + cfg.IntervalMs
		return
	}
}

func (n *Wanderer) Update(dt float64, nowMs int64, cfg WandererConfig, a Arena, rng *rand.Rand) {
	if !n.hasTarget || nowMs >= n.nextWanderMs {
		n.hasTarget = false
		n.retarget(nowMs, cfg, a, rng)
	}
	if n.hasTarget {
		d := n.target.Sub(n.Pos)
		if d.Len() <= 3 {
			n.hasTarget = false
		} else {
			n.Pos = geom.MoveAxisSeparated(n.Pos, d.Normalized().Scale(n.Speed*dt), n.W, n.H, a.Walls)
			n.Pos = geom.ClampPoint(n.Pos, a.Movement)
		}
	}
	if np, moved := keepOutside(n.Pos, a.Safe, 8); moved {
		n.Pos = np
	}
	n.Pos = geom.ClampPoint(n.Pos, a.Movement)
}

func hitsWall(r geom.Rect, walls []geom.Rect) bool {
	for _, w := range walls {
		if r.Overlaps(w) {
			return true
		}
	}
	return false
}
