package hazards

import (
	"math"
	"math/rand"

	"candysurvival.ai/internal/sim/world/feature/border"
	"candysurvival.ai/internal/sim/world/logic/geom"
)

type GhostMode int

const (
	Wandering GhostMode = iota
	Chasing
)

func (m GhostMode) String() string {
	if m == Chasing {
		return "CHASING"
	}
	return "WANDERING"
}

type Ghost struct {
	ID uint64
	Body
	Mode GhostMode

	baseSpeed    float64
	target       geom.Vec2
	hasTarget    bool
	nextRetarget int64
}

// Target returns the current wander target, if any.
func (g *Ghost) Target() (geom.Vec2, bool) { return g.target, g.hasTarget }

type GhostConfig struct {
	Speed           float64
	Size            float64
	MaxCount        int
	SpawnIntervalMs int64
	SpawnMargin     float64

	WanderSpeed      float64
	WanderIntervalMs int64
	WanderRadius     float64
}

func (c GhostConfig) wanderInterval() (lo, hi int64) {
	lo = max(200, c.WanderIntervalMs/2)
	hi = max(lo+1, int64(float64(c.WanderIntervalMs)*1.5))
	return lo, hi
}

// Update moves the ghost one step. A non-nil chase pins the target to that
// point at full speed; otherwise the ghost drifts between random points.
func (g *Ghost) Update(dt float64, nowMs int64, chase *geom.Vec2, cfg GhostConfig, rng *rand.Rand) {
	if chase != nil {
		g.Mode = Chasing
		g.Speed = g.baseSpeed
		g.Pos, _ = geom.StepToward(g.Pos, *chase, g.Speed*dt, 0)
		g.hasTarget = false
		return
	}
	g.Mode = Wandering
	if g.hasTarget && g.Pos.Dist(g.target) <= 4 {
		g.hasTarget = false
	}
	if !g.hasTarget || nowMs >= g.nextRetarget {
		g.target = g.Pos.Add(polar(rng, math.Max(20, cfg.WanderRadius*0.3), cfg.WanderRadius))
		g.hasTarget = true
		lo, hi := cfg.wanderInterval()
		g.nextRetarget = nowMs + lo + rng.Int63n(hi-lo+1)
	}
	g.Speed = cfg.WanderSpeed
	g.Pos, _ = geom.StepToward(g.Pos, g.target, g.Speed*dt, 0)
}

// Ghosts is the night swarm plus its spawn timer.
type Ghosts struct {
	cfg         GhostConfig
	List        []*Ghost
	nextSpawnMs int64
	nextID      uint64
}

func NewGhosts(cfg GhostConfig) *Ghosts { return &Ghosts{cfg: cfg} }

func (gs *Ghosts) Config() GhostConfig { return gs.cfg }

func (gs *Ghosts) Clear() { gs.List = gs.List[:0] }

// Arm schedules the first spawn of the night.
func (gs *Ghosts) Arm(nowMs int64) { gs.nextSpawnMs = nowMs + gs.cfg.SpawnIntervalMs }

func (gs *Ghosts) NextSpawnMs() int64 { return gs.nextSpawnMs }

// SpawnAround places a ghost on a random side of bounds, margin px outside it.
func (gs *Ghosts) SpawnAround(bounds geom.Rect, rng *rand.Rand) *Ghost {
	extra := gs.cfg.SpawnMargin
	l, t, r, b := bounds.Left()-extra, bounds.Top()-extra, bounds.Right()+extra, bounds.Bottom()+extra
	var p geom.Vec2
	switch rng.Intn(4) {
	case 0:
		p = geom.V(uniform(rng, l, r), t)
	case 1:
		p = geom.V(uniform(rng, l, r), b)
	case 2:
		p = geom.V(l, uniform(rng, t, b))
	default:
		p = geom.V(r, uniform(rng, t, b))
	}
	gs.nextID++
	g := &Ghost{
		ID:        gs.nextID,
		Body:      Body{Pos: p, W: gs.cfg.Size, H: gs.cfg.Size, Speed: gs.cfg.Speed},
		baseSpeed: gs.cfg.Speed,
	}
	gs.List = append(gs.List, g)
	return g
}

// Update runs one night tick: timed spawn, chase or wander, zone correction,
// collision and culling. It returns the ghost that touched the player.
func (gs *Ghosts) Update(dt float64, nowMs int64, a Arena, bd *border.Border, player Body, rng *rand.Rand) *Ghost {
	if len(gs.List) < gs.cfg.MaxCount && nowMs >= gs.nextSpawnMs {
		gs.SpawnAround(bd.Bounds(), rng)
		gs.nextSpawnMs = nowMs + gs.cfg.SpawnIntervalMs
	}

	exposed := !bd.Contains(player.Pos)
	zone := a.Safe
	if exposed {
		zone = bd.Bounds()
	}
	pr := player.Bounds()
	for _, g := range gs.List {
		var chase *geom.Vec2
		if exposed {
			p := player.Pos
			chase = &p
		}
		g.Update(dt, nowMs, chase, gs.cfg, rng)
		if np, moved := keepOutside(g.Pos, zone, 4); moved {
			g.Pos = np
			g.hasTarget = false
		}
		if g.Bounds().Overlaps(pr) {
			return g
		}
	}

	keep := gs.List[:0]
	for _, g := range gs.List {
		if a.inWorld(g.Pos) {
			keep = append(keep, g)
		}
	}
	gs.List = keep
	return nil
}
