package world

import (
	"fmt"

	"candysurvival.ai/internal/sim/world/feature/hazards"
	"candysurvival.ai/internal/sim/world/logic/geom"
)

var (
	giverLines = []string{
		"Have some candy!",
		"Sharing sweetness!",
		"Grab your treats!",
		"Plenty of sugar for you!",
	}
	npcLines = []string{
		"Lovely weather today!",
		"Have you upgraded any machines?",
		"The safe zone feels cozy!",
		"I am a fan of Sour candy!",
	}
	chatterLines = []string{
		"Static tastes like sugar tonight.",
		"Remember to share the sweet signals!",
		"Candy machines humming, all is well.",
		"Tip of the day: keep your treats dry.",
	}
)

// buildStructures lays out the machines, radio, crafting table and trash can
// at fixed fractions of the safe zone.
func (w *World) buildStructures() {
	size := w.tun.World.PropSize
	w.machineProps = map[string]*Prop{}
	for _, d := range w.cats.Machines.Defs {
		w.machineProps[d.ID] = &Prop{ID: d.ID, Kind: "machine", Pos: w.field.SafeAnchor(d.Anchor[0], d.Anchor[1]), W: size, H: size}
	}
	w.radio = &Radio{Prop: Prop{ID: "radio", Kind: "radio", Pos: w.field.SafeAnchor(0.5, 0.1), W: size, H: size}}
	w.table = &Prop{ID: "table", Kind: "table", Pos: w.field.SafeAnchor(0.85, 0.5), W: size, H: size}
	w.trash = &Prop{ID: "trash", Kind: "trash", Pos: w.field.SafeAnchor(0.5, 0.9), W: size, H: size}
}

func (w *World) tileRect(p geom.Vec2) geom.Rect {
	return geom.Centered(p, w.field.TileSize, w.field.TileSize)
}

// blockedStatic reports whether a tile-sized footprint at p leaves the
// movement bounds or touches a wall, prop, giver or NPC.
func (w *World) blockedStatic(p geom.Vec2) bool {
	m := w.field.Movement
	if p.X < m.X || p.X > m.Right() || p.Y < m.Y || p.Y > m.Bottom() {
		return true
	}
	r := w.tileRect(p)
	if w.field.HitsWall(r) {
		return true
	}
	for _, d := range w.cats.Machines.Defs {
		if r.Overlaps(w.machineProps[d.ID].Bounds()) {
			return true
		}
	}
	for _, pr := range []*Prop{&w.radio.Prop, w.table, w.trash} {
		if r.Overlaps(pr.Bounds()) {
			return true
		}
	}
	for _, g := range w.givers {
		if r.Overlaps(g.Bounds()) {
			return true
		}
	}
	for _, n := range w.npcs {
		if r.Overlaps(n.Bounds()) {
			return true
		}
	}
	return false
}

// blocked adds live items to blockedStatic.
func (w *World) blocked(p geom.Vec2) bool {
	return w.blockedStatic(p) || len(w.spawner.Overlapping(w.tileRect(p))) > 0
}

func (w *World) spawnGivers() {
	count := w.tun.Givers.Count
	size := w.tun.World.PropSize
	for attempts := 0; len(w.givers) < count && attempts < max(30, count*6); attempts++ {
		ps := w.field.RandomPositions(1, true, w.rng)
		if len(ps) == 0 || w.blocked(ps[0]) {
			continue
		}
		id := fmt.Sprintf("giver-%d", len(w.givers)+1)
		w.givers = append(w.givers, &Giver{Prop: Prop{ID: id, Kind: "giver", Pos: ps[0], W: size, H: size}})
	}
}

func (w *World) wandererConfig() hazards.WandererConfig {
	n := w.tun.NPCs
	return hazards.WandererConfig{
		Speed:      n.MoveSpeed,
		Size:       n.Size,
		IntervalMs: secToMs(n.WanderIntervalSec),
		Radius:     n.WanderRadiusTiles * w.field.TileSize,
	}
}

func (w *World) spawnNPCs() {
	w.npcs = w.npcs[:0]
	count := w.tun.NPCs.MaxCount
	cfg := w.wandererConfig()
	for attempts := 0; len(w.npcs) < count && attempts < max(40, count*8); attempts++ {
		ps := w.field.RandomPositions(1, true, w.rng)
		if len(ps) == 0 || w.blocked(ps[0]) || w.field.InsideSafe(ps[0], 0) {
			continue
		}
		w.nextNPCID++
		w.npcs = append(w.npcs, hazards.NewWanderer(w.nextNPCID, ps[0], cfg))
	}
}

func (w *World) spawnHunter() {
	sc := w.cfg.Map.SafeCenter
	home := w.field.TileCenter(max(2, sc[0]-8), max(2, sc[1]-8))
	fallback := w.field.TileCenter(max(2, sc[0]-6), max(2, sc[1]-10))
	w.hunter = hazards.PlaceHunter(hazards.HunterConfig{
		Speed: w.tun.HunterSpeed(),
		Size:  w.tun.Hazards.DayHunterSize,
	}, home, fallback, w.arena, w.blocked)
}

// withinReach measures center to center, extended by half the target's
// larger side.
func (w *World) withinReach(pos geom.Vec2, tw, th, extra float64) bool {
	reach := w.tun.Player.InteractionRadiusTiles*w.field.TileSize + extra + max(tw, th)*0.5
	return w.player.Pos.Dist(pos) <= reach
}

func (w *World) scheduleChatter(initial bool) {
	lo := max(5, w.tun.Radio.ChatterIntervalMinSec)
	hi := max(lo, w.tun.Radio.ChatterIntervalMaxSec)
	if w.tun.Radio.ChatterIntervalMaxSec <= 0 {
		w.chatterOn = false
		return
	}
	minMs, maxMs := secToMs(lo), secToMs(hi)
	if initial {
		minMs = min(max(1, minMs/2), maxMs)
	}
	w.chatterOn = true
	w.nextChatter = w.nowMs + minMs + w.rng.Int63n(maxMs-minMs+1)
}

func (w *World) updateChatter() {
	if !w.chatterOn || w.nowMs < w.nextChatter {
		return
	}
	if b, ok := w.chats[w.radio.ID]; ok && b.UntilMs > w.nowMs {
		w.scheduleChatter(false)
		return
	}
	w.showChat(w.radio.ID, chatterLines[w.rng.Intn(len(chatterLines))], colorChatter)
	w.scheduleChatter(false)
}
