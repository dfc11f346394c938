package world

import (
	"sort"

	"candysurvival.ai/internal/sim/world/io/digestcodec"
)

// stateDigest hashes everything that influences future ticks. Replays
// compare it tick by tick.
func (w *World) stateDigest() string {
	d := digestcodec.New()
	d.U64(w.tick.Load())
	d.I64(w.nowMs)
	d.Int(w.clock.Day)
	d.F64(w.clock.Minutes)
	d.Bool(w.isNight)
	d.F64(w.light)

	b := w.border.Bounds()
	d.F64(b.X)
	d.F64(b.Y)
	d.F64(b.W)
	d.F64(b.H)

	d.F64(w.player.Pos.X)
	d.F64(w.player.Pos.Y)
	for _, s := range w.inv.Slots() {
		d.Str(s.Item)
		d.Int(s.Count)
	}
	stock := map[string]int{}
	for _, e := range w.stock.Snapshot() {
		stock[e.Kind] = e.Count
	}
	d.IntMap(stock)

	for _, m := range w.econ.Machines {
		d.Str(m.ID)
		d.Int(m.Level)
		d.Bool(m.UpgradedToday)
	}
	d.Int(w.econ.Holder.Value)
	d.Int(w.econ.Progress.WorldExp)

	items := w.spawner.Items()
	d.U64(uint64(len(items)))
	for _, it := range items {
		d.U64(it.ID)
		d.Str(it.Kind)
		d.F64(it.Pos.X)
		d.F64(it.Pos.Y)
		d.Int(it.Yield)
	}
	d.U64(uint64(len(w.ghosts.List)))
	for _, g := range w.ghosts.List {
		d.U64(g.ID)
		d.F64(g.Pos.X)
		d.F64(g.Pos.Y)
		d.Int(int(g.Mode))
	}
	d.U64(uint64(len(w.npcs)))
	for _, n := range w.npcs {
		d.U64(n.ID)
		d.F64(n.Pos.X)
		d.F64(n.Pos.Y)
	}
	d.Bool(w.hunter != nil)
	if h := w.hunter; h != nil {
		d.F64(h.Pos.X)
		d.F64(h.Pos.Y)
		d.Int(int(h.State))
	}
	for _, g := range w.givers {
		d.I64(g.CooldownUntilMs)
		d.Bool(g.UsedToday)
	}
	d.Int(w.radio.Batteries)

	d.Int(int(w.events.Phase()))
	d.Bool(w.events.LongHint())
	if def, ok := w.events.Current(); ok {
		d.Str(def.Name)
	}
	if ms, ok := w.events.DeadlineMs(); ok {
		d.I64(ms)
	}

	ids := make([]string, 0, len(w.chats))
	for id := range w.chats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		d.Str(id)
		d.Str(w.chats[id].Text)
		d.I64(w.chats[id].UntilMs)
	}
	d.Bool(w.outcome != nil)
	return d.Hex()
}
