package world

import (
	"fmt"
	"sort"

	"candysurvival.ai/internal/protocol"
	"candysurvival.ai/internal/sim/world/feature/director/events"
)

// buildObs renders the state after a tick. Lists are ordered so two equal
// worlds serialize to equal bytes.
func (w *World) buildObs(results []protocol.ActionResult) protocol.ObsMsg {
	obs := protocol.ObsMsg{
		Type:            protocol.TypeObs,
		ProtocolVersion: protocol.Version,
		Tick:            w.tick.Load(),
		SessionID:       w.cfg.SessionID,
		Clock: protocol.ClockObs{
			Day:      w.clock.Day,
			Minutes:  w.clock.Minutes,
			IsNight:  w.isNight,
			Light:    w.light,
			WorldExp: w.econ.Progress.WorldExp,
		},
		Player: protocol.PlayerObs{
			Pos:    [2]float64{w.player.Pos.X, w.player.Pos.Y},
			InSafe: w.arena.InSafe(w.player.Pos),
		},
		Holder: protocol.HolderObs{Value: w.econ.Holder.Value, Threshold: w.econ.Holder.Threshold},
		Radio:  protocol.RadioObs{Batteries: w.radio.Batteries, LongHint: w.events.LongHint()},
		Cues:   append([]string(nil), w.cues...),
	}
	b := w.border.Bounds()
	obs.Border = [4]float64{b.X, b.Y, b.W, b.H}

	obs.Inventory = []protocol.ItemStack{}
	for _, s := range w.inv.Slots() {
		obs.Inventory = append(obs.Inventory, protocol.ItemStack{Item: s.Item, Count: s.Count})
	}
	obs.Stockpile = []protocol.ItemStack{}
	for _, e := range w.stock.Snapshot() {
		obs.Stockpile = append(obs.Stockpile, protocol.ItemStack{Item: e.Kind, Count: e.Count})
	}
	obs.Machines = []protocol.MachineObs{}
	for _, m := range w.econ.Machines {
		mo := protocol.MachineObs{ID: m.ID, Kind: m.Kind, Level: m.Level, UpgradedToday: m.UpgradedToday, Neutral: m.Neutral}
		if c, ok := m.NextUpgradeCost(); ok && !m.Neutral {
			mo.NextCost = c
		}
		obs.Machines = append(obs.Machines, mo)
	}

	obs.Items = []protocol.EntityObs{}
	for _, it := range w.spawner.Items() {
		obs.Items = append(obs.Items, protocol.EntityObs{
			ID:   fmt.Sprintf("item-%d", it.ID),
			Type: "item",
			Pos:  [2]float64{it.Pos.X, it.Pos.Y},
			Item: it.Kind,
		})
	}
	obs.Ghosts = []protocol.EntityObs{}
	for _, g := range w.ghosts.List {
		obs.Ghosts = append(obs.Ghosts, protocol.EntityObs{
			ID:   fmt.Sprintf("ghost-%d", g.ID),
			Type: "ghost",
			Pos:  [2]float64{g.Pos.X, g.Pos.Y},
			Mode: g.Mode.String(),
		})
	}
	obs.NPCs = []protocol.EntityObs{}
	for _, n := range w.npcs {
		obs.NPCs = append(obs.NPCs, protocol.EntityObs{ID: npcID(n.ID), Type: "npc", Pos: [2]float64{n.Pos.X, n.Pos.Y}})
	}
	if h := w.hunter; h != nil {
		obs.Hunter = &protocol.EntityObs{ID: "hunter", Type: "hunter", Pos: [2]float64{h.Pos.X, h.Pos.Y}, Mode: h.State.String()}
	}

	if ph := w.events.Phase(); ph != events.Inactive {
		eo := &protocol.EventObs{Phase: ph.String()}
		if ph == events.Hinted {
			if def, ok := w.events.Current(); ok {
				eo.Label = def.Label()
			}
		}
		if w.tun.Radio.EventCountdownDisplay {
			if s, ok := w.events.SecondsUntil(w.nowMs); ok {
				eo.SecondsUntil = float64(s)
			}
		}
		obs.Event = eo
	}

	obs.Messages = []protocol.MessageObs{}
	for _, m := range w.messages {
		obs.Messages = append(obs.Messages, protocol.MessageObs{Text: m.Text, Color: m.Color, DurationMs: m.DurationMs})
	}
	ids := make([]string, 0, len(w.chats))
	for id := range w.chats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		c := w.chats[id]
		obs.Bubbles = append(obs.Bubbles, protocol.BubbleObs{EntityID: id, Text: c.Text, Color: c.Color})
	}

	if o := w.outcome; o != nil {
		res := "LOSE"
		if o.Win {
			res = "WIN"
		}
		obs.Outcome = &protocol.OutcomeObs{Result: res, Code: o.Code, Reason: o.Reason}
	}
	obs.Results = results
	return obs
}
