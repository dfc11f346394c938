package world

import (
	"fmt"
	"sort"
	"strings"

	"candysurvival.ai/internal/protocol"
	"candysurvival.ai/internal/sim/world/feature/resources"
)

const (
	ActionInteract      = "interact"
	ActionCraft         = "craft"
	ActionDiscard       = "discard"
	ActionInsertBattery = "insert_battery"
)

// applyActions runs the discrete parts of an ACT in a fixed order.
func (w *World) applyActions(act *protocol.ActMsg) []protocol.ActionResult {
	var out []protocol.ActionResult
	if act.InsertBattery {
		out = append(out, w.insertBattery())
	}
	if act.Craft != "" {
		out = append(out, w.craft(act.Craft))
	}
	if act.DiscardSlot != nil {
		out = append(out, w.discard(*act.DiscardSlot))
	}
	if act.Interact && w.outcome == nil {
		out = append(out, w.interact())
	}
	return out
}

func succeeded(action, text string) protocol.ActionResult {
	return protocol.ActionResult{Action: action, OK: true, Message: text}
}

func (w *World) near(p *Prop) bool { return w.withinReach(p.Pos, p.W, p.H, 0) }

func (w *World) interact() protocol.ActionResult {
	if w.near(&w.radio.Prop) {
		return w.insertBatteryAs(ActionInteract)
	}
	if w.near(w.table) {
		return w.describeRecipes()
	}
	if w.near(w.trash) {
		text := "Trash can: choose an inventory slot to discard."
		w.say(text, colorDim)
		return succeeded(ActionInteract, text)
	}
	for _, m := range w.econ.Machines {
		p := w.machineProps[m.ID]
		if !w.near(p) {
			continue
		}
		r := w.econ.TryUpgrade(m, w.stock)
		if !r.OK {
			return w.fail(ActionInteract, r.Code, r.Reason)
		}
		w.say(r.Reason, colorGood)
		w.cue(CueSuccess)
		w.showChat(m.ID, fmt.Sprintf("Lv %d", m.Level), colorLevel)
		w.checkVictory()
		return succeeded(ActionInteract, r.Reason)
	}
	for _, g := range w.givers {
		if w.near(&g.Prop) {
			return w.useGiver(g)
		}
	}
	for _, n := range w.npcs {
		if w.withinReach(n.Pos, n.W, n.H, 0) {
			line := npcLines[w.rng.Intn(len(npcLines))]
			id := npcID(n.ID)
			w.showChat(id, line, Color{255, 255, 255})
			w.say("NPC: "+line, Color{200, 200, 255})
			return succeeded(ActionInteract, line)
		}
	}
	return w.fail(ActionInteract, protocol.ErrOutOfRange, "Nothing to interact with.")
}

func npcID(id uint64) string { return fmt.Sprintf("npc-%d", id) }

func (w *World) useGiver(g *Giver) protocol.ActionResult {
	if !g.Ready(w.nowMs) {
		text := "Giver is resting."
		w.say(text, colorDim)
		return protocol.ActionResult{Action: ActionInteract, Code: protocol.ErrCooldown, Message: text}
	}
	kinds := w.cats.Candies.Kinds
	kind := kinds[w.rng.Intn(len(kinds))]
	lo := max(1, w.tun.Givers.RewardMin)
	hi := max(lo, w.tun.Givers.RewardMax)
	amount := lo + w.rng.Intn(hi-lo+1)
	total, bonus := w.econ.Collect(w.stock, kind, amount)
	g.CooldownUntilMs = w.nowMs + secToMs(w.tun.Givers.CooldownSec)
	g.UsedToday = true
	if d := w.tun.Economy.NeutralHolderGiverDelta; d != 0 {
		before := w.neutralLevel()
		if c := w.econ.AdjustHolder(d); c.Steps != 0 {
			w.reportHolder(before, c)
		}
	}
	text := fmt.Sprintf("Giver: +%d %s candy", total, w.cats.Candies.DisplayName(kind))
	if bonus > 0 {
		text += fmt.Sprintf(" (+%d bonus)", bonus)
	}
	w.say(text, colorChatter)
	w.showChat(g.ID, giverLines[w.rng.Intn(len(giverLines))], colorGiver)
	w.cue(CueSuccess)
	return succeeded(ActionInteract, text)
}

func (w *World) describeRecipes() protocol.ActionResult {
	var lines []string
	for _, name := range w.cats.Recipes.Names {
		r := w.cats.Recipes.ByName[name]
		kinds := make([]string, 0, len(r.Inputs))
		for k := range r.Inputs {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		parts := make([]string, 0, len(kinds))
		for _, k := range kinds {
			parts = append(parts, fmt.Sprintf("%s %d/%d", w.cats.Candies.DisplayName(k), w.stock.Amount(k), r.Inputs[k]))
		}
		lines = append(lines, fmt.Sprintf("%s: %s", name, strings.Join(parts, ", ")))
	}
	text := "Crafting table. " + strings.Join(lines, "; ")
	w.say(text, colorInfo)
	return succeeded(ActionInteract, text)
}

func (w *World) craft(name string) protocol.ActionResult {
	r, found := w.cats.Recipes.ByName[name]
	if !found {
		return w.fail(ActionCraft, protocol.ErrBadRequest, fmt.Sprintf("Unknown recipe %q.", name))
	}
	reach := w.tun.Player.CraftingCloseRadiusTiles * w.field.TileSize
	if w.player.Pos.Dist(w.table.Pos) > reach+max(w.table.W, w.table.H)*0.5 {
		return w.fail(ActionCraft, protocol.ErrOutOfRange, "Move closer to the crafting table.")
	}
	if !w.stock.CanAfford(r.Inputs) {
		return w.fail(ActionCraft, protocol.ErrUnaffordable, "Missing ingredients!")
	}
	if w.tun.CraftBlocksWhenFull() && !w.inv.CanAdd(name, 1) {
		return w.fail(ActionCraft, protocol.ErrCapacity, "Inventory full. Crafting failed!")
	}
	if !w.stock.ConsumeRecipe(r.Inputs) {
		return w.fail(ActionCraft, protocol.ErrUnaffordable, "Missing ingredients!")
	}
	if left := w.inv.Add(name, 1); left > 0 {
		w.stock.AddBulk(r.Inputs)
		return w.fail(ActionCraft, protocol.ErrCapacity, "Inventory full. Crafting failed!")
	}
	text := "Crafted successfully!"
	w.say(text, colorGood)
	w.cue(CueSuccess)
	return succeeded(ActionCraft, text)
}

func (w *World) discard(slot int) protocol.ActionResult {
	if !w.near(w.trash) {
		return w.fail(ActionDiscard, protocol.ErrOutOfRange, "Move closer to the trash can.")
	}
	if slot < 0 || slot >= w.inv.Rows()*w.inv.Cols() {
		return w.fail(ActionDiscard, protocol.ErrBadRequest, fmt.Sprintf("No inventory slot %d.", slot))
	}
	s, had := w.inv.ClearSlot(slot)
	if !had {
		return w.fail(ActionDiscard, protocol.ErrBadRequest, "Slot empty.")
	}
	text := fmt.Sprintf("Discarded %s x%d", s.Item, s.Count)
	w.say(text, colorDim)
	w.cue(CueFail)
	return succeeded(ActionDiscard, text)
}

func (w *World) insertBattery() protocol.ActionResult {
	if !w.near(&w.radio.Prop) {
		return w.fail(ActionInsertBattery, protocol.ErrOutOfRange, "Move closer to the radio.")
	}
	return w.insertBatteryAs(ActionInsertBattery)
}

func (w *World) insertBatteryAs(action string) protocol.ActionResult {
	if !w.inv.Remove(resources.KindBattery, 1) {
		return w.fail(action, protocol.ErrUnaffordable, "No battery available!")
	}
	w.radio.Batteries++
	w.events.SetLongHint(true, w.nowMs)
	n := w.radio.Batteries
	text := fmt.Sprintf("Inserted battery into radio. %d early alert%s ready.", n, plural(n))
	w.say(text, colorRadio)
	w.showChat(w.radio.ID, fmt.Sprintf("Radio charged (%d early alert%s).", n, plural(n)), colorRadio)
	w.cue(CueSuccess)
	return succeeded(action, text)
}
