package world

import (
	"fmt"
	"math"
	"strings"

	"candysurvival.ai/internal/protocol"
	"candysurvival.ai/internal/sim/world/feature/economy/machines"
	"candysurvival.ai/internal/sim/world/feature/resources"
	"candysurvival.ai/internal/sim/world/logic/geom"
)

const maxStepDt = 0.1

// step advances the simulation by dt seconds with the player's latest input.
// Once an outcome is decided the world is frozen.
func (w *World) step(dt float64, act *protocol.ActMsg) []protocol.ActionResult {
	w.messages = w.messages[:0]
	w.cues = w.cues[:0]
	if w.outcome != nil {
		return nil
	}
	dt = math.Min(math.Max(dt, 0), maxStepDt)
	w.tick.Add(1)
	w.nowMs += int64(math.Round(dt * 1000))

	var results []protocol.ActionResult
	if act != nil {
		w.movePlayer(geom.V(act.Move[0], act.Move[1]), dt)
		results = w.applyActions(act)
		if w.outcome != nil {
			return results
		}
	}

	w.advanceClock(dt)
	w.updateLighting(dt)
	if w.isNight {
		w.border.Update(dt)
	}
	w.spawner.Update(w.nowMs)
	w.updateGhosts(dt)
	if w.outcome != nil {
		return results
	}
	w.updateNPCs(dt)
	w.updateHunter(dt)
	if w.outcome != nil {
		return results
	}
	w.checkVictory()
	if w.outcome != nil {
		return results
	}
	w.updateMachineChat()
	w.expireChats()
	w.handlePickups()
	w.updateEvents()
	if w.outcome != nil {
		return results
	}
	w.updateChatter()
	return results
}

func (w *World) movePlayer(dir geom.Vec2, dt float64) {
	if dir.Len() == 0 {
		return
	}
	delta := dir.Normalized().Scale(w.player.Speed * dt)
	p := geom.MoveAxisSeparated(w.player.Pos, delta, w.player.W, w.player.H, w.field.Walls)
	w.player.Pos = w.field.ClampToWorld(p)
}

func (w *World) advanceClock(dt float64) {
	wraps := w.clock.Advance(dt, w.tun.MinutesPerSecond())
	for i := 0; i < wraps; i++ {
		w.rolloverDay()
	}
	day := w.clock.IsDaytime()
	switch {
	case day && w.isNight:
		w.isNight = false
		w.beginDay()
	case !day && !w.isNight:
		w.isNight = true
		w.beginNight()
	}
}

func (w *World) updateLighting(dt float64) {
	target := 0.0
	if w.isNight {
		target = 1
	}
	rate := dt / w.tun.NightTransitionSec()
	if w.light < target {
		w.light = math.Min(target, w.light+rate)
	} else if w.light > target {
		w.light = math.Max(target, w.light-rate)
	}
}

// rolloverDay runs the economy's end of day at midnight.
func (w *World) rolloverDay() {
	before := w.neutralLevel()
	end := w.econ.EndDay()
	if end.Delta == 0 {
		return
	}
	w.reportHolder(before, end.Holder)
	reason := "fell after upgrades"
	if end.NoUpgrades {
		reason = "rose after a calm day"
	}
	w.say(fmt.Sprintf("Neutral holder %s: %d", reason, end.Holder.Value), colorHolder)
}

func (w *World) neutralLevel() int {
	if w.econ.Neutral == nil {
		return 0
	}
	return w.econ.Neutral.Level
}

func (w *World) reportHolder(before int, c machines.HolderChange) {
	step, label := 1, "Neutral holder boost"
	if c.Steps < 0 {
		step, label = -1, "Neutral holder drain"
	}
	for i, lvl := 0, before; i < abs(c.Steps); i++ {
		lvl += step
		w.say(fmt.Sprintf("%s: %s -> Lv %d", label, w.econ.Neutral.Display, lvl), colorHolder)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (w *World) beginDay() {
	w.events.EndNight()
	w.say(fmt.Sprintf("Day %d begins!", w.clock.Day), colorDay)
	w.ghosts.Clear()
	w.border.Reset(w.initialBorder())
	w.spawner.RefreshForNewDay()
	for _, g := range w.givers {
		g.UsedToday = false
	}
	w.npcs = w.npcs[:0]
	w.spawnNPCs()
	w.spawnHunter()
	w.events.SetLongHint(false, w.nowMs)
	if w.recorder != nil {
		w.recorder.RecordDay(w.cfg.SessionID, w.clock.Day, w.tick.Load(), w.econ.Progress.WorldExp, w.econ.Holder.Value)
	}
}

func (w *World) beginNight() {
	w.events.SetLongHint(w.radio.Batteries > 0, w.nowMs)
	w.events.BeginNight(w.nowMs, secToMs(w.tun.Events.NightDelaySec), w.rng)
	w.say("Night falls. Stay alert!", colorNight)
	w.border.Reset(w.initialBorder())
	w.border.StartShrink(w.tun.BorderShrinkSec())
	w.npcs = w.npcs[:0]
	w.hunter = nil
	w.ghosts.Arm(w.nowMs)
}

// ForceNewDay ends the current night right away and runs the same rollover
// and day start as the natural clock.
func (w *World) ForceNewDay() {
	w.events.EndNight()
	w.isNight = false
	w.light = 0
	w.clock.Minutes = float64(6 * 60)
	w.clock.Day++
	w.rolloverDay()
	w.beginDay()
}

func (w *World) lose(reason string, c Color) {
	w.say(reason, c)
	w.cue(CueFail)
	w.finish(&Outcome{Code: protocol.ErrLoseCondition, Reason: reason})
}

func (w *World) finish(o *Outcome) {
	if w.outcome != nil {
		return
	}
	o.Tick = w.tick.Load()
	o.Day = w.clock.Day
	w.outcome = o
	close(w.done)
	if w.recorder != nil {
		w.recorder.RecordOutcome(w.cfg.SessionID, *o)
	}
}

func (w *World) updateGhosts(dt float64) {
	if !w.isNight {
		return
	}
	if g := w.ghosts.Update(dt, w.nowMs, w.arena, w.border, w.player.Body, w.rng); g != nil {
		w.lose("Ghost caught you outside the zone!", colorDanger)
	}
}

func (w *World) updateNPCs(dt float64) {
	cfg := w.wandererConfig()
	for _, n := range w.npcs {
		n.Update(dt, w.nowMs, cfg, w.arena, w.rng)
	}
}

func (w *World) updateHunter(dt float64) {
	if w.hunter == nil {
		return
	}
	if w.isNight {
		w.hunter = nil
		return
	}
	if w.hunter.Update(dt, w.arena, w.player.Body, w.blocked, w.rng) {
		w.lose("Hunter caught you!", colorBad)
	}
}

func (w *World) checkVictory() {
	if w.outcome != nil {
		return
	}
	m := w.econ.Winner()
	if m == nil {
		return
	}
	reason := fmt.Sprintf("Machine %s reached level %d!", m.Display, m.Level)
	w.say(reason, colorVictory)
	w.cue(CueSuccess)
	w.showChat(m.ID, "Production maxed!", colorVictory)
	w.finish(&Outcome{Win: true, Reason: reason})
}

// updateMachineChat shows "Lv N" over machines the player stands next to.
func (w *World) updateMachineChat() {
	extra := w.field.TileSize * 0.5
	for _, m := range w.econ.Machines {
		p := w.machineProps[m.ID]
		b, has := w.chats[m.ID]
		if w.withinReach(p.Pos, p.W, p.H, extra) {
			text := fmt.Sprintf("Lv %d", m.Level)
			if has && b.Text == text {
				b.UntilMs = w.nowMs + 400
				w.chats[m.ID] = b
			} else {
				w.chats[m.ID] = ChatBubble{Text: text, Color: colorLevel, UntilMs: w.nowMs + 400}
			}
		} else if has && strings.HasPrefix(b.Text, "Lv ") {
			delete(w.chats, m.ID)
		}
	}
}

func (w *World) handlePickups() {
	pr := w.player.Bounds()
	for _, it := range w.spawner.Overlapping(pr) {
		if it.Kind == resources.KindBattery {
			if left := w.inv.Add(it.Kind, it.Yield); left > 0 {
				continue
			}
			w.spawner.Collect(it, w.nowMs)
			w.cue(CuePickup)
			continue
		}
		_, bonus := w.econ.Collect(w.stock, it.Kind, it.Yield)
		w.spawner.Collect(it, w.nowMs)
		if bonus > 0 {
			w.say(fmt.Sprintf("Machine bonus: +%d %s candy", bonus, w.cats.Candies.DisplayName(it.Kind)), colorBonus)
		}
		w.cue(CuePickup)
	}
}

func (w *World) updateEvents() {
	st := w.events.Update(w.nowMs, w.inv)
	if h := st.Hint; h != nil {
		w.say(h.Text, colorHint)
		w.cue(CueRadio)
		w.showChat(w.radio.ID, h.Text, colorHint)
		w.onRadioHint(h.Long)
	}
	res := st.Resolution
	if res == nil {
		return
	}
	if w.recorder != nil {
		w.recorder.RecordEvent(w.cfg.SessionID, w.tick.Load(), res.Event.Name, res.Success, res.Detail)
	}
	c := colorDanger
	if res.Success {
		c = colorWarn
	}
	w.say(res.Text, c)
	w.cue(CueRadio)
	w.showChat(w.radio.ID, res.Text, c)

	if res.Success {
		parts := make([]string, 0, len(w.cats.Candies.Kinds))
		for _, kind := range w.cats.Candies.Kinds {
			gained, bonus := w.econ.Collect(w.stock, kind, w.tun.Events.SuccessCandyReward)
			label := w.cats.Candies.DisplayName(kind)
			if bonus > 0 {
				parts = append(parts, fmt.Sprintf("%s +%d (+%d)", label, gained, bonus))
			} else {
				parts = append(parts, fmt.Sprintf("%s +%d", label, gained))
			}
		}
		w.say(fmt.Sprintf("Event '%s' resolved! Rewards: %s.", res.Event.Label(), strings.Join(parts, ", ")), colorGood)
		w.cue(CueSuccess)
	} else {
		w.cue(CueFail)
		if n := w.econ.Neutral; n != nil {
			levels := max(1, w.tun.Events.FailureNeutralUpgradeLevels)
			if w.econ.ChangeLevel(n, levels, true) > 0 {
				w.say(fmt.Sprintf("Event backlash: %s -> Lv %d", n.Display, n.Level), colorBacklash)
				w.checkVictory()
				if w.outcome != nil {
					return
				}
			} else {
				w.say(fmt.Sprintf("Event '%s' could not empower the neutral machine further.", res.Event.Label()), colorBacklash)
			}
		}
	}
	w.ForceNewDay()
}

// onRadioHint spends a charge when the long warning was used.
func (w *World) onRadioHint(long bool) {
	if !long {
		return
	}
	if w.radio.Batteries <= 0 {
		w.events.SetLongHint(false, w.nowMs)
		return
	}
	w.radio.Batteries--
	if w.radio.Batteries == 0 {
		w.events.SetLongHint(false, w.nowMs)
		w.showChat(w.radio.ID, "Radio battery depleted.", colorInfo)
		return
	}
	w.showChat(w.radio.ID, fmt.Sprintf("%d early alert%s left.", w.radio.Batteries, plural(w.radio.Batteries)), colorInfo)
}
