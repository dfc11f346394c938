package world

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"candysurvival.ai/internal/protocol"
	"candysurvival.ai/internal/sim/catalogs"
	"candysurvival.ai/internal/sim/tuning"
	"candysurvival.ai/internal/sim/world/feature/director/events"
	"candysurvival.ai/internal/sim/world/terrain"
)

const testDt = 0.05

func testMap() *terrain.TileMap {
	m := &terrain.TileMap{Width: 40, Height: 30, SafeCenter: [2]int{20, 15}, SafeRadius: 3, CandySpawns: 30, BatterySpawns: 4}
	m.Tiles = make([][]string, m.Height)
	for y := range m.Tiles {
		m.Tiles[y] = make([]string, m.Width)
	}
	return m
}

func newTestWorld(t *testing.T, cats *catalogs.Catalogs, mut func(*tuning.Tuning)) *World {
	t.Helper()
	tun := tuning.Defaults()
	if mut != nil {
		mut(&tun)
	}
	w, err := New(WorldConfig{SessionID: "test", Seed: 7, Tuning: tun, Map: testMap()}, cats)
	require.NoError(t, err)
	return w
}

func messageTexts(w *World) []string {
	out := make([]string, 0, len(w.messages))
	for _, m := range w.messages {
		out = append(out, m.Text)
	}
	return out
}

// isolate removes wandering entities so interaction tests only see props.
func isolate(w *World) {
	w.givers = nil
	w.npcs = nil
	w.hunter = nil
}

func act() *protocol.ActMsg {
	return &protocol.ActMsg{Type: protocol.TypeAct, ProtocolVersion: protocol.Version}
}

func TestNew_RejectsNilMap(t *testing.T) {
	_, err := New(WorldConfig{Tuning: tuning.Defaults()}, nil)
	require.Error(t, err)
}

func TestNew_InitialState(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	require.Equal(t, 1, w.clock.Day)
	require.Equal(t, 360.0, w.clock.Minutes)
	require.False(t, w.isNight)
	require.Equal(t, w.field.SafeCenter, w.player.Pos)
	require.NotNil(t, w.hunter)
	require.Len(t, w.econ.Machines, 5)
	for _, k := range w.cats.Candies.Kinds {
		require.Equal(t, 3, w.spawner.ActiveCandy(k), k)
	}
	require.Equal(t, 2, w.spawner.ActiveBatteries())
}

func TestNew_SmallCandyPoolLeavesLaterKindsShort(t *testing.T) {
	m := testMap()
	m.CandySpawns = 4
	w, err := New(WorldConfig{SessionID: "test", Seed: 7, Tuning: tuning.Defaults(), Map: m}, nil)
	require.NoError(t, err)

	kinds := w.cats.Candies.Kinds
	total := 0
	for _, k := range kinds {
		total += w.spawner.ActiveCandy(k)
	}
	require.LessOrEqual(t, total, 4)
	require.Zero(t, w.spawner.ActiveCandy(kinds[len(kinds)-1]))
	require.Equal(t, w.spawner.CandyPool().Size(), w.spawner.CandyPool().Available()+total)
}

func TestStep_AdvancesTickAndTime(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	tick, digest := w.StepOnce(testDt, nil)
	require.Equal(t, uint64(1), tick)
	require.Len(t, digest, 64)
	require.Equal(t, int64(50), w.nowMs)
	require.InDelta(t, 360+testDt*w.tun.MinutesPerSecond(), w.clock.Minutes, 1e-9)
}

func TestStep_MovesPlayerNormalized(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	isolate(w)
	start := w.player.Pos
	a := act()
	a.Move = [2]float64{3, 4}
	w.step(testDt, a)
	d := w.player.Pos.Sub(start)
	require.InDelta(t, 8, d.Len(), 1e-9)
	require.InDelta(t, 0.6*8, d.X, 1e-9)
	require.InDelta(t, 0.8*8, d.Y, 1e-9)
}

func TestStep_PlayerClampedToMovementBounds(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	isolate(w)
	w.player.Pos = w.field.TileCenter(0, 5)
	a := act()
	a.Move = [2]float64{-1, 0}
	w.step(testDt, a)
	require.Equal(t, w.field.Movement.X, w.player.Pos.X)
}

func TestStep_NightBegins(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	w.clock.Minutes = 20*60 - 0.01
	w.step(testDt, nil)

	require.True(t, w.isNight)
	require.Contains(t, messageTexts(w), "Night falls. Stay alert!")
	require.Nil(t, w.hunter)
	require.Empty(t, w.npcs)
	require.True(t, w.border.Shrinking())
	require.Equal(t, events.Armed, w.events.Phase())
	require.Greater(t, w.light, 0.0)
	require.Less(t, w.light, 1.0)
}

func TestStep_MidnightRollsHolder(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	w.clock.Minutes = 24*60 - 0.01
	w.isNight = true
	w.step(testDt, nil)

	require.Equal(t, 2, w.clock.Day)
	require.True(t, w.isNight)
	require.Equal(t, 2, w.econ.Holder.Value)
	require.Contains(t, messageTexts(w), "Neutral holder rose after a calm day: 2")
}

func TestStep_DayBeginsAtSixAM(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	w.clock.Minutes = 6*60 - 0.01
	w.isNight = true
	w.hunter = nil
	w.npcs = nil
	w.border.StartShrink(1)

	w.step(testDt, nil)
	require.False(t, w.isNight)
	require.Contains(t, messageTexts(w), "Day 1 begins!")
	require.NotNil(t, w.hunter)
	require.False(t, w.border.Shrinking())
	require.Empty(t, w.ghosts.List)
}

func TestForceNewDay(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	w.clock.Minutes = 22 * 60
	w.isNight = true
	w.light = 1

	w.ForceNewDay()
	require.Equal(t, 2, w.clock.Day)
	require.Equal(t, 360.0, w.clock.Minutes)
	require.False(t, w.isNight)
	require.Equal(t, 0.0, w.light)
	require.Equal(t, events.Inactive, w.events.Phase())
	texts := messageTexts(w)
	require.Contains(t, texts, "Day 2 begins!")
	require.Contains(t, texts, "Neutral holder rose after a calm day: 2")
}

func TestGhostCatchOutsideZoneLoses(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	w.clock.Minutes = 21 * 60
	w.isNight = true
	w.player.Pos = w.field.TileCenter(3, 3)
	g := w.ghosts.SpawnAround(w.border.Bounds(), w.rng)
	g.Pos = w.player.Pos

	w.StepOnce(testDt, nil)
	o := w.Outcome()
	require.NotNil(t, o)
	require.False(t, o.Win)
	require.Equal(t, protocol.ErrLoseCondition, o.Code)
	require.Equal(t, "Ghost caught you outside the zone!", o.Reason)
	select {
	case <-w.Done():
	default:
		t.Fatalf("done channel still open")
	}

	tick := w.CurrentTick()
	w.StepOnce(testDt, nil)
	require.Equal(t, tick, w.CurrentTick(), "finished world must not advance")
}

func TestHunterCatchLoses(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	w.player.Pos = w.field.TileCenter(3, 3)
	w.hunter.Pos = w.player.Pos

	w.step(testDt, nil)
	require.NotNil(t, w.outcome)
	require.Equal(t, "Hunter caught you!", w.outcome.Reason)
}

func TestInteract_UpgradeToVictory(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	isolate(w)
	m := w.econ.ByID("machine_red")
	m.Level = 4
	w.stock.Add(m.Kind, 20)
	w.player.Pos = w.machineProps[m.ID].Pos

	a := act()
	a.Interact = true
	res := w.step(testDt, a)
	require.Len(t, res, 1)
	require.True(t, res[0].OK, res[0].Message)
	require.Equal(t, 5, m.Level)
	require.Equal(t, 0, w.stock.Amount(m.Kind))
	require.NotNil(t, w.outcome)
	require.True(t, w.outcome.Win)
	require.Equal(t, "Machine Spicy reached level 5!", w.outcome.Reason)
	require.Equal(t, w.tun.Economy.WorldExpPerUpgrade, w.econ.Progress.WorldExp)
}

func TestInteract_UpgradeUnaffordable(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	isolate(w)
	m := w.econ.ByID("machine_red")
	w.stock.Add(m.Kind, 2)
	w.player.Pos = w.machineProps[m.ID].Pos

	a := act()
	a.Interact = true
	res := w.step(testDt, a)
	require.Len(t, res, 1)
	require.Equal(t, protocol.ErrUnaffordable, res[0].Code)
	require.Equal(t, 1, m.Level)
	require.Equal(t, 2, w.stock.Amount(m.Kind))
	require.Contains(t, w.cues, CueFail)
}

func TestInteract_NothingInReach(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	isolate(w)
	w.player.Pos = w.field.TileCenter(17, 12)

	a := act()
	a.Interact = true
	res := w.step(testDt, a)
	require.Len(t, res, 1)
	require.Equal(t, protocol.ErrOutOfRange, res[0].Code)
	require.Contains(t, messageTexts(w), "Nothing to interact with.")
	require.Contains(t, w.cues, CueFail)
}

func TestInteract_GiverCooldown(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	isolate(w)
	// Inside the safe zone, clear of props and of item spawns.
	pos := w.field.TileCenter(17, 12)
	w.givers = []*Giver{{Prop: Prop{ID: "giver-1", Kind: "giver", Pos: pos, W: 32, H: 32}}}
	w.player.Pos = pos

	total := func() int {
		n := 0
		for _, k := range w.cats.Candies.Kinds {
			n += w.stock.Amount(k)
		}
		return n
	}

	a := act()
	a.Interact = true
	res := w.step(testDt, a)
	require.True(t, res[0].OK)
	require.True(t, w.givers[0].UsedToday)
	got := total()
	require.GreaterOrEqual(t, got, 2)
	require.LessOrEqual(t, got, 4)
	require.Contains(t, w.chats, "giver-1")

	res = w.step(testDt, a)
	require.Equal(t, protocol.ErrCooldown, res[0].Code)
	require.Equal(t, got, total())
}

func TestCraft(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	isolate(w)
	w.player.Pos = w.table.Pos

	a := act()
	a.Craft = "Clothes Pin"
	res := w.step(testDt, a)
	require.Equal(t, protocol.ErrUnaffordable, res[0].Code)
	require.Equal(t, "Missing ingredients!", res[0].Message)

	w.stock.AddBulk(map[string]int{"candy_red": 2, "candy_blue": 1, "candy_yellow": 2})
	res = w.step(testDt, a)
	require.True(t, res[0].OK, res[0].Message)
	require.Equal(t, 1, w.inv.Count("Clothes Pin"))
	require.Equal(t, 0, w.stock.Amount("candy_red"))
	require.Contains(t, messageTexts(w), "Crafted successfully!")

	a.Craft = "Rocket"
	res = w.step(testDt, a)
	require.Equal(t, protocol.ErrBadRequest, res[0].Code)
}

func TestCraft_PartialIngredientsConsumeNothing(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	isolate(w)
	w.player.Pos = w.table.Pos
	w.stock.AddBulk(map[string]int{"candy_red": 2, "candy_blue": 1, "candy_yellow": 1})

	a := act()
	a.Craft = "Clothes Pin"
	res := w.step(testDt, a)
	require.Equal(t, protocol.ErrUnaffordable, res[0].Code)
	require.Equal(t, 2, w.stock.Amount("candy_red"))
	require.Equal(t, 1, w.stock.Amount("candy_blue"))
	require.Equal(t, 1, w.stock.Amount("candy_yellow"))
	require.Contains(t, w.cues, CueFail)
}

func TestCraft_TooFarFromTable(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	isolate(w)
	w.player.Pos = w.field.TileCenter(3, 3)
	w.stock.AddBulk(map[string]int{"candy_red": 2, "candy_blue": 1, "candy_yellow": 2})

	a := act()
	a.Craft = "Clothes Pin"
	res := w.step(testDt, a)
	require.Equal(t, protocol.ErrOutOfRange, res[0].Code)
	require.Equal(t, 2, w.stock.Amount("candy_red"))
}

func TestCraft_InventoryFullRefunds(t *testing.T) {
	w := newTestWorld(t, nil, func(tun *tuning.Tuning) {
		tun.Player.InventoryRows = 1
		tun.Player.InventoryCols = 1
	})
	isolate(w)
	w.player.Pos = w.table.Pos
	w.inv.Add("Umbrella", 1)
	w.stock.AddBulk(map[string]int{"candy_red": 2, "candy_blue": 1, "candy_yellow": 2})

	a := act()
	a.Craft = "Clothes Pin"
	res := w.step(testDt, a)
	require.Equal(t, protocol.ErrCapacity, res[0].Code)
	require.Equal(t, 2, w.stock.Amount("candy_red"))
	require.Equal(t, 0, w.inv.Count("Clothes Pin"))
}

func TestDiscard(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	isolate(w)
	w.player.Pos = w.trash.Pos
	w.inv.Add("Umbrella", 2)

	slot := 0
	a := act()
	a.DiscardSlot = &slot
	res := w.step(testDt, a)
	require.True(t, res[0].OK)
	require.Equal(t, "Discarded Umbrella x2", res[0].Message)
	require.Equal(t, 0, w.inv.Count("Umbrella"))

	res = w.step(testDt, a)
	require.Equal(t, protocol.ErrBadRequest, res[0].Code)
	require.Equal(t, "Slot empty.", res[0].Message)

	slot = 99
	res = w.step(testDt, a)
	require.Equal(t, protocol.ErrBadRequest, res[0].Code)
}

func TestInsertBattery(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	isolate(w)
	w.player.Pos = w.radio.Pos

	a := act()
	a.InsertBattery = true
	res := w.step(testDt, a)
	require.Equal(t, protocol.ErrUnaffordable, res[0].Code)
	require.Equal(t, "No battery available!", res[0].Message)

	w.inv.Add("battery", 1)
	res = w.step(testDt, a)
	require.True(t, res[0].OK)
	require.Equal(t, 1, w.radio.Batteries)
	require.True(t, w.events.LongHint())
	require.Equal(t, "Radio charged (1 early alert).", w.chats["radio"].Text)
}

func singleEventCatalogs() *catalogs.Catalogs {
	cats := catalogs.Defaults()
	cats.Events.Defs = []catalogs.EventDef{{Name: "stink", CounterItem: "Clothes Pin", CounterAmount: 1}}
	return cats
}

func startNight(w *World, delayMs int64) {
	w.clock.Minutes = 21 * 60
	w.isNight = true
	w.hunter = nil
	w.npcs = nil
	w.events.BeginNight(w.nowMs, delayMs, w.rng)
}

func TestEventFailure_BoostsNeutralAndForcesDay(t *testing.T) {
	w := newTestWorld(t, singleEventCatalogs(), nil)
	startNight(w, 0)

	w.step(testDt, nil)
	texts := messageTexts(w)
	require.Contains(t, texts, "Event 'Stink' struck! Missing Clothes Pin x1.")
	require.Contains(t, texts, "Event backlash: Neutral -> Lv 2")
	require.Contains(t, texts, "Day 2 begins!")
	require.Equal(t, 2, w.econ.Neutral.Level)
	require.Equal(t, -1, w.econ.Holder.Value, "the boost counts as an upgrade day")
	require.False(t, w.isNight)
	require.Nil(t, w.outcome)
}

func TestEventSuccess_RewardsEveryKind(t *testing.T) {
	w := newTestWorld(t, singleEventCatalogs(), nil)
	w.inv.Add("Clothes Pin", 1)
	startNight(w, 0)

	w.step(testDt, nil)
	require.Equal(t, 0, w.inv.Count("Clothes Pin"))
	for _, k := range w.cats.Candies.Kinds {
		require.Equal(t, 2, w.stock.Amount(k), k)
	}
	found := false
	for _, s := range messageTexts(w) {
		if strings.HasPrefix(s, "Event 'Stink' resolved! Rewards: ") {
			found = true
		}
	}
	require.True(t, found, "missing reward message in %v", messageTexts(w))
	require.Equal(t, 1, w.econ.Neutral.Level)
	require.Equal(t, 2, w.clock.Day)
}

func TestRadioHint_SpendsBattery(t *testing.T) {
	w := newTestWorld(t, singleEventCatalogs(), nil)
	w.radio.Batteries = 2
	w.events.SetLongHint(true, w.nowMs)
	startNight(w, 60000)
	hintAt, ok := w.events.HintAtMs()
	require.True(t, ok)
	require.Equal(t, int64(15000), hintAt)

	w.nowMs = hintAt - 10
	w.step(testDt, nil)
	require.Equal(t, events.Hinted, w.events.Phase())
	require.Equal(t, 1, w.radio.Batteries)
	require.True(t, w.events.LongHint())
	require.Equal(t, "1 early alert left.", w.chats["radio"].Text)
	require.Contains(t, messageTexts(w), "Radio: Incoming event Stink!")
}

func TestObs_ReportsState(t *testing.T) {
	w := newTestWorld(t, nil, func(tun *tuning.Tuning) { tun.Radio.EventCountdownDisplay = true })
	startNight(w, 30000)
	w.step(testDt, nil)

	obs := w.buildObs(nil)
	require.Equal(t, protocol.TypeObs, obs.Type)
	require.Equal(t, uint64(1), obs.Tick)
	require.True(t, obs.Clock.IsNight)
	require.Len(t, obs.Machines, 5)
	require.Len(t, obs.Inventory, w.inv.Rows()*w.inv.Cols())
	require.NotNil(t, obs.Event)
	require.Equal(t, "ARMED", obs.Event.Phase)
	require.Empty(t, obs.Event.Label, "label stays hidden until the hint")
	require.Equal(t, 29.0, obs.Event.SecondsUntil)
	require.Nil(t, obs.Hunter)
}

func TestReplay_SameSeedSameDigests(t *testing.T) {
	a := newTestWorld(t, nil, nil)
	b := newTestWorld(t, nil, nil)
	moves := [][2]float64{{1, 0}, {0, 1}, {-1, -1}, {0, 0}, {1, 1}}
	for i := 0; i < 400; i++ {
		in := act()
		in.Move = moves[i%len(moves)]
		in.Interact = i%17 == 0
		_, da := a.StepOnce(testDt, in)
		_, db := b.StepOnce(testDt, in)
		require.Equal(t, da, db, "tick %d", i)
	}
}
