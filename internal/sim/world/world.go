package world

import (
	"errors"
	"math/rand"
	"sync/atomic"

	"candysurvival.ai/internal/protocol"
	"candysurvival.ai/internal/sim/catalogs"
	"candysurvival.ai/internal/sim/tuning"
	"candysurvival.ai/internal/sim/world/feature/border"
	"candysurvival.ai/internal/sim/world/feature/director/events"
	"candysurvival.ai/internal/sim/world/feature/economy/inventory"
	"candysurvival.ai/internal/sim/world/feature/economy/machines"
	"candysurvival.ai/internal/sim/world/feature/economy/stockpile"
	"candysurvival.ai/internal/sim/world/feature/hazards"
	"candysurvival.ai/internal/sim/world/feature/resources"
	"candysurvival.ai/internal/sim/world/logic/geom"
	"candysurvival.ai/internal/sim/world/terrain"
)

type WorldConfig struct {
	SessionID string
	Seed      int64
	Tuning    tuning.Tuning
	Map       *terrain.TileMap
}

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

// JoinResponse carries either a welcome or the code explaining the refusal.
type JoinResponse struct {
	Welcome  protocol.WelcomeMsg
	PlayerID string
	Code     string
}

type ActionEnvelope struct {
	PlayerID string
	Act      protocol.ActMsg
}

type ObserverJoinRequest struct {
	SessionID   string
	Out         chan []byte
	EveryNTicks int
}

type ObserverSubscribeRequest struct {
	SessionID   string
	EveryNTicks int
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type MessageLogger interface {
	WriteMessage(m Message) error
}

// Recorder receives coarse session milestones for the index.
type Recorder interface {
	RecordDay(sessionID string, day int, tick uint64, worldExp, holder int)
	RecordEvent(sessionID string, tick uint64, name string, success bool, detail string)
	RecordOutcome(sessionID string, o Outcome)
}

// TickLogEntry is everything needed to replay one tick.
type TickLogEntry struct {
	Tick   uint64           `json:"tick"`
	DtMs   int64            `json:"dt_ms"`
	Input  *protocol.ActMsg `json:"input,omitempty"`
	Digest string           `json:"digest"`
}

// Outcome ends the session.
type Outcome struct {
	Win    bool
	Code   string
	Reason string
	Tick   uint64
	Day    int
}

type Player struct {
	hazards.Body
}

// Prop is a static structure the player can walk up to.
type Prop struct {
	ID   string
	Kind string
	Pos  geom.Vec2
	W, H float64
}

func (p *Prop) Bounds() geom.Rect { return geom.Centered(p.Pos, p.W, p.H) }

type Giver struct {
	Prop
	CooldownUntilMs int64
	UsedToday       bool
}

func (g *Giver) Ready(nowMs int64) bool { return !g.UsedToday && nowMs >= g.CooldownUntilMs }

type Radio struct {
	Prop
	Batteries int
}

// World is a single-threaded authoritative simulation.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg  WorldConfig
	tun  tuning.Tuning
	cats *catalogs.Catalogs
	rng  *rand.Rand

	tick  atomic.Uint64
	nowMs int64

	field *terrain.Field
	arena hazards.Arena

	clock   Clock
	isNight bool
	light   float64
	border  *border.Border

	player  Player
	inv     *inventory.Inventory
	stock   *stockpile.Stockpile
	econ    *machines.Economy
	spawner *resources.Spawner
	ghosts  *hazards.Ghosts
	hunter  *hazards.Hunter
	npcs    []*hazards.Wanderer
	events  *events.Manager

	machineProps map[string]*Prop
	radio        *Radio
	table        *Prop
	trash        *Prop
	givers       []*Giver
	chats        map[string]ChatBubble
	nextChatter  int64
	chatterOn    bool
	nextNPCID    uint64

	outcome *Outcome
	done    chan struct{}

	// Per-tick output, reset at the start of each step.
	messages []Message
	cues     []string

	tickLogger TickLogger
	msgLogger  MessageLogger
	recorder   Recorder
	metrics    atomic.Value

	playerID  string
	playerOut chan []byte
	observers map[string]*observerClient
	nextPID   atomic.Uint64

	inbox         chan ActionEnvelope
	join          chan JoinRequest
	leave         chan string
	observerJoin  chan ObserverJoinRequest
	observerSub   chan ObserverSubscribeRequest
	observerLeave chan string
	stop          chan struct{}
}

func New(cfg WorldConfig, cats *catalogs.Catalogs) (*World, error) {
	if cfg.Map == nil {
		return nil, errors.New("world: nil map")
	}
	if cats == nil {
		cats = catalogs.Defaults()
	}
	if len(cats.Candies.Kinds) == 0 {
		return nil, errors.New("world: no candy kinds")
	}
	t := cfg.Tuning
	if t.TickRateHz <= 0 {
		t = tuning.Defaults()
		cfg.Tuning = t
	}
	ts := float64(t.TileSize)

	w := &World{
		cfg:   cfg,
		tun:   t,
		cats:  cats,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		clock: NewClock(),
		chats: map[string]ChatBubble{},
		done:  make(chan struct{}),

		observers: map[string]*observerClient{},

		inbox:         make(chan ActionEnvelope, 1024),
		join:          make(chan JoinRequest, 16),
		leave:         make(chan string, 16),
		observerJoin:  make(chan ObserverJoinRequest, 16),
		observerSub:   make(chan ObserverSubscribeRequest, 16),
		observerLeave: make(chan string, 16),
		stop:          make(chan struct{}),
	}

	w.field = terrain.NewField(cfg.Map, t.TileSize, t.World.WallThicknessTiles)
	w.arena = hazards.Arena{
		World:    w.field.World,
		Movement: w.field.Movement,
		Safe:     w.field.Safe,
		Walls:    w.field.Walls,
		Tile:     ts,
	}

	w.player = Player{hazards.Body{Pos: w.field.SafeCenter, W: t.Player.Size, H: t.Player.Size, Speed: t.Player.Speed}}
	w.inv = inventory.New(t.Player.InventoryRows, t.Player.InventoryCols, t.Player.InventoryMaxStack)
	w.stock = stockpile.New(cats.Candies.Kinds)

	table := machines.NewLevelTable(cats.Machines.Levels, t.Economy.MachineVictoryLevel)
	w.econ = machines.New(cats.Machines.Defs, table, machines.HolderConfig{
		Threshold:      t.Economy.NeutralHolderThreshold,
		Min:            t.Economy.NeutralHolderMin,
		Max:            t.Economy.NeutralHolderMax,
		NoUpgradeBonus: t.Economy.NeutralHolderNoUpgradeBonus,
		UpgradePenalty: t.Economy.NeutralHolderUpgradePenalty,
	}, t.Economy.WorldExpPerUpgrade, t.Economy.MachineVictoryLevel, w.rng)

	w.buildStructures()

	hw, hh := w.initialBorder()
	w.border = border.New(w.field.SafeCenter, hw, hh, w.field.Safe.W/2, w.field.Safe.H/2)

	r := t.Resources
	candyPos, batteryPos := w.field.SpawnPools(cfg.Map.CandySpawns, cfg.Map.BatterySpawns, w.rng)
	w.spawner = resources.NewSpawner(resources.Config{
		CandyKinds:      cats.Candies.Kinds,
		CandyCap:        r.CandyMaxPerType,
		InitialCandy:    r.InitialCandySpawnPerType,
		CandyDelayMs:    secToMs(r.CandyRespawnDelaySec),
		CandyBatch:      r.CandyRespawnBatchSize,
		CandyRespawns:   r.CandyRespawnsEnabled,
		BatteryCap:      r.BatteryMaxCount,
		InitialBattery:  r.InitialBatteryItemCount,
		BatteryDelayMs:  secToMs(r.BatteryRespawnDelaySec),
		BatteryBatch:    r.BatteryRespawnBatchSize,
		BatteryRespawns: r.BatteryRespawnsEnabled,
		ItemSize:        t.World.ItemSize,
	},
		candyPos,
		batteryPos,
		w.rng,
		func(p geom.Vec2, _ geom.Rect) bool { return w.blockedStatic(p) },
		w.econ.YieldFor,
	)
	w.spawner.FillInitial()

	h := t.Hazards
	w.ghosts = hazards.NewGhosts(hazards.GhostConfig{
		Speed:            h.GhostSpeed,
		Size:             h.GhostSize,
		MaxCount:         h.GhostMaxCount,
		SpawnIntervalMs:  secToMs(h.GhostSpawnIntervalSec),
		SpawnMargin:      max(40, ts*2.5),
		WanderSpeed:      h.GhostRandomWalkSpeed,
		WanderIntervalMs: secToMs(h.GhostRandomWalkIntervalSec),
		WanderRadius:     h.GhostRandomWalkRadiusTiles * ts,
	})

	w.spawnGivers()
	w.spawnNPCs()
	w.spawnHunter()

	counters := cats.Events.CounterItems(t.Events.CounterItems)
	w.events = events.NewManager(cats.Events.Defs, counters, t.Radio.PreannounceWithBatterySec, t.Radio.PreannounceWithoutBatterySec)
	w.scheduleChatter(true)
	return w, nil
}

func secToMs(s float64) int64 { return int64(s * 1000) }

func (w *World) initialBorder() (float64, float64) {
	return w.field.InitialBorderHalf(w.tun.World.NightBorderStartBufferTiles)
}
