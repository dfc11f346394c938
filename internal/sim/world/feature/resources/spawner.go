// Package resources places candies and batteries on fixed position pools,
// enforces per-kind caps and runs the optional respawn queues.
package resources

import (
	"math/rand"
	"sort"

	"candysurvival.ai/internal/sim/world/logic/geom"
)

const KindBattery = "battery"

type Item struct {
	ID    uint64
	Kind  string
	Pos   geom.Vec2
	Yield int
}

func (it *Item) IsBattery() bool { return it.Kind == KindBattery }

// Pool is a fixed set of positions split into available and reserved.
type Pool struct {
	all       []geom.Vec2
	available []geom.Vec2
}

func NewPool(positions []geom.Vec2) *Pool {
	p := &Pool{all: append([]geom.Vec2(nil), positions...)}
	p.Reset()
	return p
}

func (p *Pool) Reset() { p.available = append(p.available[:0], p.all...) }

func (p *Pool) Size() int      { return len(p.all) }
func (p *Pool) Available() int { return len(p.available) }

// pick removes and returns the first available position, walking from a
// random start, that free accepts. Rejected positions stay available.
func (p *Pool) pick(rng *rand.Rand, free func(geom.Vec2) bool) (geom.Vec2, bool) {
	n := len(p.available)
	if n == 0 {
		return geom.Vec2{}, false
	}
	start := rng.Intn(n)
	for k := 0; k < n; k++ {
		i := (start + k) % n
		pos := p.available[i]
		if !free(pos) {
			continue
		}
		p.available = append(p.available[:i], p.available[i+1:]...)
		return pos, true
	}
	return geom.Vec2{}, false
}

func (p *Pool) release(pos geom.Vec2) { p.available = append(p.available, pos) }

func (p *Pool) take(pos geom.Vec2) {
	for i, q := range p.available {
		if q == pos {
			p.available = append(p.available[:i], p.available[i+1:]...)
			return
		}
	}
}

type Config struct {
	CandyKinds []string

	CandyCap        int
	InitialCandy    int
	CandyDelayMs    int64
	CandyBatch      int
	CandyRespawns   bool
	BatteryCap      int
	InitialBattery  int
	BatteryDelayMs  int64
	BatteryBatch    int
	BatteryRespawns bool

	ItemSize float64
}

// Blocked reports whether an item rectangle collides with something the
// spawner does not own (walls, props, NPCs, out of bounds).
type Blocked func(pos geom.Vec2, r geom.Rect) bool

// YieldFunc is the per-pickup value of a candy kind at spawn time.
type YieldFunc func(kind string) int

type respawn struct {
	at   int64
	kind string
}

type Spawner struct {
	cfg     Config
	candy   *Pool
	battery *Pool

	items         []*Item
	candyActive   map[string]int
	batteryActive int
	candyQueue    []respawn
	batteryQueue  []int64

	nextID  uint64
	rng     *rand.Rand
	blocked Blocked
	yield   YieldFunc
}

func NewSpawner(cfg Config, candyPositions, batteryPositions []geom.Vec2, rng *rand.Rand, blocked Blocked, yield YieldFunc) *Spawner {
	if cfg.CandyBatch < 1 {
		cfg.CandyBatch = 1
	}
	if cfg.BatteryBatch < 1 {
		cfg.BatteryBatch = 1
	}
	s := &Spawner{
		cfg:         cfg,
		candy:       NewPool(candyPositions),
		battery:     NewPool(batteryPositions),
		candyActive: map[string]int{},
		rng:         rng,
		blocked:     blocked,
		yield:       yield,
	}
	return s
}

func (s *Spawner) Items() []*Item { return s.items }

func (s *Spawner) ActiveCandy(kind string) int { return s.candyActive[kind] }
func (s *Spawner) ActiveBatteries() int        { return s.batteryActive }
func (s *Spawner) CandyPool() *Pool            { return s.candy }
func (s *Spawner) BatteryPool() *Pool          { return s.battery }
func (s *Spawner) PendingRespawns() int        { return len(s.candyQueue) + len(s.batteryQueue) }

// FillInitial spawns the starting stock for every kind.
func (s *Spawner) FillInitial() {
	n := min(s.cfg.CandyCap, s.cfg.InitialCandy)
	for _, k := range s.cfg.CandyKinds {
		for i := 0; i < n; i++ {
			if !s.SpawnCandy(k) {
				break
			}
		}
	}
	nb := min(s.cfg.BatteryCap, s.cfg.InitialBattery)
	for i := 0; i < nb; i++ {
		if !s.SpawnBattery() {
			break
		}
	}
}

func (s *Spawner) SpawnCandy(kind string) bool {
	if s.candyActive[kind] >= s.cfg.CandyCap {
		return false
	}
	y := 1
	if s.yield != nil {
		y = max(1, s.yield(kind))
	}
	if !s.place(s.candy, kind, y) {
		return false
	}
	s.candyActive[kind]++
	return true
}

func (s *Spawner) SpawnBattery() bool {
	if s.batteryActive >= s.cfg.BatteryCap {
		return false
	}
	if !s.place(s.battery, KindBattery, 1) {
		return false
	}
	s.batteryActive++
	return true
}

// place takes a free position from pool. It fails only when every available
// position is blocked.
func (s *Spawner) place(pool *Pool, kind string, yield int) bool {
	pos, ok := pool.pick(s.rng, func(p geom.Vec2) bool { return !s.isBlocked(p) })
	if !ok {
		return false
	}
	s.nextID++
	s.items = append(s.items, &Item{ID: s.nextID, Kind: kind, Pos: pos, Yield: yield})
	return true
}

func (s *Spawner) itemRect(pos geom.Vec2) geom.Rect {
	return geom.Centered(pos, s.cfg.ItemSize, s.cfg.ItemSize)
}

func (s *Spawner) isBlocked(pos geom.Vec2) bool {
	r := s.itemRect(pos)
	if s.blocked != nil && s.blocked(pos, r) {
		return true
	}
	for _, it := range s.items {
		if r.Overlaps(s.itemRect(it.Pos)) {
			return true
		}
	}
	return false
}

// Collect removes it from the world, frees its position and, when enabled,
// queues a respawn at nowMs plus the kind's delay.
func (s *Spawner) Collect(it *Item, nowMs int64) bool {
	idx := -1
	for i, x := range s.items {
		if x == it {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	if it.IsBattery() {
		s.batteryActive = max(0, s.batteryActive-1)
		s.battery.release(it.Pos)
		if s.cfg.BatteryRespawns {
			s.batteryQueue = append(s.batteryQueue, nowMs+s.cfg.BatteryDelayMs)
		}
		return true
	}
	s.candyActive[it.Kind] = max(0, s.candyActive[it.Kind]-1)
	s.candy.release(it.Pos)
	if s.cfg.CandyRespawns {
		s.candyQueue = append(s.candyQueue, respawn{at: nowMs + s.cfg.CandyDelayMs, kind: it.Kind})
	}
	return true
}

// Update fires every due respawn entry as a batch.
func (s *Spawner) Update(nowMs int64) {
	if s.cfg.CandyRespawns && len(s.candyQueue) > 0 {
		var due []respawn
		keep := s.candyQueue[:0]
		for _, e := range s.candyQueue {
			if e.at <= nowMs {
				due = append(due, e)
			} else {
				keep = append(keep, e)
			}
		}
		s.candyQueue = keep
		for _, e := range due {
			for n := 0; n < s.cfg.CandyBatch && s.SpawnCandy(e.kind); n++ {
			}
		}
	}
	if s.cfg.BatteryRespawns && len(s.batteryQueue) > 0 {
		due := 0
		keep := s.batteryQueue[:0]
		for _, at := range s.batteryQueue {
			if at <= nowMs {
				due++
			} else {
				keep = append(keep, at)
			}
		}
		s.batteryQueue = keep
		for i := 0; i < due; i++ {
			n := 0
			for n < s.cfg.BatteryBatch && s.SpawnBattery() {
				n++
			}
			if n == 0 {
				break
			}
		}
	}
}

// RefreshForNewDay drops pending respawns, rebuilds pools and counts from the
// items still lying around, then tops every kind up to its initial target.
func (s *Spawner) RefreshForNewDay() {
	s.candyQueue = s.candyQueue[:0]
	s.batteryQueue = s.batteryQueue[:0]
	s.candy.Reset()
	s.battery.Reset()
	s.candyActive = map[string]int{}
	s.batteryActive = 0
	for _, it := range s.items {
		if it.IsBattery() {
			s.batteryActive++
			s.battery.take(it.Pos)
		} else {
			s.candyActive[it.Kind]++
			s.candy.take(it.Pos)
		}
	}
	n := min(s.cfg.CandyCap, s.cfg.InitialCandy)
	for _, k := range s.cfg.CandyKinds {
		for i := s.candyActive[k]; i < n; i++ {
			if !s.SpawnCandy(k) {
				break
			}
		}
	}
	nb := min(s.cfg.BatteryCap, s.cfg.InitialBattery)
	for i := s.batteryActive; i < nb; i++ {
		if !s.SpawnBattery() {
			break
		}
	}
}

// Overlapping returns the items whose rectangles overlap r, oldest first.
func (s *Spawner) Overlapping(r geom.Rect) []*Item {
	var out []*Item
	for _, it := range s.items {
		if r.Overlaps(s.itemRect(it.Pos)) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
