// Package machines holds the candy machines, their level table, the neutral
// holder and the world progression counter.
package machines

import (
	"fmt"
	"math/rand"

	"candysurvival.ai/internal/protocol"
	"candysurvival.ai/internal/sim/catalogs"
	"candysurvival.ai/internal/sim/world/feature/economy/stockpile"
)

type LevelTable struct {
	Costs    map[int]int
	Bonus    map[int]float64
	MaxLevel int
}

// NewLevelTable builds the table; the max level is the highest of the listed
// levels and victoryLevel.
func NewLevelTable(levels []catalogs.LevelDef, victoryLevel int) LevelTable {
	t := LevelTable{Costs: map[int]int{}, Bonus: map[int]float64{}, MaxLevel: max(1, victoryLevel)}
	for _, l := range levels {
		t.Costs[l.Level] = l.Cost
		t.Bonus[l.Level] = l.BonusChance
		t.MaxLevel = max(t.MaxLevel, l.Level)
	}
	return t
}

type Machine struct {
	ID            string
	Kind          string // candy kind produced and paid for upgrades
	Display       string
	Neutral       bool
	Level         int
	UpgradedToday bool

	table *LevelTable
}

// NextUpgradeCost returns the cost of reaching Level+1.
func (m *Machine) NextUpgradeCost() (int, bool) {
	if m.Neutral || m.Level >= m.table.MaxLevel {
		return 0, false
	}
	c, ok := m.table.Costs[m.Level+1]
	return c, ok
}

func (m *Machine) BonusChance() float64 { return m.table.Bonus[m.Level] }

// Yield is how many units one pickup of this machine's candy is worth.
func (m *Machine) Yield() int { return max(1, m.Level) }

// IncreaseLevel raises the level by up to n and returns the applied amount.
func (m *Machine) IncreaseLevel(n int) int {
	applied := min(max(0, n), m.table.MaxLevel-m.Level)
	m.Level += applied
	return applied
}

func (m *Machine) DecreaseLevel(n int) int {
	applied := min(max(0, n), m.Level-1)
	m.Level -= applied
	return applied
}

type UpgradeResult struct {
	OK     bool
	Code   string
	Reason string
}

// TryUpgrade pays the next level's cost from s. A failed attempt changes
// nothing.
func (m *Machine) TryUpgrade(s *stockpile.Stockpile) UpgradeResult {
	if m.Neutral {
		return UpgradeResult{Code: protocol.ErrInvalidTransition, Reason: "Neutral machine cannot be upgraded manually."}
	}
	if m.Level >= m.table.MaxLevel {
		return UpgradeResult{Code: protocol.ErrInvalidTransition, Reason: fmt.Sprintf("%s machine is already at max level.", m.Display)}
	}
	cost, ok := m.table.Costs[m.Level+1]
	if !ok {
		return UpgradeResult{Code: protocol.ErrInvalidTransition, Reason: fmt.Sprintf("%s machine has no upgrade for Lv %d.", m.Display, m.Level+1)}
	}
	if !s.Consume(m.Kind, cost) {
		return UpgradeResult{Code: protocol.ErrUnaffordable, Reason: fmt.Sprintf("Need %d %s candy (have %d).", cost, m.Display, s.Amount(m.Kind))}
	}
	m.Level++
	m.UpgradedToday = true
	return UpgradeResult{OK: true, Reason: fmt.Sprintf("%s machine upgraded to Lv %d!", m.Display, m.Level)}
}

// Progression counts world exp and whether the current day saw an upgrade.
type Progression struct {
	ExpPerUpgrade int
	WorldExp      int
	upgradesToday int
}

func (p *Progression) RecordUpgrade() {
	p.WorldExp += p.ExpPerUpgrade
	p.upgradesToday++
}

// EndOfDay reports whether the day passed without upgrades and resets the count.
func (p *Progression) EndOfDay() (noUpgrades bool) {
	noUpgrades = p.upgradesToday == 0
	p.upgradesToday = 0
	return noUpgrades
}

// Holder accumulates neutral-machine pressure between Min and Max.
type Holder struct {
	Value     int
	Min, Max  int
	Threshold int
}

type HolderConfig struct {
	Threshold      int
	Min, Max       int
	NoUpgradeBonus int
	UpgradePenalty int
}

type Economy struct {
	Machines []*Machine
	Neutral  *Machine
	Table    LevelTable
	Holder   Holder
	Progress Progression

	holderCfg HolderConfig
	victory   int
	byKind    map[string]*Machine
	rng       *rand.Rand
}

func New(defs []catalogs.MachineDef, table LevelTable, holder HolderConfig, expPerUpgrade, victoryLevel int, rng *rand.Rand) *Economy {
	e := &Economy{
		Table:     table,
		Holder:    Holder{Min: holder.Min, Max: holder.Max, Threshold: max(1, holder.Threshold)},
		Progress:  Progression{ExpPerUpgrade: expPerUpgrade},
		holderCfg: holder,
		victory:   min(victoryLevel, table.MaxLevel),
		byKind:    map[string]*Machine{},
		rng:       rng,
	}
	for _, d := range defs {
		m := &Machine{ID: d.ID, Kind: d.Kind, Display: d.Display, Neutral: d.Neutral, Level: 1, table: &e.Table}
		if m.Neutral {
			m.Display = "Neutral"
			e.Neutral = m
		}
		e.Machines = append(e.Machines, m)
		e.byKind[d.Kind] = m
	}
	return e
}

func (e *Economy) ByKind(kind string) *Machine { return e.byKind[kind] }

func (e *Economy) ByID(id string) *Machine {
	for _, m := range e.Machines {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// TryUpgrade upgrades m and records world progress on success.
func (e *Economy) TryUpgrade(m *Machine, s *stockpile.Stockpile) UpgradeResult {
	r := m.TryUpgrade(s)
	if r.OK {
		e.Progress.RecordUpgrade()
	}
	return r
}

// Collect adds n units of kind to s, rolling the owning machine's bonus
// chance once per unit. It returns the total added and the bonus part.
func (e *Economy) Collect(s *stockpile.Stockpile, kind string, n int) (total, bonus int) {
	chance := 0.0
	if m := e.byKind[kind]; m != nil {
		chance = m.BonusChance()
	}
	for i := 0; i < n; i++ {
		total++
		if chance > 0 && e.rng.Float64() < chance {
			total++
			bonus++
		}
	}
	s.Add(kind, total)
	return total, bonus
}

// YieldFor is the per-pickup yield of a candy kind.
func (e *Economy) YieldFor(kind string) int {
	if m := e.byKind[kind]; m != nil {
		return m.Yield()
	}
	return 1
}

// ChangeLevel moves m by delta levels; positive changes optionally count as
// world progress. It returns the signed number of levels applied.
func (e *Economy) ChangeLevel(m *Machine, delta int, recordProgress bool) int {
	if m == nil || delta == 0 {
		return 0
	}
	if delta < 0 {
		return -m.DecreaseLevel(-delta)
	}
	n := m.IncreaseLevel(delta)
	if recordProgress {
		for i := 0; i < n; i++ {
			e.Progress.RecordUpgrade()
		}
	}
	return n
}

// HolderChange describes one holder adjustment.
type HolderChange struct {
	Steps int // neutral levels gained (+) or lost (-)
	Value int
}

// AdjustHolder adds delta to the holder, converting each full threshold into
// a neutral level change while the level allows, then clamps the remainder.
func (e *Economy) AdjustHolder(delta int) HolderChange {
	if e.Neutral == nil {
		return HolderChange{Value: e.Holder.Value}
	}
	h := &e.Holder
	v := h.Value + delta
	steps := 0
	for v >= h.Threshold && e.Neutral.Level < e.Table.MaxLevel {
		v -= h.Threshold
		steps += e.ChangeLevel(e.Neutral, 1, false)
	}
	for v <= -h.Threshold && e.Neutral.Level > 1 {
		v += h.Threshold
		steps += e.ChangeLevel(e.Neutral, -1, false)
	}
	h.Value = max(h.Min, min(h.Max, v))
	return HolderChange{Steps: steps, Value: h.Value}
}

// DayEnd is the economy side of a day rollover.
type DayEnd struct {
	NoUpgrades bool
	Delta      int
	Holder     HolderChange
}

// EndDay clears daily upgrade flags and applies the holder bonus (calm day)
// or penalty (any upgrade).
func (e *Economy) EndDay() DayEnd {
	for _, m := range e.Machines {
		m.UpgradedToday = false
	}
	calm := e.Progress.EndOfDay()
	delta := -e.holderCfg.UpgradePenalty
	if calm {
		delta = e.holderCfg.NoUpgradeBonus
	}
	out := DayEnd{NoUpgrades: calm, Delta: delta, Holder: HolderChange{Value: e.Holder.Value}}
	if delta != 0 {
		out.Holder = e.AdjustHolder(delta)
	}
	return out
}

// Winner returns the first machine at or above the victory level.
func (e *Economy) Winner() *Machine {
	for _, m := range e.Machines {
		if m.Level >= e.victory {
			return m
		}
	}
	return nil
}

func (e *Economy) VictoryLevel() int { return e.victory }
