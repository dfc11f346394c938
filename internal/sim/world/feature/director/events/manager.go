// Package events schedules one random disaster per night, warns about it over
// the radio and resolves it against the player's counter items.
package events

import (
	"fmt"
	"math/rand"
	"strings"

	"candysurvival.ai/internal/sim/catalogs"
)

type Phase int

const (
	Inactive Phase = iota
	Armed
	Hinted
	// Resolving is held only while a due event is checked against the
	// inventory; Update always leaves the manager Inactive afterwards.
	Resolving
)

func (p Phase) String() string {
	switch p {
	case Armed:
		return "ARMED"
	case Hinted:
		return "HINTED"
	case Resolving:
		return "RESOLVING"
	default:
		return "INACTIVE"
	}
}

// CounterInventory is the part of the player's inventory an event consumes.
type CounterInventory interface {
	Count(item string) int
	Remove(item string, n int) bool
}

type Hint struct {
	Event catalogs.EventDef
	Long  bool
	Text  string
}

type Consumed struct {
	Item  string
	Count int
}

type Resolution struct {
	Event    catalogs.EventDef
	Success  bool
	Detail   string
	Consumed []Consumed
	Text     string
}

// Step is what a single Update produced; both fields are usually nil.
type Step struct {
	Hint       *Hint
	Resolution *Resolution
}

type Manager struct {
	defs         []catalogs.EventDef
	counterItems []string
	hintLongMs   int64
	hintShortMs  int64

	phase      Phase
	current    catalogs.EventDef
	deadlineMs int64
	hintAtMs   int64
	hintSet    bool
	longHint   bool
}

func NewManager(defs []catalogs.EventDef, counterItems []string, hintLongSec, hintShortSec float64) *Manager {
	return &Manager{
		defs:         append([]catalogs.EventDef(nil), defs...),
		counterItems: append([]string(nil), counterItems...),
		hintLongMs:   int64(hintLongSec * 1000),
		hintShortMs:  int64(hintShortSec * 1000),
	}
}

func (m *Manager) Phase() Phase           { return m.phase }
func (m *Manager) LongHint() bool         { return m.longHint }
func (m *Manager) CounterItems() []string { return m.counterItems }

func (m *Manager) Current() (catalogs.EventDef, bool) {
	return m.current, m.phase == Armed || m.phase == Hinted
}

func (m *Manager) DeadlineMs() (int64, bool) {
	return m.deadlineMs, m.phase == Armed || m.phase == Hinted
}

func (m *Manager) HintAtMs() (int64, bool) { return m.hintAtMs, m.hintSet }

// BeginNight picks a random event due delayMs after nowMs. With no
// definitions the night stays quiet.
func (m *Manager) BeginNight(nowMs, delayMs int64, rng *rand.Rand) {
	if len(m.defs) == 0 {
		m.EndNight()
		return
	}
	m.current = m.defs[rng.Intn(len(m.defs))]
	m.deadlineMs = nowMs + delayMs
	m.phase = Armed
	m.scheduleHint(nowMs)
}

// EndNight drops the scheduled event without resolving it.
func (m *Manager) EndNight() {
	m.phase = Inactive
	m.current = catalogs.EventDef{}
	m.deadlineMs = 0
	m.hintSet = false
}

// SetLongHint switches between the long and short warning window. A pending
// hint is rescheduled; one that already fired is not repeated.
func (m *Manager) SetLongHint(enabled bool, nowMs int64) {
	if m.longHint == enabled {
		return
	}
	m.longHint = enabled
	if m.phase == Armed {
		m.scheduleHint(nowMs)
	}
}

func (m *Manager) scheduleHint(nowMs int64) {
	window := m.hintShortMs
	if m.longHint {
		window = m.hintLongMs
	}
	at := max(nowMs, m.deadlineMs-window)
	m.hintAtMs = at
	m.hintSet = at < m.deadlineMs
}

// SecondsUntil is the whole seconds left before the deadline.
func (m *Manager) SecondsUntil(nowMs int64) (int, bool) {
	if m.phase != Armed && m.phase != Hinted {
		return 0, false
	}
	if m.deadlineMs <= nowMs {
		return 0, true
	}
	return int((m.deadlineMs - nowMs) / 1000), true
}

// Update fires the hint and then the resolution once their times pass.
func (m *Manager) Update(nowMs int64, inv CounterInventory) Step {
	var st Step
	if m.phase != Armed && m.phase != Hinted {
		return st
	}
	if m.hintSet && nowMs >= m.hintAtMs {
		st.Hint = &Hint{
			Event: m.current,
			Long:  m.longHint,
			Text:  fmt.Sprintf("Radio: Incoming event %s!", m.current.Label()),
		}
		m.hintSet = false
		m.phase = Hinted
	}
	if nowMs < m.deadlineMs {
		return st
	}
	m.phase = Resolving
	res := m.resolve(inv)
	if res.Success {
		res.Text = fmt.Sprintf("Event '%s' resolved thanks to %s!", res.Event.Label(), res.Detail)
	} else {
		res.Text = fmt.Sprintf("Event '%s' struck! Missing %s.", res.Event.Label(), res.Detail)
	}
	st.Resolution = &res
	m.EndNight()
	return st
}

func (m *Manager) resolve(inv CounterInventory) Resolution {
	ev := m.current
	need := max(1, ev.CounterAmount)
	res := Resolution{Event: ev}

	if ev.RequiresAny() {
		total := 0
		for _, it := range m.counterItems {
			total += inv.Count(it)
		}
		if total < need {
			res.Detail = fmt.Sprintf("any counter items x%d", need)
			return res
		}
		remaining := need
		for _, it := range m.counterItems {
			if remaining <= 0 {
				break
			}
			take := min(inv.Count(it), remaining)
			if take <= 0 {
				continue
			}
			if inv.Remove(it, take) {
				res.Consumed = append(res.Consumed, Consumed{Item: it, Count: take})
				remaining -= take
			}
		}
		res.Success = true
		res.Detail = describe(res.Consumed, need)
		return res
	}

	item := ev.CounterItem
	if item == "" {
		item = "counter item"
	}
	res.Detail = fmt.Sprintf("%s x%d", item, need)
	if inv.Count(item) < need || !inv.Remove(item, need) {
		return res
	}
	res.Success = true
	res.Consumed = []Consumed{{Item: item, Count: need}}
	return res
}

func describe(cs []Consumed, need int) string {
	if len(cs) == 0 {
		return fmt.Sprintf("counter items x%d", need)
	}
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, fmt.Sprintf("%s x%d", c.Item, c.Count))
	}
	return strings.Join(parts, ", ")
}
