// Package inventory implements the player's fixed grid of item stacks.
package inventory

type Stack struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

func (s Stack) Empty() bool { return s.Item == "" || s.Count <= 0 }

type Inventory struct {
	rows, cols int
	maxStack   int
	slots      []Stack
}

func New(rows, cols, maxStack int) *Inventory {
	if rows <= 0 {
		rows = 1
	}
	if cols <= 0 {
		cols = 1
	}
	if maxStack <= 0 {
		maxStack = 1
	}
	return &Inventory{rows: rows, cols: cols, maxStack: maxStack, slots: make([]Stack, rows*cols)}
}

func (inv *Inventory) Rows() int     { return inv.rows }
func (inv *Inventory) Cols() int     { return inv.cols }
func (inv *Inventory) MaxStack() int { return inv.maxStack }

// Slots returns a copy of the grid in row-major order.
func (inv *Inventory) Slots() []Stack {
	out := make([]Stack, len(inv.slots))
	copy(out, inv.slots)
	return out
}

// Add places up to n units of item and returns how many did not fit.
// Partial stacks of the same item fill first, then empty slots in order.
func (inv *Inventory) Add(item string, n int) int {
	if item == "" || n <= 0 {
		return 0
	}
	for n > 0 {
		i := inv.partialStack(item)
		if i < 0 {
			i = inv.firstEmpty()
		}
		if i < 0 {
			break
		}
		s := &inv.slots[i]
		s.Item = item
		room := inv.maxStack - s.Count
		take := min(room, n)
		s.Count += take
		n -= take
	}
	return n
}

// CanAdd reports whether n units would fit without leftover.
func (inv *Inventory) CanAdd(item string, n int) bool {
	room := 0
	for _, s := range inv.slots {
		switch {
		case s.Empty():
			room += inv.maxStack
		case s.Item == item:
			room += inv.maxStack - s.Count
		}
		if room >= n {
			return true
		}
	}
	return room >= n
}

// Remove takes n units of item, draining the smallest stacks first. It fails
// without changes when fewer than n units are held.
func (inv *Inventory) Remove(item string, n int) bool {
	if n <= 0 {
		return true
	}
	if inv.Count(item) < n {
		return false
	}
	for n > 0 {
		best := -1
		for i, s := range inv.slots {
			if s.Item != item || s.Count <= 0 {
				continue
			}
			if best < 0 || s.Count < inv.slots[best].Count {
				best = i
			}
		}
		s := &inv.slots[best]
		take := min(s.Count, n)
		s.Count -= take
		n -= take
		if s.Count == 0 {
			*s = Stack{}
		}
	}
	return true
}

func (inv *Inventory) Count(item string) int {
	total := 0
	for _, s := range inv.slots {
		if s.Item == item {
			total += s.Count
		}
	}
	return total
}

func (inv *Inventory) Has(item string, n int) bool { return inv.Count(item) >= n }

// TakeRecipe removes every listed amount, or nothing when any is short.
func (inv *Inventory) TakeRecipe(recipe map[string]int) bool {
	for item, n := range recipe {
		if !inv.Has(item, n) {
			return false
		}
	}
	for item, n := range recipe {
		inv.Remove(item, n)
	}
	return true
}

func (inv *Inventory) IsFull() bool {
	return inv.firstEmpty() < 0
}

// ClearSlot empties slot i and returns what it held.
func (inv *Inventory) ClearSlot(i int) (Stack, bool) {
	if i < 0 || i >= len(inv.slots) || inv.slots[i].Empty() {
		return Stack{}, false
	}
	s := inv.slots[i]
	inv.slots[i] = Stack{}
	return s, true
}

func (inv *Inventory) partialStack(item string) int {
	for i, s := range inv.slots {
		if s.Item == item && s.Count > 0 && s.Count < inv.maxStack {
			return i
		}
	}
	return -1
}

func (inv *Inventory) firstEmpty() int {
	for i, s := range inv.slots {
		if s.Empty() {
			return i
		}
	}
	return -1
}
