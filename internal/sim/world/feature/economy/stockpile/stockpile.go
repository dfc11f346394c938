// Package stockpile is the player's candy store: a non-negative count per
// candy kind with all-or-nothing recipe consumption.
package stockpile

import "sort"

type Stockpile struct {
	counts map[string]int
}

func New(kinds []string) *Stockpile {
	s := &Stockpile{counts: make(map[string]int, len(kinds))}
	for _, k := range kinds {
		s.counts[k] = 0
	}
	return s
}

func (s *Stockpile) Amount(kind string) int { return s.counts[kind] }

func (s *Stockpile) Add(kind string, n int) {
	if kind == "" || n <= 0 {
		return
	}
	s.counts[kind] += n
}

func (s *Stockpile) AddBulk(amounts map[string]int) {
	for k, n := range amounts {
		s.Add(k, n)
	}
}

func (s *Stockpile) CanAfford(recipe map[string]int) bool {
	for k, n := range recipe {
		if n > 0 && s.counts[k] < n {
			return false
		}
	}
	return true
}

func (s *Stockpile) Consume(kind string, n int) bool {
	return s.ConsumeRecipe(map[string]int{kind: n})
}

// ConsumeRecipe deducts every amount in recipe, or nothing when any kind is
// short.
func (s *Stockpile) ConsumeRecipe(recipe map[string]int) bool {
	if !s.CanAfford(recipe) {
		return false
	}
	for k, n := range recipe {
		if n > 0 {
			s.counts[k] -= n
		}
	}
	return true
}

type Entry struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// Snapshot lists every kind in stable order.
func (s *Stockpile) Snapshot() []Entry {
	out := make([]Entry, 0, len(s.counts))
	for k, n := range s.counts {
		out = append(out, Entry{Kind: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}
