package catalogs

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// AnyCounter marks an event that accepts any counter item.
const AnyCounter = "any"

type Catalogs struct {
	Candies  CandyCatalog
	Machines MachineCatalog
	Recipes  RecipeCatalog
	Events   EventCatalog
}

type CandyCatalog struct {
	// Kinds lists every candy kind with a machine, neutral kind last.
	Kinds   []string
	Display map[string]string
	Neutral string
}

// DisplayName maps a candy kind to its player-facing flavour name.
func (c CandyCatalog) DisplayName(kind string) string {
	if n, ok := c.Display[kind]; ok {
		return n
	}
	return kind
}

type MachineCatalog struct {
	Defs   []MachineDef
	Levels []LevelDef
	Digest string
}

type MachineDef struct {
	ID      string     `json:"id"`
	Kind    string     `json:"kind"`
	Display string     `json:"display"`
	Neutral bool       `json:"neutral,omitempty"`
	Anchor  [2]float64 `json:"anchor"` // fraction of the safe zone
}

type LevelDef struct {
	Level       int     `json:"level"`
	Cost        int     `json:"cost"`
	BonusChance float64 `json:"bonus_chance"`
}

type machinesFile struct {
	Machines []MachineDef `json:"machines"`
	Levels   []LevelDef   `json:"levels"`
}

type RecipeCatalog struct {
	Names  []string
	ByName map[string]RecipeDef
	Digest string
}

type RecipeDef struct {
	Name   string         `json:"name"`
	Inputs map[string]int `json:"inputs"`
}

type EventCatalog struct {
	Defs   []EventDef
	Digest string
}

type EventDef struct {
	Name          string `json:"name"`
	CounterItem   string `json:"counter_item"`
	CounterAmount int    `json:"counter_amount,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
}

// RequiresAny reports whether any counter item resolves the event.
func (d EventDef) RequiresAny() bool { return d.CounterItem == AnyCounter }

// Label is the headline form of the event name: "self_deprecation" -> "Self Deprecation".
func (d EventDef) Label() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	words := strings.Fields(strings.ReplaceAll(d.Name, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// DefaultCounterItems are always accepted against wildcard events.
var DefaultCounterItems = []string{"Clothes Pin", "Paper Ship", "Dollhouse", "Umbrella"}

// CounterItems merges explicit items, the defaults and every concrete event
// requirement, preserving first-seen order.
func (c EventCatalog) CounterItems(explicit []string) []string {
	seen := map[string]bool{}
	var out []string
	push := func(item string) {
		if item == "" || item == AnyCounter || seen[item] {
			return
		}
		seen[item] = true
		out = append(out, item)
	}
	for _, it := range explicit {
		push(it)
	}
	for _, it := range DefaultCounterItems {
		push(it)
	}
	for _, d := range c.Defs {
		if !d.RequiresAny() {
			push(d.CounterItem)
		}
	}
	return out
}

// Load reads machines.json, recipes.json and events/*.json from configDir.
// Missing files fall back to the built-in defaults.
func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadMachines(filepath.Join(configDir, "machines.json"), &c.Machines); err != nil {
		return nil, err
	}
	if err := loadRecipes(filepath.Join(configDir, "recipes.json"), &c.Recipes); err != nil {
		return nil, err
	}
	if err := loadEvents(filepath.Join(configDir, "events"), &c.Events); err != nil {
		return nil, err
	}
	c.Candies = candiesFrom(c.Machines.Defs)
	return &c, nil
}

// Defaults returns the built-in catalogs without touching the filesystem.
func Defaults() *Catalogs {
	c := &Catalogs{
		Machines: MachineCatalog{Defs: defaultMachines(), Levels: defaultLevels()},
		Recipes:  recipesFrom(defaultRecipes()),
		Events:   EventCatalog{Defs: DefaultEvents(2)},
	}
	b, _ := json.Marshal(machinesFile{Machines: c.Machines.Defs, Levels: c.Machines.Levels})
	c.Machines.Digest = sha256Hex(b)
	b, _ = json.Marshal(defaultRecipes())
	c.Recipes.Digest = sha256Hex(b)
	b, _ = json.Marshal(c.Events.Defs)
	c.Events.Digest = sha256Hex(b)
	c.Candies = candiesFrom(c.Machines.Defs)
	return c
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func candiesFrom(defs []MachineDef) CandyCatalog {
	cc := CandyCatalog{Display: map[string]string{}}
	for _, d := range defs {
		if d.Neutral {
			cc.Neutral = d.Kind
		} else {
			cc.Kinds = append(cc.Kinds, d.Kind)
		}
		if d.Display != "" {
			cc.Display[d.Kind] = d.Display
		}
	}
	if cc.Neutral != "" {
		cc.Kinds = append(cc.Kinds, cc.Neutral)
	}
	return cc
}

func loadMachines(path string, out *MachineCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			*out = Defaults().Machines
			return nil
		}
		return err
	}
	out.Digest = sha256Hex(raw)

	var f machinesFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("machines.json: %w", err)
	}
	seen := map[string]bool{}
	neutrals := 0
	for _, d := range f.Machines {
		if d.ID == "" || d.Kind == "" {
			return fmt.Errorf("machines.json: machine missing id or kind")
		}
		if seen[d.ID] {
			return fmt.Errorf("machines.json: duplicate machine %q", d.ID)
		}
		seen[d.ID] = true
		if d.Neutral {
			neutrals++
		}
	}
	if neutrals > 1 {
		return fmt.Errorf("machines.json: at most one neutral machine")
	}
	for _, l := range f.Levels {
		if l.Level < 2 || l.Cost < 0 || l.BonusChance < 0 || l.BonusChance > 1 {
			return fmt.Errorf("machines.json: bad level entry %+v", l)
		}
	}
	if len(f.Machines) == 0 {
		f.Machines = defaultMachines()
	}
	if len(f.Levels) == 0 {
		f.Levels = defaultLevels()
	}
	sort.Slice(f.Levels, func(i, j int) bool { return f.Levels[i].Level < f.Levels[j].Level })
	out.Defs = f.Machines
	out.Levels = f.Levels
	return nil
}

func loadRecipes(path string, out *RecipeCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			*out = Defaults().Recipes
			return nil
		}
		return err
	}

	var defs []RecipeDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("recipes.json: %w", err)
	}
	for _, r := range defs {
		if r.Name == "" {
			return fmt.Errorf("recipes.json: empty name")
		}
		if len(r.Inputs) == 0 {
			return fmt.Errorf("recipes.json: %s has no inputs", r.Name)
		}
	}
	*out = recipesFrom(defs)
	out.Digest = sha256Hex(raw)
	return nil
}

func recipesFrom(defs []RecipeDef) RecipeCatalog {
	rc := RecipeCatalog{ByName: map[string]RecipeDef{}}
	for _, r := range defs {
		if _, dup := rc.ByName[r.Name]; !dup {
			rc.Names = append(rc.Names, r.Name)
		}
		rc.ByName[r.Name] = r
	}
	return rc
}

func loadEvents(dir string, out *EventCatalog) error {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		if _, statErr := os.Stat(dir); statErr != nil && os.IsNotExist(statErr) {
			*out = Defaults().Events
			return nil
		}
		return err
	}
	sort.Strings(files)

	var concat bytes.Buffer
	seen := map[string]bool{}
	for _, p := range files {
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		concat.Write(b)
		concat.WriteByte('\n')

		var ev EventDef
		if err := json.Unmarshal(b, &ev); err != nil {
			return fmt.Errorf("event %s: %w", filepath.Base(p), err)
		}
		if ev.Name == "" || ev.CounterItem == "" {
			return fmt.Errorf("event %s: missing name or counter_item", filepath.Base(p))
		}
		if seen[ev.Name] {
			return fmt.Errorf("event %s: duplicate name %q", filepath.Base(p), ev.Name)
		}
		seen[ev.Name] = true
		if ev.CounterAmount <= 0 {
			ev.CounterAmount = 1
		}
		out.Defs = append(out.Defs, ev)
	}
	if len(out.Defs) == 0 {
		*out = Defaults().Events
		return nil
	}
	out.Digest = sha256Hex(concat.Bytes())
	return nil
}
