package catalogs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFilesUseDefaults(t *testing.T) {
	c, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Machines.Defs) != 5 || len(c.Machines.Levels) != 4 {
		t.Fatalf("expected default machines, got %d defs %d levels", len(c.Machines.Defs), len(c.Machines.Levels))
	}
	if c.Candies.Neutral != "candy_purple" {
		t.Fatalf("expected neutral candy_purple, got %q", c.Candies.Neutral)
	}
	if got := c.Candies.Kinds[len(c.Candies.Kinds)-1]; got != "candy_purple" {
		t.Fatalf("expected neutral kind last, got %q", got)
	}
	if c.Candies.DisplayName("candy_green") != "Sour" {
		t.Fatalf("unexpected display name %q", c.Candies.DisplayName("candy_green"))
	}
	if len(c.Recipes.Names) != 4 || c.Recipes.ByName["Umbrella"].Inputs["candy_purple"] != 2 {
		t.Fatalf("unexpected recipes: %+v", c.Recipes.ByName)
	}
	if c.Events.Digest == "" || c.Recipes.Digest == "" || c.Machines.Digest == "" {
		t.Fatalf("expected digests on defaults")
	}
}

func TestLoad_EventsDirectory(t *testing.T) {
	dir := t.TempDir()
	evDir := filepath.Join(dir, "events")
	if err := os.MkdirAll(evDir, 0o755); err != nil {
		t.Fatal(err)
	}
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(evDir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("a_flood.json", `{"name":"flood","counter_item":"Bucket"}`)
	write("b_gloom.json", `{"name":"gloom","counter_item":"any","counter_amount":3}`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Events.Defs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(c.Events.Defs))
	}
	if c.Events.Defs[0].CounterAmount != 1 {
		t.Fatalf("expected counter amount default 1, got %d", c.Events.Defs[0].CounterAmount)
	}
	items := c.Events.CounterItems([]string{"Kite"})
	want := []string{"Kite", "Clothes Pin", "Paper Ship", "Dollhouse", "Umbrella", "Bucket"}
	if len(items) != len(want) {
		t.Fatalf("expected %v, got %v", want, items)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, items)
		}
	}
}

func TestLoad_BadRecipeFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "recipes.json"), []byte(`[{"name":""}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected error for empty recipe name")
	}
}

func TestEventLabel(t *testing.T) {
	d := EventDef{Name: "self_deprecation"}
	if got := d.Label(); got != "Self Deprecation" {
		t.Fatalf("expected Self Deprecation, got %q", got)
	}
}

func TestLoad_ShippedConfigs(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "..", "configs"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := Defaults()
	if len(c.Machines.Defs) != len(d.Machines.Defs) || len(c.Machines.Levels) != len(d.Machines.Levels) {
		t.Fatalf("shipped machines drifted from defaults")
	}
	for i, l := range d.Machines.Levels {
		if c.Machines.Levels[i] != l {
			t.Fatalf("level %d: got %+v want %+v", i, c.Machines.Levels[i], l)
		}
	}
	for _, name := range d.Recipes.Names {
		if _, ok := c.Recipes.ByName[name]; !ok {
			t.Fatalf("recipe %q missing from configs", name)
		}
	}
	if len(c.Events.Defs) != len(d.Events.Defs) {
		t.Fatalf("expected %d events, got %d", len(d.Events.Defs), len(c.Events.Defs))
	}
}
