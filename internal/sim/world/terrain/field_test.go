package terrain

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func testMap() *TileMap {
	m := &TileMap{Width: 40, Height: 30, SafeCenter: [2]int{20, 15}, SafeRadius: 3, CandySpawns: 10, BatterySpawns: 4}
	m.Tiles = make([][]string, m.Height)
	for y := range m.Tiles {
		m.Tiles[y] = make([]string, m.Width)
	}
	return m
}

func TestSafeTileRect_FromCenterAndRadius(t *testing.T) {
	r := testMap().SafeTileRect()
	if r != (TileRect{X: 17, Y: 12, Width: 7, Height: 7}) {
		t.Fatalf("unexpected safe rect %+v", r)
	}
}

func TestNewField_WallsLeaveSafeGap(t *testing.T) {
	f := NewField(testMap(), 32, 1)
	if len(f.Walls) != 4 {
		t.Fatalf("expected 4 wall segments, got %d", len(f.Walls))
	}
	for _, w := range f.Walls {
		if w.Overlaps(f.Safe) {
			t.Fatalf("wall %+v overlaps safe zone %+v", w, f.Safe)
		}
	}
	if f.SafeCenter.X != 20*32+16 || f.SafeCenter.Y != 15*32+16 {
		t.Fatalf("unexpected safe center %+v", f.SafeCenter)
	}
}

func TestRandomPositions_AvoidSafeAndDistinct(t *testing.T) {
	f := NewField(testMap(), 32, 1)
	got := f.RandomPositions(50, true, rand.New(rand.NewSource(3)))
	if len(got) != 50 {
		t.Fatalf("expected 50 positions, got %d", len(got))
	}
	seen := map[[2]float64]bool{}
	for _, p := range got {
		if f.Safe.Contains(p) {
			t.Fatalf("position %+v inside safe zone", p)
		}
		k := [2]float64{p.X, p.Y}
		if seen[k] {
			t.Fatalf("duplicate position %+v", p)
		}
		seen[k] = true
	}
}

func TestInitialBorderHalf_CoversMap(t *testing.T) {
	f := NewField(testMap(), 32, 1)
	hw, hh := f.InitialBorderHalf(1)
	if hw != f.SafeCenter.X+32 || hh != f.SafeCenter.Y+32 {
		t.Fatalf("unexpected extents %v,%v", hw, hh)
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	body := `{"width":4,"height":3,"tiles":[["grass","grass","grass","grass"],["grass","safe","safe","grass"],["grass","grass","grass","grass"]],
	"safe_zone_center":[1,1],"safe_zone_radius":0,"safe_zone_rect":{"x":1,"y":1,"width":2,"height":1},
	"random_candy_spawns":5,"random_battery_spawns":1}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.SafeTileRect() != (TileRect{X: 1, Y: 1, Width: 2, Height: 1}) {
		t.Fatalf("unexpected safe rect %+v", m.SafeTileRect())
	}
	if m.TileAt(2, 1) != TileSafe || m.CandySpawns != 5 {
		t.Fatalf("unexpected map %+v", m)
	}
}

func TestLoadTMX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.tmx")
	body := `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="4" height="3" tilewidth="32" tileheight="32" infinite="0" nextlayerid="2" nextobjectid="1">
 <properties>
  <property name="safe_zone_center_x" type="int" value="1"/>
  <property name="safe_zone_center_y" type="int" value="1"/>
  <property name="safe_zone_radius" type="int" value="1"/>
  <property name="random_candy_spawns" type="int" value="6"/>
  <property name="random_battery_spawns" type="int" value="2"/>
 </properties>
 <tileset firstgid="1" name="terrain" tilewidth="32" tileheight="32" tilecount="2" columns="2">
  <tile id="0">
   <properties><property name="terrain" value="grass"/></properties>
  </tile>
  <tile id="1">
   <properties><property name="terrain" value="safe"/></properties>
  </tile>
 </tileset>
 <layer id="1" name="terrain" width="4" height="3">
  <data encoding="csv">
1,1,1,1,
1,2,2,1,
1,1,1,1
</data>
 </layer>
</map>
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Width != 4 || m.Height != 3 {
		t.Fatalf("unexpected size %dx%d", m.Width, m.Height)
	}
	if m.SafeCenter != [2]int{1, 1} || m.SafeRadius != 1 || m.CandySpawns != 6 || m.BatterySpawns != 2 {
		t.Fatalf("unexpected properties %+v", m)
	}
	if m.TileAt(1, 1) != TileSafe || m.TileAt(0, 0) != "grass" {
		t.Fatalf("unexpected tiles %v", m.Tiles)
	}
}

func TestLoad_ShippedMap(t *testing.T) {
	m, err := Load(filepath.Join("..", "..", "..", "..", "configs", "maps", "map01.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r := m.SafeTileRect()
	if m.TileAt(r.X, r.Y) != TileSafe || m.TileAt(0, 0) == TileSafe {
		t.Fatalf("safe tiles do not match safe rect %+v", r)
	}
	f := NewField(m, 32, 1)
	if !f.InsideSafe(f.SafeCenter, 0) {
		t.Fatalf("safe center outside safe zone")
	}
}

func TestSpawnPools_Disjoint(t *testing.T) {
	m, err := Load(filepath.Join("..", "..", "..", "..", "configs", "maps", "map01.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := NewField(m, 32, 1)
	for seed := int64(0); seed < 50; seed++ {
		candy, battery := f.SpawnPools(m.CandySpawns, m.BatterySpawns, rand.New(rand.NewSource(seed)))
		if len(candy) != m.CandySpawns || len(battery) != m.BatterySpawns {
			t.Fatalf("seed %d: got %d candy / %d battery positions", seed, len(candy), len(battery))
		}
		used := map[[2]float64]bool{}
		for _, p := range candy {
			used[[2]float64{p.X, p.Y}] = true
		}
		for _, p := range battery {
			if used[[2]float64{p.X, p.Y}] {
				t.Fatalf("seed %d: battery position %+v is also a candy position", seed, p)
			}
		}
	}
}

func TestSpawnPools_ShortSampleFillsCandyFirst(t *testing.T) {
	m := &TileMap{Width: 2, Height: 2, SafeCenter: [2]int{0, 0}, SafeRadius: 0, CandySpawns: 2, BatterySpawns: 2}
	m.Tiles = [][]string{{TileSafe, "grass"}, {"grass", "grass"}}
	f := NewField(m, 32, 0)
	candy, battery := f.SpawnPools(2, 2, rand.New(rand.NewSource(1)))
	if len(candy) != 2 || len(battery) != 1 {
		t.Fatalf("expected 2 candy and 1 battery, got %d/%d", len(candy), len(battery))
	}
}
