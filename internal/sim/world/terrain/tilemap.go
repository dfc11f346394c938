// Package terrain loads the static map and derives the spatial field the
// simulation runs on: world bounds, the safe zone, wall segments and spawn
// position pools.
package terrain

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lafriks/go-tiled"
)

const TileSafe = "safe"

type TileRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// TileMap is the static map description in tile units.
type TileMap struct {
	Width         int        `json:"width"`
	Height        int        `json:"height"`
	Tiles         [][]string `json:"tiles"`
	SafeCenter    [2]int     `json:"safe_zone_center"`
	SafeRadius    int        `json:"safe_zone_radius"`
	SafeRect      *TileRect  `json:"safe_zone_rect,omitempty"`
	CandySpawns   int        `json:"random_candy_spawns"`
	BatterySpawns int        `json:"random_battery_spawns"`
}

// Load picks the decoder by extension: .tmx files go through go-tiled,
// everything else is read as JSON.
func Load(path string) (*TileMap, error) {
	if strings.EqualFold(filepath.Ext(path), ".tmx") {
		return LoadTMX(path)
	}
	return LoadJSON(path)
}

func LoadJSON(path string) (*TileMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m TileMap
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return &m, nil
}

// LoadTMX reads a Tiled map. Tile kinds come from the "terrain" property of
// tileset tiles (falling back to the tile type); zone and spawn settings are
// map properties named like the JSON fields, with _x/_y suffixes for the
// center and safe_zone_x/_y/_width/_height for an explicit rectangle.
func LoadTMX(path string) (*TileMap, error) {
	tm, err := tiled.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	m := &TileMap{Width: tm.Width, Height: tm.Height}

	prop := func(name string) string { return "" }
	if tm.Properties != nil {
		prop = tm.Properties.GetString
	}
	num := func(name string) int {
		n, _ := strconv.Atoi(strings.TrimSpace(prop(name)))
		return n
	}
	m.SafeCenter = [2]int{num("safe_zone_center_x"), num("safe_zone_center_y")}
	m.SafeRadius = num("safe_zone_radius")
	m.CandySpawns = num("random_candy_spawns")
	m.BatterySpawns = num("random_battery_spawns")
	if w, h := num("safe_zone_width"), num("safe_zone_height"); w > 0 && h > 0 {
		m.SafeRect = &TileRect{X: num("safe_zone_x"), Y: num("safe_zone_y"), Width: w, Height: h}
	}

	var layer *tiled.Layer
	for _, l := range tm.Layers {
		if strings.EqualFold(l.Name, "terrain") {
			layer = l
			break
		}
	}
	if layer == nil && len(tm.Layers) > 0 {
		layer = tm.Layers[0]
	}
	m.Tiles = make([][]string, m.Height)
	for y := 0; y < m.Height; y++ {
		m.Tiles[y] = make([]string, m.Width)
		for x := 0; x < m.Width; x++ {
			m.Tiles[y][x] = "grass"
			if layer == nil {
				continue
			}
			i := y*m.Width + x
			if i >= len(layer.Tiles) {
				continue
			}
			if kind := tileKind(layer.Tiles[i]); kind != "" {
				m.Tiles[y][x] = kind
			}
		}
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return m, nil
}

func tileKind(lt *tiled.LayerTile) string {
	if lt == nil || lt.Nil || lt.Tileset == nil {
		return ""
	}
	for _, t := range lt.Tileset.Tiles {
		if t.ID != lt.ID {
			continue
		}
		if t.Properties != nil {
			if v := t.Properties.GetString("terrain"); v != "" {
				return v
			}
		}
		return t.Type
	}
	return ""
}

func (m *TileMap) validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("map size must be positive, got %dx%d", m.Width, m.Height)
	}
	if m.SafeRect == nil && m.SafeRadius < 0 {
		return fmt.Errorf("safe_zone_radius must be >= 0")
	}
	if r := m.SafeRect; r != nil && (r.Width <= 0 || r.Height <= 0) {
		m.SafeRect = nil
	}
	return nil
}

// SafeTileRect is the safe zone in tiles: the explicit rectangle, or the
// square around the center clipped to the map.
func (m *TileMap) SafeTileRect() TileRect {
	if m.SafeRect != nil {
		return *m.SafeRect
	}
	r := max(0, m.SafeRadius)
	cx, cy := m.SafeCenter[0], m.SafeCenter[1]
	left, top := max(0, cx-r), max(0, cy-r)
	return TileRect{
		X:      left,
		Y:      top,
		Width:  min(m.Width-left, 2*r+1),
		Height: min(m.Height-top, 2*r+1),
	}
}

func (m *TileMap) insideSafeTile(tx, ty int) bool {
	r := m.SafeTileRect()
	return tx >= r.X && tx < r.X+r.Width && ty >= r.Y && ty < r.Y+r.Height
}

func (m *TileMap) TileAt(tx, ty int) string {
	if ty < 0 || ty >= len(m.Tiles) || tx < 0 || tx >= len(m.Tiles[ty]) {
		return ""
	}
	return m.Tiles[ty][tx]
}
