package terrain

import (
	"math"
	"math/rand"

	"candysurvival.ai/internal/sim/world/logic/geom"
)

// Field is the pixel-space view of a TileMap. It is immutable once built.
type Field struct {
	Map      *TileMap
	TileSize float64

	World      geom.Rect // whole map
	Movement   geom.Rect // where entity centers may go
	SafeTiles  TileRect
	Safe       geom.Rect
	SafeCenter geom.Vec2
	Walls      []geom.Rect
}

func NewField(m *TileMap, tileSize int, wallThicknessTiles float64) *Field {
	ts := float64(tileSize)
	f := &Field{Map: m, TileSize: ts}
	f.World = geom.Rect{W: float64(m.Width) * ts, H: float64(m.Height) * ts}
	half := float64(tileSize / 2)
	f.Movement = geom.Rect{X: half, Y: half, W: f.World.W - 2*half, H: f.World.H - 2*half}
	f.SafeTiles = m.SafeTileRect()
	f.Safe = geom.Rect{
		X: float64(f.SafeTiles.X) * ts,
		Y: float64(f.SafeTiles.Y) * ts,
		W: float64(f.SafeTiles.Width) * ts,
		H: float64(f.SafeTiles.Height) * ts,
	}
	f.SafeCenter = f.Safe.Center()
	f.Walls = f.buildWalls(wallThicknessTiles)
	return f
}

// buildWalls lays four segments along the safe zone's center lines, from each
// map edge up to the zone.
func (f *Field) buildWalls(thicknessTiles float64) []geom.Rect {
	t := math.Max(1, math.Floor(thicknessTiles*f.TileSize))
	cx, cy := math.Round(f.SafeCenter.X), math.Round(f.SafeCenter.Y)
	gapX := math.Round(f.Safe.W/2 + t/2)
	gapY := math.Round(f.Safe.H/2 + t/2)

	var out []geom.Rect
	add := func(r geom.Rect) {
		if r.W > 0 && r.H > 0 {
			out = append(out, r)
		}
	}
	add(geom.Rect{X: cx - t/2, Y: 0, W: t, H: cy - gapY})
	add(geom.Rect{X: cx - t/2, Y: cy + gapY, W: t, H: f.World.H - (cy + gapY)})
	add(geom.Rect{X: 0, Y: cy - t/2, W: cx - gapX, H: t})
	add(geom.Rect{X: cx + gapX, Y: cy - t/2, W: f.World.W - (cx + gapX), H: t})
	return out
}

func (f *Field) TileCenter(tx, ty int) geom.Vec2 {
	ts := int(f.TileSize)
	return geom.V(float64(tx*ts+ts/2), float64(ty*ts+ts/2))
}

// SafeAnchor maps a fractional position inside the safe zone to a tile center.
func (f *Field) SafeAnchor(fx, fy float64) geom.Vec2 {
	s := f.SafeTiles
	tx := int(math.Round(float64(s.X) + fx*float64(max(0, s.Width-1))))
	ty := int(math.Round(float64(s.Y) + fy*float64(max(0, s.Height-1))))
	return f.TileCenter(tx, ty)
}

// InsideSafe reports whether p lies in the safe zone grown by buffer.
func (f *Field) InsideSafe(p geom.Vec2, buffer float64) bool {
	r := f.Safe.Inflate(buffer)
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

func (f *Field) InWorld(p geom.Vec2) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= f.World.W && p.Y <= f.World.H
}

func (f *Field) ClampToWorld(p geom.Vec2) geom.Vec2 {
	return geom.ClampPoint(p, f.Movement)
}

func (f *Field) HitsWall(r geom.Rect) bool {
	for _, w := range f.Walls {
		if r.Overlaps(w) {
			return true
		}
	}
	return false
}

// InitialBorderHalf is the night border's starting half extents: large enough
// to cover the whole map from the safe center, plus a buffer.
func (f *Field) InitialBorderHalf(bufferTiles float64) (hw, hh float64) {
	buf := math.Max(0, bufferTiles) * f.TileSize
	c := f.SafeCenter
	hw = math.Max(f.Safe.W/2, math.Max(c.X, f.World.W-c.X)) + buf
	hh = math.Max(f.Safe.H/2, math.Max(c.Y, f.World.H-c.Y)) + buf
	return hw, hh
}

// RandomPositions samples up to n distinct tile centers, optionally outside
// the safe zone, with a bounded number of attempts.
func (f *Field) RandomPositions(n int, avoidSafe bool, rng *rand.Rand) []geom.Vec2 {
	var out []geom.Vec2
	seen := map[geom.Vec2]bool{}
	attempts := max(2000, n*10)
	for i := 0; i < attempts && len(out) < n; i++ {
		tx := rng.Intn(f.Map.Width)
		ty := rng.Intn(f.Map.Height)
		if avoidSafe && f.Map.insideSafeTile(tx, ty) {
			continue
		}
		p := f.TileCenter(tx, ty)
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// SpawnPools draws the candy and battery spawn positions from one sample so
// the two pools never share a tile. Candy is filled first.
func (f *Field) SpawnPools(candyN, batteryN int, rng *rand.Rand) (candy, battery []geom.Vec2) {
	all := f.RandomPositions(max(0, candyN)+max(0, batteryN), true, rng)
	n := min(len(all), max(0, candyN))
	return all[:n:n], all[n:]
}
