package resources

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"candysurvival.ai/internal/sim/world/logic/geom"
)

func grid(n int, x0 float64) []geom.Vec2 {
	out := make([]geom.Vec2, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, geom.V(x0+float64(i)*64, 100))
	}
	return out
}

func testConfig() Config {
	return Config{
		CandyKinds:     []string{"red", "blue"},
		CandyCap:       3,
		InitialCandy:   2,
		CandyDelayMs:   1000,
		CandyBatch:     2,
		BatteryCap:     1,
		InitialBattery: 1,
		BatteryDelayMs: 5000,
		BatteryBatch:   1,
		ItemSize:       20,
	}
}

func newSpawner(cfg Config, blocked Blocked) *Spawner {
	return NewSpawner(cfg, grid(10, 0), grid(4, 2000), rand.New(rand.NewSource(7)), blocked, func(string) int { return 2 })
}

func TestSpawnerRespectsCaps(t *testing.T) {
	s := newSpawner(testConfig(), nil)
	for i := 0; i < 10; i++ {
		s.SpawnCandy("red")
		require.LessOrEqual(t, s.ActiveCandy("red"), 3)
	}
	require.Equal(t, 3, s.ActiveCandy("red"))
	require.True(t, s.SpawnBattery())
	require.False(t, s.SpawnBattery())
	require.Equal(t, 1, s.ActiveBatteries())
}

func TestSpawnerPoolUnionIsPreserved(t *testing.T) {
	s := newSpawner(testConfig(), nil)
	s.FillInitial()
	require.Len(t, s.Items(), 5)
	require.Equal(t, 10-4, s.CandyPool().Available())
	require.Equal(t, 3, s.BatteryPool().Available())

	it := s.Items()[0]
	require.True(t, s.Collect(it, 0))
	require.False(t, s.Collect(it, 0))
	require.Equal(t, 10-3, s.CandyPool().Available())
}

func TestSpawnerCandyYieldFromMachine(t *testing.T) {
	s := newSpawner(testConfig(), nil)
	require.True(t, s.SpawnCandy("blue"))
	require.Equal(t, 2, s.Items()[0].Yield)
	require.True(t, s.SpawnBattery())
	require.Equal(t, 1, s.Items()[1].Yield)
}

func TestSpawnerSkipsBlockedPositions(t *testing.T) {
	// Only the position at x=192 is free.
	blocked := func(p geom.Vec2, _ geom.Rect) bool { return p.X != 192 }
	s := newSpawner(testConfig(), blocked)
	require.True(t, s.SpawnCandy("red"))
	require.Equal(t, 192.0, s.Items()[0].Pos.X)
	require.False(t, s.SpawnCandy("red"))
	require.Equal(t, 9, s.CandyPool().Available())
}

func TestSpawnerFindsLastFreePositionForAnySeed(t *testing.T) {
	blocked := func(p geom.Vec2, _ geom.Rect) bool { return p.X != 128 }
	for seed := int64(0); seed < 200; seed++ {
		s := NewSpawner(testConfig(), grid(4, 0), grid(1, 2000), rand.New(rand.NewSource(seed)), blocked, nil)
		require.True(t, s.SpawnCandy("red"), "seed %d", seed)
		require.Equal(t, 128.0, s.Items()[0].Pos.X)
		require.Equal(t, 3, s.CandyPool().Available())

		require.False(t, s.SpawnCandy("red"))
		require.Equal(t, 3, s.CandyPool().Available())
	}
}

func TestSpawnerFillInitialExhaustsPool(t *testing.T) {
	cfg := testConfig()
	cfg.CandyKinds = []string{"red", "blue", "green", "purple", "gold"}
	cfg.InitialCandy = 3
	s := NewSpawner(cfg, grid(7, 0), grid(1, 2000), rand.New(rand.NewSource(1)), nil, nil)
	s.FillInitial()

	require.Equal(t, 3, s.ActiveCandy("red"))
	require.Equal(t, 3, s.ActiveCandy("blue"))
	require.Equal(t, 1, s.ActiveCandy("green"))
	require.Zero(t, s.ActiveCandy("purple"))
	require.Zero(t, s.ActiveCandy("gold"))
	require.Zero(t, s.CandyPool().Available())
	require.False(t, s.SpawnCandy("gold"))
	require.Equal(t, 1, s.ActiveBatteries())
}

func TestSpawnerRespawnQueue(t *testing.T) {
	cfg := testConfig()
	cfg.CandyRespawns = true
	s := newSpawner(cfg, nil)
	require.True(t, s.SpawnCandy("red"))
	s.Collect(s.Items()[0], 100)
	require.Equal(t, 1, s.PendingRespawns())

	s.Update(1099)
	require.Equal(t, 0, s.ActiveCandy("red"))
	s.Update(1100)
	require.Equal(t, 2, s.ActiveCandy("red"))
	require.Equal(t, 0, s.PendingRespawns())
}

func TestSpawnerNoRespawnWhenDisabled(t *testing.T) {
	s := newSpawner(testConfig(), nil)
	require.True(t, s.SpawnBattery())
	s.Collect(s.Items()[0], 0)
	require.Equal(t, 0, s.PendingRespawns())
	s.Update(1_000_000)
	require.Equal(t, 0, s.ActiveBatteries())
}

func TestSpawnerRefreshForNewDay(t *testing.T) {
	cfg := testConfig()
	cfg.CandyRespawns = true
	s := newSpawner(cfg, nil)
	require.True(t, s.SpawnCandy("red"))
	require.True(t, s.SpawnCandy("red"))
	require.True(t, s.SpawnCandy("red"))
	s.Collect(s.Items()[0], 0)

	s.RefreshForNewDay()
	require.Equal(t, 0, s.PendingRespawns())
	require.Equal(t, 2, s.ActiveCandy("red"))
	require.Equal(t, 2, s.ActiveCandy("blue"))
	require.Equal(t, 1, s.ActiveBatteries())
	require.Equal(t, 10-4, s.CandyPool().Available())
}
