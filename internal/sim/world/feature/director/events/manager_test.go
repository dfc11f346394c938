package events

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"candysurvival.ai/internal/sim/catalogs"
	"candysurvival.ai/internal/sim/world/feature/economy/inventory"
)

func single(def catalogs.EventDef, counters ...string) *Manager {
	return NewManager([]catalogs.EventDef{def}, counters, 45, 10)
}

func TestWildcardConsumesGreedilyInListedOrder(t *testing.T) {
	m := single(catalogs.EventDef{Name: "self_deprecation", CounterItem: catalogs.AnyCounter, CounterAmount: 2}, "A", "B")
	inv := inventory.New(3, 4, 5)
	inv.Add("A", 1)
	inv.Add("B", 2)

	m.BeginNight(0, 30_000, rand.New(rand.NewSource(1)))
	st := m.Update(30_000, inv)
	require.NotNil(t, st.Resolution)
	require.True(t, st.Resolution.Success)
	require.Equal(t, []Consumed{{Item: "A", Count: 1}, {Item: "B", Count: 1}}, st.Resolution.Consumed)
	require.Equal(t, 0, inv.Count("A"))
	require.Equal(t, 1, inv.Count("B"))
	require.Equal(t, "Event 'Self Deprecation' resolved thanks to A x1, B x1!", st.Resolution.Text)
	require.Equal(t, Inactive, m.Phase())
}

func TestWildcardFailsWithoutConsuming(t *testing.T) {
	m := single(catalogs.EventDef{Name: "self_deprecation", CounterItem: catalogs.AnyCounter, CounterAmount: 3}, "A", "B")
	inv := inventory.New(3, 4, 5)
	inv.Add("A", 1)
	inv.Add("B", 1)

	m.BeginNight(0, 1000, rand.New(rand.NewSource(1)))
	st := m.Update(1000, inv)
	require.NotNil(t, st.Resolution)
	require.False(t, st.Resolution.Success)
	require.Equal(t, "any counter items x3", st.Resolution.Detail)
	require.Equal(t, 1, inv.Count("A"))
	require.Equal(t, 1, inv.Count("B"))
}

func TestSpecificCounterItem(t *testing.T) {
	def := catalogs.EventDef{Name: "stink", CounterItem: "Clothes Pin"}
	m := single(def)
	inv := inventory.New(3, 4, 5)

	m.BeginNight(0, 1000, rand.New(rand.NewSource(1)))
	st := m.Update(1000, inv)
	require.False(t, st.Resolution.Success)
	require.Equal(t, "Event 'Stink' struck! Missing Clothes Pin x1.", st.Resolution.Text)

	inv.Add("Clothes Pin", 2)
	m.BeginNight(2000, 1000, rand.New(rand.NewSource(1)))
	st = m.Update(3000, inv)
	require.True(t, st.Resolution.Success)
	require.Equal(t, 1, inv.Count("Clothes Pin"))
}

func TestHintWindowAndPhases(t *testing.T) {
	m := single(catalogs.EventDef{Name: "crying", CounterItem: "Paper Ship"})
	inv := inventory.New(3, 4, 5)

	m.BeginNight(0, 30_000, rand.New(rand.NewSource(1)))
	require.Equal(t, Armed, m.Phase())
	at, ok := m.HintAtMs()
	require.True(t, ok)
	require.Equal(t, int64(20_000), at)

	require.Nil(t, m.Update(19_999, inv).Hint)
	st := m.Update(20_000, inv)
	require.NotNil(t, st.Hint)
	require.False(t, st.Hint.Long)
	require.Equal(t, "Radio: Incoming event Crying!", st.Hint.Text)
	require.Equal(t, Hinted, m.Phase())
	require.Nil(t, m.Update(20_500, inv).Hint)

	secs, ok := m.SecondsUntil(25_500)
	require.True(t, ok)
	require.Equal(t, 4, secs)
}

func TestLongHintIsClampedToNow(t *testing.T) {
	m := single(catalogs.EventDef{Name: "crying", CounterItem: "Paper Ship"})
	m.SetLongHint(true, 0)
	m.BeginNight(5_000, 30_000, rand.New(rand.NewSource(1)))
	at, ok := m.HintAtMs()
	require.True(t, ok)
	require.Equal(t, int64(5_000), at)

	st := m.Update(5_000, inventory.New(1, 1, 1))
	require.NotNil(t, st.Hint)
	require.True(t, st.Hint.Long)
}

func TestSetLongHintReschedulesPendingHint(t *testing.T) {
	m := single(catalogs.EventDef{Name: "crying", CounterItem: "Paper Ship"})
	m.BeginNight(0, 60_000, rand.New(rand.NewSource(1)))
	at, _ := m.HintAtMs()
	require.Equal(t, int64(50_000), at)
	m.SetLongHint(true, 1_000)
	at, _ = m.HintAtMs()
	require.Equal(t, int64(15_000), at)
}

func TestEndNightClearsWithoutResolving(t *testing.T) {
	m := single(catalogs.EventDef{Name: "stink", CounterItem: "Clothes Pin"})
	m.BeginNight(0, 1000, rand.New(rand.NewSource(1)))
	m.EndNight()
	require.Equal(t, Inactive, m.Phase())
	st := m.Update(5000, inventory.New(1, 1, 1))
	require.Nil(t, st.Hint)
	require.Nil(t, st.Resolution)
	_, ok := m.SecondsUntil(0)
	require.False(t, ok)
}

func TestNoDefinitionsKeepsNightQuiet(t *testing.T) {
	m := NewManager(nil, nil, 45, 10)
	m.BeginNight(0, 1000, rand.New(rand.NewSource(1)))
	require.Equal(t, Inactive, m.Phase())
}
