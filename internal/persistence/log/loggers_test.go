package log

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"candysurvival.ai/internal/protocol"
	"candysurvival.ai/internal/sim/world"
)

func TestTickLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)
	in := &protocol.ActMsg{Type: protocol.TypeAct, ProtocolVersion: protocol.Version, Move: [2]float64{1, 0}}
	require.NoError(t, l.WriteTick(world.TickLogEntry{Tick: 1, DtMs: 50, Input: in, Digest: "aa"}))
	require.NoError(t, l.WriteTick(world.TickLogEntry{Tick: 2, DtMs: 50, Digest: "bb"}))
	require.NoError(t, l.Close())

	files, err := Files(dir, "events")
	require.NoError(t, err)
	require.Len(t, files, 1)

	var got []world.TickLogEntry
	require.NoError(t, ReadJSONL(files[0], func(line []byte) error {
		var e world.TickLogEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return err
		}
		got = append(got, e)
		return nil
	}))
	require.Len(t, got, 2)
	require.Equal(t, uint64(1), got[0].Tick)
	require.Equal(t, [2]float64{1, 0}, got[0].Input.Move)
	require.Nil(t, got[1].Input)
	require.Equal(t, "bb", got[1].Digest)
}

func TestJSONLZstdWriter_RotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "messages")
	at := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return at }
	require.NoError(t, w.Write(world.Message{Tick: 1, Text: "Day 1 begins!"}))
	at = at.Add(2 * time.Minute)
	require.NoError(t, w.Write(world.Message{Tick: 2, Text: "Night falls. Stay alert!"}))
	require.NoError(t, w.Close())

	for _, name := range []string{"messages-2026-03-01-10.jsonl.zst", "messages-2026-03-01-11.jsonl.zst"} {
		n := 0
		require.NoError(t, ReadJSONL(filepath.Join(dir, name), func([]byte) error { n++; return nil }))
		require.Equal(t, 1, n, name)
	}
}
