package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	persistlog "candysurvival.ai/internal/persistence/log"
	"candysurvival.ai/internal/persistence/session"
	"candysurvival.ai/internal/sim/catalogs"
	"candysurvival.ai/internal/sim/world"
	"candysurvival.ai/internal/sim/world/terrain"
)

func main() {
	var (
		sessionDir = flag.String("session", "", "session directory containing session.json and events-*.jsonl.zst")
		configDir  = flag.String("configs", "", "config directory override (default: the one recorded in session.json)")
		mapPath    = flag.String("map", "", "map file override (default: the one recorded in session.json)")
		toTick     = flag.Uint64("to_tick", 0, "stop after tick (inclusive, optional)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[replay] ", log.LstdFlags|log.Lmicroseconds)
	if strings.TrimSpace(*sessionDir) == "" {
		fmt.Fprintln(os.Stderr, "missing -session")
		os.Exit(2)
	}

	res, err := replaySession(replayOptions{
		SessionDir: *sessionDir,
		ConfigDir:  *configDir,
		MapPath:    *mapPath,
		ToTick:     *toTick,
	})
	if err != nil {
		logger.Fatalf("replay: %v", err)
	}
	logger.Printf("replay ok: session=%s checked=%d ticks last=%d files=%d", res.SessionID, res.Checked, res.LastTick, res.Files)
	if res.Outcome != nil {
		logger.Printf("outcome: win=%v code=%s day=%d reason=%q", res.Outcome.Win, res.Outcome.Code, res.Outcome.Day, res.Outcome.Reason)
	}
}

type replayOptions struct {
	SessionDir string
	ConfigDir  string
	MapPath    string
	ToTick     uint64
}

type replayResult struct {
	SessionID string
	Checked   uint64
	LastTick  uint64
	Files     int
	Outcome   *world.Outcome
}

var errStop = errors.New("stop")

// replaySession rebuilds the world from the session header and re-applies
// every recorded input, comparing the state digest after each tick.
func replaySession(opt replayOptions) (replayResult, error) {
	var res replayResult
	hdr, err := session.Read(opt.SessionDir)
	if err != nil {
		return res, err
	}
	res.SessionID = hdr.SessionID

	cfgDir := firstNonEmpty(opt.ConfigDir, hdr.ConfigDir)
	cats := catalogs.Defaults()
	if cfgDir != "" {
		if cats, err = catalogs.Load(cfgDir); err != nil {
			return res, fmt.Errorf("load catalogs: %w", err)
		}
	}
	if err := hdr.CheckCatalogs(cats); err != nil {
		return res, err
	}
	if d := hdr.Tuning.Digest(); hdr.TuningDigest != "" && d != hdr.TuningDigest {
		return res, fmt.Errorf("tuning digest mismatch: recorded=%s decoded=%s", hdr.TuningDigest, d)
	}

	tm, err := terrain.Load(firstNonEmpty(opt.MapPath, hdr.MapPath))
	if err != nil {
		return res, fmt.Errorf("load map: %w", err)
	}

	w, err := world.New(world.WorldConfig{
		SessionID: hdr.SessionID,
		Seed:      hdr.Seed,
		Tuning:    hdr.Tuning,
		Map:       tm,
	}, cats)
	if err != nil {
		return res, err
	}

	files, err := persistlog.Files(opt.SessionDir, "events")
	if err != nil {
		return res, err
	}
	if len(files) == 0 {
		return res, fmt.Errorf("no events files found in %s", opt.SessionDir)
	}
	res.Files = len(files)

	dt := 1 / float64(w.TickRateHz())
	wantDtMs := int64(math.Round(dt * 1000))
	for _, path := range files {
		err := persistlog.ReadJSONL(path, func(line []byte) error {
			var e world.TickLogEntry
			if err := json.Unmarshal(line, &e); err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			if opt.ToTick != 0 && e.Tick > opt.ToTick {
				return errStop
			}
			if e.DtMs != wantDtMs {
				return fmt.Errorf("tick %d: recorded dt=%dms, replay runs at %dms", e.Tick, e.DtMs, wantDtMs)
			}
			tick, digest := w.StepOnce(dt, e.Input)
			if tick != e.Tick {
				return fmt.Errorf("tick mismatch: recorded=%d replayed=%d", e.Tick, tick)
			}
			if digest != e.Digest {
				return fmt.Errorf("digest mismatch at tick %d: recorded=%s replayed=%s", e.Tick, e.Digest, digest)
			}
			res.Checked++
			res.LastTick = tick
			return nil
		})
		if errors.Is(err, errStop) {
			break
		}
		if err != nil {
			return res, err
		}
	}
	res.Outcome = w.Outcome()
	return res, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
