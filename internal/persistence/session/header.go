// Package session stores the header that identifies a recorded session:
// everything needed to rebuild its world for replay.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"candysurvival.ai/internal/sim/catalogs"
	"candysurvival.ai/internal/sim/tuning"
)

const (
	HeaderFile    = "session.json"
	HeaderVersion = 1
)

type Header struct {
	Version   int       `json:"version"`
	SessionID string    `json:"session_id"`
	Seed      int64     `json:"seed"`
	StartedAt time.Time `json:"started_at"`

	ConfigDir  string `json:"config_dir"`
	TuningPath string `json:"tuning_path,omitempty"`
	MapPath    string `json:"map_path"`

	// Tuning is the effective settings object after defaults were applied.
	Tuning       tuning.Tuning `json:"tuning"`
	TuningDigest string        `json:"tuning_digest"`

	MachinesDigest string `json:"machines_digest"`
	RecipesDigest  string `json:"recipes_digest"`
	EventsDigest   string `json:"events_digest"`
}

func NewHeader(id string, seed int64, tune tuning.Tuning, cats *catalogs.Catalogs) Header {
	h := Header{
		Version:      HeaderVersion,
		SessionID:    id,
		Seed:         seed,
		StartedAt:    time.Now().UTC(),
		Tuning:       tune,
		TuningDigest: tune.Digest(),
	}
	if cats != nil {
		h.MachinesDigest = cats.Machines.Digest
		h.RecipesDigest = cats.Recipes.Digest
		h.EventsDigest = cats.Events.Digest
	}
	return h
}

// CheckCatalogs reports the first catalog whose digest differs from the one
// recorded when the session started.
func (h Header) CheckCatalogs(cats *catalogs.Catalogs) error {
	for _, c := range []struct{ name, want, got string }{
		{"machines", h.MachinesDigest, cats.Machines.Digest},
		{"recipes", h.RecipesDigest, cats.Recipes.Digest},
		{"events", h.EventsDigest, cats.Events.Digest},
	} {
		if c.want != "" && c.want != c.got {
			return fmt.Errorf("%s catalog changed: recorded=%s current=%s", c.name, c.want, c.got)
		}
	}
	return nil
}

// Write stores the header in dir, replacing any previous one atomically.
func Write(dir string, h Header) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, HeaderFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func Read(dir string) (Header, error) {
	var h Header
	path := filepath.Join(dir, HeaderFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return h, err
	}
	if err := json.Unmarshal(b, &h); err != nil {
		return h, fmt.Errorf("%s: %w", path, err)
	}
	if h.Version != HeaderVersion {
		return h, fmt.Errorf("%s: unsupported version %d", path, h.Version)
	}
	return h, nil
}
