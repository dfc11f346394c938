// Package indexdb keeps a queryable sqlite index of sessions, days and
// night events. The compressed tick logs stay the source of truth; the
// index may drop rows when it falls behind.
package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"candysurvival.ai/internal/sim/catalogs"
	"candysurvival.ai/internal/sim/tuning"
	"candysurvival.ai/internal/sim/world"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropSession atomic.Uint64
	dropDay     atomic.Uint64
	dropEvent   atomic.Uint64
	dropOutcome atomic.Uint64
}

type reqKind int

const (
	reqSession reqKind = iota + 1
	reqDay
	reqEvent
	reqOutcome
)

type req struct {
	kind reqKind

	session SessionRow
	day     DayRow
	event   EventRow
}

type SessionRow struct {
	ID        string `json:"id"`
	Seed      int64  `json:"seed"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Days      int    `json:"days"`
	Ticks     uint64 `json:"ticks"`
}

type DayRow struct {
	SessionID   string `json:"session_id"`
	Day         int    `json:"day"`
	StartedTick uint64 `json:"started_tick"`
	WorldExp    int    `json:"world_exp"`
	Holder      int    `json:"holder"`
}

type EventRow struct {
	SessionID string `json:"session_id"`
	Tick      uint64 `json:"tick"`
	Name      string `json:"name"`
	Success   bool   `json:"success"`
	Detail    string `json:"detail"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 262144),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			outcome TEXT,
			reason TEXT,
			days INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS days (
			session_id TEXT NOT NULL,
			day INTEGER NOT NULL,
			started_tick INTEGER NOT NULL,
			world_exp INTEGER NOT NULL,
			holder INTEGER NOT NULL,
			PRIMARY KEY (session_id, day)
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			session_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			name TEXT NOT NULL,
			success INTEGER NOT NULL,
			detail TEXT NOT NULL,
			PRIMARY KEY (session_id, tick)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_name ON events(name, success);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// enqueue never blocks the world loop; a full queue drops the row.
func (s *SQLiteIndex) enqueue(r req, drops *atomic.Uint64) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		drops.Add(1)
	}
}

func (s *SQLiteIndex) StartSession(id string, seed int64, startedAt time.Time) {
	s.enqueue(req{kind: reqSession, session: SessionRow{
		ID:        id,
		Seed:      seed,
		StartedAt: startedAt.UTC().Format(time.RFC3339Nano),
	}}, &s.dropSession)
}

func (s *SQLiteIndex) RecordDay(sessionID string, day int, tick uint64, worldExp, holder int) {
	s.enqueue(req{kind: reqDay, day: DayRow{SessionID: sessionID, Day: day, StartedTick: tick, WorldExp: worldExp, Holder: holder}}, &s.dropDay)
}

func (s *SQLiteIndex) RecordEvent(sessionID string, tick uint64, name string, success bool, detail string) {
	s.enqueue(req{kind: reqEvent, event: EventRow{SessionID: sessionID, Tick: tick, Name: name, Success: success, Detail: detail}}, &s.dropEvent)
}

func (s *SQLiteIndex) RecordOutcome(sessionID string, o world.Outcome) {
	result := "LOSE"
	if o.Win {
		result = "WIN"
	}
	s.enqueue(req{kind: reqOutcome, session: SessionRow{
		ID:      sessionID,
		EndedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Outcome: result,
		Reason:  o.Reason,
		Days:    o.Day,
		Ticks:   o.Tick,
	}}, &s.dropOutcome)
}

type Stats struct {
	QueueDepth    int    `json:"queue_depth"`
	QueueCapacity int    `json:"queue_capacity"`
	DropSession   uint64 `json:"drop_session_total"`
	DropDay       uint64 `json:"drop_day_total"`
	DropEvent     uint64 `json:"drop_event_total"`
	DropOutcome   uint64 `json:"drop_outcome_total"`
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:    len(s.ch),
		QueueCapacity: cap(s.ch),
		DropSession:   s.dropSession.Load(),
		DropDay:       s.dropDay.Load(),
		DropEvent:     s.dropEvent.Load(),
		DropOutcome:   s.dropOutcome.Load(),
	}
}

// UpsertCatalogs stores the catalogs and tuning a session runs with, so an
// index row can be matched to the data behind it.
func (s *SQLiteIndex) UpsertCatalogs(cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil || cats == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		v      any
	}
	rows := []kv{
		{"machines", cats.Machines.Digest, cats.Machines.Defs},
		{"levels", cats.Machines.Digest, cats.Machines.Levels},
		{"recipes", cats.Recipes.Digest, cats.Recipes.ByName},
		{"events", cats.Events.Digest, cats.Events.Defs},
		{"tuning", tune.Digest(), tune},
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		b, err := json.Marshal(r.v)
		if err != nil || r.digest == "" {
			continue
		}
		if _, err := stmt.Exec(r.name, r.digest, string(b), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertSession, _ := s.db.Prepare(`INSERT OR IGNORE INTO sessions(id,seed,started_at) VALUES(?,?,?)`)
	insertDay, _ := s.db.Prepare(`INSERT OR REPLACE INTO days(session_id,day,started_tick,world_exp,holder) VALUES(?,?,?,?,?)`)
	insertEvent, _ := s.db.Prepare(`INSERT OR REPLACE INTO events(session_id,tick,name,success,detail) VALUES(?,?,?,?,?)`)
	updateOutcome, _ := s.db.Prepare(`UPDATE sessions SET ended_at=?, outcome=?, reason=?, days=?, ticks=? WHERE id=?`)
	defer func() {
		for _, st := range []*sql.Stmt{insertSession, insertDay, insertEvent, updateOutcome} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) {
		if st == nil || tx == nil {
			return
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			_ = tx.Rollback()
			tx = nil
			return
		}
		opCount++
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqSession:
			exec(insertSession, r.session.ID, r.session.Seed, r.session.StartedAt)
		case reqDay:
			d := r.day
			exec(insertDay, d.SessionID, d.Day, int64(d.StartedTick), d.WorldExp, d.Holder)
		case reqEvent:
			e := r.event
			exec(insertEvent, e.SessionID, int64(e.Tick), e.Name, e.Success, e.Detail)
		case reqOutcome:
			o := r.session
			exec(updateOutcome, o.EndedAt, o.Outcome, o.Reason, o.Days, int64(o.Ticks), o.ID)
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}
	commit()
}
