package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"candysurvival.ai/internal/persistence/indexdb"
	persistlog "candysurvival.ai/internal/persistence/log"
	"candysurvival.ai/internal/persistence/session"
	"candysurvival.ai/internal/sim/catalogs"
	"candysurvival.ai/internal/sim/tuning"
	"candysurvival.ai/internal/sim/world"
	"candysurvival.ai/internal/sim/world/terrain"
	"candysurvival.ai/internal/transport/observer"
	"candysurvival.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		seed       = flag.Int64("seed", 0, "session seed (0 picks one from the clock)")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		mapPath    = flag.String("map", "", "map file, .json or .tmx (default: <configs>/maps/map01.json)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		disableDB  = flag.Bool("disable_db", false, "disable the session index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tp = ""
		tune = tuning.Defaults()
	}

	mp := strings.TrimSpace(*mapPath)
	if mp == "" {
		mp = filepath.Join(*configDir, "maps", "map01.json")
	}
	tm, err := terrain.Load(mp)
	if err != nil {
		logger.Fatalf("load map: %v", err)
	}

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	sessionID := uuid.NewString()
	sessionDir := filepath.Join(*dataDir, "sessions", sessionID)

	hdr := session.NewHeader(sessionID, s, tune, cats)
	hdr.ConfigDir = *configDir
	hdr.TuningPath = tp
	hdr.MapPath = mp
	if err := session.Write(sessionDir, hdr); err != nil {
		logger.Fatalf("write session header: %v", err)
	}

	w, err := world.New(world.WorldConfig{
		SessionID: sessionID,
		Seed:      s,
		Tuning:    tune,
		Map:       tm,
	}, cats)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}

	// Optional: read-model index (does not affect sim determinism).
	idx, err := openRuntimeIndex(*dataDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertCatalogs(cats, tune); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
		idx.StartSession(sessionID, s, hdr.StartedAt)
		w.SetRecorder(idx)
	}

	tickLog := persistlog.NewTickLogger(sessionDir)
	msgLog := persistlog.NewMessageLogger(sessionDir)
	defer tickLog.Close()
	defer msgLog.Close()
	w.SetTickLogger(tickLog)
	w.SetMessageLogger(messageFanout{log: logger, file: msgLog})

	ctx, cancel := signalContext()
	defer cancel()

	worldDone := make(chan struct{})
	go func() {
		defer close(worldDone)
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
		case <-w.Done():
			// Outcome is written by the world goroutine before Done closes.
			m := w.Metrics()
			logger.Printf("session %s finished at tick=%d day=%d", sessionID, m.Tick, m.Day)
		}
	}()

	obsSrv := observer.NewServer(w, log.New(os.Stdout, "[observer] ", log.LstdFlags|log.Lmicroseconds))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, sessionID, w.Metrics(), idx)
	})
	mux.HandleFunc("/v1/session", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(struct {
			SessionID string             `json:"session_id"`
			Tick      uint64             `json:"tick"`
			Metrics   world.WorldMetrics `json:"metrics"`
		}{sessionID, w.CurrentTick(), w.Metrics()})
	})
	mux.HandleFunc("/v1/observer/bootstrap", obsSrv.BootstrapHandler())
	mux.HandleFunc("/v1/observer/ws", obsSrv.WSHandler())
	mux.HandleFunc("/v1/ws", ws.NewServer(w, log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lmicroseconds)).Handler())
	if envBool("CS_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("session %s seed=%d dir=%s", sessionID, s, sessionDir)
	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
	// Loggers and the index close after the world loop stops writing to them.
	cancel()
	<-worldDone
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// messageFanout echoes gameplay messages to the process log and the
// compressed message log.
type messageFanout struct {
	log  *log.Logger
	file world.MessageLogger
}

func (m messageFanout) WriteMessage(msg world.Message) error {
	if m.log != nil {
		m.log.Printf("tick=%d %s", msg.Tick, msg.Text)
	}
	if m.file != nil {
		return m.file.WriteMessage(msg)
	}
	return nil
}

func writeMetrics(rw http.ResponseWriter, sessionID string, m world.WorldMetrics, idx *indexdb.SQLiteIndex) {
	gauge := func(name, help string) {
		fmt.Fprintf(rw, "# HELP %s %s\n", name, help)
		fmt.Fprintf(rw, "# TYPE %s gauge\n", name)
	}
	b := func(v bool) int {
		if v {
			return 1
		}
		return 0
	}

	gauge("candysurvival_tick", "Current simulation tick.")
	fmt.Fprintf(rw, "candysurvival_tick{session=%q} %d\n", sessionID, m.Tick)
	gauge("candysurvival_day", "Current day number.")
	fmt.Fprintf(rw, "candysurvival_day{session=%q} %d\n", sessionID, m.Day)
	gauge("candysurvival_night", "1 while it is night.")
	fmt.Fprintf(rw, "candysurvival_night{session=%q} %d\n", sessionID, b(m.IsNight))
	gauge("candysurvival_player_connected", "1 while a player is attached.")
	fmt.Fprintf(rw, "candysurvival_player_connected{session=%q} %d\n", sessionID, b(m.Connected))
	gauge("candysurvival_observers", "Connected observers.")
	fmt.Fprintf(rw, "candysurvival_observers{session=%q} %d\n", sessionID, m.Observers)
	gauge("candysurvival_ghosts", "Live ghosts.")
	fmt.Fprintf(rw, "candysurvival_ghosts{session=%q} %d\n", sessionID, m.Ghosts)
	gauge("candysurvival_items", "Collectible items on the ground.")
	fmt.Fprintf(rw, "candysurvival_items{session=%q} %d\n", sessionID, m.Items)
	gauge("candysurvival_event_phase", "Event manager phase (label carries the name).")
	fmt.Fprintf(rw, "candysurvival_event_phase{session=%q,phase=%q} 1\n", sessionID, m.EventPhase)
	gauge("candysurvival_finished", "1 once the session has an outcome.")
	fmt.Fprintf(rw, "candysurvival_finished{session=%q} %d\n", sessionID, b(m.Finished))

	gauge("candysurvival_queue_depth", "Channel backlog depth.")
	fmt.Fprintf(rw, "candysurvival_queue_depth{session=%q,queue=%q} %d\n", sessionID, "inbox", m.QueueDepths.Inbox)
	fmt.Fprintf(rw, "candysurvival_queue_depth{session=%q,queue=%q} %d\n", sessionID, "join", m.QueueDepths.Join)
	fmt.Fprintf(rw, "candysurvival_queue_depth{session=%q,queue=%q} %d\n", sessionID, "leave", m.QueueDepths.Leave)

	gauge("candysurvival_step_ms", "Last tick step duration in milliseconds.")
	fmt.Fprintf(rw, "candysurvival_step_ms{session=%q} %.3f\n", sessionID, m.StepMS)

	if idx == nil {
		return
	}
	st := idx.Stats()
	gauge("candysurvival_index_queue_depth", "Index writer backlog.")
	fmt.Fprintf(rw, "candysurvival_index_queue_depth %d\n", st.QueueDepth)
	fmt.Fprintf(rw, "# HELP candysurvival_index_dropped_total Index rows dropped under backlog.\n")
	fmt.Fprintf(rw, "# TYPE candysurvival_index_dropped_total counter\n")
	fmt.Fprintf(rw, "candysurvival_index_dropped_total{table=%q} %d\n", "sessions", st.DropSession)
	fmt.Fprintf(rw, "candysurvival_index_dropped_total{table=%q} %d\n", "days", st.DropDay)
	fmt.Fprintf(rw, "candysurvival_index_dropped_total{table=%q} %d\n", "events", st.DropEvent)
	fmt.Fprintf(rw, "candysurvival_index_dropped_total{table=%q} %d\n", "outcomes", st.DropOutcome)
}
