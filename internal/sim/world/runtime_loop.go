package world

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"candysurvival.ai/internal/protocol"
)

type observerClient struct {
	id          string
	out         chan []byte
	everyNTicks int
}

// Run drives the world on a fixed ticker until ctx ends or Stop is called.
// Only the latest ACT received between two ticks is applied.
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.tun.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	dt := 1 / float64(w.tun.TickRateHz)

	var pendingJoins []JoinRequest
	var pendingLeaves []string
	var latest *protocol.ActMsg

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-w.leave:
			pendingLeaves = append(pendingLeaves, id)
		case req := <-w.observerJoin:
			w.handleObserverJoin(req)
		case req := <-w.observerSub:
			w.handleObserverSubscribe(req)
		case id := <-w.observerLeave:
			w.handleObserverLeave(id)
		case env := <-w.inbox:
			if env.PlayerID != "" && env.PlayerID == w.playerID {
				act := env.Act
				latest = &act
			}
		case <-ticker.C:
			for _, id := range pendingLeaves {
				w.handleLeave(id)
			}
			for _, req := range pendingJoins {
				resp := w.handleJoin(req)
				if req.Resp != nil {
					req.Resp <- resp
				}
			}
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			if w.outcome != nil {
				continue
			}
			if w.playerID == "" {
				// The simulation waits for its player.
				latest = nil
				continue
			}
			w.stepAndPublish(dt, latest)
			latest = nil
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// StepOnce advances one tick with the same ordering, logging and publishing
// as Run. It is meant for replays and tests.
func (w *World) StepOnce(dt float64, act *protocol.ActMsg) (tick uint64, digest string) {
	return w.stepAndPublish(dt, act)
}

func (w *World) stepAndPublish(dt float64, act *protocol.ActMsg) (uint64, string) {
	start := time.Now()
	if act != nil {
		act = sanitizeAct(act)
	}
	prevTick, prevMs := w.tick.Load(), w.nowMs
	results := w.step(dt, act)
	tick := w.tick.Load()
	digest := w.stateDigest()

	if w.tickLogger != nil && tick != prevTick {
		_ = w.tickLogger.WriteTick(TickLogEntry{Tick: tick, DtMs: w.nowMs - prevMs, Input: act, Digest: digest})
	}

	obs := w.buildObs(results)
	if b, err := json.Marshal(obs); err == nil {
		if w.playerOut != nil {
			sendLatest(w.playerOut, b)
		}
		for _, o := range w.observers {
			if o.everyNTicks > 1 && tick%uint64(o.everyNTicks) != 0 && obs.Outcome == nil {
				continue
			}
			sendLatest(o.out, b)
		}
	}
	w.publishMetrics(float64(time.Since(start).Microseconds()) / 1000.0)
	return tick, digest
}

// sanitizeAct copies the action and zeroes a non-finite move.
func sanitizeAct(in *protocol.ActMsg) *protocol.ActMsg {
	act := *in
	for _, v := range act.Move {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			act.Move = [2]float64{}
			break
		}
	}
	return &act
}

func (w *World) handleJoin(req JoinRequest) JoinResponse {
	if w.outcome != nil {
		return JoinResponse{Code: protocol.ErrSessionEnd}
	}
	if w.playerID != "" {
		return JoinResponse{Code: protocol.ErrWorldBusy}
	}
	w.playerID = fmt.Sprintf("P%d", w.nextPID.Add(1))
	w.playerOut = req.Out
	return JoinResponse{PlayerID: w.playerID, Welcome: w.Welcome(req.Name)}
}

func (w *World) handleLeave(id string) {
	if id != "" && id == w.playerID {
		w.playerID = ""
		w.playerOut = nil
	}
}

func (w *World) handleObserverJoin(req ObserverJoinRequest) {
	if req.SessionID == "" || req.Out == nil {
		return
	}
	w.observers[req.SessionID] = &observerClient{id: req.SessionID, out: req.Out, everyNTicks: max(1, req.EveryNTicks)}
}

func (w *World) handleObserverSubscribe(req ObserverSubscribeRequest) {
	if o := w.observers[req.SessionID]; o != nil {
		o.everyNTicks = max(1, req.EveryNTicks)
	}
}

func (w *World) handleObserverLeave(id string) { delete(w.observers, id) }

// Welcome describes the fixed parameters of this session.
func (w *World) Welcome(name string) protocol.WelcomeMsg {
	s := w.field.Safe
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       w.cfg.SessionID,
		PlayerName:      name,
		WorldParams: protocol.WorldParams{
			TickRateHz: w.tun.TickRateHz,
			TileSize:   w.tun.TileSize,
			WorldW:     w.field.World.W,
			WorldH:     w.field.World.H,
			SafeZone:   [4]float64{s.X, s.Y, s.W, s.H},
			Seed:       w.cfg.Seed,
		},
		Catalogs: protocol.CatalogDigests{
			RecipesDigest:  w.cats.Recipes.Digest,
			EventsDigest:   w.cats.Events.Digest,
			MachinesDigest: w.cats.Machines.Digest,
			TuningDigest:   w.tun.Digest(),
		},
	}
}

func (w *World) Inbox() chan<- ActionEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest     { return w.join }
func (w *World) Leave() chan<- string         { return w.leave }

func (w *World) ObserverJoin() chan<- ObserverJoinRequest           { return w.observerJoin }
func (w *World) ObserverSubscribe() chan<- ObserverSubscribeRequest { return w.observerSub }
func (w *World) ObserverLeave() chan<- string                       { return w.observerLeave }

func (w *World) SetTickLogger(l TickLogger)       { w.tickLogger = l }
func (w *World) SetMessageLogger(l MessageLogger) { w.msgLogger = l }

// SetRecorder must be called before Run. The current day is recorded at once
// so the index always holds the opening day.
func (w *World) SetRecorder(r Recorder) {
	w.recorder = r
	if r != nil {
		r.RecordDay(w.cfg.SessionID, w.clock.Day, w.tick.Load(), w.econ.Progress.WorldExp, w.econ.Holder.Value)
	}
}

func (w *World) CurrentTick() uint64 { return w.tick.Load() }
func (w *World) SessionID() string   { return w.cfg.SessionID }
func (w *World) TickRateHz() int     { return w.tun.TickRateHz }

// Done is closed once the session has a win or lose outcome.
func (w *World) Done() <-chan struct{} { return w.done }

// Outcome is only safe to read after Done is closed or from the world goroutine.
func (w *World) Outcome() *Outcome { return w.outcome }

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
