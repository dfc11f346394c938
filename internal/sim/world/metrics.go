package world

// WorldMetrics is a point-in-time view published after every tick so the
// HTTP side can read it without touching world state.
type WorldMetrics struct {
	Tick        uint64      `json:"tick"`
	Day         int         `json:"day"`
	IsNight     bool        `json:"is_night"`
	Connected   bool        `json:"connected"`
	Observers   int         `json:"observers"`
	Ghosts      int         `json:"ghosts"`
	Items       int         `json:"items"`
	EventPhase  string      `json:"event_phase"`
	StepMS      float64     `json:"step_ms"`
	QueueDepths QueueDepths `json:"queue_depths"`
	Finished    bool        `json:"finished"`
}

type QueueDepths struct {
	Inbox int `json:"inbox"`
	Join  int `json:"join"`
	Leave int `json:"leave"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	m, _ := w.metrics.Load().(WorldMetrics)
	return m
}

func (w *World) publishMetrics(stepMS float64) {
	w.metrics.Store(WorldMetrics{
		Tick:       w.tick.Load(),
		Day:        w.clock.Day,
		IsNight:    w.isNight,
		Connected:  w.playerID != "",
		Observers:  len(w.observers),
		Ghosts:     len(w.ghosts.List),
		Items:      len(w.spawner.Items()),
		EventPhase: w.events.Phase().String(),
		StepMS:     stepMS,
		QueueDepths: QueueDepths{
			Inbox: len(w.inbox),
			Join:  len(w.join),
			Leave: len(w.leave),
		},
		Finished: w.outcome != nil,
	})
}
