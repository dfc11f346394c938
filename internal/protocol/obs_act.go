package protocol

// ACT (client -> server). Only the latest ACT received before a tick boundary
// is applied; move is a direction and is normalized by the server.
type ActMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Tick            uint64     `json:"tick"`
	Move            [2]float64 `json:"move"`
	Interact        bool       `json:"interact,omitempty"`
	Craft           string     `json:"craft,omitempty"`
	DiscardSlot     *int       `json:"discard_slot,omitempty"`
	InsertBattery   bool       `json:"insert_battery,omitempty"`
}

type ObsMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	SessionID       string `json:"session_id"`

	Clock     ClockObs       `json:"clock"`
	Player    PlayerObs      `json:"player"`
	Inventory []ItemStack    `json:"inventory"`
	Stockpile []ItemStack    `json:"stockpile"`
	Machines  []MachineObs   `json:"machines"`
	Holder    HolderObs      `json:"holder"`
	Border    [4]float64     `json:"border"`
	Items     []EntityObs    `json:"items"`
	Ghosts    []EntityObs    `json:"ghosts"`
	NPCs      []EntityObs    `json:"npcs"`
	Hunter    *EntityObs     `json:"hunter,omitempty"`
	Event     *EventObs      `json:"event,omitempty"`
	Radio     RadioObs       `json:"radio"`
	Messages  []MessageObs   `json:"messages"`
	Bubbles   []BubbleObs    `json:"bubbles,omitempty"`
	Cues      []string       `json:"cues,omitempty"`
	Outcome   *OutcomeObs    `json:"outcome,omitempty"`
	Results   []ActionResult `json:"results,omitempty"`
}

type ClockObs struct {
	Day      int     `json:"day"`
	Minutes  float64 `json:"minutes"`
	IsNight  bool    `json:"is_night"`
	Light    float64 `json:"light"`
	WorldExp int     `json:"world_exp"`
}

type PlayerObs struct {
	Pos    [2]float64 `json:"pos"`
	InSafe bool       `json:"in_safe"`
}

type ItemStack struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

type MachineObs struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Level         int    `json:"level"`
	NextCost      int    `json:"next_cost,omitempty"`
	UpgradedToday bool   `json:"upgraded_today,omitempty"`
	Neutral       bool   `json:"neutral,omitempty"`
}

type HolderObs struct {
	Value     int `json:"value"`
	Threshold int `json:"threshold"`
}

type EntityObs struct {
	ID   string     `json:"id"`
	Type string     `json:"type"`
	Pos  [2]float64 `json:"pos"`
	Mode string     `json:"mode,omitempty"`
	Item string     `json:"item,omitempty"`
}

type EventObs struct {
	Phase        string  `json:"phase"`
	Label        string  `json:"label,omitempty"`
	SecondsUntil float64 `json:"seconds_until,omitempty"`
}

type RadioObs struct {
	Batteries int  `json:"batteries"`
	LongHint  bool `json:"long_hint"`
}

type MessageObs struct {
	Text       string `json:"text"`
	Color      [3]int `json:"color"`
	DurationMs int64  `json:"duration_ms"`
}

// BubbleObs is a short-lived chat bubble above a prop or NPC.
type BubbleObs struct {
	EntityID string `json:"entity_id"`
	Text     string `json:"text"`
	Color    [3]int `json:"color"`
}

type OutcomeObs struct {
	Result string `json:"result"` // "WIN" or "LOSE"
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason"`
}

type ActionResult struct {
	Action  string `json:"action"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
