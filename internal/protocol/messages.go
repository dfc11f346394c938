package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
	MaxQueue        int    `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	PlayerName      string         `json:"player_name"`
	WorldParams     WorldParams    `json:"world_params"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type WorldParams struct {
	TickRateHz int        `json:"tick_rate_hz"`
	TileSize   int        `json:"tile_size"`
	WorldW     float64    `json:"world_w"`
	WorldH     float64    `json:"world_h"`
	SafeZone   [4]float64 `json:"safe_zone"` // x, y, w, h in px
	Seed       int64      `json:"seed"`
}

type CatalogDigests struct {
	RecipesDigest  string `json:"recipes_digest"`
	EventsDigest   string `json:"events_digest"`
	MachinesDigest string `json:"machines_digest"`
	TuningDigest   string `json:"tuning_digest,omitempty"`
}

// SUBSCRIBE (observer -> server)
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	EveryNTicks     int    `json:"every_n_ticks,omitempty"`
}
