package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"candysurvival.ai/internal/protocol"
)

func compile(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	p := filepath.Join("..", "..", "schemas", name)
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

func validateJSON(t *testing.T, s *jsonschema.Schema, raw string) error {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("sample: %v", err)
	}
	return s.Validate(v)
}

// validateMsg round-trips a Go message through JSON so the schema sees
// exactly what the server writes.
func validateMsg(t *testing.T, s *jsonschema.Schema, msg any) {
	t.Helper()
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := validateJSON(t, s, string(b)); err != nil {
		t.Fatalf("validate %s: %v", b, err)
	}
}

func TestSchemas_ValidateSamples(t *testing.T) {
	helloSchema := compile(t, "hello.schema.json")
	welcomeSchema := compile(t, "welcome.schema.json")
	obsSchema := compile(t, "obs.schema.json")
	actSchema := compile(t, "act.schema.json")
	subSchema := compile(t, "subscribe.schema.json")

	validateMsg(t, helloSchema, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, PlayerName: "p1", MaxQueue: 4})

	validateMsg(t, welcomeSchema, protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       "3f0c7d1e-0000-4000-8000-000000000000",
		PlayerName:      "p1",
		WorldParams: protocol.WorldParams{
			TickRateHz: 20,
			TileSize:   32,
			WorldW:     1280,
			WorldH:     960,
			SafeZone:   [4]float64{544, 384, 224, 224},
			Seed:       1337,
		},
		Catalogs: protocol.CatalogDigests{RecipesDigest: "deadbeef", EventsDigest: "deadbeef", MachinesDigest: "deadbeef"},
	})

	slot := 3
	validateMsg(t, actSchema, protocol.ActMsg{Type: protocol.TypeAct, ProtocolVersion: protocol.Version, Tick: 12, Move: [2]float64{0.6, -0.8}, DiscardSlot: &slot})
	validateMsg(t, subSchema, protocol.SubscribeMsg{Type: protocol.TypeSubscribe, ProtocolVersion: protocol.Version, EveryNTicks: 5})

	if err := validateJSON(t, obsSchema, `{
	  "type":"OBS",
	  "protocol_version":"1.0",
	  "tick":42,
	  "session_id":"s1",
	  "clock":{"day":1,"minutes":402.5,"is_night":false,"light":1,"world_exp":0},
	  "player":{"pos":[656,496],"in_safe":true},
	  "inventory":[{"item":"battery","count":1}],
	  "stockpile":[{"item":"red","count":3},{"item":"green","count":0}],
	  "machines":[{"id":"machine_red","kind":"red","level":1,"next_cost":5}],
	  "holder":{"value":0,"threshold":5},
	  "border":[0,0,1280,960],
	  "items":[{"id":"item-1","type":"candy","pos":[100,100],"item":"red"}],
	  "ghosts":[],
	  "npcs":[{"id":"npc-1","type":"npc","pos":[300,200],"mode":"wander"}],
	  "hunter":{"id":"hunter","type":"hunter","pos":[400,300],"mode":"chase"},
	  "event":{"phase":"HINTED","label":"Stink Bomb","seconds_until":12.5},
	  "radio":{"batteries":0,"long_hint":false},
	  "messages":[{"text":"A new day begins.","color":[200,255,200],"duration_ms":4000}],
	  "cues":["radio"],
	  "results":[{"action":"interact","ok":false,"code":"E_OUT_OF_RANGE","message":"Nothing to interact with."}]
	}`); err != nil {
		t.Fatalf("validate obs: %v", err)
	}
}

func TestSchemas_RejectBadMessages(t *testing.T) {
	actSchema := compile(t, "act.schema.json")
	obsSchema := compile(t, "obs.schema.json")
	helloSchema := compile(t, "hello.schema.json")

	bad := []struct {
		name   string
		schema *jsonschema.Schema
		raw    string
	}{
		{"act move arity", actSchema, `{"type":"ACT","protocol_version":"1.0","tick":1,"move":[1]}`},
		{"act unknown field", actSchema, `{"type":"ACT","protocol_version":"1.0","tick":1,"move":[0,0],"jump":true}`},
		{"act negative slot", actSchema, `{"type":"ACT","protocol_version":"1.0","tick":1,"move":[0,0],"discard_slot":-1}`},
		{"hello wrong version", helloSchema, `{"type":"HELLO","protocol_version":"0.9","player_name":"p"}`},
		{"obs bad outcome", obsSchema, `{"type":"OBS","protocol_version":"1.0","tick":1,"session_id":"s",
		  "clock":{"day":1,"minutes":0,"is_night":false,"light":1,"world_exp":0},
		  "player":{"pos":[0,0],"in_safe":true},"machines":[],"holder":{"value":0,"threshold":5},
		  "border":[0,0,1,1],"radio":{"batteries":0,"long_hint":false},
		  "outcome":{"result":"DRAW","reason":"?"}}`},
	}
	for _, tc := range bad {
		if err := validateJSON(t, tc.schema, tc.raw); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
