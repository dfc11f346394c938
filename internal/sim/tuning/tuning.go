package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DayStartHour = 6
	DayEndHour   = 20
)

type Tuning struct {
	TickRateHz int `yaml:"tick_rate_hz"`
	TileSize   int `yaml:"tile_size"`

	Clock     ClockTuning    `yaml:"clock"`
	Player    PlayerTuning   `yaml:"player"`
	World     WorldTuning    `yaml:"world"`
	Resources ResourceTuning `yaml:"resources"`
	Hazards   HazardTuning   `yaml:"hazards"`
	Economy   EconomyTuning  `yaml:"economy"`
	Events    EventTuning    `yaml:"events"`
	Radio     RadioTuning    `yaml:"radio"`
	Givers    GiverTuning    `yaml:"givers"`
	NPCs      NPCTuning      `yaml:"npcs"`
}

type ClockTuning struct {
	// DaylightDurationSec, when set, fixes the real-time length of 06:00-20:00
	// and overrides the multiplier pair.
	DaylightDurationSec      float64 `yaml:"daylight_duration_sec"`
	TimeSpeedMultiplier      float64 `yaml:"time_speed_multiplier"`
	TimeSpeedMultiplierBonus float64 `yaml:"time_speed_multiplier_bonus"`
	LightingTransitionSec    float64 `yaml:"lighting_transition_sec"`
	// BorderShrinkSec defaults to the night transition duration.
	BorderShrinkSec float64 `yaml:"border_shrink_sec"`
}

type PlayerTuning struct {
	Speed                    float64 `yaml:"speed"`
	Size                     float64 `yaml:"size"`
	InventoryRows            int     `yaml:"inventory_rows"`
	InventoryCols            int     `yaml:"inventory_cols"`
	InventoryMaxStack        int     `yaml:"inventory_max_stack"`
	InteractionRadiusTiles   float64 `yaml:"interaction_radius_tiles"`
	CraftingCloseRadiusTiles float64 `yaml:"crafting_close_radius_tiles"`
	InventoryFullCraftBlocks *bool   `yaml:"inventory_full_craft_blocks"`
}

type WorldTuning struct {
	WallThicknessTiles          float64 `yaml:"wall_thickness_tiles"`
	NightBorderStartBufferTiles float64 `yaml:"night_border_start_buffer_tiles"`
	PropSize                    float64 `yaml:"prop_size"`
	ItemSize                    float64 `yaml:"item_size"`
}

type ResourceTuning struct {
	CandyMaxPerType          int     `yaml:"candy_max_per_type"`
	InitialCandySpawnPerType int     `yaml:"initial_candy_spawn_per_type"`
	CandyRespawnDelaySec     float64 `yaml:"candy_respawn_delay_sec"`
	CandyRespawnBatchSize    int     `yaml:"candy_respawn_batch_size"`
	CandyRespawnsEnabled     bool    `yaml:"candy_respawns_enabled"`
	BatteryMaxCount          int     `yaml:"battery_max_count"`
	InitialBatteryItemCount  int     `yaml:"initial_battery_item_count"`
	BatteryRespawnDelaySec   float64 `yaml:"battery_respawn_delay_sec"`
	BatteryRespawnBatchSize  int     `yaml:"battery_respawn_batch_size"`
	BatteryRespawnsEnabled   bool    `yaml:"battery_respawns_enabled"`
}

type HazardTuning struct {
	GhostSpeed                 float64 `yaml:"ghost_speed"`
	GhostMaxCount              int     `yaml:"ghost_max_count"`
	GhostSpawnIntervalSec      float64 `yaml:"ghost_spawn_interval_sec"`
	GhostRandomWalkSpeed       float64 `yaml:"ghost_random_walk_speed"`
	GhostRandomWalkIntervalSec float64 `yaml:"ghost_random_walk_interval_sec"`
	GhostRandomWalkRadiusTiles float64 `yaml:"ghost_random_walk_radius_tiles"`
	GhostSize                  float64 `yaml:"ghost_size"`
	DayHunterSpeed             float64 `yaml:"day_hunter_speed"`
	DayHunterSize              float64 `yaml:"day_hunter_size"`
}

type EconomyTuning struct {
	MachineVictoryLevel         int `yaml:"machine_victory_level"`
	WorldExpPerUpgrade          int `yaml:"world_exp_per_upgrade"`
	NeutralHolderThreshold      int `yaml:"neutral_holder_threshold"`
	NeutralHolderMin            int `yaml:"neutral_holder_min"`
	NeutralHolderMax            int `yaml:"neutral_holder_max"`
	NeutralHolderNoUpgradeBonus int `yaml:"neutral_holder_no_upgrade_bonus"`
	NeutralHolderUpgradePenalty int `yaml:"neutral_holder_upgrade_penalty"`
	NeutralHolderGiverDelta     int `yaml:"neutral_holder_giver_delta"`
}

type EventTuning struct {
	NightDelaySec               float64  `yaml:"night_delay_sec"`
	SuccessCandyReward          int      `yaml:"success_candy_reward"`
	FailureNeutralUpgradeLevels int      `yaml:"failure_neutral_upgrade_levels"`
	SelfDeprecationCounterCost  int      `yaml:"self_deprecation_counter_cost"`
	CounterItems                []string `yaml:"counter_items"`
}

type RadioTuning struct {
	PreannounceWithBatterySec    float64 `yaml:"preannounce_with_battery_sec"`
	PreannounceWithoutBatterySec float64 `yaml:"preannounce_without_battery_sec"`
	ChatterIntervalMinSec        float64 `yaml:"chatter_interval_min_sec"`
	ChatterIntervalMaxSec        float64 `yaml:"chatter_interval_max_sec"`
	EventCountdownDisplay        bool    `yaml:"event_countdown_display"`
}

type GiverTuning struct {
	Count       int     `yaml:"count"`
	CooldownSec float64 `yaml:"cooldown_sec"`
	RewardMin   int     `yaml:"reward_min"`
	RewardMax   int     `yaml:"reward_max"`
}

type NPCTuning struct {
	MaxCount          int     `yaml:"max_count"`
	MoveSpeed         float64 `yaml:"move_speed"`
	WanderIntervalSec float64 `yaml:"wander_interval_sec"`
	WanderRadiusTiles float64 `yaml:"wander_radius_tiles"`
	ChatDurationMs    int64   `yaml:"chat_duration_ms"`
	Size              float64 `yaml:"size"`
}

// Load overlays the yaml file at path on Defaults().
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Defaults(), fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.validate(); err != nil {
		return Defaults(), fmt.Errorf("tuning.yaml: %w", err)
	}
	t.applyDefaults()
	return t, nil
}

func (t Tuning) validate() error {
	if t.Events.NightDelaySec < 0 {
		return fmt.Errorf("events.night_delay_sec must be >= 0")
	}
	if t.Givers.RewardMax < t.Givers.RewardMin {
		return fmt.Errorf("givers.reward_max < reward_min")
	}
	if t.Economy.NeutralHolderMin > t.Economy.NeutralHolderMax {
		return fmt.Errorf("economy.neutral_holder_min > neutral_holder_max")
	}
	if t.Radio.ChatterIntervalMaxSec > 0 && t.Radio.ChatterIntervalMaxSec < t.Radio.ChatterIntervalMinSec {
		return fmt.Errorf("radio.chatter_interval_max_sec < chatter_interval_min_sec")
	}
	return nil
}

// Digest hashes the effective settings so replays can detect drift.
func (t Tuning) Digest() string {
	b, _ := yaml.Marshal(t)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
