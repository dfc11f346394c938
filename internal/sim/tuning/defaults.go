package tuning

func Defaults() Tuning {
	blocks := true
	return Tuning{
		TickRateHz: 20,
		TileSize:   32,
		Clock: ClockTuning{
			TimeSpeedMultiplier:      4,
			TimeSpeedMultiplierBonus: 1.5,
			LightingTransitionSec:    4,
		},
		Player: PlayerTuning{
			Speed:                    160,
			Size:                     28,
			InventoryRows:            3,
			InventoryCols:            4,
			InventoryMaxStack:        5,
			InteractionRadiusTiles:   1.5,
			CraftingCloseRadiusTiles: 3,
			InventoryFullCraftBlocks: &blocks,
		},
		World: WorldTuning{
			WallThicknessTiles: 1,
			PropSize:           32,
			ItemSize:           20,
		},
		Resources: ResourceTuning{
			CandyMaxPerType:          6,
			InitialCandySpawnPerType: 3,
			CandyRespawnDelaySec:     20,
			CandyRespawnBatchSize:    2,
			BatteryMaxCount:          3,
			InitialBatteryItemCount:  2,
			BatteryRespawnDelaySec:   60,
			BatteryRespawnBatchSize:  1,
		},
		Hazards: HazardTuning{
			GhostSpeed:                 70,
			GhostMaxCount:              6,
			GhostSpawnIntervalSec:      8,
			GhostRandomWalkSpeed:       40,
			GhostRandomWalkIntervalSec: 3,
			GhostRandomWalkRadiusTiles: 4,
			GhostSize:                  28,
			DayHunterSize:              30,
		},
		Economy: EconomyTuning{
			MachineVictoryLevel:         5,
			WorldExpPerUpgrade:          10,
			NeutralHolderThreshold:      4,
			NeutralHolderMin:            -4,
			NeutralHolderMax:            4,
			NeutralHolderNoUpgradeBonus: 2,
			NeutralHolderUpgradePenalty: 1,
		},
		Events: EventTuning{
			NightDelaySec:               30,
			SuccessCandyReward:          2,
			FailureNeutralUpgradeLevels: 1,
			SelfDeprecationCounterCost:  2,
		},
		Radio: RadioTuning{
			PreannounceWithBatterySec:    45,
			PreannounceWithoutBatterySec: 10,
			ChatterIntervalMinSec:        35,
			ChatterIntervalMaxSec:        75,
		},
		Givers: GiverTuning{
			Count:       2,
			CooldownSec: 60,
			RewardMin:   2,
			RewardMax:   4,
		},
		NPCs: NPCTuning{
			MaxCount:          4,
			MoveSpeed:         80,
			WanderIntervalSec: 4,
			WanderRadiusTiles: 5,
			ChatDurationMs:    2500,
			Size:              28,
		},
	}
}

// applyDefaults replaces unusable zero or negative values with defaults.
func (t *Tuning) applyDefaults() {
	d := Defaults()
	if t.TickRateHz <= 0 {
		t.TickRateHz = d.TickRateHz
	}
	if t.TileSize <= 0 {
		t.TileSize = d.TileSize
	}
	if t.Clock.TimeSpeedMultiplier <= 0 {
		t.Clock.TimeSpeedMultiplier = d.Clock.TimeSpeedMultiplier
	}
	if t.Clock.TimeSpeedMultiplierBonus <= 0 {
		t.Clock.TimeSpeedMultiplierBonus = d.Clock.TimeSpeedMultiplierBonus
	}
	if t.Clock.LightingTransitionSec < 1 {
		t.Clock.LightingTransitionSec = 1
	}
	if t.Player.Speed <= 0 {
		t.Player.Speed = d.Player.Speed
	}
	if t.Player.Size <= 0 {
		t.Player.Size = d.Player.Size
	}
	if t.Player.InventoryFullCraftBlocks == nil {
		t.Player.InventoryFullCraftBlocks = d.Player.InventoryFullCraftBlocks
	}
	if t.World.PropSize <= 0 {
		t.World.PropSize = d.World.PropSize
	}
	if t.World.ItemSize <= 0 {
		t.World.ItemSize = d.World.ItemSize
	}
	if t.Resources.CandyRespawnBatchSize < 1 {
		t.Resources.CandyRespawnBatchSize = 1
	}
	if t.Resources.BatteryRespawnBatchSize < 1 {
		t.Resources.BatteryRespawnBatchSize = 1
	}
	if t.Hazards.GhostSize <= 0 {
		t.Hazards.GhostSize = d.Hazards.GhostSize
	}
	t.Hazards.DayHunterSpeed = t.HunterSpeed()
	if t.Hazards.DayHunterSize <= 0 {
		t.Hazards.DayHunterSize = d.Hazards.DayHunterSize
	}
	if t.Economy.NeutralHolderThreshold < 1 {
		t.Economy.NeutralHolderThreshold = 1
	}
	if t.Economy.MachineVictoryLevel < 2 {
		t.Economy.MachineVictoryLevel = d.Economy.MachineVictoryLevel
	}
	if t.Events.FailureNeutralUpgradeLevels < 1 {
		t.Events.FailureNeutralUpgradeLevels = 1
	}
	if t.Events.SelfDeprecationCounterCost < 1 {
		t.Events.SelfDeprecationCounterCost = 1
	}
	if t.NPCs.Size <= 0 {
		t.NPCs.Size = d.NPCs.Size
	}
	if t.Radio.ChatterIntervalMinSec > 0 && t.Radio.ChatterIntervalMinSec < 5 {
		t.Radio.ChatterIntervalMinSec = 5
	}
}

// MinutesPerSecond is the in-game clock rate.
func (t Tuning) MinutesPerSecond() float64 {
	if t.Clock.DaylightDurationSec > 0 {
		return float64((DayEndHour-DayStartHour)*60) / max(1, t.Clock.DaylightDurationSec)
	}
	return t.Clock.TimeSpeedMultiplier * t.Clock.TimeSpeedMultiplierBonus
}

// NightTransitionSec is how long lighting takes to swing fully.
func (t Tuning) NightTransitionSec() float64 {
	return max(1, t.Clock.LightingTransitionSec) * 1.5
}

func (t Tuning) BorderShrinkSec() float64 {
	if t.Clock.BorderShrinkSec > 0 {
		return t.Clock.BorderShrinkSec
	}
	return max(0.1, t.NightTransitionSec())
}

// HunterSpeed is day_hunter_speed, or the ghost speed when that is unset.
func (t Tuning) HunterSpeed() float64 {
	if t.Hazards.DayHunterSpeed > 0 {
		return t.Hazards.DayHunterSpeed
	}
	return t.Hazards.GhostSpeed
}

func (t Tuning) CraftBlocksWhenFull() bool {
	return t.Player.InventoryFullCraftBlocks == nil || *t.Player.InventoryFullCraftBlocks
}
