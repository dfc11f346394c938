package catalogs

func defaultMachines() []MachineDef {
	return []MachineDef{
		{ID: "machine_red", Kind: "candy_red", Display: "Spicy", Anchor: [2]float64{0.2, 0.25}},
		{ID: "machine_blue", Kind: "candy_blue", Display: "Salty", Anchor: [2]float64{0.8, 0.25}},
		{ID: "machine_green", Kind: "candy_green", Display: "Sour", Anchor: [2]float64{0.2, 0.75}},
		{ID: "machine_yellow", Kind: "candy_yellow", Display: "Sweet", Anchor: [2]float64{0.8, 0.75}},
		{ID: "machine_neutral", Kind: "candy_purple", Display: "Tasteless", Neutral: true, Anchor: [2]float64{0.5, 0.5}},
	}
}

func defaultLevels() []LevelDef {
	return []LevelDef{
		{Level: 2, Cost: 6, BonusChance: 0.25},
		{Level: 3, Cost: 10, BonusChance: 0.5},
		{Level: 4, Cost: 14, BonusChance: 0.75},
		{Level: 5, Cost: 20, BonusChance: 1.0},
	}
}

func defaultRecipes() []RecipeDef {
	return []RecipeDef{
		{Name: "Clothes Pin", Inputs: map[string]int{"candy_red": 2, "candy_blue": 1, "candy_yellow": 2}},
		{Name: "Paper Ship", Inputs: map[string]int{"candy_blue": 2, "candy_green": 2, "candy_purple": 1}},
		{Name: "Dollhouse", Inputs: map[string]int{"candy_green": 2, "candy_yellow": 2, "candy_red": 1}},
		{Name: "Umbrella", Inputs: map[string]int{"candy_purple": 2, "candy_red": 2, "candy_blue": 1}},
	}
}

// DefaultEvents is the stock event roster; anyCost is how many counter items
// the wildcard event asks for.
func DefaultEvents(anyCost int) []EventDef {
	if anyCost < 1 {
		anyCost = 1
	}
	return []EventDef{
		{Name: "stink", CounterItem: "Clothes Pin", CounterAmount: 1},
		{Name: "crying", CounterItem: "Paper Ship", CounterAmount: 1},
		{Name: "landslide", CounterItem: "Dollhouse", CounterAmount: 1},
		{Name: "embrassing", CounterItem: "Umbrella", CounterAmount: 1},
		{Name: "self_deprecation", CounterItem: AnyCounter, CounterAmount: anyCost},
	}
}
