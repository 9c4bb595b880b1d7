package engine

import "math"

const (
	kcalPerGramProtein = 4
	kcalPerGramCarb    = 4
	kcalPerGramFat     = 9
)

// macroSplit is a protein/fat/carb percentage seed. Carbs are always derived
// by subtraction, so Carb is informational.
type macroSplit struct {
	Protein, Fat, Carb float64
}

// macroSplits doubles as the set of accepted dietary preferences.
var macroSplits = map[DietaryPreference]macroSplit{
	DietDefault:    {0.30, 0.30, 0.40},
	DietKeto:       {0.25, 0.70, 0.05},
	DietPaleo:      {0.35, 0.40, 0.25},
	DietVegan:      {0.20, 0.30, 0.50},
	DietVegetarian: {0.20, 0.30, 0.50},
}

// Macros is the MacronutrientAllocator output in grams.
type Macros struct {
	ProteinGrams int `json:"protein_grams"`
	FatGrams     int `json:"fat_grams"`
	CarbGrams    int `json:"carb_grams"`
}

// ProteinFloorGrams is the lean-mass-preserving minimum: 2.0 g/kg when body
// fat is known, 1.8 g/kg otherwise.
func ProteinFloorGrams(weightKG float64, bodyFatPercentage *float64) int {
	mult := 1.8
	if bodyFatPercentage != nil {
		mult = 2.0
	}
	return int(math.Round(mult * weightKG))
}

// AllocateMacros splits the daily calorie target into grams.
//
// The protein floor always wins over the percentage split. When floor protein
// plus fat already exceed the target, carbs floor at zero and the realized
// total undershoots the target; fat and protein are not rebalanced.
func AllocateMacros(weightKG float64, bodyFatPercentage *float64, target int, pref DietaryPreference) Macros {
	split, ok := macroSplits[pref]
	if !ok {
		split = macroSplits[DietDefault]
	}

	proteinCalories := float64(target) * split.Protein
	fatCalories := float64(target) * split.Fat

	protein := max(ProteinFloorGrams(weightKG, bodyFatPercentage), int(math.Round(proteinCalories/kcalPerGramProtein)))
	fat := int(math.Round(fatCalories / kcalPerGramFat))

	// Carbs take whatever the final protein and fat leave over.
	carbCalories := float64(target) - float64(protein*kcalPerGramProtein) - fatCalories
	carbs := max(0, int(math.Round(carbCalories/kcalPerGramCarb)))

	return Macros{ProteinGrams: protein, FatGrams: fat, CarbGrams: carbs}
}
