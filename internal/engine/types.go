// Package engine derives energy targets, a deficit schedule, macronutrient
// grams and a weekly weight trajectory from a profile and goal, and scores
// logged reality against them.
//
// Every function here is pure: no I/O, no shared state, same inputs give the
// same outputs. Callers own persistence, caching and clocks (pass today in).
package engine

// Gender selects the Mifflin-St Jeor constant.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ActivityLevel is the declared day-to-day activity used for maintenance calories.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLightly    ActivityLevel = "lightly"
	ActivityModerately ActivityLevel = "moderately"
	ActivityVery       ActivityLevel = "very"
)

// DietaryPreference seeds the macro percentage split. The zero value is the
// default 30/30/40 split.
type DietaryPreference string

const (
	DietDefault    DietaryPreference = ""
	DietKeto       DietaryPreference = "keto"
	DietPaleo      DietaryPreference = "paleo"
	DietVegan      DietaryPreference = "vegan"
	DietVegetarian DietaryPreference = "vegetarian"
)

// DeficitType is the named alternative to an explicit DeficitRate.
type DeficitType string

const (
	DeficitModerate   DeficitType = "moderate"
	DeficitAggressive DeficitType = "aggressive"
)

// Profile is the anthropometric input. BodyFatPercentage is nil when unknown.
type Profile struct {
	Age               int               `json:"age"`
	Gender            Gender            `json:"gender"`
	HeightCM          float64           `json:"height_cm"`
	WeightKG          float64           `json:"weight_kg"`
	BodyFatPercentage *float64          `json:"body_fat_percentage,omitempty"`
	ActivityLevel     ActivityLevel     `json:"activity_level"`
	DietaryPreference DietaryPreference `json:"dietary_preference,omitempty"`
}

// WeeklyActivity is the declared exercise plan.
type WeeklyActivity struct {
	LiftingSessions int `json:"lifting_sessions"`
	CardioSessions  int `json:"cardio_sessions"`
	StepsPerDay     int `json:"steps_per_day"`
}

// Goal is the transformation target. CurrentWeightKG mirrors the profile
// weight at the time of derivation.
type Goal struct {
	CurrentWeightKG    float64        `json:"current_weight_kg"`
	TargetWeightKG     float64        `json:"target_weight_kg"`
	TimeFrameWeeks     int            `json:"time_frame_weeks"`
	DeficitRate        float64        `json:"deficit_rate,omitempty"`
	DeficitType        DeficitType    `json:"deficit_type,omitempty"`
	Activity           WeeklyActivity `json:"activity"`
	RefeedDays         int            `json:"refeed_days"`
	DietBreakWeeks     int            `json:"diet_break_weeks"`
	IncludeWaterWeight bool           `json:"include_water_weight"`
	// CalorieTargetOverride replaces the scheduled calorie target. It is
	// still floored at MinDailyCalories.
	CalorieTargetOverride *int `json:"calorie_target_override,omitempty"`
}

// EffectiveDeficitRate resolves DeficitRate, falling back to DeficitType.
// An explicit rate always wins.
func (g Goal) EffectiveDeficitRate() float64 {
	if g.DeficitRate > 0 {
		return g.DeficitRate
	}
	switch g.DeficitType {
	case DeficitAggressive:
		return 1.0
	case DeficitModerate:
		return 0.5
	}
	return 0
}

// DerivedGoal is everything computed from {Profile, Goal}. It is never edited
// field by field; recompute it with Derive.
type DerivedGoal struct {
	BMR                    int `json:"bmr"`
	MaintenanceCalories    int `json:"maintenance_calories"`
	DailyCalorieTarget     int `json:"daily_calorie_target"`
	DailyDeficit           int `json:"daily_deficit"`
	ProteinGrams           int `json:"protein_grams"`
	FatGrams               int `json:"fat_grams"`
	CarbGrams              int `json:"carb_grams"`
	WeeklyActivityCalories int `json:"weekly_activity_calories"`
	DailyActivityCalories  int `json:"daily_activity_calories"`
}
