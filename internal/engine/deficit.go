package engine

import "math"

const (
	// KcalPerKG is the energy content of 1 kg of adipose tissue.
	KcalPerKG = 7700

	// MinDailyCalories is the hard floor on any calorie target the engine
	// produces or accepts as a manual override.
	MinDailyCalories = 1200

	// MaxCalorieTargetOverride bounds manual calorie targets.
	MaxCalorieTargetOverride = 10000
)

// Schedule is the DeficitScheduler output, with the intermediate values kept
// for display and debugging.
type Schedule struct {
	TotalWeightLossKG    float64 `json:"total_weight_loss_kg"`
	TotalCalorieDeficit  float64 `json:"total_calorie_deficit"`
	TotalDaysWithDeficit float64 `json:"total_days_with_deficit"`
	RawDailyDeficit      int     `json:"raw_daily_deficit"`
	DailyDeficitCap      int     `json:"daily_deficit_cap"`
	DailyDeficit         int     `json:"daily_deficit"`
	DailyCalorieTarget   int     `json:"daily_calorie_target"`
	// Maintenance is true when the plan carries no deficit at all: target at
	// or above current weight, or no deficit days left after breaks/refeeds.
	Maintenance bool `json:"maintenance"`
}

// ClampCalorieTarget applies the 1200 kcal/day floor.
func ClampCalorieTarget(kcal int) int {
	return max(kcal, MinDailyCalories)
}

// ScheduleDeficit spreads the calorie deficit needed to reach the goal over
// the days that actually carry a deficit, caps it by the deficit rate, and
// turns it into a daily calorie target.
func ScheduleDeficit(maintenance int, g Goal, act ActivityEnergy) Schedule {
	var s Schedule

	// A target at or above current weight is a maintenance/recomp plan, never
	// a surplus.
	s.TotalWeightLossKG = math.Max(0, g.CurrentWeightKG-g.TargetWeightKG)
	s.TotalCalorieDeficit = s.TotalWeightLossKG * KcalPerKG

	effectiveDays := float64((g.TimeFrameWeeks - g.DietBreakWeeks) * 7)
	refeedDaysTotal := float64(g.RefeedDays) * (effectiveDays / 7)
	s.TotalDaysWithDeficit = effectiveDays - refeedDaysTotal

	s.DailyDeficitCap = int(math.Round(g.EffectiveDeficitRate() * 1000))

	if s.TotalDaysWithDeficit <= 0 || s.TotalWeightLossKG == 0 {
		s.TotalDaysWithDeficit = math.Max(0, s.TotalDaysWithDeficit)
		s.Maintenance = true
	} else {
		s.RawDailyDeficit = int(math.Round(s.TotalCalorieDeficit / s.TotalDaysWithDeficit))
		s.DailyDeficit = min(s.RawDailyDeficit, s.DailyDeficitCap)
	}

	// Declared exercise covers part of the deficit, so food only has to make
	// up the remainder.
	fromFood := max(0, s.DailyDeficit-act.Daily)
	s.DailyCalorieTarget = ClampCalorieTarget(maintenance - fromFood)
	return s
}
