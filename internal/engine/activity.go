package engine

import "math"

// Fixed burn estimates. These are approximations, not measurements.
const (
	kcalPerLiftingSession = 250
	kcalPerCardioSession  = 300
	kcalPer10kSteps       = 400
)

// ActivityEnergy is the calorie estimate for a declared weekly activity plan.
type ActivityEnergy struct {
	Weekly int `json:"weekly_activity_calories"`
	Daily  int `json:"daily_activity_calories"`
}

// ActivityCalories estimates calories burned by the weekly plan: per-session
// rates for lifting and cardio plus 400 kcal per 10k steps, every day.
func ActivityCalories(a WeeklyActivity) ActivityEnergy {
	weekly := float64(a.LiftingSessions*kcalPerLiftingSession+a.CardioSessions*kcalPerCardioSession) +
		float64(a.StepsPerDay)/10000*kcalPer10kSteps*7
	w := int(math.Round(weekly))
	return ActivityEnergy{
		Weekly: w,
		Daily:  int(math.Round(float64(w) / 7)),
	}
}

// DailyBalance returns a logged day's calories out (maintenance plus logged
// exercise) and its deficit against calories in. A negative deficit is a
// surplus.
func DailyBalance(maintenance, caloriesIn, exerciseCalories int) (caloriesOut, deficit int) {
	caloriesOut = maintenance + exerciseCalories
	return caloriesOut, caloriesOut - caloriesIn
}
