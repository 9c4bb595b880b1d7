package engine

import (
	"fmt"
	"math"
)

// activityMultipliers maps activity level to its TDEE multiplier. This is the
// only place maintenance calories get their multiplier from; validation uses
// it too.
var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLightly:    1.375,
	ActivityModerately: 1.55,
	ActivityVery:       1.725,
}

// ActivityMultiplier returns the TDEE multiplier for the declared level.
func ActivityMultiplier(level ActivityLevel) (float64, bool) {
	m, ok := activityMultipliers[level]
	return m, ok
}

// BMR is the Mifflin-St Jeor basal metabolic rate, rounded to kcal/day.
func BMR(weightKG, heightCM float64, age int, gender Gender) int {
	bmr := 10*weightKG + 6.25*heightCM - 5*float64(age)
	if gender == GenderMale {
		bmr += 5
	} else {
		bmr -= 161
	}
	return int(math.Round(bmr))
}

// MaintenanceCalories scales bmr by the declared activity level's multiplier.
func MaintenanceCalories(bmr int, level ActivityLevel) (int, error) {
	mult, ok := ActivityMultiplier(level)
	if !ok {
		return 0, fmt.Errorf("maintenance calories for %q: %w", level, ErrUnknownActivityLevel)
	}
	return int(math.Round(float64(bmr) * mult)), nil
}

// Expenditure computes BMR and maintenance calories for a profile.
func Expenditure(p Profile) (bmr, maintenance int, err error) {
	if p.Gender != GenderMale && p.Gender != GenderFemale {
		return 0, 0, fmt.Errorf("bmr for %q: %w", p.Gender, ErrUnknownGender)
	}
	bmr = BMR(p.WeightKG, p.HeightCM, p.Age, p.Gender)
	maintenance, err = MaintenanceCalories(bmr, p.ActivityLevel)
	if err != nil {
		return 0, 0, err
	}
	return bmr, maintenance, nil
}
