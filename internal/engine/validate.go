package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrUnknownActivityLevel = errors.New("unknown activity level")
	ErrUnknownGender        = errors.New("unknown gender")
)

// FieldError names one rejected input field and the constraint it broke.
type FieldError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Constraint
}

// ValidationErrors collects every FieldError found in one validation pass.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Error()
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// validator accumulates field errors; err returns nil when none were added.
type validator struct {
	errs ValidationErrors
}

func (v *validator) intRange(field string, val, lo, hi int) {
	if val < lo || val > hi {
		v.errs = append(v.errs, FieldError{field, fmt.Sprintf("must be between %d and %d", lo, hi)})
	}
}

func (v *validator) floatRange(field string, val, lo, hi float64) {
	if math.IsNaN(val) || val < lo || val > hi {
		v.errs = append(v.errs, FieldError{field, fmt.Sprintf("must be between %g and %g", lo, hi)})
	}
}

func (v *validator) add(field, constraint string) {
	v.errs = append(v.errs, FieldError{field, constraint})
}

func (v *validator) err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

// Validate checks every Profile field against its allowed range.
func (p Profile) Validate() error {
	var v validator
	v.intRange("age", p.Age, 18, 120)
	if p.Gender != GenderMale && p.Gender != GenderFemale {
		v.add("gender", "must be one of: male, female")
	}
	v.floatRange("height_cm", p.HeightCM, 100, 250)
	v.floatRange("weight_kg", p.WeightKG, 30, 300)
	if p.BodyFatPercentage != nil {
		v.floatRange("body_fat_percentage", *p.BodyFatPercentage, 3, 60)
	}
	if _, ok := activityMultipliers[p.ActivityLevel]; !ok {
		v.add("activity_level", "must be one of: sedentary, lightly, moderately, very")
	}
	if _, ok := macroSplits[p.DietaryPreference]; !ok {
		v.add("dietary_preference", "must be one of: keto, paleo, vegan, vegetarian (or empty)")
	}
	return v.err()
}

// Validate checks every Goal field against its allowed range.
func (g Goal) Validate() error {
	var v validator
	v.floatRange("current_weight_kg", g.CurrentWeightKG, 30, 300)
	v.floatRange("target_weight_kg", g.TargetWeightKG, 30, 300)
	v.intRange("time_frame_weeks", g.TimeFrameWeeks, 1, 52)
	switch {
	case g.DeficitRate != 0:
		v.floatRange("deficit_rate", g.DeficitRate, 0.25, 1.0)
	case g.DeficitType == DeficitModerate || g.DeficitType == DeficitAggressive:
	case g.DeficitType == "":
		v.add("deficit_rate", "deficit_rate or deficit_type is required")
	default:
		v.add("deficit_type", "must be one of: moderate, aggressive")
	}
	v.intRange("lifting_sessions", g.Activity.LiftingSessions, 0, 7)
	v.intRange("cardio_sessions", g.Activity.CardioSessions, 0, 7)
	v.intRange("steps_per_day", g.Activity.StepsPerDay, 1000, 25000)
	v.intRange("refeed_days", g.RefeedDays, 0, 7)
	v.intRange("diet_break_weeks", g.DietBreakWeeks, 0, g.TimeFrameWeeks)
	if g.CalorieTargetOverride != nil && *g.CalorieTargetOverride > MaxCalorieTargetOverride {
		v.add("calorie_target_override", fmt.Sprintf("must be at most %d", MaxCalorieTargetOverride))
	}
	return v.err()
}
