package engine

// Derive runs the full plan chain: validation, expenditure, activity energy,
// deficit schedule, macros. Both the preview surface and the persistence path
// call this; nothing else should recombine the pieces.
func Derive(p Profile, g Goal) (DerivedGoal, error) {
	var errs ValidationErrors
	for _, err := range []error{p.Validate(), g.Validate()} {
		if ve, ok := err.(ValidationErrors); ok {
			errs = append(errs, ve...)
		}
	}
	if len(errs) > 0 {
		return DerivedGoal{}, errs
	}

	bmr, maintenance, err := Expenditure(p)
	if err != nil {
		return DerivedGoal{}, err
	}
	act := ActivityCalories(g.Activity)
	sched := ScheduleDeficit(maintenance, g, act)
	target, deficit := sched.DailyCalorieTarget, sched.DailyDeficit
	if g.CalorieTargetOverride != nil {
		// A manual target is floored like a scheduled one; the deficit then
		// reports what food alone leaves below maintenance, and stays zero
		// for maintenance plans.
		target = ClampCalorieTarget(*g.CalorieTargetOverride)
		deficit = 0
		if !sched.Maintenance {
			deficit = max(0, maintenance-target)
		}
	}
	m := AllocateMacros(g.CurrentWeightKG, p.BodyFatPercentage, target, p.DietaryPreference)

	return DerivedGoal{
		BMR:                    bmr,
		MaintenanceCalories:    maintenance,
		DailyCalorieTarget:     target,
		DailyDeficit:           deficit,
		ProteinGrams:           m.ProteinGrams,
		FatGrams:               m.FatGrams,
		CarbGrams:              m.CarbGrams,
		WeeklyActivityCalories: act.Weekly,
		DailyActivityCalories:  act.Daily,
	}, nil
}
