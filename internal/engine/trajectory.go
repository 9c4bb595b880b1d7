package engine

import "math"

// WaterWeightFraction is the extra week-1 loss, as a fraction of start weight,
// for glycogen and water depletion at deficit onset.
const WaterWeightFraction = 0.015

// ProjectionInput configures a projected weight curve.
//
// WeeklyRatePct is the percent of current weight lost per week (0.5 means
// 0.5%/week), the same unit as Goal.DeficitRate. Zero means "whatever rate
// reaches the target exactly at the end of the timeframe".
type ProjectionInput struct {
	StartWeightKG      float64 `json:"start_weight_kg"`
	TargetWeightKG     float64 `json:"target_weight_kg"`
	TimeFrameWeeks     int     `json:"time_frame_weeks"`
	WeeklyRatePct      float64 `json:"weekly_rate_pct,omitempty"`
	IncludeWaterWeight bool    `json:"include_water_weight"`
}

// ProjectionPoint is one week of the projected curve.
type ProjectionPoint struct {
	Week              int     `json:"week"`
	ProjectedWeightKG float64 `json:"projected_weight_kg"`
}

// Validate checks the projection bounds.
func (in ProjectionInput) Validate() error {
	var v validator
	v.floatRange("start_weight_kg", in.StartWeightKG, 30, 300)
	v.floatRange("target_weight_kg", in.TargetWeightKG, 30, 300)
	v.intRange("time_frame_weeks", in.TimeFrameWeeks, 1, 52)
	if in.WeeklyRatePct != 0 {
		v.floatRange("weekly_rate_pct", in.WeeklyRatePct, 0.25, 1.0)
	}
	return v.err()
}

// ProjectionFromGoal builds the projector input for a stored goal.
func ProjectionFromGoal(g Goal) ProjectionInput {
	return ProjectionInput{
		StartWeightKG:      g.CurrentWeightKG,
		TargetWeightKG:     g.TargetWeightKG,
		TimeFrameWeeks:     g.TimeFrameWeeks,
		WeeklyRatePct:      g.EffectiveDeficitRate(),
		IncludeWaterWeight: g.IncludeWaterWeight,
	}
}

// Project returns the week-by-week curve, TimeFrameWeeks+1 points long with
// week 0 at the start weight.
//
// Each week loses a fixed fraction of the current weight, so absolute loss
// shrinks as the curve nears the target, and no point goes below the target.
// Once the target is reached the remaining weeks stay flat at the target: the
// series is never truncated, so charts always get the full timeframe.
func Project(in ProjectionInput) ([]ProjectionPoint, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	points := make([]ProjectionPoint, in.TimeFrameWeeks+1)
	points[0] = ProjectionPoint{Week: 0, ProjectedWeightKG: in.StartWeightKG}

	// Target at or above start: nothing to lose, the curve is flat.
	if in.TargetWeightKG >= in.StartWeightKG {
		for i := 1; i <= in.TimeFrameWeeks; i++ {
			points[i] = ProjectionPoint{Week: i, ProjectedWeightKG: in.StartWeightKG}
		}
		return points, nil
	}

	rate := in.WeeklyRatePct / 100
	if rate == 0 {
		rate = 1 - math.Pow(in.TargetWeightKG/in.StartWeightKG, 1/float64(in.TimeFrameWeeks))
	}

	w := in.StartWeightKG
	for i := 1; i <= in.TimeFrameWeeks; i++ {
		next := w - rate*w
		if i == 1 && in.IncludeWaterWeight {
			next -= WaterWeightFraction * in.StartWeightKG
		}
		w = math.Max(in.TargetWeightKG, next)
		points[i] = ProjectionPoint{Week: i, ProjectedWeightKG: w}
	}
	return points, nil
}
