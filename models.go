package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/MightyOwl77/FitnessTracker-sub000/internal/engine"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(engine.DateLayout) + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"`+engine.DateLayout+`"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns into DateOnly. NULL zeroes the time.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

// String returns the YYYY-MM-DD form the engine expects.
func (d DateOnly) String() string {
	return d.Time.Format(engine.DateLayout)
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// profileRecord maps to profiles. BMR is derived on every write and ignored
// on input.
type profileRecord struct {
	UserID            int        `json:"user_id"             db:"user_id"`
	Age               int        `json:"age"                 db:"age"`
	Gender            string     `json:"gender"              db:"gender"`
	HeightCM          float64    `json:"height_cm"           db:"height_cm"`
	WeightKG          float64    `json:"weight_kg"           db:"weight_kg"`
	BodyFatPercentage *float64   `json:"body_fat_percentage" db:"body_fat_percentage"`
	ActivityLevel     string     `json:"activity_level"      db:"activity_level"`
	DietaryPreference string     `json:"dietary_preference"  db:"dietary_preference"`
	BMR               int        `json:"bmr"                 db:"bmr"`
	UpdatedAt         *time.Time `json:"updated_at"          db:"updated_at"`
}

func (p profileRecord) engineProfile() engine.Profile {
	return engine.Profile{
		Age:               p.Age,
		Gender:            engine.Gender(p.Gender),
		HeightCM:          p.HeightCM,
		WeightKG:          p.WeightKG,
		BodyFatPercentage: p.BodyFatPercentage,
		ActivityLevel:     engine.ActivityLevel(p.ActivityLevel),
		DietaryPreference: engine.DietaryPreference(p.DietaryPreference),
	}
}

// goalInputs are the user-editable goal columns. Embedded in both the record
// and the PUT body so the two never drift apart.
type goalInputs struct {
	TargetWeightKG     float64  `json:"target_weight_kg"     db:"target_weight_kg"`
	TimeFrameWeeks     int      `json:"time_frame_weeks"     db:"time_frame_weeks"`
	DeficitRate        *float64 `json:"deficit_rate"         db:"deficit_rate"`
	DeficitType        *string  `json:"deficit_type"         db:"deficit_type"`
	LiftingSessions    int      `json:"lifting_sessions"     db:"lifting_sessions"`
	CardioSessions     int      `json:"cardio_sessions"      db:"cardio_sessions"`
	StepsPerDay        int      `json:"steps_per_day"        db:"steps_per_day"`
	RefeedDays         int      `json:"refeed_days"          db:"refeed_days"`
	DietBreakWeeks     int      `json:"diet_break_weeks"     db:"diet_break_weeks"`
	IncludeWaterWeight bool     `json:"include_water_weight" db:"include_water_weight"`
}

// goalRecord maps to goals: one row per user holding the inputs, the derived
// plan columns and an optimistic-lock version.
type goalRecord struct {
	UserID int `json:"user_id" db:"user_id"`
	goalInputs

	// CurrentWeightKG mirrors the profile weight at the last derivation.
	CurrentWeightKG       float64  `json:"current_weight_kg"       db:"current_weight_kg"`
	StartDate             DateOnly `json:"start_date"              db:"start_date"`
	StartWeightKG         float64  `json:"start_weight_kg"         db:"start_weight_kg"`
	CalorieTargetOverride *int     `json:"calorie_target_override" db:"calorie_target_override"`

	// Derived columns, written only by recomputeGoal.
	BMR                    int `json:"bmr"                      db:"bmr"`
	MaintenanceCalories    int `json:"maintenance_calories"     db:"maintenance_calories"`
	DailyCalorieTarget     int `json:"daily_calorie_target"     db:"daily_calorie_target"`
	DailyDeficit           int `json:"daily_deficit"            db:"daily_deficit"`
	ProteinGrams           int `json:"protein_grams"            db:"protein_grams"`
	FatGrams               int `json:"fat_grams"                db:"fat_grams"`
	CarbGrams              int `json:"carb_grams"               db:"carb_grams"`
	WeeklyActivityCalories int `json:"weekly_activity_calories" db:"weekly_activity_calories"`
	DailyActivityCalories  int `json:"daily_activity_calories"  db:"daily_activity_calories"`

	Version   int        `json:"version"    db:"version"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// engineGoal builds the engine input from stored inputs plus the profile's
// current weight.
func (in goalInputs) engineGoal(currentWeightKG float64, override *int) engine.Goal {
	g := engine.Goal{
		CurrentWeightKG: currentWeightKG,
		TargetWeightKG:  in.TargetWeightKG,
		TimeFrameWeeks:  in.TimeFrameWeeks,
		Activity: engine.WeeklyActivity{
			LiftingSessions: in.LiftingSessions,
			CardioSessions:  in.CardioSessions,
			StepsPerDay:     in.StepsPerDay,
		},
		RefeedDays:            in.RefeedDays,
		DietBreakWeeks:        in.DietBreakWeeks,
		IncludeWaterWeight:    in.IncludeWaterWeight,
		CalorieTargetOverride: override,
	}
	if in.DeficitRate != nil {
		g.DeficitRate = *in.DeficitRate
	}
	if in.DeficitType != nil {
		g.DeficitType = engine.DeficitType(*in.DeficitType)
	}
	return g
}

func (g goalRecord) engineGoal() engine.Goal {
	return g.goalInputs.engineGoal(g.CurrentWeightKG, g.CalorieTargetOverride)
}

// dailyLogEntry maps to daily_logs. CaloriesOut and Deficit are derived from
// the plan's maintenance calories at write time.
type dailyLogEntry struct {
	ID               int        `json:"id"                db:"id"`
	UserID           int        `json:"user_id"           db:"user_id"`
	Date             DateOnly   `json:"date"              db:"date"`
	CaloriesIn       int        `json:"calories_in"       db:"calories_in"`
	ProteinG         *float64   `json:"protein_g"         db:"protein_g"`
	CarbsG           *float64   `json:"carbs_g"           db:"carbs_g"`
	FatG             *float64   `json:"fat_g"             db:"fat_g"`
	ActivityMinutes  int        `json:"activity_minutes"  db:"activity_minutes"`
	Steps            int        `json:"steps"             db:"steps"`
	ExerciseCalories int        `json:"exercise_calories" db:"exercise_calories"`
	CaloriesOut      int        `json:"calories_out"      db:"calories_out"`
	Deficit          int        `json:"deficit"           db:"deficit"`
	CreatedAt        *time.Time `json:"created_at"        db:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at"        db:"updated_at"`
}

// bodyStatEntry maps to body_stats.
type bodyStatEntry struct {
	ID                int        `json:"id"                  db:"id"`
	UserID            int        `json:"user_id"             db:"user_id"`
	Date              DateOnly   `json:"date"                db:"date"`
	WeightKG          float64    `json:"weight_kg"           db:"weight_kg"`
	BodyFatPercentage *float64   `json:"body_fat_percentage" db:"body_fat_percentage"`
	MuscleMassKG      *float64   `json:"muscle_mass_kg"      db:"muscle_mass_kg"`
	CreatedAt         *time.Time `json:"created_at"          db:"created_at"`
}

/* ─── Request / response shapes ──────────────────────────────────────── */

// putProfileRequest is the body for PUT /api/profile. Every field is required.
type putProfileRequest struct {
	Age               int      `json:"age"`
	Gender            string   `json:"gender"`
	HeightCM          float64  `json:"height_cm"`
	WeightKG          float64  `json:"weight_kg"`
	BodyFatPercentage *float64 `json:"body_fat_percentage"`
	ActivityLevel     string   `json:"activity_level"`
	DietaryPreference string   `json:"dietary_preference"`
}

func (r putProfileRequest) engineProfile() engine.Profile {
	return profileRecord{
		Age:               r.Age,
		Gender:            r.Gender,
		HeightCM:          r.HeightCM,
		WeightKG:          r.WeightKG,
		BodyFatPercentage: r.BodyFatPercentage,
		ActivityLevel:     r.ActivityLevel,
		DietaryPreference: r.DietaryPreference,
	}.engineProfile()
}

// putGoalRequest is the body for PUT /api/goal. Version, when sent, must
// match the stored goal's version. Restart re-baselines the goal at today's
// date and the current profile weight.
type putGoalRequest struct {
	goalInputs
	Version *int `json:"version"`
	Restart bool `json:"restart"`
}

// putCalorieTargetRequest is the body for PUT /api/goal/calorie-target.
// A null calorie_target clears the override.
type putCalorieTargetRequest struct {
	CalorieTarget *int `json:"calorie_target"`
	Version       *int `json:"version"`
}

// upsertDailyLogRequest is the body for POST /api/daily-log.
type upsertDailyLogRequest struct {
	Date             string   `json:"date"`
	CaloriesIn       int      `json:"calories_in"`
	ProteinG         *float64 `json:"protein_g"`
	CarbsG           *float64 `json:"carbs_g"`
	FatG             *float64 `json:"fat_g"`
	ActivityMinutes  int      `json:"activity_minutes"`
	Steps            int      `json:"steps"`
	ExerciseCalories int      `json:"exercise_calories"`
}

// upsertBodyStatRequest is the body for POST /api/body-stats.
type upsertBodyStatRequest struct {
	Date              string   `json:"date"`
	WeightKG          float64  `json:"weight_kg"`
	BodyFatPercentage *float64 `json:"body_fat_percentage"`
	MuscleMassKG      *float64 `json:"muscle_mass_kg"`
}

// previewRequest is the body for POST /api/plan/preview.
type previewRequest struct {
	Profile engine.Profile `json:"profile"`
	Goal    engine.Goal    `json:"goal"`
}

// planResponse pairs a derived plan with its projected curve.
type planResponse struct {
	Derived    engine.DerivedGoal       `json:"derived"`
	Projection []engine.ProjectionPoint `json:"projection"`
}
