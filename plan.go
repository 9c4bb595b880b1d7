package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/MightyOwl77/FitnessTracker-sub000/internal/engine"
	"github.com/MightyOwl77/FitnessTracker-sub000/internal/metrics"
	"github.com/MightyOwl77/FitnessTracker-sub000/internal/plancache"
)

var (
	errStaleGoal = errors.New("goal was modified concurrently")
	errNoProfile = errors.New("profile not found")
	errNoGoal    = errors.New("goal not found")
)

// Recompute triggers, used as the plan_recomputes_total label.
const (
	triggerGoal     = "goal"
	triggerProfile  = "profile"
	triggerOverride = "override"
)

// goalWrite is one requested change to a user's goal.
type goalWrite struct {
	inputs   goalInputs
	override *int
	// expectedVersion, when set, must equal the stored version.
	expectedVersion *int
	// restart moves start_date to today and start_weight_kg to the current
	// profile weight.
	restart bool
	trigger string
}

const insertGoalSQL = `
INSERT INTO goals (
	user_id, target_weight_kg, time_frame_weeks, deficit_rate, deficit_type,
	lifting_sessions, cardio_sessions, steps_per_day, refeed_days, diet_break_weeks,
	include_water_weight, current_weight_kg, start_date, start_weight_kg, calorie_target_override,
	bmr, maintenance_calories, daily_calorie_target, daily_deficit,
	protein_grams, fat_grams, carb_grams, weekly_activity_calories, daily_activity_calories,
	version
) VALUES (
	@userID, @targetWeightKG, @timeFrameWeeks, @deficitRate, @deficitType,
	@liftingSessions, @cardioSessions, @stepsPerDay, @refeedDays, @dietBreakWeeks,
	@includeWaterWeight, @currentWeightKG, @startDate, @startWeightKG, @calorieTargetOverride,
	@bmr, @maintenanceCalories, @dailyCalorieTarget, @dailyDeficit,
	@proteinGrams, @fatGrams, @carbGrams, @weeklyActivityCalories, @dailyActivityCalories,
	1
) RETURNING *`

// updateGoalSQL matches on the version read in the same transaction; a
// concurrent writer bumps it first and this statement returns no row.
const updateGoalSQL = `
UPDATE goals SET
	target_weight_kg = @targetWeightKG,
	time_frame_weeks = @timeFrameWeeks,
	deficit_rate = @deficitRate,
	deficit_type = @deficitType,
	lifting_sessions = @liftingSessions,
	cardio_sessions = @cardioSessions,
	steps_per_day = @stepsPerDay,
	refeed_days = @refeedDays,
	diet_break_weeks = @dietBreakWeeks,
	include_water_weight = @includeWaterWeight,
	current_weight_kg = @currentWeightKG,
	start_date = @startDate,
	start_weight_kg = @startWeightKG,
	calorie_target_override = @calorieTargetOverride,
	bmr = @bmr,
	maintenance_calories = @maintenanceCalories,
	daily_calorie_target = @dailyCalorieTarget,
	daily_deficit = @dailyDeficit,
	protein_grams = @proteinGrams,
	fat_grams = @fatGrams,
	carb_grams = @carbGrams,
	weekly_activity_calories = @weeklyActivityCalories,
	daily_activity_calories = @dailyActivityCalories,
	version = version + 1,
	updated_at = now()
WHERE user_id = @userID AND version = @version
RETURNING *`

func (h *Handler) loadProfile(ctx context.Context, db querier, userID int) (profileRecord, error) {
	p, err := queryOne[profileRecord](ctx, db, h.log,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return p, errNoProfile
	}
	return p, err
}

// loadGoal returns nil, nil when the user has no goal yet.
func (h *Handler) loadGoal(ctx context.Context, db querier, userID int) (*goalRecord, error) {
	g, err := queryOne[goalRecord](ctx, db, h.log,
		"SELECT * FROM goals WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// recomputeGoal re-derives the plan from prof and w and writes inputs and
// derived columns in one statement inside tx. existing is nil for a user's
// first goal. Derived fields are never patched individually.
func (h *Handler) recomputeGoal(ctx context.Context, tx pgx.Tx, prof profileRecord, existing *goalRecord, w goalWrite) (rec goalRecord, err error) {
	if existing != nil && w.expectedVersion != nil && *w.expectedVersion != existing.Version {
		metrics.GoalWriteConflicts.Inc()
		return goalRecord{}, errStaleGoal
	}

	owner := plancache.UserOwner(prof.UserID)
	defer func() {
		// The cache may now hold a plan that never got persisted.
		if err != nil {
			h.invalidatePlan(ctx, prof.UserID)
		}
	}()

	g := w.inputs.engineGoal(prof.WeightKG, w.override)
	d, err := h.plans.Derived(ctx, owner, prof.engineProfile(), g)
	if err != nil {
		return goalRecord{}, err
	}
	metrics.PlanRecomputes.WithLabelValues(w.trigger).Inc()

	startDate, startWeight := goalStart(existing, w.restart, h.today(), prof.WeightKG)

	args := pgx.NamedArgs{
		"userID":                 prof.UserID,
		"targetWeightKG":         w.inputs.TargetWeightKG,
		"timeFrameWeeks":         w.inputs.TimeFrameWeeks,
		"deficitRate":            w.inputs.DeficitRate,
		"deficitType":            w.inputs.DeficitType,
		"liftingSessions":        w.inputs.LiftingSessions,
		"cardioSessions":         w.inputs.CardioSessions,
		"stepsPerDay":            w.inputs.StepsPerDay,
		"refeedDays":             w.inputs.RefeedDays,
		"dietBreakWeeks":         w.inputs.DietBreakWeeks,
		"includeWaterWeight":     w.inputs.IncludeWaterWeight,
		"currentWeightKG":        prof.WeightKG,
		"startDate":              startDate,
		"startWeightKG":          startWeight,
		"calorieTargetOverride":  w.override,
		"bmr":                    d.BMR,
		"maintenanceCalories":    d.MaintenanceCalories,
		"dailyCalorieTarget":     d.DailyCalorieTarget,
		"dailyDeficit":           d.DailyDeficit,
		"proteinGrams":           d.ProteinGrams,
		"fatGrams":               d.FatGrams,
		"carbGrams":              d.CarbGrams,
		"weeklyActivityCalories": d.WeeklyActivityCalories,
		"dailyActivityCalories":  d.DailyActivityCalories,
	}

	sql := insertGoalSQL
	if existing != nil {
		sql = updateGoalSQL
		args["version"] = existing.Version
	}

	rec, err = queryOne[goalRecord](ctx, tx, h.log, sql, args)
	if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
		metrics.GoalWriteConflicts.Inc()
		return goalRecord{}, errStaleGoal
	}
	if err != nil {
		return goalRecord{}, err
	}
	return rec, nil
}

// writeGoal runs a goal change in its own transaction. build sees the
// profile and stored goal as of the transaction start and decides the write.
func (h *Handler) writeGoal(ctx context.Context, userID int, build func(prof profileRecord, existing *goalRecord) (goalWrite, error)) (goalRecord, error) {
	tx, err := h.db.Begin(ctx)
	if err != nil {
		return goalRecord{}, err
	}
	defer tx.Rollback(ctx)

	prof, err := h.loadProfile(ctx, tx, userID)
	if err != nil {
		return goalRecord{}, err
	}
	existing, err := h.loadGoal(ctx, tx, userID)
	if err != nil {
		return goalRecord{}, err
	}
	w, err := build(prof, existing)
	if err != nil {
		return goalRecord{}, err
	}
	rec, err := h.recomputeGoal(ctx, tx, prof, existing, w)
	if err != nil {
		return goalRecord{}, err
	}
	err = tx.Commit(ctx)
	h.invalidatePlan(ctx, userID)
	if err != nil {
		return goalRecord{}, err
	}
	return rec, nil
}

// goalStart is the baseline a write stores: today at the current weight for a
// new or restarted goal, otherwise the existing baseline.
func goalStart(existing *goalRecord, restart bool, today time.Time, weightKG float64) (string, float64) {
	if existing != nil && !restart {
		return existing.StartDate.String(), existing.StartWeightKG
	}
	return today.Format(engine.DateLayout), weightKG
}

// invalidatePlan drops the user's cached plan after a profile or goal write.
// A failure only costs a recompute, since lookups also check the stamp.
func (h *Handler) invalidatePlan(ctx context.Context, userID int) {
	if err := h.plans.Invalidate(ctx, plancache.UserOwner(userID)); err != nil {
		h.log.Warn("plan cache invalidation failed", zap.Int("user_id", userID), zap.Error(err))
	}
}

// isUniqueViolation reports a Postgres unique_violation (23505), which an
// INSERT hits when a concurrent request created the same row first.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// goalError maps plan write errors onto HTTP responses.
func (h *Handler) goalError(c *gin.Context, operation string, err error) {
	switch {
	case validationError(c, operation, err):
	case errors.Is(err, errNoProfile):
		apiError(c, http.StatusNotFound, "profile not found, set up your profile first")
	case errors.Is(err, errNoGoal):
		apiError(c, http.StatusNotFound, "goal not found")
	case errors.Is(err, errStaleGoal):
		apiError(c, http.StatusConflict, errStaleGoal.Error())
	default:
		h.log.Error("goal write failed", zap.String("operation", operation), zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to save goal")
	}
}
