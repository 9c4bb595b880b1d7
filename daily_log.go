package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/MightyOwl77/FitnessTracker-sub000/internal/engine"
)

// getDailyLog returns daily log entries within [start, end].
// GET /api/daily-log?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
func (h *Handler) getDailyLog(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	entries, err := queryMany[dailyLogEntry](c, h.db, h.log,
		`SELECT * FROM daily_logs
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": c.GetInt("user_id"), "start": start, "end": end})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch daily log")
		return
	}
	if entries == nil {
		entries = []dailyLogEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// validateDailyLog returns the first out-of-range field as a message.
func validateDailyLog(b upsertDailyLogRequest) string {
	switch {
	case b.Date == "":
		return "date is required"
	case b.CaloriesIn < 0 || b.CaloriesIn > 20000:
		return "calories_in must be between 0 and 20000"
	case b.ProteinG != nil && *b.ProteinG < 0,
		b.CarbsG != nil && *b.CarbsG < 0,
		b.FatG != nil && *b.FatG < 0:
		return "macro grams must not be negative"
	case b.ActivityMinutes < 0 || b.ActivityMinutes > 1440:
		return "activity_minutes must be between 0 and 1440"
	case b.Steps < 0 || b.Steps > 100000:
		return "steps must be between 0 and 100000"
	case b.ExerciseCalories < 0 || b.ExerciseCalories > 10000:
		return "exercise_calories must be between 0 and 10000"
	}
	return ""
}

// maintenanceFor is the baseline burn used for a day's calories out: the
// goal's derived maintenance, or the profile's when no goal is set.
func (h *Handler) maintenanceFor(ctx context.Context, userID int) (int, error) {
	g, err := h.loadGoal(ctx, h.db, userID)
	if err != nil {
		return 0, err
	}
	if g != nil {
		return g.MaintenanceCalories, nil
	}
	p, err := h.loadProfile(ctx, h.db, userID)
	if err != nil {
		return 0, err
	}
	_, maintenance, err := engine.Expenditure(p.engineProfile())
	return maintenance, err
}

// upsertDailyLog creates or replaces the log entry for a date and stores its
// derived calories out and deficit.
// POST /api/daily-log. The UNIQUE(user_id, date) constraint makes a repeat
// date an update.
func (h *Handler) upsertDailyLog(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body upsertDailyLogRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateDailyLog(body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}
	if _, ok := parseDateParam(c, "date", body.Date); !ok {
		return
	}

	maintenance, err := h.maintenanceFor(c, userID)
	if errors.Is(err, errNoProfile) {
		apiError(c, http.StatusNotFound, "profile not found, set up your profile first")
		return
	}
	if err != nil {
		h.log.Error("maintenance lookup failed", zap.Int("user_id", userID), zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to save daily log")
		return
	}
	caloriesOut, deficit := engine.DailyBalance(maintenance, body.CaloriesIn, body.ExerciseCalories)

	entry, err := queryOne[dailyLogEntry](c, h.db, h.log,
		`INSERT INTO daily_logs (user_id, date, calories_in, protein_g, carbs_g, fat_g,
			activity_minutes, steps, exercise_calories, calories_out, deficit)
		 VALUES (@userID, @date, @caloriesIn, @proteinG, @carbsG, @fatG,
			@activityMinutes, @steps, @exerciseCalories, @caloriesOut, @deficit)
		 ON CONFLICT (user_id, date) DO UPDATE SET
			calories_in = EXCLUDED.calories_in,
			protein_g = EXCLUDED.protein_g,
			carbs_g = EXCLUDED.carbs_g,
			fat_g = EXCLUDED.fat_g,
			activity_minutes = EXCLUDED.activity_minutes,
			steps = EXCLUDED.steps,
			exercise_calories = EXCLUDED.exercise_calories,
			calories_out = EXCLUDED.calories_out,
			deficit = EXCLUDED.deficit,
			updated_at = now()
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "date": body.Date, "caloriesIn": body.CaloriesIn,
			"proteinG": body.ProteinG, "carbsG": body.CarbsG, "fatG": body.FatG,
			"activityMinutes": body.ActivityMinutes, "steps": body.Steps,
			"exerciseCalories": body.ExerciseCalories,
			"caloriesOut":      caloriesOut, "deficit": deficit,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save daily log")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// deleteDailyLog removes the entry for a date.
// DELETE /api/daily-log/:date. 204 on success, 404 if there was none.
func (h *Handler) deleteDailyLog(c *gin.Context) {
	date := c.Param("date")
	if _, ok := parseDateParam(c, "date", date); !ok {
		return
	}

	result, err := h.db.Exec(c,
		"DELETE FROM daily_logs WHERE user_id = @userID AND date = @date",
		pgx.NamedArgs{"userID": c.GetInt("user_id"), "date": date})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete daily log")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "daily log not found")
		return
	}
	c.Status(http.StatusNoContent)
}
