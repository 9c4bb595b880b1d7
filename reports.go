package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/MightyOwl77/FitnessTracker-sub000/internal/engine"
	"github.com/MightyOwl77/FitnessTracker-sub000/internal/metrics"
)

// observe records how long an engine computation took.
func observe(operation string, start time.Time) {
	metrics.EngineDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// getProgress compares the smoothed weight trend with the rate the goal
// implies, with the trend series for charting.
// GET /api/progress.
func (h *Handler) getProgress(c *gin.Context) {
	userID := c.GetInt("user_id")
	goal, err := h.loadGoal(c, h.db, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch goal")
		return
	}
	if goal == nil {
		apiError(c, http.StatusNotFound, "goal not found")
		return
	}

	today := h.today()
	// The whole goal history seeds the trend; the comparison window is always
	// at least the last 14 days even for a goal started yesterday.
	from := goal.StartDate.Time
	if windowStart := today.AddDate(0, 0, -(engine.ProgressWindowDays - 1)); windowStart.Before(from) {
		from = windowStart
	}

	stats, err := queryMany[bodyStatEntry](c, h.db, h.log,
		`SELECT * FROM body_stats
		 WHERE user_id = @userID AND date >= @from AND date <= @today
		 ORDER BY date ASC`,
		pgx.NamedArgs{
			"userID": userID,
			"from":   from.Format(engine.DateLayout),
			"today":  today.Format(engine.DateLayout),
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch body stats")
		return
	}

	samples := make([]engine.WeightSample, len(stats))
	for i, s := range stats {
		samples[i] = engine.WeightSample{Date: s.Date.String(), WeightKG: s.WeightKG}
	}

	start := time.Now()
	assessment := engine.CompareProgress(engine.ProgressInput{
		Samples:        samples,
		StartWeightKG:  goal.StartWeightKG,
		TargetWeightKG: goal.TargetWeightKG,
		TimeFrameWeeks: goal.TimeFrameWeeks,
		Today:          today,
	})
	observe("progress", start)
	c.JSON(http.StatusOK, assessment)
}

// getAdherence scores logging consistency. The streak and weekly rate look at
// recent logs whenever they were made; the since-start counts are bounded by
// the engine.
// GET /api/adherence.
func (h *Handler) getAdherence(c *gin.Context) {
	userID := c.GetInt("user_id")
	goal, err := h.loadGoal(c, h.db, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch goal")
		return
	}
	if goal == nil {
		apiError(c, http.StatusNotFound, "goal not found")
		return
	}

	today := h.today()
	entries, err := queryMany[dailyLogEntry](c, h.db, h.log,
		`SELECT * FROM daily_logs
		 WHERE user_id = @userID AND date >= @from AND date <= @today
		 ORDER BY date ASC`,
		pgx.NamedArgs{
			"userID": userID,
			"from":   adherenceFrom(goal.StartDate.Time, today).Format(engine.DateLayout),
			"today":  today.Format(engine.DateLayout),
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch daily log")
		return
	}

	logs := make([]engine.LogDay, len(entries))
	for i, e := range entries {
		logs[i] = engine.LogDay{Date: e.Date.String(), CaloriesIn: e.CaloriesIn}
	}

	start := time.Now()
	report := engine.AssessAdherence(engine.AdherenceInput{
		Logs:               logs,
		StartDate:          goal.StartDate.Time,
		DailyCalorieTarget: goal.DailyCalorieTarget,
		WeeklyTargetPct:    h.cfg.AdherenceWeeklyTarget,
		Today:              today,
	})
	observe("adherence", start)
	c.JSON(http.StatusOK, report)
}

// adherenceFrom is the earliest log date the adherence report can use: the
// goal start or the start of the streak scan, whichever is earlier.
func adherenceFrom(start, today time.Time) time.Time {
	scan := today.AddDate(0, 0, -(engine.StreakScanDays - 1))
	if scan.Before(start) {
		return scan
	}
	return start
}
