package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// getBodyStats returns body stat entries within [start, end].
// GET /api/body-stats?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
func (h *Handler) getBodyStats(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	entries, err := queryMany[bodyStatEntry](c, h.db, h.log,
		`SELECT * FROM body_stats
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": c.GetInt("user_id"), "start": start, "end": end})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch body stats")
		return
	}
	if entries == nil {
		entries = []bodyStatEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// upsertBodyStat creates or replaces the body stat entry for a date.
// POST /api/body-stats. Body: {"date", "weight_kg", "body_fat_percentage"?, "muscle_mass_kg"?}.
func (h *Handler) upsertBodyStat(c *gin.Context) {
	var body upsertBodyStatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date == "" {
		apiError(c, http.StatusBadRequest, "date is required")
		return
	}
	if _, ok := parseDateParam(c, "date", body.Date); !ok {
		return
	}
	if body.WeightKG < 30 || body.WeightKG > 300 {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 30 and 300")
		return
	}
	if bf := body.BodyFatPercentage; bf != nil && (*bf < 3 || *bf > 60) {
		apiError(c, http.StatusBadRequest, "body_fat_percentage must be between 3 and 60")
		return
	}
	if mm := body.MuscleMassKG; mm != nil && (*mm <= 0 || *mm >= body.WeightKG) {
		apiError(c, http.StatusBadRequest, "muscle_mass_kg must be positive and below weight_kg")
		return
	}

	entry, err := queryOne[bodyStatEntry](c, h.db, h.log,
		`INSERT INTO body_stats (user_id, date, weight_kg, body_fat_percentage, muscle_mass_kg)
		 VALUES (@userID, @date, @weightKG, @bodyFat, @muscleMass)
		 ON CONFLICT (user_id, date) DO UPDATE SET
			weight_kg = EXCLUDED.weight_kg,
			body_fat_percentage = EXCLUDED.body_fat_percentage,
			muscle_mass_kg = EXCLUDED.muscle_mass_kg
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": c.GetInt("user_id"), "date": body.Date, "weightKG": body.WeightKG,
			"bodyFat": body.BodyFatPercentage, "muscleMass": body.MuscleMassKG,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save body stat")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// deleteBodyStat removes the entry for a date.
// DELETE /api/body-stats/:date. 204 on success, 404 if there was none.
func (h *Handler) deleteBodyStat(c *gin.Context) {
	date := c.Param("date")
	if _, ok := parseDateParam(c, "date", date); !ok {
		return
	}

	result, err := h.db.Exec(c,
		"DELETE FROM body_stats WHERE user_id = @userID AND date = @date",
		pgx.NamedArgs{"userID": c.GetInt("user_id"), "date": date})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete body stat")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "body stat not found")
		return
	}
	c.Status(http.StatusNoContent)
}
