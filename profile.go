package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/MightyOwl77/FitnessTracker-sub000/internal/engine"
)

// getProfile returns the authenticated user's profile.
// GET /api/profile. 404 until the first PUT.
func (h *Handler) getProfile(c *gin.Context) {
	p, err := h.loadProfile(c, h.db, c.GetInt("user_id"))
	if errors.Is(err, errNoProfile) {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

// putProfile creates or replaces the profile and, when a goal exists,
// re-derives it from the new profile in the same transaction.
// PUT /api/profile. Response: {"profile": ..., "goal": ... | null}.
func (h *Handler) putProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body putProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	ep := body.engineProfile()
	if err := ep.Validate(); err != nil {
		validationError(c, "profile", err)
		return
	}
	bmr, _, err := engine.Expenditure(ep)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.db.Begin(c)
	if err != nil {
		h.log.Error("begin profile tx", zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to save profile")
		return
	}
	defer tx.Rollback(c)

	prof, err := queryOne[profileRecord](c, tx, h.log,
		`INSERT INTO profiles (user_id, age, gender, height_cm, weight_kg, body_fat_percentage,
			activity_level, dietary_preference, bmr)
		 VALUES (@userID, @age, @gender, @heightCM, @weightKG, @bodyFat,
			@activityLevel, @dietaryPreference, @bmr)
		 ON CONFLICT (user_id) DO UPDATE SET
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			body_fat_percentage = EXCLUDED.body_fat_percentage,
			activity_level = EXCLUDED.activity_level,
			dietary_preference = EXCLUDED.dietary_preference,
			bmr = EXCLUDED.bmr,
			updated_at = now()
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "age": body.Age, "gender": body.Gender,
			"heightCM": body.HeightCM, "weightKG": body.WeightKG, "bodyFat": body.BodyFatPercentage,
			"activityLevel": body.ActivityLevel, "dietaryPreference": body.DietaryPreference,
			"bmr": bmr,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save profile")
		return
	}

	existing, err := h.loadGoal(c, tx, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch goal")
		return
	}

	var goal *goalRecord
	if existing != nil {
		rec, err := h.recomputeGoal(c, tx, prof, existing, goalWrite{
			inputs:   existing.goalInputs,
			override: existing.CalorieTargetOverride,
			trigger:  triggerProfile,
		})
		if err != nil {
			h.goalError(c, "profile", err)
			return
		}
		goal = &rec
	}

	err = tx.Commit(c)
	h.invalidatePlan(c, userID)
	if err != nil {
		h.log.Error("commit profile tx", zap.Int("user_id", userID), zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to save profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": prof, "goal": goal})
}
