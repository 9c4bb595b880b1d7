package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MightyOwl77/FitnessTracker-sub000/internal/engine"
	"github.com/MightyOwl77/FitnessTracker-sub000/internal/plancache"
)

// getGoal returns the stored goal with its derived plan.
// GET /api/goal. 404 until the first PUT.
func (h *Handler) getGoal(c *gin.Context) {
	g, err := h.loadGoal(c, h.db, c.GetInt("user_id"))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch goal")
		return
	}
	if g == nil {
		apiError(c, http.StatusNotFound, "goal not found")
		return
	}
	c.JSON(http.StatusOK, g)
}

// putGoal sets the goal inputs and re-derives the plan. A first PUT, or one
// with "restart": true, starts the goal today at the current profile weight;
// other PUTs keep the start. Any manual calorie target is kept.
// PUT /api/goal. Send the version from the last GET to guard against
// overwriting a concurrent edit; a mismatch is 409.
func (h *Handler) putGoal(c *gin.Context) {
	var body putGoalRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.writeGoal(c, c.GetInt("user_id"), func(_ profileRecord, existing *goalRecord) (goalWrite, error) {
		w := goalWrite{inputs: body.goalInputs, expectedVersion: body.Version, restart: body.Restart, trigger: triggerGoal}
		if existing != nil {
			w.override = existing.CalorieTargetOverride
		}
		return w, nil
	})
	if err != nil {
		h.goalError(c, "goal", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// putCalorieTarget sets or clears the manual daily calorie target. The value
// is floored at 1200 kcal like a scheduled target and macros are reallocated
// for it.
// PUT /api/goal/calorie-target. Body: {"calorie_target": 1800 | null, "version"?}.
func (h *Handler) putCalorieTarget(c *gin.Context) {
	var body putCalorieTargetRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.CalorieTarget != nil && *body.CalorieTarget <= 0 {
		apiError(c, http.StatusBadRequest, "calorie_target must be positive")
		return
	}

	rec, err := h.writeGoal(c, c.GetInt("user_id"), func(_ profileRecord, existing *goalRecord) (goalWrite, error) {
		if existing == nil {
			return goalWrite{}, errNoGoal
		}
		var override *int
		if body.CalorieTarget != nil {
			// Stored clamped so the column always shows what the plan uses.
			v := engine.ClampCalorieTarget(*body.CalorieTarget)
			override = &v
		}
		return goalWrite{
			inputs:          existing.goalInputs,
			override:        override,
			expectedVersion: body.Version,
			trigger:         triggerOverride,
		}, nil
	})
	if err != nil {
		h.goalError(c, "calorie_target", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// getProjection returns the expected weekly weights from the goal's start.
// GET /api/goal/projection.
func (h *Handler) getProjection(c *gin.Context) {
	g, err := h.loadGoal(c, h.db, c.GetInt("user_id"))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch goal")
		return
	}
	if g == nil {
		apiError(c, http.StatusNotFound, "goal not found")
		return
	}

	in := engine.ProjectionFromGoal(g.engineGoal())
	in.StartWeightKG = g.StartWeightKG
	points, err := engine.Project(in)
	if err != nil {
		if !validationError(c, "projection", err) {
			apiError(c, http.StatusInternalServerError, "failed to project goal")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"start_date": g.StartDate, "projection": points})
}

// previewPlan derives a plan and projection for a posted profile and goal
// without storing anything. Results are cached by input stamp.
// POST /api/plan/preview (public).
func (h *Handler) previewPlan(c *gin.Context) {
	var body previewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Goal.CurrentWeightKG == 0 {
		body.Goal.CurrentWeightKG = body.Profile.WeightKG
	}

	d, err := h.plans.Derived(c, plancache.PreviewOwner(body.Profile, body.Goal), body.Profile, body.Goal)
	if err != nil {
		if validationError(c, "preview", err) {
			return
		}
		if errors.Is(err, engine.ErrUnknownActivityLevel) || errors.Is(err, engine.ErrUnknownGender) {
			apiError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("preview derive failed", zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to derive plan")
		return
	}

	points, err := engine.Project(engine.ProjectionFromGoal(body.Goal))
	if err != nil {
		if !validationError(c, "preview", err) {
			apiError(c, http.StatusInternalServerError, "failed to project goal")
		}
		return
	}
	c.JSON(http.StatusOK, planResponse{Derived: d, Projection: points})
}
