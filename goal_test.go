package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/MightyOwl77/FitnessTracker-sub000/internal/engine"
)

// previewBody is the 80 kg / 180 cm / 30 y moderately active male losing
// 10 kg in 12 weeks at 0.5, lifting 3x, cardio 2x, 10k steps.
const previewBody = `{
	"profile": {"age": 30, "gender": "male", "height_cm": 180, "weight_kg": 80, "activity_level": "moderately"},
	"goal": {"target_weight_kg": 70, "time_frame_weeks": 12, "deficit_rate": 0.5,
		"activity": {"lifting_sessions": 3, "cardio_sessions": 2, "steps_per_day": 10000}}
}`

func decodePlan(t *testing.T, body []byte) planResponse {
	t.Helper()
	var resp planResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("failed to decode plan response: %v", err)
	}
	return resp
}

// TestPreviewPlan_Derives checks the full chain through HTTP. The 500 kcal
// capped deficit is fully covered by 593 kcal/day of declared activity, so
// the calorie target stays at maintenance.
func TestPreviewPlan_Derives(t *testing.T) {
	srv := newTestServer(newTestHandler())
	w := doRequest(srv, http.MethodPost, "/api/plan/preview", previewBody, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decodePlan(t, w.Body.Bytes())
	want := engine.DerivedGoal{
		BMR:                    1780,
		MaintenanceCalories:    2759,
		DailyCalorieTarget:     2759,
		DailyDeficit:           500,
		ProteinGrams:           207,
		FatGrams:               92,
		CarbGrams:              276,
		WeeklyActivityCalories: 4150,
		DailyActivityCalories:  593,
	}
	if resp.Derived != want {
		t.Errorf("expected derived %+v, got %+v", want, resp.Derived)
	}
	if len(resp.Projection) != 13 {
		t.Fatalf("expected 13 projection points, got %d", len(resp.Projection))
	}
	if resp.Projection[0].ProjectedWeightKG != 80 {
		t.Errorf("expected week 0 at 80, got %v", resp.Projection[0].ProjectedWeightKG)
	}
	for i := 1; i < len(resp.Projection); i++ {
		if resp.Projection[i].ProjectedWeightKG > resp.Projection[i-1].ProjectedWeightKG {
			t.Errorf("projection rose at week %d", i)
		}
	}
}

// TestPreviewPlan_CachedRepeat verifies a repeat of the same inputs is served
// identically from the plan cache.
func TestPreviewPlan_CachedRepeat(t *testing.T) {
	srv := newTestServer(newTestHandler())
	first := doRequest(srv, http.MethodPost, "/api/plan/preview", previewBody, nil)
	second := doRequest(srv, http.MethodPost, "/api/plan/preview", previewBody, nil)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected 200s, got %d and %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("expected identical responses, got\n%s\n%s", first.Body.String(), second.Body.String())
	}
}

// TestPreviewPlan_ValidationFields verifies every rejected field comes back
// in one 400 rather than only the first.
func TestPreviewPlan_ValidationFields(t *testing.T) {
	body := `{
		"profile": {"age": 12, "gender": "male", "height_cm": 180, "weight_kg": 80, "activity_level": "couch"},
		"goal": {"target_weight_kg": 70, "time_frame_weeks": 60, "deficit_rate": 0.5,
			"activity": {"steps_per_day": 10000}}
	}`
	w := doRequest(newTestServer(newTestHandler()), http.MethodPost, "/api/plan/preview", body, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Error  string              `json:"error"`
		Fields []engine.FieldError `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	got := map[string]bool{}
	for _, f := range resp.Fields {
		got[f.Field] = true
	}
	for _, field := range []string{"age", "activity_level", "time_frame_weeks"} {
		if !got[field] {
			t.Errorf("expected field %q in %+v", field, resp.Fields)
		}
	}
}

func TestPreviewPlan_BadJSON(t *testing.T) {
	w := doRequest(newTestServer(newTestHandler()), http.MethodPost, "/api/plan/preview", `{"profile":`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if msg := decodeError(t, w); msg != "invalid request body" {
		t.Errorf("unexpected error %q", msg)
	}
}

// TestPreviewPlan_CalorieOverride verifies a manual target below the floor is
// raised to 1200 and macros follow it.
func TestPreviewPlan_CalorieOverride(t *testing.T) {
	body := `{
		"profile": {"age": 30, "gender": "male", "height_cm": 180, "weight_kg": 80, "activity_level": "moderately"},
		"goal": {"target_weight_kg": 70, "time_frame_weeks": 12, "deficit_type": "aggressive",
			"activity": {"steps_per_day": 5000}, "calorie_target_override": 900}
	}`
	w := doRequest(newTestServer(newTestHandler()), http.MethodPost, "/api/plan/preview", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	d := decodePlan(t, w.Body.Bytes()).Derived
	if d.DailyCalorieTarget != engine.MinDailyCalories {
		t.Errorf("expected target %d, got %d", engine.MinDailyCalories, d.DailyCalorieTarget)
	}
	if d.DailyDeficit != d.MaintenanceCalories-engine.MinDailyCalories {
		t.Errorf("expected deficit %d, got %d", d.MaintenanceCalories-engine.MinDailyCalories, d.DailyDeficit)
	}
	if d.CarbGrams < 0 {
		t.Errorf("carbs went negative: %d", d.CarbGrams)
	}
}
