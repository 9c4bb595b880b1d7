package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MightyOwl77/FitnessTracker-sub000/internal/engine"
	"github.com/MightyOwl77/FitnessTracker-sub000/internal/plancache"
)

func TestGoalStart(t *testing.T) {
	today := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	existing := &goalRecord{
		StartDate:     DateOnly{time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
		StartWeightKG: 90,
	}

	cases := []struct {
		name       string
		existing   *goalRecord
		restart    bool
		wantDate   string
		wantWeight float64
	}{
		{"first goal", nil, false, "2026-03-31", 82},
		{"edit keeps baseline", existing, false, "2026-01-05", 90},
		{"restart re-baselines", existing, true, "2026-03-31", 82},
		{"restart on first goal", nil, true, "2026-03-31", 82},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			date, weight := goalStart(tc.existing, tc.restart, today, 82)
			if date != tc.wantDate || weight != tc.wantWeight {
				t.Errorf("expected %s/%v, got %s/%v", tc.wantDate, tc.wantWeight, date, weight)
			}
		})
	}
}

type brokenStore struct{}

var errStoreDown = errors.New("store down")

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errStoreDown }
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error { return errStoreDown }
func (brokenStore) Delete(context.Context, string) error { return errStoreDown }

func TestInvalidatePlan_DropsEntry(t *testing.T) {
	store := plancache.NewMemoryStore(16, time.Hour)
	h := newTestHandler()
	h.plans = plancache.New(store, time.Hour, h.log)
	ctx := context.Background()

	p := engine.Profile{Age: 30, Gender: engine.GenderMale, HeightCM: 180, WeightKG: 80, ActivityLevel: engine.ActivityModerately}
	g := engine.Goal{CurrentWeightKG: 80, TargetWeightKG: 70, TimeFrameWeeks: 12, DeficitRate: 0.5}
	if _, err := h.plans.Derived(ctx, plancache.UserOwner(3), p, g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 cached plan, got %d", store.Len())
	}

	h.invalidatePlan(ctx, 3)
	if store.Len() != 0 {
		t.Errorf("expected cached plan dropped, %d left", store.Len())
	}
}

func TestInvalidatePlan_LogsStoreFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	h := newTestHandler()
	h.log = zap.New(core)
	h.plans = plancache.New(brokenStore{}, time.Hour, h.log)

	h.invalidatePlan(context.Background(), 3)

	entries := logs.FilterMessage("plan cache invalidation failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["user_id"]; got != int64(3) {
		t.Errorf("expected user_id 3 in log fields, got %v", got)
	}
}
