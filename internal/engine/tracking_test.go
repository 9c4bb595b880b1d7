package engine

import (
	"math"
	"testing"
	"time"
)

// fixedToday anchors every date-dependent test.
var fixedToday = time.Date(2026, 3, 31, 15, 4, 0, 0, time.UTC)

func daysAgo(n int) string {
	return fixedToday.AddDate(0, 0, -n).Format(DateLayout)
}

/* ─── TrajectoryProjector ────────────────────────────────────────────── */

// TestProject_MonotonicAndBounded checks 80 -> 70 over 10 weeks under a few
// rates: never increases, never goes below target, always weeks+1 points.
func TestProject_MonotonicAndBounded(t *testing.T) {
	cases := []struct {
		name  string
		rate  float64
		water bool
	}{
		{"auto rate", 0, false},
		{"0.5 pct", 0.5, false},
		{"1.0 pct with water", 1.0, true},
		{"auto rate with water", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pts, err := Project(ProjectionInput{
				StartWeightKG: 80, TargetWeightKG: 70, TimeFrameWeeks: 10,
				WeeklyRatePct: tc.rate, IncludeWaterWeight: tc.water,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(pts) != 11 {
				t.Fatalf("expected 11 points, got %d", len(pts))
			}
			if pts[0].ProjectedWeightKG != 80 {
				t.Errorf("week 0 = %v, want 80", pts[0].ProjectedWeightKG)
			}
			for i := 1; i < len(pts); i++ {
				if pts[i].ProjectedWeightKG > pts[i-1].ProjectedWeightKG {
					t.Errorf("week %d increased: %v -> %v", i, pts[i-1].ProjectedWeightKG, pts[i].ProjectedWeightKG)
				}
				if pts[i].ProjectedWeightKG < 70 {
					t.Errorf("week %d below target: %v", i, pts[i].ProjectedWeightKG)
				}
				if pts[i].Week != i {
					t.Errorf("point %d has week %d", i, pts[i].Week)
				}
			}
		})
	}
}

// TestProject_AutoRateReachesTarget: the derived geometric rate lands on the
// target in the final week, and weekly loss shrinks along the way.
func TestProject_AutoRateReachesTarget(t *testing.T) {
	pts, err := Project(ProjectionInput{StartWeightKG: 80, TargetWeightKG: 70, TimeFrameWeeks: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last := pts[10].ProjectedWeightKG; math.Abs(last-70) > 1e-6 {
		t.Errorf("week 10 = %v, want 70", last)
	}
	first := pts[0].ProjectedWeightKG - pts[1].ProjectedWeightKG
	late := pts[9].ProjectedWeightKG - pts[10].ProjectedWeightKG
	if late >= first {
		t.Errorf("expected decelerating loss, week 1 lost %v and week 10 lost %v", first, late)
	}
}

// TestProject_WaterWeightFrontLoads: week 1 loses 1% plus 1.5% of start.
func TestProject_WaterWeightFrontLoads(t *testing.T) {
	pts, err := Project(ProjectionInput{StartWeightKG: 80, TargetWeightKG: 70, TimeFrameWeeks: 4, WeeklyRatePct: 1.0, IncludeWaterWeight: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(pts[1].ProjectedWeightKG-78.0) > 1e-9 {
		t.Errorf("week 1 = %v, want 78.0", pts[1].ProjectedWeightKG)
	}
	// Week 2 resumes plain 1% decay from 78.
	if math.Abs(pts[2].ProjectedWeightKG-77.22) > 1e-9 {
		t.Errorf("week 2 = %v, want 77.22", pts[2].ProjectedWeightKG)
	}
}

// TestProject_FlatAfterTarget: a steep rate on a small loss reaches the
// target early and the series stays flat through the full timeframe.
func TestProject_FlatAfterTarget(t *testing.T) {
	pts, err := Project(ProjectionInput{StartWeightKG: 71, TargetWeightKG: 70, TimeFrameWeeks: 8, WeeklyRatePct: 1.0, IncludeWaterWeight: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pts) != 9 {
		t.Fatalf("expected 9 points, got %d", len(pts))
	}
	for _, p := range pts[2:] {
		if p.ProjectedWeightKG != 70 {
			t.Errorf("week %d = %v, want flat 70", p.Week, p.ProjectedWeightKG)
		}
	}
}

func TestProject_TargetAboveStartIsFlat(t *testing.T) {
	pts, err := Project(ProjectionInput{StartWeightKG: 70, TargetWeightKG: 75, TimeFrameWeeks: 3, WeeklyRatePct: 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range pts {
		if p.ProjectedWeightKG != 70 {
			t.Errorf("week %d = %v, want 70", p.Week, p.ProjectedWeightKG)
		}
	}
}

func TestProject_RejectsBadInput(t *testing.T) {
	if _, err := Project(ProjectionInput{StartWeightKG: 80, TargetWeightKG: 70, TimeFrameWeeks: 0}); err == nil {
		t.Error("expected error for 0-week timeframe, got nil")
	}
}

/* ─── TrendEstimator ─────────────────────────────────────────────────── */

func TestTrend_LengthAndSeed(t *testing.T) {
	inputs := [][]float64{
		{80},
		{80, 81},
		{82.1, 81.4, 81.9, 80.8, 81.0, 80.2},
	}
	for _, weights := range inputs {
		trend := Trend(weights)
		if len(trend) != len(weights) {
			t.Errorf("len(trend) = %d, want %d", len(trend), len(weights))
		}
		if trend[0] != weights[0] {
			t.Errorf("trend[0] = %v, want %v", trend[0], weights[0])
		}
	}
	// 0.1*81 + 0.9*80
	if got := Trend([]float64{80, 81})[1]; math.Abs(got-80.1) > 1e-9 {
		t.Errorf("trend[1] = %v, want 80.1", got)
	}
}

func TestTrend_Empty(t *testing.T) {
	if got := Trend(nil); len(got) != 0 {
		t.Errorf("expected empty trend, got %v", got)
	}
}

// TestTrendSeries_SortsDedupesAndSkips: unsorted input, a repeated date (last
// write wins) and an unparseable date.
func TestTrendSeries_SortsDedupesAndSkips(t *testing.T) {
	pts, skipped := TrendSeries([]WeightSample{
		{Date: "2026-03-03", WeightKG: 79},
		{Date: "2026-03-01", WeightKG: 81},
		{Date: "03/02/2026", WeightKG: 80},
		{Date: "2026-03-01", WeightKG: 80},
	})
	if skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", skipped)
	}
	if len(pts) != 2 {
		t.Fatalf("expected 2 points, got %d", len(pts))
	}
	if pts[0].Date != "2026-03-01" || pts[0].WeightKG != 80 {
		t.Errorf("expected first point 2026-03-01 @ 80, got %+v", pts[0])
	}
}

/* ─── ProgressComparator ─────────────────────────────────────────────── */

// linearSamples returns n daily weights ending today, falling perDay kg/day.
func linearSamples(n int, start, perDay float64) []WeightSample {
	out := make([]WeightSample, n)
	for i := 0; i < n; i++ {
		out[i] = WeightSample{Date: daysAgo(n - 1 - i), WeightKG: start - perDay*float64(i)}
	}
	return out
}

func TestCompareProgress_Gathering(t *testing.T) {
	// Six recent days plus plenty of old history outside the window.
	samples := linearSamples(6, 80, 0.1)
	for i := 20; i < 40; i++ {
		samples = append(samples, WeightSample{Date: daysAgo(i), WeightKG: 82})
	}
	got := CompareProgress(ProgressInput{Samples: samples, StartWeightKG: 90, TargetWeightKG: 80, TimeFrameWeeks: 10, Today: fixedToday})
	if got.Status != ProgressGathering {
		t.Errorf("expected gathering, got %s", got.Status)
	}
	if got.DaysInWindow != 6 {
		t.Errorf("expected 6 days in window, got %d", got.DaysInWindow)
	}
}

// TestCompareProgress_Classifies uses 60 days of steady 0.7 kg/week loss so
// the EMA has settled; only the expected rate changes between cases.
func TestCompareProgress_Classifies(t *testing.T) {
	samples := linearSamples(60, 90, 0.1)
	cases := []struct {
		name   string
		target float64
		want   ProgressStatus
	}{
		{"on track vs 1.0/wk", 80, ProgressOnTrack},
		{"fast vs 0.4/wk", 86, ProgressFast},
		{"slow vs 2.0/wk", 70, ProgressSlow},
		{"maintenance goal", 90, ProgressOnTrack},
		{"gain goal", 95, ProgressOnTrack},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CompareProgress(ProgressInput{Samples: samples, StartWeightKG: 90, TargetWeightKG: tc.target, TimeFrameWeeks: 10, Today: fixedToday})
			if got.Status != tc.want {
				t.Errorf("expected %s, got %s (weekly %.3f vs expected %.3f)", tc.want, got.Status, got.WeeklyLossKG, got.ExpectedWeeklyLossKG)
			}
			if got.Message == "" {
				t.Error("expected a message")
			}
			if math.IsNaN(got.WeeklyLossKG) || math.IsInf(got.WeeklyLossKG, 0) {
				t.Errorf("weekly loss is not finite: %v", got.WeeklyLossKG)
			}
		})
	}
}

func TestCompareProgress_FlatWeightIsSlow(t *testing.T) {
	samples := linearSamples(14, 85, 0)
	got := CompareProgress(ProgressInput{Samples: samples, StartWeightKG: 90, TargetWeightKG: 80, TimeFrameWeeks: 10, Today: fixedToday})
	if got.Status != ProgressSlow {
		t.Errorf("expected slow, got %s", got.Status)
	}
}

func TestCompareProgress_CountsSkipped(t *testing.T) {
	samples := append(linearSamples(10, 85, 0.1), WeightSample{Date: "yesterday", WeightKG: 84})
	got := CompareProgress(ProgressInput{Samples: samples, StartWeightKG: 90, TargetWeightKG: 80, TimeFrameWeeks: 10, Today: fixedToday})
	if got.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", got.Skipped)
	}
	if got.Status == ProgressGathering {
		t.Error("malformed entry should not block the verdict")
	}
}

/* ─── AdherenceAssessor ──────────────────────────────────────────────── */

func logsOn(kcal int, days ...int) []LogDay {
	out := make([]LogDay, len(days))
	for i, d := range days {
		out[i] = LogDay{Date: daysAgo(d), CaloriesIn: kcal}
	}
	return out
}

func TestAssessAdherence_NoLogs(t *testing.T) {
	r := AssessAdherence(AdherenceInput{StartDate: fixedToday.AddDate(0, 0, -9), DailyCalorieTarget: 2000, Today: fixedToday})
	if r.Streak != 0 || r.WeeklyAdherence != 0 || r.TotalAdherence != 0 {
		t.Errorf("expected all zero, got %+v", r)
	}
	if r.Status != AdherenceOffTrack {
		t.Errorf("expected off-track, got %s", r.Status)
	}
}

// TestAssessAdherence_WeeklyFloor: two logs in the last week report 0,
// three report 3/7.
func TestAssessAdherence_WeeklyFloor(t *testing.T) {
	start := fixedToday.AddDate(0, 0, -30)
	two := AssessAdherence(AdherenceInput{Logs: logsOn(2000, 1, 4), StartDate: start, DailyCalorieTarget: 2000, Today: fixedToday})
	if two.WeeklyAdherence != 0 {
		t.Errorf("2 logs: expected weekly 0, got %v", two.WeeklyAdherence)
	}
	three := AssessAdherence(AdherenceInput{Logs: logsOn(2000, 1, 4, 6), StartDate: start, DailyCalorieTarget: 2000, Today: fixedToday})
	if three.WeeklyAdherence != 42.9 {
		t.Errorf("3 logs: expected weekly 42.9, got %v", three.WeeklyAdherence)
	}
}

func TestAssessAdherence_Streak(t *testing.T) {
	cases := []struct {
		name string
		days []int
		want int
	}{
		{"today missing is fine", []int{1, 2, 3}, 3},
		{"today counts", []int{0, 1, 2}, 3},
		{"gap breaks", []int{0, 1, 3, 4}, 2},
		{"yesterday missing", []int{2, 3}, 0},
		{"capped at scan window", seq(0, 45), StreakScanDays},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := AssessAdherence(AdherenceInput{Logs: logsOn(2000, tc.days...), StartDate: fixedToday.AddDate(0, 0, -60), DailyCalorieTarget: 2000, Today: fixedToday})
			if r.Streak != tc.want {
				t.Errorf("expected streak %d, got %d", tc.want, r.Streak)
			}
		})
	}
}

func seq(from, to int) []int {
	var out []int
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

func TestAssessAdherence_DaysOnTarget(t *testing.T) {
	logs := []LogDay{
		{Date: daysAgo(1), CaloriesIn: 1900},
		{Date: daysAgo(2), CaloriesIn: 2200},
		{Date: daysAgo(3), CaloriesIn: 2300},
		{Date: "not-a-date", CaloriesIn: 2000},
	}
	r := AssessAdherence(AdherenceInput{Logs: logs, StartDate: fixedToday.AddDate(0, 0, -9), DailyCalorieTarget: 2000, Today: fixedToday})
	if r.DaysOnTarget != 2 {
		t.Errorf("expected 2 days on target, got %d", r.DaysOnTarget)
	}
	if r.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", r.Skipped)
	}
	// 3 logs over 10 days since start.
	if r.TotalAdherence != 30 {
		t.Errorf("expected total 30, got %v", r.TotalAdherence)
	}
}

func TestAssessAdherence_Status(t *testing.T) {
	start := fixedToday.AddDate(0, 0, -30)
	cases := []struct {
		name string
		days []int
		want AdherenceStatus
	}{
		{"every day", seq(0, 7), AdherenceOnTrack},
		{"five of seven", []int{0, 1, 2, 3, 4}, AdherenceNeedsAttention},
		{"three of seven", []int{0, 2, 4}, AdherenceOffTrack},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := AssessAdherence(AdherenceInput{Logs: logsOn(2000, tc.days...), StartDate: start, DailyCalorieTarget: 2000, Today: fixedToday})
			if r.Status != tc.want {
				t.Errorf("expected %s, got %s (weekly %v)", tc.want, r.Status, r.WeeklyAdherence)
			}
		})
	}
}

// TestAssessAdherence_TotalCappedAndBounded: logs before the start date do not
// count toward total adherence, which never exceeds 100.
func TestAssessAdherence_TotalCappedAndBounded(t *testing.T) {
	r := AssessAdherence(AdherenceInput{Logs: logsOn(2000, seq(0, 20)...), StartDate: fixedToday, DailyCalorieTarget: 2000, Today: fixedToday})
	if r.TotalAdherence != 100 {
		t.Errorf("expected total 100, got %v", r.TotalAdherence)
	}
	if r.LogCount != 1 {
		t.Errorf("expected 1 log since start, got %d", r.LogCount)
	}
}

// TestAssessAdherence_HistoryBeforeStart: logs from before the goal started
// feed the streak and weekly rate but not the since-start counters.
func TestAssessAdherence_HistoryBeforeStart(t *testing.T) {
	r := AssessAdherence(AdherenceInput{
		Logs:               logsOn(2000, 1, 2, 3, 4, 5, 6),
		StartDate:          fixedToday,
		DailyCalorieTarget: 2000,
		Today:              fixedToday,
	})
	if r.Streak != 6 {
		t.Errorf("expected streak 6, got %d", r.Streak)
	}
	if r.WeeklyAdherence != 85.7 || r.Status != AdherenceOnTrack {
		t.Errorf("expected weekly 85.7 on-track, got %v %s", r.WeeklyAdherence, r.Status)
	}
	if r.LogCount != 0 || r.DaysOnTarget != 0 || r.TotalAdherence != 0 {
		t.Errorf("expected no since-start counts, got logs %d on-target %d total %v", r.LogCount, r.DaysOnTarget, r.TotalAdherence)
	}
	if r.DaysSinceStart != 1 {
		t.Errorf("expected 1 day since start, got %d", r.DaysSinceStart)
	}
}

func TestAssessAdherence_DaysOnTargetWindow(t *testing.T) {
	logs := []LogDay{
		{Date: daysAgo(12), CaloriesIn: 2000},
		{Date: daysAgo(2), CaloriesIn: 2000},
		{Date: fixedToday.AddDate(0, 0, 2).Format(DateLayout), CaloriesIn: 2000},
	}
	r := AssessAdherence(AdherenceInput{Logs: logs, StartDate: fixedToday.AddDate(0, 0, -9), DailyCalorieTarget: 2000, Today: fixedToday})
	if r.DaysOnTarget != 1 || r.LogCount != 1 {
		t.Errorf("expected 1 on target of 1 counted, got %d of %d", r.DaysOnTarget, r.LogCount)
	}
}
