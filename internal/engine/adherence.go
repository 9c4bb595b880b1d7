package engine

import (
	"math"
	"time"
)

const (
	// StreakScanDays bounds the backward streak walk.
	StreakScanDays = 30
	// DefaultWeeklyAdherenceTarget is the weekly logging target, in percent.
	DefaultWeeklyAdherenceTarget = 80.0
	// minWeeklyLogs is the fewest logs in the last 7 days that yield a
	// non-zero weekly adherence.
	minWeeklyLogs = 3
	// onTargetTolerance is how far caloriesIn may stray from the target and
	// still count as on target.
	onTargetTolerance = 0.10
)

// AdherenceStatus grades weekly logging consistency.
type AdherenceStatus string

const (
	AdherenceOnTrack        AdherenceStatus = "on-track"
	AdherenceNeedsAttention AdherenceStatus = "needs-attention"
	AdherenceOffTrack       AdherenceStatus = "off-track"
)

// LogDay is the slice of a daily log entry that adherence looks at.
type LogDay struct {
	Date       string `json:"date"`
	CaloriesIn int    `json:"calories_in"`
}

// AdherenceInput is the full log history plus the plan context.
type AdherenceInput struct {
	Logs               []LogDay
	StartDate          time.Time
	DailyCalorieTarget int
	// WeeklyTargetPct defaults to DefaultWeeklyAdherenceTarget when zero.
	WeeklyTargetPct float64
	Today           time.Time
}

// AdherenceReport is the consistency verdict.
type AdherenceReport struct {
	Streak          int             `json:"streak"`
	DaysOnTarget    int             `json:"days_on_target"`
	LogCount        int             `json:"log_count"`
	DaysSinceStart  int             `json:"days_since_start"`
	WeeklyAdherence float64         `json:"weekly_adherence"`
	TotalAdherence  float64         `json:"total_adherence"`
	Status          AdherenceStatus `json:"status"`
	Skipped         int             `json:"skipped"`
}

// AssessAdherence scores how consistently the user logs, independent of
// whether the weight trend is moving.
func AssessAdherence(in AdherenceInput) AdherenceReport {
	var r AdherenceReport
	today := dayOf(in.Today)
	start := dayOf(in.StartDate)

	logged := make(map[time.Time]int, len(in.Logs))
	for _, l := range in.Logs {
		day, err := time.Parse(DateLayout, l.Date)
		if err != nil {
			r.Skipped++
			continue
		}
		logged[day] = l.CaloriesIn
	}

	tolerance := onTargetTolerance * float64(in.DailyCalorieTarget)
	for day, kcal := range logged {
		if day.Before(start) || day.After(today) {
			continue
		}
		r.LogCount++
		if in.DailyCalorieTarget > 0 && math.Abs(float64(kcal-in.DailyCalorieTarget)) <= tolerance {
			r.DaysOnTarget++
		}
	}

	// Today may still be unlogged without breaking the streak.
	for d := 0; d < StreakScanDays; d++ {
		if _, ok := logged[today.AddDate(0, 0, -d)]; ok {
			r.Streak++
		} else if d > 0 {
			break
		}
	}

	lastWeek := 0
	for d := 0; d < 7; d++ {
		if _, ok := logged[today.AddDate(0, 0, -d)]; ok {
			lastWeek++
		}
	}
	// One or two logs say too little to report a percentage.
	if lastWeek >= minWeeklyLogs {
		r.WeeklyAdherence = round1(float64(lastWeek) / 7 * 100)
	}

	r.DaysSinceStart = max(1, daysBetween(start, today)+1)
	r.TotalAdherence = round1(math.Min(100, float64(r.LogCount)/float64(r.DaysSinceStart)*100))

	target := in.WeeklyTargetPct
	if target <= 0 {
		target = DefaultWeeklyAdherenceTarget
	}
	switch {
	case r.WeeklyAdherence >= target:
		r.Status = AdherenceOnTrack
	case r.WeeklyAdherence >= 0.7*target:
		r.Status = AdherenceNeedsAttention
	default:
		r.Status = AdherenceOffTrack
	}
	return r
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
