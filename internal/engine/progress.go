package engine

import "time"

const (
	// ProgressWindowDays is how far back the comparator looks.
	ProgressWindowDays = 14
	// ProgressMinDays is the minimum logged days in the window for a verdict.
	ProgressMinDays = 7
)

// ProgressStatus classifies actual against expected weekly loss.
type ProgressStatus string

const (
	ProgressGathering ProgressStatus = "gathering"
	ProgressSlow      ProgressStatus = "slow"
	ProgressOnTrack   ProgressStatus = "on-track"
	ProgressFast      ProgressStatus = "fast"
)

var progressMessages = map[ProgressStatus]string{
	ProgressGathering: "Not enough weigh-ins yet. Log at least 7 of the last 14 days to see your trend.",
	ProgressSlow:      "Your trend is dropping slower than planned. Review your intake and activity.",
	ProgressOnTrack:   "Your trend is on track with the plan.",
	ProgressFast:      "Your trend is dropping faster than planned. Consider eating a little more to protect lean mass.",
}

// ProgressInput is everything the comparator needs. Samples may be unsorted
// and may contain malformed dates.
type ProgressInput struct {
	Samples        []WeightSample
	StartWeightKG  float64
	TargetWeightKG float64
	TimeFrameWeeks int
	Today          time.Time
}

// ProgressAssessment is the actual-vs-expected verdict.
type ProgressAssessment struct {
	Status               ProgressStatus `json:"status"`
	Message              string         `json:"message"`
	WeeklyLossKG         float64        `json:"weekly_loss_kg"`
	ExpectedWeeklyLossKG float64        `json:"expected_weekly_loss_kg"`
	DaysInWindow         int            `json:"days_in_window"`
	Skipped              int            `json:"skipped"`
	Trend                []TrendPoint   `json:"trend"`
}

func assessment(status ProgressStatus) ProgressAssessment {
	return ProgressAssessment{Status: status, Message: progressMessages[status]}
}

// CompareProgress smooths the weight history and compares the trend's weekly
// rate over the last 14 days with the rate the goal implies.
func CompareProgress(in ProgressInput) ProgressAssessment {
	series, skipped := TrendSeries(in.Samples)
	today := dayOf(in.Today)
	windowStart := today.AddDate(0, 0, -(ProgressWindowDays - 1))

	window := make([]TrendPoint, 0, len(series))
	for _, p := range series {
		day, _ := time.Parse(DateLayout, p.Date)
		if !day.Before(windowStart) && !day.After(today) {
			window = append(window, p)
		}
	}

	out := assessment(ProgressGathering)
	if in.TimeFrameWeeks > 0 {
		out.ExpectedWeeklyLossKG = (in.StartWeightKG - in.TargetWeightKG) / float64(in.TimeFrameWeeks)
	}
	out.DaysInWindow = len(window)
	out.Skipped = skipped
	out.Trend = window
	if len(window) < ProgressMinDays {
		return out
	}

	first, _ := time.Parse(DateLayout, window[0].Date)
	last, _ := time.Parse(DateLayout, window[len(window)-1].Date)
	span := daysBetween(first, last)
	if span <= 0 {
		return out
	}
	weekly := (window[0].TrendKG - window[len(window)-1].TrendKG) / (float64(span) / 7)
	out.WeeklyLossKG = weekly

	// A maintenance (or gain) goal has no rate to be slow or fast against.
	status := ProgressOnTrack
	if out.ExpectedWeeklyLossKG > 0 {
		ratio := weekly / out.ExpectedWeeklyLossKG
		switch {
		case ratio < 0.5:
			status = ProgressSlow
		case ratio > 1.5:
			status = ProgressFast
		}
	}

	out.Status = status
	out.Message = progressMessages[status]
	return out
}
