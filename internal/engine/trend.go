package engine

import (
	"sort"
	"time"
)

// TrendAlpha is the fixed EMA smoothing factor for daily weights.
const TrendAlpha = 0.1

// DateLayout is the wire format of every log and stat date.
const DateLayout = "2006-01-02"

// Trend smooths chronologically sorted daily weights with an exponential
// moving average. The result has the same length as weights and starts at
// weights[0].
func Trend(weights []float64) []float64 {
	trend := make([]float64, len(weights))
	for i, w := range weights {
		if i == 0 {
			trend[0] = w
			continue
		}
		trend[i] = TrendAlpha*w + (1-TrendAlpha)*trend[i-1]
	}
	return trend
}

// WeightSample is one body-stat weight reading as stored.
type WeightSample struct {
	Date     string  `json:"date"`
	WeightKG float64 `json:"weight_kg"`
}

// TrendPoint pairs a dated raw weight with its smoothed value.
type TrendPoint struct {
	Date     string  `json:"date"`
	WeightKG float64 `json:"weight_kg"`
	TrendKG  float64 `json:"trend_kg"`
}

type datedWeight struct {
	day    time.Time
	weight float64
}

// dayOf truncates t to its calendar date in t's own location, expressed in UTC
// so day arithmetic never crosses a DST boundary.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// cleanSamples parses dates, drops malformed entries and keeps the last
// reading for any repeated date. The result is sorted by day.
func cleanSamples(samples []WeightSample) (clean []datedWeight, skipped int) {
	byDay := make(map[time.Time]float64, len(samples))
	for _, s := range samples {
		t, err := time.Parse(DateLayout, s.Date)
		if err != nil || !(s.WeightKG > 0) {
			skipped++
			continue
		}
		byDay[t] = s.WeightKG
	}
	clean = make([]datedWeight, 0, len(byDay))
	for day, w := range byDay {
		clean = append(clean, datedWeight{day, w})
	}
	sort.Slice(clean, func(i, j int) bool { return clean[i].day.Before(clean[j].day) })
	return clean, skipped
}

// TrendSeries runs Trend over the valid samples and returns dated points.
func TrendSeries(samples []WeightSample) (points []TrendPoint, skipped int) {
	clean, skipped := cleanSamples(samples)
	weights := make([]float64, len(clean))
	for i, c := range clean {
		weights[i] = c.weight
	}
	trend := Trend(weights)
	points = make([]TrendPoint, len(clean))
	for i, c := range clean {
		points[i] = TrendPoint{Date: c.day.Format(DateLayout), WeightKG: c.weight, TrendKG: trend[i]}
	}
	return points, skipped
}
