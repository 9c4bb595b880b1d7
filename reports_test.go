package main

import (
	"testing"
	"time"
)

func TestAdherenceFrom(t *testing.T) {
	today := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		start time.Time
		want  time.Time
	}{
		{"goal started today", today, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"goal started last week", today.AddDate(0, 0, -7), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"goal older than the scan", time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := adherenceFrom(tc.start, today); !got.Equal(tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
