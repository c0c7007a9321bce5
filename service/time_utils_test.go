package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		expected time.Time
	}{
		{
			name:     "wednesday maps to preceding monday",
			now:      time.Date(2024, 1, 17, 15, 30, 0, 0, time.UTC),
			expected: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "monday maps to itself at midnight",
			now:      time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
			expected: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "monday midnight is its own boundary",
			now:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "sunday maps to the monday six days earlier",
			now:      time.Date(2024, 1, 21, 23, 59, 59, 0, time.UTC),
			expected: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekStart(tt.now, time.UTC)
			assert.True(t, got.Equal(tt.expected), "expected %v, got %v", tt.expected, got)
		})
	}
}

func TestWeekStart_Timezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Monday 00:30 UTC is still Sunday evening in New York, so the local
	// week boundary is the previous Monday
	now := time.Date(2024, 1, 15, 0, 30, 0, 0, time.UTC)

	got := WeekStart(now, ny)
	expected := time.Date(2024, 1, 8, 0, 0, 0, 0, ny)

	assert.True(t, got.Equal(expected), "expected %v, got %v", expected, got)
}

func TestWeekStart_IsMonotonicWithinWeek(t *testing.T) {
	monday := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	for day := 0; day < 7; day++ {
		now := monday.AddDate(0, 0, day).Add(13 * time.Hour)
		got := WeekStart(now, time.UTC)
		assert.True(t, got.Equal(monday), "day offset %d: expected %v, got %v", day, monday, got)
	}

	// The following Monday starts a new week
	next := WeekStart(monday.AddDate(0, 0, 7), time.UTC)
	assert.True(t, next.Equal(monday.AddDate(0, 0, 7)))
}

func TestMonthStart(t *testing.T) {
	now := time.Date(2024, 2, 19, 8, 45, 0, 0, time.UTC)

	got := MonthStart(now, time.UTC)
	expected := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, got.Equal(expected), "expected %v, got %v", expected, got)
}
