package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		expected int
	}{
		{
			name:     "january",
			date:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			expected: 31,
		},
		{
			name:     "february leap year",
			date:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			expected: 29,
		},
		{
			name:     "february non-leap year",
			date:     time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
			expected: 28,
		},
		{
			name:     "april",
			date:     time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
			expected: 30,
		},
		{
			name:     "december year boundary",
			date:     time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
			expected: 31,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysInMonth(tt.date))
		})
	}
}

func TestTruncateToDay(t *testing.T) {
	ts := time.Date(2024, 6, 15, 13, 45, 30, 123, time.UTC)
	got := TruncateToDay(ts)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestIsDateOverdue(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsDateOverdue(now.AddDate(0, 0, -1), now))
	assert.False(t, IsDateOverdue(now, now))
	assert.False(t, IsDateOverdue(now.AddDate(0, 0, 1), now))
}

func TestSameMonth(t *testing.T) {
	a := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	c := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameMonth(a, b))
	assert.False(t, SameMonth(a, c))
	assert.False(t, SameMonth(a, a.AddDate(0, 1, 0)))
}
