package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGenerateSchedule_EvenSplit(t *testing.T) {
	start := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)

	lines := GenerateSchedule(decimal.NewFromInt(12000), 12, 5, start)

	assert.Len(t, lines, 12)
	for i, line := range lines {
		assert.Equal(t, i+1, line.Number)
		assert.True(t, decimal.NewFromInt(1000).Equal(line.Amount))
		assert.Equal(t, 5, line.DueDate.Day())
	}
	assert.Equal(t, time.February, lines[0].DueDate.Month())
	assert.Equal(t, time.January, lines[11].DueDate.Month())
	assert.Equal(t, 2025, lines[11].DueDate.Year())
}

func TestGenerateSchedule_CeilPerLineKeepsSurplus(t *testing.T) {
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	lines := GenerateSchedule(decimal.NewFromInt(10000), 3, 15, start)

	assert.Len(t, lines, 3)
	total := decimal.Zero
	for _, line := range lines {
		assert.True(t, decimal.NewFromInt(3334).Equal(line.Amount), "every line carries the ceiled amount")
		total = total.Add(line.Amount)
	}
	// The surplus is never redistributed: 3 * 3334 = 10002.
	assert.True(t, decimal.NewFromInt(10002).Equal(total))
}

func TestGenerateSchedule_TotalBound(t *testing.T) {
	start := time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC)
	principal := decimal.NewFromInt(99999)
	months := 7

	lines := GenerateSchedule(principal, months, 1, start)

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Amount)
	}
	assert.True(t, total.GreaterThanOrEqual(principal))
	assert.True(t, total.LessThan(principal.Add(decimal.NewFromInt(int64(months)))))
}

func TestGenerateSchedule_ClampsDueDayIntoShortMonths(t *testing.T) {
	start := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)

	lines := GenerateSchedule(decimal.NewFromInt(4000), 4, 31, start)

	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), lines[0].DueDate, "leap February clamps to 29")
	assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), lines[1].DueDate)
	assert.Equal(t, time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC), lines[2].DueDate)
	assert.Equal(t, time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC), lines[3].DueDate)
}

func TestGenerateSchedule_NonLeapFebruary(t *testing.T) {
	start := time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC)

	lines := GenerateSchedule(decimal.NewFromInt(2000), 2, 30, start)

	assert.Equal(t, time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC), lines[0].DueDate)
	assert.Equal(t, time.Date(2023, time.March, 30, 0, 0, 0, 0, time.UTC), lines[1].DueDate)
}

func TestGenerateSchedule_NoMonths(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	assert.Empty(t, GenerateSchedule(decimal.NewFromInt(1000), 0, 5, start))
	assert.Empty(t, GenerateSchedule(decimal.NewFromInt(1000), -3, 5, start))
}
