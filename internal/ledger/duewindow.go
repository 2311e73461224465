package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tanakrit/installment-tracker/pkg/utils"
)

// Due buckets for unpaid lines.
const (
	DueOverdue = "overdue"
	DueSoon    = "dueSoon"
	DueLater   = "later"
)

// DueLine is the minimal view of a scheduled line needed for due tracking.
// Both product installments and card payment periods project onto it.
type DueLine struct {
	DueDate time.Time
	Amount  decimal.Decimal
	Paid    bool
}

// Classify buckets a due date relative to now: overdue when strictly past,
// dueSoon when inside [now, now+window], later beyond that.
func Classify(now time.Time, window time.Duration, dueDate time.Time) string {
	if dueDate.Before(now) {
		return DueOverdue
	}
	if !dueDate.After(now.Add(window)) {
		return DueSoon
	}
	return DueLater
}

// DueWithinWindow sums unpaid amounts with now <= due <= now+window.
func DueWithinWindow(lines []DueLine, now time.Time, window time.Duration) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		if line.Paid {
			continue
		}
		if Classify(now, window, line.DueDate) == DueSoon {
			total = total.Add(line.Amount)
		}
	}
	return total
}

// MonthDue sums unpaid amounts falling in the calendar month containing now.
func MonthDue(lines []DueLine, now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		if line.Paid {
			continue
		}
		if line.DueDate.Year() == now.Year() && line.DueDate.Month() == now.Month() {
			total = total.Add(line.Amount)
		}
	}
	return total
}

// DaysUntilDue computes the forward distance from now to a statement due day
// of month, wrapping into the next month when the day has already passed.
// Two call sites used to disagree on this; the wrapping form is canonical.
func DaysUntilDue(dueDay int, now time.Time) int {
	currentDay := now.Day()
	if dueDay >= currentDay {
		return dueDay - currentDay
	}
	return (utils.DaysInMonth(now) - currentDay) + dueDay
}
