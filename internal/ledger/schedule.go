package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tanakrit/installment-tracker/internal/domain"
	"github.com/tanakrit/installment-tracker/pkg/utils"
)

// GenerateSchedule produces the installment lines for a financed principal.
//
// Every line carries ceil(principal / months) with no remainder correction, so
// the schedule total can exceed the principal by up to months-1 minor units.
// That over-collection is a long-standing artifact of the billing rules and is
// kept on purpose; do not redistribute the rounding surplus.
//
// Line i (1-based) is due in the i-th month after start, on dueDay clamped to
// the target month's last valid day. months <= 0 yields an empty schedule.
func GenerateSchedule(principal decimal.Decimal, months, dueDay int, start time.Time) []*domain.Installment {
	if months <= 0 {
		return nil
	}

	perMonth := principal.Div(decimal.NewFromInt(int64(months))).Ceil()

	lines := make([]*domain.Installment, 0, months)
	for i := 1; i <= months; i++ {
		lines = append(lines, &domain.Installment{
			Number:  i,
			DueDate: dueDateFor(start, i, dueDay),
			Amount:  perMonth,
		})
	}

	return lines
}

// dueDateFor resolves dueDay within the month offsetMonths after start,
// clamping day 29-31 into shorter months instead of rolling over.
func dueDateFor(start time.Time, offsetMonths, dueDay int) time.Time {
	firstOfMonth := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	target := firstOfMonth.AddDate(0, offsetMonths, 0)

	day := dueDay
	if last := utils.DaysInMonth(target); day > last {
		day = last
	}

	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, start.Location())
}
