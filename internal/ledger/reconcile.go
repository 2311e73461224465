package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tanakrit/installment-tracker/internal/domain"
)

// Options tune reconciliation behavior.
type Options struct {
	// ClampProfit caps current profit at the sale's total profit
	// (min(paid + down payment, total profit)). Off by default; the business
	// has not settled whether transient over-collection should show through.
	ClampProfit bool
}

// Result carries the derived fields recomputed from an installment snapshot.
// Callers persist these verbatim; the ledger never writes anything itself.
type Result struct {
	RemainingInstallment decimal.Decimal
	CurrentProfit        decimal.Decimal
	Status               string
	CompletedAt          *time.Time
}

// Reconcile recomputes a sale's derived fields from its current installment
// lines. It is a pure function of its inputs and idempotent: feeding the same
// snapshot back in yields an identical result.
//
// Status rules: completed when every line is paid and at least one line
// exists; overdue when any unpaid line is due strictly before today; active
// otherwise. RemainingInstallment is forced to zero on completion, and
// CompletedAt is re-derived on every call rather than sticking to the first
// completion date.
func Reconcile(sale *domain.Sale, lines []*domain.Installment, today time.Time, opts Options) Result {
	unpaidTotal := decimal.Zero
	paidTotal := decimal.Zero
	hasOverdue := false

	for _, line := range lines {
		if line.Paid {
			paidTotal = paidTotal.Add(line.Amount)
			continue
		}
		unpaidTotal = unpaidTotal.Add(line.Amount)
		if line.DueDate.Before(today) {
			hasOverdue = true
		}
	}

	status := domain.SaleStatusActive
	switch {
	case unpaidTotal.IsZero() && len(lines) > 0:
		status = domain.SaleStatusCompleted
	case hasOverdue:
		status = domain.SaleStatusOverdue
	}

	remaining := unpaidTotal
	var completedAt *time.Time
	if status == domain.SaleStatusCompleted {
		remaining = decimal.Zero
		t := today
		completedAt = &t
	}

	collected := paidTotal.Add(sale.CustomerDownPayment)
	profit := collected.Sub(sale.CostPrice.Add(sale.CostBonus))
	if opts.ClampProfit {
		profit = decimal.Min(collected, sale.TotalProfit)
	}

	return Result{
		RemainingInstallment: remaining,
		CurrentProfit:        profit,
		Status:               status,
		CompletedAt:          completedAt,
	}
}

// TotalProfit is the sale's profit at full collection, fixed by its terms.
func TotalProfit(sale *domain.Sale) decimal.Decimal {
	return sale.SellingPrice.Sub(sale.CostPrice).Sub(sale.CostBonus)
}
