package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/tanakrit/installment-tracker/internal/domain"
)

// Allocate spreads a card-level repayment across the card's usages in the
// order given (creation order in practice), greedily: each usage absorbs
// min(remaining, left) until the amount is consumed or usages run out.
//
// Usages with no outstanding balance are skipped without consuming any of the
// allocation. Whatever cannot be absorbed is discarded, not carried forward.
// A zero amount is a no-op; callers must reject negative amounts before this
// point. Returns the total actually deducted.
func Allocate(amount decimal.Decimal, usages []*domain.CardUsage) decimal.Decimal {
	left := amount
	deducted := decimal.Zero

	for _, usage := range usages {
		if !left.IsPositive() {
			break
		}
		if !usage.RemainingAmount.IsPositive() {
			continue
		}

		step := decimal.Min(usage.RemainingAmount, left)
		usage.RemainingAmount = usage.RemainingAmount.Sub(step)
		if usage.RemainingAmount.IsNegative() {
			usage.RemainingAmount = decimal.Zero
		}

		left = left.Sub(step)
		deducted = deducted.Add(step)
	}

	return deducted
}
