package domain

import "github.com/shopspring/decimal"

// DashboardSummary aggregates figures over every sale for the overview screen.
type DashboardSummary struct {
	TotalSales          decimal.Decimal `json:"total_sales"`
	TotalCost           decimal.Decimal `json:"total_cost"`
	TotalCollected      decimal.Decimal `json:"total_collected"`
	TotalRemaining      decimal.Decimal `json:"total_remaining"`
	TotalProfit         decimal.Decimal `json:"total_profit"`
	CurrentProfit       decimal.Decimal `json:"current_profit"`
	CreditCardRemaining decimal.Decimal `json:"credit_card_remaining"`
	ActiveCustomers     int             `json:"active_customers"`
	CompletedCustomers  int             `json:"completed_customers"`
	OverdueCustomers    int             `json:"overdue_customers"`
	UpcomingPayments    []*Sale         `json:"upcoming_payments"`
}
