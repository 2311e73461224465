package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditCard is a revolving-limit card used to fund purchases across sales.
// DueDay is the statement due day of month (1-31), not a date.
type CreditCard struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	CreditLimit decimal.Decimal `json:"credit_limit" db:"credit_limit"`
	DueDay      int             `json:"due_day" db:"due_day"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`

	Usages     []*CardUsage     `json:"usages,omitempty" db:"-"`
	Repayments []*CardRepayment `json:"repayments,omitempty" db:"-"`
}

// CardUsage is the portion of one sale charged to one credit card.
// RemainingAmount is the usage's outstanding balance; it is decremented only by
// the allocator when card-level repayments are recorded.
type CardUsage struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	CreditCardID      uuid.UUID       `json:"credit_card_id" db:"credit_card_id"`
	SaleID            uuid.UUID       `json:"sale_id" db:"sale_id"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	InstallmentsCount int             `json:"installments" db:"installments"`
	MonthlyPayment    decimal.Decimal `json:"monthly_payment" db:"monthly_payment"`
	RemainingAmount   decimal.Decimal `json:"remaining_amount" db:"remaining_amount"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`

	Payments []*CardPayment `json:"payments,omitempty" db:"-"`

	// Denormalized for card listings.
	SaleName     string `json:"sale_name,omitempty" db:"sale_name"`
	ProductModel string `json:"product_model,omitempty" db:"product_model"`
	SaleStatus   string `json:"sale_status,omitempty" db:"sale_status"`
}

// CardPayment is one scheduled repayment period of a card usage. It exists for
// display and due tracking only; balance arithmetic lives on CardUsage.RemainingAmount.
type CardPayment struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CardUsageID uuid.UUID       `json:"card_usage_id" db:"card_usage_id"`
	Number      int             `json:"installment_number" db:"installment_number"`
	DueDate     time.Time       `json:"due_date" db:"due_date"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Paid        bool            `json:"paid" db:"paid"`
	PaidDate    *time.Time      `json:"paid_date,omitempty" db:"paid_date"`
}

// CardRepayment is a card-level repayment spread across the card's usages.
type CardRepayment struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	CreditCardID     uuid.UUID       `json:"credit_card_id" db:"credit_card_id"`
	PaymentDate      time.Time       `json:"payment_date" db:"payment_date"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance" db:"remaining_balance"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// CardSummary is a CreditCard plus figures derived from its usages and repayments.
type CardSummary struct {
	*CreditCard
	TotalUsed        decimal.Decimal `json:"total_used"`
	TotalRemaining   decimal.Decimal `json:"total_remaining"`
	TotalCardPaid    decimal.Decimal `json:"total_card_paid"`
	CardDebt         decimal.Decimal `json:"card_debt"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	UtilizationRate  decimal.Decimal `json:"utilization_rate"`
	DueWithin7Days   decimal.Decimal `json:"due_within_7_days"`
	MonthlyDue       decimal.Decimal `json:"monthly_due_this_month"`
	DaysUntilDue     int             `json:"days_until_due"`
}

// DTOs for requests and responses

type SaveCardRequest struct {
	Name        string          `json:"name" validate:"required"`
	CreditLimit decimal.Decimal `json:"credit_limit" validate:"decimal_gte=0"`
	DueDay      int             `json:"due_day" validate:"required,gte=1,lte=31"`
}

type CardRepaymentRequest struct {
	PaymentDate time.Time       `json:"payment_date" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required,decimal_gt=0"`
}

type CardRepaymentResponse struct {
	Repayment        *CardRepayment  `json:"payment"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}
