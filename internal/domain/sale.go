package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SaleStatusActive    = "active"
	SaleStatusCompleted = "completed"
	SaleStatusOverdue   = "overdue"
)

// Sale is the aggregate root for one customer's financed purchase.
// It owns its installment schedule and any credit card usages that funded it.
type Sale struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Phone        string    `json:"phone" db:"phone"`
	Address      string    `json:"address" db:"address"`
	ProductType  string    `json:"product_type" db:"product_type"`
	ProductOther string    `json:"product_type_other" db:"product_type_other"`
	ProductModel string    `json:"product_model" db:"product_model"`
	SerialNumber string    `json:"serial_number" db:"serial_number"`

	CostPrice              decimal.Decimal `json:"cost_price" db:"cost_price"`
	CostBonus              decimal.Decimal `json:"cost_bonus" db:"cost_bonus"`
	DownPaymentForPurchase decimal.Decimal `json:"down_payment_for_purchase" db:"down_payment_for_purchase"`

	SellingPrice           decimal.Decimal  `json:"selling_price" db:"selling_price"`
	CustomerDownPayment    decimal.Decimal  `json:"customer_down_payment" db:"customer_down_payment"`
	DownPaymentInstallment bool             `json:"down_payment_installment" db:"down_payment_installment"`
	DownPaymentMonths      *int             `json:"down_payment_months,omitempty" db:"down_payment_months"`
	DownPaymentMonthly     *decimal.Decimal `json:"down_payment_monthly,omitempty" db:"down_payment_monthly"`

	InstallmentMonths int             `json:"installment_months" db:"installment_months"`
	MonthlyPayment    decimal.Decimal `json:"monthly_payment" db:"monthly_payment"`
	PaymentDueDay     int             `json:"payment_due_day" db:"payment_due_day"`

	// Derived fields, recomputed by the ledger on every mutation.
	RemainingInstallment decimal.Decimal `json:"remaining_installment" db:"remaining_installment"`
	TotalProfit          decimal.Decimal `json:"total_profit" db:"total_profit"`
	CurrentProfit        decimal.Decimal `json:"current_profit" db:"current_profit"`
	Status               string          `json:"status" db:"status"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	Installments []*Installment `json:"installments,omitempty" db:"-"`
	CardUsages   []*CardUsage   `json:"card_usages,omitempty" db:"-"`
}

// Installment is one scheduled product-payment period of a sale.
type Installment struct {
	ID       uuid.UUID       `json:"id" db:"id"`
	SaleID   uuid.UUID       `json:"sale_id" db:"sale_id"`
	Number   int             `json:"installment_number" db:"installment_number"`
	DueDate  time.Time       `json:"due_date" db:"due_date"`
	Amount   decimal.Decimal `json:"amount" db:"amount"`
	Paid     bool            `json:"paid" db:"paid"`
	PaidDate *time.Time      `json:"paid_date,omitempty" db:"paid_date"`
}

// DTOs for requests and responses

type InstallmentInput struct {
	Number   int             `json:"installment_number" validate:"required,gt=0"`
	DueDate  time.Time       `json:"due_date" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"decimal_gte=0"`
	Paid     bool            `json:"paid"`
	PaidDate *time.Time      `json:"paid_date,omitempty"`
}

type CardUsageInput struct {
	CreditCardID      uuid.UUID          `json:"credit_card_id" validate:"required"`
	Amount            decimal.Decimal    `json:"amount" validate:"decimal_gte=0"`
	InstallmentsCount int                `json:"installments" validate:"gte=0"`
	MonthlyPayment    decimal.Decimal    `json:"monthly_payment"`
	RemainingAmount   decimal.Decimal    `json:"remaining_amount" validate:"decimal_gte=0"`
	Payments          []CardPaymentInput `json:"payments,omitempty" validate:"dive"`
}

type CardPaymentInput struct {
	Number   int             `json:"installment_number" validate:"required,gt=0"`
	DueDate  time.Time       `json:"due_date" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"decimal_gte=0"`
	Paid     bool            `json:"paid"`
	PaidDate *time.Time      `json:"paid_date,omitempty"`
}

type SaveSaleRequest struct {
	Name         string `json:"name" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	Address      string `json:"address"`
	ProductType  string `json:"product_type"`
	ProductOther string `json:"product_type_other"`
	ProductModel string `json:"product_model" validate:"required"`
	SerialNumber string `json:"serial_number"`

	CostPrice              decimal.Decimal `json:"cost_price" validate:"decimal_gte=0"`
	CostBonus              decimal.Decimal `json:"cost_bonus" validate:"decimal_gte=0"`
	DownPaymentForPurchase decimal.Decimal `json:"down_payment_for_purchase" validate:"decimal_gte=0"`

	SellingPrice           decimal.Decimal  `json:"selling_price" validate:"required,decimal_gt=0"`
	CustomerDownPayment    decimal.Decimal  `json:"customer_down_payment" validate:"decimal_gte=0"`
	DownPaymentInstallment bool             `json:"down_payment_installment"`
	DownPaymentMonths      *int             `json:"down_payment_months,omitempty"`
	DownPaymentMonthly     *decimal.Decimal `json:"down_payment_monthly,omitempty"`

	InstallmentMonths int             `json:"installment_months" validate:"gte=0"`
	MonthlyPayment    decimal.Decimal `json:"monthly_payment"`
	PaymentDueDay     int             `json:"payment_due_day" validate:"gte=1,lte=31"`

	// Optional: when absent and InstallmentMonths > 0 the schedule is generated.
	Installments []InstallmentInput `json:"installments,omitempty" validate:"dive"`
	CardUsages   []CardUsageInput   `json:"card_usages,omitempty" validate:"dive"`
}

type RecordPaymentRequest struct {
	InstallmentID uuid.UUID `json:"installment_id" validate:"required"`
}
