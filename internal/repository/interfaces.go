package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tanakrit/installment-tracker/internal/domain"
	"github.com/tanakrit/installment-tracker/internal/ledger"
)

// SaleRepository defines the interface for sale data operations
type SaleRepository interface {
	// Create persists a new sale with its installments and card usages
	Create(ctx context.Context, sale *domain.Sale) error

	// GetByID retrieves a sale and its line collections
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)

	// List retrieves sales, optionally filtered by status, newest first
	List(ctx context.Context, status string) ([]*domain.Sale, error)

	// Replace updates a sale's terms and fully replaces its line
	// collections in a single transaction
	Replace(ctx context.Context, sale *domain.Sale) error

	// Delete removes a sale and everything it owns
	Delete(ctx context.Context, id uuid.UUID) error

	// GetInstallment retrieves one installment line
	GetInstallment(ctx context.Context, id uuid.UUID) (*domain.Installment, error)

	// MarkInstallmentPaid sets paid=true and the paid date on one line
	MarkInstallmentPaid(ctx context.Context, installmentID uuid.UUID, paidDate time.Time) error

	// UpdateDerived persists the reconciler's output for a sale
	UpdateDerived(ctx context.Context, saleID uuid.UUID, result ledger.Result) error
}

// CardRepository defines the interface for credit card data operations
type CardRepository interface {
	// Create persists a new credit card
	Create(ctx context.Context, card *domain.CreditCard) error

	// GetByID retrieves a card with its usages, usage payments and repayments
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CreditCard, error)

	// List retrieves all cards with their usages and repayments, newest first
	List(ctx context.Context) ([]*domain.CreditCard, error)

	// Update updates a card's name, limit and due day
	Update(ctx context.Context, card *domain.CreditCard) error

	// Delete removes a card and its usages
	Delete(ctx context.Context, id uuid.UUID) error

	// RecordRepayment inserts a card-level repayment and persists the
	// usage balances mutated by the allocator, in one transaction
	RecordRepayment(ctx context.Context, repayment *domain.CardRepayment, usages []*domain.CardUsage) error

	// ListRepayments retrieves a card's repayment history, newest first
	ListRepayments(ctx context.Context, cardID uuid.UUID) ([]*domain.CardRepayment, error)
}
