package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/tanakrit/installment-tracker/internal/config"
	"github.com/tanakrit/installment-tracker/internal/domain"
	"github.com/tanakrit/installment-tracker/internal/ledger"
	"github.com/tanakrit/installment-tracker/internal/repository"
	customError "github.com/tanakrit/installment-tracker/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

type CardService struct {
	CardRepo repository.CardRepository
	redis    *redis.Client
	config   *config.Config
}

func NewCardService(cardRepo repository.CardRepository, redis *redis.Client, config *config.Config) *CardService {
	return &CardService{
		CardRepo: cardRepo,
		redis:    redis,
		config:   config,
	}
}

// CreateCard registers a new credit card.
func (s *CardService) CreateCard(ctx context.Context, request *domain.SaveCardRequest) (*domain.CreditCard, error) {
	now := time.Now()
	card := &domain.CreditCard{
		ID:          uuid.New(),
		Name:        request.Name,
		CreditLimit: request.CreditLimit,
		DueDay:      request.DueDay,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.CardRepo.Create(ctx, card); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return card, nil
}

// GetCard retrieves one card with usages and derived summary figures.
func (s *CardService) GetCard(ctx context.Context, id uuid.UUID) (*domain.CardSummary, error) {
	card, err := s.CardRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapCardNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return s.summarize(card, time.Now()), nil
}

// ListCards retrieves every card with its summary, newest first.
func (s *CardService) ListCards(ctx context.Context) ([]*domain.CardSummary, error) {
	cards, err := s.CardRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	now := time.Now()
	summaries := make([]*domain.CardSummary, 0, len(cards))
	for _, card := range cards {
		summaries = append(summaries, s.summarize(card, now))
	}

	return summaries, nil
}

// UpdateCard updates a card's name, limit and statement due day.
func (s *CardService) UpdateCard(ctx context.Context, id uuid.UUID, request *domain.SaveCardRequest) (*domain.CardSummary, error) {
	card := &domain.CreditCard{
		ID:          id,
		Name:        request.Name,
		CreditLimit: request.CreditLimit,
		DueDay:      request.DueDay,
	}

	if err := s.CardRepo.Update(ctx, card); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapCardNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return s.GetCard(ctx, id)
}

// DeleteCard removes a card with its usages and repayment history.
func (s *CardService) DeleteCard(ctx context.Context, id uuid.UUID) error {
	if err := s.CardRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapCardNotFound(id.String())
		}
		return customError.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx)

	return nil
}

// RecordRepayment records a card-level repayment and spreads it across the
// card's usages in creation order. Leftover beyond the outstanding balances is
// dropped rather than banked against future charges.
func (s *CardService) RecordRepayment(ctx context.Context, cardID uuid.UUID, request *domain.CardRepaymentRequest) (*domain.CardRepaymentResponse, error) {
	if !request.Amount.IsPositive() {
		return nil, customError.WrapInvalidPaymentAmount(request.Amount.String())
	}

	card, err := s.CardRepo.GetByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapCardNotFound(cardID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	totalUsed := decimal.Zero
	for _, usage := range card.Usages {
		totalUsed = totalUsed.Add(usage.Amount)
	}
	totalPaid := decimal.Zero
	for _, repayment := range card.Repayments {
		totalPaid = totalPaid.Add(repayment.Amount)
	}

	currentRemaining := decimal.Max(decimal.Zero, totalUsed.Sub(totalPaid))
	remainingBalance := decimal.Max(decimal.Zero, currentRemaining.Sub(request.Amount))

	repayment := &domain.CardRepayment{
		ID:               uuid.New(),
		CreditCardID:     cardID,
		PaymentDate:      request.PaymentDate,
		Amount:           request.Amount,
		RemainingBalance: remainingBalance,
		CreatedAt:        time.Now(),
	}

	deducted := ledger.Allocate(request.Amount, card.Usages)
	if deducted.GreaterThan(request.Amount) {
		return nil, customError.WrapInvariantViolation("allocator deducted more than the repayment amount")
	}

	if err := s.CardRepo.RecordRepayment(ctx, repayment, card.Usages); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx)

	return &domain.CardRepaymentResponse{
		Repayment:        repayment,
		TotalPaid:        totalPaid.Add(request.Amount),
		RemainingBalance: remainingBalance,
	}, nil
}

// ListRepayments retrieves a card's repayment history, newest first.
func (s *CardService) ListRepayments(ctx context.Context, cardID uuid.UUID) ([]*domain.CardRepayment, error) {
	repayments, err := s.CardRepo.ListRepayments(ctx, cardID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return repayments, nil
}

// summarize derives the listing figures for one card from its usages and
// repayment history.
func (s *CardService) summarize(card *domain.CreditCard, now time.Time) *domain.CardSummary {
	totalUsed := decimal.Zero
	totalRemaining := decimal.Zero
	var dueLines []ledger.DueLine

	for _, usage := range card.Usages {
		totalUsed = totalUsed.Add(usage.Amount)
		totalRemaining = totalRemaining.Add(usage.RemainingAmount)
		for _, payment := range usage.Payments {
			dueLines = append(dueLines, ledger.DueLine{
				DueDate: payment.DueDate,
				Amount:  payment.Amount,
				Paid:    payment.Paid,
			})
		}
	}

	totalCardPaid := decimal.Zero
	for _, repayment := range card.Repayments {
		totalCardPaid = totalCardPaid.Add(repayment.Amount)
	}

	// Net position against the revolving limit: charges less what has been
	// paid back to the card, never below zero.
	cardDebt := decimal.Max(decimal.Zero, totalUsed.Sub(totalCardPaid))
	availableBalance := card.CreditLimit.Sub(cardDebt)

	utilization := decimal.Zero
	if card.CreditLimit.IsPositive() {
		utilization = cardDebt.Div(card.CreditLimit).Mul(oneHundred)
	}

	return &domain.CardSummary{
		CreditCard:       card,
		TotalUsed:        totalUsed,
		TotalRemaining:   totalRemaining,
		TotalCardPaid:    totalCardPaid,
		CardDebt:         cardDebt,
		AvailableBalance: availableBalance,
		UtilizationRate:  utilization,
		DueWithin7Days:   ledger.DueWithinWindow(dueLines, now, s.config.DueSoonWindow()),
		MonthlyDue:       ledger.MonthDue(dueLines, now),
		DaysUntilDue:     ledger.DaysUntilDue(card.DueDay, now),
	}
}

func (s *CardService) invalidateDashboard(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, dashboardCacheKey).Err()
}
