package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tanakrit/installment-tracker/internal/config"
	"github.com/tanakrit/installment-tracker/internal/domain"
	"github.com/tanakrit/installment-tracker/internal/ledger"
	"github.com/tanakrit/installment-tracker/internal/repository"
	customError "github.com/tanakrit/installment-tracker/pkg/errors"
)

// dashboardCacheKey is shared by every service that mutates sale or card
// state; mutations drop it so the next summary read recomputes.
const dashboardCacheKey = "dashboard:summary"

type SaleService struct {
	SaleRepo repository.SaleRepository
	redis    *redis.Client
	config   *config.Config
}

func NewSaleService(saleRepo repository.SaleRepository, redis *redis.Client, config *config.Config) *SaleService {
	return &SaleService{
		SaleRepo: saleRepo,
		redis:    redis,
		config:   config,
	}
}

func (s *SaleService) ledgerOptions() ledger.Options {
	return ledger.Options{ClampProfit: s.config.Business.ClampProfit}
}

// CreateSale persists a new sale with its installment schedule. When the
// request carries no installments and a positive month count, the schedule is
// generated from the financed principal (selling price minus down payment).
func (s *SaleService) CreateSale(ctx context.Context, request *domain.SaveSaleRequest) (*domain.Sale, error) {
	now := time.Now()

	sale := saleFromRequest(request)
	sale.ID = uuid.New()
	sale.CreatedAt = now
	sale.UpdatedAt = now

	buildLines(sale, request, now)

	result := ledger.Reconcile(sale, sale.Installments, now, s.ledgerOptions())
	applyResult(sale, result)

	if err := s.SaleRepo.Create(ctx, sale); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx)

	return sale, nil
}

// GetSale retrieves one sale with its lines.
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	sale, err := s.SaleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapSaleNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return sale, nil
}

// ListSales retrieves sales, optionally filtered by status.
func (s *SaleService) ListSales(ctx context.Context, status string) ([]*domain.Sale, error) {
	switch status {
	case "", domain.SaleStatusActive, domain.SaleStatusCompleted, domain.SaleStatusOverdue:
	default:
		return nil, customError.WrapValidation("unknown status filter: " + status)
	}

	sales, err := s.SaleRepo.List(ctx, status)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return sales, nil
}

// UpdateSale replaces a sale's terms and line collections wholesale. Edited
// schedules are never diffed against the stored ones; the old lines are
// dropped and the submitted set becomes the schedule.
func (s *SaleService) UpdateSale(ctx context.Context, id uuid.UUID, request *domain.SaveSaleRequest) (*domain.Sale, error) {
	existing, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	sale := saleFromRequest(request)
	sale.ID = existing.ID
	sale.CreatedAt = existing.CreatedAt
	sale.UpdatedAt = now

	buildLines(sale, request, now)

	result := ledger.Reconcile(sale, sale.Installments, now, s.ledgerOptions())
	applyResult(sale, result)

	if err := s.SaleRepo.Replace(ctx, sale); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapSaleNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx)

	return sale, nil
}

// DeleteSale removes a sale and everything it owns.
func (s *SaleService) DeleteSale(ctx context.Context, id uuid.UUID) error {
	if err := s.SaleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapSaleNotFound(id.String())
		}
		return customError.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx)

	return nil
}

// RecordPayment marks one installment paid and reconciles the sale's derived
// fields from the fresh snapshot. Paying an already-paid line is rejected so a
// completed sale can never be double-counted.
func (s *SaleService) RecordPayment(ctx context.Context, saleID uuid.UUID, installmentID uuid.UUID) (*domain.Sale, error) {
	line, err := s.SaleRepo.GetInstallment(ctx, installmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapInstallmentNotFound(installmentID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if line.SaleID != saleID {
		return nil, customError.WrapInstallmentNotFound(installmentID.String())
	}
	if line.Paid {
		return nil, customError.WrapInstallmentAlreadyPaid(installmentID.String())
	}

	now := time.Now()
	if err := s.SaleRepo.MarkInstallmentPaid(ctx, installmentID, now); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	sale, err := s.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	result := ledger.Reconcile(sale, sale.Installments, now, s.ledgerOptions())
	if result.RemainingInstallment.IsNegative() {
		return nil, customError.WrapInvariantViolation("negative remaining installment for sale " + saleID.String())
	}

	if err := s.SaleRepo.UpdateDerived(ctx, saleID, result); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	applyResult(sale, result)
	s.invalidateDashboard(ctx)

	return sale, nil
}

// RefreshStatuses re-reconciles every non-completed sale so active/overdue
// drift is corrected without waiting for the next payment. Returns the number
// of sales whose derived fields changed.
func (s *SaleService) RefreshStatuses(ctx context.Context, now time.Time) (int, error) {
	sales, err := s.SaleRepo.List(ctx, "")
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	updated := 0
	for _, sale := range sales {
		if sale.Status == domain.SaleStatusCompleted {
			continue
		}

		result := ledger.Reconcile(sale, sale.Installments, now, s.ledgerOptions())
		if result.Status == sale.Status &&
			result.RemainingInstallment.Equal(sale.RemainingInstallment) &&
			result.CurrentProfit.Equal(sale.CurrentProfit) {
			continue
		}

		if err := s.SaleRepo.UpdateDerived(ctx, sale.ID, result); err != nil {
			return updated, customError.WrapDatabaseError(err)
		}
		updated++
	}

	if updated > 0 {
		s.invalidateDashboard(ctx)
	}

	return updated, nil
}

// DueSoon returns sales whose next unpaid installment falls inside the window
// starting at now, ordered as listed. Used by the reminder job.
func (s *SaleService) DueSoon(ctx context.Context, now time.Time, window time.Duration) ([]*domain.Sale, error) {
	sales, err := s.SaleRepo.List(ctx, "")
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	var due []*domain.Sale
	for _, sale := range sales {
		if sale.Status == domain.SaleStatusCompleted {
			continue
		}
		next := nextUnpaid(sale.Installments)
		if next == nil {
			continue
		}
		if ledger.Classify(now, window, next.DueDate) == ledger.DueSoon {
			due = append(due, sale)
		}
	}

	return due, nil
}

func (s *SaleService) invalidateDashboard(ctx context.Context) {
	if s.redis == nil {
		return
	}
	// Best effort; a stale summary expires on its own TTL.
	_ = s.redis.Del(ctx, dashboardCacheKey).Err()
}

func saleFromRequest(request *domain.SaveSaleRequest) *domain.Sale {
	sale := &domain.Sale{
		Name:                   request.Name,
		Phone:                  request.Phone,
		Address:                request.Address,
		ProductType:            request.ProductType,
		ProductOther:           request.ProductOther,
		ProductModel:           request.ProductModel,
		SerialNumber:           request.SerialNumber,
		CostPrice:              request.CostPrice,
		CostBonus:              request.CostBonus,
		DownPaymentForPurchase: request.DownPaymentForPurchase,
		SellingPrice:           request.SellingPrice,
		CustomerDownPayment:    request.CustomerDownPayment,
		DownPaymentInstallment: request.DownPaymentInstallment,
		DownPaymentMonths:      request.DownPaymentMonths,
		DownPaymentMonthly:     request.DownPaymentMonthly,
		InstallmentMonths:      request.InstallmentMonths,
		MonthlyPayment:         request.MonthlyPayment,
		PaymentDueDay:          request.PaymentDueDay,
	}
	sale.TotalProfit = ledger.TotalProfit(sale)
	return sale
}

// buildLines attaches installments and card usages to a sale being saved,
// generating the schedule when the client sent none.
func buildLines(sale *domain.Sale, request *domain.SaveSaleRequest, now time.Time) {
	if len(request.Installments) > 0 {
		for _, input := range request.Installments {
			if input.Number <= 0 {
				continue
			}
			sale.Installments = append(sale.Installments, &domain.Installment{
				ID:       uuid.New(),
				SaleID:   sale.ID,
				Number:   input.Number,
				DueDate:  input.DueDate,
				Amount:   input.Amount,
				Paid:     input.Paid,
				PaidDate: input.PaidDate,
			})
		}
	} else if request.InstallmentMonths > 0 {
		principal := request.SellingPrice.Sub(request.CustomerDownPayment)
		lines := ledger.GenerateSchedule(principal, request.InstallmentMonths, request.PaymentDueDay, now)
		for _, line := range lines {
			line.ID = uuid.New()
			line.SaleID = sale.ID
			sale.Installments = append(sale.Installments, line)
		}
	}

	for _, input := range request.CardUsages {
		usage := &domain.CardUsage{
			ID:                uuid.New(),
			CreditCardID:      input.CreditCardID,
			SaleID:            sale.ID,
			Amount:            input.Amount,
			InstallmentsCount: input.InstallmentsCount,
			MonthlyPayment:    input.MonthlyPayment,
			RemainingAmount:   input.RemainingAmount,
			CreatedAt:         now,
		}
		for _, payment := range input.Payments {
			usage.Payments = append(usage.Payments, &domain.CardPayment{
				ID:          uuid.New(),
				CardUsageID: usage.ID,
				Number:      payment.Number,
				DueDate:     payment.DueDate,
				Amount:      payment.Amount,
				Paid:        payment.Paid,
				PaidDate:    payment.PaidDate,
			})
		}
		sale.CardUsages = append(sale.CardUsages, usage)
	}
}

func applyResult(sale *domain.Sale, result ledger.Result) {
	sale.RemainingInstallment = result.RemainingInstallment
	sale.CurrentProfit = result.CurrentProfit
	sale.Status = result.Status
	sale.CompletedAt = result.CompletedAt
}

func nextUnpaid(lines []*domain.Installment) *domain.Installment {
	for _, line := range lines {
		if !line.Paid {
			return line
		}
	}
	return nil
}
