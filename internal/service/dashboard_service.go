package service

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/tanakrit/installment-tracker/internal/config"
	"github.com/tanakrit/installment-tracker/internal/domain"
	customError "github.com/tanakrit/installment-tracker/pkg/errors"
)

type DashboardService struct {
	SaleRepo repositorySaleLister
	redis    *redis.Client
	config   *config.Config
}

// repositorySaleLister is the slice of SaleRepository the dashboard needs.
type repositorySaleLister interface {
	List(ctx context.Context, status string) ([]*domain.Sale, error)
}

func NewDashboardService(saleRepo repositorySaleLister, redis *redis.Client, config *config.Config) *DashboardService {
	return &DashboardService{
		SaleRepo: saleRepo,
		redis:    redis,
		config:   config,
	}
}

// Summary aggregates figures over every sale. The result is cached in redis
// under a short TTL; mutating operations drop the key.
func (s *DashboardService) Summary(ctx context.Context, now time.Time) (*domain.DashboardSummary, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	sales, err := s.SaleRepo.List(ctx, "")
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	summary := &domain.DashboardSummary{
		TotalSales:          decimal.Zero,
		TotalCost:           decimal.Zero,
		TotalCollected:      decimal.Zero,
		TotalRemaining:      decimal.Zero,
		TotalProfit:         decimal.Zero,
		CurrentProfit:       decimal.Zero,
		CreditCardRemaining: decimal.Zero,
		UpcomingPayments:    []*domain.Sale{},
	}

	for _, sale := range sales {
		summary.TotalSales = summary.TotalSales.Add(sale.SellingPrice)
		summary.TotalCost = summary.TotalCost.Add(sale.CostPrice).Add(sale.CostBonus)
		summary.TotalRemaining = summary.TotalRemaining.Add(sale.RemainingInstallment)
		summary.TotalProfit = summary.TotalProfit.Add(sale.TotalProfit)

		// Collected and current profit come straight from the lines, not the
		// cached columns, so a stale row cannot skew the overview.
		paid := decimal.Zero
		for _, line := range sale.Installments {
			if line.Paid {
				paid = paid.Add(line.Amount)
			}
		}
		collected := paid.Add(sale.CustomerDownPayment)
		summary.TotalCollected = summary.TotalCollected.Add(collected)
		summary.CurrentProfit = summary.CurrentProfit.Add(collected.Sub(sale.CostPrice).Sub(sale.CostBonus))

		for _, usage := range sale.CardUsages {
			summary.CreditCardRemaining = summary.CreditCardRemaining.Add(usage.RemainingAmount)
		}

		switch sale.Status {
		case domain.SaleStatusActive:
			summary.ActiveCustomers++
		case domain.SaleStatusCompleted:
			summary.CompletedCustomers++
		case domain.SaleStatusOverdue:
			summary.OverdueCustomers++
		}
	}

	summary.UpcomingPayments = upcomingPayments(sales, now, s.config.Business.DueSoonWindowDays)

	s.toCache(ctx, summary)

	return summary, nil
}

// upcomingPayments picks sales still owing whose next unpaid line falls within
// windowDays either side of now, soonest due first.
func upcomingPayments(sales []*domain.Sale, now time.Time, windowDays int) []*domain.Sale {
	upcoming := []*domain.Sale{}
	for _, sale := range sales {
		if sale.Status != domain.SaleStatusActive && sale.Status != domain.SaleStatusOverdue {
			continue
		}
		next := nextUnpaid(sale.Installments)
		if next == nil {
			continue
		}
		diffDays := int(math.Ceil(next.DueDate.Sub(now).Hours() / 24))
		if diffDays <= windowDays && diffDays >= -windowDays {
			upcoming = append(upcoming, sale)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		a := nextUnpaid(upcoming[i].Installments)
		b := nextUnpaid(upcoming[j].Installments)
		return a.DueDate.Before(b.DueDate)
	})

	return upcoming
}

func (s *DashboardService) fromCache(ctx context.Context) *domain.DashboardSummary {
	if s.redis == nil {
		return nil
	}

	raw, err := s.redis.Get(ctx, dashboardCacheKey).Bytes()
	if err != nil {
		return nil
	}

	var summary domain.DashboardSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil
	}
	return &summary
}

func (s *DashboardService) toCache(ctx context.Context, summary *domain.DashboardSummary) {
	if s.redis == nil {
		return
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, dashboardCacheKey, raw, s.config.Business.DashboardCacheTTL).Err(); err != nil {
		log.Printf("dashboard cache write failed: %v", err)
	}
}
