package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tanakrit/installment-tracker/internal/config"
	"github.com/tanakrit/installment-tracker/internal/domain"
	"github.com/tanakrit/installment-tracker/internal/service"
	customError "github.com/tanakrit/installment-tracker/pkg/errors"
	"github.com/tanakrit/installment-tracker/tests/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			DueSoonWindowDays: 7,
			DashboardCacheTTL: time.Minute,
		},
	}
}

func businessCode(t *testing.T, err error) string {
	t.Helper()
	var businessErr *customError.BusinessError
	if !errors.As(err, &businessErr) {
		t.Fatalf("expected a business error, got %v", err)
	}
	return businessErr.Code
}

func TestCreateSale_GeneratesSchedule(t *testing.T) {
	mockRepo := new(mocks.MockSaleRepository)
	saleService := service.NewSaleService(mockRepo, nil, testConfig())

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Sale")).Return(nil)

	request := &domain.SaveSaleRequest{
		Name:                "Somchai",
		Phone:               "0812345678",
		ProductModel:        "iPhone 15",
		CostPrice:           decimal.NewFromInt(7000),
		SellingPrice:        decimal.NewFromInt(12000),
		CustomerDownPayment: decimal.NewFromInt(2000),
		InstallmentMonths:   10,
		PaymentDueDay:       5,
	}

	sale, err := saleService.CreateSale(context.Background(), request)

	assert.NoError(t, err)
	assert.Len(t, sale.Installments, 10)
	for i, line := range sale.Installments {
		assert.Equal(t, i+1, line.Number)
		assert.Equal(t, sale.ID, line.SaleID)
		assert.True(t, decimal.NewFromInt(1000).Equal(line.Amount))
		assert.Equal(t, 5, line.DueDate.Day())
	}
	assert.Equal(t, domain.SaleStatusActive, sale.Status)
	assert.True(t, decimal.NewFromInt(10000).Equal(sale.RemainingInstallment))
	assert.True(t, decimal.NewFromInt(5000).Equal(sale.TotalProfit))
	// Only the down payment is collected so far.
	assert.True(t, decimal.NewFromInt(-5000).Equal(sale.CurrentProfit))
	mockRepo.AssertExpectations(t)
}

func TestCreateSale_KeepsSubmittedSchedule(t *testing.T) {
	mockRepo := new(mocks.MockSaleRepository)
	saleService := service.NewSaleService(mockRepo, nil, testConfig())

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Sale")).Return(nil)

	dueDate := time.Date(2024, time.July, 5, 0, 0, 0, 0, time.UTC)
	request := &domain.SaveSaleRequest{
		Name:              "Somchai",
		Phone:             "0812345678",
		ProductModel:      "iPhone 15",
		SellingPrice:      decimal.NewFromInt(5000),
		InstallmentMonths: 10,
		PaymentDueDay:     5,
		Installments: []domain.InstallmentInput{
			{Number: 1, DueDate: dueDate, Amount: decimal.NewFromInt(2500)},
			{Number: 2, DueDate: dueDate.AddDate(0, 1, 0), Amount: decimal.NewFromInt(2500)},
		},
	}

	sale, err := saleService.CreateSale(context.Background(), request)

	assert.NoError(t, err)
	assert.Len(t, sale.Installments, 2, "submitted lines win over generation")
	assert.Equal(t, dueDate, sale.Installments[0].DueDate)
	mockRepo.AssertExpectations(t)
}

func TestGetSale_NotFound(t *testing.T) {
	mockRepo := new(mocks.MockSaleRepository)
	saleService := service.NewSaleService(mockRepo, nil, testConfig())

	id := uuid.New()
	mockRepo.On("GetByID", mock.Anything, id).Return(nil, sql.ErrNoRows)

	sale, err := saleService.GetSale(context.Background(), id)

	assert.Nil(t, sale)
	assert.Equal(t, customError.ErrCodeSaleNotFound, businessCode(t, err))
	mockRepo.AssertExpectations(t)
}

func TestListSales_RejectsUnknownStatus(t *testing.T) {
	mockRepo := new(mocks.MockSaleRepository)
	saleService := service.NewSaleService(mockRepo, nil, testConfig())

	sales, err := saleService.ListSales(context.Background(), "archived")

	assert.Nil(t, sales)
	assert.Equal(t, customError.ErrCodeValidation, businessCode(t, err))
	mockRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestRecordPayment_MarksLineAndReconciles(t *testing.T) {
	mockRepo := new(mocks.MockSaleRepository)
	saleService := service.NewSaleService(mockRepo, nil, testConfig())

	saleID := uuid.New()
	lineID := uuid.New()
	future := time.Now().AddDate(0, 1, 0)

	mockRepo.On("GetInstallment", mock.Anything, lineID).Return(&domain.Installment{
		ID:      lineID,
		SaleID:  saleID,
		Number:  1,
		DueDate: future,
		Amount:  decimal.NewFromInt(1000),
	}, nil)
	mockRepo.On("MarkInstallmentPaid", mock.Anything, lineID, mock.AnythingOfType("time.Time")).Return(nil)

	// Snapshot read back after the mark: line 1 paid, line 2 outstanding.
	mockRepo.On("GetByID", mock.Anything, saleID).Return(&domain.Sale{
		ID:                  saleID,
		SellingPrice:        decimal.NewFromInt(2000),
		CustomerDownPayment: decimal.Zero,
		Status:              domain.SaleStatusActive,
		Installments: []*domain.Installment{
			{ID: lineID, SaleID: saleID, Number: 1, DueDate: future, Amount: decimal.NewFromInt(1000), Paid: true},
			{SaleID: saleID, Number: 2, DueDate: future.AddDate(0, 1, 0), Amount: decimal.NewFromInt(1000)},
		},
	}, nil)
	mockRepo.On("UpdateDerived", mock.Anything, saleID, mock.AnythingOfType("ledger.Result")).Return(nil)

	sale, err := saleService.RecordPayment(context.Background(), saleID, lineID)

	assert.NoError(t, err)
	assert.Equal(t, domain.SaleStatusActive, sale.Status)
	assert.True(t, decimal.NewFromInt(1000).Equal(sale.RemainingInstallment))
	mockRepo.AssertExpectations(t)
}

func TestRecordPayment_AlreadyPaid(t *testing.T) {
	mockRepo := new(mocks.MockSaleRepository)
	saleService := service.NewSaleService(mockRepo, nil, testConfig())

	saleID := uuid.New()
	lineID := uuid.New()

	mockRepo.On("GetInstallment", mock.Anything, lineID).Return(&domain.Installment{
		ID:     lineID,
		SaleID: saleID,
		Paid:   true,
	}, nil)

	sale, err := saleService.RecordPayment(context.Background(), saleID, lineID)

	assert.Nil(t, sale)
	assert.Equal(t, customError.ErrCodeInstallmentPaid, businessCode(t, err))
	mockRepo.AssertNotCalled(t, "MarkInstallmentPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordPayment_LineBelongsToAnotherSale(t *testing.T) {
	mockRepo := new(mocks.MockSaleRepository)
	saleService := service.NewSaleService(mockRepo, nil, testConfig())

	lineID := uuid.New()
	mockRepo.On("GetInstallment", mock.Anything, lineID).Return(&domain.Installment{
		ID:     lineID,
		SaleID: uuid.New(),
	}, nil)

	sale, err := saleService.RecordPayment(context.Background(), uuid.New(), lineID)

	assert.Nil(t, sale)
	assert.Equal(t, customError.ErrCodeInstallmentNotFound, businessCode(t, err))
}

func TestRefreshStatuses_UpdatesDriftedSalesOnly(t *testing.T) {
	mockRepo := new(mocks.MockSaleRepository)
	saleService := service.NewSaleService(mockRepo, nil, testConfig())

	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	drifted := &domain.Sale{
		ID:                   uuid.New(),
		Status:               domain.SaleStatusActive,
		RemainingInstallment: decimal.NewFromInt(1000),
		CurrentProfit:        decimal.Zero,
		Installments: []*domain.Installment{
			{Number: 1, DueDate: now.AddDate(0, -1, 0), Amount: decimal.NewFromInt(1000)},
		},
	}
	steady := &domain.Sale{
		ID:                   uuid.New(),
		Status:               domain.SaleStatusActive,
		RemainingInstallment: decimal.NewFromInt(1000),
		CurrentProfit:        decimal.Zero,
		Installments: []*domain.Installment{
			{Number: 1, DueDate: now.AddDate(0, 1, 0), Amount: decimal.NewFromInt(1000)},
		},
	}
	done := &domain.Sale{ID: uuid.New(), Status: domain.SaleStatusCompleted}

	mockRepo.On("List", mock.Anything, "").Return([]*domain.Sale{drifted, steady, done}, nil)
	mockRepo.On("UpdateDerived", mock.Anything, drifted.ID, mock.AnythingOfType("ledger.Result")).Return(nil)

	updated, err := saleService.RefreshStatuses(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, 1, updated)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNumberOfCalls(t, "UpdateDerived", 1)
}

func TestDueSoon_PicksNextUnpaidInsideWindow(t *testing.T) {
	mockRepo := new(mocks.MockSaleRepository)
	saleService := service.NewSaleService(mockRepo, nil, testConfig())

	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	window := 7 * 24 * time.Hour

	soon := &domain.Sale{
		ID:     uuid.New(),
		Status: domain.SaleStatusActive,
		Installments: []*domain.Installment{
			{Number: 1, DueDate: now.AddDate(0, -1, 0), Amount: decimal.NewFromInt(1000), Paid: true},
			{Number: 2, DueDate: now.AddDate(0, 0, 3), Amount: decimal.NewFromInt(1000)},
		},
	}
	far := &domain.Sale{
		ID:     uuid.New(),
		Status: domain.SaleStatusActive,
		Installments: []*domain.Installment{
			{Number: 1, DueDate: now.AddDate(0, 2, 0), Amount: decimal.NewFromInt(1000)},
		},
	}
	done := &domain.Sale{ID: uuid.New(), Status: domain.SaleStatusCompleted}

	mockRepo.On("List", mock.Anything, "").Return([]*domain.Sale{soon, far, done}, nil)

	due, err := saleService.DueSoon(context.Background(), now, window)

	assert.NoError(t, err)
	if assert.Len(t, due, 1) {
		assert.Equal(t, soon.ID, due[0].ID)
	}
}
