package service_test

import (
	"context"
	"database/sql"
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

func cardConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			DueSoonWindowDays: 7,
		},
	}
}

func TestCreateCard(t *testing.T) {
	mockRepo := new(mocks.MockCardRepository)
	cardService := service.NewCardService(mockRepo, nil, cardConfig())

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.CreditCard")).Return(nil)

	card, err := cardService.CreateCard(context.Background(), &domain.SaveCardRequest{
		Name:        "KBank Visa",
		CreditLimit: decimal.NewFromInt(50000),
		DueDay:      25,
	})

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, card.ID)
	assert.Equal(t, "KBank Visa", card.Name)
	assert.Equal(t, 25, card.DueDay)
	mockRepo.AssertExpectations(t)
}

func TestGetCard_NotFound(t *testing.T) {
	mockRepo := new(mocks.MockCardRepository)
	cardService := service.NewCardService(mockRepo, nil, cardConfig())

	id := uuid.New()
	mockRepo.On("GetByID", mock.Anything, id).Return(nil, sql.ErrNoRows)

	summary, err := cardService.GetCard(context.Background(), id)

	assert.Nil(t, summary)
	assert.Equal(t, customError.ErrCodeCardNotFound, businessCode(t, err))
}

func TestGetCard_SummaryFigures(t *testing.T) {
	mockRepo := new(mocks.MockCardRepository)
	cardService := service.NewCardService(mockRepo, nil, cardConfig())

	id := uuid.New()
	card := &domain.CreditCard{
		ID:          id,
		Name:        "KBank Visa",
		CreditLimit: decimal.NewFromInt(50000),
		DueDay:      25,
		Usages: []*domain.CardUsage{
			{Amount: decimal.NewFromInt(12000), RemainingAmount: decimal.NewFromInt(8000)},
			{Amount: decimal.NewFromInt(8000), RemainingAmount: decimal.NewFromInt(8000)},
		},
		Repayments: []*domain.CardRepayment{
			{Amount: decimal.NewFromInt(10000)},
		},
	}
	mockRepo.On("GetByID", mock.Anything, id).Return(card, nil)

	summary, err := cardService.GetCard(context.Background(), id)

	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20000).Equal(summary.TotalUsed))
	assert.True(t, decimal.NewFromInt(16000).Equal(summary.TotalRemaining))
	assert.True(t, decimal.NewFromInt(10000).Equal(summary.TotalCardPaid))
	assert.True(t, decimal.NewFromInt(10000).Equal(summary.CardDebt))
	assert.True(t, decimal.NewFromInt(40000).Equal(summary.AvailableBalance))
	// 10000 / 50000 = 20%.
	assert.True(t, decimal.NewFromInt(20).Equal(summary.UtilizationRate))
}

func TestGetCard_DebtNeverNegative(t *testing.T) {
	mockRepo := new(mocks.MockCardRepository)
	cardService := service.NewCardService(mockRepo, nil, cardConfig())

	id := uuid.New()
	card := &domain.CreditCard{
		ID:          id,
		CreditLimit: decimal.NewFromInt(50000),
		DueDay:      25,
		Usages: []*domain.CardUsage{
			{Amount: decimal.NewFromInt(5000), RemainingAmount: decimal.Zero},
		},
		Repayments: []*domain.CardRepayment{
			{Amount: decimal.NewFromInt(9000)},
		},
	}
	mockRepo.On("GetByID", mock.Anything, id).Return(card, nil)

	summary, err := cardService.GetCard(context.Background(), id)

	assert.NoError(t, err)
	assert.True(t, summary.CardDebt.IsZero())
	assert.True(t, decimal.NewFromInt(50000).Equal(summary.AvailableBalance))
}

func TestRecordRepayment_SpreadsAcrossUsages(t *testing.T) {
	mockRepo := new(mocks.MockCardRepository)
	cardService := service.NewCardService(mockRepo, nil, cardConfig())

	id := uuid.New()
	card := &domain.CreditCard{
		ID:          id,
		CreditLimit: decimal.NewFromInt(50000),
		DueDay:      25,
		Usages: []*domain.CardUsage{
			{ID: uuid.New(), Amount: decimal.NewFromInt(500), RemainingAmount: decimal.NewFromInt(500)},
			{ID: uuid.New(), Amount: decimal.NewFromInt(300), RemainingAmount: decimal.NewFromInt(300)},
		},
	}
	mockRepo.On("GetByID", mock.Anything, id).Return(card, nil)
	mockRepo.On("RecordRepayment", mock.Anything, mock.AnythingOfType("*domain.CardRepayment"), card.Usages).Return(nil)

	response, err := cardService.RecordRepayment(context.Background(), id, &domain.CardRepaymentRequest{
		PaymentDate: time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.NewFromInt(700),
	})

	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(700).Equal(response.TotalPaid))
	assert.True(t, decimal.NewFromInt(100).Equal(response.RemainingBalance))
	assert.True(t, decimal.NewFromInt(100).Equal(response.Repayment.RemainingBalance))

	// First usage drained, second partially consumed.
	assert.True(t, card.Usages[0].RemainingAmount.IsZero())
	assert.True(t, decimal.NewFromInt(100).Equal(card.Usages[1].RemainingAmount))
	mockRepo.AssertExpectations(t)
}

func TestRecordRepayment_RejectsNonPositiveAmount(t *testing.T) {
	mockRepo := new(mocks.MockCardRepository)
	cardService := service.NewCardService(mockRepo, nil, cardConfig())

	response, err := cardService.RecordRepayment(context.Background(), uuid.New(), &domain.CardRepaymentRequest{
		PaymentDate: time.Now(),
		Amount:      decimal.Zero,
	})

	assert.Nil(t, response)
	assert.Equal(t, customError.ErrCodeInvalidPaymentAmount, businessCode(t, err))
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestRecordRepayment_OverpaymentFloorsAtZero(t *testing.T) {
	mockRepo := new(mocks.MockCardRepository)
	cardService := service.NewCardService(mockRepo, nil, cardConfig())

	id := uuid.New()
	card := &domain.CreditCard{
		ID:          id,
		CreditLimit: decimal.NewFromInt(50000),
		DueDay:      25,
		Usages: []*domain.CardUsage{
			{ID: uuid.New(), Amount: decimal.NewFromInt(200), RemainingAmount: decimal.NewFromInt(200)},
		},
	}
	mockRepo.On("GetByID", mock.Anything, id).Return(card, nil)
	mockRepo.On("RecordRepayment", mock.Anything, mock.AnythingOfType("*domain.CardRepayment"), card.Usages).Return(nil)

	response, err := cardService.RecordRepayment(context.Background(), id, &domain.CardRepaymentRequest{
		PaymentDate: time.Now(),
		Amount:      decimal.NewFromInt(1000),
	})

	assert.NoError(t, err)
	assert.True(t, response.RemainingBalance.IsZero())
	assert.True(t, card.Usages[0].RemainingAmount.IsZero())
}

func TestDeleteCard_NotFound(t *testing.T) {
	mockRepo := new(mocks.MockCardRepository)
	cardService := service.NewCardService(mockRepo, nil, cardConfig())

	id := uuid.New()
	mockRepo.On("Delete", mock.Anything, id).Return(sql.ErrNoRows)

	err := cardService.DeleteCard(context.Background(), id)

	assert.Equal(t, customError.ErrCodeCardNotFound, businessCode(t, err))
}
