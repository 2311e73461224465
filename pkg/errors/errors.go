package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrSaleNotFound         = errors.New("sale not found")
	ErrInstallmentNotFound  = errors.New("installment not found")
	ErrCardNotFound         = errors.New("credit card not found")
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")
	ErrInstallmentPaid      = errors.New("installment already paid")
	ErrValidation           = errors.New("validation failed")
	ErrInvariantViolation   = errors.New("ledger invariant violated")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeSaleNotFound         = "SALE_NOT_FOUND"
	ErrCodeInstallmentNotFound  = "INSTALLMENT_NOT_FOUND"
	ErrCodeCardNotFound         = "CARD_NOT_FOUND"
	ErrCodeInvalidPaymentAmount = "INVALID_PAYMENT_AMOUNT"
	ErrCodeInstallmentPaid      = "INSTALLMENT_ALREADY_PAID"
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeInvariantViolation   = "INVARIANT_VIOLATION"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapSaleNotFound(saleID string) *BusinessError {
	return NewBusinessError(
		ErrCodeSaleNotFound,
		fmt.Sprintf("Sale with ID %s not found", saleID),
		ErrSaleNotFound,
	)
}

func WrapInstallmentNotFound(installmentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotFound,
		fmt.Sprintf("Installment with ID %s not found", installmentID),
		ErrInstallmentNotFound,
	)
}

func WrapCardNotFound(cardID string) *BusinessError {
	return NewBusinessError(
		ErrCodeCardNotFound,
		fmt.Sprintf("Credit card with ID %s not found", cardID),
		ErrCardNotFound,
	)
}

func WrapInstallmentAlreadyPaid(installmentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentPaid,
		fmt.Sprintf("Installment with ID %s is already paid", installmentID),
		ErrInstallmentPaid,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapValidation(message string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		message,
		ErrValidation,
	)
}

func WrapInvariantViolation(message string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvariantViolation,
		message,
		ErrInvariantViolation,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
