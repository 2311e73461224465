package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	customError "github.com/tanakrit/installment-tracker/pkg/errors"
	"github.com/tanakrit/installment-tracker/pkg/response"
)

// newValidator builds the request validator with the decimal comparison tags
// used throughout the DTOs (validator has no native shopspring support).
func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("decimal_gt", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		threshold, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return value.GreaterThan(threshold)
	})

	_ = v.RegisterValidation("decimal_gte", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		threshold, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return value.GreaterThanOrEqual(threshold)
	})

	return v
}

// pathID extracts a UUID path variable.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[name])
}

// writeError maps business error codes onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var businessErr *customError.BusinessError
	if !errors.As(err, &businessErr) {
		response.InternalServerError(w, "unexpected error", err)
		return
	}

	status := http.StatusInternalServerError
	switch businessErr.Code {
	case customError.ErrCodeSaleNotFound,
		customError.ErrCodeInstallmentNotFound,
		customError.ErrCodeCardNotFound:
		status = http.StatusNotFound
	case customError.ErrCodeValidation,
		customError.ErrCodeInvalidPaymentAmount,
		customError.ErrCodeInstallmentPaid:
		status = http.StatusBadRequest
	}

	response.Error(w, status, businessErr.Message, businessErr.Code, businessErr.Err)
}
