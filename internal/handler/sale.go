package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/tanakrit/installment-tracker/internal/domain"
	"github.com/tanakrit/installment-tracker/internal/service"
	"github.com/tanakrit/installment-tracker/pkg/response"
)

type SaleHandler struct {
	service   *service.SaleService
	validator *validator.Validate
}

func NewSaleHandler(service *service.SaleService) *SaleHandler {
	return &SaleHandler{
		service:   service,
		validator: newValidator(),
	}
}

// CreateSale handles POST /api/v1/sales
func (h *SaleHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var request domain.SaveSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	sale, err := h.service.CreateSale(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, sale)
}

// ListSales handles GET /api/v1/sales?status=
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	sales, err := h.service.ListSales(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, sales)
}

// GetSale handles GET /api/v1/sales/{saleId}
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "saleId")
	if err != nil {
		response.BadRequest(w, "invalid sale id", err)
		return
	}

	sale, err := h.service.GetSale(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, sale)
}

// UpdateSale handles PUT /api/v1/sales/{saleId}
func (h *SaleHandler) UpdateSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "saleId")
	if err != nil {
		response.BadRequest(w, "invalid sale id", err)
		return
	}

	var request domain.SaveSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	sale, err := h.service.UpdateSale(r.Context(), id, &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, sale)
}

// DeleteSale handles DELETE /api/v1/sales/{saleId}
func (h *SaleHandler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "saleId")
	if err != nil {
		response.BadRequest(w, "invalid sale id", err)
		return
	}

	if err := h.service.DeleteSale(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "sale deleted"})
}

// RecordPayment handles POST /api/v1/sales/{saleId}/payment
func (h *SaleHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "saleId")
	if err != nil {
		response.BadRequest(w, "invalid sale id", err)
		return
	}

	var request domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	sale, err := h.service.RecordPayment(r.Context(), id, request.InstallmentID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, sale)
}
