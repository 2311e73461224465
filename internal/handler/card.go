package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/tanakrit/installment-tracker/internal/domain"
	"github.com/tanakrit/installment-tracker/internal/service"
	"github.com/tanakrit/installment-tracker/pkg/response"
)

type CardHandler struct {
	service   *service.CardService
	validator *validator.Validate
}

func NewCardHandler(service *service.CardService) *CardHandler {
	return &CardHandler{
		service:   service,
		validator: newValidator(),
	}
}

// CreateCard handles POST /api/v1/credit-cards
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var request domain.SaveCardRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	card, err := h.service.CreateCard(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, card)
}

// ListCards handles GET /api/v1/credit-cards
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.service.ListCards(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, cards)
}

// GetCard handles GET /api/v1/credit-cards/{cardId}
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "cardId")
	if err != nil {
		response.BadRequest(w, "invalid card id", err)
		return
	}

	card, err := h.service.GetCard(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, card)
}

// UpdateCard handles PUT /api/v1/credit-cards/{cardId}
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "cardId")
	if err != nil {
		response.BadRequest(w, "invalid card id", err)
		return
	}

	var request domain.SaveCardRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	card, err := h.service.UpdateCard(r.Context(), id, &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, card)
}

// DeleteCard handles DELETE /api/v1/credit-cards/{cardId}
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "cardId")
	if err != nil {
		response.BadRequest(w, "invalid card id", err)
		return
	}

	if err := h.service.DeleteCard(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "credit card deleted"})
}

// RecordRepayment handles POST /api/v1/credit-cards/{cardId}/payment
func (h *CardHandler) RecordRepayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "cardId")
	if err != nil {
		response.BadRequest(w, "invalid card id", err)
		return
	}

	var request domain.CardRepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	result, err := h.service.RecordRepayment(r.Context(), id, &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, result)
}

// ListRepayments handles GET /api/v1/credit-cards/{cardId}/payment
func (h *CardHandler) ListRepayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "cardId")
	if err != nil {
		response.BadRequest(w, "invalid card id", err)
		return
	}

	repayments, err := h.service.ListRepayments(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, repayments)
}
