package handler

import (
	"net/http"
	"time"

	"github.com/tanakrit/installment-tracker/internal/service"
	"github.com/tanakrit/installment-tracker/pkg/response"
)

type DashboardHandler struct {
	service *service.DashboardService
}

func NewDashboardHandler(service *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary handles GET /api/v1/dashboard
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, summary)
}
