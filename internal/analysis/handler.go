package analysis

import (
	"net/http"

	"anemo-backend/internal/platform/web"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) DescribeImage(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}

	result, err := h.svc.DescribeImage(r.Context(), req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, r, http.StatusOK, result)
}

func (h *Handler) AnalyzeCbcReport(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}

	report, err := h.svc.AnalyzeCbcReport(r.Context(), req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, r, http.StatusOK, report)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/analysis/image", h.DescribeImage)
	r.Post("/analysis/cbc", h.AnalyzeCbcReport)
}
