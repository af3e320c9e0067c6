package chat

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

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}

	answer, err := h.svc.Answer(r.Context(), req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, r, http.StatusOK, answer)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/chat", h.Ask)
}
