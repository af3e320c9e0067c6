package clinic

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

func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}

	result, err := h.svc.Lookup(r.Context(), req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, r, http.StatusOK, result)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	web.JSON(w, r, http.StatusOK, h.svc.Search(SearchRequest{Query: r.URL.Query().Get("q")}))
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/clinics", h.List)
	r.Post("/clinics/search", h.Lookup)
}
