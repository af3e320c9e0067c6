package interview

import (
	"fmt"
	"net/http"

	"anemo-backend/internal/platform/web"
	"anemo-backend/internal/schema"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}

	session, turn, err := h.svc.Start(r.Context(), req)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, r, http.StatusOK, TurnResponse{Session: session, Turn: turn})
}

func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}

	session, turn, err := h.svc.Answer(r.Context(), req.Session, req.Answer)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, r, http.StatusOK, TurnResponse{Session: session, Turn: turn})
}

func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, r, err)
		return
	}

	report, err := h.svc.Recommend(r.Context(), req.Session)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, r, http.StatusOK, report)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	reports, err := h.svc.History(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, r, http.StatusOK, reports)
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, r, fmt.Errorf("%w: invalid report id", schema.ErrInvalidInput))
		return
	}

	report, err := h.svc.Report(r.Context(), id)
	if err != nil {
		web.Error(w, r, err)
		return
	}
	web.JSON(w, r, http.StatusOK, report)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/interview", h.Start)
	r.Post("/interview/answer", h.Answer)
	r.Post("/interview/report", h.Recommend)
	r.Get("/interview/history/{userId}", h.History)
	r.Get("/reports/{id}", h.Report)
}
