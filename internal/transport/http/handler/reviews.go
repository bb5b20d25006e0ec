package handler

import (
	"net/http"

	"github.com/go-carservice-api/internal/application/review"
	"github.com/go-carservice-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

type ReviewHandler struct {
	svc review.Service
}

func NewReviewHandler(svc review.Service) *ReviewHandler { return &ReviewHandler{svc: svc} }

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	var req domain.CreateReviewRequest
	if !decode(w, r, &req) {
		return
	}
	rv, err := h.svc.Create(r.Context(), id, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (h *ReviewHandler) ListByService(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListByService(r.Context(), chi.URLParam(r, "serviceId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ReviewHandler) GetByBooking(w http.ResponseWriter, r *http.Request) {
	rv, err := h.svc.GetByBooking(r.Context(), chi.URLParam(r, "bookingId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "review deleted"})
}
