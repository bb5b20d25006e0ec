package handler

import (
	"net/http"

	"github.com/go-carservice-api/internal/application/booking"
	"github.com/go-carservice-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

type BookingHandler struct {
	svc booking.Service
}

func NewBookingHandler(svc booking.Service) *BookingHandler { return &BookingHandler{svc: svc} }

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	var req domain.CreateBookingRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := h.svc.Create(r.Context(), id, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BookingHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	list, err := h.svc.ListByCustomer(r.Context(), id, chi.URLParam(r, "customerId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateBookingRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
