package handler

import (
	"net/http"

	"github.com/go-carservice-api/internal/application/car"
	"github.com/go-carservice-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CarHandler struct {
	svc car.Service
}

func NewCarHandler(svc car.Service) *CarHandler { return &CarHandler{svc: svc} }

func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	var req domain.CreateCarRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.svc.Create(r.Context(), id, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CarHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Get(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CarHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	cars, err := h.svc.ListByCustomer(r.Context(), id, chi.URLParam(r, "customerId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

func (h *CarHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	var req domain.UpdateCarRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.svc.Update(r.Context(), id, chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "car deleted"})
}
