package handler

import (
	"net/http"

	"github.com/go-carservice-api/internal/application/workshop"
	"github.com/go-carservice-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

type WorkshopHandler struct {
	svc workshop.Service
}

func NewWorkshopHandler(svc workshop.Service) *WorkshopHandler { return &WorkshopHandler{svc: svc} }

func (h *WorkshopHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateWorkshopRequest
	if !decode(w, r, &req) {
		return
	}
	ws, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ws)
}

func (h *WorkshopHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (h *WorkshopHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListActive(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *WorkshopHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateWorkshopRequest
	if !decode(w, r, &req) {
		return
	}
	ws, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}
