package handler

import (
	"net/http"

	"github.com/go-carservice-api/internal/application/actor"
	"github.com/go-carservice-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// ActorHandler serves profile endpoints. Admins may act on anyone; everyone
// else only on their own record.
type ActorHandler struct {
	svc  actor.Service
	kind domain.ActorKind
}

func NewActorHandler(svc actor.Service, kind domain.ActorKind) *ActorHandler {
	return &ActorHandler{svc: svc, kind: kind}
}

// self resolves the {id} parameter and checks the caller may act on it.
func (h *ActorHandler) self(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := caller(w, r)
	if !ok {
		return "", false
	}
	target := chi.URLParam(r, "id")
	if !id.CanAccess(target) {
		writeError(w, http.StatusForbidden, "forbidden")
		return "", false
	}
	return target, true
}

func (h *ActorHandler) Get(w http.ResponseWriter, r *http.Request) {
	target, ok := h.self(w, r)
	if !ok {
		return
	}
	a, err := h.svc.Get(r.Context(), h.kind, target)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ActorHandler) List(w http.ResponseWriter, r *http.Request) {
	actors, err := h.svc.List(r.Context(), h.kind)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, actors)
}

func (h *ActorHandler) Update(w http.ResponseWriter, r *http.Request) {
	target, ok := h.self(w, r)
	if !ok {
		return
	}
	var req domain.UpdateActorRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := h.svc.Update(r.Context(), h.kind, target, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ActorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	target, ok := h.self(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), h.kind, target); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: string(h.kind) + " deleted"})
}
