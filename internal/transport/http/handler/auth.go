package handler

import (
	"net/http"

	"github.com/go-carservice-api/internal/application/auth"
	"github.com/go-carservice-api/internal/domain"
)

// AuthHandler serves the OTP registration and login endpoints for one actor kind.
type AuthHandler struct {
	svc  auth.Service
	kind domain.ActorKind
}

func NewAuthHandler(svc auth.Service, kind domain.ActorKind) *AuthHandler {
	return &AuthHandler{svc: svc, kind: kind}
}

func (h *AuthHandler) RequestRegistration(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	iss, err := h.svc.RequestRegistration(r.Context(), h.kind, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OTPEnvelope{Message: "OTP sent", Issuance: iss})
}

func (h *AuthHandler) VerifyRegistration(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.svc.VerifyRegistration(r.Context(), h.kind, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionEnvelope{Message: "registration successful", Session: sess})
}

func (h *AuthHandler) RequestLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	iss, err := h.svc.RequestLogin(r.Context(), h.kind, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OTPEnvelope{Message: "OTP sent", Issuance: iss})
}

func (h *AuthHandler) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.svc.VerifyLogin(r.Context(), h.kind, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{Message: "login successful", Session: sess})
}
