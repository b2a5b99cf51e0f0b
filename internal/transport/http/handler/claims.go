package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nutribridge-api/internal/application/claim"
	"github.com/nutribridge-api/internal/domain"
	"github.com/nutribridge-api/internal/pkg/validate"
)

// ClaimHandler serves the claim ledger and its two projections.
type ClaimHandler struct {
	svc claim.Service
}

func NewClaimHandler(svc claim.Service) *ClaimHandler { return &ClaimHandler{svc: svc} }

func (h *ClaimHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateClaimRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ClaimCreatedEnvelope{ClaimID: c.ClaimID, OTP: c.OTP, Claim: c})
}

func (h *ClaimHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ClaimHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.SetClaimStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c, err := h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ClaimHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyClaimRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c, err := h.svc.Verify(r.Context(), chi.URLParam(r, "id"), req.OTP)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ClaimHandler) DonorInbox(w http.ResponseWriter, r *http.Request) {
	claims, err := h.svc.DonorInbox(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(claims))
}

func (h *ClaimHandler) RequesterClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.svc.RequesterClaims(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(claims))
}

func orEmpty(claims []domain.Claim) []domain.Claim {
	if claims == nil {
		return []domain.Claim{}
	}
	return claims
}
