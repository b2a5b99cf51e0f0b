package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nutribridge-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

type HealthEnvelope struct {
	OK bool `json:"ok"`
}

// ClaimCreatedEnvelope wraps POST /api/claims. OTP stays null until the donor accepts.
type ClaimCreatedEnvelope struct {
	ClaimID string        `json:"claim_id"`
	OTP     *string       `json:"otp"`
	Claim   *domain.Claim `json:"claim"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg, ErrorCode: status})
}

// decodeJSON reads the body into dst and writes a 400 when it is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
