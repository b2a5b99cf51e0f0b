package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nutribridge-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("title: %w", domain.ErrValidation), http.StatusUnprocessableEntity},
		{domain.ErrVerificationMismatch, http.StatusUnprocessableEntity},
		{fmt.Errorf("claim C1: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrInvalidTransition, http.StatusConflict},
		{domain.ErrAlreadyCompleted, http.StatusConflict},
		{domain.ErrConflict, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, statusFor(c.err), c.err.Error())
	}
}

func TestWriteServiceError_HidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/claims/C1", nil)
	writeServiceError(rr, r, errors.New("dial tcp 10.0.0.1: refused"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal server error","error_code":500}`, rr.Body.String())
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler().Check(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
}
