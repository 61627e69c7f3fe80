package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New("FORM_001", "Form not found", http.StatusNotFound)
	assert.Equal(t, "[FORM_001] Form not found", e.Error())

	wrapped := Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, fmt.Errorf("db down"))
	assert.Contains(t, wrapped.Error(), "db down")
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	e := InternalError(inner)
	assert.True(t, errors.Is(e, inner))
}

func TestErrInvalidData_FieldRejection(t *testing.T) {
	e := ErrInvalidData(`field "email" is required`)
	assert.Equal(t, "data", e.Field)
	assert.Equal(t, `Invalid data: field "email" is required`, e.Message)
	assert.Equal(t, http.StatusBadRequest, e.HTTPStatus)
}

func TestRecaptchaErrors(t *testing.T) {
	missing := ErrRecaptchaMissing()
	assert.Equal(t, "recaptcha", missing.Field)
	assert.Equal(t, "Missing recaptcha token", missing.Message)

	failed := ErrRecaptchaFailed()
	assert.Equal(t, "recaptcha", failed.Field)
	assert.Equal(t, "Verification failed", failed.Message)
}

func TestErrFormNotPublished_LooksLikeNotFound(t *testing.T) {
	assert.Equal(t, ErrFormNotFound().Code, ErrFormNotPublished().Code)
	assert.Equal(t, http.StatusNotFound, ErrFormNotPublished().HTTPStatus)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"invalid credentials", ErrInvalidCredentials(), http.StatusUnauthorized},
		{"username exists", ErrUsernameExists(), http.StatusConflict},
		{"rate limited", ErrRateLimitExceeded(), http.StatusTooManyRequests},
		{"webhook not found", ErrWebhookNotFound(), http.StatusNotFound},
		{"not owner", ErrNotFormOwner(), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus)
		})
	}
}
