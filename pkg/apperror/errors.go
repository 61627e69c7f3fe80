package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
// When Field is set, the error renders as a field-level rejection body
// ({"<field>": "<message>"}) instead of the standard error envelope.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	Field      string `json:"-"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// FieldError creates a field-level rejection error.
func FieldError(code string, field string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Field:      field,
		HTTPStatus: httpStatus,
	}
}

// ---- Forms (FORM) ----

func ErrFormNotFound() *AppError {
	return New("FORM_001", "Form not found", http.StatusNotFound)
}

// ErrFormNotPublished is reported as not-found so the public endpoint does
// not leak draft/archived form existence.
func ErrFormNotPublished() *AppError {
	return New("FORM_001", "Form not found", http.StatusNotFound)
}

func ErrNotFormOwner() *AppError {
	return New("FORM_002", "Form belongs to another user", http.StatusForbidden)
}

// ---- Submissions (SUB) ----

// ErrInvalidData is the schema-validation rejection; renders as
// {"data": "Invalid data: <reason>"}.
func ErrInvalidData(reason string) *AppError {
	return FieldError("SUB_001", "data", fmt.Sprintf("Invalid data: %s", reason), http.StatusBadRequest)
}

// ErrRecaptchaMissing renders as {"recaptcha": "Missing recaptcha token"}.
func ErrRecaptchaMissing() *AppError {
	return FieldError("SUB_002", "recaptcha", "Missing recaptcha token", http.StatusBadRequest)
}

// ErrRecaptchaFailed renders as {"recaptcha": "Verification failed"}.
// Transport failures and timeouts against the verification service are
// treated identically to a failed verdict.
func ErrRecaptchaFailed() *AppError {
	return FieldError("SUB_003", "recaptcha", "Verification failed", http.StatusBadRequest)
}

// ---- Webhooks (WH) ----

func ErrWebhookNotFound() *AppError {
	return New("WH_001", "Webhook not found", http.StatusNotFound)
}

// ErrWebhookDelivery wraps a failed manual test delivery.
func ErrWebhookDelivery(message string) *AppError {
	return New("WH_002", message, http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrNotFound(entity string) *AppError {
	return New("SYS_004", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a generic request validation error.
func Validation(message string) *AppError {
	return New("SUB_000", message, http.StatusBadRequest)
}
