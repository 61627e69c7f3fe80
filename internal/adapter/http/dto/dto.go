package dto

import (
	"encoding/json"
	"time"

	"github.com/robavelii/FusionForms/internal/core/domain"
)

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// CreateFormRequest is the request body for form creation.
type CreateFormRequest struct {
	Title       string          `json:"title" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	Schema      json.RawMessage `json:"schema,omitempty"`
}

// FormResponse is the API representation of a form.
type FormResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Schema      json.RawMessage `json:"schema"`
	Version     int             `json:"version"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"created_at"`
	PublishedAt *string         `json:"published_at,omitempty"`
}

// NewFormResponse maps a domain form to its API representation.
func NewFormResponse(f *domain.Form) FormResponse {
	resp := FormResponse{
		ID:          f.ID.String(),
		Title:       f.Title,
		Description: f.Description,
		Schema:      f.Schema,
		Version:     f.Version,
		Status:      string(f.Status),
		CreatedAt:   f.CreatedAt.UTC().Format(time.RFC3339),
	}
	if f.PublishedAt != nil {
		s := f.PublishedAt.UTC().Format(time.RFC3339)
		resp.PublishedAt = &s
	}
	return resp
}

// SubmitRequest is the request body for a form submission. Data carries the
// raw response document; recaptcha_token is required only when verification
// is enabled server-side.
type SubmitRequest struct {
	Data           map[string]any `json:"data" binding:"required"`
	RecaptchaToken string         `json:"recaptcha_token"`
}

// SubmissionResponse is the API representation of a stored submission.
type SubmissionResponse struct {
	ID        string          `json:"id"`
	FormID    string          `json:"form_id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt string          `json:"created_at"`
}

// NewSubmissionResponse maps a domain submission to its API representation.
func NewSubmissionResponse(s *domain.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:        s.ID.String(),
		FormID:    s.FormID.String(),
		Data:      s.Data,
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CreateWebhookRequest is the request body for webhook registration. The
// secret is write-only; it is never echoed back.
type CreateWebhookRequest struct {
	Name   string   `json:"name" binding:"required,min=1,max=100"`
	URL    string   `json:"url" binding:"required,safe_url"`
	Secret string   `json:"secret" binding:"max=200"`
	Events []string `json:"events"`
}

// WebhookResponse is the API representation of a webhook subscription.
type WebhookResponse struct {
	ID        string   `json:"id"`
	FormID    string   `json:"form_id"`
	Name      string   `json:"name"`
	URL       string   `json:"url"`
	Events    []string `json:"events"`
	IsActive  bool     `json:"is_active"`
	CreatedAt string   `json:"created_at"`
}

// NewWebhookResponse maps a domain webhook to its API representation.
func NewWebhookResponse(w *domain.Webhook) WebhookResponse {
	return WebhookResponse{
		ID:        w.ID.String(),
		FormID:    w.FormID.String(),
		Name:      w.Name,
		URL:       w.URL,
		Events:    w.Events,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// WebhookLogResponse is the API representation of one delivery attempt.
type WebhookLogResponse struct {
	ID           int64  `json:"id"`
	EventType    string `json:"event_type"`
	ResponseCode *int   `json:"response_code"`
	ResponseBody string `json:"response_body"`
	CreatedAt    string `json:"created_at"`
}

// NewWebhookLogResponse maps a domain webhook log to its API representation.
func NewWebhookLogResponse(l *domain.WebhookLog) WebhookLogResponse {
	return WebhookLogResponse{
		ID:           l.ID,
		EventType:    l.EventType,
		ResponseCode: l.ResponseCode,
		ResponseBody: l.ResponseBody,
		CreatedAt:    l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// TestDeliveryResponse is the outcome of a manual test delivery.
type TestDeliveryResponse struct {
	ResponseCode *int   `json:"response_code"`
	ResponseBody string `json:"response_body"`
}

// AnalyticsResponse carries a form's counters.
type AnalyticsResponse struct {
	FormID      string `json:"form_id"`
	Views       int64  `json:"views"`
	Submissions int64  `json:"submissions"`
	LastUpdated string `json:"last_updated"`
}

// NewAnalyticsResponse maps domain analytics to the API representation.
func NewAnalyticsResponse(a *domain.FormAnalytics) AnalyticsResponse {
	return AnalyticsResponse{
		FormID:      a.FormID.String(),
		Views:       a.Views,
		Submissions: a.Submissions,
		LastUpdated: a.LastUpdated.UTC().Format(time.RFC3339),
	}
}
