package domain

import (
	"time"

	"github.com/google/uuid"
)

// Webhook event types. Matching is exact string membership against a
// webhook's events list; no wildcards.
const (
	EventSubmissionCreated = "submission.created"
	EventFormPublished     = "form.published"
	EventTest              = "test"
)

// Webhook is a per-form delivery subscription. SecretEnc holds the signing
// secret encrypted at rest; an empty value means deliveries are unsigned.
type Webhook struct {
	ID        uuid.UUID `json:"id"`
	FormID    uuid.UUID `json:"form_id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	SecretEnc string    `json:"-"`
	Events    []string  `json:"events"`
	IsActive  bool      `json:"is_active"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubscribesTo reports whether eventType is a member of the webhook's events set.
func (w *Webhook) SubscribesTo(eventType string) bool {
	for _, e := range w.Events {
		if e == eventType {
			return true
		}
	}
	return false
}

// WebhookLog records one delivery attempt. Exactly one row exists per
// attempt, including manual test deliveries; rows are never mutated.
// A nil ResponseCode means the attempt never received an HTTP response
// (network error or timeout) and ResponseBody carries the error text.
type WebhookLog struct {
	ID           int64     `json:"id"`
	WebhookID    uuid.UUID `json:"webhook_id"`
	EventType    string    `json:"event_type"`
	ResponseCode *int      `json:"response_code"`
	ResponseBody string    `json:"response_body"`
	CreatedAt    time.Time `json:"created_at"`
}
