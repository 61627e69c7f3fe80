package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionRegister      AuditAction = "REGISTER"
	AuditActionLogin         AuditAction = "LOGIN"
	AuditActionCreateForm    AuditAction = "CREATE_FORM"
	AuditActionPublishForm   AuditAction = "PUBLISH_FORM"
	AuditActionSubmit        AuditAction = "SUBMIT"
	AuditActionCreateWebhook AuditAction = "CREATE_WEBHOOK"
	AuditActionDeleteWebhook AuditAction = "DELETE_WEBHOOK"
	AuditActionTestWebhook   AuditAction = "TEST_WEBHOOK"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	UserID       *uuid.UUID  `json:"user_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
