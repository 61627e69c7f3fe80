package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FormStatus represents the lifecycle state of a form.
type FormStatus string

const (
	FormStatusDraft     FormStatus = "draft"
	FormStatusPublished FormStatus = "published"
	FormStatusArchived  FormStatus = "archived"
)

// Form is a form definition owned by a user. Schema is the raw JSON schema
// document the form builder produces ({title, description, fields, settings});
// the pipeline only consults its "fields" list for validation.
type Form struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Schema      json.RawMessage `json:"schema"`
	Version     int             `json:"version"`
	Status      FormStatus      `json:"status"`
	CreatedBy   uuid.UUID       `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
}

// IsPublished reports whether the form accepts anonymous public submissions.
func (f *Form) IsPublished() bool {
	return f.Status == FormStatusPublished
}
