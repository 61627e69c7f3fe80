package domain

import (
	"time"

	"github.com/google/uuid"
)

// FormAnalytics holds the per-form counters. Submissions must never
// undercount relative to accepted submission writes: the increment happens
// in the same database transaction as the submission insert.
type FormAnalytics struct {
	FormID      uuid.UUID `json:"form_id"`
	Views       int64     `json:"views"`
	Submissions int64     `json:"submissions"`
	LastUpdated time.Time `json:"last_updated"`
}
