package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Submission is an accepted form response. Immutable once created except for
// the IsSpam flag.
type Submission struct {
	ID        uuid.UUID       `json:"id"`
	FormID    uuid.UUID       `json:"form_id"`
	Data      json.RawMessage `json:"data"`
	IPAddress string          `json:"ip_address"`
	UserAgent string          `json:"user_agent"`
	IsSpam    bool            `json:"is_spam"`
	CreatedAt time.Time       `json:"created_at"`
}
