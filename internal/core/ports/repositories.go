package ports

import (
	"context"
	"time"

	"github.com/robavelii/FusionForms/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FormRepository defines persistence operations for forms.
type FormRepository interface {
	Create(ctx context.Context, form *domain.Form) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Form, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Form, error)
	// Publish marks the form published, stamps published_at and bumps the version.
	Publish(ctx context.Context, id uuid.UUID, publishedAt time.Time) error
}

// SubmissionRepository defines persistence operations for submissions.
// Create accepts a pgx.Tx so the insert and the form's counter increment
// commit in the same transaction.
type SubmissionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, submission *domain.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	ListByForm(ctx context.Context, formID uuid.UUID, limit, offset int) ([]domain.Submission, error)
}

// WebhookRepository defines persistence operations for webhook subscriptions.
type WebhookRepository interface {
	Create(ctx context.Context, webhook *domain.Webhook) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Webhook, error)
	ListByForm(ctx context.Context, formID uuid.UUID) ([]domain.Webhook, error)
	// ListActiveByForm returns only is_active subscriptions; order is
	// implementation-defined.
	ListActiveByForm(ctx context.Context, formID uuid.UUID) ([]domain.Webhook, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// WebhookLogRepository persists delivery attempt logs. Rows are append-only.
type WebhookLogRepository interface {
	Create(ctx context.Context, log *domain.WebhookLog) error
	// ListByWebhook returns logs newest-first.
	ListByWebhook(ctx context.Context, webhookID uuid.UUID, limit int) ([]domain.WebhookLog, error)
}

// AnalyticsRepository maintains the per-form counters.
type AnalyticsRepository interface {
	Create(ctx context.Context, analytics *domain.FormAnalytics) error
	GetByForm(ctx context.Context, formID uuid.UUID) (*domain.FormAnalytics, error)
	// IncrementSubmissions is a single atomic increment executed inside the
	// submission-insert transaction; never a read-modify-write.
	IncrementSubmissions(ctx context.Context, tx pgx.Tx, formID uuid.UUID) error
	IncrementViews(ctx context.Context, formID uuid.UUID) error
}

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
