package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/robavelii/FusionForms/internal/core/domain"

	"github.com/google/uuid"
)

// SchemaValidator validates a submission document against a form's schema.
// A schema that declares no fields list accepts any document. The returned
// error describes the first violation encountered.
type SchemaValidator interface {
	Validate(schema json.RawMessage, data map[string]any) error
}

// ChallengeVerifier is the optional anti-abuse check gating acceptance.
type ChallengeVerifier interface {
	// Enabled reports whether a verification secret is configured.
	Enabled() bool
	// Verify checks a caller-supplied token against the third-party
	// verification endpoint. A missing token, a non-success verdict, a
	// transport error and a timeout are all rejections.
	Verify(ctx context.Context, token string, remoteIP string) error
}

// SignatureService computes HMAC-SHA256 message authentication codes over
// outbound payloads.
type SignatureService interface {
	// Sign returns the lowercase hex digest of HMAC-SHA256(secret, payload).
	Sign(secret string, payload []byte) string
	// Verify checks a signature in constant time.
	Verify(secret string, payload []byte, signature string) bool
}

// EncryptionService handles AES-256-GCM encryption of webhook signing
// secrets at rest.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, role domain.UserRole) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Role   domain.UserRole
}

// Actor identifies the authenticated caller for ownership checks.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}

// --- Service Ports (Business Logic) ---

// SubmitRequest holds validated input for the ingestion pipeline.
type SubmitRequest struct {
	FormID         uuid.UUID
	Data           map[string]any
	RecaptchaToken string
	IPAddress      string
	UserAgent      string
	// RequirePublished gates the anonymous public entry variant.
	RequirePublished bool
}

// SubmissionService is the ingestion pipeline: validate, verify, persist,
// enqueue fan-out.
type SubmissionService interface {
	Submit(ctx context.Context, req SubmitRequest) (*domain.Submission, error)
	Get(ctx context.Context, id uuid.UUID, actor Actor) (*domain.Submission, error)
	ListByForm(ctx context.Context, formID uuid.UUID, actor Actor, limit, offset int) ([]domain.Submission, error)
}

// FanoutJob is the work-queue message handed to the dispatcher: form id,
// event type and the already-serialized event data.
type FanoutJob struct {
	FormID    uuid.UUID
	EventType string
	Data      json.RawMessage
}

// TestDeliveryResult is the outcome of a manual test delivery. ResponseCode
// is nil when no HTTP response was received.
type TestDeliveryResult struct {
	ResponseCode *int
	ResponseBody string
}

// WebhookDispatcher delivers events to matching webhook subscriptions.
// Delivery is best-effort at-most-once: every attempt writes exactly one
// WebhookLog row and is never retried.
type WebhookDispatcher interface {
	// Enqueue hands a job to the worker pool without blocking the caller's
	// request path.
	Enqueue(job FanoutJob) error
	// SendTest performs a synchronous test delivery to a single webhook.
	SendTest(ctx context.Context, webhook *domain.Webhook) (*TestDeliveryResult, error)
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// CreateFormParams holds input for form creation.
type CreateFormParams struct {
	Title       string
	Description string
	Schema      json.RawMessage
}

// FormService defines form management and the public read surface.
type FormService interface {
	Create(ctx context.Context, ownerID uuid.UUID, params CreateFormParams) (*domain.Form, error)
	Get(ctx context.Context, id uuid.UUID, actor Actor) (*domain.Form, error)
	ListByOwner(ctx context.Context, actor Actor) ([]domain.Form, error)
	Publish(ctx context.Context, id uuid.UUID, actor Actor) (*domain.Form, error)
	// GetPublished is the anonymous public read; anything not published is
	// reported as not found.
	GetPublished(ctx context.Context, id uuid.UUID) (*domain.Form, error)
	TrackView(ctx context.Context, formID uuid.UUID) error
	Analytics(ctx context.Context, formID uuid.UUID, actor Actor) (*domain.FormAnalytics, error)
}

// CreateWebhookParams holds input for webhook subscription creation.
// Secret is the plaintext signing secret; empty means unsigned delivery.
type CreateWebhookParams struct {
	FormID uuid.UUID
	Name   string
	URL    string
	Secret string
	Events []string
}

// WebhookService defines webhook subscription management.
type WebhookService interface {
	Create(ctx context.Context, actor Actor, params CreateWebhookParams) (*domain.Webhook, error)
	ListByForm(ctx context.Context, formID uuid.UUID, actor Actor) ([]domain.Webhook, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
	// Test sends one synthetic delivery with event_type "test", subject to
	// the same signing and logging contract as production fan-out.
	Test(ctx context.Context, id uuid.UUID, actor Actor) (*TestDeliveryResult, error)
	// Logs returns delivery logs for the webhook, newest-first.
	Logs(ctx context.Context, id uuid.UUID, actor Actor, limit int) ([]domain.WebhookLog, error)
}

// AuditService records audited actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
