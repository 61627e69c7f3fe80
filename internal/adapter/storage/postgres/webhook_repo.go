package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/robavelii/FusionForms/internal/core/domain"
	"github.com/robavelii/FusionForms/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WebhookRepo implements ports.WebhookRepository. The events list is stored
// as a JSONB array.
type WebhookRepo struct {
	pool Pool
}

// NewWebhookRepo creates a new WebhookRepo.
func NewWebhookRepo(pool Pool) *WebhookRepo {
	return &WebhookRepo{pool: pool}
}

// Create inserts a new webhook subscription.
func (r *WebhookRepo) Create(ctx context.Context, w *domain.Webhook) error {
	events, err := json.Marshal(w.Events)
	if err != nil {
		return fmt.Errorf("marshal webhook events: %w", err)
	}

	query := `INSERT INTO webhooks (id, form_id, name, url, secret_enc, events, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.pool.Exec(ctx, query,
		w.ID, w.FormID, w.Name, w.URL, w.SecretEnc, events,
		w.IsActive, w.CreatedBy, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert webhook: %w", err)
	}
	return nil
}

// GetByID fetches a webhook by its UUID.
func (r *WebhookRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Webhook, error) {
	query := `SELECT id, form_id, name, url, secret_enc, events, is_active, created_by, created_at, updated_at
		FROM webhooks WHERE id = $1`

	w, err := scanWebhook(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.ErrWebhookNotFound()
		}
		return nil, fmt.Errorf("get webhook by id: %w", err)
	}
	return w, nil
}

// ListByForm fetches all of a form's subscriptions.
func (r *WebhookRepo) ListByForm(ctx context.Context, formID uuid.UUID) ([]domain.Webhook, error) {
	query := `SELECT id, form_id, name, url, secret_enc, events, is_active, created_by, created_at, updated_at
		FROM webhooks WHERE form_id = $1 ORDER BY created_at`
	return r.list(ctx, query, formID)
}

// ListActiveByForm fetches only the form's active subscriptions.
func (r *WebhookRepo) ListActiveByForm(ctx context.Context, formID uuid.UUID) ([]domain.Webhook, error) {
	query := `SELECT id, form_id, name, url, secret_enc, events, is_active, created_by, created_at, updated_at
		FROM webhooks WHERE form_id = $1 AND is_active ORDER BY created_at`
	return r.list(ctx, query, formID)
}

// Delete removes a subscription. Delivery logs are kept.
func (r *WebhookRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM webhooks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrWebhookNotFound()
	}
	return nil
}

func (r *WebhookRepo) list(ctx context.Context, query string, formID uuid.UUID) ([]domain.Webhook, error) {
	rows, err := r.pool.Query(ctx, query, formID)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	defer rows.Close()

	var webhooks []domain.Webhook
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan webhook: %w", err)
		}
		webhooks = append(webhooks, *w)
	}
	return webhooks, rows.Err()
}

func scanWebhook(row pgx.Row) (*domain.Webhook, error) {
	w := &domain.Webhook{}
	var events []byte
	if err := row.Scan(
		&w.ID, &w.FormID, &w.Name, &w.URL, &w.SecretEnc, &events,
		&w.IsActive, &w.CreatedBy, &w.CreatedAt, &w.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(events) > 0 {
		if err := json.Unmarshal(events, &w.Events); err != nil {
			return nil, fmt.Errorf("unmarshal webhook events: %w", err)
		}
	}
	return w, nil
}
