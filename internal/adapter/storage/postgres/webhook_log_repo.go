package postgres

import (
	"context"
	"fmt"

	"github.com/robavelii/FusionForms/internal/core/domain"

	"github.com/google/uuid"
)

// WebhookLogRepo implements ports.WebhookLogRepository. Rows are append-only.
type WebhookLogRepo struct {
	pool Pool
}

// NewWebhookLogRepo creates a new WebhookLogRepo.
func NewWebhookLogRepo(pool Pool) *WebhookLogRepo {
	return &WebhookLogRepo{pool: pool}
}

// Create inserts one delivery attempt record.
func (r *WebhookLogRepo) Create(ctx context.Context, l *domain.WebhookLog) error {
	query := `INSERT INTO webhook_logs (webhook_id, event_type, response_code, response_body, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		l.WebhookID, l.EventType, l.ResponseCode, l.ResponseBody, l.CreatedAt,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("insert webhook log: %w", err)
	}
	return nil
}

// ListByWebhook fetches a webhook's delivery logs, newest first.
func (r *WebhookLogRepo) ListByWebhook(ctx context.Context, webhookID uuid.UUID, limit int) ([]domain.WebhookLog, error) {
	query := `SELECT id, webhook_id, event_type, response_code, response_body, created_at
		FROM webhook_logs WHERE webhook_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, webhookID, limit)
	if err != nil {
		return nil, fmt.Errorf("list webhook logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.WebhookLog
	for rows.Next() {
		var l domain.WebhookLog
		if err := rows.Scan(
			&l.ID, &l.WebhookID, &l.EventType, &l.ResponseCode, &l.ResponseBody, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan webhook log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
