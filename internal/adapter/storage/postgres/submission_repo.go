package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/robavelii/FusionForms/internal/core/domain"
	"github.com/robavelii/FusionForms/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SubmissionRepo implements ports.SubmissionRepository.
type SubmissionRepo struct {
	pool Pool
}

// NewSubmissionRepo creates a new SubmissionRepo.
func NewSubmissionRepo(pool Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

// Create inserts a submission inside the caller's transaction so the insert
// and the counter increment commit atomically.
func (r *SubmissionRepo) Create(ctx context.Context, tx pgx.Tx, s *domain.Submission) error {
	query := `INSERT INTO submissions (id, form_id, data, ip_address, user_agent, is_spam, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		s.ID, s.FormID, s.Data, s.IPAddress, s.UserAgent, s.IsSpam, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// GetByID fetches a submission by its UUID.
func (r *SubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	query := `SELECT id, form_id, data, ip_address, user_agent, is_spam, created_at
		FROM submissions WHERE id = $1`

	s := &domain.Submission{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.FormID, &s.Data, &s.IPAddress, &s.UserAgent, &s.IsSpam, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.ErrNotFound("Submission")
		}
		return nil, fmt.Errorf("get submission by id: %w", err)
	}
	return s, nil
}

// ListByForm fetches a form's submissions, newest first.
func (r *SubmissionRepo) ListByForm(ctx context.Context, formID uuid.UUID, limit, offset int) ([]domain.Submission, error) {
	query := `SELECT id, form_id, data, ip_address, user_agent, is_spam, created_at
		FROM submissions WHERE form_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, formID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var submissions []domain.Submission
	for rows.Next() {
		var s domain.Submission
		if err := rows.Scan(
			&s.ID, &s.FormID, &s.Data, &s.IPAddress, &s.UserAgent, &s.IsSpam, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}
