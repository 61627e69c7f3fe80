package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/robavelii/FusionForms/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AnalyticsRepo implements ports.AnalyticsRepository. Both counters are
// maintained with single-statement upserts so concurrent writers never race
// a read-modify-write cycle.
type AnalyticsRepo struct {
	pool Pool
}

// NewAnalyticsRepo creates a new AnalyticsRepo.
func NewAnalyticsRepo(pool Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// Create seeds a form's counter row. Existing rows are left untouched.
func (r *AnalyticsRepo) Create(ctx context.Context, a *domain.FormAnalytics) error {
	query := `INSERT INTO form_analytics (form_id, views, submissions, last_updated)
		VALUES ($1, $2, $3, $4) ON CONFLICT (form_id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query, a.FormID, a.Views, a.Submissions, a.LastUpdated)
	if err != nil {
		return fmt.Errorf("insert form analytics: %w", err)
	}
	return nil
}

// GetByForm fetches a form's counters. A form with no row yet reads as
// zero counts.
func (r *AnalyticsRepo) GetByForm(ctx context.Context, formID uuid.UUID) (*domain.FormAnalytics, error) {
	query := `SELECT form_id, views, submissions, last_updated
		FROM form_analytics WHERE form_id = $1`

	a := &domain.FormAnalytics{}
	err := r.pool.QueryRow(ctx, query, formID).Scan(
		&a.FormID, &a.Views, &a.Submissions, &a.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.FormAnalytics{FormID: formID}, nil
		}
		return nil, fmt.Errorf("get form analytics: %w", err)
	}
	return a, nil
}

// IncrementSubmissions bumps the submission counter inside the caller's
// transaction. The upsert is a single atomic statement.
func (r *AnalyticsRepo) IncrementSubmissions(ctx context.Context, tx pgx.Tx, formID uuid.UUID) error {
	query := `INSERT INTO form_analytics (form_id, views, submissions, last_updated)
		VALUES ($1, 0, 1, NOW())
		ON CONFLICT (form_id) DO UPDATE
		SET submissions = form_analytics.submissions + 1, last_updated = NOW()`

	if _, err := tx.Exec(ctx, query, formID); err != nil {
		return fmt.Errorf("increment submissions: %w", err)
	}
	return nil
}

// IncrementViews bumps the view counter.
func (r *AnalyticsRepo) IncrementViews(ctx context.Context, formID uuid.UUID) error {
	query := `INSERT INTO form_analytics (form_id, views, submissions, last_updated)
		VALUES ($1, 1, 0, NOW())
		ON CONFLICT (form_id) DO UPDATE
		SET views = form_analytics.views + 1, last_updated = NOW()`

	if _, err := r.pool.Exec(ctx, query, formID); err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}
