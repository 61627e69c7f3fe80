package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robavelii/FusionForms/internal/core/domain"
	"github.com/robavelii/FusionForms/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FormRepo implements ports.FormRepository.
type FormRepo struct {
	pool Pool
}

// NewFormRepo creates a new FormRepo.
func NewFormRepo(pool Pool) *FormRepo {
	return &FormRepo{pool: pool}
}

// Create inserts a new form.
func (r *FormRepo) Create(ctx context.Context, f *domain.Form) error {
	query := `INSERT INTO forms (id, title, description, schema, version, status, created_by, created_at, updated_at, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		f.ID, f.Title, f.Description, f.Schema, f.Version,
		f.Status, f.CreatedBy, f.CreatedAt, f.UpdatedAt, f.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert form: %w", err)
	}
	return nil
}

// GetByID fetches a form by its UUID.
func (r *FormRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Form, error) {
	query := `SELECT id, title, description, schema, version, status, created_by, created_at, updated_at, published_at
		FROM forms WHERE id = $1`

	f := &domain.Form{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.Title, &f.Description, &f.Schema, &f.Version,
		&f.Status, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt, &f.PublishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.ErrFormNotFound()
		}
		return nil, fmt.Errorf("get form by id: %w", err)
	}
	return f, nil
}

// ListByOwner fetches a user's forms, newest first.
func (r *FormRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Form, error) {
	query := `SELECT id, title, description, schema, version, status, created_by, created_at, updated_at, published_at
		FROM forms WHERE created_by = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list forms by owner: %w", err)
	}
	defer rows.Close()

	var forms []domain.Form
	for rows.Next() {
		var f domain.Form
		if err := rows.Scan(
			&f.ID, &f.Title, &f.Description, &f.Schema, &f.Version,
			&f.Status, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt, &f.PublishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan form: %w", err)
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

// Publish marks a form published, stamps published_at and bumps the version.
func (r *FormRepo) Publish(ctx context.Context, id uuid.UUID, publishedAt time.Time) error {
	query := `UPDATE forms
		SET status = $2, published_at = $3, version = version + 1, updated_at = $3
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, domain.FormStatusPublished, publishedAt)
	if err != nil {
		return fmt.Errorf("publish form: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrFormNotFound()
	}
	return nil
}
