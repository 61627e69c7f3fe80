package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/robavelii/FusionForms/internal/core/domain"
	"github.com/robavelii/FusionForms/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser() *domain.User {
	return &domain.User{
		ID:           uuid.New(),
		Username:     "alice",
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		Role:         domain.UserRoleUser,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestUserRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Username, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_DuplicateUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Username, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = repo.Create(context.Background(), u)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestUserRepo_GetByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE username").
		WithArgs(u.Username).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at", "updated_at"}).
			AddRow(u.ID, u.Username, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt))

	result, err := repo.GetByUsername(context.Background(), u.Username)
	require.NoError(t, err)
	assert.Equal(t, u.ID, result.ID)

	mock.ExpectQuery("SELECT .+ FROM users WHERE username").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at", "updated_at"}))

	_, err = repo.GetByUsername(context.Background(), "ghost")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.HTTPStatus)
}
