package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/robavelii/FusionForms/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSubmission(formID uuid.UUID) *domain.Submission {
	return &domain.Submission{
		ID:        uuid.New(),
		FormID:    formID,
		Data:      json.RawMessage(`{"email":"a@b.co"}`),
		IPAddress: "203.0.113.9",
		UserAgent: "curl/8.0",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func submissionColumns() []string {
	return []string{"id", "form_id", "data", "ip_address", "user_agent", "is_spam", "created_at"}
}

func TestSubmissionRepo_Create_InTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSubmissionRepo(mock)
	s := newTestSubmission(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO submissions").
		WithArgs(s.ID, s.FormID, s.Data, s.IPAddress, s.UserAgent, s.IsSpam, s.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.Create(context.Background(), tx, s))
	require.NoError(t, tx.Commit(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSubmissionRepo(mock)
	s := newTestSubmission(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM submissions WHERE id").
		WithArgs(s.ID).
		WillReturnRows(pgxmock.NewRows(submissionColumns()).AddRow(
			s.ID, s.FormID, s.Data, s.IPAddress, s.UserAgent, s.IsSpam, s.CreatedAt,
		))

	result, err := repo.GetByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, result.ID)
	assert.JSONEq(t, string(s.Data), string(result.Data))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepo_ListByForm(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSubmissionRepo(mock)
	formID := uuid.New()
	s1 := newTestSubmission(formID)
	s2 := newTestSubmission(formID)

	rows := pgxmock.NewRows(submissionColumns()).
		AddRow(s1.ID, s1.FormID, s1.Data, s1.IPAddress, s1.UserAgent, s1.IsSpam, s1.CreatedAt).
		AddRow(s2.ID, s2.FormID, s2.Data, s2.IPAddress, s2.UserAgent, s2.IsSpam, s2.CreatedAt)

	mock.ExpectQuery("SELECT .+ FROM submissions WHERE form_id").
		WithArgs(formID, 50, 0).
		WillReturnRows(rows)

	subs, err := repo.ListByForm(context.Background(), formID, 50, 0)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
