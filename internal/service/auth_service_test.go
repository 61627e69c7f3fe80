package service

import (
	"context"
	"testing"
	"time"

	"github.com/robavelii/FusionForms/internal/core/domain"
	"github.com/robavelii/FusionForms/internal/core/ports"
	"github.com/robavelii/FusionForms/internal/core/ports/mocks"
	"github.com/robavelii/FusionForms/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newAuthService(ctrl *gomock.Controller) (ports.AuthService, *mocks.MockUserRepository) {
	userRepo := mocks.NewMockUserRepository(ctrl)
	hashSvc := NewArgon2HashService()
	tokenSvc := NewJWTTokenService("test-secret", time.Hour, "fusionforms")
	return NewAuthService(userRepo, hashSvc, tokenSvc, zerolog.Nop()), userRepo
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, userRepo := newAuthService(ctrl)

	var stored *domain.User
	userRepo.EXPECT().GetByUsername(gomock.Any(), "alice").Return(nil, apperror.ErrNotFound("User"))
	userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *domain.User) error {
			stored = u
			return nil
		})

	user, err := svc.Register(context.Background(), "alice", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, domain.UserRoleUser, user.Role)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)

	userRepo.EXPECT().GetByUsername(gomock.Any(), "alice").Return(stored, nil)
	token, expiresAt, err := svc.Login(context.Background(), "alice", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, userRepo := newAuthService(ctrl)

	userRepo.EXPECT().GetByUsername(gomock.Any(), "alice").
		Return(&domain.User{ID: uuid.New(), Username: "alice"}, nil)

	_, err := svc.Register(context.Background(), "alice", "password")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, userRepo := newAuthService(ctrl)

	hash, err := NewArgon2HashService().Hash("right-password")
	require.NoError(t, err)
	user := &domain.User{ID: uuid.New(), Username: "alice", PasswordHash: hash, Role: domain.UserRoleUser}

	userRepo.EXPECT().GetByUsername(gomock.Any(), "alice").Return(user, nil)
	_, _, err = svc.Login(context.Background(), "alice", "wrong-password")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.HTTPStatus)

	// Unknown user yields the identical error.
	userRepo.EXPECT().GetByUsername(gomock.Any(), "bob").Return(nil, apperror.ErrNotFound("User"))
	_, _, err = svc.Login(context.Background(), "bob", "whatever")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.HTTPStatus)
}
