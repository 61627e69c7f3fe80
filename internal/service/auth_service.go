package service

import (
	"context"
	"time"

	"github.com/robavelii/FusionForms/internal/core/domain"
	"github.com/robavelii/FusionForms/internal/core/ports"
	"github.com/robavelii/FusionForms/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// authService implements ports.AuthService.
type authService struct {
	userRepo ports.UserRepository
	hashSvc  ports.HashService
	tokenSvc ports.TokenService
	log      zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo ports.UserRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	log zerolog.Logger,
) ports.AuthService {
	return &authService{
		userRepo: userRepo,
		hashSvc:  hashSvc,
		tokenSvc: tokenSvc,
		log:      log,
	}
}

// Register creates a new user account with the default role.
func (s *authService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if existing, _ := s.userRepo.GetByUsername(ctx, username); existing != nil {
		return nil, apperror.ErrUsernameExists()
	}

	hash, err := s.hashSvc.Hash(password)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         domain.UserRoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return user, nil
}

// Login verifies credentials and issues a JWT. Unknown usernames and wrong
// passwords produce the same error.
func (s *authService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil || user == nil {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	ok, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiresAt, err := s.tokenSvc.Generate(user.ID, user.Role)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(err)
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return token, expiresAt, nil
}
