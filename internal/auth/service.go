package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/auth/password"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const accessTokenType = "access"

// UserStore defines the data access interface needed by the auth service.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
}

// Recorder writes audit entries for authentication events.
type Recorder interface {
	Record(ctx context.Context, userID *uuid.UUID, action, entity, entityID string, details map[string]any)
}

// Service handles sign-in and profile lookup.
type Service struct {
	store   UserStore
	cfg     config.JWTConfig
	auditor Recorder
	log     *logger.Logger
	now     func() time.Time
}

// NewService creates a new auth service.
func NewService(store UserStore, cfg config.JWTConfig, auditor Recorder, log *logger.Logger) *Service {
	return &Service{store: store, cfg: cfg, auditor: auditor, log: log, now: time.Now}
}

// SignIn verifies credentials and issues an access token. Unknown emails and
// wrong passwords produce the same error so the endpoint does not leak which
// accounts exist.
func (s *Service) SignIn(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.log.AuthEvent("sign_in", email, false, "unknown email")
			return LoginResponse{}, apperr.Unauthorized("invalid credentials")
		}
		return LoginResponse{}, err
	}

	if err := password.Compare(user.PasswordHash, req.Password); err != nil {
		s.log.AuthEvent("sign_in", email, false, "wrong password")
		return LoginResponse{}, apperr.Unauthorized("invalid credentials")
	}

	if !user.IsActive {
		s.log.AuthEvent("sign_in", email, false, "account disabled")
		return LoginResponse{}, apperr.Forbidden("account is disabled")
	}

	accessToken, err := s.signJWT(user)
	if err != nil {
		return LoginResponse{}, err
	}

	s.log.AuthEvent("sign_in", email, true, "")
	s.auditor.Record(ctx, &user.ID, audit.ActionLogin, "user", user.ID.String(), map[string]any{
		"email": user.Email,
	})

	return LoginResponse{
		AccessToken: accessToken,
		User:        toUserResponse(user),
	}, nil
}

// Me returns the authenticated user's profile.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (UserResponse, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return UserResponse{}, apperr.NotFound("user not found")
		}
		return UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (s *Service) signJWT(user User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"type": accessTokenType,
		"exp":  now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":  now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func toUserResponse(user User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}
