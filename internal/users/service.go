package users

import (
	"context"
	"errors"
	"strings"

	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/auth/password"
	"salesdesk_backend/internal/shared/roles"
	"salesdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// Store defines the data access interface needed by the users service.
type Store interface {
	Create(ctx context.Context, params CreateParams) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	List(ctx context.Context, filter ListFilter) ([]User, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (User, error)
}

// Recorder writes audit entries for account mutations.
type Recorder interface {
	Record(ctx context.Context, userID *uuid.UUID, action, entity, entityID string, details map[string]any)
}

// Service handles account management.
type Service struct {
	store   Store
	auditor Recorder
}

// NewService creates a new users service.
func NewService(store Store, auditor Recorder) *Service {
	return &Service{store: store, auditor: auditor}
}

// Create registers a new account with a hashed password.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req CreateUserRequest) (UserResponse, error) {
	if !roles.Valid(req.Role) {
		return UserResponse{}, apperr.Validation("invalid role")
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return UserResponse{}, err
	}

	user, err := s.store.Create(ctx, CreateParams{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         req.Role,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return UserResponse{}, apperr.Conflict("email already in use")
		}
		return UserResponse{}, err
	}

	s.auditor.Record(ctx, &actorID, audit.ActionCreate, "user", user.ID.String(), map[string]any{
		"email": user.Email,
		"role":  user.Role,
	})
	return toUserResponse(user), nil
}

// List returns accounts matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]UserResponse, error) {
	users, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]UserResponse, len(users))
	for i, u := range users {
		items[i] = toUserResponse(u)
	}
	return items, nil
}

// Get returns a single account.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (UserResponse, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return UserResponse{}, apperr.NotFound("user not found")
		}
		return UserResponse{}, err
	}
	return toUserResponse(user), nil
}

// Update modifies an account's name, role or password.
func (s *Service) Update(ctx context.Context, actorID, id uuid.UUID, req UpdateUserRequest) (UserResponse, error) {
	params := UpdateParams{}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return UserResponse{}, apperr.Validation("name must not be empty")
		}
		params.Name = &trimmed
	}
	if req.Role != nil {
		if !roles.Valid(*req.Role) {
			return UserResponse{}, apperr.Validation("invalid role")
		}
		params.Role = req.Role
	}
	if req.Password != nil {
		hash, err := password.Hash(*req.Password)
		if err != nil {
			return UserResponse{}, err
		}
		params.PasswordHash = &hash
	}

	user, err := s.store.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return UserResponse{}, apperr.NotFound("user not found")
		}
		return UserResponse{}, err
	}
	return toUserResponse(user), nil
}

// ToggleActive flips an account's active flag and audits the direction.
func (s *Service) ToggleActive(ctx context.Context, actorID, id uuid.UUID) (UserResponse, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return UserResponse{}, apperr.NotFound("user not found")
		}
		return UserResponse{}, err
	}

	user, err := s.store.SetActive(ctx, id, !current.IsActive)
	if err != nil {
		return UserResponse{}, err
	}

	action := audit.ActionDeactivate
	if user.IsActive {
		action = audit.ActionActivate
	}
	s.auditor.Record(ctx, &actorID, action, "user", user.ID.String(), map[string]any{
		"email": user.Email,
	})
	return toUserResponse(user), nil
}

func toUserResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
