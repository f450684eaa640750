package users

import (
	"context"
	"testing"

	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/auth/password"
	"salesdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeStore struct {
	users     map[uuid.UUID]User
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[uuid.UUID]User)}
}

func (f *fakeStore) Create(_ context.Context, params CreateParams) (User, error) {
	if f.createErr != nil {
		return User{}, f.createErr
	}
	u := User{
		ID:           uuid.New(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		IsActive:     true,
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (User, error) {
	u, ok := f.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) List(_ context.Context, _ ListFilter) ([]User, error) {
	out := make([]User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, params UpdateParams) (User, error) {
	u, ok := f.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if params.Name != nil {
		u.Name = *params.Name
	}
	if params.Role != nil {
		u.Role = *params.Role
	}
	if params.PasswordHash != nil {
		u.PasswordHash = *params.PasswordHash
	}
	f.users[id] = u
	return u, nil
}

func (f *fakeStore) SetActive(_ context.Context, id uuid.UUID, active bool) (User, error) {
	u, ok := f.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	u.IsActive = active
	f.users[id] = u
	return u, nil
}

type fakeRecorder struct {
	actions []string
}

func (f *fakeRecorder) Record(_ context.Context, _ *uuid.UUID, action, _, _ string, _ map[string]any) {
	f.actions = append(f.actions, action)
}

func TestCreateHashesPasswordAndNormalizesEmail(t *testing.T) {
	store := newFakeStore()
	rec := &fakeRecorder{}
	svc := NewService(store, rec)

	resp, err := svc.Create(context.Background(), uuid.New(), CreateUserRequest{
		Name:     "  Laura Gómez ",
		Email:    "Laura@Example.COM",
		Password: "secret-123",
		Role:     "supervisor",
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Email != "laura@example.com" {
		t.Fatalf("email = %q", resp.Email)
	}
	if resp.Name != "Laura Gómez" {
		t.Fatalf("name = %q", resp.Name)
	}

	stored := store.users[resp.ID]
	if stored.PasswordHash == "secret-123" {
		t.Fatal("password stored in plaintext")
	}
	if err := password.Compare(stored.PasswordHash, "secret-123"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if len(rec.actions) != 1 || rec.actions[0] != audit.ActionCreate {
		t.Fatalf("audit actions = %v", rec.actions)
	}
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeRecorder{})

	_, err := svc.Create(context.Background(), uuid.New(), CreateUserRequest{
		Name: "X", Email: "x@example.com", Password: "secret-123", Role: "manager",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestCreateMapsDuplicateEmailToConflict(t *testing.T) {
	store := newFakeStore()
	store.createErr = ErrEmailTaken
	svc := NewService(store, &fakeRecorder{})

	_, err := svc.Create(context.Background(), uuid.New(), CreateUserRequest{
		Name: "X", Email: "x@example.com", Password: "secret-123", Role: "asesora",
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestToggleActiveAuditsDirection(t *testing.T) {
	store := newFakeStore()
	rec := &fakeRecorder{}
	svc := NewService(store, rec)

	created, err := svc.Create(context.Background(), uuid.New(), CreateUserRequest{
		Name: "Ana", Email: "ana@example.com", Password: "secret-123", Role: "asesora",
	})
	if err != nil {
		t.Fatal(err)
	}

	deactivated, err := svc.ToggleActive(context.Background(), uuid.New(), created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if deactivated.IsActive {
		t.Fatal("expected deactivated")
	}

	reactivated, err := svc.ToggleActive(context.Background(), uuid.New(), created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !reactivated.IsActive {
		t.Fatal("expected reactivated")
	}

	want := []string{audit.ActionCreate, audit.ActionDeactivate, audit.ActionActivate}
	if len(rec.actions) != len(want) {
		t.Fatalf("audit actions = %v", rec.actions)
	}
	for i, action := range want {
		if rec.actions[i] != action {
			t.Fatalf("action[%d] = %s, want %s", i, rec.actions[i], action)
		}
	}
}
