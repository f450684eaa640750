package auth

import (
	"context"
	"testing"
	"time"

	"salesdesk_backend/internal/auth/password"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type fakeUserStore struct {
	byEmail map[string]User
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

type fakeRecorder struct {
	actions []string
}

func (f *fakeRecorder) Record(_ context.Context, _ *uuid.UUID, action, _, _ string, _ map[string]any) {
	f.actions = append(f.actions, action)
}

type testJWTConfig struct{}

func (testJWTConfig) GetJWTAccessSecret() string      { return "test-secret" }
func (testJWTConfig) GetAccessTokenTTL() time.Duration { return time.Hour }

func newTestService(t *testing.T, users ...User) (*Service, *fakeRecorder) {
	t.Helper()
	store := &fakeUserStore{byEmail: make(map[string]User)}
	for _, u := range users {
		store.byEmail[u.Email] = u
	}
	rec := &fakeRecorder{}
	return NewService(store, testJWTConfig{}, rec, logger.New("test")), rec
}

func testUser(t *testing.T, plain string, active bool) User {
	t.Helper()
	hash, err := password.Hash(plain)
	if err != nil {
		t.Fatal(err)
	}
	return User{
		ID:           uuid.New(),
		Name:         "Ana Torres",
		Email:        "ana@example.com",
		PasswordHash: hash,
		Role:         "asesora",
		IsActive:     active,
	}
}

func TestSignInIssuesAccessToken(t *testing.T) {
	user := testUser(t, "correct-horse", true)
	svc, rec := newTestService(t, user)

	resp, err := svc.SignIn(context.Background(), LoginRequest{Email: "Ana@Example.com ", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if resp.User.ID != user.ID {
		t.Fatalf("user id = %s, want %s", resp.User.ID, user.ID)
	}

	parsed, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != user.ID.String() {
		t.Fatalf("sub = %v", claims["sub"])
	}
	if claims["role"] != "asesora" {
		t.Fatalf("role = %v", claims["role"])
	}
	if claims["type"] != "access" {
		t.Fatalf("type = %v", claims["type"])
	}

	if len(rec.actions) != 1 || rec.actions[0] != "LOGIN" {
		t.Fatalf("audit actions = %v", rec.actions)
	}
}

func TestSignInRejections(t *testing.T) {
	user := testUser(t, "correct-horse", true)
	disabled := testUser(t, "correct-horse", false)
	disabled.Email = "off@example.com"

	tests := []struct {
		name     string
		email    string
		password string
		wantKind apperr.Kind
	}{
		{"unknown email", "nobody@example.com", "whatever", apperr.KindUnauthorized},
		{"wrong password", "ana@example.com", "battery-staple", apperr.KindUnauthorized},
		{"disabled account", "off@example.com", "correct-horse", apperr.KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, rec := newTestService(t, user, disabled)
			_, err := svc.SignIn(context.Background(), LoginRequest{Email: tt.email, Password: tt.password})
			if !apperr.Is(err, tt.wantKind) {
				t.Fatalf("err = %v, want kind %v", err, tt.wantKind)
			}
			if len(rec.actions) != 0 {
				t.Fatalf("failed sign-in must not audit, got %v", rec.actions)
			}
		})
	}
}
