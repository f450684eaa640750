package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"salesdesk_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	inserted  []fakeInsert
	insertErr error
	gotFilter ListFilter
}

type fakeInsert struct {
	userID   *uuid.UUID
	action   string
	entity   string
	entityID string
	details  []byte
}

func (f *fakeStore) Insert(_ context.Context, userID *uuid.UUID, action, entity, entityID string, details []byte) error {
	f.inserted = append(f.inserted, fakeInsert{userID, action, entity, entityID, details})
	return f.insertErr
}

func (f *fakeStore) List(_ context.Context, filter ListFilter) ([]Entry, error) {
	f.gotFilter = filter
	return nil, nil
}

func TestRecordStoresDetailsAsJSON(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, logger.New("test"))

	actor := uuid.New()
	svc.Record(context.Background(), &actor, ActionUpdateStatus, "case", "abc", map[string]any{
		"previousStatus": "nuevo",
		"newStatus":      "contactado",
	})

	if len(store.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(store.inserted))
	}
	got := store.inserted[0]
	if got.action != ActionUpdateStatus || got.entity != "case" || got.entityID != "abc" {
		t.Fatalf("unexpected insert: %+v", got)
	}
	var details map[string]string
	if err := json.Unmarshal(got.details, &details); err != nil {
		t.Fatalf("details not valid JSON: %v", err)
	}
	if details["newStatus"] != "contactado" {
		t.Fatalf("details = %v", details)
	}
}

func TestRecordSwallowsStoreErrors(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("db down")}
	svc := NewService(store, logger.New("test"))

	// Must not panic or propagate.
	svc.Record(context.Background(), nil, ActionLogin, "user", "", nil)
}

func TestListCapsLimit(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, logger.New("test"))

	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"zero defaults to cap", 0, 500},
		{"negative defaults to cap", -5, 500},
		{"within cap kept", 50, 50},
		{"above cap clamped", 5000, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.List(context.Background(), ListFilter{Limit: tt.requested}); err != nil {
				t.Fatal(err)
			}
			if store.gotFilter.Limit != tt.want {
				t.Fatalf("limit = %d, want %d", store.gotFilter.Limit, tt.want)
			}
		})
	}
}
