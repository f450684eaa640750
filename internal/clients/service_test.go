package clients

import (
	"context"
	"testing"

	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/events"
	"salesdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeStore struct {
	convertResult Conversion
	convertErr    error
	converted     []uuid.UUID
}

func (f *fakeStore) ConvertFromLead(_ context.Context, leadID, _ uuid.UUID) (Conversion, error) {
	if f.convertErr != nil {
		return Conversion{}, f.convertErr
	}
	f.converted = append(f.converted, leadID)
	return f.convertResult, nil
}

func (f *fakeStore) FindByLeadID(_ context.Context, _ uuid.UUID) (Client, error) {
	return Client{}, ErrNotFound
}

func (f *fakeStore) GetByID(_ context.Context, _ uuid.UUID) (Client, error) {
	return Client{}, ErrNotFound
}

func (f *fakeStore) List(_ context.Context, _ ListFilter) ([]Client, error) {
	return nil, nil
}

type fakeRecorder struct {
	actions []string
}

func (f *fakeRecorder) Record(_ context.Context, _ *uuid.UUID, action, _, _ string, _ map[string]any) {
	f.actions = append(f.actions, action)
}

type fakeBus struct {
	published []events.Event
}

func (f *fakeBus) Publish(_ context.Context, e events.Event) {
	f.published = append(f.published, e)
}

func (f *fakeBus) PublishSync(_ context.Context, e events.Event) error {
	f.published = append(f.published, e)
	return nil
}

func (f *fakeBus) Subscribe(string, events.Handler) {}

func TestConvertLeadSuccess(t *testing.T) {
	leadID := uuid.New()
	store := &fakeStore{
		convertResult: Conversion{
			Client: Client{ID: uuid.New(), Name: "Carlos", Phone: "+573001234567", LeadID: leadID},
			CaseID: uuid.New(),
		},
	}
	rec := &fakeRecorder{}
	bus := &fakeBus{}
	svc := NewService(store, bus, rec)

	resp, err := svc.ConvertLead(context.Background(), uuid.New(), leadID)
	if err != nil {
		t.Fatal(err)
	}
	if resp.CaseID != store.convertResult.CaseID {
		t.Fatalf("caseId = %s", resp.CaseID)
	}
	if len(rec.actions) != 1 || rec.actions[0] != audit.ActionConvertLead {
		t.Fatalf("audit actions = %v", rec.actions)
	}
	if len(bus.published) != 1 || bus.published[0].EventName() != "leads.converted" {
		t.Fatalf("events = %v", bus.published)
	}
}

func TestConvertLeadErrorsMapToKinds(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
		wantKind apperr.Kind
	}{
		{"missing lead", ErrLeadNotFound, apperr.KindNotFound},
		{"second conversion", ErrAlreadyConverted, apperr.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{convertErr: tt.storeErr}
			rec := &fakeRecorder{}
			bus := &fakeBus{}
			svc := NewService(store, bus, rec)

			_, err := svc.ConvertLead(context.Background(), uuid.New(), uuid.New())
			if !apperr.Is(err, tt.wantKind) {
				t.Fatalf("err = %v, want kind %v", err, tt.wantKind)
			}
			if len(rec.actions) != 0 || len(bus.published) != 0 {
				t.Fatal("failed conversion must not audit or publish")
			}
		})
	}
}
