package manualload

import (
	"context"
	"errors"
	"testing"

	"salesdesk_backend/internal/events"
	leadsrepo "salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeLeads struct {
	phones      map[string]bool
	externalIDs map[string]bool
	sources     map[string]leadsrepo.Source
	candidates  []leadsrepo.CandidateRow
}

func newFakeLeads() *fakeLeads {
	return &fakeLeads{
		phones:      make(map[string]bool),
		externalIDs: make(map[string]bool),
		sources:     make(map[string]leadsrepo.Source),
	}
}

func (f *fakeLeads) FindByPhone(_ context.Context, phone string) (leadsrepo.Lead, error) {
	if f.phones[phone] {
		return leadsrepo.Lead{Phone: phone}, nil
	}
	return leadsrepo.Lead{}, leadsrepo.ErrNotFound
}

func (f *fakeLeads) FindByExternalID(_ context.Context, externalID string) (leadsrepo.Lead, error) {
	if f.externalIDs[externalID] {
		return leadsrepo.Lead{}, nil
	}
	return leadsrepo.Lead{}, leadsrepo.ErrNotFound
}

func (f *fakeLeads) UpsertSource(_ context.Context, name string) (leadsrepo.Source, error) {
	if src, ok := f.sources[name]; ok {
		return src, nil
	}
	src := leadsrepo.Source{ID: uuid.New(), Name: name}
	f.sources[name] = src
	return src, nil
}

func (f *fakeLeads) AssignmentCandidates(_ context.Context) ([]leadsrepo.CandidateRow, error) {
	return f.candidates, nil
}

type fakeStore struct {
	created   []CreateParams
	createErr error
	leads     *fakeLeads
}

func (f *fakeStore) CreateQualified(_ context.Context, params CreateParams) (Created, error) {
	if f.createErr != nil {
		return Created{}, f.createErr
	}
	f.created = append(f.created, params)
	if f.leads != nil {
		f.leads.phones[params.Phone] = true
		if params.ExternalID != nil {
			f.leads.externalIDs[*params.ExternalID] = true
		}
	}
	return Created{LeadID: uuid.New(), ClientID: uuid.New(), CaseID: uuid.New()}, nil
}

type fakeRecorder struct{ count int }

func (f *fakeRecorder) Record(_ context.Context, _ *uuid.UUID, _, _, _ string, _ map[string]any) {
	f.count++
}

type fakeBus struct{ published []events.Event }

func (f *fakeBus) Publish(_ context.Context, e events.Event) { f.published = append(f.published, e) }
func (f *fakeBus) PublishSync(_ context.Context, e events.Event) error {
	f.published = append(f.published, e)
	return nil
}
func (f *fakeBus) Subscribe(string, events.Handler) {}

func newTestService(leads *fakeLeads, store *fakeStore) *Service {
	store.leads = leads
	return NewService(store, leads, &fakeBus{}, &fakeRecorder{}, logger.New("test"))
}

func TestLoadOneAssignsAndNormalizes(t *testing.T) {
	leads := newFakeLeads()
	agent := uuid.New()
	leads.candidates = []leadsrepo.CandidateRow{{UserID: agent}}
	store := &fakeStore{}
	svc := newTestService(leads, store)

	_, err := svc.LoadOne(context.Background(), uuid.New(), ManualItem{
		Name:   "Pedro Díaz",
		Phone:  "300 123 4567",
		Source: "referido",
	})
	if err != nil {
		t.Fatal(err)
	}
	params := store.created[0]
	if params.Phone != "+573001234567" {
		t.Fatalf("phone = %q", params.Phone)
	}
	if params.AssignedUserID == nil || *params.AssignedUserID != agent {
		t.Fatalf("assignee = %v", params.AssignedUserID)
	}
	if params.SourceID == nil {
		t.Fatal("source not upserted")
	}
}

func TestLoadBulkCountsCreatedSkippedAndErrors(t *testing.T) {
	leads := newFakeLeads()
	leads.phones["+573005550000"] = true
	store := &fakeStore{}
	svc := newTestService(leads, store)

	items := []ManualItem{
		{Name: "Nueva", Phone: "+573001112233"},
		{Name: "Duplicada", Phone: "+573005550000"},
		{Name: "", Phone: "+573007778899"}, // invalid: missing name
	}
	result := svc.LoadBulk(context.Background(), uuid.New(), items)

	if result.Created != 1 {
		t.Fatalf("created = %d", result.Created)
	}
	if result.Skipped != 1 {
		t.Fatalf("skipped = %d", result.Skipped)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestLoadBulkDedupesWithinBatch(t *testing.T) {
	leads := newFakeLeads()
	store := &fakeStore{}
	svc := newTestService(leads, store)

	items := []ManualItem{
		{Name: "Primera", Phone: "+573001112233"},
		{Name: "Repetida", Phone: "+573001112233"},
	}
	result := svc.LoadBulk(context.Background(), uuid.New(), items)

	if result.Created != 1 || result.Skipped != 1 {
		t.Fatalf("result = %+v", result)
	}
}

func TestLoadBulkKeepsGoingAfterStoreError(t *testing.T) {
	leads := newFakeLeads()
	store := &fakeStore{createErr: errors.New("db down")}
	svc := newTestService(leads, store)

	result := svc.LoadBulk(context.Background(), uuid.New(), []ManualItem{
		{Name: "A", Phone: "+573001112233"},
		{Name: "B", Phone: "+573004445566"},
	})
	if len(result.Errors) != 2 || result.Created != 0 {
		t.Fatalf("result = %+v", result)
	}
}
