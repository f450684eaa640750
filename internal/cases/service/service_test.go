package service

import (
	"context"
	"testing"
	"time"

	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/cases/repository"
	"salesdesk_backend/internal/events"
	"salesdesk_backend/internal/shared/roles"
	"salesdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeRepo struct {
	cases   map[uuid.UUID]*repository.Case
	history []repository.HistoryEntry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{cases: make(map[uuid.UUID]*repository.Case)}
}

func (f *fakeRepo) addCase(status string, assignee *uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.cases[id] = &repository.Case{ID: id, Status: status, AssignedUserID: assignee}
	return id
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Case, error) {
	cs, ok := f.cases[id]
	if !ok {
		return repository.Case{}, repository.ErrNotFound
	}
	return *cs, nil
}

func (f *fakeRepo) List(_ context.Context, filter repository.ListFilter) ([]repository.Case, error) {
	var out []repository.Case
	for _, cs := range f.cases {
		if filter.AssignedUserID != nil {
			if cs.AssignedUserID == nil || *cs.AssignedUserID != *filter.AssignedUserID {
				continue
			}
		}
		out = append(out, *cs)
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatusWithHistory(_ context.Context, caseID uuid.UUID, newStatus string, actorID uuid.UUID) (string, error) {
	cs, ok := f.cases[caseID]
	if !ok {
		return "", repository.ErrNotFound
	}
	previous := cs.Status
	cs.Status = newStatus
	cs.UpdatedAt = time.Now()
	f.history = append(f.history, repository.HistoryEntry{
		CaseID:         caseID,
		PreviousStatus: &previous,
		NewStatus:      newStatus,
		UserID:         actorID,
	})
	return previous, nil
}

func (f *fakeRepo) Touch(_ context.Context, caseID uuid.UUID) error {
	cs, ok := f.cases[caseID]
	if !ok {
		return repository.ErrNotFound
	}
	cs.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRepo) History(_ context.Context, caseID uuid.UUID) ([]repository.HistoryEntry, error) {
	var out []repository.HistoryEntry
	for _, e := range f.history {
		if e.CaseID == caseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListCalls(_ context.Context, _ uuid.UUID) ([]repository.CallLog, error) {
	return nil, nil
}

type fakeRecorder struct {
	actions []string
	details []map[string]any
}

func (f *fakeRecorder) Record(_ context.Context, _ *uuid.UUID, action, _, _ string, details map[string]any) {
	f.actions = append(f.actions, action)
	f.details = append(f.details, details)
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

func newTestService(repo *fakeRepo) (*Service, *fakeRecorder, *fakeBus) {
	rec := &fakeRecorder{}
	bus := &fakeBus{}
	return New(repo, bus, rec), rec, bus
}

func TestSetStatusRecordsHistoryAndAudit(t *testing.T) {
	repo := newFakeRepo()
	caseID := repo.addCase("nuevo", nil)
	svc, rec, bus := newTestService(repo)
	actor := uuid.New()

	resp, err := svc.SetStatus(context.Background(), actor, caseID, "seguimiento")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != "seguimiento" {
		t.Fatalf("status = %q", resp.Status)
	}
	if len(repo.history) != 1 || *repo.history[0].PreviousStatus != "nuevo" {
		t.Fatalf("history = %+v", repo.history)
	}
	if len(rec.actions) != 1 || rec.actions[0] != audit.ActionUpdateStatus {
		t.Fatalf("audit = %v", rec.actions)
	}
	if rec.details[0]["previousStatus"] != "nuevo" || rec.details[0]["newStatus"] != "seguimiento" {
		t.Fatalf("audit details = %v", rec.details[0])
	}
	if len(bus.published) != 1 || bus.published[0].EventName() != "cases.status.changed" {
		t.Fatalf("events = %v", bus.published)
	}
}

func TestSetStatusAllowsNoOpTransition(t *testing.T) {
	repo := newFakeRepo()
	caseID := repo.addCase("seguimiento", nil)
	svc, _, _ := newTestService(repo)

	// Re-selecting the current status still appends a history entry.
	if _, err := svc.SetStatus(context.Background(), uuid.New(), caseID, "seguimiento"); err != nil {
		t.Fatal(err)
	}
	if len(repo.history) != 1 {
		t.Fatalf("history entries = %d, want 1", len(repo.history))
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	repo := newFakeRepo()
	caseID := repo.addCase("nuevo", nil)
	svc, rec, _ := newTestService(repo)

	_, err := svc.SetStatus(context.Background(), uuid.New(), caseID, "archivado")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if len(rec.actions) != 0 {
		t.Fatal("rejected transition must not audit")
	}
}

func TestSetStatusMissingCase(t *testing.T) {
	svc, _, _ := newTestService(newFakeRepo())

	_, err := svc.SetStatus(context.Background(), uuid.New(), uuid.New(), "cerrado")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestCloseFromNoteClosesOpenCase(t *testing.T) {
	repo := newFakeRepo()
	caseID := repo.addCase("seguimiento", nil)
	svc, _, _ := newTestService(repo)

	previous, changed, err := svc.CloseFromNote(context.Background(), uuid.New(), caseID)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatal("expected closure")
	}
	if previous != "seguimiento" {
		t.Fatalf("previous = %q", previous)
	}
	if repo.cases[caseID].Status != "cerrado" {
		t.Fatalf("status = %q", repo.cases[caseID].Status)
	}
}

func TestCloseFromNoteIsNoOpWhenAlreadyClosed(t *testing.T) {
	repo := newFakeRepo()
	caseID := repo.addCase("cerrado", nil)
	svc, rec, _ := newTestService(repo)

	previous, changed, err := svc.CloseFromNote(context.Background(), uuid.New(), caseID)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Fatal("closed case must not transition again")
	}
	if previous != "cerrado" {
		t.Fatalf("previous = %q", previous)
	}
	if len(repo.history) != 0 || len(rec.actions) != 0 {
		t.Fatal("no-op closure must not record history or audit")
	}
}

func TestListScopesAgentsToOwnCases(t *testing.T) {
	repo := newFakeRepo()
	agent := uuid.New()
	repo.addCase("nuevo", &agent)
	other := uuid.New()
	repo.addCase("nuevo", &other)
	repo.addCase("nuevo", nil)
	svc, _, _ := newTestService(repo)

	mine, err := svc.List(context.Background(), agent, roles.Agent, "", 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine.Items) != 1 {
		t.Fatalf("agent sees %d cases, want 1", len(mine.Items))
	}

	all, err := svc.List(context.Background(), agent, roles.Admin, "", 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all.Items) != 3 {
		t.Fatalf("admin sees %d cases, want 3", len(all.Items))
	}
}
