package casenotes

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/events"
	"salesdesk_backend/internal/shared/roles"
	"salesdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeStore struct {
	notes map[uuid.UUID]*Note
}

func newFakeStore() *fakeStore {
	return &fakeStore{notes: make(map[uuid.UUID]*Note)}
}

func (f *fakeStore) Create(_ context.Context, params CreateParams) (Note, error) {
	n := Note{
		ID:               uuid.New(),
		CaseID:           params.CaseID,
		UserID:           params.UserID,
		Role:             params.Role,
		ManagementType:   params.ManagementType,
		Content:          params.Content,
		StatusSnapshot:   params.StatusSnapshot,
		NextFollowUpDate: params.NextFollowUpDate,
		CreatedAt:        time.Now(),
	}
	f.notes[n.ID] = &n
	return n, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (Note, error) {
	n, ok := f.notes[id]
	if !ok {
		return Note{}, ErrNotFound
	}
	return *n, nil
}

func (f *fakeStore) ListByCase(_ context.Context, caseID uuid.UUID) ([]Note, error) {
	var out []Note
	for _, n := range f.notes {
		if n.CaseID == caseID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, params UpdateParams) (Note, error) {
	n, ok := f.notes[id]
	if !ok {
		return Note{}, ErrNotFound
	}
	if params.ManagementType != nil {
		n.ManagementType = *params.ManagementType
	}
	if params.Content != nil {
		n.Content = *params.Content
	}
	if params.SetFollowUpDate {
		n.NextFollowUpDate = params.NextFollowUpDate
	}
	n.UpdatedAt = time.Now()
	return *n, nil
}

func (f *fakeStore) Annul(_ context.Context, id uuid.UUID) (Note, error) {
	n, ok := f.notes[id]
	if !ok || n.AnnulledAt != nil {
		return Note{}, ErrNotFound
	}
	when := time.Now()
	n.AnnulledAt = &when
	return *n, nil
}

type fakeCases struct {
	status    map[uuid.UUID]string
	touched   []uuid.UUID
	closed    []uuid.UUID
}

func newFakeCases() *fakeCases {
	return &fakeCases{status: make(map[uuid.UUID]string)}
}

func (f *fakeCases) Status(_ context.Context, caseID uuid.UUID) (string, error) {
	s, ok := f.status[caseID]
	if !ok {
		return "", apperr.NotFound("case not found")
	}
	return s, nil
}

func (f *fakeCases) CloseFromNote(_ context.Context, _ uuid.UUID, caseID uuid.UUID) (string, bool, error) {
	previous, ok := f.status[caseID]
	if !ok {
		return "", false, apperr.NotFound("case not found")
	}
	if previous == "cerrado" {
		return previous, false, nil
	}
	f.status[caseID] = "cerrado"
	f.closed = append(f.closed, caseID)
	return previous, true, nil
}

func (f *fakeCases) Touch(_ context.Context, caseID uuid.UUID) error {
	f.touched = append(f.touched, caseID)
	return nil
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

type fixture struct {
	svc    *Service
	store  *fakeStore
	cases  *fakeCases
	rec    *fakeRecorder
	bus    *fakeBus
	caseID uuid.UUID
}

func newFixture(caseStatus string) *fixture {
	store := newFakeStore()
	cases := newFakeCases()
	rec := &fakeRecorder{}
	bus := &fakeBus{}
	caseID := uuid.New()
	cases.status[caseID] = caseStatus
	return &fixture{
		svc:    NewService(store, cases, bus, rec),
		store:  store,
		cases:  cases,
		rec:    rec,
		bus:    bus,
		caseID: caseID,
	}
}

func TestCreateSnapshotsRoleAndStatus(t *testing.T) {
	fx := newFixture("seguimiento")
	actor := uuid.New()

	note, err := fx.svc.Create(context.Background(), actor, roles.Agent, fx.caseID, CreateNoteRequest{
		ManagementType: TypeCall,
		Content:        "cliente interesado, pidió llamar la próxima semana",
	})
	if err != nil {
		t.Fatal(err)
	}
	if note.Role != roles.Agent {
		t.Fatalf("role snapshot = %q", note.Role)
	}
	if note.StatusSnapshot != "seguimiento" {
		t.Fatalf("status snapshot = %q", note.StatusSnapshot)
	}
	if len(fx.cases.touched) != 1 {
		t.Fatal("case not touched")
	}
	if len(fx.rec.actions) != 1 || fx.rec.actions[0] != audit.ActionCreateNote {
		t.Fatalf("audit = %v", fx.rec.actions)
	}
	if len(fx.bus.published) != 1 || fx.bus.published[0].EventName() != "cases.note.created" {
		t.Fatalf("events = %v", fx.bus.published)
	}
}

func TestCreateRescheduleRequiresFollowUpDate(t *testing.T) {
	fx := newFixture("contactado")

	_, err := fx.svc.Create(context.Background(), uuid.New(), roles.Agent, fx.caseID, CreateNoteRequest{
		ManagementType: TypeReschedule,
		Content:        "reagendar",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}

	when := time.Now().Add(48 * time.Hour)
	if _, err := fx.svc.Create(context.Background(), uuid.New(), roles.Agent, fx.caseID, CreateNoteRequest{
		ManagementType:   TypeReschedule,
		Content:          "reagendar",
		NextFollowUpDate: &when,
	}); err != nil {
		t.Fatal(err)
	}
}

func TestCreateClosingNoteClosesCaseAndSnapshotsPreTransitionStatus(t *testing.T) {
	fx := newFixture("seguimiento")

	note, err := fx.svc.Create(context.Background(), uuid.New(), roles.Supervisor, fx.caseID, CreateNoteRequest{
		ManagementType: TypeCloseCase,
		Content:        "cliente firmó contrato",
	})
	if err != nil {
		t.Fatal(err)
	}
	if note.StatusSnapshot != "seguimiento" {
		t.Fatalf("snapshot = %q, want pre-closing status", note.StatusSnapshot)
	}
	if fx.cases.status[fx.caseID] != "cerrado" {
		t.Fatal("case not closed")
	}
}

func TestCreateClosingNoteOnClosedCaseDoesNotReclose(t *testing.T) {
	fx := newFixture("cerrado")

	note, err := fx.svc.Create(context.Background(), uuid.New(), roles.Admin, fx.caseID, CreateNoteRequest{
		ManagementType: TypeCloseCase,
		Content:        "nota final",
	})
	if err != nil {
		t.Fatal(err)
	}
	if note.StatusSnapshot != "cerrado" {
		t.Fatalf("snapshot = %q", note.StatusSnapshot)
	}
	if len(fx.cases.closed) != 0 {
		t.Fatal("closed case must not transition again")
	}
}

func TestCreateRejectsUnknownType(t *testing.T) {
	fx := newFixture("nuevo")

	_, err := fx.svc.Create(context.Background(), uuid.New(), roles.Agent, fx.caseID, CreateNoteRequest{
		ManagementType: "visita",
		Content:        "x",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestUpdateResultingRescheduleNeedsFollowUp(t *testing.T) {
	fx := newFixture("contactado")
	author := uuid.New()

	note, err := fx.svc.Create(context.Background(), author, roles.Agent, fx.caseID, CreateNoteRequest{
		ManagementType: TypeCall,
		Content:        "sin respuesta",
	})
	if err != nil {
		t.Fatal(err)
	}

	// Changing type to reagendar without a date on the note must fail.
	newType := TypeReschedule
	_, err = fx.svc.Update(context.Background(), author, roles.Agent, note.ID, UpdateNoteRequest{
		ManagementType: &newType,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}

	// Supplying the date in the same edit succeeds.
	when := time.Now().Add(24 * time.Hour)
	updated, err := fx.svc.Update(context.Background(), author, roles.Agent, note.ID, UpdateNoteRequest{
		ManagementType:   &newType,
		NextFollowUpDate: OptionalTime{Set: true, Value: &when},
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.ManagementType != TypeReschedule || updated.NextFollowUpDate == nil {
		t.Fatalf("updated = %+v", updated)
	}
}

func TestCreateOnMissingCaseIsNotFound(t *testing.T) {
	fx := newFixture("contactado")

	// Even with an invalid payload, a missing case reports NotFound.
	_, err := fx.svc.Create(context.Background(), uuid.New(), roles.Agent, uuid.New(), CreateNoteRequest{
		ManagementType: TypeReschedule,
		Content:        "",
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestUpdateClearingFollowUpDate(t *testing.T) {
	fx := newFixture("contactado")
	author := uuid.New()

	when := time.Now().Add(24 * time.Hour)
	note, err := fx.svc.Create(context.Background(), author, roles.Agent, fx.caseID, CreateNoteRequest{
		ManagementType:   TypeReschedule,
		Content:          "reagendar",
		NextFollowUpDate: &when,
	})
	if err != nil {
		t.Fatal(err)
	}

	// An explicit null while the note stays reagendar is rejected.
	_, err = fx.svc.Update(context.Background(), author, roles.Agent, note.ID, UpdateNoteRequest{
		NextFollowUpDate: OptionalTime{Set: true},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if fx.store.notes[note.ID].NextFollowUpDate == nil {
		t.Fatal("rejected edit must not clear the date")
	}

	// Changing type and clearing the date in one edit is fine.
	newType := TypeFollowUp
	updated, err := fx.svc.Update(context.Background(), author, roles.Agent, note.ID, UpdateNoteRequest{
		ManagementType:   &newType,
		NextFollowUpDate: OptionalTime{Set: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.NextFollowUpDate != nil {
		t.Fatalf("date = %v, want cleared", updated.NextFollowUpDate)
	}
}

func TestUpdateRequestDistinguishesNullFromAbsent(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantSet   bool
		wantValue bool
	}{
		{"absent", `{"content":"x"}`, false, false},
		{"null", `{"nextFollowUpDate":null}`, true, false},
		{"value", `{"nextFollowUpDate":"2026-09-01T10:00:00Z"}`, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateNoteRequest
			if err := json.Unmarshal([]byte(tt.payload), &req); err != nil {
				t.Fatal(err)
			}
			if req.NextFollowUpDate.Set != tt.wantSet {
				t.Fatalf("set = %v, want %v", req.NextFollowUpDate.Set, tt.wantSet)
			}
			if (req.NextFollowUpDate.Value != nil) != tt.wantValue {
				t.Fatalf("value = %v", req.NextFollowUpDate.Value)
			}
		})
	}
}

func TestUpdateBlockedOutsideAgentWindow(t *testing.T) {
	fx := newFixture("contactado")
	author := uuid.New()

	note, err := fx.svc.Create(context.Background(), author, roles.Agent, fx.caseID, CreateNoteRequest{
		ManagementType: TypeCall,
		Content:        "original",
	})
	if err != nil {
		t.Fatal(err)
	}

	fx.svc.now = func() time.Time {
		return fx.store.notes[note.ID].CreatedAt.Add(10*time.Minute + time.Second)
	}

	content := "editado"
	_, err = fx.svc.Update(context.Background(), author, roles.Agent, note.ID, UpdateNoteRequest{Content: &content})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestUpdateAnnulledNoteRejected(t *testing.T) {
	fx := newFixture("contactado")

	note, err := fx.svc.Create(context.Background(), uuid.New(), roles.Agent, fx.caseID, CreateNoteRequest{
		ManagementType: TypeCall,
		Content:        "x",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fx.svc.Annul(context.Background(), uuid.New(), roles.Admin, note.ID); err != nil {
		t.Fatal(err)
	}

	content := "tarde"
	_, err = fx.svc.Update(context.Background(), uuid.New(), roles.Admin, note.ID, UpdateNoteRequest{Content: &content})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("err = %v, want bad request", err)
	}
}

func TestAnnulPermissionsAndTerminality(t *testing.T) {
	fx := newFixture("contactado")

	agentNote, err := fx.svc.Create(context.Background(), uuid.New(), roles.Agent, fx.caseID, CreateNoteRequest{
		ManagementType: TypeCall, Content: "de asesora",
	})
	if err != nil {
		t.Fatal(err)
	}
	adminNote, err := fx.svc.Create(context.Background(), uuid.New(), roles.Admin, fx.caseID, CreateNoteRequest{
		ManagementType: TypeCall, Content: "de admin",
	})
	if err != nil {
		t.Fatal(err)
	}

	// Agents never annul, not even their own.
	if _, err := fx.svc.Annul(context.Background(), agentNote.UserID, roles.Agent, agentNote.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}

	// Supervisors cannot annul admin-authored notes.
	if _, err := fx.svc.Annul(context.Background(), uuid.New(), roles.Supervisor, adminNote.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}

	// Supervisors can annul agent-authored notes.
	annulled, err := fx.svc.Annul(context.Background(), uuid.New(), roles.Supervisor, agentNote.ID)
	if err != nil {
		t.Fatal(err)
	}
	if annulled.AnnulledAt == nil {
		t.Fatal("annulledAt not set")
	}

	// Annulment is terminal.
	if _, err := fx.svc.Annul(context.Background(), uuid.New(), roles.Admin, agentNote.ID); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("err = %v, want bad request", err)
	}

	if fx.rec.actions[len(fx.rec.actions)-1] != audit.ActionAnnulNote {
		t.Fatalf("audit = %v", fx.rec.actions)
	}
}
