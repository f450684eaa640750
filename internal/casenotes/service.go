package casenotes

import (
	"context"
	"errors"
	"strings"
	"time"

	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/events"
	"salesdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// Store defines the data access interface needed by the notes service.
type Store interface {
	Create(ctx context.Context, params CreateParams) (Note, error)
	GetByID(ctx context.Context, id uuid.UUID) (Note, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]Note, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (Note, error)
	Annul(ctx context.Context, id uuid.UUID) (Note, error)
}

// CaseGateway is the slice of the case workflow the notes service needs:
// reading the current status, closing on a closing note and bumping activity.
type CaseGateway interface {
	Status(ctx context.Context, caseID uuid.UUID) (string, error)
	CloseFromNote(ctx context.Context, actorID uuid.UUID, caseID uuid.UUID) (previous string, changed bool, err error)
	Touch(ctx context.Context, caseID uuid.UUID) error
}

// Recorder writes audit entries for note mutations.
type Recorder interface {
	Record(ctx context.Context, userID *uuid.UUID, action, entity, entityID string, details map[string]any)
}

// Service handles management note operations.
type Service struct {
	store   Store
	cases   CaseGateway
	bus     events.Bus
	auditor Recorder
	now     func() time.Time
}

// NewService creates a new case notes service.
func NewService(store Store, cases CaseGateway, bus events.Bus, auditor Recorder) *Service {
	return &Service{store: store, cases: cases, bus: bus, auditor: auditor, now: time.Now}
}

// Create records a management note. The note snapshots the author's role and
// the case's status at write time; a closing note additionally closes the
// case, with the snapshot keeping the status the case had before closing.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, actorRole string, caseID uuid.UUID, req CreateNoteRequest) (NoteResponse, error) {
	// Case existence first: a bad payload on a missing case is NotFound.
	snapshot, err := s.cases.Status(ctx, caseID)
	if err != nil {
		return NoteResponse{}, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return NoteResponse{}, apperr.Validation("note content is required")
	}
	if !ValidManagementTypes[req.ManagementType] {
		return NoteResponse{}, apperr.Validation("unknown management type")
	}
	if req.ManagementType == TypeReschedule && req.NextFollowUpDate == nil {
		return NoteResponse{}, apperr.Validation("reagendar notes require nextFollowUpDate")
	}

	if req.ManagementType == TypeCloseCase {
		previous, _, err := s.cases.CloseFromNote(ctx, actorID, caseID)
		if err != nil {
			return NoteResponse{}, err
		}
		snapshot = previous
	}

	note, err := s.store.Create(ctx, CreateParams{
		CaseID:           caseID,
		UserID:           actorID,
		Role:             actorRole,
		ManagementType:   req.ManagementType,
		Content:          content,
		StatusSnapshot:   snapshot,
		NextFollowUpDate: req.NextFollowUpDate,
	})
	if err != nil {
		return NoteResponse{}, err
	}

	// Every note counts as working the case, whatever its type.
	if err := s.cases.Touch(ctx, caseID); err != nil {
		return NoteResponse{}, err
	}

	s.auditor.Record(ctx, &actorID, audit.ActionCreateNote, "case_note", note.ID.String(), map[string]any{
		"caseId":         caseID.String(),
		"managementType": note.ManagementType,
	})

	s.bus.Publish(ctx, events.CaseNoteCreated{
		BaseEvent:        events.NewBaseEvent(),
		NoteID:           note.ID,
		CaseID:           caseID,
		ActorID:          actorID,
		ManagementType:   note.ManagementType,
		NextFollowUpDate: note.NextFollowUpDate,
	})

	return toNoteResponse(note), nil
}

// List returns a case's notes, newest first, annulled ones included.
func (s *Service) List(ctx context.Context, caseID uuid.UUID) ([]NoteResponse, error) {
	if _, err := s.cases.Status(ctx, caseID); err != nil {
		return nil, err
	}

	notes, err := s.store.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	items := make([]NoteResponse, len(notes))
	for i, n := range notes {
		items[i] = toNoteResponse(n)
	}
	return items, nil
}

// Update edits a note's type, content or follow-up date. The resulting note
// must still be coherent: a note ending up as reagendar needs a follow-up
// date, whether the date came from the edit or was already there.
func (s *Service) Update(ctx context.Context, actorID uuid.UUID, actorRole string, noteID uuid.UUID, req UpdateNoteRequest) (NoteResponse, error) {
	note, err := s.store.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return NoteResponse{}, apperr.NotFound("note not found")
		}
		return NoteResponse{}, err
	}

	if note.AnnulledAt != nil {
		return NoteResponse{}, apperr.BadRequest("note is annulled")
	}

	if err := CanEdit(actorRole, actorID, note, s.now()); err != nil {
		return NoteResponse{}, err
	}

	params := UpdateParams{}
	if req.NextFollowUpDate.Set {
		params.SetFollowUpDate = true
		params.NextFollowUpDate = req.NextFollowUpDate.Value
	}
	resultingType := note.ManagementType
	if req.ManagementType != nil {
		if !ValidManagementTypes[*req.ManagementType] {
			return NoteResponse{}, apperr.Validation("unknown management type")
		}
		resultingType = *req.ManagementType
		params.ManagementType = req.ManagementType
	}
	if req.Content != nil {
		trimmed := strings.TrimSpace(*req.Content)
		if trimmed == "" {
			return NoteResponse{}, apperr.Validation("note content must not be empty")
		}
		params.Content = &trimmed
	}

	// The resulting note must stay coherent: whether the date comes from
	// this edit (including an explicit null) or was already on the note,
	// a reagendar note cannot end up without one.
	resultingFollowUp := note.NextFollowUpDate
	if req.NextFollowUpDate.Set {
		resultingFollowUp = req.NextFollowUpDate.Value
	}
	if resultingType == TypeReschedule && resultingFollowUp == nil {
		return NoteResponse{}, apperr.Validation("reagendar notes require nextFollowUpDate")
	}

	updated, err := s.store.Update(ctx, noteID, params)
	if err != nil {
		return NoteResponse{}, err
	}

	s.auditor.Record(ctx, &actorID, audit.ActionUpdateNote, "case_note", noteID.String(), map[string]any{
		"caseId": note.CaseID.String(),
	})

	return toNoteResponse(updated), nil
}

// Annul voids a note without deleting it. Annulment is terminal.
func (s *Service) Annul(ctx context.Context, actorID uuid.UUID, actorRole string, noteID uuid.UUID) (NoteResponse, error) {
	note, err := s.store.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return NoteResponse{}, apperr.NotFound("note not found")
		}
		return NoteResponse{}, err
	}

	if note.AnnulledAt != nil {
		return NoteResponse{}, apperr.BadRequest("note already annulled")
	}

	if err := CanAnnul(actorRole, note); err != nil {
		return NoteResponse{}, err
	}

	annulled, err := s.store.Annul(ctx, noteID)
	if err != nil {
		return NoteResponse{}, err
	}

	s.auditor.Record(ctx, &actorID, audit.ActionAnnulNote, "case_note", noteID.String(), map[string]any{
		"caseId":     note.CaseID.String(),
		"authorRole": note.Role,
	})

	return toNoteResponse(annulled), nil
}
