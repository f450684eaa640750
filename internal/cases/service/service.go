// Package service implements the case workflow: status transitions with a
// full audit trail, listings and the activity detail view.
package service

import (
	"context"
	"errors"

	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/cases/domain"
	"salesdesk_backend/internal/cases/repository"
	"salesdesk_backend/internal/cases/transport"
	"salesdesk_backend/internal/events"
	"salesdesk_backend/internal/shared/roles"
	"salesdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// Repo defines the data access interface needed by the cases service.
type Repo interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Case, error)
	List(ctx context.Context, filter repository.ListFilter) ([]repository.Case, error)
	UpdateStatusWithHistory(ctx context.Context, caseID uuid.UUID, newStatus string, actorID uuid.UUID) (string, error)
	Touch(ctx context.Context, caseID uuid.UUID) error
	History(ctx context.Context, caseID uuid.UUID) ([]repository.HistoryEntry, error)
	ListCalls(ctx context.Context, caseID uuid.UUID) ([]repository.CallLog, error)
}

// Recorder writes audit entries for case mutations.
type Recorder interface {
	Record(ctx context.Context, userID *uuid.UUID, action, entity, entityID string, details map[string]any)
}

// Service handles case workflow operations.
type Service struct {
	repo    Repo
	bus     events.Bus
	auditor Recorder
}

// New creates a new cases service.
func New(repo Repo, bus events.Bus, auditor Recorder) *Service {
	return &Service{repo: repo, bus: bus, auditor: auditor}
}

// SetStatus moves a case to a new status. Any transition between known
// statuses is allowed, including re-selecting the current one; every call
// appends a history entry so the trail shows each touch, not just changes.
func (s *Service) SetStatus(ctx context.Context, actorID uuid.UUID, caseID uuid.UUID, newStatus string) (transport.CaseResponse, error) {
	if !domain.Valid(newStatus) {
		return transport.CaseResponse{}, apperr.Validation("unknown case status")
	}

	previous, err := s.repo.UpdateStatusWithHistory(ctx, caseID, newStatus, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.CaseResponse{}, apperr.NotFound("case not found")
		}
		return transport.CaseResponse{}, err
	}

	s.auditor.Record(ctx, &actorID, audit.ActionUpdateStatus, "case", caseID.String(), map[string]any{
		"previousStatus": previous,
		"newStatus":      newStatus,
	})

	s.bus.Publish(ctx, events.CaseStatusChanged{
		BaseEvent:      events.NewBaseEvent(),
		CaseID:         caseID,
		PreviousStatus: previous,
		NewStatus:      newStatus,
		ActorID:        actorID,
	})

	updated, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return transport.CaseResponse{}, err
	}
	return toCaseResponse(updated), nil
}

// Status returns a case's current status.
func (s *Service) Status(ctx context.Context, caseID uuid.UUID) (string, error) {
	cs, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.NotFound("case not found")
		}
		return "", err
	}
	return cs.Status, nil
}

// CloseFromNote closes the case if it is not already closed, returning the
// status it had before. Used when a closing note is recorded.
func (s *Service) CloseFromNote(ctx context.Context, actorID uuid.UUID, caseID uuid.UUID) (previous string, changed bool, err error) {
	cs, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", false, apperr.NotFound("case not found")
		}
		return "", false, err
	}

	if domain.Status(cs.Status).IsClosed() {
		return cs.Status, false, nil
	}

	if _, err := s.SetStatus(ctx, actorID, caseID, string(domain.StatusClosed)); err != nil {
		return "", false, err
	}
	return cs.Status, true, nil
}

// Touch bumps a case's updated_at without any other change.
func (s *Service) Touch(ctx context.Context, caseID uuid.UUID) error {
	if err := s.repo.Touch(ctx, caseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("case not found")
		}
		return err
	}
	return nil
}

// List returns cases visible to the actor. Agents only see cases from their
// own leads.
func (s *Service) List(ctx context.Context, actorID uuid.UUID, actorRole, status string, limit, offset int) (transport.CasesResponse, error) {
	if status != "" && !domain.Valid(status) {
		return transport.CasesResponse{}, apperr.Validation("unknown case status")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	filter := repository.ListFilter{Status: status, Limit: limit, Offset: offset}
	if actorRole == roles.Agent {
		filter.AssignedUserID = &actorID
	}

	cases, err := s.repo.List(ctx, filter)
	if err != nil {
		return transport.CasesResponse{}, err
	}

	items := make([]transport.CaseResponse, len(cases))
	for i, cs := range cases {
		items[i] = toCaseResponse(cs)
	}
	return transport.CasesResponse{Items: items}, nil
}

// Detail returns a case with its status history and call logs.
func (s *Service) Detail(ctx context.Context, actorID uuid.UUID, actorRole string, caseID uuid.UUID) (transport.CaseDetailResponse, error) {
	cs, err := s.getVisible(ctx, actorID, actorRole, caseID)
	if err != nil {
		return transport.CaseDetailResponse{}, err
	}

	history, err := s.repo.History(ctx, caseID)
	if err != nil {
		return transport.CaseDetailResponse{}, err
	}
	calls, err := s.repo.ListCalls(ctx, caseID)
	if err != nil {
		return transport.CaseDetailResponse{}, err
	}

	detail := transport.CaseDetailResponse{
		CaseResponse: toCaseResponse(cs),
		History:      make([]transport.HistoryEntryResponse, len(history)),
		Calls:        make([]transport.CallLogResponse, len(calls)),
	}
	for i, e := range history {
		detail.History[i] = transport.HistoryEntryResponse{
			ID:             e.ID,
			PreviousStatus: e.PreviousStatus,
			NewStatus:      e.NewStatus,
			UserID:         e.UserID,
			UserName:       e.UserName,
			CreatedAt:      e.CreatedAt,
		}
	}
	for i, call := range calls {
		detail.Calls[i] = toCallResponse(call)
	}
	return detail, nil
}

func (s *Service) getVisible(ctx context.Context, actorID uuid.UUID, actorRole string, caseID uuid.UUID) (repository.Case, error) {
	cs, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Case{}, apperr.NotFound("case not found")
		}
		return repository.Case{}, err
	}

	if actorRole == roles.Agent {
		if cs.AssignedUserID == nil || *cs.AssignedUserID != actorID {
			return repository.Case{}, apperr.Forbidden("case belongs to another agent")
		}
	}
	return cs, nil
}

func toCaseResponse(cs repository.Case) transport.CaseResponse {
	return transport.CaseResponse{
		ID:             cs.ID,
		ClientID:       cs.ClientID,
		ClientName:     cs.ClientName,
		ClientPhone:    cs.ClientPhone,
		LeadID:         cs.LeadID,
		AssignedUserID: cs.AssignedUserID,
		Status:         cs.Status,
		CreatedAt:      cs.CreatedAt,
		UpdatedAt:      cs.UpdatedAt,
	}
}

func toCallResponse(call repository.CallLog) transport.CallLogResponse {
	return transport.CallLogResponse{
		ID:              call.ID,
		UserID:          call.UserID,
		UserName:        call.UserName,
		CallDate:        call.CallDate,
		DurationSeconds: call.DurationSeconds,
		Result:          call.Result,
		Observations:    call.Observations,
		CreatedAt:       call.CreatedAt,
	}
}
