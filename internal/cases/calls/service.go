// Package calls handles call logging on cases.
// This is a vertically sliced feature package: recording a call is the
// agents' bread-and-butter activity and stays separate from the status
// workflow in service.
package calls

import (
	"context"
	"errors"
	"strings"

	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/cases/repository"
	"salesdesk_backend/internal/cases/transport"
	"salesdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// Repo defines the data access interface needed by the calls service.
// This is a consumer-driven interface - only what calls needs.
type Repo interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Case, error)
	CreateCall(ctx context.Context, params repository.CreateCallParams) (repository.CallLog, error)
	ListCalls(ctx context.Context, caseID uuid.UUID) ([]repository.CallLog, error)
}

// Recorder writes audit entries for call logging.
type Recorder interface {
	Record(ctx context.Context, userID *uuid.UUID, action, entity, entityID string, details map[string]any)
}

// Service handles call log operations.
type Service struct {
	repo    Repo
	auditor Recorder
}

// New creates a new calls service.
func New(repo Repo, auditor Recorder) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// Add records a phone contact on a case. Recording a call bumps the case's
// updated_at so it surfaces as recently worked.
func (s *Service) Add(ctx context.Context, actorID, caseID uuid.UUID, req transport.CreateCallRequest) (transport.CallLogResponse, error) {
	result := strings.TrimSpace(req.Result)
	if result == "" {
		return transport.CallLogResponse{}, apperr.Validation("call result is required")
	}
	if req.DurationSeconds < 0 {
		return transport.CallLogResponse{}, apperr.Validation("duration must not be negative")
	}

	if _, err := s.repo.GetByID(ctx, caseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.CallLogResponse{}, apperr.NotFound("case not found")
		}
		return transport.CallLogResponse{}, err
	}

	var observations *string
	if trimmed := strings.TrimSpace(req.Observations); trimmed != "" {
		observations = &trimmed
	}

	call, err := s.repo.CreateCall(ctx, repository.CreateCallParams{
		CaseID:          caseID,
		UserID:          actorID,
		CallDate:        req.CallDate,
		DurationSeconds: req.DurationSeconds,
		Result:          result,
		Observations:    observations,
	})
	if err != nil {
		return transport.CallLogResponse{}, err
	}

	s.auditor.Record(ctx, &actorID, audit.ActionCreate, "call_log", call.ID.String(), map[string]any{
		"caseId": caseID.String(),
		"result": result,
	})

	return toResponse(call), nil
}

// List returns a case's call logs, newest first.
func (s *Service) List(ctx context.Context, caseID uuid.UUID) ([]transport.CallLogResponse, error) {
	if _, err := s.repo.GetByID(ctx, caseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("case not found")
		}
		return nil, err
	}

	calls, err := s.repo.ListCalls(ctx, caseID)
	if err != nil {
		return nil, err
	}

	items := make([]transport.CallLogResponse, len(calls))
	for i, call := range calls {
		items[i] = toResponse(call)
	}
	return items, nil
}

func toResponse(call repository.CallLog) transport.CallLogResponse {
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
