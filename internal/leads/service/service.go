// Package service implements lead intake and distribution.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/events"
	"salesdesk_backend/internal/leads/assignment"
	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/internal/leads/transport"
	"salesdesk_backend/internal/shared/roles"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/phone"

	"github.com/google/uuid"
)

// Repo defines the data access interface needed by the leads service.
type Repo interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	FindByExternalID(ctx context.Context, externalID string) (repository.Lead, error)
	FindByPhone(ctx context.Context, phone string) (repository.Lead, error)
	List(ctx context.Context, filter repository.ListFilter) ([]repository.Lead, error)
	UpsertSource(ctx context.Context, name string) (repository.Source, error)
	ListSources(ctx context.Context) ([]repository.Source, error)
	AssignmentCandidates(ctx context.Context) ([]repository.CandidateRow, error)
	Distribution(ctx context.Context) ([]repository.AgentLoad, error)
}

// Recorder writes audit entries for lead mutations.
type Recorder interface {
	Record(ctx context.Context, userID *uuid.UUID, action, entity, entityID string, details map[string]any)
}

// Service handles lead intake, listing and distribution.
type Service struct {
	repo    Repo
	bus     events.Bus
	auditor Recorder
	log     *logger.Logger
	now     func() time.Time
}

// New creates a new leads service.
func New(repo Repo, bus events.Bus, auditor Recorder, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, auditor: auditor, log: log, now: time.Now}
}

// Create runs the intake pipeline: dedup by external ID, dedup by normalized
// phone, source upsert, agent assignment, insert. The audited actor is the
// assigned agent since intake callers are machines, not users.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	normalizedPhone := phone.NormalizeE164(req.Phone)

	if externalID := strings.TrimSpace(req.ExternalID); externalID != "" {
		if _, err := s.repo.FindByExternalID(ctx, externalID); err == nil {
			return transport.LeadResponse{}, apperr.Conflict("lead with this external id already exists")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, err
		}
	}

	if _, err := s.repo.FindByPhone(ctx, normalizedPhone); err == nil {
		return transport.LeadResponse{}, apperr.Conflict("lead with this phone already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return transport.LeadResponse{}, err
	}

	var sourceID *uuid.UUID
	if name := strings.TrimSpace(req.Source); name != "" {
		src, err := s.repo.UpsertSource(ctx, name)
		if err != nil {
			return transport.LeadResponse{}, err
		}
		sourceID = &src.ID
	}

	assigneeID, assignedAt, err := s.nextAgent(ctx)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	lead, err := s.repo.Create(ctx, repository.CreateLeadParams{
		Name:           strings.TrimSpace(req.Name),
		Phone:          normalizedPhone,
		Email:          optional(req.Email),
		ExternalID:     optional(req.ExternalID),
		SourceID:       sourceID,
		AssignedUserID: assigneeID,
		AssignedAt:     assignedAt,
		Observations:   optional(req.Observations),
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.auditor.Record(ctx, lead.AssignedUserID, audit.ActionCreate, "lead", lead.ID.String(), map[string]any{
		"phone":  lead.Phone,
		"source": req.Source,
	})

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:       events.NewBaseEvent(),
		LeadID:          lead.ID,
		AssignedUserID:  lead.AssignedUserID,
		Source:          strings.TrimSpace(req.Source),
		Name:            lead.Name,
		Phone:           lead.Phone,
		CreatedManually: false,
	})

	return toLeadResponse(lead), nil
}

// nextAgent picks the least-loaded active agent. Leads stay unassigned when
// no agent is available.
func (s *Service) nextAgent(ctx context.Context) (*uuid.UUID, *time.Time, error) {
	rows, err := s.repo.AssignmentCandidates(ctx)
	if err != nil {
		return nil, nil, err
	}

	candidates := make([]assignment.Candidate, len(rows))
	for i, row := range rows {
		candidates[i] = assignment.Candidate{
			UserID:         row.UserID,
			ActiveCount:    row.ActiveCount,
			LastAssignedAt: row.LastAssignedAt,
		}
	}

	winner, ok := assignment.Pick(candidates)
	if !ok {
		s.log.Warn("no active agent available, lead left unassigned")
		return nil, nil, nil
	}

	when := s.now()
	return &winner, &when, nil
}

// List returns leads visible to the actor. Agents only see their own.
func (s *Service) List(ctx context.Context, actorID uuid.UUID, actorRole, status string, limit, offset int) (transport.LeadsResponse, error) {
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

	leads, err := s.repo.List(ctx, filter)
	if err != nil {
		return transport.LeadsResponse{}, err
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = toLeadResponse(lead)
	}
	return transport.LeadsResponse{Items: items}, nil
}

// Get returns a single lead. Agents may only see their own.
func (s *Service) Get(ctx context.Context, actorID uuid.UUID, actorRole string, leadID uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, err
	}

	if actorRole == roles.Agent {
		if lead.AssignedUserID == nil || *lead.AssignedUserID != actorID {
			return transport.LeadResponse{}, apperr.Forbidden("lead is assigned to another agent")
		}
	}

	return toLeadResponse(lead), nil
}

// Sources returns all known acquisition channels.
func (s *Service) Sources(ctx context.Context) ([]transport.SourceResponse, error) {
	sources, err := s.repo.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]transport.SourceResponse, len(sources))
	for i, src := range sources {
		items[i] = transport.SourceResponse{
			ID:          src.ID,
			Name:        src.Name,
			Description: src.Description,
			CreatedAt:   src.CreatedAt,
		}
	}
	return items, nil
}

// Distribution returns the per-agent workload overview.
func (s *Service) Distribution(ctx context.Context) ([]transport.AgentLoadResponse, error) {
	loads, err := s.repo.Distribution(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]transport.AgentLoadResponse, len(loads))
	for i, load := range loads {
		items[i] = transport.AgentLoadResponse{
			UserID:      load.UserID,
			UserName:    load.UserName,
			TotalLeads:  load.TotalLeads,
			ActiveLeads: load.ActiveLeads,
		}
	}
	return items, nil
}

func toLeadResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:               lead.ID,
		Name:             lead.Name,
		Phone:            lead.Phone,
		Email:            lead.Email,
		ExternalID:       lead.ExternalID,
		Source:           lead.SourceName,
		Status:           lead.Status,
		AssignedUserID:   lead.AssignedUserID,
		AssignedUserName: lead.AssignedUserName,
		AssignedAt:       lead.AssignedAt,
		CreatedManually:  lead.CreatedManually,
		Observations:     lead.Observations,
		CreatedAt:        lead.CreatedAt,
		UpdatedAt:        lead.UpdatedAt,
	}
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
