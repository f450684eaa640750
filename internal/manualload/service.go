package manualload

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/events"
	"salesdesk_backend/internal/leads/assignment"
	leadsrepo "salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/phone"

	"github.com/google/uuid"
)

// LeadLookup is the slice of the leads repository the manual load needs:
// dedup lookups, source upsert and assignment candidates.
type LeadLookup interface {
	FindByPhone(ctx context.Context, phone string) (leadsrepo.Lead, error)
	FindByExternalID(ctx context.Context, externalID string) (leadsrepo.Lead, error)
	UpsertSource(ctx context.Context, name string) (leadsrepo.Source, error)
	AssignmentCandidates(ctx context.Context) ([]leadsrepo.CandidateRow, error)
}

// Store provides the manual load transaction.
type Store interface {
	CreateQualified(ctx context.Context, params CreateParams) (Created, error)
}

// Recorder writes audit entries for manual loads.
type Recorder interface {
	Record(ctx context.Context, userID *uuid.UUID, action, entity, entityID string, details map[string]any)
}

// Service handles manual prospect loading.
type Service struct {
	store   Store
	leads   LeadLookup
	bus     events.Bus
	auditor Recorder
	log     *logger.Logger
	now     func() time.Time
}

// NewService creates a new manual load service.
func NewService(store Store, leads LeadLookup, bus events.Bus, auditor Recorder, log *logger.Logger) *Service {
	return &Service{store: store, leads: leads, bus: bus, auditor: auditor, log: log, now: time.Now}
}

// LoadOne creates one pre-qualified prospect. Duplicates by external ID or
// normalized phone are skipped, reported via errSkip.
func (s *Service) LoadOne(ctx context.Context, actorID uuid.UUID, item ManualItem) (Created, error) {
	name := strings.TrimSpace(item.Name)
	if name == "" {
		return Created{}, errInvalid("name is required")
	}
	normalizedPhone := phone.NormalizeE164(item.Phone)
	if normalizedPhone == "" {
		return Created{}, errInvalid("phone is required")
	}

	if externalID := strings.TrimSpace(item.ExternalID); externalID != "" {
		if _, err := s.leads.FindByExternalID(ctx, externalID); err == nil {
			return Created{}, errDuplicate("external id already loaded")
		} else if !errors.Is(err, leadsrepo.ErrNotFound) {
			return Created{}, err
		}
	}

	if _, err := s.leads.FindByPhone(ctx, normalizedPhone); err == nil {
		return Created{}, errDuplicate("phone already loaded")
	} else if !errors.Is(err, leadsrepo.ErrNotFound) {
		return Created{}, err
	}

	var sourceID *uuid.UUID
	if srcName := strings.TrimSpace(item.Source); srcName != "" {
		src, err := s.leads.UpsertSource(ctx, srcName)
		if err != nil {
			return Created{}, err
		}
		sourceID = &src.ID
	}

	assigneeID, assignedAt, err := s.nextAgent(ctx)
	if err != nil {
		return Created{}, err
	}

	created, err := s.store.CreateQualified(ctx, CreateParams{
		Name:           name,
		Phone:          normalizedPhone,
		Email:          optional(item.Email),
		ExternalID:     optional(item.ExternalID),
		SourceID:       sourceID,
		AssignedUserID: assigneeID,
		AssignedAt:     assignedAt,
		Observations:   optional(item.Observations),
		ActorID:        actorID,
	})
	if err != nil {
		return Created{}, err
	}

	s.auditor.Record(ctx, &actorID, audit.ActionCreate, "lead", created.LeadID.String(), map[string]any{
		"phone":           normalizedPhone,
		"createdManually": true,
		"clientId":        created.ClientID.String(),
		"caseId":          created.CaseID.String(),
	})

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:       events.NewBaseEvent(),
		LeadID:          created.LeadID,
		AssignedUserID:  assigneeID,
		Source:          strings.TrimSpace(item.Source),
		Name:            name,
		Phone:           normalizedPhone,
		CreatedManually: true,
	})

	return created, nil
}

// LoadBulk processes every item, tolerating per-item failures: duplicates
// count as skipped, anything else lands in the error list with its row index.
func (s *Service) LoadBulk(ctx context.Context, actorID uuid.UUID, items []ManualItem) BulkResult {
	result := BulkResult{Errors: []string{}}

	for i, item := range items {
		_, err := s.LoadOne(ctx, actorID, item)
		switch {
		case err == nil:
			result.Created++
		case isDuplicate(err):
			result.Skipped++
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			s.log.Warn("manual load row failed", "row", i+1, "error", err)
		}
	}
	return result
}

func (s *Service) nextAgent(ctx context.Context) (*uuid.UUID, *time.Time, error) {
	rows, err := s.leads.AssignmentCandidates(ctx)
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
		return nil, nil, nil
	}
	when := s.now()
	return &winner, &when, nil
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
