package clients

import (
	"context"
	"errors"
	"time"

	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/events"
	"salesdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// Store defines the data access interface needed by the clients service.
type Store interface {
	ConvertFromLead(ctx context.Context, leadID, actorID uuid.UUID) (Conversion, error)
	FindByLeadID(ctx context.Context, leadID uuid.UUID) (Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (Client, error)
	List(ctx context.Context, filter ListFilter) ([]Client, error)
}

// Recorder writes audit entries for client mutations.
type Recorder interface {
	Record(ctx context.Context, userID *uuid.UUID, action, entity, entityID string, details map[string]any)
}

// Service handles lead conversion and client lookup.
type Service struct {
	store   Store
	bus     events.Bus
	auditor Recorder
}

// NewService creates a new clients service.
func NewService(store Store, bus events.Bus, auditor Recorder) *Service {
	return &Service{store: store, bus: bus, auditor: auditor}
}

// ConvertLead turns a lead into a client with an open case. The conversion is
// a single transaction: client, case, initial history entry and the lead's
// status flip all land together or not at all.
func (s *Service) ConvertLead(ctx context.Context, actorID, leadID uuid.UUID) (ConversionResponse, error) {
	conv, err := s.store.ConvertFromLead(ctx, leadID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, ErrLeadNotFound):
			return ConversionResponse{}, apperr.NotFound("lead not found")
		case errors.Is(err, ErrAlreadyConverted):
			return ConversionResponse{}, apperr.Conflict("lead already converted")
		}
		return ConversionResponse{}, err
	}

	s.auditor.Record(ctx, &actorID, audit.ActionConvertLead, "lead", leadID.String(), map[string]any{
		"clientId": conv.Client.ID.String(),
		"caseId":   conv.CaseID.String(),
	})

	s.bus.Publish(ctx, events.LeadConverted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		ClientID:  conv.Client.ID,
		CaseID:    conv.CaseID,
		ActorID:   actorID,
	})

	return ConversionResponse{
		Client: toClientResponse(conv.Client),
		CaseID: conv.CaseID,
	}, nil
}

// Get returns a single client.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (ClientResponse, error) {
	client, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ClientResponse{}, apperr.NotFound("client not found")
		}
		return ClientResponse{}, err
	}
	return toClientResponse(client), nil
}

// List returns clients matching the filter.
func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]ClientResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	clients, err := s.store.List(ctx, ListFilter{Search: search, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	items := make([]ClientResponse, len(clients))
	for i, c := range clients {
		items[i] = toClientResponse(c)
	}
	return items, nil
}

// ClientResponse is the public representation of a client.
type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     *string   `json:"email,omitempty"`
	LeadID    uuid.UUID `json:"leadId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConversionResponse is the outcome of a lead conversion.
type ConversionResponse struct {
	Client ClientResponse `json:"client"`
	CaseID uuid.UUID      `json:"caseId"`
}

func toClientResponse(c Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		LeadID:    c.LeadID,
		CreatedAt: c.CreatedAt,
	}
}
