// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"salesdesk_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published when a new lead enters the pipeline, whatever
// the origin (webhook, bearer-token API call or manual load).
type LeadCreated struct {
	BaseEvent
	LeadID         uuid.UUID  `json:"leadId"`
	AssignedUserID *uuid.UUID `json:"assignedUserId,omitempty"`
	Source         string     `json:"source,omitempty"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	CreatedManually bool      `json:"createdManually"`
}

func (e LeadCreated) EventName() string { return "leads.created" }

// LeadConverted is published when a lead is converted into a client.
type LeadConverted struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	ClientID uuid.UUID `json:"clientId"`
	CaseID   uuid.UUID `json:"caseId"`
	ActorID  uuid.UUID `json:"actorId"`
}

func (e LeadConverted) EventName() string { return "leads.converted" }

// =============================================================================
// Case Domain Events
// =============================================================================

// CaseStatusChanged is published after every recorded status transition,
// including no-op transitions and the auto-closure triggered by notes.
type CaseStatusChanged struct {
	BaseEvent
	CaseID         uuid.UUID `json:"caseId"`
	PreviousStatus string    `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	ActorID        uuid.UUID `json:"actorId"`
}

func (e CaseStatusChanged) EventName() string { return "cases.status.changed" }

// CaseNoteCreated is published when a management note is recorded on a case.
// The scheduler module uses NextFollowUpDate to enqueue follow-up reminders.
type CaseNoteCreated struct {
	BaseEvent
	NoteID           uuid.UUID  `json:"noteId"`
	CaseID           uuid.UUID  `json:"caseId"`
	ActorID          uuid.UUID  `json:"actorId"`
	ManagementType   string     `json:"managementType"`
	NextFollowUpDate *time.Time `json:"nextFollowUpDate,omitempty"`
}

func (e CaseNoteCreated) EventName() string { return "cases.note.created" }
