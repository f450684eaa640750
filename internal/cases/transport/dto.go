// Package transport defines the HTTP request and response shapes for the
// cases bounded context.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// UpdateStatusRequest moves a case to a new workflow status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateCallRequest records a phone contact on a case.
type CreateCallRequest struct {
	CallDate        time.Time `json:"callDate" validate:"required"`
	DurationSeconds int       `json:"durationSeconds" validate:"gte=0"`
	Result          string    `json:"result" validate:"required,max=200"`
	Observations    string    `json:"observations,omitempty" validate:"omitempty,max=2000"`
}

// CaseResponse is the public representation of a case.
type CaseResponse struct {
	ID             uuid.UUID  `json:"id"`
	ClientID       uuid.UUID  `json:"clientId"`
	ClientName     string     `json:"clientName"`
	ClientPhone    string     `json:"clientPhone"`
	LeadID         uuid.UUID  `json:"leadId"`
	AssignedUserID *uuid.UUID `json:"assignedUserId,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// HistoryEntryResponse is one recorded status transition.
type HistoryEntryResponse struct {
	ID             uuid.UUID `json:"id"`
	PreviousStatus *string   `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	UserID         uuid.UUID `json:"userId"`
	UserName       string    `json:"userName"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CallLogResponse is one recorded phone contact.
type CallLogResponse struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"userId"`
	UserName        string    `json:"userName"`
	CallDate        time.Time `json:"callDate"`
	DurationSeconds int       `json:"durationSeconds"`
	Result          string    `json:"result"`
	Observations    *string   `json:"observations,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CaseDetailResponse is a case with its full activity trail.
type CaseDetailResponse struct {
	CaseResponse
	History []HistoryEntryResponse `json:"history"`
	Calls   []CallLogResponse      `json:"calls"`
}

// CasesResponse is a paged case listing.
type CasesResponse struct {
	Items []CaseResponse `json:"items"`
}
