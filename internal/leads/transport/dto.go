// Package transport defines the HTTP request and response shapes for the
// leads bounded context.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateLeadRequest is the intake payload, accepted from campaign platforms
// (API key auth) and from signed-in staff.
type CreateLeadRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=150"`
	Phone        string `json:"phone" validate:"required,min=5,max=25"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Source       string `json:"source,omitempty" validate:"omitempty,max=80"`
	ExternalID   string `json:"externalId,omitempty" validate:"omitempty,max=120"`
	Observations string `json:"observations,omitempty" validate:"omitempty,max=2000"`
}

// LeadResponse is the public representation of a lead.
type LeadResponse struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Phone            string     `json:"phone"`
	Email            *string    `json:"email,omitempty"`
	ExternalID       *string    `json:"externalId,omitempty"`
	Source           *string    `json:"source,omitempty"`
	Status           string     `json:"status"`
	AssignedUserID   *uuid.UUID `json:"assignedUserId,omitempty"`
	AssignedUserName *string    `json:"assignedUserName,omitempty"`
	AssignedAt       *time.Time `json:"assignedAt,omitempty"`
	CreatedManually  bool       `json:"createdManually"`
	Observations     *string    `json:"observations,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// LeadsResponse is a paged lead listing.
type LeadsResponse struct {
	Items []LeadResponse `json:"items"`
}

// SourceResponse is a lead acquisition channel.
type SourceResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AgentLoadResponse is one agent's slice of the distribution overview.
type AgentLoadResponse struct {
	UserID      uuid.UUID `json:"userId"`
	UserName    string    `json:"userName"`
	TotalLeads  int       `json:"totalLeads"`
	ActiveLeads int       `json:"activeLeads"`
}
