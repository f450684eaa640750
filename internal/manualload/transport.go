package manualload

import (
	"salesdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// ManualItem is one pre-qualified prospect to load.
type ManualItem struct {
	Name         string `json:"name" validate:"required,min=2,max=150"`
	Phone        string `json:"phone" validate:"required,min=5,max=25"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Source       string `json:"source,omitempty" validate:"omitempty,max=80"`
	ExternalID   string `json:"externalId,omitempty" validate:"omitempty,max=120"`
	Observations string `json:"observations,omitempty" validate:"omitempty,max=2000"`
}

// BulkRequest is a batch of prospects to load.
type BulkRequest struct {
	Items []ManualItem `json:"items" validate:"required,min=1,max=500,dive"`
}

// BulkResult summarizes a batch load.
type BulkResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// CreatedResponse identifies the rows one manual load produced.
type CreatedResponse struct {
	LeadID   uuid.UUID `json:"leadId"`
	ClientID uuid.UUID `json:"clientId"`
	CaseID   uuid.UUID `json:"caseId"`
}

func errInvalid(message string) error {
	return apperr.Validation(message)
}

func errDuplicate(message string) error {
	return apperr.Conflict(message)
}

func isDuplicate(err error) bool {
	return apperr.Is(err, apperr.KindConflict)
}
