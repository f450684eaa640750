package casenotes

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CreateNoteRequest records a management note on a case.
type CreateNoteRequest struct {
	ManagementType   string     `json:"managementType" validate:"required"`
	Content          string     `json:"content" validate:"required,max=4000"`
	NextFollowUpDate *time.Time `json:"nextFollowUpDate,omitempty"`
}

// OptionalTime is a patch field that tells an omitted key apart from an
// explicit null. Set is true whenever the key was present in the payload;
// Value is nil when the payload carried null.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// UpdateNoteRequest edits a note. Omitted fields are left unchanged; a null
// nextFollowUpDate clears the date.
type UpdateNoteRequest struct {
	ManagementType   *string      `json:"managementType,omitempty"`
	Content          *string      `json:"content,omitempty" validate:"omitempty,max=4000"`
	NextFollowUpDate OptionalTime `json:"nextFollowUpDate"`
}

// NoteResponse is the public representation of a management note.
type NoteResponse struct {
	ID               uuid.UUID  `json:"id"`
	CaseID           uuid.UUID  `json:"caseId"`
	UserID           uuid.UUID  `json:"userId"`
	UserName         string     `json:"userName"`
	Role             string     `json:"role"`
	ManagementType   string     `json:"managementType"`
	Content          string     `json:"content"`
	StatusSnapshot   string     `json:"statusSnapshot"`
	NextFollowUpDate *time.Time `json:"nextFollowUpDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	AnnulledAt       *time.Time `json:"annulledAt,omitempty"`
}

func toNoteResponse(n Note) NoteResponse {
	return NoteResponse{
		ID:               n.ID,
		CaseID:           n.CaseID,
		UserID:           n.UserID,
		UserName:         n.UserName,
		Role:             n.Role,
		ManagementType:   n.ManagementType,
		Content:          n.Content,
		StatusSnapshot:   n.StatusSnapshot,
		NextFollowUpDate: n.NextFollowUpDate,
		CreatedAt:        n.CreatedAt,
		UpdatedAt:        n.UpdatedAt,
		AnnulledAt:       n.AnnulledAt,
	}
}
