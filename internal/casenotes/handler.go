package casenotes

import (
	"net/http"

	"salesdesk_backend/platform/httpkit"
	"salesdesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidCaseID    = "invalid case id"
	msgInvalidNoteID    = "invalid note id"
)

// Handler handles HTTP requests for case notes.
type Handler struct {
	service *Service
	val     *validator.Validator
}

// NewHandler creates a new case notes handler.
func NewHandler(service *Service, val *validator.Validator) *Handler {
	return &Handler{service: service, val: val}
}

// HandleCreate records a management note on a case.
func (h *Handler) HandleCreate(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	caseID, err := uuid.Parse(c.Param("caseId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCaseID, nil)
		return
	}

	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	note, err := h.service.Create(c.Request.Context(), id.UserID(), id.Role(), caseID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, note)
}

// HandleList returns a case's notes.
func (h *Handler) HandleList(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("caseId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCaseID, nil)
		return
	}

	items, err := h.service.List(c.Request.Context(), caseID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"items": items})
}

// HandleUpdate edits a note.
func (h *Handler) HandleUpdate(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	noteID, err := uuid.Parse(c.Param("noteId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidNoteID, nil)
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	note, err := h.service.Update(c.Request.Context(), id.UserID(), id.Role(), noteID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, note)
}

// HandleAnnul voids a note without deleting it.
func (h *Handler) HandleAnnul(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	noteID, err := uuid.Parse(c.Param("noteId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidNoteID, nil)
		return
	}

	note, err := h.service.Annul(c.Request.Context(), id.UserID(), id.Role(), noteID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, note)
}
