package manualload

import (
	"net/http"

	"salesdesk_backend/platform/httpkit"
	"salesdesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for manual prospect loading.
type Handler struct {
	service *Service
	val     *validator.Validator
}

// NewHandler creates a new manual load handler.
func NewHandler(service *Service, val *validator.Validator) *Handler {
	return &Handler{service: service, val: val}
}

// HandleLoadOne loads a single pre-qualified prospect.
func (h *Handler) HandleLoadOne(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var item ManualItem
	if err := c.ShouldBindJSON(&item); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(item); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	created, err := h.service.LoadOne(c.Request.Context(), id.UserID(), item)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, CreatedResponse{
		LeadID:   created.LeadID,
		ClientID: created.ClientID,
		CaseID:   created.CaseID,
	})
}

// HandleLoadBulk loads a batch of prospects, reporting per-row outcomes.
func (h *Handler) HandleLoadBulk(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result := h.service.LoadBulk(c.Request.Context(), id.UserID(), req.Items)
	httpkit.OK(c, result)
}
