package audit

import (
	"encoding/json"
	"strconv"
	"time"

	"salesdesk_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for the audit trail.
type Handler struct {
	service *Service
}

// NewHandler creates a new audit handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type entryResponse struct {
	ID        uuid.UUID       `json:"id"`
	UserID    *uuid.UUID      `json:"userId"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entityId,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// HandleList returns recent audit entries, filterable by entity, action and user.
func (h *Handler) HandleList(c *gin.Context) {
	filter := ListFilter{
		Entity: c.Query("entity"),
		Action: c.Query("action"),
	}
	if raw := c.Query("userId"); raw != "" {
		uid, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, 400, "invalid userId", nil)
			return
		}
		filter.UserID = &uid
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httpkit.Error(c, 400, "invalid limit", nil)
			return
		}
		filter.Limit = limit
	}

	entries, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	items := make([]entryResponse, len(entries))
	for i, e := range entries {
		items[i] = entryResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			Action:    e.Action,
			Entity:    e.Entity,
			EntityID:  e.EntityID,
			Details:   json.RawMessage(e.Details),
			CreatedAt: e.CreatedAt,
		}
	}
	httpkit.OK(c, gin.H{"items": items})
}
