package clients

import (
	"net/http"
	"strconv"

	"salesdesk_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for clients.
type Handler struct {
	service *Service
}

// NewHandler creates a new clients handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleConvert converts a lead into a client with an open case.
func (h *Handler) HandleConvert(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	resp, err := h.service.ConvertLead(c.Request.Context(), id.UserID(), leadID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, resp)
}

// HandleList returns clients, with optional name/phone search.
func (h *Handler) HandleList(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.service.List(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"items": items})
}

// HandleGet returns a single client.
func (h *Handler) HandleGet(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid client id", nil)
		return
	}

	client, err := h.service.Get(c.Request.Context(), clientID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, client)
}
