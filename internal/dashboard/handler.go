package dashboard

import (
	"salesdesk_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the management dashboard.
type Handler struct {
	service *Service
}

// NewHandler creates a new dashboard handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleOverview returns the period metrics. Defaults to today.
func (h *Handler) HandleOverview(c *gin.Context) {
	resp, err := h.service.Overview(c.Request.Context(), c.DefaultQuery("period", PeriodDay))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, resp)
}
