package users

import (
	"net/http"
	"strings"

	"salesdesk_backend/platform/httpkit"
	"salesdesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidUserID    = "invalid user id"
)

// Handler handles HTTP requests for account management.
type Handler struct {
	service *Service
	val     *validator.Validator
}

// NewHandler creates a new users handler.
func NewHandler(service *Service, val *validator.Validator) *Handler {
	return &Handler{service: service, val: val}
}

// HandleCreate registers a new account.
func (h *Handler) HandleCreate(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	user, err := h.service.Create(c.Request.Context(), id.UserID(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, user)
}

// HandleList returns accounts, filterable by role and active state.
func (h *Handler) HandleList(c *gin.Context) {
	filter := ListFilter{
		Role:       c.Query("role"),
		OnlyActive: strings.EqualFold(c.Query("active"), "true"),
	}

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"items": items})
}

// HandleGet returns a single account.
func (h *Handler) HandleGet(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidUserID, nil)
		return
	}

	user, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, user)
}

// HandleUpdate edits an account.
func (h *Handler) HandleUpdate(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidUserID, nil)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	user, err := h.service.Update(c.Request.Context(), id.UserID(), userID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, user)
}

// HandleToggleActive flips an account's active flag.
func (h *Handler) HandleToggleActive(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidUserID, nil)
		return
	}

	user, err := h.service.ToggleActive(c.Request.Context(), id.UserID(), userID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, user)
}
