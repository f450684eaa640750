// Package handler exposes the cases bounded context over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"salesdesk_backend/internal/cases/calls"
	"salesdesk_backend/internal/cases/service"
	"salesdesk_backend/internal/cases/transport"
	"salesdesk_backend/platform/httpkit"
	"salesdesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidCaseID    = "invalid case id"
)

// Handler handles HTTP requests for cases.
type Handler struct {
	service *service.Service
	calls   *calls.Service
	val     *validator.Validator
}

// New creates a new cases handler.
func New(svc *service.Service, callsSvc *calls.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, calls: callsSvc, val: val}
}

// HandleList returns cases visible to the signed-in user.
func (h *Handler) HandleList(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	resp, err := h.service.List(c.Request.Context(), id.UserID(), id.Role(), c.Query("status"), limit, offset)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, resp)
}

// HandleDetail returns a case with its history and call logs.
func (h *Handler) HandleDetail(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	caseID, err := uuid.Parse(c.Param("caseId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCaseID, nil)
		return
	}

	detail, err := h.service.Detail(c.Request.Context(), id.UserID(), id.Role(), caseID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, detail)
}

// HandleSetStatus moves a case to a new workflow status.
func (h *Handler) HandleSetStatus(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	caseID, err := uuid.Parse(c.Param("caseId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCaseID, nil)
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.service.SetStatus(c.Request.Context(), id.UserID(), caseID, req.Status)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, resp)
}

// HandleAddCall records a phone contact on a case.
func (h *Handler) HandleAddCall(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	caseID, err := uuid.Parse(c.Param("caseId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCaseID, nil)
		return
	}

	var req transport.CreateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	call, err := h.calls.Add(c.Request.Context(), id.UserID(), caseID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, call)
}

// HandleListCalls returns a case's call logs.
func (h *Handler) HandleListCalls(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("caseId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCaseID, nil)
		return
	}

	items, err := h.calls.List(c.Request.Context(), caseID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"items": items})
}
