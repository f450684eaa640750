// Package cases provides the case workflow bounded context module.
package cases

import (
	"salesdesk_backend/internal/cases/calls"
	"salesdesk_backend/internal/cases/handler"
	"salesdesk_backend/internal/cases/repository"
	"salesdesk_backend/internal/cases/service"
	"salesdesk_backend/internal/events"
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the cases bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the cases module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, auditor service.Recorder, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, auditor)
	callsSvc := calls.New(repo, auditor)

	return &Module{
		handler: handler.New(svc, callsSvc, val),
		service: svc,
	}
}

// Service exposes the case workflow for other modules (note-driven closure).
func (m *Module) Service() *service.Service {
	return m.service
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "cases"
}

// RegisterRoutes mounts case routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/cases")
	group.GET("", m.handler.HandleList)
	group.GET("/:caseId", m.handler.HandleDetail)
	group.PATCH("/:caseId/status", m.handler.HandleSetStatus)
	group.POST("/:caseId/calls", m.handler.HandleAddCall)
	group.GET("/:caseId/calls", m.handler.HandleListCalls)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
