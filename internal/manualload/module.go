package manualload

import (
	"salesdesk_backend/internal/events"
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/internal/shared/roles"
	"salesdesk_backend/platform/httpkit"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the manual load bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the manual load module.
func NewModule(pool *pgxpool.Pool, leads LeadLookup, eventBus events.Bus, auditor Recorder, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, leads, eventBus, auditor, log)
	return &Module{handler: NewHandler(service, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "manualload"
}

// RegisterRoutes mounts manual load routes. Supervisors and admins only.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/manual-load")
	group.Use(httpkit.RequireRole(roles.Admin, roles.Supervisor))
	group.POST("", m.handler.HandleLoadOne)
	group.POST("/bulk", m.handler.HandleLoadBulk)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
