package audit

import (
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the audit bounded context module implementing http.Module.
type Module struct {
	service *Service
	handler *Handler
}

// NewModule creates and initializes the audit module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, log)
	return &Module{
		service: service,
		handler: NewHandler(service),
	}
}

// Service exposes the audit recorder for other modules.
func (m *Module) Service() *Service {
	return m.service
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "audit"
}

// RegisterRoutes mounts audit routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/audit-logs", m.handler.HandleList)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
