package dashboard

import (
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/internal/shared/roles"
	"salesdesk_backend/platform/httpkit"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the dashboard bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the dashboard module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := NewRepository(pool)
	service := NewService(repo)
	return &Module{handler: NewHandler(service)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "dashboard"
}

// RegisterRoutes mounts the dashboard route. Supervisors and admins only.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/dashboard", httpkit.RequireRole(roles.Admin, roles.Supervisor), m.handler.HandleOverview)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
