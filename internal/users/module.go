package users

import (
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the users bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the users module.
func NewModule(pool *pgxpool.Pool, auditor Recorder, val *validator.Validator) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, auditor)
	return &Module{handler: NewHandler(service, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "users"
}

// RegisterRoutes mounts account management routes. All of them are admin-only.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Admin.Group("/users")
	group.POST("", m.handler.HandleCreate)
	group.GET("", m.handler.HandleList)
	group.GET("/:userId", m.handler.HandleGet)
	group.PATCH("/:userId", m.handler.HandleUpdate)
	group.PATCH("/:userId/toggle-active", m.handler.HandleToggleActive)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
