package clients

import (
	"salesdesk_backend/internal/events"
	apphttp "salesdesk_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the clients bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the clients module.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, auditor Recorder) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, eventBus, auditor)
	return &Module{handler: NewHandler(service)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "clients"
}

// RegisterRoutes mounts client routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/leads/:leadId/convert", m.handler.HandleConvert)

	group := ctx.Protected.Group("/clients")
	group.GET("", m.handler.HandleList)
	group.GET("/:clientId", m.handler.HandleGet)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
