package casenotes

import (
	"salesdesk_backend/internal/events"
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the case notes bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the case notes module.
func NewModule(pool *pgxpool.Pool, cases CaseGateway, eventBus events.Bus, auditor Recorder, val *validator.Validator) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, cases, eventBus, auditor)
	return &Module{handler: NewHandler(service, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "casenotes"
}

// RegisterRoutes mounts note routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/cases/:caseId/notes", m.handler.HandleCreate)
	ctx.Protected.GET("/cases/:caseId/notes", m.handler.HandleList)
	ctx.Protected.PATCH("/notes/:noteId", m.handler.HandleUpdate)
	ctx.Protected.POST("/notes/:noteId/annul", m.handler.HandleAnnul)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
