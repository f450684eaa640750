// Package leads provides the lead management bounded context module.
package leads

import (
	"salesdesk_backend/internal/events"
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/internal/leads/handler"
	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/internal/leads/service"
	"salesdesk_backend/internal/shared/roles"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/httpkit"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler   *handler.Handler
	service   *service.Service
	repo      *repository.Repository
	intakeCfg config.IntakeConfig
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, auditor service.Recorder, intakeCfg config.IntakeConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, auditor, log)

	return &Module{
		handler:   handler.New(svc, val),
		service:   svc,
		repo:      repo,
		intakeCfg: intakeCfg,
	}
}

// Service exposes lead intake for other modules (manual load).
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes lead data access for other modules.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Intake endpoint: API key or staff JWT.
	ctx.V1.POST("/leads", handler.IntakeAuth(m.intakeCfg, ctx.Config), m.handler.HandleCreate)

	group := ctx.Protected.Group("/leads")
	group.GET("", m.handler.HandleList)
	group.GET("/sources", m.handler.HandleSources)
	group.GET("/distribution", httpkit.RequireRole(roles.Admin, roles.Supervisor), m.handler.HandleDistribution)
	group.GET("/:leadId", m.handler.HandleGet)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
