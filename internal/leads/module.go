// Package leads provides the lead management bounded context module.
package leads

import (
	apphttp "admissions_crm_backend/internal/http"
	"admissions_crm_backend/internal/leads/handler"
	"admissions_crm_backend/internal/leads/repository"
	"admissions_crm_backend/platform/logger"
	platformvalidator "admissions_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the lead management bounded context module implementing
// http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

// NewModule wires the leads repository and handler.
func NewModule(pool *pgxpool.Pool, val *platformvalidator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	return &Module{
		handler: handler.New(repo, val, log),
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Repository exposes the repository for wiring into the webhook module, which
// persists through the same store.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts the lead management routes under /api.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leads := ctx.API.Group("/leads")
	{
		leads.GET("", m.handler.List)
		leads.GET("/:id", m.handler.Get)
		leads.PATCH("/:id", m.handler.Update)
		leads.GET("/:id/interactions", m.handler.ListInteractions)
		leads.POST("/:id/interactions", m.handler.CreateInteraction)
		leads.GET("/:id/appointments", m.handler.ListAppointments)
		leads.POST("/:id/appointments", m.handler.CreateAppointment)
	}

	ctx.API.GET("/assignees", m.handler.ListAssignees)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
