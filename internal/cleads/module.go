package cleads

import (
	"admissions_crm_backend/internal/events"
	apphttp "admissions_crm_backend/internal/http"
	"admissions_crm_backend/internal/messaging"
	"admissions_crm_backend/platform/logger"
	platformvalidator "admissions_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the C-level lead bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	repo    *Repository
}

// NewModule wires the C-level leads repository and handler.
func NewModule(pool *pgxpool.Pool, sender messaging.Sender, bus events.Bus, val *platformvalidator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	return &Module{
		handler: NewHandler(repo, sender, bus, val, log),
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "cleads"
}

// Repository exposes the repository for wiring into the webhook module.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts the C-level lead routes under /api.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.API.Group("/c-leads")
	{
		group.GET("", m.handler.List)
		group.GET("/:id", m.handler.Get)
		group.PATCH("/:id", m.handler.Update)
		group.GET("/:id/messages", m.handler.ListMessages)
		group.POST("/:id/messages", m.handler.SendMessage)
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
