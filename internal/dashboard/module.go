package dashboard

import (
	"context"
	"net/http"

	"admissions_crm_backend/internal/events"
	apphttp "admissions_crm_backend/internal/http"
	"admissions_crm_backend/platform/httpkit"
	"admissions_crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Module is the dashboard bounded context module implementing http.Module.
type Module struct {
	repo  *Repository
	cache *Cache
	log   *logger.Logger
}

// NewModule wires the dashboard repository and cache, and subscribes to the
// lead events that make cached snapshots stale.
func NewModule(repo *Repository, cache *Cache, bus events.Bus, log *logger.Logger) *Module {
	m := &Module{repo: repo, cache: cache, log: log}

	invalidate := events.HandlerFunc(func(ctx context.Context, _ events.Event) error {
		cache.Invalidate(ctx)
		return nil
	})
	bus.Subscribe(events.LeadCaptured{}.EventName(), invalidate)
	bus.Subscribe(events.ReturningContactUpdated{}.EventName(), invalidate)

	return m
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "dashboard"
}

// RegisterRoutes mounts the dashboard route under /api.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.GET("/dashboard", m.handleStats)
}

// handleStats serves GET /api/dashboard?filter=7d|30d|all with a cache-aside
// read path.
func (m *Module) handleStats(c *gin.Context) {
	filter := c.DefaultQuery("filter", FilterAll)
	if !IsKnownFilter(filter) {
		httpkit.Error(c, http.StatusBadRequest, "unknown filter", filter)
		return
	}

	ctx := c.Request.Context()
	if stats, ok := m.cache.Get(ctx, filter); ok {
		httpkit.OK(c, stats)
		return
	}

	stats, err := m.repo.Compute(ctx, filter)
	if httpkit.HandleError(c, err) {
		return
	}
	m.cache.Set(ctx, filter, stats)
	httpkit.OK(c, stats)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
