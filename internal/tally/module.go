// Package tally provides the Tally webhook bounded context module.
// This file defines the module that encapsulates all webhook setup and route
// registration.
package tally

import (
	"admissions_crm_backend/internal/events"
	apphttp "admissions_crm_backend/internal/http"
	"admissions_crm_backend/platform/config"
	"admissions_crm_backend/platform/logger"
	platformvalidator "admissions_crm_backend/platform/validator"
)

const (
	webhookPath  = "/api/tally/webhook"
	cWebhookPath = "/api/tally/c-webhook"
)

// Module is the Tally webhook bounded context module implementing http.Module.
type Module struct {
	handler   *Handler
	endpoints []endpoint
}

// NewModule wires the two webhook variants. leadStore persists ordinary
// leads, cleadStore persists C-level leads.
func NewModule(leadStore ReturningLeadStore, cleadStore LeadStore, cfg config.TallyConfig, bus events.Bus, val *platformvalidator.Validator, log *logger.Logger) *Module {
	ConfigurePayloadValidation(val)

	leadVariant := Variant{
		Name:               "tally-webhook",
		Resolver:           LeadFieldResolver(),
		UTMParams:          LeadUTMParams,
		CollectsTiming:     true,
		HasReturningBranch: true,
		EventVariant:       "lead",
	}
	cleadVariant := Variant{
		Name:               "tally-c-webhook",
		Resolver:           CLeadFieldResolver(),
		UTMParams:          CLeadUTMParams,
		CollectsTiming:     false,
		HasReturningBranch: false,
		EventVariant:       "c_lead",
	}

	return &Module{
		handler: NewHandler(val, log),
		endpoints: []endpoint{
			{
				path:       webhookPath,
				auth:       NewAuthenticator(cfg.GetTallyWebhookSecret()),
				reconciler: NewReturningReconciler(leadVariant, leadStore, bus, log),
			},
			{
				path:       cWebhookPath,
				auth:       NewAuthenticator(cfg.GetTallyCWebhookSecret()),
				reconciler: NewReconciler(cleadVariant, cleadStore, bus, log),
			},
		},
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tally"
}

// RegisterRoutes mounts the webhook routes. Both endpoints are public
// (secret-authenticated in the handler) and rate limited per IP.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.API.Group("/tally")
	group.Use(ctx.WebhookRateLimiter.RateLimit())

	for _, ep := range m.endpoints {
		route := routeSuffix(ep.path)
		group.POST(route, m.handler.HandleWebhook(ep))
		group.GET(route, m.handler.HandleLiveness(ep.path))
	}
}

func routeSuffix(path string) string {
	const prefix = "/api/tally"
	return path[len(prefix):]
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
