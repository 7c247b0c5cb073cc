package tally

import (
	"encoding/json"
	"io"
	"net/http"

	"admissions_crm_backend/platform/httpkit"
	"admissions_crm_backend/platform/logger"
	platformvalidator "admissions_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WebhookResponse is the success body for both webhook variants.
type WebhookResponse struct {
	Success     bool       `json:"success"`
	LeadID      *uuid.UUID `json:"leadId,omitempty"`
	IsReturning *bool      `json:"isReturning,omitempty"`
	Message     string     `json:"message,omitempty"`
}

// endpoint bundles one webhook variant with its route path and secret check.
type endpoint struct {
	path       string
	auth       *Authenticator
	reconciler *Reconciler
}

// Handler serves the Tally webhook endpoints.
type Handler struct {
	val *platformvalidator.Validator
	log *logger.Logger
}

// NewHandler creates a webhook handler.
func NewHandler(val *platformvalidator.Validator, log *logger.Logger) *Handler {
	return &Handler{val: val, log: log}
}

// HandleWebhook returns the POST handler for one endpoint. Gate order is
// fixed: authenticate, decode, validate structure, reconcile. A request that
// fails a gate never reaches the next one.
func (h *Handler) HandleWebhook(ep endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ep.auth.Authenticate(c.Request.Header) {
			h.log.WebhookRejected(ep.path, "invalid webhook secret")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		rawBody, err := io.ReadAll(c.Request.Body)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "unable to read request body", nil)
			return
		}

		var payload WebhookPayload
		if err := json.Unmarshal(rawBody, &payload); err != nil {
			httpkit.Error(c, http.StatusBadRequest, "Invalid payload", err.Error())
			return
		}

		if violations := ValidatePayload(h.val, &payload); len(violations) > 0 {
			h.log.WebhookRejected(ep.path, "schema validation failed")
			httpkit.Error(c, http.StatusBadRequest, "Invalid payload", violations)
			return
		}

		result, err := ep.reconciler.Process(c.Request.Context(), &payload, rawBody)
		if httpkit.HandleError(c, err) {
			return
		}

		c.JSON(http.StatusOK, buildWebhookResponse(ep.reconciler.variant, result))
		h.log.WebhookEvent(ep.path, payload.Data.SubmissionID, outcomeLabel(result))
	}
}

// HandleLiveness returns the GET handler used to verify an endpoint is wired.
func (h *Handler) HandleLiveness(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"endpoint": path,
			"method":   http.MethodPost,
		})
	}
}

func buildWebhookResponse(variant Variant, result Result) WebhookResponse {
	resp := WebhookResponse{Success: true, LeadID: result.LeadID}

	switch {
	case result.Duplicate:
		resp.Message = "Duplicate submission ignored"
	case result.IsReturning:
		returning := true
		resp.IsReturning = &returning
		resp.Message = "Returning customer updated"
	case variant.HasReturningBranch:
		returning := false
		resp.IsReturning = &returning
	}

	return resp
}

func outcomeLabel(result Result) string {
	switch {
	case result.Duplicate:
		return "duplicate_ignored"
	case result.IsReturning:
		return "returning_contact"
	default:
		return "lead_created"
	}
}
