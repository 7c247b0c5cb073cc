// Package handler exposes the lead management HTTP endpoints used by the
// internal CRM frontend.
package handler

import (
	"net/http"
	"strconv"

	"admissions_crm_backend/internal/leads/domain"
	"admissions_crm_backend/internal/leads/repository"
	"admissions_crm_backend/internal/leads/transport"
	"admissions_crm_backend/platform/httpkit"
	"admissions_crm_backend/platform/logger"
	platformvalidator "admissions_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler serves the lead CRUD endpoints.
type Handler struct {
	repo *repository.Repository
	val  *platformvalidator.Validator
	log  *logger.Logger
}

// New creates a leads handler.
func New(repo *repository.Repository, val *platformvalidator.Validator, log *logger.Logger) *Handler {
	return &Handler{repo: repo, val: val, log: log}
}

// List handles GET /api/leads with optional search and pagination.
func (h *Handler) List(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil || page < 1 {
		httpkit.Error(c, http.StatusBadRequest, "invalid page", c.Query("page"))
		return
	}
	pageSize, err := queryInt(c, "pageSize", defaultPageSize)
	if err != nil || pageSize < 1 || pageSize > maxPageSize {
		httpkit.Error(c, http.StatusBadRequest, "invalid pageSize", c.Query("pageSize"))
		return
	}

	leads, total, err := h.repo.List(c.Request.Context(), c.Query("search"), page, pageSize)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.LeadListResponse{
		Leads:    make([]transport.LeadResponse, 0, len(leads)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, lead := range leads {
		resp.Leads = append(resp.Leads, transport.ToLeadResponse(lead))
	}
	httpkit.OK(c, resp)
}

// Get handles GET /api/leads/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	lead, err := h.repo.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

// Update handles PATCH /api/leads/:id. Only stage and assignee are editable;
// everything else is owned by the webhook pipeline.
func (h *Handler) Update(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Stage != nil && !domain.IsKnownStage(*req.Stage) {
		httpkit.Error(c, http.StatusBadRequest, "unknown stage", *req.Stage)
		return
	}
	if req.Stage == nil && !req.Assignee.Set {
		httpkit.Error(c, http.StatusBadRequest, "no fields to update", nil)
		return
	}

	lead, err := h.repo.Update(c.Request.Context(), id, repository.UpdateParams{
		Stage:       req.Stage,
		Assignee:    req.Assignee.Value,
		AssigneeSet: req.Assignee.Set,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

// ListInteractions handles GET /api/leads/:id/interactions.
func (h *Handler) ListInteractions(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	interactions, err := h.repo.ListInteractions(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := make([]transport.InteractionResponse, 0, len(interactions))
	for _, in := range interactions {
		resp = append(resp, transport.ToInteractionResponse(in))
	}
	httpkit.OK(c, gin.H{"interactions": resp})
}

// CreateInteraction handles POST /api/leads/:id/interactions.
func (h *Handler) CreateInteraction(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	var req transport.CreateInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if !domain.IsKnownInteractionType(req.Type) {
		httpkit.Error(c, http.StatusBadRequest, "unknown interaction type", req.Type)
		return
	}

	// Ensure the lead exists so a typo'd id fails with 404 instead of a
	// foreign key violation.
	if _, err := h.repo.GetByID(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	in, err := h.repo.CreateInteraction(c.Request.Context(), id, req.Type, req.Content, nil)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, transport.ToInteractionResponse(in))
}

// ListAppointments handles GET /api/leads/:id/appointments.
func (h *Handler) ListAppointments(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	appointments, err := h.repo.ListAppointments(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := make([]transport.AppointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		resp = append(resp, transport.ToAppointmentResponse(a))
	}
	httpkit.OK(c, gin.H{"appointments": resp})
}

// CreateAppointment handles POST /api/leads/:id/appointments.
func (h *Handler) CreateAppointment(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	var req transport.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if _, err := h.repo.GetByID(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	a, err := h.repo.CreateAppointment(c.Request.Context(), id, req.ScheduledAt, req.Memo)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, transport.ToAppointmentResponse(a))
}

// ListAssignees handles GET /api/assignees.
func (h *Handler) ListAssignees(c *gin.Context) {
	assignees, err := h.repo.ListAssignees(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	if assignees == nil {
		assignees = []string{}
	}
	httpkit.OK(c, gin.H{"assignees": assignees})
}

func pathUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
