package cleads

import (
	"net/http"
	"strconv"
	"time"

	"admissions_crm_backend/internal/events"
	"admissions_crm_backend/internal/messaging"
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

// CLeadResponse is the JSON projection of a C-level lead.
type CLeadResponse struct {
	ID               uuid.UUID `json:"id"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	Source           string    `json:"source"`
	FormSubmissionID *string   `json:"formSubmissionId"`
	ParentName       string    `json:"parentName"`
	ParentPhone      string    `json:"parentPhone"`
	StudentGrade     *string   `json:"studentGrade"`
	DesiredTrack     *string   `json:"desiredTrack"`
	Region           *string   `json:"region"`
	QuestionContext  *string   `json:"questionContext"`
	Status           string    `json:"status"`
	Memo             *string   `json:"memo"`
	UTMSource        *string   `json:"utmSource"`
	UTMMedium        *string   `json:"utmMedium"`
	UTMCampaign      *string   `json:"utmCampaign"`
}

func toCLeadResponse(lead CLead) CLeadResponse {
	return CLeadResponse{
		ID:               lead.ID,
		CreatedAt:        lead.CreatedAt,
		UpdatedAt:        lead.UpdatedAt,
		Source:           lead.Source,
		FormSubmissionID: lead.FormSubmissionID,
		ParentName:       lead.ParentName,
		ParentPhone:      lead.ParentPhone,
		StudentGrade:     lead.StudentGrade,
		DesiredTrack:     lead.DesiredTrack,
		Region:           lead.Region,
		QuestionContext:  lead.QuestionContext,
		Status:           lead.Status,
		Memo:             lead.Memo,
		UTMSource:        lead.UTMSource,
		UTMMedium:        lead.UTMMedium,
		UTMCampaign:      lead.UTMCampaign,
	}
}

// MessageResponse is the JSON projection of an outbound message.
type MessageResponse struct {
	ID                uuid.UUID `json:"id"`
	CLeadID           uuid.UUID `json:"cLeadId"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
	Body              string    `json:"body"`
	MessageType       string    `json:"messageType"`
	Status            string    `json:"status"`
	ProviderMessageID *string   `json:"providerMessageId"`
	ErrorDetail       *string   `json:"errorDetail"`
}

func toMessageResponse(msg Message) MessageResponse {
	return MessageResponse{
		ID:                msg.ID,
		CLeadID:           msg.CLeadID,
		CreatedAt:         msg.CreatedAt,
		UpdatedAt:         msg.UpdatedAt,
		Body:              msg.Body,
		MessageType:       msg.MessageType,
		Status:            msg.Status,
		ProviderMessageID: msg.ProviderMessageID,
		ErrorDetail:       msg.ErrorDetail,
	}
}

// UpdateCLeadRequest is the PATCH body for a C-level lead.
type UpdateCLeadRequest struct {
	Status *string `json:"status,omitempty"`
	Memo   *string `json:"memo"`
}

// SendMessageRequest is the POST body for an outbound message.
type SendMessageRequest struct {
	Body string `json:"body" validate:"required,min=1"`
}

// Handler serves the C-level lead endpoints.
type Handler struct {
	repo   *Repository
	sender messaging.Sender
	bus    events.Bus
	val    *platformvalidator.Validator
	log    *logger.Logger
}

// NewHandler creates a C-level leads handler.
func NewHandler(repo *Repository, sender messaging.Sender, bus events.Bus, val *platformvalidator.Validator, log *logger.Logger) *Handler {
	return &Handler{repo: repo, sender: sender, bus: bus, val: val, log: log}
}

// List handles GET /api/c-leads.
func (h *Handler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(c, "pageSize", defaultPageSize)
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	leads, total, err := h.repo.List(c.Request.Context(), c.Query("search"), page, pageSize)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := make([]CLeadResponse, 0, len(leads))
	for _, lead := range leads {
		resp = append(resp, toCLeadResponse(lead))
	}
	httpkit.OK(c, gin.H{
		"cLeads":   resp,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// Get handles GET /api/c-leads/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	lead, err := h.repo.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toCLeadResponse(lead))
}

// Update handles PATCH /api/c-leads/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	var req UpdateCLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Status != nil && !IsKnownStatus(*req.Status) {
		httpkit.Error(c, http.StatusBadRequest, "unknown status", *req.Status)
		return
	}

	lead, err := h.repo.Update(c.Request.Context(), id, UpdateParams{
		Status:  req.Status,
		Memo:    req.Memo,
		MemoSet: req.Memo != nil,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toCLeadResponse(lead))
}

// ListMessages handles GET /api/c-leads/:id/messages.
func (h *Handler) ListMessages(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	messages, err := h.repo.ListMessages(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		resp = append(resp, toMessageResponse(msg))
	}
	httpkit.OK(c, gin.H{"messages": resp})
}

// SendMessage handles POST /api/c-leads/:id/messages. The attempt is recorded
// as PENDING before the provider call and settled to SENT or FAILED after, so
// every attempt leaves a row regardless of the provider outcome. A provider
// failure answers 500 carrying the FAILED row so the operator can see what
// was attempted.
func (h *Handler) SendMessage(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	lead, err := h.repo.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	msg, err := h.repo.CreateMessage(c.Request.Context(), id, req.Body, messaging.TypeFor(req.Body))
	if httpkit.HandleError(c, err) {
		return
	}

	dispatch, sendErr := h.sender.SendText(c.Request.Context(), lead.ParentPhone, req.Body)
	if sendErr != nil {
		msg, err = h.repo.MarkMessageFailed(c.Request.Context(), msg.ID, sendErr.Error())
	} else {
		msg, err = h.repo.MarkMessageSent(c.Request.Context(), msg.ID, dispatch.MessageID)
	}
	if httpkit.HandleError(c, err) {
		return
	}

	h.bus.Publish(c.Request.Context(), events.MessageDispatched{
		BaseEvent:   events.NewBaseEvent(),
		CLeadID:     id,
		MessageID:   msg.ID,
		MessageType: msg.MessageType,
		Success:     sendErr == nil,
	})

	if sendErr != nil {
		httpkit.Error(c, http.StatusInternalServerError, "Message dispatch failed", toMessageResponse(msg))
		return
	}
	c.JSON(http.StatusCreated, toMessageResponse(msg))
}

func pathUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid c-lead id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
