// Package transport defines the wire-level request and response shapes for
// the leads module.
package transport

import (
	"encoding/json"
	"time"

	"admissions_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// LeadResponse is the JSON projection of a lead.
type LeadResponse struct {
	ID               uuid.UUID       `json:"id"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	Source           string          `json:"source"`
	FormSubmissionID *string         `json:"formSubmissionId"`
	ParentName       string          `json:"parentName"`
	ParentPhone      string          `json:"parentPhone"`
	StudentGrade     *string         `json:"studentGrade"`
	DesiredTrack     *string         `json:"desiredTrack"`
	Region           *string         `json:"region"`
	DesiredTiming    *string         `json:"desiredTiming"`
	QuestionContext  *string         `json:"questionContext"`
	Stage            string          `json:"stage"`
	IsHighInterest   bool            `json:"isHighInterest"`
	Assignee         *string         `json:"assignee"`
	UTMSource        *string         `json:"utmSource"`
	UTMMedium        *string         `json:"utmMedium"`
	UTMCampaign      *string         `json:"utmCampaign"`
	UTMTerm          *string         `json:"utmTerm"`
	UTMContent       *string         `json:"utmContent"`
	RawPayload       json.RawMessage `json:"rawPayload,omitempty"`
}

// ToLeadResponse converts a domain lead to its wire shape.
func ToLeadResponse(lead domain.Lead) LeadResponse {
	return LeadResponse{
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
		DesiredTiming:    lead.DesiredTiming,
		QuestionContext:  lead.QuestionContext,
		Stage:            lead.Stage,
		IsHighInterest:   lead.IsHighInterest,
		Assignee:         lead.Assignee,
		UTMSource:        lead.UTMSource,
		UTMMedium:        lead.UTMMedium,
		UTMCampaign:      lead.UTMCampaign,
		UTMTerm:          lead.UTMTerm,
		UTMContent:       lead.UTMContent,
		RawPayload:       json.RawMessage(lead.RawPayload),
	}
}

// LeadListResponse is the paginated list shape.
type LeadListResponse struct {
	Leads    []LeadResponse `json:"leads"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

// UpdateLeadRequest is the PATCH body for a lead. Assignee distinguishes
// "not sent" from an explicit null that clears the field.
type UpdateLeadRequest struct {
	Stage    *string        `json:"stage,omitempty"`
	Assignee OptionalString `json:"assignee,omitzero"`
}

// CreateInteractionRequest is the POST body for an interaction.
type CreateInteractionRequest struct {
	Type    string `json:"type" validate:"required"`
	Content string `json:"content" validate:"required,min=1"`
}

// InteractionResponse is the JSON projection of an interaction.
type InteractionResponse struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"leadId"`
	CreatedAt time.Time `json:"createdAt"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	CreatedBy *string   `json:"createdBy"`
}

// ToInteractionResponse converts a domain interaction to its wire shape.
func ToInteractionResponse(in domain.Interaction) InteractionResponse {
	return InteractionResponse{
		ID:        in.ID,
		LeadID:    in.LeadID,
		CreatedAt: in.CreatedAt,
		Type:      in.Type,
		Content:   in.Content,
		CreatedBy: in.CreatedBy,
	}
}

// CreateAppointmentRequest is the POST body for an appointment.
type CreateAppointmentRequest struct {
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Memo        *string   `json:"memo,omitempty"`
}

// AppointmentResponse is the JSON projection of an appointment.
type AppointmentResponse struct {
	ID          uuid.UUID `json:"id"`
	LeadID      uuid.UUID `json:"leadId"`
	CreatedAt   time.Time `json:"createdAt"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Status      string    `json:"status"`
	Memo        *string   `json:"memo"`
}

// ToAppointmentResponse converts a domain appointment to its wire shape.
func ToAppointmentResponse(a domain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		LeadID:      a.LeadID,
		CreatedAt:   a.CreatedAt,
		ScheduledAt: a.ScheduledAt,
		Status:      a.Status,
		Memo:        a.Memo,
	}
}
