// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"admissions_crm_backend/platform/events"
	"admissions_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCaptured is published when a webhook submission creates a new lead row,
// in either the ordinary or the C-level table.
type LeadCaptured struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	Variant      string    `json:"variant"` // "lead" or "c_lead"
	ParentPhone  string    `json:"parentPhone"`
	SubmissionID string    `json:"submissionId"`
}

func (e LeadCaptured) EventName() string { return "leads.captured" }

// ReturningContactUpdated is published when a webhook submission matched an
// existing lead by phone and the lead was reset to the NEW stage.
type ReturningContactUpdated struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	ParentPhone  string    `json:"parentPhone"`
	SubmissionID string    `json:"submissionId"`
}

func (e ReturningContactUpdated) EventName() string { return "leads.returning_contact" }

// MessageDispatched is published after an outbound SMS/LMS attempt.
type MessageDispatched struct {
	BaseEvent
	CLeadID     uuid.UUID `json:"cLeadId"`
	MessageID   uuid.UUID `json:"messageId"`
	MessageType string    `json:"messageType"`
	Success     bool      `json:"success"`
}

func (e MessageDispatched) EventName() string { return "cleads.message_dispatched" }
