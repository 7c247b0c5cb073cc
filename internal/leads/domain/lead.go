// Package domain provides core business types for the leads bounded context.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workflow stages for ordinary leads, in pipeline order.
const (
	StageNew       = "NEW"
	StageContacted = "CONTACTED"
	StageBooked    = "BOOKED"
	StageConsulted = "CONSULTED"
	StagePaid      = "PAID"
	StageLost      = "LOST"
)

var knownStages = map[string]struct{}{
	StageNew:       {},
	StageContacted: {},
	StageBooked:    {},
	StageConsulted: {},
	StagePaid:      {},
	StageLost:      {},
}

// IsKnownStage reports whether the stage belongs to the workflow vocabulary.
func IsKnownStage(stage string) bool {
	_, ok := knownStages[stage]
	return ok
}

// Interaction types. MEMO entries are also synthesized by the webhook
// reconciler for returning contacts.
const (
	InteractionCall    = "CALL"
	InteractionKakao   = "KAKAO"
	InteractionSMS     = "SMS"
	InteractionMeeting = "MEETING"
	InteractionMemo    = "MEMO"
)

var knownInteractionTypes = map[string]struct{}{
	InteractionCall:    {},
	InteractionKakao:   {},
	InteractionSMS:     {},
	InteractionMeeting: {},
	InteractionMemo:    {},
}

// IsKnownInteractionType reports whether the type is part of the vocabulary.
func IsKnownInteractionType(interactionType string) bool {
	_, ok := knownInteractionTypes[interactionType]
	return ok
}

// Appointment statuses.
const (
	AppointmentBooked    = "BOOKED"
	AppointmentDone      = "DONE"
	AppointmentCancelled = "CANCELLED"
)

var knownAppointmentStatuses = map[string]struct{}{
	AppointmentBooked:    {},
	AppointmentDone:      {},
	AppointmentCancelled: {},
}

// IsKnownAppointmentStatus reports whether the status is part of the vocabulary.
func IsKnownAppointmentStatus(status string) bool {
	_, ok := knownAppointmentStatuses[status]
	return ok
}

// Lead is a prospective customer captured from a form submission. A lead row
// is never deleted by the webhook flow; reconciliation only inserts or
// updates.
type Lead struct {
	ID               uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Source           string
	FormSubmissionID *string
	ParentName       string
	ParentPhone      string
	StudentGrade     *string
	DesiredTrack     *string
	Region           *string
	DesiredTiming    *string
	QuestionContext  *string
	Stage            string
	IsHighInterest   bool
	Assignee         *string
	UTMSource        *string
	UTMMedium        *string
	UTMCampaign      *string
	UTMTerm          *string
	UTMContent       *string
	RawPayload       []byte
}

// Interaction is an append-only log entry attached to a lead.
type Interaction struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	CreatedAt time.Time
	Type      string
	Content   string
	CreatedBy *string
}

// Appointment is a scheduled consultation for a lead.
type Appointment struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	CreatedAt   time.Time
	ScheduledAt time.Time
	Status      string
	Memo        *string
}
