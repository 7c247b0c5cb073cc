// Package cleads provides the C-level lead bounded context: executive-track
// contacts captured by their own Tally form and reachable by outbound text
// message.
package cleads

import (
	"time"

	"github.com/google/uuid"
)

// C-level lead statuses. The webhook always inserts ACTIVE; operators park
// contacts as INACTIVE instead of deleting them.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// IsKnownStatus reports whether the status belongs to the vocabulary.
func IsKnownStatus(status string) bool {
	return status == StatusActive || status == StatusInactive
}

// Outbound message lifecycle. A row is written as PENDING before the provider
// call and settled to SENT or FAILED afterwards, so a crash mid-send leaves an
// auditable trace.
const (
	MessagePending = "PENDING"
	MessageSent    = "SENT"
	MessageFailed  = "FAILED"
)

// CLead is an executive-track contact.
type CLead struct {
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
	QuestionContext  *string
	Status           string
	Memo             *string
	UTMSource        *string
	UTMMedium        *string
	UTMCampaign      *string
	RawPayload       []byte
}

// Message is one outbound SMS/LMS attempt for a C-level lead.
type Message struct {
	ID                uuid.UUID
	CLeadID           uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Body              string
	MessageType       string
	Status            string
	ProviderMessageID *string
	ErrorDetail       *string
}
