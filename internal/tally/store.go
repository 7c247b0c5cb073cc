package tally

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrDuplicateSubmission is returned by LeadStore.UpsertLeadIgnoringDuplicate
// when the unique constraint on the submission id rejected the insert. The
// reconciler treats it as success (at-least-once webhook delivery), so stores
// must keep it distinguishable from every other failure.
var ErrDuplicateSubmission = errors.New("duplicate form submission")

// Submission carries the extracted, normalized values of one webhook
// delivery. Optional fields are nil when the form supplied no value; the
// reconciler never overwrites existing data with nil.
type Submission struct {
	SubmissionID    string
	ParentName      string
	ParentPhone     string // canonical dashed format
	StudentGrade    *string
	DesiredTrack    *string
	DesiredTiming   *string // ordinary leads only
	Region          *string
	QuestionContext *string
	UTM             map[string]*string
	RawPayload      []byte // original body, stored verbatim for audit
}

// ExistingLead is the minimal projection of a prior lead used by the
// returning-contact branch.
type ExistingLead struct {
	ID         uuid.UUID
	ParentName string
}

// LeadStore abstracts the persistence every webhook variant needs. The leads
// and cleads repositories each provide an implementation over their own table.
type LeadStore interface {
	// UpsertLeadIgnoringDuplicate inserts a new lead. When a row with the
	// same form_submission_id already exists the insert is skipped at the
	// database layer and ErrDuplicateSubmission is returned. Uniqueness is
	// enforced by the store's constraint, never by a check-then-insert.
	UpsertLeadIgnoringDuplicate(ctx context.Context, sub Submission) (uuid.UUID, error)
}

// ReturningLeadStore extends LeadStore with the operations of the
// returning-contact branch. Only the ordinary lead flow uses it; the C-level
// flow always upserts.
type ReturningLeadStore interface {
	LeadStore

	// FindMostRecentLeadByPhone returns the newest lead with the given
	// canonical phone, or nil when none exists. The lookup spans all time
	// and all forms: every submission from one phone is one contact thread.
	FindMostRecentLeadByPhone(ctx context.Context, phone string) (*ExistingLead, error)

	// UpdateLeadFromSubmission resets the lead's workflow stage to its
	// initial state and refreshes the optional attributes the submission
	// supplied. Nil fields leave existing data untouched.
	UpdateLeadFromSubmission(ctx context.Context, id uuid.UUID, sub Submission) error

	// InsertInteraction appends an interaction log entry to the lead.
	InsertInteraction(ctx context.Context, leadID uuid.UUID, interactionType, content string) error
}
