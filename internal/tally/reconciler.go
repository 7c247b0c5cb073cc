package tally

import (
	"context"
	"errors"
	"fmt"

	"admissions_crm_backend/internal/events"
	"admissions_crm_backend/platform/apperr"
	"admissions_crm_backend/platform/logger"
	"admissions_crm_backend/platform/phone"

	"github.com/google/uuid"
)

const (
	// interactionTypeMemo tags the synthesized log entry appended when a
	// returning contact re-submits the form.
	interactionTypeMemo = "MEMO"

	// placeholderNone fills interaction summary lines for absent fields.
	placeholderNone = "(없음)"
)

// Variant describes one webhook flavor. The ordinary and C-level endpoints
// run the same algorithm with different stores, field sets, and — the one
// behavioral difference — whether the returning-contact branch exists.
type Variant struct {
	Name string
	// Resolver maps form fields to canonical columns for this form.
	Resolver *FieldResolver
	// UTMParams lists the attribution parameters this variant records.
	UTMParams []string
	// CollectsTiming is set for the ordinary form, which asks for a
	// preferred consultation time slot.
	CollectsTiming bool
	// HasReturningBranch enables the phone-based returning-contact path.
	// The C-level flow intentionally skips it and always upserts.
	HasReturningBranch bool
	// EventVariant tags domain events published by this variant.
	EventVariant string
}

// Result is the outcome of a successful reconciliation.
type Result struct {
	LeadID      *uuid.UUID
	IsReturning bool
	Duplicate   bool
}

// Reconciler runs the webhook write path: extract fields, decide returning
// vs. new contact, and persist through the variant's store.
type Reconciler struct {
	variant   Variant
	store     LeadStore
	returning ReturningLeadStore // nil when the variant has no returning branch
	bus       events.Bus
	log       *logger.Logger
}

// NewReconciler creates a reconciler for a variant without the
// returning-contact branch.
func NewReconciler(variant Variant, store LeadStore, bus events.Bus, log *logger.Logger) *Reconciler {
	return &Reconciler{variant: variant, store: store, bus: bus, log: log}
}

// NewReturningReconciler creates a reconciler whose variant matches repeat
// contacts by phone before inserting.
func NewReturningReconciler(variant Variant, store ReturningLeadStore, bus events.Bus, log *logger.Logger) *Reconciler {
	return &Reconciler{variant: variant, store: store, returning: store, bus: bus, log: log}
}

// Process reconciles one validated payload. rawBody is the undecoded request
// body, stored verbatim on new leads for audit. Returns typed apperr errors
// for the HTTP layer to map.
func (r *Reconciler) Process(ctx context.Context, payload *WebhookPayload, rawBody []byte) (Result, error) {
	fields := payload.Data.Fields

	parentName, nameOK := r.variant.Resolver.Resolve(fields, ColumnParentName)
	parentPhone, phoneOK := r.variant.Resolver.Resolve(fields, ColumnParentPhone)
	if !nameOK || !phoneOK {
		return Result{}, apperr.BadRequest("Missing required fields: parent_name, parent_phone")
	}

	sub := Submission{
		SubmissionID:    payload.Data.SubmissionID,
		ParentName:      parentName,
		ParentPhone:     phone.NormalizeDashed(parentPhone),
		StudentGrade:    r.optional(fields, ColumnStudentGrade),
		DesiredTrack:    r.optional(fields, ColumnDesiredTrack),
		Region:          r.optional(fields, ColumnRegion),
		QuestionContext: r.optional(fields, ColumnQuestionContext),
		UTM:             ExtractUTM(fields, r.variant.UTMParams),
		RawPayload:      rawBody,
	}
	if r.variant.CollectsTiming {
		sub.DesiredTiming = r.optional(fields, ColumnDesiredTiming)
	}

	if r.variant.HasReturningBranch && r.returning != nil {
		existing, err := r.returning.FindMostRecentLeadByPhone(ctx, sub.ParentPhone)
		if err != nil {
			return Result{}, apperr.Wrap(apperr.KindInternal, "Database error", err).WithDetails(err.Error())
		}
		if existing != nil {
			return r.updateReturningContact(ctx, existing, sub)
		}
	}

	return r.insertNewLead(ctx, sub)
}

// updateReturningContact handles a submission whose phone matches an existing
// lead: reset the stage, refresh attributes, and log the new inquiry as a
// MEMO interaction. Neither write is fatal to the request; failures are
// logged and the delivery is still acknowledged so the sender does not
// redeliver a submission that was already matched.
func (r *Reconciler) updateReturningContact(ctx context.Context, existing *ExistingLead, sub Submission) (Result, error) {
	if err := r.returning.UpdateLeadFromSubmission(ctx, existing.ID, sub); err != nil {
		r.log.DatabaseError("update returning lead", err)
	}

	if err := r.returning.InsertInteraction(ctx, existing.ID, interactionTypeMemo, returningContactMemo(sub)); err != nil {
		r.log.DatabaseError("insert returning-contact interaction", err)
	}

	r.bus.Publish(ctx, events.ReturningContactUpdated{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       existing.ID,
		ParentPhone:  sub.ParentPhone,
		SubmissionID: sub.SubmissionID,
	})

	id := existing.ID
	return Result{LeadID: &id, IsReturning: true}, nil
}

// insertNewLead persists a first-time contact. The store's unique constraint
// on the submission id absorbs duplicate webhook deliveries: the losing
// insert reports ErrDuplicateSubmission, which is success to the caller.
func (r *Reconciler) insertNewLead(ctx context.Context, sub Submission) (Result, error) {
	id, err := r.store.UpsertLeadIgnoringDuplicate(ctx, sub)
	if err != nil {
		if errors.Is(err, ErrDuplicateSubmission) {
			r.log.WebhookEvent(r.variant.Name, sub.SubmissionID, "duplicate_ignored")
			return Result{Duplicate: true}, nil
		}
		return Result{}, apperr.Wrap(apperr.KindInternal, "Database error", err).WithDetails(err.Error())
	}

	r.bus.Publish(ctx, events.LeadCaptured{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       id,
		Variant:      r.variant.EventVariant,
		ParentPhone:  sub.ParentPhone,
		SubmissionID: sub.SubmissionID,
	})

	return Result{LeadID: &id}, nil
}

func (r *Reconciler) optional(fields []Field, column string) *string {
	if value, ok := r.variant.Resolver.Resolve(fields, column); ok {
		return &value
	}
	return nil
}

// returningContactMemo synthesizes the multi-line summary stored as the MEMO
// interaction content for a repeat inquiry.
func returningContactMemo(sub Submission) string {
	return fmt.Sprintf("[재문의]\n문의 내용: %s\n학년: %s\n희망계열: %s\n상담희망시간: %s",
		orPlaceholder(sub.QuestionContext),
		orPlaceholder(sub.StudentGrade),
		orPlaceholder(sub.DesiredTrack),
		orPlaceholder(sub.DesiredTiming),
	)
}

func orPlaceholder(v *string) string {
	if v == nil || *v == "" {
		return placeholderNone
	}
	return *v
}
