package repository

import (
	"context"
	"errors"

	"admissions_crm_backend/internal/leads/domain"
	"admissions_crm_backend/internal/tally"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FindMostRecentLeadByPhone returns the newest lead sharing the canonical
// phone, regardless of which form produced it.
func (r *Repository) FindMostRecentLeadByPhone(ctx context.Context, phone string) (*tally.ExistingLead, error) {
	var existing tally.ExistingLead
	err := r.pool.QueryRow(ctx, `
		SELECT id, parent_name FROM leads
		WHERE parent_phone = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, phone).Scan(&existing.ID, &existing.ParentName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// UpdateLeadFromSubmission resets a returning contact to the start of the
// pipeline and refreshes only the attributes the new submission supplied.
func (r *Repository) UpdateLeadFromSubmission(ctx context.Context, id uuid.UUID, sub tally.Submission) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE leads SET
			stage = $2,
			parent_name = $3,
			student_grade = COALESCE($4, student_grade),
			desired_track = COALESCE($5, desired_track),
			region = COALESCE($6, region),
			desired_timing = COALESCE($7, desired_timing),
			question_context = COALESCE($8, question_context),
			updated_at = now()
		WHERE id = $1
	`, id, domain.StageNew, sub.ParentName,
		sub.StudentGrade, sub.DesiredTrack, sub.Region, sub.DesiredTiming, sub.QuestionContext)
	return err
}

// InsertInteraction appends a system-generated interaction to a lead.
func (r *Repository) InsertInteraction(ctx context.Context, leadID uuid.UUID, interactionType, content string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO interactions (lead_id, type, content)
		VALUES ($1, $2, $3)
	`, leadID, interactionType, content)
	return err
}

// UpsertLeadIgnoringDuplicate inserts a lead from a webhook submission. The
// unique index on form_submission_id absorbs redeliveries; when the insert is
// skipped the method reports tally.ErrDuplicateSubmission.
func (r *Repository) UpsertLeadIgnoringDuplicate(ctx context.Context, sub tally.Submission) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			source, form_submission_id, parent_name, parent_phone,
			student_grade, desired_track, region, desired_timing, question_context,
			stage, utm_source, utm_medium, utm_campaign, utm_term, utm_content,
			raw_payload
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (form_submission_id) DO NOTHING
		RETURNING id
	`, "tally", sub.SubmissionID, sub.ParentName, sub.ParentPhone,
		sub.StudentGrade, sub.DesiredTrack, sub.Region, sub.DesiredTiming, sub.QuestionContext,
		domain.StageNew,
		sub.UTM["utm_source"], sub.UTM["utm_medium"], sub.UTM["utm_campaign"],
		sub.UTM["utm_term"], sub.UTM["utm_content"],
		sub.RawPayload,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, tally.ErrDuplicateSubmission
	}
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Compile-time check that the repository satisfies the webhook store contract.
var _ tally.ReturningLeadStore = (*Repository)(nil)
