// Package repository provides data access for ordinary leads, their
// interactions, and their appointments.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"admissions_crm_backend/internal/leads/domain"
	"admissions_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadColumns = `
	id, created_at, updated_at, source, form_submission_id,
	parent_name, parent_phone, student_grade, desired_track, region,
	desired_timing, question_context, stage, is_high_interest, assignee,
	utm_source, utm_medium, utm_campaign, utm_term, utm_content, raw_payload`

// Repository provides data access for the leads bounded context.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns one page of leads, newest first, optionally filtered by a
// case-insensitive search over parent name and phone.
func (r *Repository) List(ctx context.Context, search string, page, pageSize int) ([]domain.Lead, int, error) {
	where := ""
	args := []interface{}{}
	if search != "" {
		where = "WHERE parent_name ILIKE $1 OR parent_phone ILIKE $1"
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads "+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("count leads failed: %v", err)).WithOp("leads.List")
	}

	offset := (page - 1) * pageSize
	query := fmt.Sprintf(
		"SELECT %s FROM leads %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		leadColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, pageSize, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("list leads query failed: %v", err)).WithOp("leads.List")
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, apperr.Internal(fmt.Sprintf("scan lead failed: %v", err)).WithOp("leads.List")
		}
		leads = append(leads, lead)
	}
	return leads, total, rows.Err()
}

// GetByID returns one lead.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+leadColumns+" FROM leads WHERE id = $1", id)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, apperr.NotFound("Lead not found")
	}
	if err != nil {
		return domain.Lead{}, apperr.Internal(fmt.Sprintf("get lead failed: %v", err)).WithOp("leads.GetByID")
	}
	return lead, nil
}

// UpdateParams carries the mutable human-edited lead fields. Nil Stage means
// unchanged; AssigneeSet distinguishes clearing the assignee from leaving it.
type UpdateParams struct {
	Stage       *string
	Assignee    *string
	AssigneeSet bool
}

// Update applies a partial update and returns the refreshed lead.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (domain.Lead, error) {
	query := `
		UPDATE leads SET
			stage = COALESCE($2, stage),
			assignee = CASE WHEN $3 THEN $4 ELSE assignee END,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + leadColumns

	row := r.pool.QueryRow(ctx, query, id, params.Stage, params.AssigneeSet, params.Assignee)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, apperr.NotFound("Lead not found")
	}
	if err != nil {
		return domain.Lead{}, apperr.Internal(fmt.Sprintf("update lead failed: %v", err)).WithOp("leads.Update")
	}
	return lead, nil
}

// ListInteractions returns a lead's interaction log, newest first.
func (r *Repository) ListInteractions(ctx context.Context, leadID uuid.UUID) ([]domain.Interaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, created_at, type, content, created_by
		FROM interactions
		WHERE lead_id = $1
		ORDER BY created_at DESC
	`, leadID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list interactions failed: %v", err)).WithOp("leads.ListInteractions")
	}
	defer rows.Close()

	var interactions []domain.Interaction
	for rows.Next() {
		var in domain.Interaction
		if err := rows.Scan(&in.ID, &in.LeadID, &in.CreatedAt, &in.Type, &in.Content, &in.CreatedBy); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan interaction failed: %v", err)).WithOp("leads.ListInteractions")
		}
		interactions = append(interactions, in)
	}
	return interactions, rows.Err()
}

// CreateInteraction appends an interaction to a lead.
func (r *Repository) CreateInteraction(ctx context.Context, leadID uuid.UUID, interactionType, content string, createdBy *string) (domain.Interaction, error) {
	var in domain.Interaction
	err := r.pool.QueryRow(ctx, `
		INSERT INTO interactions (lead_id, type, content, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, lead_id, created_at, type, content, created_by
	`, leadID, interactionType, content, createdBy).Scan(
		&in.ID, &in.LeadID, &in.CreatedAt, &in.Type, &in.Content, &in.CreatedBy,
	)
	if err != nil {
		return domain.Interaction{}, apperr.Internal(fmt.Sprintf("create interaction failed: %v", err)).WithOp("leads.CreateInteraction")
	}
	return in, nil
}

// ListAppointments returns a lead's appointments, soonest first.
func (r *Repository) ListAppointments(ctx context.Context, leadID uuid.UUID) ([]domain.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, created_at, scheduled_at, status, memo
		FROM appointments
		WHERE lead_id = $1
		ORDER BY scheduled_at ASC
	`, leadID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list appointments failed: %v", err)).WithOp("leads.ListAppointments")
	}
	defer rows.Close()

	var appointments []domain.Appointment
	for rows.Next() {
		var a domain.Appointment
		if err := rows.Scan(&a.ID, &a.LeadID, &a.CreatedAt, &a.ScheduledAt, &a.Status, &a.Memo); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan appointment failed: %v", err)).WithOp("leads.ListAppointments")
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

// CreateAppointment books a consultation for a lead.
func (r *Repository) CreateAppointment(ctx context.Context, leadID uuid.UUID, scheduledAt time.Time, memo *string) (domain.Appointment, error) {
	var a domain.Appointment
	err := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (lead_id, scheduled_at, status, memo)
		VALUES ($1, $2, $3, $4)
		RETURNING id, lead_id, created_at, scheduled_at, status, memo
	`, leadID, scheduledAt, domain.AppointmentBooked, memo).Scan(
		&a.ID, &a.LeadID, &a.CreatedAt, &a.ScheduledAt, &a.Status, &a.Memo,
	)
	if err != nil {
		return domain.Appointment{}, apperr.Internal(fmt.Sprintf("create appointment failed: %v", err)).WithOp("leads.CreateAppointment")
	}
	return a, nil
}

// ListAssignees returns the distinct non-null assignees across all leads.
func (r *Repository) ListAssignees(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT assignee FROM leads
		WHERE assignee IS NOT NULL
		ORDER BY assignee
	`)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list assignees failed: %v", err)).WithOp("leads.ListAssignees")
	}
	defer rows.Close()

	var assignees []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan assignee failed: %v", err)).WithOp("leads.ListAssignees")
		}
		assignees = append(assignees, a)
	}
	return assignees, rows.Err()
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var lead domain.Lead
	err := row.Scan(
		&lead.ID, &lead.CreatedAt, &lead.UpdatedAt, &lead.Source, &lead.FormSubmissionID,
		&lead.ParentName, &lead.ParentPhone, &lead.StudentGrade, &lead.DesiredTrack, &lead.Region,
		&lead.DesiredTiming, &lead.QuestionContext, &lead.Stage, &lead.IsHighInterest, &lead.Assignee,
		&lead.UTMSource, &lead.UTMMedium, &lead.UTMCampaign, &lead.UTMTerm, &lead.UTMContent, &lead.RawPayload,
	)
	return lead, err
}
