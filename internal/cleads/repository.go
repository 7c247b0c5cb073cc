package cleads

import (
	"context"
	"errors"
	"fmt"

	"admissions_crm_backend/internal/tally"
	"admissions_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const cleadColumns = `
	id, created_at, updated_at, source, form_submission_id,
	parent_name, parent_phone, student_grade, desired_track, region,
	question_context, status, memo, utm_source, utm_medium, utm_campaign,
	raw_payload`

// Repository provides data access for C-level leads and their messages.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a C-level leads repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns one page of C-level leads, newest first, optionally filtered
// by a case-insensitive search over name and phone.
func (r *Repository) List(ctx context.Context, search string, page, pageSize int) ([]CLead, int, error) {
	where := ""
	args := []interface{}{}
	if search != "" {
		where = "WHERE parent_name ILIKE $1 OR parent_phone ILIKE $1"
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM c_leads "+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("count c-leads failed: %v", err)).WithOp("cleads.List")
	}

	query := fmt.Sprintf(
		"SELECT %s FROM c_leads %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		cleadColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("list c-leads query failed: %v", err)).WithOp("cleads.List")
	}
	defer rows.Close()

	var leads []CLead
	for rows.Next() {
		lead, err := scanCLead(rows)
		if err != nil {
			return nil, 0, apperr.Internal(fmt.Sprintf("scan c-lead failed: %v", err)).WithOp("cleads.List")
		}
		leads = append(leads, lead)
	}
	return leads, total, rows.Err()
}

// GetByID returns one C-level lead.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (CLead, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+cleadColumns+" FROM c_leads WHERE id = $1", id)
	lead, err := scanCLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return CLead{}, apperr.NotFound("C-level lead not found")
	}
	if err != nil {
		return CLead{}, apperr.Internal(fmt.Sprintf("get c-lead failed: %v", err)).WithOp("cleads.GetByID")
	}
	return lead, nil
}

// UpdateParams carries the operator-editable C-level lead fields.
type UpdateParams struct {
	Status  *string
	Memo    *string
	MemoSet bool
}

// Update applies a partial update and returns the refreshed lead.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (CLead, error) {
	query := `
		UPDATE c_leads SET
			status = COALESCE($2, status),
			memo = CASE WHEN $3 THEN $4 ELSE memo END,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + cleadColumns

	row := r.pool.QueryRow(ctx, query, id, params.Status, params.MemoSet, params.Memo)
	lead, err := scanCLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return CLead{}, apperr.NotFound("C-level lead not found")
	}
	if err != nil {
		return CLead{}, apperr.Internal(fmt.Sprintf("update c-lead failed: %v", err)).WithOp("cleads.Update")
	}
	return lead, nil
}

// UpsertLeadIgnoringDuplicate inserts a C-level lead from a webhook
// submission. Redeliveries are absorbed by the unique index on
// form_submission_id and reported as tally.ErrDuplicateSubmission.
func (r *Repository) UpsertLeadIgnoringDuplicate(ctx context.Context, sub tally.Submission) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO c_leads (
			source, form_submission_id, parent_name, parent_phone,
			student_grade, desired_track, region, question_context,
			status, utm_source, utm_medium, utm_campaign, raw_payload
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (form_submission_id) DO NOTHING
		RETURNING id
	`, "tally", sub.SubmissionID, sub.ParentName, sub.ParentPhone,
		sub.StudentGrade, sub.DesiredTrack, sub.Region, sub.QuestionContext,
		StatusActive,
		sub.UTM["utm_source"], sub.UTM["utm_medium"], sub.UTM["utm_campaign"],
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

// ListMessages returns a lead's outbound messages, newest first.
func (r *Repository) ListMessages(ctx context.Context, cleadID uuid.UUID) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, c_lead_id, created_at, updated_at, body, message_type, status,
		       provider_message_id, error_detail
		FROM c_lead_messages
		WHERE c_lead_id = $1
		ORDER BY created_at DESC
	`, cleadID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list messages failed: %v", err)).WithOp("cleads.ListMessages")
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan message failed: %v", err)).WithOp("cleads.ListMessages")
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// CreateMessage records an outbound message attempt in PENDING state before
// the provider call.
func (r *Repository) CreateMessage(ctx context.Context, cleadID uuid.UUID, body, messageType string) (Message, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO c_lead_messages (c_lead_id, body, message_type, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, c_lead_id, created_at, updated_at, body, message_type, status,
		          provider_message_id, error_detail
	`, cleadID, body, messageType, MessagePending)
	msg, err := scanMessage(row)
	if err != nil {
		return Message{}, apperr.Internal(fmt.Sprintf("create message failed: %v", err)).WithOp("cleads.CreateMessage")
	}
	return msg, nil
}

// MarkMessageSent settles a PENDING message as SENT.
func (r *Repository) MarkMessageSent(ctx context.Context, id uuid.UUID, providerMessageID string) (Message, error) {
	return r.settleMessage(ctx, id, MessageSent, &providerMessageID, nil)
}

// MarkMessageFailed settles a PENDING message as FAILED.
func (r *Repository) MarkMessageFailed(ctx context.Context, id uuid.UUID, errorDetail string) (Message, error) {
	return r.settleMessage(ctx, id, MessageFailed, nil, &errorDetail)
}

func (r *Repository) settleMessage(ctx context.Context, id uuid.UUID, status string, providerMessageID, errorDetail *string) (Message, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE c_lead_messages SET
			status = $2,
			provider_message_id = $3,
			error_detail = $4,
			updated_at = now()
		WHERE id = $1
		RETURNING id, c_lead_id, created_at, updated_at, body, message_type, status,
		          provider_message_id, error_detail
	`, id, status, providerMessageID, errorDetail)
	msg, err := scanMessage(row)
	if err != nil {
		return Message{}, apperr.Internal(fmt.Sprintf("settle message failed: %v", err)).WithOp("cleads.settleMessage")
	}
	return msg, nil
}

func scanCLead(row pgx.Row) (CLead, error) {
	var lead CLead
	err := row.Scan(
		&lead.ID, &lead.CreatedAt, &lead.UpdatedAt, &lead.Source, &lead.FormSubmissionID,
		&lead.ParentName, &lead.ParentPhone, &lead.StudentGrade, &lead.DesiredTrack, &lead.Region,
		&lead.QuestionContext, &lead.Status, &lead.Memo, &lead.UTMSource, &lead.UTMMedium, &lead.UTMCampaign,
		&lead.RawPayload,
	)
	return lead, err
}

func scanMessage(row pgx.Row) (Message, error) {
	var msg Message
	err := row.Scan(
		&msg.ID, &msg.CLeadID, &msg.CreatedAt, &msg.UpdatedAt, &msg.Body, &msg.MessageType, &msg.Status,
		&msg.ProviderMessageID, &msg.ErrorDetail,
	)
	return msg, err
}

// Compile-time check that the repository satisfies the webhook store contract.
var _ tally.LeadStore = (*Repository)(nil)
