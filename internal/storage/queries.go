package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the subset of pgx operations the query layer needs. Both
// *pgxpool.Pool and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Querier is the interface implemented by Queries. Handlers and services
// depend on this so tests can substitute a mock.
type Querier interface {
	ClaimEmailEvent(ctx context.Context, arg ClaimEmailEventParams) (EmailEvent, error)
	CreateEmailEvent(ctx context.Context, arg CreateEmailEventParams) (EmailEvent, error)
	MarkEmailEventFailed(ctx context.Context, arg MarkEmailEventFailedParams) error
	GetEmailEventStats(ctx context.Context, filter EmailEventStatsFilter) ([]EmailEventStatusCount, error)
	UpsertEmailTemplate(ctx context.Context, arg UpsertEmailTemplateParams) (UpsertEmailTemplateRow, error)
	GetEmailTemplate(ctx context.Context, appID, name string) (EmailTemplate, error)
	ListEmailTemplates(ctx context.Context, appID string) ([]EmailTemplate, error)
}

// Queries executes hand-written SQL against a DBTX.
type Queries struct {
	db DBTX
}

// New creates a Queries instance bound to the given connection or pool.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const emailEventColumns = `id, app_id, event_type, recipient_email, dedup_key,
clerk_user_id, clerk_org_id, status, error_message, metadata, created_at`

const claimEmailEvent = `
INSERT INTO email_events (
    app_id, event_type, recipient_email, dedup_key,
    clerk_user_id, clerk_org_id, status, metadata
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (dedup_key) WHERE dedup_key IS NOT NULL DO NOTHING
RETURNING ` + emailEventColumns

// ClaimEmailEventParams carries the row inserted by a dedup claim.
type ClaimEmailEventParams struct {
	AppID          string
	EventType      string
	RecipientEmail string
	DedupKey       pgtype.Text
	ClerkUserID    pgtype.Text
	ClerkOrgID     pgtype.Text
	Status         EmailEventStatus
	Metadata       []byte
}

// ClaimEmailEvent inserts an email event, claiming its dedup key atomically.
// If another row already holds the key, no row is inserted and pgx.ErrNoRows
// is returned. This is the single serialization point for concurrent sends
// racing on the same key; there is deliberately no separate existence check.
func (q *Queries) ClaimEmailEvent(ctx context.Context, arg ClaimEmailEventParams) (EmailEvent, error) {
	row := q.db.QueryRow(ctx, claimEmailEvent,
		arg.AppID,
		arg.EventType,
		arg.RecipientEmail,
		arg.DedupKey,
		arg.ClerkUserID,
		arg.ClerkOrgID,
		arg.Status,
		arg.Metadata,
	)
	return scanEmailEvent(row)
}

const createEmailEvent = `
INSERT INTO email_events (
    app_id, event_type, recipient_email, dedup_key,
    clerk_user_id, clerk_org_id, status, metadata
) VALUES ($1, $2, $3, NULL, $4, $5, $6, $7)
RETURNING ` + emailEventColumns

// CreateEmailEventParams carries an unconditional (repeatable) event insert.
type CreateEmailEventParams struct {
	AppID          string
	EventType      string
	RecipientEmail string
	ClerkUserID    pgtype.Text
	ClerkOrgID     pgtype.Text
	Status         EmailEventStatus
	Metadata       []byte
}

// CreateEmailEvent inserts an email event with no dedup key. Used for
// repeatable event types, which are recorded for history but never blocked.
func (q *Queries) CreateEmailEvent(ctx context.Context, arg CreateEmailEventParams) (EmailEvent, error) {
	row := q.db.QueryRow(ctx, createEmailEvent,
		arg.AppID,
		arg.EventType,
		arg.RecipientEmail,
		arg.ClerkUserID,
		arg.ClerkOrgID,
		arg.Status,
		arg.Metadata,
	)
	return scanEmailEvent(row)
}

const markEmailEventFailed = `
UPDATE email_events
SET status = 'failed', error_message = $2
WHERE id = $1
`

// MarkEmailEventFailedParams identifies the event row to fail and the error to record.
type MarkEmailEventFailedParams struct {
	ID           uuid.UUID
	ErrorMessage string
}

// MarkEmailEventFailed flips an event's status to failed and stores the
// delivery error. Called when delivery fails after a successful claim.
func (q *Queries) MarkEmailEventFailed(ctx context.Context, arg MarkEmailEventFailedParams) error {
	_, err := q.db.Exec(ctx, markEmailEventFailed, arg.ID, arg.ErrorMessage)
	return err
}

// EmailEventStatsFilter selects which email events to aggregate. At least one
// field must be set; the HTTP layer enforces that before querying.
type EmailEventStatsFilter struct {
	AppID       string
	ClerkOrgID  string
	ClerkUserID string
	EventType   string
}

// EmailEventStatusCount is one row of the status group-by.
type EmailEventStatusCount struct {
	Status EmailEventStatus
	Count  int64
}

// GetEmailEventStats counts email events grouped by status, restricted by
// the non-empty filter fields.
func (q *Queries) GetEmailEventStats(ctx context.Context, filter EmailEventStatsFilter) ([]EmailEventStatusCount, error) {
	var conds []string
	var args []any

	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("app_id", filter.AppID)
	add("clerk_org_id", filter.ClerkOrgID)
	add("clerk_user_id", filter.ClerkUserID)
	add("event_type", filter.EventType)

	if len(conds) == 0 {
		return nil, fmt.Errorf("stats query requires at least one filter")
	}

	query := "SELECT status, count(*) FROM email_events WHERE " +
		strings.Join(conds, " AND ") + " GROUP BY status"

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []EmailEventStatusCount
	for rows.Next() {
		var c EmailEventStatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

const upsertEmailTemplate = `
INSERT INTO email_templates (
    app_id, name, subject, html_body, text_body, from_address, message_stream
) VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (app_id, name) DO UPDATE SET
    subject = EXCLUDED.subject,
    html_body = EXCLUDED.html_body,
    text_body = EXCLUDED.text_body,
    from_address = EXCLUDED.from_address,
    message_stream = EXCLUDED.message_stream,
    updated_at = now()
RETURNING id, app_id, name, subject, html_body, text_body, from_address,
    message_stream, created_at, updated_at, (xmax = 0) AS inserted
`

// UpsertEmailTemplateParams carries a template deploy.
type UpsertEmailTemplateParams struct {
	AppID         string
	Name          string
	Subject       string
	HtmlBody      string
	TextBody      string
	FromAddress   pgtype.Text
	MessageStream pgtype.Text
}

// UpsertEmailTemplateRow is the upsert result; Inserted reports whether the
// row was created rather than updated.
type UpsertEmailTemplateRow struct {
	EmailTemplate
	Inserted bool
}

// UpsertEmailTemplate creates or overwrites a template identified by
// (app_id, name) in a single statement. Concurrent identical deploys both
// succeed; the conflict path takes the update branch instead of erroring.
func (q *Queries) UpsertEmailTemplate(ctx context.Context, arg UpsertEmailTemplateParams) (UpsertEmailTemplateRow, error) {
	row := q.db.QueryRow(ctx, upsertEmailTemplate,
		arg.AppID,
		arg.Name,
		arg.Subject,
		arg.HtmlBody,
		arg.TextBody,
		arg.FromAddress,
		arg.MessageStream,
	)
	var t UpsertEmailTemplateRow
	err := row.Scan(
		&t.ID,
		&t.AppID,
		&t.Name,
		&t.Subject,
		&t.HtmlBody,
		&t.TextBody,
		&t.FromAddress,
		&t.MessageStream,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.Inserted,
	)
	return t, err
}

const getEmailTemplate = `
SELECT id, app_id, name, subject, html_body, text_body, from_address,
    message_stream, created_at, updated_at
FROM email_templates
WHERE app_id = $1 AND name = $2
`

// GetEmailTemplate fetches the persisted template for (appID, name).
// Returns pgx.ErrNoRows when no override is deployed.
func (q *Queries) GetEmailTemplate(ctx context.Context, appID, name string) (EmailTemplate, error) {
	row := q.db.QueryRow(ctx, getEmailTemplate, appID, name)
	return scanEmailTemplate(row)
}

const listEmailTemplates = `
SELECT id, app_id, name, subject, html_body, text_body, from_address,
    message_stream, created_at, updated_at
FROM email_templates
WHERE app_id = $1
ORDER BY name
`

// ListEmailTemplates returns all deployed templates for an app.
func (q *Queries) ListEmailTemplates(ctx context.Context, appID string) ([]EmailTemplate, error) {
	rows, err := q.db.Query(ctx, listEmailTemplates, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []EmailTemplate
	for rows.Next() {
		t, err := scanEmailTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func scanEmailEvent(row pgx.Row) (EmailEvent, error) {
	var e EmailEvent
	err := row.Scan(
		&e.ID,
		&e.AppID,
		&e.EventType,
		&e.RecipientEmail,
		&e.DedupKey,
		&e.ClerkUserID,
		&e.ClerkOrgID,
		&e.Status,
		&e.ErrorMessage,
		&e.Metadata,
		&e.CreatedAt,
	)
	return e, err
}

func scanEmailTemplate(row pgx.Row) (EmailTemplate, error) {
	var t EmailTemplate
	err := row.Scan(
		&t.ID,
		&t.AppID,
		&t.Name,
		&t.Subject,
		&t.HtmlBody,
		&t.TextBody,
		&t.FromAddress,
		&t.MessageStream,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}
