package storage

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// EmailEventStatus is the delivery status of a persisted email event.
type EmailEventStatus string

const (
	EmailEventStatusSent   EmailEventStatus = "sent"
	EmailEventStatusFailed EmailEventStatus = "failed"
)

// EmailEvent is one row in email_events: a single delivery attempt to a
// single recipient. DedupKey is globally unique when set; a NULL key means
// the event is recorded for history only and never blocks a resend.
type EmailEvent struct {
	ID             uuid.UUID
	AppID          string
	EventType      string
	RecipientEmail string
	DedupKey       pgtype.Text
	ClerkUserID    pgtype.Text
	ClerkOrgID     pgtype.Text
	Status         EmailEventStatus
	ErrorMessage   pgtype.Text
	Metadata       []byte
	CreatedAt      pgtype.Timestamptz
}

// EmailTemplate is one row in email_templates, identified by (app_id, name).
type EmailTemplate struct {
	ID            uuid.UUID
	AppID         string
	Name          string
	Subject       string
	HtmlBody      string
	TextBody      string
	FromAddress   pgtype.Text
	MessageStream pgtype.Text
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}
