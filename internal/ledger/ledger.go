// Package ledger records delivery attempts in Postgres and arbitrates
// deduplication through an atomic claim on the dedup key.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/shamanic-technologies/lifecycle-emails/internal/storage"
)

// Entry describes the event row written for one delivery attempt.
type Entry struct {
	AppID          string
	EventType      string
	RecipientEmail string
	DedupKey       string // empty means no dedup; the row is history only
	ClerkUserID    string
	ClerkOrgID     string
	Metadata       map[string]any
}

// Claim is the outcome of attempting to reserve a dedup key.
type Claim struct {
	// Claimed reports whether this attempt won the key (or the entry had no
	// key). When false a prior claim exists and delivery must be skipped.
	Claimed bool
	// EventID identifies the inserted row when Claimed is true.
	EventID uuid.UUID
}

// Ledger wraps the email_events table with claim and reconcile semantics.
type Ledger struct {
	queries storage.Querier
	log     zerolog.Logger
}

// New creates a Ledger over the given query layer.
func New(queries storage.Querier, log zerolog.Logger) *Ledger {
	return &Ledger{queries: queries, log: log}
}

// Claim inserts the event row, reserving its dedup key in the same
// statement. Rows are written optimistically with status "sent"; a delivery
// failure is reconciled afterwards. When the entry carries no key the insert
// is unconditional and always succeeds.
func (l *Ledger) Claim(ctx context.Context, e Entry) (Claim, error) {
	metadata, err := marshalMetadata(e.Metadata)
	if err != nil {
		return Claim{}, fmt.Errorf("marshal event metadata: %w", err)
	}

	if e.DedupKey == "" {
		event, err := l.queries.CreateEmailEvent(ctx, storage.CreateEmailEventParams{
			AppID:          e.AppID,
			EventType:      e.EventType,
			RecipientEmail: e.RecipientEmail,
			ClerkUserID:    nullableText(e.ClerkUserID),
			ClerkOrgID:     nullableText(e.ClerkOrgID),
			Status:         storage.EmailEventStatusSent,
			Metadata:       metadata,
		})
		if err != nil {
			return Claim{}, fmt.Errorf("insert email event: %w", err)
		}
		return Claim{Claimed: true, EventID: event.ID}, nil
	}

	event, err := l.queries.ClaimEmailEvent(ctx, storage.ClaimEmailEventParams{
		AppID:          e.AppID,
		EventType:      e.EventType,
		RecipientEmail: e.RecipientEmail,
		DedupKey:       pgtype.Text{String: e.DedupKey, Valid: true},
		ClerkUserID:    nullableText(e.ClerkUserID),
		ClerkOrgID:     nullableText(e.ClerkOrgID),
		Status:         storage.EmailEventStatusSent,
		Metadata:       metadata,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// ON CONFLICT DO NOTHING returned nothing: the key is already
			// held by an earlier send.
			return Claim{Claimed: false}, nil
		}
		return Claim{}, fmt.Errorf("claim dedup key: %w", err)
	}

	return Claim{Claimed: true, EventID: event.ID}, nil
}

// ReconcileFailure marks a claimed event row failed and records the delivery
// error. Best-effort: a reconcile error is logged, never returned, because
// the send attempt's own outcome still has to reach the caller.
func (l *Ledger) ReconcileFailure(ctx context.Context, eventID uuid.UUID, message string) {
	err := l.queries.MarkEmailEventFailed(ctx, storage.MarkEmailEventFailedParams{
		ID:           eventID,
		ErrorMessage: message,
	})
	if err != nil {
		l.log.Error().Err(err).
			Stringer("event_id", eventID).
			Msg("failed to mark email event failed")
	}
}

func marshalMetadata(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func nullableText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
