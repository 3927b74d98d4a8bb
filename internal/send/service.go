// Package send orchestrates the lifecycle email pipeline: resolve
// recipients, claim the dedup ledger, render the template, deliver, and
// reconcile on failure.
package send

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shamanic-technologies/lifecycle-emails/internal/dedup"
	"github.com/shamanic-technologies/lifecycle-emails/internal/gateway"
	"github.com/shamanic-technologies/lifecycle-emails/internal/ledger"
	"github.com/shamanic-technologies/lifecycle-emails/internal/metrics"
	"github.com/shamanic-technologies/lifecycle-emails/internal/runs"
	"github.com/shamanic-technologies/lifecycle-emails/internal/template"
)

// Request is one incoming send call. Exactly one of ClerkUserID, ClerkOrgID,
// or RecipientEmail must identify the recipient, unless the event type is an
// admin notification (which always goes to the operator address).
type Request struct {
	AppID          string
	EventType      string
	BrandID        string
	CampaignID     string
	ProductID      string
	ClerkUserID    string
	ClerkOrgID     string
	RecipientEmail string
	Metadata       map[string]any
}

// Result is the per-recipient outcome of a send.
type Result struct {
	Email  string `json:"email"`
	Sent   bool   `json:"sent"`
	Reason string `json:"reason,omitempty"`
}

// ReasonDuplicate marks a send skipped because the dedup key was already
// claimed by an earlier request.
const ReasonDuplicate = "duplicate"

// Directory resolves identity references to email addresses.
type Directory interface {
	ResolveUserEmail(ctx context.Context, userID string) (string, error)
	ResolveOrgEmails(ctx context.Context, orgID string) ([]string, error)
}

// TemplateSource resolves a renderable template for (app, event).
type TemplateSource interface {
	Resolve(ctx context.Context, appID, eventType string) (template.Template, error)
}

// Ledger claims dedup keys and reconciles failed deliveries.
type Ledger interface {
	Claim(ctx context.Context, e ledger.Entry) (ledger.Claim, error)
	ReconcileFailure(ctx context.Context, eventID uuid.UUID, message string)
}

// Config carries the orchestrator's policy knobs.
type Config struct {
	// Policy maps event types to dedup strategies.
	Policy dedup.Policy
	// AdminEvents are event types whose recipient is forced to AdminEmail.
	AdminEvents []string
	// AdminEmail is the operator address for admin notifications.
	AdminEmail string
}

// Service runs the send pipeline.
type Service struct {
	directory   Directory
	templates   TemplateSource
	ledger      Ledger
	sender      gateway.Sender
	tracker     runs.Tracker
	policy      dedup.Policy
	adminEvents map[string]struct{}
	adminEmail  string
	now         func() time.Time
	log         zerolog.Logger
}

// NewService wires the send orchestrator.
func NewService(
	directory Directory,
	templates TemplateSource,
	ledg Ledger,
	sender gateway.Sender,
	tracker runs.Tracker,
	cfg Config,
	log zerolog.Logger,
) *Service {
	adminEvents := make(map[string]struct{}, len(cfg.AdminEvents))
	for _, e := range cfg.AdminEvents {
		adminEvents[e] = struct{}{}
	}
	return &Service{
		directory:   directory,
		templates:   templates,
		ledger:      ledg,
		sender:      sender,
		tracker:     tracker,
		policy:      cfg.Policy,
		adminEvents: adminEvents,
		adminEmail:  cfg.AdminEmail,
		now:         time.Now,
		log:         log,
	}
}

// Send processes one request: it resolves recipients and the template up
// front (failures there abort the whole request with no side effects), then
// walks recipients sequentially, each with its own claim, delivery, and
// reconcile. A recipient's failure never aborts its siblings.
func (s *Service) Send(ctx context.Context, req Request) ([]Result, error) {
	if req.AppID == "" || req.EventType == "" {
		return nil, &ValidationError{Message: "appId and eventType are required"}
	}

	recipients, err := s.resolveRecipients(ctx, req)
	if err != nil {
		return nil, err
	}
	metrics.RecipientFanout.Observe(float64(len(recipients)))

	metadata := s.enrichMetadata(ctx, req)

	tpl, err := s.templates.Resolve(ctx, req.AppID, req.EventType)
	if err != nil {
		return nil, err
	}
	rendered := tpl.Render(metadata)

	baseKey := dedup.BuildKey(s.policy, req.AppID, req.EventType, dedup.Ref{
		ClerkUserID:    req.ClerkUserID,
		RecipientEmail: req.RecipientEmail,
		ProductID:      req.ProductID,
	}, s.now())

	if s.policy.Rule(req.EventType).Strategy == dedup.StrategyProduct && req.ProductID == "" {
		// Policy decision carried over from the original service: a
		// product-scoped event without a product is sent without dedup
		// instead of being rejected.
		s.log.Warn().
			Str("app_id", req.AppID).
			Str("event_type", req.EventType).
			Msg("product-scoped event without productId, sending without dedup")
	}

	fanout := len(recipients) > 1
	results := make([]Result, 0, len(recipients))
	for _, email := range recipients {
		results = append(results, s.sendOne(ctx, req, tpl, rendered, metadata, email,
			dedup.PerRecipientKey(baseKey, email, fanout)))
	}
	return results, nil
}

// sendOne runs the claim/deliver/reconcile sequence for a single recipient.
func (s *Service) sendOne(
	ctx context.Context,
	req Request,
	tpl template.Template,
	rendered template.Rendered,
	metadata map[string]any,
	email, dedupKey string,
) Result {
	log := s.log.With().
		Str("app_id", req.AppID).
		Str("event_type", req.EventType).
		Str("recipient", email).
		Logger()

	runID, err := s.tracker.StartRun(ctx, runs.RunParams{
		ClerkOrgID:  req.ClerkOrgID,
		ClerkUserID: req.ClerkUserID,
		AppID:       req.AppID,
		BrandID:     req.BrandID,
		CampaignID:  req.CampaignID,
		TaskName:    "send-" + req.EventType,
	})
	if err != nil {
		// The one tracker failure that matters: without a run we do not
		// attempt this recipient at all. Siblings are unaffected.
		log.Error().Err(err).Msg("failed to start run")
		metrics.SendAttemptsTotal.WithLabelValues(req.AppID, req.EventType, "failed").Inc()
		return Result{Email: email, Sent: false, Reason: err.Error()}
	}

	claim, err := s.ledger.Claim(ctx, ledger.Entry{
		AppID:          req.AppID,
		EventType:      req.EventType,
		RecipientEmail: email,
		DedupKey:       dedupKey,
		ClerkUserID:    req.ClerkUserID,
		ClerkOrgID:     req.ClerkOrgID,
		Metadata:       metadata,
	})
	if err != nil {
		log.Error().Err(err).Msg("ledger claim failed")
		s.completeRun(ctx, runID, runs.RunStatusFailed)
		metrics.SendAttemptsTotal.WithLabelValues(req.AppID, req.EventType, "failed").Inc()
		return Result{Email: email, Sent: false, Reason: err.Error()}
	}
	if !claim.Claimed {
		log.Info().Str("dedup_key", dedupKey).Msg("duplicate send skipped")
		s.completeRun(ctx, runID, runs.RunStatusCompleted)
		metrics.DedupClaimsTotal.WithLabelValues("duplicate").Inc()
		metrics.SendAttemptsTotal.WithLabelValues(req.AppID, req.EventType, "duplicate").Inc()
		return Result{Email: email, Sent: false, Reason: ReasonDuplicate}
	}
	metrics.DedupClaimsTotal.WithLabelValues("claimed").Inc()

	start := time.Now()
	err = s.sender.Send(ctx, gateway.Email{
		To:            email,
		Subject:       rendered.Subject,
		HTMLBody:      rendered.HTMLBody,
		TextBody:      rendered.TextBody,
		Tag:           fmt.Sprintf("%s-%s", req.AppID, req.EventType),
		FromAddress:   tpl.FromAddress,
		MessageStream: tpl.MessageStream,
	})
	metrics.DeliveryDuration.WithLabelValues(req.AppID).Observe(time.Since(start).Seconds())

	if err != nil {
		log.Error().Err(err).Msg("delivery failed")
		s.ledger.ReconcileFailure(ctx, claim.EventID, err.Error())
		s.completeRun(ctx, runID, runs.RunStatusFailed)
		metrics.SendAttemptsTotal.WithLabelValues(req.AppID, req.EventType, "failed").Inc()
		return Result{Email: email, Sent: false, Reason: err.Error()}
	}

	log.Info().Msg("email delivered")
	s.completeRun(ctx, runID, runs.RunStatusCompleted)
	metrics.SendAttemptsTotal.WithLabelValues(req.AppID, req.EventType, "sent").Inc()
	return Result{Email: email, Sent: true}
}

// resolveRecipients expands the request's identity reference to concrete
// addresses. Admin notification events override addressing entirely.
func (s *Service) resolveRecipients(ctx context.Context, req Request) ([]string, error) {
	if _, ok := s.adminEvents[req.EventType]; ok {
		return []string{s.adminEmail}, nil
	}

	switch {
	case req.ClerkUserID != "":
		email, err := s.directory.ResolveUserEmail(ctx, req.ClerkUserID)
		if err != nil {
			return nil, fmt.Errorf("resolve user %s: %w", req.ClerkUserID, err)
		}
		return []string{email}, nil

	case req.ClerkOrgID != "":
		emails, err := s.directory.ResolveOrgEmails(ctx, req.ClerkOrgID)
		if err != nil {
			return nil, fmt.Errorf("resolve org %s: %w", req.ClerkOrgID, err)
		}
		return emails, nil

	case req.RecipientEmail != "":
		return []string{req.RecipientEmail}, nil

	default:
		return nil, &ValidationError{Message: "one of clerkUserId, clerkOrgId, or recipientEmail is required"}
	}
}

// enrichMetadata copies the request metadata and fills in the values the
// builtin templates expect: a render timestamp, and for admin notifications
// the acting user's email. Enrichment is best-effort; a directory error here
// never fails the send.
func (s *Service) enrichMetadata(ctx context.Context, req Request) map[string]any {
	metadata := make(map[string]any, len(req.Metadata)+2)
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	if _, ok := metadata["timestamp"]; !ok {
		metadata["timestamp"] = s.now().UTC().Format(time.RFC3339)
	}

	_, admin := s.adminEvents[req.EventType]
	if admin && req.ClerkUserID != "" {
		if _, ok := metadata["email"]; !ok {
			email, err := s.directory.ResolveUserEmail(ctx, req.ClerkUserID)
			if err != nil {
				s.log.Warn().Err(err).
					Str("clerk_user_id", req.ClerkUserID).
					Msg("could not enrich metadata with user email")
			} else {
				metadata["email"] = email
			}
		}
	}
	return metadata
}

// completeRun closes an audit run. Failures are logged and discarded so the
// side channel cannot corrupt the send result.
func (s *Service) completeRun(ctx context.Context, runID string, status runs.RunStatus) {
	if runID == "" {
		return
	}
	if err := s.tracker.CompleteRun(ctx, runID, status); err != nil {
		s.log.Warn().Err(err).Str("run_id", runID).Msg("failed to complete run")
	}
}
