package template

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/shamanic-technologies/lifecycle-emails/internal/storage"
)

// Resolver looks up templates for the send path and deploys overrides.
type Resolver struct {
	queries storage.Querier
}

// NewResolver creates a Resolver over the given query layer.
func NewResolver(queries storage.Querier) *Resolver {
	return &Resolver{queries: queries}
}

// Resolve returns the template for (appID, eventType): the persisted
// override when one is deployed, otherwise the builtin definition.
// Returns *ErrNotFound when neither exists.
func (r *Resolver) Resolve(ctx context.Context, appID, eventType string) (Template, error) {
	row, err := r.queries.GetEmailTemplate(ctx, appID, eventType)
	if err == nil {
		return Template{
			Definition: Definition{
				Subject:  row.Subject,
				HTMLBody: row.HtmlBody,
				TextBody: row.TextBody,
			},
			FromAddress:   textOrEmpty(row.FromAddress),
			MessageStream: textOrEmpty(row.MessageStream),
		}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Template{}, fmt.Errorf("lookup template %s/%s: %w", appID, eventType, err)
	}

	if def, ok := Builtin(appID, eventType); ok {
		return Template{Definition: def}, nil
	}
	return Template{}, &ErrNotFound{AppID: appID, EventType: eventType}
}

// DeployInput is one template in a deploy request.
type DeployInput struct {
	Name          string
	Subject       string
	HTMLBody      string
	TextBody      string
	FromAddress   string
	MessageStream string
}

// DeployAction reports whether a deploy created or overwrote a template.
type DeployAction string

const (
	DeployActionCreated DeployAction = "created"
	DeployActionUpdated DeployAction = "updated"
)

// DeployResult is the per-template outcome of a deploy.
type DeployResult struct {
	Name   string
	Action DeployAction
}

// Deploy upserts the given templates for an app. Each template is a single
// atomic upsert keyed by (appID, name), so concurrent identical deploys both
// succeed without a uniqueness error.
func (r *Resolver) Deploy(ctx context.Context, appID string, templates []DeployInput) ([]DeployResult, error) {
	results := make([]DeployResult, 0, len(templates))
	for _, tpl := range templates {
		row, err := r.queries.UpsertEmailTemplate(ctx, storage.UpsertEmailTemplateParams{
			AppID:         appID,
			Name:          tpl.Name,
			Subject:       tpl.Subject,
			HtmlBody:      tpl.HTMLBody,
			TextBody:      tpl.TextBody,
			FromAddress:   pgtype.Text{String: tpl.FromAddress, Valid: tpl.FromAddress != ""},
			MessageStream: pgtype.Text{String: tpl.MessageStream, Valid: tpl.MessageStream != ""},
		})
		if err != nil {
			return nil, fmt.Errorf("deploy template %s/%s: %w", appID, tpl.Name, err)
		}

		action := DeployActionUpdated
		if row.Inserted {
			action = DeployActionCreated
		}
		results = append(results, DeployResult{Name: tpl.Name, Action: action})
	}
	return results, nil
}

func textOrEmpty(t pgtype.Text) string {
	if t.Valid {
		return t.String
	}
	return ""
}
