package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shamanic-technologies/lifecycle-emails/internal/logger"
	"github.com/shamanic-technologies/lifecycle-emails/internal/metrics"
	"github.com/shamanic-technologies/lifecycle-emails/internal/storage"
	"github.com/shamanic-technologies/lifecycle-emails/internal/template"
)

// TemplateDeployer persists template overrides for an app.
// Implemented by template.Resolver; tests substitute a mock.
type TemplateDeployer interface {
	Deploy(ctx context.Context, appID string, templates []template.DeployInput) ([]template.DeployResult, error)
}

// deployTemplateRequest is the JSON body for PUT /templates.
type deployTemplateRequest struct {
	AppID     string          `json:"appId"`
	Templates []deployedEntry `json:"templates"`
}

type deployedEntry struct {
	Name          string `json:"name"`
	Subject       string `json:"subject"`
	HTMLBody      string `json:"htmlBody"`
	TextBody      string `json:"textBody"`
	FromAddress   string `json:"fromAddress"`
	MessageStream string `json:"messageStream"`
}

// deployTemplateResponse is the JSON response for PUT /templates.
type deployTemplateResponse struct {
	Templates []deployOutcome `json:"templates"`
}

type deployOutcome struct {
	Name   string `json:"name"`
	Action string `json:"action"`
}

// DeployTemplatesHandler handles PUT /templates.
func DeployTemplatesHandler(deployer TemplateDeployer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deployTemplateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if req.AppID == "" {
			respondError(w, http.StatusBadRequest, "appId is required")
			return
		}
		if len(req.Templates) == 0 {
			respondError(w, http.StatusBadRequest, "templates must not be empty")
			return
		}

		inputs := make([]template.DeployInput, 0, len(req.Templates))
		for _, tpl := range req.Templates {
			if tpl.Name == "" {
				respondError(w, http.StatusBadRequest, "template name is required")
				return
			}
			if tpl.Subject == "" {
				respondError(w, http.StatusBadRequest, "template subject is required")
				return
			}
			inputs = append(inputs, template.DeployInput{
				Name:          tpl.Name,
				Subject:       tpl.Subject,
				HTMLBody:      tpl.HTMLBody,
				TextBody:      tpl.TextBody,
				FromAddress:   tpl.FromAddress,
				MessageStream: tpl.MessageStream,
			})
		}

		results, err := deployer.Deploy(r.Context(), req.AppID, inputs)
		if err != nil {
			log := logger.FromContext(r.Context())
			log.Error().
				Err(err).
				Str("app_id", req.AppID).
				Msg("template deploy failed")
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		outcomes := make([]deployOutcome, 0, len(results))
		for _, res := range results {
			metrics.TemplateDeploysTotal.WithLabelValues(string(res.Action)).Inc()
			outcomes = append(outcomes, deployOutcome{Name: res.Name, Action: string(res.Action)})
		}
		respondJSON(w, http.StatusOK, deployTemplateResponse{Templates: outcomes})
	}
}

// templateSummary is one deployed override in a GET /templates response.
// Bodies are omitted; callers list names, then deploy replacements whole.
type templateSummary struct {
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	UpdatedAt string `json:"updatedAt"`
}

type listTemplatesResponse struct {
	Templates []templateSummary `json:"templates"`
}

// ListTemplatesHandler handles GET /templates. It returns the deployed
// overrides for an app; builtin templates are not included.
func ListTemplatesHandler(queries storage.Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appID := r.URL.Query().Get("appId")
		if appID == "" {
			respondError(w, http.StatusBadRequest, "appId query parameter is required")
			return
		}

		rows, err := queries.ListEmailTemplates(r.Context(), appID)
		if err != nil {
			log := logger.FromContext(r.Context())
			log.Error().
				Err(err).
				Str("app_id", appID).
				Msg("template list failed")
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		summaries := make([]templateSummary, 0, len(rows))
		for _, row := range rows {
			summaries = append(summaries, templateSummary{
				Name:      row.Name,
				Subject:   row.Subject,
				UpdatedAt: row.UpdatedAt.Time.UTC().Format("2006-01-02T15:04:05Z07:00"),
			})
		}
		respondJSON(w, http.StatusOK, listTemplatesResponse{Templates: summaries})
	}
}
