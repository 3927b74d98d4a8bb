package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shamanic-technologies/lifecycle-emails/internal/clerk"
	"github.com/shamanic-technologies/lifecycle-emails/internal/logger"
	"github.com/shamanic-technologies/lifecycle-emails/internal/send"
	"github.com/shamanic-technologies/lifecycle-emails/internal/template"
)

// EmailSender dispatches a lifecycle email to its resolved recipients.
// Implemented by send.Service; tests substitute a mock.
type EmailSender interface {
	Send(ctx context.Context, req send.Request) ([]send.Result, error)
}

// sendRequest is the JSON body for POST /send.
type sendRequest struct {
	AppID          string         `json:"appId"`
	EventType      string         `json:"eventType"`
	BrandID        string         `json:"brandId"`
	CampaignID     string         `json:"campaignId"`
	ProductID      string         `json:"productId"`
	ClerkUserID    string         `json:"clerkUserId"`
	ClerkOrgID     string         `json:"clerkOrgId"`
	RecipientEmail string         `json:"recipientEmail"`
	Metadata       map[string]any `json:"metadata"`
}

// sendResponse is the JSON response for POST /send.
type sendResponse struct {
	Results []send.Result `json:"results"`
}

// SendEmailHandler handles POST /send. Recipient resolution failures and
// missing templates are client errors; the caller named an identity or event
// the service cannot act on.
func SendEmailHandler(sender EmailSender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		results, err := sender.Send(r.Context(), send.Request{
			AppID:          req.AppID,
			EventType:      req.EventType,
			BrandID:        req.BrandID,
			CampaignID:     req.CampaignID,
			ProductID:      req.ProductID,
			ClerkUserID:    req.ClerkUserID,
			ClerkOrgID:     req.ClerkOrgID,
			RecipientEmail: req.RecipientEmail,
			Metadata:       req.Metadata,
		})
		if err != nil {
			var notFound *clerk.NotFoundError
			var noTemplate *template.ErrNotFound
			switch {
			case send.IsValidation(err), errors.As(err, &notFound), errors.As(err, &noTemplate):
				respondError(w, http.StatusBadRequest, err.Error())
			default:
				log := logger.FromContext(r.Context())
				log.Error().
					Err(err).
					Str("app_id", req.AppID).
					Str("event_type", req.EventType).
					Msg("send failed")
				respondError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		if results == nil {
			results = []send.Result{}
		}
		respondJSON(w, http.StatusOK, sendResponse{Results: results})
	}
}
