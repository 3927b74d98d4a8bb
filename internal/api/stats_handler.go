package api

import (
	"encoding/json"
	"net/http"

	"github.com/shamanic-technologies/lifecycle-emails/internal/logger"
	"github.com/shamanic-technologies/lifecycle-emails/internal/storage"
)

// statsRequest is the JSON body for POST /stats. At least one filter field
// must be set; an unrestricted count over the whole ledger is rejected.
type statsRequest struct {
	AppID       string `json:"appId"`
	ClerkOrgID  string `json:"clerkOrgId"`
	ClerkUserID string `json:"clerkUserId"`
	EventType   string `json:"eventType"`
}

// statsResponse is the JSON response for POST /stats.
type statsResponse struct {
	Stats emailStats `json:"stats"`
}

type emailStats struct {
	TotalEmails int64 `json:"totalEmails"`
	Sent        int64 `json:"sent"`
	Failed      int64 `json:"failed"`
}

// EmailStatsHandler handles POST /stats.
func EmailStatsHandler(queries storage.Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if req.AppID == "" && req.ClerkOrgID == "" && req.ClerkUserID == "" && req.EventType == "" {
			respondError(w, http.StatusBadRequest, "at least one filter is required")
			return
		}

		counts, err := queries.GetEmailEventStats(r.Context(), storage.EmailEventStatsFilter{
			AppID:       req.AppID,
			ClerkOrgID:  req.ClerkOrgID,
			ClerkUserID: req.ClerkUserID,
			EventType:   req.EventType,
		})
		if err != nil {
			log := logger.FromContext(r.Context())
			log.Error().Err(err).Msg("stats query failed")
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		var stats emailStats
		for _, c := range counts {
			stats.TotalEmails += c.Count
			switch c.Status {
			case storage.EmailEventStatusSent:
				stats.Sent += c.Count
			case storage.EmailEventStatusFailed:
				stats.Failed += c.Count
			}
		}
		respondJSON(w, http.StatusOK, statsResponse{Stats: stats})
	}
}
