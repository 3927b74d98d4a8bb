package api

import (
	"net/http"
)

// HealthHandler handles GET /health. It reports liveness only; readiness
// against the database is not part of the contract.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "lifecycle-emails",
		})
	}
}
