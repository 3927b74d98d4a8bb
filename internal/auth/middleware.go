package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/shamanic-technologies/lifecycle-emails/internal/metrics"
)

// APIKeyAuth returns an HTTP middleware that validates the X-API-Key header
// against the configured service key. Requests with a missing or wrong key
// receive a 401 JSON error.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-API-Key")
			if provided == "" {
				metrics.APIAuthFailuresTotal.Inc()
				unauthorized(w, "X-API-Key header required")
				return
			}

			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				metrics.APIAuthFailuresTotal.Inc()
				unauthorized(w, "invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
