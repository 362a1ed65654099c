package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// apiKeyMiddleware rejects requests whose X-API-Key header does not match
// the configured key. The comparison is constant time so the key cannot be
// guessed byte by byte.
func apiKeyMiddleware(expectedKey string) func(http.Handler) http.Handler {
	expected := []byte(expectedKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get("X-API-Key")
			if presented == "" {
				sendError(w, "Missing X-API-Key header", http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
				sendError(w, "Invalid API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sendSuccess wraps data in a success envelope.
func sendSuccess(w http.ResponseWriter, data interface{}) {
	writeEnvelope(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

// sendError wraps message in a failure envelope with the given status code.
func sendError(w http.ResponseWriter, message string, statusCode int) {
	writeEnvelope(w, statusCode, APIResponse{Success: false, Error: message})
}

func writeEnvelope(w http.ResponseWriter, statusCode int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// The status line is already out; an encode failure here has nowhere
	// to go.
	_ = json.NewEncoder(w).Encode(response)
}
