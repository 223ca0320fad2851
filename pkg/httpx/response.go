package httpx

import (
	"encoding/json"
	"net/http"
)

// StatusBody is the uniform response envelope: every JSON response carries a
// boolean status, failures carry a human-readable message, successes attach
// their payload alongside.
type StatusBody struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a failure envelope {status:false, message}. The message
// is what an untrusted caller may see; internal detail belongs in logs only.
func WriteError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, StatusBody{Status: false, Message: message})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is required for responses carrying tokens or secrets.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
