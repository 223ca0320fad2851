package idpsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Provider error codes this client understands. Unknown codes pass through
// verbatim inside the ProviderError.
const (
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeServerError        = "server_error"
)

// ProviderError is an authoritative rejection from the identity provider:
// the provider received the request and said no. These are never retried —
// repeating them cannot change the answer, and retrying invalid-token probes
// would disguise an attacker's traffic as a transient outage.
type ProviderError struct {
	// StatusCode is the HTTP status the provider responded with.
	StatusCode int `json:"-"`

	// Code is the provider's machine-readable error code.
	Code string `json:"error"`

	// Description is a human-readable description of the error.
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("idp: %s: %s", e.Code, e.Description)
}

// Transient reports whether the rejection reflects provider-side trouble
// (5xx, 429) rather than a verdict about the request. Transient rejections
// are treated like network failures by retrying callers.
func (e *ProviderError) Transient() bool {
	return e.StatusCode >= http.StatusInternalServerError ||
		e.StatusCode == http.StatusTooManyRequests
}

// IsAuthoritative reports whether err is a non-transient provider verdict.
func IsAuthoritative(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && !pe.Transient()
}

// IsNetwork reports whether err should be treated as a network-class
// failure: transport errors, timeouts, and transient provider statuses.
func IsNetwork(err error) bool {
	if err == nil {
		return false
	}
	return !IsAuthoritative(err)
}

// parseErrorResponse builds a ProviderError from a non-2xx response body.
// Bodies that aren't the provider's JSON error shape still produce a usable
// error carrying the status code.
func parseErrorResponse(statusCode int, body []byte) *ProviderError {
	pe := &ProviderError{StatusCode: statusCode}
	if err := json.Unmarshal(body, pe); err != nil || pe.Code == "" {
		pe.Code = ErrorCodeServerError
		pe.Description = http.StatusText(statusCode)
	}
	return pe
}
