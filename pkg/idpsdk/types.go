package idpsdk

// Subject is the identity provider's representation of an authenticated
// user. The ID is stable and owned by the provider; this service never mints
// subject ids of its own.
type Subject struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username,omitempty"`
	Phone         string `json:"phone,omitempty"`
	EmailVerified bool   `json:"email_verified"`
}

// verifyRequest is the credential-check request body.
type verifyRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// verifyResponse is what the provider returns on a successful credential
// check. The session artifact is the provider's own bearer token for the
// subject; the gate layers its own session semantics on top and does not
// hand this artifact to browsers.
type verifyResponse struct {
	Subject         Subject `json:"subject"`
	SessionArtifact string  `json:"session_artifact"`
}
