package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tradelane/tradegate/internal/gate/domain"
	"github.com/tradelane/tradegate/internal/gate/service"
	"github.com/tradelane/tradegate/pkg/httpx"
	"github.com/tradelane/tradegate/pkg/slogx"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	SessionService  *service.SessionService
	IdentityService *service.IdentityService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login. The token also rides in
// the session cookie; it is included in the body for non-browser clients.
type LoginResponse struct {
	Status  bool                  `json:"status"`
	Message string                `json:"message"`
	Token   string                `json:"token"`
	Data    domain.SubjectProfile `json:"data"`
}

// unverifiedResponse tells the dashboard to route the subject to the
// verification flow rather than show a generic failure.
type unverifiedResponse struct {
	Status               bool   `json:"status"`
	Message              string `json:"message"`
	RequiresVerification bool   `json:"requiresVerification"`
}

// HandleLogin handles POST /auth/login
//
//	@Summary		Log in with email and password
//	@Description	Verifies credentials against the identity provider and issues a session cookie.
//	@Description	Rate limited per IP + email; refusals carry Retry-After and X-RateLimit-* headers.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	LoginResponse	"Session issued"
//	@Failure		400		{object}	httpx.StatusBody	"Malformed request"
//	@Failure		401		{object}	httpx.StatusBody	"Wrong email or password"
//	@Failure		403		{object}	unverifiedResponse	"Account pending verification"
//	@Failure		429		{object}	httpx.StatusBody	"Too many attempts"
//	@Failure		503		{object}	httpx.StatusBody	"Identity provider unreachable"
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Malformed request body.")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Email and password are required.")
		return
	}

	subject, err := h.IdentityService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid email or password.")
		case errors.Is(err, service.ErrUnverifiedAccount):
			httpx.WriteJSON(w, http.StatusForbidden, unverifiedResponse{
				Status:               false,
				Message:              "Please verify your account before logging in.",
				RequiresVerification: true,
			})
		case errors.Is(err, service.ErrProviderUnavailable):
			log.Error("login failed, provider unreachable", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable,
				"Authentication is temporarily unavailable. Please try again shortly.")
		default:
			log.Error("login failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Something went wrong.")
		}
		return
	}

	token, err := h.SessionService.Issue(subject)
	if err != nil {
		log.Error("session issuance failed", "subject_id", subject.ID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Something went wrong.")
		return
	}

	log.Info("login succeeded", "subject_id", subject.ID)

	httpx.SetSessionCookie(w, token, h.SessionService.TTL())
	httpx.WriteJSON(w, http.StatusOK, LoginResponse{
		Status:  true,
		Message: "Login successful.",
		Token:   token,
		Data:    subject.Profile(),
	})
}

// HandleLogout handles POST /auth/logout
//
//	@Summary		Log out
//	@Description	Clears the session cookie. Succeeds whether or not a valid session was presented.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	httpx.StatusBody	"Session cleared"
//	@Router			/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	httpx.ClearSessionCookie(w)
	httpx.WriteJSON(w, http.StatusOK, httpx.StatusBody{
		Status:  true,
		Message: "Logged out.",
	})
}
