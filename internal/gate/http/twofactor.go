package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tradelane/tradegate/internal/gate/service"
	"github.com/tradelane/tradegate/pkg/httpx"
	"github.com/tradelane/tradegate/pkg/slogx"
)

// TwoFactorHandler handles TOTP enrollment endpoints.
type TwoFactorHandler struct {
	TwoFactorService *service.TwoFactorService
	IdentityService  *service.IdentityService
}

type validateRequest struct {
	OTP string `json:"otp"`
}

// HandleEnroll handles GET /2fa/enroll
//
//	@Summary		Begin TOTP enrollment
//	@Description	Revalidates the subject with the identity provider, generates a fresh TOTP
//	@Description	secret and returns it with an otpauth QR URI. The secret is shown exactly once;
//	@Description	calling again replaces it.
//	@Tags			TwoFactor
//	@Produce		json
//	@Success		200	{object}	domain.TwoFactorEnrollment	"Secret and QR URI"
//	@Failure		401	{object}	httpx.StatusBody			"No valid session, or subject revoked upstream"
//	@Failure		403	{object}	httpx.StatusBody			"Account no longer verified"
//	@Failure		429	{object}	httpx.StatusBody			"Too many requests"
//	@Failure		503	{object}	httpx.StatusBody			"Identity provider unreachable"
//	@Router			/2fa/enroll [get].
func (h *TwoFactorHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subjectID := httpx.SubjectIDFromCtx(ctx)
	if subjectID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	// A local session is not enough to hand out a new second factor: the
	// subject must still be live and verified with the provider right now.
	remote, err := h.IdentityService.Revalidate(ctx, subjectID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubjectGone):
			log.Warn("enrollment refused, subject revoked upstream", "subject_id", subjectID)
			httpx.ClearSessionCookie(w)
			httpx.WriteError(w, http.StatusUnauthorized, "Session is no longer valid. Please log in again.")
		case errors.Is(err, service.ErrProviderUnavailable):
			log.Error("enrollment unavailable, provider unreachable", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable,
				"Two-factor setup is temporarily unavailable. Please try again shortly.")
		default:
			log.Error("enrollment revalidation failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Something went wrong.")
		}
		return
	}
	if !remote.EmailVerified {
		httpx.WriteError(w, http.StatusForbidden, "Please verify your account first.")
		return
	}

	enrollment, err := h.TwoFactorService.BeginEnrollment(ctx, subjectID, remote.Email)
	if err != nil {
		log.Error("enrollment failed", "subject_id", subjectID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Something went wrong.")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, enrollment)
}

// HandleValidate handles POST /2fa/validate
//
//	@Summary		Confirm TOTP enrollment
//	@Description	Checks a passcode against the pending secret and enables two-factor on match.
//	@Tags			TwoFactor
//	@Accept			json
//	@Produce		json
//	@Param			request	body		validateRequest		true	"Six digit passcode"
//	@Success		200		{object}	httpx.StatusBody	"Two-factor enabled"
//	@Failure		400		{object}	httpx.StatusBody	"Malformed or wrong passcode, or no enrollment in progress"
//	@Failure		401		{object}	httpx.StatusBody	"No valid session"
//	@Failure		429		{object}	httpx.StatusBody	"Too many attempts"
//	@Router			/2fa/validate [post].
func (h *TwoFactorHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subjectID := httpx.SubjectIDFromCtx(ctx)
	if subjectID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	err := h.TwoFactorService.ConfirmEnrollment(ctx, subjectID, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMalformedOTP):
			httpx.WriteError(w, http.StatusBadRequest, "OTP must be a 6 digit code.")
		case errors.Is(err, service.ErrNoPendingSecret):
			httpx.WriteError(w, http.StatusBadRequest, "No enrollment in progress. Request a new secret first.")
		case errors.Is(err, service.ErrInvalidPasscode):
			httpx.WriteError(w, http.StatusBadRequest, "Invalid OTP. Please try again.")
		default:
			log.Error("enrollment confirmation failed", "subject_id", subjectID, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Something went wrong.")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, httpx.StatusBody{
		Status:  true,
		Message: "Two-factor authentication enabled.",
	})
}
