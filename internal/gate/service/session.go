package service

import (
	"context"
	"errors"
	"time"

	"github.com/tradelane/tradegate/internal/gate/domain"
	"github.com/tradelane/tradegate/pkg/cryptox"
	"github.com/tradelane/tradegate/pkg/jwtx"
	"github.com/tradelane/tradegate/pkg/slogx"
)

// ErrInvalidSession is the single outward-facing rejection for any bad
// session token. The specific failure (expired, forged, malformed, wrong
// issuer) is logged but never returned, so a probing client learns nothing
// about which check tripped.
var ErrInvalidSession = errors.New("session invalid")

// SessionService issues and validates the gate's own session tokens. Tokens
// are HS256 JWTs: issuance and verification happen in this one process, so a
// shared HMAC secret needs no key distribution.
type SessionService struct {
	signer   *jwtx.HS256Signer
	verifier *jwtx.HS256Verifier
	issuer   string
	ttl      time.Duration
}

// NewSessionService builds the service and validates the secret up front so a
// weak key fails at startup, not on the first login.
func NewSessionService(secret []byte, issuer string, ttl time.Duration) (*SessionService, error) {
	signer := jwtx.NewSignerHS256(secret)
	if err := signer.Validate(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}
	return &SessionService{
		signer:   signer,
		verifier: jwtx.NewVerifierHS256(secret, issuer),
		issuer:   issuer,
		ttl:      ttl,
	}, nil
}

// TTL is the lifetime stamped into issued tokens, exposed so the HTTP layer
// can align the cookie Max-Age with it.
func (s *SessionService) TTL() time.Duration { return s.ttl }

// Issue mints a session token for the subject.
func (s *SessionService) Issue(subject domain.Subject) (string, error) {
	claims := jwtx.NewSessionClaims(
		subject.ID, subject.Email, subject.Username,
		s.ttl, s.issuer, time.Now().UTC(),
	)
	return s.signer.Sign(claims)
}

// Validate checks a raw token and returns its claims. Every failure mode
// collapses to ErrInvalidSession outward; the distinction lives in the logs.
func (s *SessionService) Validate(ctx context.Context, token string) (jwtx.Claims, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		slogx.FromContext(ctx).Warn("session validation failed",
			"token_fp", cryptox.FingerprintToken(token)[:12],
			"reason", err.Error(),
		)
		return jwtx.Claims{}, ErrInvalidSession
	}
	return claims, nil
}
