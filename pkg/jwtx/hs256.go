package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretBytes is the minimum accepted HMAC secret length. Anything
// shorter than the hash output weakens HS256 below its design strength.
const MinSecretBytes = 32

// HS256Signer signs session tokens with a single shared HMAC secret.
// Issuance and verification happen in the same process, so a symmetric
// scheme avoids key distribution entirely.
type HS256Signer struct {
	secret []byte
}

// NewSignerHS256 creates an HS256 signer from raw secret bytes.
func NewSignerHS256(secret []byte) *HS256Signer {
	return &HS256Signer{secret: secret}
}

func (s *HS256Signer) Alg() string { return "HS256" }

// Validate checks signing-key configuration. This is a startup-time check;
// Sign itself cannot fail per-request once Validate has passed.
func (s *HS256Signer) Validate() error {
	if len(s.secret) < MinSecretBytes {
		return ErrWeakSecret
	}
	return nil
}

func (s *HS256Signer) Sign(c Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.secret)
}

// HS256Verifier verifies session tokens against the shared secret with the
// algorithm pinned to HS256. Tokens signed with any other method (including
// "none") are rejected before signature verification.
type HS256Verifier struct {
	secret []byte
	issuer string
}

// NewVerifierHS256 creates a verifier bound to the given secret and expected
// issuer. An empty issuer disables the issuer check.
func NewVerifierHS256(secret []byte, issuer string) *HS256Verifier {
	return &HS256Verifier{secret: secret, issuer: issuer}
}

func (v *HS256Verifier) Verify(token string) (Claims, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrAlgMismatch
		}
		return v.secret, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if !parsed.Valid {
		return Claims{}, ErrInvalidSig
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}

	// ParseWithClaims validates exp/nbf when present; re-check here so a
	// token with no expiry at all is still rejected (fail closed).
	if err := claims.ValidateExpiry(); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

// mapParseError converts golang-jwt errors into this package's sentinels so
// callers never depend on the underlying library's taxonomy.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, ErrAlgMismatch), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return ErrMalformed
	}
}
