package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/tradelane/tradegate/pkg/jwtx"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestSignerValidate(t *testing.T) {
	t.Run("accepts 32 byte secret", func(t *testing.T) {
		require.NoError(t, jwtx.NewSignerHS256(testSecret).Validate())
	})

	t.Run("rejects short secret", func(t *testing.T) {
		err := jwtx.NewSignerHS256([]byte("short")).Validate()
		require.ErrorIs(t, err, jwtx.ErrWeakSecret)
	})
}

func TestHS256RoundTrip(t *testing.T) {
	signer := jwtx.NewSignerHS256(testSecret)
	verifier := jwtx.NewVerifierHS256(testSecret, "tradegate")

	now := time.Now().UTC()
	claims := jwtx.NewSessionClaims("sub-1", "a@example.com", "alice", time.Hour, "tradegate", now)

	token, err := signer.Sign(claims)
	require.NoError(t, err)
	require.Equal(t, 3, len(strings.Split(token, ".")))

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "sub-1", got.Subject)
	require.Equal(t, "a@example.com", got.Email)
	require.Equal(t, "alice", got.Username)
	require.NoError(t, got.ValidateExpiry())
}

func TestVerifyRejections(t *testing.T) {
	signer := jwtx.NewSignerHS256(testSecret)
	verifier := jwtx.NewVerifierHS256(testSecret, "tradegate")
	now := time.Now().UTC()

	t.Run("expired token", func(t *testing.T) {
		claims := jwtx.NewSessionClaims("sub-1", "a@example.com", "", time.Hour, "tradegate", now.Add(-2*time.Hour))
		token, err := signer.Sign(claims)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := jwtx.NewSignerHS256([]byte("ffffffffffffffffffffffffffffffff"))
		claims := jwtx.NewSessionClaims("sub-1", "a@example.com", "", time.Hour, "tradegate", now)
		token, err := other.Sign(claims)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		claims := jwtx.NewSessionClaims("sub-1", "a@example.com", "", time.Hour, "tradegate", now)
		tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
		token, err := tok.SignedString(testSecret)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrAlgMismatch)
	})

	t.Run("unsigned token", func(t *testing.T) {
		claims := jwtx.NewSessionClaims("sub-1", "a@example.com", "", time.Hour, "tradegate", now)
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
		token, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.Error(t, err)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		claims := jwtx.NewSessionClaims("sub-1", "a@example.com", "", time.Hour, "someone-else", now)
		token, err := signer.Sign(claims)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("missing expiry", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:  "tradegate",
				Subject: "sub-1",
			},
		})
		token, err := tok.SignedString(testSecret)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("structural garbage", func(t *testing.T) {
		_, err := verifier.Verify("not.a.token")
		require.Error(t, err)

		_, err = verifier.Verify("")
		require.Error(t, err)
	})
}
