package idpsdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tradelane/tradegate/pkg/idpsdk"
)

func newProvider(t *testing.T, handler http.HandlerFunc) *idpsdk.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return idpsdk.New(srv.URL, idpsdk.WithHTTPClient(srv.Client()))
}

func TestVerifyCredentials(t *testing.T) {
	t.Run("success returns the subject", func(t *testing.T) {
		client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/v1/credentials/verify", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "alice@example.com", body["email"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"subject": {
					"id": "sub-42",
					"email": "alice@example.com",
					"username": "alice",
					"email_verified": true
				},
				"session_artifact": "provider-token"
			}`))
		})

		subject, err := client.VerifyCredentials(context.Background(), "alice@example.com", "hunter2")
		require.NoError(t, err)
		require.Equal(t, "sub-42", subject.ID)
		require.True(t, subject.EmailVerified)
	})

	t.Run("wrong password is an authoritative rejection", func(t *testing.T) {
		client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_credentials","error_description":"bad password"}`))
		})

		_, err := client.VerifyCredentials(context.Background(), "alice@example.com", "wrong")
		require.Error(t, err)

		var pe *idpsdk.ProviderError
		require.ErrorAs(t, err, &pe)
		require.Equal(t, http.StatusUnauthorized, pe.StatusCode)
		require.Equal(t, idpsdk.ErrorCodeInvalidCredentials, pe.Code)
		require.True(t, idpsdk.IsAuthoritative(err))
		require.False(t, idpsdk.IsNetwork(err))
	})

	t.Run("provider 500 counts as network class", func(t *testing.T) {
		client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.VerifyCredentials(context.Background(), "a@b.c", "pw")
		require.Error(t, err)
		require.True(t, idpsdk.IsNetwork(err))
		require.False(t, idpsdk.IsAuthoritative(err))
	})

	t.Run("unreachable provider counts as network class", func(t *testing.T) {
		client := idpsdk.New("http://127.0.0.1:1")

		_, err := client.VerifyCredentials(context.Background(), "a@b.c", "pw")
		require.Error(t, err)
		require.True(t, idpsdk.IsNetwork(err))

		var pe *idpsdk.ProviderError
		require.False(t, errors.As(err, &pe))
	})
}

func TestGetSubjectByID(t *testing.T) {
	t.Run("sends the service API key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/subjects/sub-42", r.URL.Path)
			require.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"sub-42","email":"alice@example.com","email_verified":true}`))
		}))
		t.Cleanup(srv.Close)

		client := idpsdk.New(srv.URL,
			idpsdk.WithHTTPClient(srv.Client()),
			idpsdk.WithAPIKey("service-key"),
		)

		subject, err := client.GetSubjectByID(context.Background(), "sub-42")
		require.NoError(t, err)
		require.Equal(t, "sub-42", subject.ID)
	})

	t.Run("revoked service key is authoritative", func(t *testing.T) {
		client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_token","error_description":"revoked"}`))
		})

		_, err := client.GetSubjectByID(context.Background(), "sub-42")
		require.True(t, idpsdk.IsAuthoritative(err))
	})
}

func TestErrorBodyNotJSON(t *testing.T) {
	client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	})

	_, err := client.VerifyCredentials(context.Background(), "a@b.c", "pw")

	var pe *idpsdk.ProviderError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, idpsdk.ErrorCodeServerError, pe.Code)
	require.True(t, pe.Transient())
}
