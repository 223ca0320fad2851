package httpx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tradelane/tradegate/pkg/httpx"
	"github.com/tradelane/tradegate/pkg/jwtx"
)

type stubValidator struct {
	claims jwtx.Claims
	err    error
}

func (s stubValidator) Validate(_ context.Context, _ string) (jwtx.Claims, error) {
	return s.claims, s.err
}

func guardConfig() httpx.GuardConfig {
	return httpx.GuardConfig{
		LoginPath:      "/login",
		PublicPaths:    []string{"/", "/login", "/register"},
		PublicPrefixes: []string{"/auth/", "/swagger/"},
		APIPrefixes:    []string{"/api/"},
	}
}

func newGuarded(v httpx.SessionValidator) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Subject", httpx.SubjectIDFromCtx(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
	return httpx.SessionGuard(guardConfig(), v)(inner)
}

func validClaims() jwtx.Claims {
	return jwtx.NewSessionClaims("sub-1", "a@example.com", "alice", time.Hour, "tradegate", time.Now().UTC())
}

func TestSessionGuardBypasses(t *testing.T) {
	// A validator that always fails proves the bypasses never consult it.
	h := newGuarded(stubValidator{err: errors.New("should not be called")})

	t.Run("static assets", func(t *testing.T) {
		for _, p := range []string{"/assets/app.css", "/favicon.ico", "/img/logo.svg"} {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
			require.Equal(t, http.StatusOK, rec.Code, p)
		}
	})

	t.Run("public paths", func(t *testing.T) {
		for _, p := range []string{"/", "/login", "/register", "/auth/login", "/swagger/index.html"} {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
			require.Equal(t, http.StatusOK, rec.Code, p)
		}
	})
}

func TestSessionGuardNoCookie(t *testing.T) {
	h := newGuarded(stubValidator{claims: validClaims()})

	t.Run("browser path redirects to login", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("api path gets 401 json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), `"status":false`)
	})

	t.Run("undeclared path is still protected", func(t *testing.T) {
		// Fail-closed: a route nobody thought about is not an open door.
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/some/new/page", nil))

		require.Equal(t, http.StatusFound, rec.Code)
	})
}

func TestSessionGuardInvalidCookie(t *testing.T) {
	h := newGuarded(stubValidator{err: errors.New("session invalid")})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: httpx.SessionCookieName, Value: "bogus"})
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	// The rejected credential must be cleared so the client stops sending it.
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, httpx.SessionCookieName, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge)
}

func TestSessionGuardValidCookie(t *testing.T) {
	h := newGuarded(stubValidator{claims: validClaims()})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: httpx.SessionCookieName, Value: "good-token"})
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "sub-1", rec.Header().Get("X-Subject"), "subject injected into context")
}

func TestSessionCookieAttributes(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.SetSessionCookie(rec, "tok", 7*24*time.Hour)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	require.Equal(t, httpx.SessionCookieName, c.Name)
	require.True(t, c.HttpOnly)
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteStrictMode, c.SameSite)
	require.Equal(t, int((7 * 24 * time.Hour).Seconds()), c.MaxAge)
}
