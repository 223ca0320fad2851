package httpx

import (
	"context"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/tradelane/tradegate/pkg/cryptox"
	"github.com/tradelane/tradegate/pkg/jwtx"
	"github.com/tradelane/tradegate/pkg/slogx"
)

// SessionCookieName is the cookie carrying the session credential.
const SessionCookieName = "auth_token"

// SessionValidator validates a raw session credential and returns its
// claims. Implementations must return a single opaque error for every kind
// of invalid credential so callers cannot become an oracle.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (jwtx.Claims, error)
}

// GuardConfig declares which paths the session guard leaves alone.
// Everything not listed requires a valid session: the guard fails closed.
type GuardConfig struct {
	// LoginPath is where unauthenticated browser requests are redirected.
	LoginPath string

	// PublicPaths are exact paths open without a session.
	PublicPaths []string

	// PublicPrefixes are path prefixes open without a session
	// (e.g. "/auth/", "/swagger/").
	PublicPrefixes []string

	// APIPrefixes get 401 JSON instead of a login redirect when the
	// session is missing or invalid.
	APIPrefixes []string
}

// staticExtensions are served without any auth cost.
var staticExtensions = map[string]struct{}{
	".css": {}, ".js": {}, ".map": {}, ".png": {}, ".jpg": {}, ".jpeg": {},
	".gif": {}, ".svg": {}, ".ico": {}, ".webp": {}, ".woff": {}, ".woff2": {},
	".ttf": {}, ".txt": {},
}

// SessionGuard decides per request whether the caller may proceed. The
// decision is a linear list evaluated once per request:
//
//  1. static assets pass unconditionally
//  2. public paths/prefixes pass
//  3. everything else needs a session cookie; absent one, browsers are
//     redirected to the login surface and API callers get 401
//  4. the credential is validated locally; invalid ones are cleared from
//     the client and treated as absent
//
// Valid sessions have their subject injected into the request context.
func SessionGuard(cfg GuardConfig, validator SessionValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)
			p := r.URL.Path

			if isStaticAsset(p) || isPublic(cfg, p) {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				denySession(w, r, cfg, false)
				return
			}

			claims, err := validator.Validate(ctx, cookie.Value)
			if err != nil {
				// The client only ever learns "log in again"; the reason
				// (expired vs malformed vs forged) stays in the logs.
				log.Warn("session rejected",
					"token_fp", cryptox.FingerprintToken(cookie.Value)[:12],
					"reason", err.Error(),
				)
				denySession(w, r, cfg, true)
				return
			}

			ctx = contextWithSession(ctx, claims, cookie.Value)
			ctx = slogx.WithSubject(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithSession(ctx context.Context, c jwtx.Claims, raw string) context.Context {
	ctx = context.WithValue(ctx, CtxKeySubjectID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyEmail, c.Email)
	ctx = context.WithValue(ctx, CtxKeyUsername, c.Username)
	ctx = context.WithValue(ctx, CtxKeySession, raw)
	return ctx
}

// denySession terminates an unauthenticated request. clearCookie is set when
// a credential was presented but rejected, so the client stops re-sending it.
func denySession(w http.ResponseWriter, r *http.Request, cfg GuardConfig, clearCookie bool) {
	if clearCookie {
		ClearSessionCookie(w)
	}

	if isAPIPath(cfg, r.URL.Path) {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	http.Redirect(w, r, cfg.LoginPath, http.StatusFound)
}

// SetSessionCookie installs the session credential with browser-side
// hardening: inaccessible to scripts, HTTPS-only, never cross-site.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func isStaticAsset(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	_, ok := staticExtensions[ext]
	return ok
}

func isPublic(cfg GuardConfig, p string) bool {
	for _, pub := range cfg.PublicPaths {
		if p == pub {
			return true
		}
	}
	for _, prefix := range cfg.PublicPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func isAPIPath(cfg GuardConfig, p string) bool {
	for _, prefix := range cfg.APIPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
