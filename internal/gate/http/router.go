package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tradelane/tradegate/internal/gate/service"
	"github.com/tradelane/tradegate/internal/gate/store"
	"github.com/tradelane/tradegate/pkg/httpx"
	"github.com/tradelane/tradegate/pkg/ratelimit"
	"github.com/tradelane/tradegate/pkg/slogx"

	_ "github.com/tradelane/tradegate/api/gate" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	SessionService   *service.SessionService
	IdentityService  *service.IdentityService
	TwoFactorService *service.TwoFactorService

	loginLimiter    *ratelimit.Limiter
	enrollLimiter   *ratelimit.Limiter
	validateLimiter *ratelimit.Limiter
}

func NewRouter(
	sessions *service.SessionService,
	identity *service.IdentityService,
	twoFactor *service.TwoFactorService,
	st store.Store,
	limitStore ratelimit.Store,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,

		SessionService:   sessions,
		IdentityService:  identity,
		TwoFactorService: twoFactor,

		loginLimiter:    ratelimit.New(httpx.StrictLimit, limitStore),
		enrollLimiter:   ratelimit.New(httpx.ModerateLimit, limitStore),
		validateLimiter: ratelimit.New(httpx.StrictLimit, limitStore),
	}

	// Global middleware chain: request logging, coarse per-IP throttling,
	// then the session guard. Per-route fixed-window limits are attached at
	// registration time.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.ThrottleMiddleware(httpx.DefaultThrottle),
		httpx.SessionGuard(guardConfig(), sessions),
	}

	return r
}

// guardConfig declares the public surface. Everything else requires a valid
// session cookie; unauthenticated API calls get 401 JSON, page navigations a
// login redirect.
func guardConfig() httpx.GuardConfig {
	return httpx.GuardConfig{
		LoginPath: "/login",
		PublicPaths: []string{
			"/", "/login", "/register", "/livez", "/readyz",
		},
		PublicPrefixes: []string{
			"/auth/", "/swagger/",
		},
		APIPrefixes: []string{
			"/2fa/", "/api/",
		},
	}
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTwoFactor()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			TradeGate Session Service API
//	@version		0.1.0
//	@description	Authentication and session gate for the TradeLane dashboard.
//	@description	Credentials are verified against the upstream identity provider;
//	@description	sessions are issued as HS256-signed cookies owned by this service.
//
//	@contact.name	TradeLane Platform Team
//	@contact.url	https://github.com/tradelane/tradegate
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	authHandler := &AuthHandler{
		SessionService:  r.SessionService,
		IdentityService: r.IdentityService,
	}

	// POST /auth/login - strict rate limit keyed by IP + submitted email so
	// one address cannot spray attempts across accounts, nor one account be
	// locked out from a single address.
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(authHandler.HandleLogin),
			httpx.RateLimitMiddleware(r.loginLimiter, routeKey("login",
				httpx.CompositeKeyExtractor(":",
					httpx.IPKeyExtractor,
					httpx.JSONFieldKeyExtractor("email"),
				),
			)),
		),
	)

	r.Mux.Handle("POST /auth/logout", http.HandlerFunc(authHandler.HandleLogout))
}

func (r *Router) registerTwoFactor() {
	twoFactorHandler := &TwoFactorHandler{
		TwoFactorService: r.TwoFactorService,
		IdentityService:  r.IdentityService,
	}

	// GET /enroll - moderate limit; handing out secrets is not free, the
	// provider is revalidated on every call.
	r.Mux.Handle("GET /2fa/enroll",
		httpx.Chain(http.HandlerFunc(twoFactorHandler.HandleEnroll),
			httpx.RateLimitMiddleware(r.enrollLimiter,
				routeKey("2fa-enroll", httpx.SubjectKeyExtractor)),
		),
	)

	// POST /validate - strict limit per subject (passcode guessing surface)
	r.Mux.Handle("POST /2fa/validate",
		httpx.Chain(http.HandlerFunc(twoFactorHandler.HandleValidate),
			httpx.RateLimitMiddleware(r.validateLimiter,
				routeKey("2fa-validate", httpx.SubjectKeyExtractor)),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store))
}

// routeKey namespaces limiter keys per route so routes sharing one backing
// store cannot collide on the same key with different windows.
func routeKey(route string, ex httpx.KeyExtractor) httpx.KeyExtractor {
	return func(req *http.Request) string {
		if k := ex(req); k != "" {
			return route + ":" + k
		}
		return ""
	}
}
