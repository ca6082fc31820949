package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/federation"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/generator"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/service"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/store"
	"github.com/adwaithkm1/web-code-generator/pkg/httpx"
	"github.com/adwaithkm1/web-code-generator/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	startTime     time.Time
	buildVersion  string
	secureCookies bool
	logger        *slog.Logger

	store        store.Store
	AuthService  *service.AuthService
	QuotaService *service.QuotaService
	ShareService *service.ShareService
	Generator    *generator.Client
	Federation   *federation.GoogleProvider
}

func NewRouter(
	buildVersion string,
	secureCookies bool,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		startTime:     time.Now(),
		buildVersion:  buildVersion,
		secureCookies: secureCookies,
		store:         st,
		logger:        logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerGenerate()
	r.registerShares()
	r.registerFederation()
	r.registerSystem()
}

// sessionResolver adapts AuthService to the transport-level session guard.
type sessionResolver struct {
	auth *service.AuthService
}

func (sr sessionResolver) Resolve(ctx context.Context, token string) (int64, string, error) {
	acc, sessionID, err := sr.auth.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			return 0, "", httpx.ErrUnauthenticated
		}
		return 0, "", err
	}
	return acc.ID, sessionID, nil
}

func (r *Router) sessionGuard() httpx.Middleware {
	return httpx.SessionMiddleware(sessionResolver{auth: r.AuthService})
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService:   r.AuthService,
		SecureCookies: r.secureCookies,
	}

	// Credential endpoints take the strict limit to slow brute force.
	r.Mux.Handle("POST /api/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /api/logout", http.HandlerFunc(h.HandleLogout))

	r.Mux.Handle("GET /api/user",
		httpx.Chain(http.HandlerFunc(h.HandleUser),
			r.sessionGuard(),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerGenerate() {
	h := &GenerateHandler{
		QuotaService: r.QuotaService,
		Generator:    r.Generator,
	}

	r.Mux.Handle("POST /api/generate",
		httpx.Chain(h,
			r.sessionGuard(),
		),
	)
}

func (r *Router) registerShares() {
	h := &SharesHandler{
		ShareService: r.ShareService,
		QuotaService: r.QuotaService,
	}

	r.Mux.Handle("POST /api/share",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.sessionGuard(),
		),
	)

	// Anonymous fetch; high limit keyed on IP.
	r.Mux.Handle("GET /api/share/{shareId}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	r.Mux.Handle("GET /api/user/shared",
		httpx.Chain(http.HandlerFunc(h.HandleListMine),
			r.sessionGuard(),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerFederation() {
	if !r.Federation.Enabled() {
		return
	}

	h := &FederationHandler{
		AuthService:   r.AuthService,
		Provider:      r.Federation,
		SecureCookies: r.secureCookies,
	}

	r.Mux.Handle("GET /auth/google",
		httpx.Chain(http.HandlerFunc(h.HandleStart),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /auth/google/callback",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
