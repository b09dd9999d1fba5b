package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/vistoriapro/vistoria/api/access" // Swagger docs
	"github.com/vistoriapro/vistoria/internal/access/domain"
	"github.com/vistoriapro/vistoria/internal/access/gate"
	"github.com/vistoriapro/vistoria/internal/access/obs"
	"github.com/vistoriapro/vistoria/internal/access/service"
	"github.com/vistoriapro/vistoria/internal/access/store"
	"github.com/vistoriapro/vistoria/pkg/httpx"
	"github.com/vistoriapro/vistoria/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	metrics      *obs.Metrics
	limiter      httpx.Limiter

	store store.Store
	gate  *gate.Gate

	// IdentityReady reports whether session verification keys are loaded.
	IdentityReady func() bool

	Resolver       *service.EntitlementResolver
	CreditService  *service.CreditService
	DisputeService *service.DisputeService
}

func NewRouter(
	g *gate.Gate,
	st store.Store,
	limiter httpx.Limiter,
	metrics *obs.Metrics,
	buildVersion string,
	production bool,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		metrics:      metrics,
		limiter:      limiter,
		store:        st,
		gate:         g,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger, RedactLinkToken),
		httpx.SecureHeaders(production),
	}
	return r
}

func (r *Router) ApplyRoutes() {
	r.registerEntitlements()
	r.registerDisputes()
	r.registerAdmin()
	r.registerLandlord()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						VistorIA Pro Access API
//	@version					0.1.0
//	@description				Entitlements, credit consumption and landlord access links for VistorIA Pro.
//	@description
//	@description				Internal endpoints take the identity provider session token as a bearer credential.
//	@description				Landlord endpoints take an access link token, in the path or as a bearer credential.
//
//	@contact.name				VistorIA Pro
//	@contact.url				https://vistoriapro.com.br
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session JWT or access link token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// Instrument sits directly on the mux so it can see the matched pattern.
	httpx.Chain(r.metrics.Instrument(r.Mux), r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) internal(h http.Handler, min domain.Role, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		r.gate.Require(gate.InternalRole{Min: min}),
		httpx.RateLimitBySubject(r.limiter, limit),
	)
}

func (r *Router) registerEntitlements() {
	h := &EntitlementsHandler{}
	c := &CreditsHandler{CreditService: r.CreditService}

	r.Mux.Handle("GET /v1/me/entitlements", r.internal(h, domain.RoleUser, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/credits/consume", r.internal(c, domain.RoleUser, httpx.ModerateLimit))
}

func (r *Router) registerDisputes() {
	h := &DisputesHandler{DisputeService: r.DisputeService}

	r.Mux.Handle("GET /v1/disputes/{id}",
		r.internal(http.HandlerFunc(h.HandleGet), domain.RoleUser, httpx.LenientLimit))

	// Sharing mints credentials; keep it tight
	r.Mux.Handle("POST /v1/disputes/{id}/share",
		r.internal(http.HandlerFunc(h.HandleShare), domain.RoleUser, httpx.StrictLimit))
	r.Mux.Handle("DELETE /v1/disputes/{id}/grants/{email}",
		r.internal(http.HandlerFunc(h.HandleUnshare), domain.RoleUser, httpx.ModerateLimit))
}

func (r *Router) registerAdmin() {
	accounts := &AccountsHandler{Accounts: r.store.Accounts(), Resolver: r.Resolver}
	disputes := &DisputesHandler{DisputeService: r.DisputeService}
	overrides := &OverridesHandler{Policy: r.Resolver.Policy}

	r.Mux.Handle("GET /v1/admin/accounts",
		r.internal(http.HandlerFunc(accounts.HandleList), domain.RoleAdmin, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/admin/accounts/{id}",
		r.internal(http.HandlerFunc(accounts.HandleGet), domain.RoleAdmin, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/admin/disputes/{id}",
		r.internal(http.HandlerFunc(disputes.HandleStaffGet), domain.RoleAdmin, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/admin/overrides",
		r.internal(overrides, domain.RoleSuperAdmin, httpx.ModerateLimit))
}

func (r *Router) registerLandlord() {
	h := &LandlordHandler{DisputeService: r.DisputeService}
	review := gate.ExternalToken{Scope: domain.ScopeDisputeReview, ResourceParam: "id"}

	// Throttle by IP before the token is even looked at
	landlord := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.RateLimitByIP(r.limiter, httpx.LenientLimit),
			r.gate.Require(review),
		)
	}

	r.Mux.Handle("GET /v1/landlord/disputes/{id}", landlord(h.HandleDispute))
	r.Mux.Handle("GET /v1/landlord/{token}/disputes/{id}", landlord(h.HandleDispute))
	r.Mux.Handle("GET /v1/landlord/{token}/disputes/{id}/messages", landlord(h.HandleMessages))
	r.Mux.Handle("GET /v1/landlord/{token}/disputes/{id}/evidence", landlord(h.HandleEvidence))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limiter, httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.IdentityReady),
			httpx.RateLimitByIP(r.limiter, httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics", r.metrics.Handler())
}

// RedactLinkToken hides the access link in /v1/landlord/{token}/... paths
// before they reach the logs.
func RedactLinkToken(path string) string {
	const prefix = "/v1/landlord/"
	rest, ok := strings.CutPrefix(path, prefix)
	if !ok {
		return path
	}
	token, tail, _ := strings.Cut(rest, "/")
	if token == "" || token == "disputes" {
		return path
	}
	if tail == "" {
		return prefix + "{token}"
	}
	return prefix + "{token}/" + tail
}
