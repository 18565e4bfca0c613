package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/marketauth/internal/auth/csrf"
	"github.com/aussiebroadwan/marketauth/internal/auth/domain"
	"github.com/aussiebroadwan/marketauth/internal/auth/guard"
	"github.com/aussiebroadwan/marketauth/internal/auth/service"
	"github.com/aussiebroadwan/marketauth/internal/auth/store"
	"github.com/aussiebroadwan/marketauth/internal/auth/throttle"
	"github.com/aussiebroadwan/marketauth/pkg/httpx"
	"github.com/aussiebroadwan/marketauth/pkg/jwtx"
	"github.com/aussiebroadwan/marketauth/pkg/slogx"

	_ "github.com/aussiebroadwan/marketauth/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	tierStrict  = "strict"
	tierLenient = "lenient"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *jwtx.Codec
	csrf         *csrf.Protector
	cookies      CookieConfig
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	SessionService     *service.SessionService
	UserService        *service.UserService
	RolesService       *service.RolesService
	PermissionsService *service.PermissionsService
	Resolver           *service.PermissionResolver

	// Strict and Lenient back the two rate limit tiers. They may be the same
	// limiter; keys are prefixed by tier.
	Strict  throttle.Limiter
	Lenient throttle.Limiter

	// ClientKey identifies the caller for rate limiting. It defaults to the
	// socket address; forwarding headers are client-controlled.
	ClientKey httpx.KeyExtractor

	// ThrottleStatus reports the limiter backend on /readyz. Optional.
	ThrottleStatus func() string
}

func NewRouter(
	codec *jwtx.Codec,
	protector *csrf.Protector,
	cookies CookieConfig,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		csrf:         protector,
		cookies:      cookies,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		Strict:       throttle.NewMemoryLimiter(throttle.DefaultStrict, nil),
		Lenient:      throttle.NewMemoryLimiter(throttle.DefaultLenient, nil),
		ClientKey:    httpx.DirectIPKeyExtractor,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSession()
	r.registerUsers()
	r.registerRoles()
	r.registerPermissions()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			MarketAuth API
//	@version		0.1.0
//	@description	Session authentication and role based access control for the market data APIs.
//	@description
//	@description	Tokens are HS256 JWTs delivered as http-only cookies. State-changing requests need a CSRF
//	@description	token from GET /api/csrf-token echoed in the X-CSRF-Token header.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/marketauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	CookieAuth
//	@in							cookie
//	@name						accessToken
//	@description				Access token cookie set by /api/auth/login.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) strict() guard.Guard  { return guard.RateLimit(r.Strict, tierStrict, r.ClientKey) }
func (r *Router) lenient() guard.Guard { return guard.RateLimit(r.Lenient, tierLenient, r.ClientKey) }

// authenticated returns the credential and role guards every protected route
// starts with.
func (r *Router) authenticated(roles ...string) []guard.Guard {
	return []guard.Guard{
		guard.Credential(r.codec, r.cookies.AccessName),
		guard.RequireRole(roles...),
	}
}

func (r *Router) permissions(perms ...string) guard.Guard {
	return guard.RequirePermissions(r.Resolver, perms...)
}

func (r *Router) handle(pattern string, h http.HandlerFunc, guards ...guard.Guard) {
	r.Mux.Handle(pattern, httpx.Chain(h, guard.Chain(guards...)))
}

func (r *Router) registerSession() {
	h := &SessionHandler{SessionService: r.SessionService, Cookies: r.cookies}

	// Credential endpoints: CSRF then strict limit by client
	r.handle("POST /api/auth/login", h.HandleLogin, guard.CSRF(r.csrf), r.strict())
	r.handle("POST /api/auth/refresh-token", h.HandleRefresh, guard.CSRF(r.csrf), r.strict())

	// Logout must always succeed, so it carries no guards
	r.handle("POST /api/auth/logout", h.HandleLogout)

	r.handle("GET /api/auth/me", h.HandleMe, append(
		r.authenticated(domain.RoleAdmin, domain.RoleUser),
		r.permissions(domain.PermGetLoggedInUser),
		r.lenient(),
	)...)

	r.handle("GET /api/auth/loggedin", h.HandleLoggedIn)
	r.handle("GET /api/csrf-token", CSRFTokenHandler(r.csrf))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService, Cookies: r.cookies}

	// Public signup endpoint - strict rate limit by client
	r.handle("POST /api/users/signup", h.HandleSignup, r.strict())

	r.handle("GET /api/users", h.HandleList, append(
		r.authenticated(domain.RoleAdmin),
		r.permissions(domain.PermGetAllUsers),
		r.lenient(),
	)...)

	r.handle("GET /api/users/{id}", h.HandleGet, append(
		r.authenticated(domain.RoleAdmin),
		r.permissions(domain.PermGetAllUsers),
		r.lenient(),
	)...)

	r.handle("DELETE /api/users/{id}", h.HandleDelete, append(
		r.authenticated(domain.RoleAdmin),
		guard.CSRF(r.csrf),
		r.permissions(domain.PermDeleteCurrentUser),
		r.strict(),
	)...)

	r.handle("PATCH /api/users/{id}/activate", h.HandleActivate, append(
		r.authenticated(domain.RoleAdmin),
		guard.CSRF(r.csrf),
		r.permissions(domain.PermUpdateCurrentUser),
		r.strict(),
	)...)

	r.handle("POST /api/auth/change-password", h.HandleChangePassword, append(
		r.authenticated(domain.RoleAdmin, domain.RoleUser),
		guard.CSRF(r.csrf),
		r.permissions(domain.PermChangePassword),
		r.lenient(),
	)...)
}

func (r *Router) registerRoles() {
	h := &RolesHandler{RolesService: r.RolesService}

	r.handle("GET /api/roles", h.HandleList, append(
		r.authenticated(domain.RoleAdmin),
		r.permissions(domain.PermGetRoles),
		r.lenient(),
	)...)

	r.handle("POST /api/roles", h.HandleCreate, append(
		r.authenticated(domain.RoleAdmin),
		guard.CSRF(r.csrf),
		r.permissions(domain.PermCreateRole),
		r.strict(),
	)...)

	r.handle("PUT /api/roles/{name}/permissions", h.HandleSetPermissions, append(
		r.authenticated(domain.RoleAdmin),
		guard.CSRF(r.csrf),
		r.permissions(domain.PermUpdateRole),
		r.strict(),
	)...)

	r.handle("DELETE /api/roles/{name}", h.HandleDelete, append(
		r.authenticated(domain.RoleAdmin),
		guard.CSRF(r.csrf),
		r.permissions(domain.PermDeleteRole),
		r.strict(),
	)...)
}

func (r *Router) registerPermissions() {
	h := &PermissionsHandler{PermissionsService: r.PermissionsService}

	r.handle("GET /api/permissions", h.HandleList, append(
		r.authenticated(domain.RoleAdmin),
		r.permissions(domain.PermGetPermissions),
		r.lenient(),
	)...)

	r.handle("GET /api/permissions/{id}", h.HandleGet, append(
		r.authenticated(domain.RoleAdmin),
		r.permissions(domain.PermGetPermission),
		r.lenient(),
	)...)

	r.handle("POST /api/permissions", h.HandleCreate, append(
		r.authenticated(domain.RoleAdmin),
		guard.CSRF(r.csrf),
		r.permissions(domain.PermCreatePermission),
		r.strict(),
	)...)

	r.handle("PUT /api/permissions/{id}", h.HandleRename, append(
		r.authenticated(domain.RoleAdmin),
		guard.CSRF(r.csrf),
		r.permissions(domain.PermUpdatePermission),
		r.strict(),
	)...)

	r.handle("DELETE /api/permissions/{id}", h.HandleDelete, append(
		r.authenticated(domain.RoleAdmin),
		guard.CSRF(r.csrf),
		r.permissions(domain.PermDeletePermission),
		r.strict(),
	)...)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.handle("GET /livez", LivezHandler(r.startTime, r.buildVersion), r.lenient())
	r.handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.ThrottleStatus), r.lenient())
}
