// Package guard runs ordered authorization checks in front of a handler.
// Each Guard either passes or fails with an *authsdk.APIError; the first
// failure is written and nothing after it runs.
package guard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/marketauth/internal/auth/domain"
	"github.com/aussiebroadwan/marketauth/pkg/authsdk"
	"github.com/aussiebroadwan/marketauth/pkg/httpx"
	"github.com/aussiebroadwan/marketauth/pkg/slogx"
)

// Resolver maps a role to the permissions it grants.
type Resolver interface {
	Resolve(ctx context.Context, role string) (domain.PermissionSet, error)
}

// RequestContext is the per-request state guards read and fill in. It lives
// for one request and is never persisted.
type RequestContext struct {
	Request *http.Request

	// Header is the response header, for guards that advertise state such as
	// remaining rate limit.
	Header http.Header

	// Principal is set by the credential guard.
	Principal *domain.Principal

	perms    domain.PermissionSet
	permsErr error
	resolved bool
}

// Permissions resolves the principal's permissions once per request.
func (rc *RequestContext) Permissions(res Resolver) (domain.PermissionSet, error) {
	if !rc.resolved {
		rc.perms, rc.permsErr = res.Resolve(rc.Request.Context(), rc.Principal.Role)
		rc.resolved = true
	}
	return rc.perms, rc.permsErr
}

// Guard is one check in a chain.
type Guard interface {
	Check(rc *RequestContext) error
}

// Func adapts a function to a Guard.
type Func func(rc *RequestContext) error

func (f Func) Check(rc *RequestContext) error { return f(rc) }

type ctxKey struct{}

// FromContext returns the RequestContext a chain attached, if any.
func FromContext(ctx context.Context) (*RequestContext, bool) {
	rc, ok := ctx.Value(ctxKey{}).(*RequestContext)
	return rc, ok
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	rc, ok := FromContext(ctx)
	if !ok || rc.Principal == nil {
		return domain.Principal{}, false
	}
	return *rc.Principal, true
}

// Chain runs guards in order before the handler. Guard order is the caller's
// responsibility; a permission guard needs a credential guard ahead of it.
func Chain(guards ...Guard) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := &RequestContext{Request: r, Header: w.Header()}

			for _, g := range guards {
				if err := g.Check(rc); err != nil {
					writeError(w, rc.Request, err)
					return
				}
			}

			ctx := context.WithValue(rc.Request.Context(), ctxKey{}, rc)
			next.ServeHTTP(w, rc.Request.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) {
		apiErr.WriteError(w)
		return
	}

	slogx.FromContext(r.Context()).Error("guard failed", slog.Any("error", err))
	authsdk.ErrInternalFailure.WriteError(w)
}
