// Package gate decides whether a request may proceed. Internal routes are
// guarded by the caller's identity provider session and account role;
// landlord routes by an access link plus a live grant on the resource.
package gate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vistoriapro/vistoria/internal/access/domain"
	"github.com/vistoriapro/vistoria/internal/access/idp"
	"github.com/vistoriapro/vistoria/internal/access/locale"
	"github.com/vistoriapro/vistoria/internal/access/obs"
	"github.com/vistoriapro/vistoria/internal/access/service"
	"github.com/vistoriapro/vistoria/internal/access/store"
	"github.com/vistoriapro/vistoria/pkg/slogx"
)

// SessionVerifier validates identity provider session tokens. Errors
// wrapping idp.ErrInvalidSession are the caller's fault; anything else is
// treated as an outage.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (idp.Session, error)
}

type EntitlementResolver interface {
	Resolve(ctx context.Context, externalID string) (service.Entitlement, error)
}

type LinkVerifier interface {
	Verify(ctx context.Context, token, expectedScope string) (service.LinkClaims, error)
}

// Gate evaluates policies. It holds no per-request state.
type Gate struct {
	Sessions SessionVerifier
	Resolver EntitlementResolver
	Links    LinkVerifier
	Grants   store.Grants
	Metrics  *obs.Metrics
	Now      func() time.Time
}

func (g *Gate) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// Policy is InternalRole or ExternalToken.
type Policy interface {
	name() string
	evaluate(g *Gate, r *http.Request) (Context, *Denial)
}

// InternalRole admits authenticated accounts whose role is at least Min.
type InternalRole struct {
	Min domain.Role
}

func (InternalRole) name() string { return "internal_role" }

// ExternalToken admits holders of a valid access link for Scope that also
// hold an unexpired grant on the resource named by the ResourceParam path
// value.
type ExternalToken struct {
	Scope         string
	ResourceParam string
}

func (ExternalToken) name() string { return "external_token" }

// Context is what a granted request carries downstream.
type Context struct {
	// Internal
	Entitlement service.Entitlement

	// External
	Link       service.LinkClaims
	ResourceID string

	External bool
}

// Account is the authenticated account, zero for external callers.
func (c Context) Account() domain.Account { return c.Entitlement.Account }

// Denial is a refused request. Cause is for the log only.
type Denial struct {
	Status   int
	Code     string
	Kind     locale.Kind
	External bool
	Cause    error
}

// Guard evaluates p against r. Exactly one of the results is meaningful.
func (g *Gate) Guard(r *http.Request, p Policy) (Context, *Denial) {
	c, d := p.evaluate(g, r)

	log := slogx.FromContext(r.Context()).With(slog.String("policy", p.name()))
	if d == nil {
		g.Metrics.Decision(p.name(), "allowed")
		log.Debug("access granted")
		return c, nil
	}

	g.Metrics.Decision(p.name(), d.Code)
	switch {
	case d.Status >= http.StatusInternalServerError:
		log.Error("access check failed", slog.String("outcome", d.Code), slog.Any("err", d.Cause))
	default:
		log.Warn("access denied", slog.String("outcome", d.Code), slog.Any("err", d.Cause))
	}
	return Context{}, d
}

func (p InternalRole) evaluate(g *Gate, r *http.Request) (Context, *Denial) {
	ctx := r.Context()

	// 1. Session credential
	token, ok := bearer(r)
	if !ok {
		return Context{}, deny(http.StatusUnauthorized, "unauthenticated", nil)
	}
	sess, err := g.Sessions.Verify(ctx, token)
	switch {
	case errors.Is(err, idp.ErrInvalidSession):
		return Context{}, deny(http.StatusUnauthorized, "unauthenticated", err)
	case err != nil:
		return Context{}, deny(http.StatusInternalServerError, "server_error", err)
	}

	// 2. Account and role. A missing account is an identity that has not
	// been synced yet; it is reported like a bad session.
	ent, err := g.Resolver.Resolve(ctx, sess.Subject)
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		return Context{}, deny(http.StatusUnauthorized, "unauthenticated", err)
	case err != nil:
		return Context{}, deny(http.StatusInternalServerError, "server_error", err)
	}
	if !ent.Role.AtLeast(p.Min) {
		return Context{}, deny(http.StatusForbidden, "forbidden", nil)
	}

	return Context{Entitlement: ent}, nil
}

func (p ExternalToken) evaluate(g *Gate, r *http.Request) (Context, *Denial) {
	ctx := r.Context()

	// 1. Link token from the header, else the path
	token, ok := bearer(r)
	if !ok {
		token = r.PathValue("token")
	}
	if token == "" {
		return Context{}, denyExternal(http.StatusUnauthorized, "invalid_token", locale.LinkInvalid, nil)
	}
	claims, err := g.Links.Verify(ctx, token, p.Scope)
	switch {
	case errors.Is(err, service.ErrInvalidLinkToken):
		return Context{}, denyExternal(http.StatusUnauthorized, "invalid_token", locale.LinkInvalid, err)
	case err != nil:
		return Context{}, denyExternal(http.StatusInternalServerError, "server_error", locale.Unavailable, err)
	}

	// 2. Grant, checked on every request so expiring it takes effect at once
	resourceID := r.PathValue(p.ResourceParam)
	if resourceID == "" {
		return Context{}, denyExternal(http.StatusNotFound, "not_found", locale.NotFound, nil)
	}
	ok, err = g.Grants.HasAccess(ctx, resourceID, claims.Subject, g.now())
	switch {
	case err != nil:
		return Context{}, denyExternal(http.StatusInternalServerError, "server_error", locale.Unavailable, err)
	case !ok:
		return Context{}, denyExternal(http.StatusForbidden, "forbidden", locale.AccessDenied, nil)
	}

	return Context{Link: claims, ResourceID: resourceID, External: true}, nil
}

func deny(status int, code string, cause error) *Denial {
	return &Denial{Status: status, Code: code, Cause: cause}
}

func denyExternal(status int, code string, kind locale.Kind, cause error) *Denial {
	return &Denial{Status: status, Code: code, Kind: kind, External: true, Cause: cause}
}

func bearer(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < len("Bearer ") || !strings.EqualFold(h[:len("Bearer ")], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(h[len("Bearer "):])
	return token, token != ""
}
