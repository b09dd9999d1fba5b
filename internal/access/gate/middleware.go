package gate

import (
	"context"
	"net/http"

	"github.com/vistoriapro/vistoria/internal/access/locale"
	"github.com/vistoriapro/vistoria/pkg/httpx"
)

type ctxKey struct{}

// FromContext returns the Context stored by Require.
func FromContext(ctx context.Context) (Context, bool) {
	c, ok := ctx.Value(ctxKey{}).(Context)
	return c, ok
}

// WithContext stores c on ctx.
func WithContext(ctx context.Context, c Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// Require runs p before next and writes the denial when it fails.
func (g *Gate) Require(p Policy) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, d := g.Guard(r, p)
			if d != nil {
				WriteDenial(w, r, d)
				return
			}

			ctx := WithContext(r.Context(), c)
			if c.External {
				ctx = httpx.WithSubject(ctx, "link:"+c.Link.JTI)
			} else {
				ctx = httpx.WithSubject(ctx, c.Account().ID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExternalError is the body sent to landlords. It names the kind of
// failure and nothing else.
type ExternalError struct {
	Error   locale.Kind `json:"error"`
	Message string      `json:"message"`
}

// WriteDenial renders d: JSON error codes for internal callers, a short
// localized message for external ones.
func WriteDenial(w http.ResponseWriter, r *http.Request, d *Denial) {
	if d.External {
		WriteExternal(w, r, d.Status, d.Kind)
		return
	}
	if d.Status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	}
	httpx.WriteError(w, d.Status, d.Code, description(d.Code))
}

// WriteExternal writes a localized landlord error.
func WriteExternal(w http.ResponseWriter, r *http.Request, status int, kind locale.Kind) {
	tag := locale.FromRequest(r)
	w.Header().Set("Content-Language", tag.String())
	w.Header().Set("Vary", "Accept-Language")
	httpx.WriteJSON(w, status, ExternalError{Error: kind, Message: locale.Message(tag, kind)})
}

func description(code string) string {
	switch code {
	case "unauthenticated":
		return "a valid session is required"
	case "forbidden":
		return "your role does not allow this action"
	default:
		return "internal error"
	}
}
