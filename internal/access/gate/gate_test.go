package gate_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vistoriapro/vistoria/internal/access/domain"
	"github.com/vistoriapro/vistoria/internal/access/gate"
	"github.com/vistoriapro/vistoria/internal/access/idp"
	"github.com/vistoriapro/vistoria/internal/access/locale"
	"github.com/vistoriapro/vistoria/internal/access/obs"
	"github.com/vistoriapro/vistoria/internal/access/service"
	"github.com/vistoriapro/vistoria/internal/access/store"
	"github.com/vistoriapro/vistoria/internal/access/store/drivers/sqlite"
	"github.com/vistoriapro/vistoria/pkg/httpx"
)

// fakeSessions maps bearer tokens to identity provider subjects.
type fakeSessions map[string]string

func (f fakeSessions) Verify(_ context.Context, token string) (idp.Session, error) {
	if token == "outage" {
		return idp.Session{}, errors.New("jwks endpoint down")
	}
	sub, ok := f[token]
	if !ok {
		return idp.Session{}, idp.ErrInvalidSession
	}
	return idp.Session{Subject: sub}, nil
}

type fixture struct {
	gate  *gate.Gate
	store store.Store
	links *service.LinkTokenService
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	for _, a := range []domain.Account{
		{ExternalID: "user_tenant", Email: "tenant@example.com", Role: domain.RoleUser, CreditBalance: 1},
		{ExternalID: "user_admin", Email: "admin@vistoriapro.com.br", Role: domain.RoleAdmin},
		{ExternalID: "user_root", Email: "root@vistoriapro.com.br", Role: domain.RoleSuperAdmin},
	} {
		_, err := st.Accounts().UpsertAccount(ctx, a)
		require.NoError(t, err)
	}

	f := &fixture{store: st, now: time.Now().UTC().Truncate(time.Second)}
	f.links, err = service.NewLinkTokenService(service.LinkTokenConfig{
		Secret: []byte(strings.Repeat("k", 32)),
		Issuer: "vistoria-test",
		Now:    func() time.Time { return f.now },
	})
	require.NoError(t, err)

	f.gate = &gate.Gate{
		Sessions: fakeSessions{
			"tenant-session": "user_tenant",
			"admin-session":  "user_admin",
			"root-session":   "user_root",
			"ghost-session":  "user_not_synced",
		},
		Resolver: &service.EntitlementResolver{Accounts: st.Accounts()},
		Links:    f.links,
		Grants:   st.Grants(),
		Metrics:  obs.NewMetrics(),
		Now:      func() time.Time { return f.now },
	}
	return f
}

func (f *fixture) grant(t *testing.T, resourceID, email string, ttl time.Duration) string {
	t.Helper()
	link, err := f.links.Issue(service.LinkSubject{Email: email}, domain.ScopeDisputeReview, ttl)
	require.NoError(t, err)
	_, err = f.store.Grants().UpsertGrant(context.Background(), domain.Grant{
		ResourceID: resourceID, SubjectEmail: email, ExpiresAt: link.ExpiresAt,
	})
	require.NoError(t, err)
	return link.Token
}

// serve mounts p in front of a handler that echoes the gate context.
func (f *fixture) serve(pattern string, p gate.Policy, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.Handle(pattern, f.gate.Require(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := gate.FromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"account":  c.Account().ID,
			"role":     c.Entitlement.Role,
			"landlord": c.Link.Subject,
			"resource": c.ResourceID,
			"subject":  httpx.SubjectFromContext(r.Context()),
		})
	})))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func internalReq(session string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/v1/admin/thing", nil)
	if session != "" {
		r.Header.Set("Authorization", "Bearer "+session)
	}
	return r
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestInternalRole(t *testing.T) {
	f := newFixture(t)
	admin := gate.InternalRole{Min: domain.RoleAdmin}
	const route = "GET /v1/admin/thing"

	cases := []struct {
		name    string
		session string
		status  int
		code    string
	}{
		{"no session", "", http.StatusUnauthorized, "unauthenticated"},
		{"invalid session", "forged", http.StatusUnauthorized, "unauthenticated"},
		{"account not synced", "ghost-session", http.StatusUnauthorized, "unauthenticated"},
		{"user below admin", "tenant-session", http.StatusForbidden, "forbidden"},
		{"verifier outage", "outage", http.StatusInternalServerError, "server_error"},
		{"admin", "admin-session", http.StatusOK, ""},
		{"super admin", "root-session", http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.serve(route, admin, internalReq(tc.session))
			require.Equal(t, tc.status, rec.Code)
			body := decode(t, rec)
			if tc.code != "" {
				require.Equal(t, tc.code, body["error"])
				require.NotEmpty(t, body["error_description"])
				return
			}
			require.NotEmpty(t, body["account"])
			require.Equal(t, body["account"], body["subject"])
		})
	}

	t.Run("unauthenticated carries challenge", func(t *testing.T) {
		rec := f.serve(route, admin, internalReq(""))
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
	})

	t.Run("lower case scheme", func(t *testing.T) {
		r := internalReq("")
		r.Header.Set("Authorization", "bearer admin-session")
		require.Equal(t, http.StatusOK, f.serve(route, admin, r).Code)
	})
}

func TestInternalRoleStoreFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Close())

	rec := f.serve("GET /v1/admin/thing", gate.InternalRole{Min: domain.RoleUser}, internalReq("tenant-session"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "server_error", body["error"])
	require.NotContains(t, rec.Body.String(), "sql")
}

func TestExternalToken(t *testing.T) {
	f := newFixture(t)
	policy := gate.ExternalToken{Scope: domain.ScopeDisputeReview, ResourceParam: "id"}
	const (
		pathRoute   = "GET /v1/landlord/{token}/disputes/{id}"
		headerRoute = "GET /v1/landlord/disputes/{id}"
	)

	token := f.grant(t, "D1", "landlord@example.com", time.Hour)

	t.Run("token in path", func(t *testing.T) {
		rec := f.serve(pathRoute, policy, httptest.NewRequest(http.MethodGet, "/v1/landlord/"+token+"/disputes/D1", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		require.Equal(t, "landlord@example.com", body["landlord"])
		require.Equal(t, "D1", body["resource"])
		require.True(t, strings.HasPrefix(body["subject"].(string), "link:"))
		require.Empty(t, body["account"])
	})

	t.Run("token in header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/v1/landlord/disputes/D1", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		require.Equal(t, http.StatusOK, f.serve(headerRoute, policy, r).Code)
	})

	t.Run("link for another dispute", func(t *testing.T) {
		rec := f.serve(pathRoute, policy, httptest.NewRequest(http.MethodGet, "/v1/landlord/"+token+"/disputes/D2", nil))
		require.Equal(t, http.StatusForbidden, rec.Code)
		body := decode(t, rec)
		require.Equal(t, string(locale.AccessDenied), body["error"])
		require.Equal(t, "pt-BR", rec.Header().Get("Content-Language"))
	})

	t.Run("no token", func(t *testing.T) {
		rec := f.serve(headerRoute, policy, httptest.NewRequest(http.MethodGet, "/v1/landlord/disputes/D1", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, string(locale.LinkInvalid), decode(t, rec)["error"])
	})

	t.Run("tampered token in english", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/v1/landlord/"+token+"x/disputes/D1", nil)
		r.Header.Set("Accept-Language", "en-US,en;q=0.8")
		rec := f.serve(pathRoute, policy, r)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decode(t, rec)
		require.Equal(t, string(locale.LinkInvalid), body["error"])
		require.Equal(t, "en", rec.Header().Get("Content-Language"))
		require.Contains(t, body["message"], "expired")
	})

	t.Run("wrong scope", func(t *testing.T) {
		other := gate.ExternalToken{Scope: "inspection_review", ResourceParam: "id"}
		rec := f.serve(pathRoute, other, httptest.NewRequest(http.MethodGet, "/v1/landlord/"+token+"/disputes/D1", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("grant expired server side", func(t *testing.T) {
		revoked := f.grant(t, "D3", "revoked@example.com", time.Hour)
		require.NoError(t, f.store.Grants().ExpireGrant(context.Background(), "D3", "revoked@example.com", f.now))

		rec := f.serve(pathRoute, policy, httptest.NewRequest(http.MethodGet, "/v1/landlord/"+revoked+"/disputes/D3", nil))
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("link expired", func(t *testing.T) {
		short := f.grant(t, "D4", "late@example.com", time.Minute)
		f.now = f.now.Add(time.Minute)
		defer func() { f.now = f.now.Add(-time.Minute) }()

		rec := f.serve(pathRoute, policy, httptest.NewRequest(http.MethodGet, "/v1/landlord/"+short+"/disputes/D4", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestExternalTokenStoreFailure(t *testing.T) {
	f := newFixture(t)
	token := f.grant(t, "D1", "landlord@example.com", time.Hour)
	require.NoError(t, f.store.Close())

	rec := f.serve("GET /v1/landlord/{token}/disputes/{id}",
		gate.ExternalToken{Scope: domain.ScopeDisputeReview, ResourceParam: "id"},
		httptest.NewRequest(http.MethodGet, "/v1/landlord/"+token+"/disputes/D1", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, string(locale.Unavailable), decode(t, rec)["error"])
}

func TestGuardWithoutMiddleware(t *testing.T) {
	f := newFixture(t)

	c, d := f.gate.Guard(internalReq("tenant-session"), gate.InternalRole{Min: domain.RoleUser})
	require.Nil(t, d)
	require.Equal(t, domain.RoleUser, c.Entitlement.Role)
	require.Equal(t, "tenant@example.com", c.Account().Email)

	_, d = f.gate.Guard(internalReq("tenant-session"), gate.InternalRole{Min: domain.RoleSuperAdmin})
	require.NotNil(t, d)
	require.Equal(t, http.StatusForbidden, d.Status)
	require.False(t, d.External)
}
