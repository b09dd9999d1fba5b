package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vistoriapro/vistoria/pkg/httpx"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	key := httpx.CompositeKeyExtractor(":", httpx.SubjectKeyExtractor, httpx.IPKeyExtractor)
	require.Equal(t, "192.168.1.1", key(req))

	req = req.WithContext(httpx.WithSubject(req.Context(), "acc-1"))
	require.Equal(t, "acc-1:192.168.1.1", key(req))
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := httpx.RateLimitConfig{Name: "t", RequestsPerWindow: 3, Window: time.Minute, Burst: 3}

	t.Run("blocks requests over limit", func(t *testing.T) {
		h := httpx.Chain(okHandler, httpx.RateLimitByIP(httpx.NewMemoryLimiter(), cfg))

		for i := range 3 {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.0.0.1:1"
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1"
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		h := httpx.Chain(okHandler, httpx.RateLimitByIP(httpx.NewMemoryLimiter(), cfg))
		for _, ip := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
			for range 3 {
				rec := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				req.RemoteAddr = ip
				h.ServeHTTP(rec, req)
				require.Equal(t, http.StatusOK, rec.Code)
			}
		}
	})

	t.Run("subject key beats shared IP", func(t *testing.T) {
		h := httpx.Chain(okHandler, httpx.RateLimitBySubject(httpx.NewMemoryLimiter(), cfg))
		for _, sub := range []string{"a", "b"} {
			for range 3 {
				rec := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				req = req.WithContext(httpx.WithSubject(req.Context(), sub))
				h.ServeHTTP(rec, req)
				require.Equal(t, http.StatusOK, rec.Code)
			}
		}
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		empty := func(*http.Request) string { return "" }
		h := httpx.Chain(okHandler, httpx.RateLimitMiddleware(httpx.NewMemoryLimiter(), cfg, empty))
		for range 10 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestParseRateLimitFromEnv(t *testing.T) {
	def := httpx.RateLimitConfig{Name: "x", RequestsPerWindow: 10, Window: time.Minute, Burst: 5}

	t.Run("no env uses defaults", func(t *testing.T) {
		require.Equal(t, def, httpx.ParseRateLimitFromEnv("TESTNONE", def))
	})

	t.Run("overrides all parameters", func(t *testing.T) {
		t.Setenv("RATELIMIT_TESTALL_REQUESTS", "42")
		t.Setenv("RATELIMIT_TESTALL_WINDOW_SEC", "30")
		t.Setenv("RATELIMIT_TESTALL_BURST", "7")

		got := httpx.ParseRateLimitFromEnv("TESTALL", def)
		require.Equal(t, 42, got.RequestsPerWindow)
		require.Equal(t, 30*time.Second, got.Window)
		require.Equal(t, 7, got.Burst)
		require.Equal(t, "x", got.Name)
	})

	t.Run("invalid and zero values are ignored", func(t *testing.T) {
		t.Setenv("RATELIMIT_TESTBAD_REQUESTS", "lots")
		t.Setenv("RATELIMIT_TESTBAD_WINDOW_SEC", "0")
		t.Setenv("RATELIMIT_TESTBAD_BURST", "-1")
		require.Equal(t, def, httpx.ParseRateLimitFromEnv("TESTBAD", def))
	})
}
