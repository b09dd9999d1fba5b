// Package idp verifies session JWTs minted by the external identity
// provider against its published JWKS.
package idp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vistoriapro/vistoria/internal/access/obs"
	"github.com/vistoriapro/vistoria/pkg/jwtx"
)

var (
	// ErrInvalidSession covers every reason a presented session is refused.
	ErrInvalidSession = errors.New("idp: invalid session")

	// ErrUnavailable means no signing keys could be loaded, so nothing can
	// be verified yet.
	ErrUnavailable = errors.New("idp: signing keys unavailable")
)

const maxJWKSBytes = 1 << 20

// Session is the verified part of an identity provider session token.
type Session struct {
	Subject   string
	SessionID string
	ExpiresAt time.Time
}

type Config struct {
	JWKSURL  string
	Issuer   string
	Audience string
	Leeway   time.Duration

	// RefreshInterval is the period of the background refresh.
	RefreshInterval time.Duration

	// MinRefreshGap throttles refreshes forced by an unknown kid.
	MinRefreshGap time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *obs.Metrics
	Now        func() time.Time
}

// Verifier checks RS256 session tokens. Keys are loaded lazily, refreshed
// on a timer, and refreshed on demand when a token names a kid we have
// not seen; concurrent refreshes collapse into one request.
type Verifier struct {
	cfg      Config
	keys     *jwtx.KeySet
	verifier *jwtx.RS256Verifier
	group    singleflight.Group

	mu         sync.Mutex
	lastForced time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewVerifier(cfg Config) (*Verifier, error) {
	if strings.TrimSpace(cfg.JWKSURL) == "" {
		return nil, errors.New("idp: jwks url is required")
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 15 * time.Minute
	}
	if cfg.MinRefreshGap <= 0 {
		cfg.MinRefreshGap = 30 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	keys := jwtx.NewKeySet()
	return &Verifier{
		cfg:  cfg,
		keys: keys,
		verifier: jwtx.NewVerifierRS256(keys, jwtx.VerifyOptions{
			Issuer:   cfg.Issuer,
			Audience: cfg.Audience,
			Leeway:   cfg.Leeway,
			Now:      cfg.Now,
		}),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

// Ready reports whether at least one signing key is loaded.
func (v *Verifier) Ready() bool { return v.keys.IsReady() }

// Verify validates token and returns its session. Failures wrap
// ErrInvalidSession, or ErrUnavailable when no keys could be loaded.
func (v *Verifier) Verify(ctx context.Context, token string) (Session, error) {
	if !v.keys.IsReady() {
		if err := v.Refresh(ctx); err != nil {
			return Session{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
	}

	claims, err := v.verifier.Verify(token)
	if errors.Is(err, jwtx.ErrUnknownKID) && v.allowForcedRefresh() {
		if rerr := v.Refresh(ctx); rerr == nil {
			claims, err = v.verifier.Verify(token)
		} else {
			v.cfg.Logger.Warn("jwks refresh on unknown kid failed", slog.Any("err", rerr))
		}
	}
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	s := Session{Subject: claims.Subject, SessionID: claims.SID}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.UTC()
	}
	return s, nil
}

func (v *Verifier) allowForcedRefresh() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.cfg.Now()
	if !v.lastForced.IsZero() && now.Sub(v.lastForced) < v.cfg.MinRefreshGap {
		return false
	}
	v.lastForced = now
	return true
}

// Refresh reloads the key set. Callers arriving while a refresh is in
// flight share its result.
func (v *Verifier) Refresh(ctx context.Context) error {
	ch := v.group.DoChan("jwks", func() (any, error) {
		return nil, v.fetch(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (v *Verifier) fetch(ctx context.Context) error {
	err := v.load(ctx)
	if err != nil {
		v.cfg.Metrics.JWKSRefreshed("error")
		return err
	}
	v.cfg.Metrics.JWKSRefreshed("ok")
	v.cfg.Logger.Debug("jwks refreshed", slog.Int("keys", v.keys.Len()))
	return nil
}

func (v *Verifier) load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.cfg.JWKSURL, nil)
	if err != nil {
		return fmt.Errorf("build jwks request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch jwks: unexpected status %d", resp.StatusCode)
	}

	var set jwtx.JWKS
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJWKSBytes)).Decode(&set); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}
	return v.keys.ResetFromJWKS(set)
}

// Start loads the keys once and keeps them fresh until Stop is called.
// A failed initial load is logged; Verify retries on demand.
func (v *Verifier) Start() {
	go v.run()
}

func (v *Verifier) Stop() {
	close(v.stopCh)
	<-v.doneCh
}

func (v *Verifier) run() {
	defer close(v.doneCh)

	ticker := time.NewTicker(v.cfg.RefreshInterval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-v.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	v.refreshLogged(ctx)
	for {
		select {
		case <-ticker.C:
			v.refreshLogged(ctx)
		case <-v.stopCh:
			return
		}
	}
}

func (v *Verifier) refreshLogged(ctx context.Context) {
	if err := v.Refresh(ctx); err != nil && ctx.Err() == nil {
		v.cfg.Logger.Warn("jwks refresh failed", slog.String("url", v.cfg.JWKSURL), slog.Any("err", err))
	}
}
