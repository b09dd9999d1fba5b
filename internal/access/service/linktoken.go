package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vistoriapro/vistoria/internal/access/obs"
	"github.com/vistoriapro/vistoria/pkg/cryptox"
	"github.com/vistoriapro/vistoria/pkg/jwtx"
	"github.com/vistoriapro/vistoria/pkg/slogx"
)

const (
	// linkKeyPurpose binds the derived MAC key to access links. Changing
	// it is equivalent to rotating the secret.
	linkKeyPurpose = "vistoria/access-link/hs256/v1"

	DefaultMaxLinkTTL = 30 * 24 * time.Hour
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LinkSubject is the external party a link is issued to.
type LinkSubject struct {
	Email string `validate:"required,email,max=254"`
	Name  string `validate:"max=120"`
}

// IssuedLink is a freshly signed link token. Only Fingerprint may be stored.
type IssuedLink struct {
	Token       string
	JTI         string
	KID         string
	Fingerprint string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// LinkClaims is the verified content of a link token.
type LinkClaims struct {
	Subject   string // lower-cased email
	Name      string
	Scope     string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type LinkTokenConfig struct {
	// Secret is the master secret; at least cryptox.MinSecretLength bytes.
	Secret []byte
	Issuer string
	MaxTTL time.Duration

	Now     func() time.Time
	Metrics *obs.Metrics
}

// LinkTokenService issues and verifies access links: HS256 JWTs bound to
// one scope. Links cannot be revoked one by one; rotating the secret
// changes the key id and invalidates every outstanding link.
type LinkTokenService struct {
	signer   *jwtx.HS256Signer
	verifier *jwtx.HS256Verifier
	issuer   string
	maxTTL   time.Duration
	now      func() time.Time
	metrics  *obs.Metrics
}

func NewLinkTokenService(cfg LinkTokenConfig) (*LinkTokenService, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("link tokens: issuer is required")
	}
	key, err := cryptox.DeriveKey(cfg.Secret, linkKeyPurpose, 32)
	if err != nil {
		return nil, fmt.Errorf("link tokens: %w", err)
	}
	kid := cryptox.KeyID(key)

	signer, err := jwtx.NewSignerHS256(kid, key)
	if err != nil {
		return nil, err
	}

	s := &LinkTokenService{
		signer:  signer,
		issuer:  cfg.Issuer,
		maxTTL:  cfg.MaxTTL,
		now:     cfg.Now,
		metrics: cfg.Metrics,
	}
	if s.maxTTL <= 0 {
		s.maxTTL = DefaultMaxLinkTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.verifier = jwtx.NewVerifierHS256(kid, key, jwtx.VerifyOptions{
		Issuer: cfg.Issuer,
		Now:    s.now,
	})
	return s, nil
}

// KID identifies the current secret generation.
func (s *LinkTokenService) KID() string { return s.signer.KID() }

// MaxTTL is the longest lifetime Issue grants.
func (s *LinkTokenService) MaxTTL() time.Duration { return s.maxTTL }

// Issue signs a link for subject bound to scope. ttl must be at least a
// second and is capped at MaxTTL.
// The caller must already have established that the requester owns the
// resource being shared.
func (s *LinkTokenService) Issue(subject LinkSubject, scope string, ttl time.Duration) (IssuedLink, error) {
	subject.Email = strings.ToLower(strings.TrimSpace(subject.Email))
	subject.Name = strings.TrimSpace(subject.Name)
	scope = strings.TrimSpace(scope)

	// exp is kept in whole seconds; anything shorter may be expired on arrival
	if ttl < time.Second || scope == "" {
		return IssuedLink{}, ErrInvalidLinkRequest
	}
	if err := validate.Struct(subject); err != nil {
		return IssuedLink{}, fmt.Errorf("%w: %v", ErrInvalidLinkRequest, err)
	}
	ttl = min(ttl, s.maxTTL)

	now := s.now()
	claims := jwtx.NewLinkClaims(subject.Email, scope, subject.Name, s.issuer, ttl, now)
	token, err := s.signer.Sign(claims)
	if err != nil {
		return IssuedLink{}, fmt.Errorf("sign link: %w", err)
	}

	s.metrics.LinkIssued(scope)
	return IssuedLink{
		Token:       token,
		JTI:         claims.ID,
		KID:         s.signer.KID(),
		Fingerprint: cryptox.FingerprintToken(token),
		IssuedAt:    claims.IssuedAt.UTC(),
		ExpiresAt:   claims.ExpiresAt.UTC(),
	}, nil
}

// Verify checks signature, issuer, validity window and scope. Every
// failure is reported as ErrInvalidLinkToken; the precise cause only goes
// to the log and the rejection counter.
func (s *LinkTokenService) Verify(ctx context.Context, token, expectedScope string) (LinkClaims, error) {
	log := slogx.FromContext(ctx)

	reject := func(reason string, err error) (LinkClaims, error) {
		s.metrics.LinkRejected(reason)
		log.Info("access link rejected", slog.String("reason", reason), slog.Any("err", err))
		return LinkClaims{}, ErrInvalidLinkToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return reject("missing", nil)
	}

	c, err := s.verifier.Verify(token)
	if err != nil {
		return reject(rejectReason(err), err)
	}
	if c.Subject == "" {
		return reject("missing_subject", nil)
	}
	if c.Scope != expectedScope {
		return reject("wrong_scope", fmt.Errorf("scope %q, want %q", c.Scope, expectedScope))
	}

	out := LinkClaims{
		Subject: strings.ToLower(c.Subject),
		Name:    c.Name,
		Scope:   c.Scope,
		JTI:     c.ID,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.UTC()
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.UTC()
	}
	return out, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return "expired"
	case errors.Is(err, jwtx.ErrNotYetValid):
		return "not_yet_valid"
	case errors.Is(err, jwtx.ErrUnknownKID):
		return "unknown_kid"
	case errors.Is(err, jwtx.ErrInvalidSig):
		return "bad_signature"
	case errors.Is(err, jwtx.ErrMalformed):
		return "malformed"
	case errors.Is(err, jwtx.ErrIssuer):
		return "issuer"
	default:
		return "invalid_claims"
	}
}
