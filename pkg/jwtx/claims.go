package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vistoriapro/vistoria/pkg/idx"
)

// SessionClaims are the claims we read from identity provider session
// tokens. We only rely on the subject; the rest is for logging.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Session ID at the identity provider
	SID string `json:"sid,omitempty"`

	// Authorized party (the frontend origin the session was minted for)
	AuthorizedParty string `json:"azp,omitempty"`
}

// LinkClaims are carried by access links handed to external parties.
// A link is bound to exactly one scope.
type LinkClaims struct {
	jwt.RegisteredClaims

	Scope string `json:"scope"`

	// Display name of the external party, shown on the review page.
	Name string `json:"name,omitempty"`
}

// NewLinkClaims builds claims for a link valid from now until now+ttl.
func NewLinkClaims(subject, scope, name, issuer string, ttl time.Duration, now time.Time) LinkClaims {
	return LinkClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(now),
		},
		Scope: scope,
		Name:  name,
	}
}

// NewJTI returns a sortable unique identifier for the "jti" claim.
func NewJTI(now time.Time) string {
	return idx.NewAt(now).String()
}
