package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	KID() string
	Sign(jwt.Claims) (string, error)
}

// MinHMACKeySize is the smallest HS256 key we will sign with.
const MinHMACKeySize = 32

// HS256Signer signs with a symmetric key only this process holds.
type HS256Signer struct {
	kid string
	key []byte
}

// NewSignerHS256 creates an HS256 signer. The key should come from a KDF,
// never straight from configuration.
func NewSignerHS256(kid string, key []byte) (*HS256Signer, error) {
	if kid == "" {
		return nil, errors.New("jwtx: kid is required")
	}
	if len(key) < MinHMACKeySize {
		return nil, errors.New("jwtx: HS256 key too short")
	}
	return &HS256Signer{kid: kid, key: key}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }
func (s *HS256Signer) KID() string { return s.kid }

// Sign takes your claims and turns them into a compact, URL-safe JWT.
func (s *HS256Signer) Sign(claims jwt.Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}
