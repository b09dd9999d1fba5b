package jwtx

import (
	"crypto/subtle"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// HS256Verifier validates link tokens signed by an HS256Signer holding the
// same key. Only one key generation is accepted: rotating the key is how
// every outstanding link gets revoked.
type HS256Verifier struct {
	kid  string
	key  []byte
	opts VerifyOptions
}

// NewVerifierHS256 creates a verifier for tokens carrying kid.
func NewVerifierHS256(kid string, key []byte, opts VerifyOptions) *HS256Verifier {
	return &HS256Verifier{kid: kid, key: key, opts: opts}
}

// Verify checks signature, alg, issuer and the exp/nbf window and returns
// the parsed claims. An error always wraps one of the package sentinels.
func (v *HS256Verifier) Verify(tokenStr string) (*LinkClaims, error) {
	parser := jwt.NewParser(v.opts.parserOptions(jwt.SigningMethodHS256.Alg())...)

	token, err := parser.ParseWithClaims(tokenStr, &LinkClaims{}, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if subtle.ConstantTimeCompare([]byte(kid), []byte(v.kid)) != 1 {
			return nil, fmt.Errorf("%w %q", ErrUnknownKID, kid)
		}
		return v.key, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := token.Claims.(*LinkClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaim
	}
	return claims, nil
}
