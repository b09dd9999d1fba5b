package jwtx_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/vistoriapro/vistoria/pkg/jwtx"
)

const idpIssuer = "https://clerk.example.com"

func signSession(t *testing.T, key *rsa.PrivateKey, kid string, claims jwtx.SessionClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func sessionClaims(sub string, now time.Time) jwtx.SessionClaims {
	return jwtx.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    idpIssuer,
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
		SID: "sess_1",
	}
}

func TestRS256VerifySession(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.ResetFromJWKS(jwtx.JWKS{Keys: []jwtx.JWK{jwtx.NewRSAJWK("idp-1", &key.PublicKey)}}))
	verifier := jwtx.NewVerifierRS256(keys, jwtx.VerifyOptions{Issuer: idpIssuer})

	now := time.Now().UTC()
	got, err := verifier.Verify(signSession(t, key, "idp-1", sessionClaims("user_abc", now)))
	require.NoError(t, err)
	require.Equal(t, "user_abc", got.Subject)
	require.Equal(t, "sess_1", got.SID)

	_, err = verifier.Verify(signSession(t, key, "idp-2", sessionClaims("user_abc", now)))
	require.ErrorIs(t, err, jwtx.ErrUnknownKID)

	_, err = verifier.Verify(signSession(t, key, "", sessionClaims("user_abc", now)))
	require.ErrorIs(t, err, jwtx.ErrUnknownKID)

	_, err = verifier.Verify(signSession(t, key, "idp-1", sessionClaims("", now)))
	require.ErrorIs(t, err, jwtx.ErrInvalidClaim)

	expired := sessionClaims("user_abc", now.Add(-time.Hour))
	_, err = verifier.Verify(signSession(t, key, "idp-1", expired))
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestRS256RejectsForeignKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.ResetFromJWKS(jwtx.JWKS{Keys: []jwtx.JWK{jwtx.NewRSAJWK("idp-1", &key.PublicKey)}}))
	verifier := jwtx.NewVerifierRS256(keys, jwtx.VerifyOptions{Issuer: idpIssuer})

	_, err = verifier.Verify(signSession(t, other, "idp-1", sessionClaims("user_abc", time.Now())))
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestRS256RejectsHMACConfusion(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.ResetFromJWKS(jwtx.JWKS{Keys: []jwtx.JWK{jwtx.NewRSAJWK("idp-1", &key.PublicKey)}}))
	verifier := jwtx.NewVerifierRS256(keys, jwtx.VerifyOptions{})

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims("user_abc", time.Now()))
	tok.Header["kid"] = "idp-1"
	s, err := tok.SignedString(key.PublicKey.N.Bytes())
	require.NoError(t, err)

	_, err = verifier.Verify(s)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}
