package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/vistoriapro/vistoria/pkg/jwtx"
)

const linkIssuer = "vistoria-access"

var linkKey = []byte("0123456789abcdef0123456789abcdef")

func newHS256Pair(t *testing.T, now func() time.Time) (*jwtx.HS256Signer, *jwtx.HS256Verifier) {
	t.Helper()
	signer, err := jwtx.NewSignerHS256("k1", linkKey)
	require.NoError(t, err)
	verifier := jwtx.NewVerifierHS256("k1", linkKey, jwtx.VerifyOptions{Issuer: linkIssuer, Now: now})
	return signer, verifier
}

func TestHS256SignAndVerify(t *testing.T) {
	now := time.Now().UTC()
	signer, verifier := newHS256Pair(t, func() time.Time { return now })

	claims := jwtx.NewLinkClaims("landlord@example.com", "dispute_review", "Maria", linkIssuer, time.Hour, now)
	token, err := signer.Sign(claims)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(token, "."))

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "landlord@example.com", got.Subject)
	require.Equal(t, "dispute_review", got.Scope)
	require.Equal(t, "Maria", got.Name)
	require.NotEmpty(t, got.ID)
}

func TestHS256RejectsShortKey(t *testing.T) {
	_, err := jwtx.NewSignerHS256("k1", []byte("short"))
	require.Error(t, err)

	_, err = jwtx.NewSignerHS256("", linkKey)
	require.Error(t, err)
}

func TestHS256ExpiryBoundary(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0).UTC()
	clock := issued
	signer, verifier := newHS256Pair(t, func() time.Time { return clock })

	token, err := signer.Sign(jwtx.NewLinkClaims("a@b.com", "dispute_review", "", linkIssuer, time.Hour, issued))
	require.NoError(t, err)

	clock = issued.Add(time.Hour - time.Second)
	_, err = verifier.Verify(token)
	require.NoError(t, err)

	// exactly at exp is already expired
	clock = issued.Add(time.Hour)
	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestHS256NotYetValid(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0).UTC()
	signer, verifier := newHS256Pair(t, func() time.Time { return issued.Add(-time.Minute) })

	token, err := signer.Sign(jwtx.NewLinkClaims("a@b.com", "dispute_review", "", linkIssuer, time.Hour, issued))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrNotYetValid)
}

func TestHS256RejectsTampering(t *testing.T) {
	now := time.Now().UTC()
	signer, verifier := newHS256Pair(t, func() time.Time { return now })

	token, err := signer.Sign(jwtx.NewLinkClaims("a@b.com", "dispute_review", "", linkIssuer, time.Hour, now))
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	sig := parts[2]
	for i := range sig {
		swap := byte('A')
		if sig[i] == 'A' {
			swap = 'B'
		}
		tampered := parts[0] + "." + parts[1] + "." + sig[:i] + string(swap) + sig[i+1:]
		_, err := verifier.Verify(tampered)
		require.Error(t, err, "position %d", i)
	}

	_, err = verifier.Verify(parts[0] + "." + parts[1] + ".")
	require.Error(t, err)
}

func TestHS256RejectsWrongKeyIssuerAndKid(t *testing.T) {
	now := time.Now().UTC()
	signer, _ := newHS256Pair(t, func() time.Time { return now })
	token, err := signer.Sign(jwtx.NewLinkClaims("a@b.com", "dispute_review", "", linkIssuer, time.Hour, now))
	require.NoError(t, err)

	other := jwtx.NewVerifierHS256("k1", []byte("ffffffffffffffffffffffffffffffff"), jwtx.VerifyOptions{Issuer: linkIssuer})
	_, err = other.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)

	wrongIss := jwtx.NewVerifierHS256("k1", linkKey, jwtx.VerifyOptions{Issuer: "someone-else"})
	_, err = wrongIss.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)

	rotated := jwtx.NewVerifierHS256("k2", linkKey, jwtx.VerifyOptions{Issuer: linkIssuer})
	_, err = rotated.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrUnknownKID)
}

func TestHS256RejectsAlgNone(t *testing.T) {
	now := time.Now().UTC()
	_, verifier := newHS256Pair(t, func() time.Time { return now })

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwtx.NewLinkClaims("a@b.com", "dispute_review", "", linkIssuer, time.Hour, now))
	tok.Header["kid"] = "k1"
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = verifier.Verify(s)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestHS256RequiresExpiry(t *testing.T) {
	now := time.Now().UTC()
	signer, verifier := newHS256Pair(t, func() time.Time { return now })

	claims := jwtx.NewLinkClaims("a@b.com", "dispute_review", "", linkIssuer, time.Hour, now)
	claims.ExpiresAt = nil
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
}

func TestHS256Malformed(t *testing.T) {
	_, verifier := newHS256Pair(t, nil)
	for _, in := range []string{"", "abc", "a.b.c", "....."} {
		_, err := verifier.Verify(in)
		require.Error(t, err, in)
	}
}
