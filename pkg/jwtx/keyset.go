package jwtx

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"math/big"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

// KeySet holds the identity provider's public verification keys in memory.
// Safe for concurrent use: the JWKS refresher swaps keys while requests
// verify against them.
type KeySet struct {
	mu  sync.RWMutex
	pub map[string]*rsa.PublicKey
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{pub: make(map[string]*rsa.PublicKey)}
}

// Get returns the public key for the given kid.
func (k *KeySet) Get(kid string) (any, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if pk, ok := k.pub[kid]; ok {
		return pk, nil
	}
	return nil, ErrNoKey
}

// Has reports whether kid is known.
func (k *KeySet) Has(kid string) bool {
	_, err := k.Get(kid)
	return err == nil
}

// Len returns the number of loaded keys.
func (k *KeySet) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.pub)
}

// IsReady returns true if the KeySet has at least one key loaded.
func (k *KeySet) IsReady() bool { return k.Len() > 0 }

// ResetFromJWKS replaces all keys from a JWKS. Non-RSA and non-signing keys
// are skipped; an RSA key that fails to parse aborts the swap so a bad
// fetch never empties a working set.
func (k *KeySet) ResetFromJWKS(jwks JWKS) error {
	next := make(map[string]*rsa.PublicKey, len(jwks.Keys))
	for _, j := range jwks.Keys {
		if j.Kty != "RSA" || (j.Use != "" && j.Use != "sig") {
			continue
		}
		key, err := parseRSAJWK(j)
		if err != nil {
			return err
		}
		next[j.Kid] = key
	}
	if len(next) == 0 {
		return errors.New("jwtx: jwks contains no usable RSA signing keys")
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.pub = next
	return nil
}

func parseRSAJWK(j JWK) (*rsa.PublicKey, error) {
	if j.Kid == "" {
		return nil, errors.New("jwtx: jwk without kid")
	}
	nb, err := base64.RawURLEncoding.DecodeString(j.N)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(j.E)
	if err != nil {
		return nil, err
	}
	n := new(big.Int).SetBytes(nb)
	e := new(big.Int).SetBytes(eb)
	if n.Sign() == 0 || !e.IsInt64() || e.Int64() < 3 {
		return nil, errors.New("jwtx: invalid RSA jwk")
	}
	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}
