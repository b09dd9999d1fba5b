package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// MinSecretLength is the shortest master secret we accept for key derivation.
const MinSecretLength = 32

var ErrWeakSecret = fmt.Errorf("cryptox: secret must be at least %d bytes", MinSecretLength)

// DeriveKey expands secret into a size byte key bound to purpose using
// HKDF-SHA256. Different purposes yield unrelated keys from the same secret.
func DeriveKey(secret []byte, purpose string, size int) ([]byte, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if purpose == "" {
		return nil, errors.New("cryptox: purpose is required")
	}
	if size <= 0 {
		return nil, fmt.Errorf("cryptox: key size must be positive, got %d", size)
	}

	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(purpose)), key); err != nil {
		return nil, fmt.Errorf("cryptox: hkdf expand: %w", err)
	}
	return key, nil
}

// KeyID returns a short, non-secret identifier for key material.
func KeyID(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:6])
}
