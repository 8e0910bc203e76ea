// Package crypto provides the cryptographic primitives for filevault containers.
// This is AUDIT-CRITICAL code - changes here directly affect encryption/decryption.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"filevault/internal/errors"
)

// PBKDF2 parameters.
//
// CRITICAL: Parameters MUST NOT change or existing containers cannot be decrypted.
const (
	// KDFIterations is the fixed PBKDF2 work factor.
	KDFIterations = 100000

	// KeySize is the derived AES-256 key size.
	KeySize = 32

	// SaltSize is the key derivation salt size.
	SaltSize = 32
)

// RandomBytes generates n cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("fatal crypto/rand error: %w", err)
	}

	// Sanity check: bytes should not be all zeros
	allZero := true
	for _, v := range b {
		if v != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return nil, errors.Wrap(errors.ErrRandFailure, "produced zero bytes")
	}

	return b, nil
}

// DeriveKey derives a 32-byte encryption key from password and salt using
// PBKDF2-HMAC-SHA256 with a fixed iteration count. Same (password, salt)
// always yields the same key; different salts yield independent keys.
//
// Callers are responsible for zeroing the returned key after use.
func DeriveKey(password, salt []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, errors.ErrEmptyPassword
	}
	if len(salt) != SaltSize {
		return nil, errors.ErrInvalidSaltSize
	}

	key := pbkdf2.Key(password, salt, KDFIterations, KeySize, sha256.New)

	// Sanity check: key should not be all zeros
	allZero := true
	for _, v := range key {
		if v != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return nil, errors.NewCryptoError("pbkdf2", errors.New("produced zero key"))
	}

	return key, nil
}
