package crypto

import (
	"bytes"
	"testing"

	"filevault/internal/errors"
)

func TestDeriveKey(t *testing.T) {
	password := []byte("test-password")
	salt := make([]byte, SaltSize)
	for i := range salt {
		salt[i] = byte(i)
	}

	key, err := DeriveKey(password, salt)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	if len(key) != KeySize {
		t.Errorf("Key length = %d; want %d", len(key), KeySize)
	}

	// Same inputs should produce same outputs (deterministic)
	key2, err := DeriveKey(password, salt)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	if !bytes.Equal(key, key2) {
		t.Error("Same inputs should produce same key")
	}
}

func TestDeriveKeyDifferentSalts(t *testing.T) {
	password := []byte("test-password")

	salt1 := make([]byte, SaltSize)
	salt2 := make([]byte, SaltSize)
	salt2[0] = 1

	key1, err := DeriveKey(password, salt1)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	key2, err := DeriveKey(password, salt2)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}

	if bytes.Equal(key1, key2) {
		t.Error("Different salts should produce independent keys")
	}
}

func TestDeriveKeyRejectsEmptyPassword(t *testing.T) {
	salt := make([]byte, SaltSize)
	if _, err := DeriveKey(nil, salt); !errors.Is(err, errors.ErrEmptyPassword) {
		t.Errorf("DeriveKey(empty password) = %v; want ErrEmptyPassword", err)
	}
}

func TestDeriveKeyRejectsBadSalt(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33} {
		if _, err := DeriveKey([]byte("pw"), make([]byte, n)); !errors.Is(err, errors.ErrInvalidSaltSize) {
			t.Errorf("DeriveKey(salt len %d) = %v; want ErrInvalidSaltSize", n, err)
		}
	}
}

func TestRandomBytes(t *testing.T) {
	b1, err := RandomBytes(32)
	if err != nil {
		t.Fatalf("RandomBytes failed: %v", err)
	}
	if len(b1) != 32 {
		t.Errorf("length = %d; want 32", len(b1))
	}

	b2, err := RandomBytes(32)
	if err != nil {
		t.Fatalf("RandomBytes failed: %v", err)
	}
	if bytes.Equal(b1, b2) {
		t.Error("Two RandomBytes calls should not produce equal output")
	}
}
