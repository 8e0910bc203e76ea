package crypto

import "testing"

func TestSecureZero(t *testing.T) {
	b := []byte{1, 2, 3, 4, 5}
	SecureZero(b)
	for i, v := range b {
		if v != 0 {
			t.Errorf("byte %d = %#x; want 0", i, v)
		}
	}

	// Empty and nil slices must not panic
	SecureZero(nil)
	SecureZero([]byte{})
}

func TestSecureZeroMultiple(t *testing.T) {
	a := []byte{1, 2}
	b := []byte{3, 4}
	SecureZeroMultiple(a, b, nil)
	for _, s := range [][]byte{a, b} {
		for i, v := range s {
			if v != 0 {
				t.Errorf("byte %d = %#x; want 0", i, v)
			}
		}
	}
}

func TestKeyMaterial(t *testing.T) {
	original := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	km := NewKeyMaterial(original)

	if km.IsClosed() {
		t.Error("new KeyMaterial should not be closed")
	}

	got := km.Bytes()
	if len(got) != len(original) {
		t.Fatalf("Bytes() length = %d; want %d", len(got), len(original))
	}

	// Mutating the original must not affect the wrapped copy
	original[0] = 0
	if km.Bytes()[0] != 0xDE {
		t.Error("KeyMaterial should own a copy of its data")
	}

	km.Close()
	if !km.IsClosed() {
		t.Error("KeyMaterial should report closed after Close")
	}
	if km.Bytes() != nil {
		t.Error("Bytes() should return nil after Close")
	}

	// Idempotent
	km.Close()
}

func TestKeyMaterialNil(t *testing.T) {
	km := NewKeyMaterial(nil)
	if km.Bytes() != nil {
		t.Error("nil-backed KeyMaterial should return nil bytes")
	}
	km.Close()
}
