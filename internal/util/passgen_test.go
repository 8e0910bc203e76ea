package util

import (
	"strings"
	"testing"
)

func TestGenPassword(t *testing.T) {
	opts := PassgenOptions{
		Length:  32,
		Upper:   true,
		Lower:   true,
		Numbers: true,
		Symbols: true,
	}

	password, err := GenPassword(opts)
	if err != nil {
		t.Fatalf("GenPassword failed: %v", err)
	}
	if len(password) != 32 {
		t.Errorf("GenPassword length = %d; want 32", len(password))
	}

	// Generate a second password and ensure they differ (randomness check)
	password2, err := GenPassword(opts)
	if err != nil {
		t.Fatalf("GenPassword failed: %v", err)
	}
	if password == password2 {
		t.Error("GenPassword generated identical passwords (unlikely if random)")
	}
}

func TestGenPasswordCharacterSets(t *testing.T) {
	tests := []struct {
		name  string
		opts  PassgenOptions
		valid string
	}{
		{"upper", PassgenOptions{Length: 100, Upper: true}, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"},
		{"lower", PassgenOptions{Length: 100, Lower: true}, "abcdefghijklmnopqrstuvwxyz"},
		{"numbers", PassgenOptions{Length: 100, Numbers: true}, "1234567890"},
		{"symbols", PassgenOptions{Length: 100, Symbols: true}, "-=_+!@#$^&()?<>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			password, err := GenPassword(tt.opts)
			if err != nil {
				t.Fatalf("GenPassword failed: %v", err)
			}
			for _, c := range password {
				if !strings.ContainsRune(tt.valid, c) {
					t.Errorf("%s-only password contains invalid char: %c", tt.name, c)
				}
			}
		})
	}
}

func TestGenPasswordEmpty(t *testing.T) {
	// No character sets enabled should return empty
	password, err := GenPassword(PassgenOptions{Length: 32})
	if err != nil {
		t.Fatalf("GenPassword failed: %v", err)
	}
	if password != "" {
		t.Errorf("GenPassword with no charset should return empty, got %s", password)
	}

	// Zero length should return empty
	password, err = GenPassword(PassgenOptions{Length: 0, Upper: true})
	if err != nil {
		t.Fatalf("GenPassword failed: %v", err)
	}
	if password != "" {
		t.Errorf("GenPassword with zero length should return empty, got %s", password)
	}
}
