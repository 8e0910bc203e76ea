package vault

import (
	"bytes"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"filevault/internal/errors"
	"filevault/internal/util"
)

func TestAuthenticatedRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	plaintext := make([]byte, 2*util.MiB+555)
	if _, err := rand.Read(plaintext); err != nil {
		t.Fatal(err)
	}
	inputPath := filepath.Join(tmpDir, "in.bin")
	writeTestFile(t, inputPath, plaintext)

	encryptedPath := filepath.Join(tmpDir, "in.bin.sealed")
	if err := Encrypt(&EncryptRequest{
		InputFile:     inputPath,
		OutputFile:    encryptedPath,
		Password:      "authenticated pass",
		Authenticated: true,
	}); err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	decryptedPath := filepath.Join(tmpDir, "out.bin")
	if err := Decrypt(&DecryptRequest{
		InputFile:     encryptedPath,
		OutputFile:    decryptedPath,
		Password:      "authenticated pass",
		Authenticated: true,
	}); err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}

	got, err := os.ReadFile(decryptedPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Error("authenticated round-trip mismatch")
	}
}

// TestAuthenticatedWrongPassword must always fail, unlike the CBC format
// with its padding heuristic.
func TestAuthenticatedWrongPassword(t *testing.T) {
	tmpDir := t.TempDir()

	inputPath := filepath.Join(tmpDir, "in.txt")
	writeTestFile(t, inputPath, []byte("authenticated data"))

	encryptedPath := filepath.Join(tmpDir, "in.txt.sealed")
	if err := Encrypt(&EncryptRequest{
		InputFile:     inputPath,
		OutputFile:    encryptedPath,
		Password:      "right",
		Authenticated: true,
	}); err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	err := Decrypt(&DecryptRequest{
		InputFile:     encryptedPath,
		OutputFile:    filepath.Join(tmpDir, "out.txt"),
		Password:      "wrong",
		Authenticated: true,
	})
	if !errors.IsAuthFailed(err) {
		t.Fatalf("err = %v, want ErrAuthFailed", err)
	}
	if _, statErr := os.Stat(filepath.Join(tmpDir, "out.txt")); !os.IsNotExist(statErr) {
		t.Error("failed decryption should not leave a destination file")
	}
}

func TestAuthenticatedTamperDetection(t *testing.T) {
	tmpDir := t.TempDir()

	inputPath := filepath.Join(tmpDir, "in.bin")
	writeTestFile(t, inputPath, make([]byte, 100*util.KiB))

	encryptedPath := filepath.Join(tmpDir, "in.bin.sealed")
	if err := Encrypt(&EncryptRequest{
		InputFile:     inputPath,
		OutputFile:    encryptedPath,
		Password:      "p",
		Authenticated: true,
	}); err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// Flip one ciphertext byte past the salt.
	container, err := os.ReadFile(encryptedPath)
	if err != nil {
		t.Fatal(err)
	}
	container[40+len(container)/2] ^= 0x01
	writeTestFile(t, encryptedPath, container)

	err = Decrypt(&DecryptRequest{
		InputFile:     encryptedPath,
		OutputFile:    filepath.Join(tmpDir, "out.bin"),
		Password:      "p",
		Authenticated: true,
	})
	if !errors.IsAuthFailed(err) {
		t.Fatalf("err = %v, want ErrAuthFailed for tampered container", err)
	}
}

func TestAuthenticatedTruncated(t *testing.T) {
	tmpDir := t.TempDir()

	path := filepath.Join(tmpDir, "short.sealed")
	writeTestFile(t, path, make([]byte, 20))

	err := Decrypt(&DecryptRequest{
		InputFile:     path,
		OutputFile:    filepath.Join(tmpDir, "out.bin"),
		Password:      "p",
		Authenticated: true,
	})
	if !errors.IsMalformed(err) {
		t.Fatalf("err = %v, want ErrMalformedContainer", err)
	}
}
