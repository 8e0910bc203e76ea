// filevault encrypts and decrypts files with a password:
//   - PBKDF2-HMAC-SHA256 for password-based key derivation (100,000 iterations)
//   - AES-256-CBC with PKCS#7 padding for the default container format
//   - Optional authenticated mode using AES-256-GCM streaming encryption
//   - Atomic output publishing: containers appear only after verification
package main

import (
	"os"

	"filevault/internal/cli"
)

// version is the application version reported by --version.
const version = "v1.0.0"

func main() {
	os.Exit(cli.Execute(version))
}
