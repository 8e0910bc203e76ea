// Package vault provides the high-level encryption and decryption engine.
//
// The package orchestrates the complete workflow for a single file:
//
// Encryption pipeline:
//  1. Validate: check paths, password, destination
//  2. Generate: create random salt and IV
//  3. Derive key: PBKDF2-HMAC-SHA256 password derivation
//  4. Transform: write header, stream CBC-encrypted payload to a staging file
//  5. Verify: confirm the staging file has the expected size
//  6. Finalize: atomically publish the staging file, optionally delete source
//
// Decryption runs the same phases in reverse, reading the salt and IV from
// the container header and treating a padding failure as a wrong-password
// signal.
//
// SECURITY: Always call OperationContext.Close() when done to zero key
// material.
package vault

import (
	"filevault/internal/crypto"
	"filevault/internal/storage"
)

// ProgressReporter provides callbacks for UI updates during long-running
// operations. Implementations must be safe for use from worker goroutines.
type ProgressReporter interface {
	SetStatus(text string)                     // Update status message (e.g., "Encrypting...")
	SetProgress(fraction float64, info string) // Update progress bar (0.0-1.0) and info text
	SetCanCancel(can bool)                     // Enable/disable cancellation
	Update()                                   // Trigger UI refresh
	IsCancelled() bool                         // Check if user requested cancellation
}

// State identifies the phase an operation is currently in. Runs advance
// strictly forward except for RollingBack, which any failing phase enters
// before the run ends.
type State int

const (
	StateIdle State = iota
	StateDeriving
	StateTransforming
	StateVerifying
	StateFinalizing
	StateRollingBack
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDeriving:
		return "deriving"
	case StateTransforming:
		return "transforming"
	case StateVerifying:
		return "verifying"
	case StateFinalizing:
		return "finalizing"
	case StateRollingBack:
		return "rolling back"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// EncryptRequest contains all parameters needed to encrypt a file into a
// container.
type EncryptRequest struct {
	InputFile  string // Plaintext source path
	OutputFile string // Destination container path

	Password string // User password (processed through PBKDF2)

	// Options
	DeleteSource  bool // Remove the source file after the container is verified
	Overwrite     bool // Allow replacing an existing destination
	Authenticated bool // Use the authenticated streaming format instead of CBC

	Reporter ProgressReporter // UI callback interface (can be nil for headless operation)
	Provider storage.Provider // Filesystem backend (nil means the host disk)
}

// DecryptRequest contains all parameters needed to decrypt a container.
// The Password must match the one used during encryption.
type DecryptRequest struct {
	InputFile  string // Container path
	OutputFile string // Destination path for recovered plaintext

	Password string // User password

	// Options
	DeleteSource  bool // Remove the container after successful decryption
	Overwrite     bool // Allow replacing an existing destination
	Authenticated bool // Container uses the authenticated streaming format

	// MemoryThreshold overrides the size above which DecryptToMemory spools
	// through a temporary file instead of decrypting in memory. Zero means
	// the default.
	MemoryThreshold int64

	Reporter ProgressReporter // UI callback interface (can be nil for headless operation)
	Provider storage.Provider // Filesystem backend (nil means the host disk)
}

// OperationContext holds mutable state during a single encrypt or decrypt
// run. It is created at the start of Encrypt()/Decrypt() and passed through
// all phases.
type OperationContext struct {
	InputFile  string // Source path
	OutputFile string // Final destination
	TempFile   string // Staging path published by rename in the finalize phase

	// Cryptographic state
	Key  []byte // PBKDF2-derived key
	Salt []byte // Random per-container salt
	IV   []byte // Random per-container CBC IV

	State State // Current phase
	Total int64 // Input bytes to process

	Reporter ProgressReporter // UI callback (may be nil)
	Provider storage.Provider
}

func newContext(input, output string, reporter ProgressReporter, provider storage.Provider) *OperationContext {
	if provider == nil {
		provider = storage.NewOS()
	}
	return &OperationContext{
		InputFile:  input,
		OutputFile: output,
		TempFile:   output + ".incomplete",
		Reporter:   reporter,
		Provider:   provider,
	}
}

// UpdateProgress updates the progress reporter if available
func (ctx *OperationContext) UpdateProgress(fraction float64, info string) {
	if ctx.Reporter != nil {
		ctx.Reporter.SetProgress(fraction, info)
		ctx.Reporter.Update()
	}
}

// SetStatus updates the status reporter if available
func (ctx *OperationContext) SetStatus(status string) {
	if ctx.Reporter != nil {
		ctx.Reporter.SetStatus(status)
		ctx.Reporter.Update()
	}
}

// IsCancelled checks if the operation has been cancelled
func (ctx *OperationContext) IsCancelled() bool {
	if ctx.Reporter != nil {
		return ctx.Reporter.IsCancelled()
	}
	return false
}

func (ctx *OperationContext) setState(s State) {
	ctx.State = s
}

// Close securely zeros all sensitive cryptographic material in the context.
// This should be called via defer immediately after creating the context.
func (ctx *OperationContext) Close() {
	if ctx == nil {
		return
	}
	crypto.SecureZeroMultiple(ctx.Key, ctx.Salt, ctx.IV)
	ctx.Key = nil
	ctx.Salt = nil
	ctx.IV = nil
}
