// Package errors provides typed errors for filevault operations.
// This enables callers to use errors.Is() and errors.As() for specific error handling.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
// Use errors.Is(err, errors.ErrCancelled) to check for specific errors.
var (
	// Operation errors
	ErrCancelled          = errors.New("operation cancelled")
	ErrAuthFailed         = errors.New("authentication failed: wrong password or corrupted data")
	ErrMalformedContainer = errors.New("not a valid encrypted file")

	// Input validation errors
	ErrNoInputFiles     = errors.New("no input files specified")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrInvalidKeySize   = errors.New("key must be 32 bytes")
	ErrInvalidSaltSize  = errors.New("salt must be 32 bytes")
	ErrInvalidIVSize    = errors.New("IV must be 16 bytes")

	// File errors
	ErrFileNotFound = errors.New("file not found")
	ErrFileExists   = errors.New("file already exists")

	// Cipher errors
	ErrInvalidPadding  = errors.New("invalid padding")
	ErrNotBlockAligned = errors.New("ciphertext is not a multiple of block size")
	ErrRandFailure     = errors.New("crypto/rand failure")
	ErrCodecFinalized  = errors.New("codec already finalized")
)

// CryptoError represents an error during cryptographic operations.
// It wraps the underlying error with operation context.
type CryptoError struct {
	Op  string // Operation name: "rand", "pbkdf2", "cipher", "padding"
	Err error  // Underlying error
}

func (e *CryptoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("crypto %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("crypto %s failed", e.Op)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// NewCryptoError creates a new CryptoError.
func NewCryptoError(op string, err error) *CryptoError {
	return &CryptoError{Op: op, Err: err}
}

// FileError represents an error during file operations.
type FileError struct {
	Op   string // Operation: "open", "read", "write", "stat", "create", "delete", "rename"
	Path string // File path or handle
	Err  error  // Underlying error
}

func (e *FileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s failed", e.Op, e.Path)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// NewFileError creates a new FileError.
func NewFileError(op, path string, err error) *FileError {
	return &FileError{Op: op, Path: path, Err: err}
}

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string // Field name that failed validation
	Message string // Human-readable error message
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Is checks if target matches any of our sentinel errors.
// This is a convenience function for common error checks.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New creates a new error from a message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsCancelled checks if the error indicates a cancelled operation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsAuthFailed checks if the error indicates a wrong password.
// Note that the unauthenticated CBC format cannot detect every wrong
// password: roughly 1 in 256 wrong keys produces valid-looking padding
// and decrypts to garbage without any error.
func IsAuthFailed(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}

// IsMalformed checks if the error indicates an invalid container.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedContainer)
}

// IsIoFailure checks whether the error originates from a stream collaborator
// rather than from cryptographic processing.
func IsIoFailure(err error) bool {
	var fe *FileError
	return errors.As(err, &fe)
}
