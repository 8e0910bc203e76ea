// Package header handles filevault container header reading and writing.
// This is AUDIT-CRITICAL code - changes here directly affect file format compatibility.
//
// Container layout, the only bit-exact contract:
//
//	offset 0..32   : Salt (32 bytes, random)
//	offset 32..48  : IV (16 bytes, random)
//	offset 48..EOF : Ciphertext (AES-256-CBC, PKCS#7 padded)
//
// There is no magic number, no version byte, and no authentication tag.
// Ciphertext runs to end-of-stream.
package header

import (
	"io"

	"filevault/internal/errors"
)

// Header field sizes.
const (
	SaltSize = 32
	IVSize   = 16

	// Size is the fixed header length: salt followed by IV.
	Size = SaltSize + IVSize

	// MinContainerSize is the smallest valid container: a header plus at
	// least one ciphertext byte. Anything shorter is malformed.
	MinContainerSize = Size + 1
)

// FileHeader holds the parsed plaintext prefix of a container.
// Salt and IV are public values; only the password is secret.
type FileHeader struct {
	Salt []byte // 32 bytes - key derivation salt
	IV   []byte // 16 bytes - CBC initialization vector
}

// Write writes a container header to the output stream: exactly Size bytes,
// salt first. Returns the number of bytes written.
func Write(w io.Writer, salt, iv []byte) (int, error) {
	if len(salt) != SaltSize {
		return 0, errors.ErrInvalidSaltSize
	}
	if len(iv) != IVSize {
		return 0, errors.ErrInvalidIVSize
	}

	n, err := w.Write(salt)
	if err != nil {
		return n, errors.Wrap(err, "write salt")
	}

	m, err := w.Write(iv)
	n += m
	if err != nil {
		return n, errors.Wrap(err, "write iv")
	}

	return n, nil
}

// Read consumes exactly Size bytes from the stream and parses them.
// A stream shorter than the header is reported as ErrMalformedContainer.
func Read(r io.Reader) (*FileHeader, error) {
	buf := make([]byte, Size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedContainer, "reading header")
	}

	return &FileHeader{
		Salt: buf[:SaltSize],
		IV:   buf[SaltSize:],
	}, nil
}

// Marshal returns the wire form of salt followed by IV for in-memory
// container assembly.
func Marshal(salt, iv []byte) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, errors.ErrInvalidSaltSize
	}
	if len(iv) != IVSize {
		return nil, errors.ErrInvalidIVSize
	}

	buf := make([]byte, 0, Size)
	buf = append(buf, salt...)
	buf = append(buf, iv...)
	return buf, nil
}

// Parse splits an in-memory container into its header and ciphertext.
// Containers shorter than MinContainerSize are malformed.
func Parse(container []byte) (*FileHeader, []byte, error) {
	if len(container) < MinContainerSize {
		return nil, nil, errors.ErrMalformedContainer
	}

	return &FileHeader{
		Salt: container[:SaltSize],
		IV:   container[SaltSize:Size],
	}, container[Size:], nil
}
