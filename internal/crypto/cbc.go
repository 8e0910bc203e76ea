package crypto

import (
	"crypto/aes"
	"crypto/cipher"

	"filevault/internal/errors"
)

// IVSize is the AES-CBC initialization vector size.
const IVSize = aes.BlockSize

// newCBC validates key and IV and returns an AES block cipher.
func newCBC(key, iv []byte) (cipher.Block, error) {
	if len(key) != KeySize {
		return nil, errors.ErrInvalidKeySize
	}
	if len(iv) != IVSize {
		return nil, errors.ErrInvalidIVSize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.NewCryptoError("cipher", err)
	}
	return block, nil
}

// EncryptBytes encrypts a whole in-memory plaintext with AES-256-CBC and
// PKCS#7 padding. Used for small payloads; large inputs go through the
// incremental Encrypter instead.
func EncryptBytes(plaintext, key, iv []byte) ([]byte, error) {
	block, err := newCBC(key, iv)
	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

// DecryptBytes decrypts a whole in-memory AES-256-CBC ciphertext and strips
// PKCS#7 padding. A padding failure is reported as ErrAuthFailed: with this
// unauthenticated mode it is the only available wrong-key signal.
func DecryptBytes(ciphertext, key, iv []byte) ([]byte, error) {
	block, err := newCBC(key, iv)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.ErrNotBlockAligned
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidPadding) {
			return nil, errors.Wrap(errors.ErrAuthFailed, "removing padding")
		}
		return nil, err
	}
	return unpadded, nil
}

// Encrypter is the incremental encryption half of the stream codec. It
// accepts chunks of any size, buffers incomplete trailing blocks internally,
// and emits ciphertext for every complete block. Finalize applies PKCS#7
// padding and flushes the last block.
type Encrypter struct {
	mode cipher.BlockMode
	buf  []byte
	done bool
}

// NewEncrypter creates an incremental AES-256-CBC encrypter.
func NewEncrypter(key, iv []byte) (*Encrypter, error) {
	block, err := newCBC(key, iv)
	if err != nil {
		return nil, err
	}
	return &Encrypter{
		mode: cipher.NewCBCEncrypter(block, iv),
		buf:  make([]byte, 0, 2*aes.BlockSize),
	}, nil
}

// Transform consumes the next plaintext chunk and returns the ciphertext for
// every complete block. Chunk boundaries need not align to the block size.
func (e *Encrypter) Transform(p []byte) ([]byte, error) {
	if e.done {
		return nil, errors.ErrCodecFinalized
	}

	e.buf = append(e.buf, p...)

	n := len(e.buf) / aes.BlockSize * aes.BlockSize
	if n == 0 {
		return nil, nil
	}

	out := make([]byte, n)
	e.mode.CryptBlocks(out, e.buf[:n])

	// Keep the incomplete tail for the next chunk
	rem := len(e.buf) - n
	copy(e.buf, e.buf[n:])
	e.buf = e.buf[:rem]

	return out, nil
}

// Finalize pads the buffered tail and returns the final ciphertext block.
// The padding block is always emitted, even for an empty input.
func (e *Encrypter) Finalize() ([]byte, error) {
	if e.done {
		return nil, errors.ErrCodecFinalized
	}
	e.done = true

	padded := pkcs7Pad(e.buf, aes.BlockSize)
	out := make([]byte, len(padded))
	e.mode.CryptBlocks(out, padded)

	SecureZero(e.buf)
	e.buf = nil
	return out, nil
}

// Decrypter is the incremental decryption half of the stream codec. It
// withholds the final ciphertext block until Finalize so padding can be
// validated and removed once end-of-stream is known.
type Decrypter struct {
	mode cipher.BlockMode
	buf  []byte
	done bool
}

// NewDecrypter creates an incremental AES-256-CBC decrypter.
func NewDecrypter(key, iv []byte) (*Decrypter, error) {
	block, err := newCBC(key, iv)
	if err != nil {
		return nil, err
	}
	return &Decrypter{
		mode: cipher.NewCBCDecrypter(block, iv),
		buf:  make([]byte, 0, 2*aes.BlockSize),
	}, nil
}

// Transform consumes the next ciphertext chunk and returns plaintext for all
// complete blocks except the last one seen so far, which may carry padding.
func (d *Decrypter) Transform(p []byte) ([]byte, error) {
	if d.done {
		return nil, errors.ErrCodecFinalized
	}

	d.buf = append(d.buf, p...)

	n := len(d.buf) / aes.BlockSize * aes.BlockSize
	if n == len(d.buf) && n > 0 {
		// Retain one block: it may be the padded final block
		n -= aes.BlockSize
	}
	if n == 0 {
		return nil, nil
	}

	out := make([]byte, n)
	d.mode.CryptBlocks(out, d.buf[:n])

	rem := len(d.buf) - n
	copy(d.buf, d.buf[n:])
	d.buf = d.buf[:rem]

	return out, nil
}

// Finalize decrypts the withheld final block and validates its padding.
// A padding failure returns ErrAuthFailed (the wrong-key signal); a
// truncated or misaligned stream returns ErrNotBlockAligned.
func (d *Decrypter) Finalize() ([]byte, error) {
	if d.done {
		return nil, errors.ErrCodecFinalized
	}
	d.done = true

	if len(d.buf) == 0 || len(d.buf)%aes.BlockSize != 0 {
		return nil, errors.ErrNotBlockAligned
	}

	last := make([]byte, len(d.buf))
	d.mode.CryptBlocks(last, d.buf)
	SecureZero(d.buf)
	d.buf = nil

	unpadded, err := pkcs7Unpad(last)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidPadding) {
			return nil, errors.Wrap(errors.ErrAuthFailed, "removing padding")
		}
		return nil, err
	}
	return unpadded, nil
}
