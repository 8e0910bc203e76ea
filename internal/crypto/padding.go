package crypto

import (
	"bytes"
	"crypto/aes"

	"filevault/internal/errors"
)

// pkcs7Pad appends PKCS#7 padding to data, making it a multiple of blockSize.
// The pad is always 1..blockSize bytes, so an empty input becomes a full
// block of padding.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padText := bytes.Repeat([]byte{byte(padding)}, padding)
	return append(data, padText...)
}

// pkcs7Unpad validates and removes PKCS#7 padding from the final block.
// A malformed pad is the wrong-key signal of the unauthenticated CBC format:
// roughly 1 in 256 wrong keys still produces a valid-looking pad, in which
// case the caller receives garbage plaintext with no error.
func pkcs7Unpad(data []byte) ([]byte, error) {
	length := len(data)
	if length == 0 || length%aes.BlockSize != 0 {
		return nil, errors.ErrNotBlockAligned
	}

	padding := int(data[length-1])
	if padding == 0 || padding > aes.BlockSize || padding > length {
		return nil, errors.ErrInvalidPadding
	}

	for i := length - padding; i < length; i++ {
		if data[i] != byte(padding) {
			return nil, errors.ErrInvalidPadding
		}
	}

	return data[:length-padding], nil
}
