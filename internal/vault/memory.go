package vault

import (
	"io"

	"filevault/internal/crypto"
	"filevault/internal/errors"
	"filevault/internal/header"
	"filevault/internal/storage"
	"filevault/internal/util"
)

// DefaultMemoryThreshold is the container size above which DecryptToMemory
// spools through a temporary file instead of holding both the container and
// the plaintext in memory at once.
const DefaultMemoryThreshold = 50 * util.MiB

// EncryptBytes encrypts a plaintext buffer into a complete in-memory
// container. Used for small payloads where file staging is unnecessary.
func EncryptBytes(plaintext []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, errors.ErrEmptyPassword
	}

	salt, err := crypto.RandomBytes(crypto.SaltSize)
	if err != nil {
		return nil, err
	}
	iv, err := crypto.RandomBytes(crypto.IVSize)
	if err != nil {
		return nil, err
	}

	key, err := crypto.DeriveKey([]byte(password), salt)
	if err != nil {
		return nil, err
	}
	defer crypto.SecureZero(key)

	ciphertext, err := crypto.EncryptBytes(plaintext, key, iv)
	if err != nil {
		return nil, err
	}

	hdr, err := header.Marshal(salt, iv)
	if err != nil {
		return nil, err
	}
	return append(hdr, ciphertext...), nil
}

// DecryptBytes recovers the plaintext from an in-memory container.
// Returns ErrMalformedContainer for anything too small to hold a header and
// one cipher block, and ErrAuthFailed when the password is wrong.
func DecryptBytes(container []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, errors.ErrEmptyPassword
	}

	hdr, payload, err := header.Parse(container)
	if err != nil {
		return nil, err
	}

	key, err := crypto.DeriveKey([]byte(password), hdr.Salt)
	if err != nil {
		return nil, err
	}
	defer crypto.SecureZero(key)

	return crypto.DecryptBytes(payload, key, hdr.IV)
}

// DecryptToMemory decrypts a container and returns the plaintext without
// leaving a destination file behind. Small containers are decrypted entirely
// in memory; containers at or above the threshold go through a temporary
// file that is always removed, even on failure.
func DecryptToMemory(req *DecryptRequest) ([]byte, error) {
	if req.InputFile == "" {
		return nil, errors.NewValidationError("InputFile", "input file path is required")
	}
	if req.Password == "" {
		return nil, errors.ErrEmptyPassword
	}

	p := req.provider()
	if !p.Exists(req.InputFile) {
		return nil, errors.NewFileError("stat", req.InputFile, errors.ErrFileNotFound)
	}

	size, err := p.Size(req.InputFile)
	if err != nil {
		return nil, err
	}
	if size < header.MinContainerSize {
		return nil, errors.Wrap(errors.ErrMalformedContainer, "container too small")
	}

	threshold := req.MemoryThreshold
	if threshold <= 0 {
		threshold = DefaultMemoryThreshold
	}

	if size < threshold {
		return decryptSmallToMemory(p, req)
	}
	return decryptLargeToMemory(req)
}

func decryptSmallToMemory(p storage.Provider, req *DecryptRequest) ([]byte, error) {
	src, err := p.OpenRead(req.InputFile)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	container, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.NewFileError("read", req.InputFile, err)
	}
	return DecryptBytes(container, req.Password)
}

// decryptLargeToMemory runs the regular streaming decrypt into a temporary
// file next to the container, reads the result back, and removes the file in
// all cases.
func decryptLargeToMemory(req *DecryptRequest) ([]byte, error) {
	p := req.provider()
	tempOut := req.InputFile + ".mem"

	sub := &DecryptRequest{
		InputFile:  req.InputFile,
		OutputFile: tempOut,
		Password:   req.Password,
		Overwrite:  true,
		Reporter:   req.Reporter,
		Provider:   req.Provider,
	}
	defer func() {
		if p.Exists(tempOut) {
			p.Delete(tempOut)
		}
	}()

	if err := Decrypt(sub); err != nil {
		return nil, err
	}

	src, err := p.OpenRead(tempOut)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	plaintext, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.NewFileError("read", tempOut, err)
	}
	return plaintext, nil
}
