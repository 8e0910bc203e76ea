package vault

import (
	"filevault/internal/crypto"
	"filevault/internal/errors"
	"filevault/internal/header"
	"filevault/internal/log"
	"filevault/internal/stream"
)

// Decrypt performs a complete container decryption operation.
// This is the main entry point for decryption.
//
// A wrong password surfaces as ErrAuthFailed from the final padding check;
// I/O failures keep their own identity. Note that CBC with PKCS#7 padding
// has no real authentication: roughly 1 in 256 wrong passwords produces a
// valid-looking final block and yields garbage output instead of an error.
func Decrypt(req *DecryptRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	log.Debug("starting decryption",
		log.String("input", req.InputFile),
		log.String("output", req.OutputFile),
		log.Bool("authenticated", req.Authenticated))

	ctx := newContext(req.InputFile, req.OutputFile, req.Reporter, req.Provider)
	defer ctx.Close()

	if req.Authenticated {
		return decryptAuthenticated(ctx, req)
	}

	// Phase 1: Read header and derive key from its salt
	hdr, err := readHeader(ctx)
	if err != nil {
		cleanup(ctx)
		return err
	}
	ctx.Salt = hdr.Salt
	ctx.IV = hdr.IV

	if err := deriveKey(ctx, req.Password); err != nil {
		cleanup(ctx)
		return err
	}

	// Phase 2: Transform payload into the staging file
	if err := decryptPayload(ctx); err != nil {
		cleanup(ctx)
		return err
	}

	// Phase 3: Verify staging output exists
	ctx.setState(StateVerifying)
	if err := decryptVerify(ctx); err != nil {
		cleanup(ctx)
		return err
	}

	// Phase 4: Finalize
	if err := finalize(ctx, req.DeleteSource); err != nil {
		cleanup(ctx)
		return err
	}

	ctx.setState(StateDone)
	return nil
}

func readHeader(ctx *OperationContext) (*header.FileHeader, error) {
	src, err := ctx.Provider.OpenRead(ctx.InputFile)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return header.Read(src)
}

func decryptPayload(ctx *OperationContext) error {
	ctx.setState(StateTransforming)
	ctx.SetStatus("Decrypting...")

	size, err := ctx.Provider.Size(ctx.InputFile)
	if err != nil {
		return err
	}
	ctx.Total = size - int64(header.Size)

	src, err := ctx.Provider.OpenRead(ctx.InputFile)
	if err != nil {
		return err
	}
	defer src.Close()

	// Skip past the header; readHeader already validated it.
	if _, err := header.Read(src); err != nil {
		return err
	}

	dst, err := ctx.Provider.OpenWrite(ctx.TempFile, false)
	if err != nil {
		return err
	}
	defer dst.Close()

	codec, err := crypto.NewDecrypter(ctx.Key, ctx.IV)
	if err != nil {
		return err
	}

	tr := stream.New(stream.Options{
		Codec:    codec,
		Total:    ctx.Total,
		Verb:     "Decrypting",
		Progress: ctx.UpdateProgress,
		Status:   ctx.SetStatus,
		Cancel:   ctx.IsCancelled,
	})
	if _, err := tr.Run(src, dst); err != nil {
		return err
	}

	return dst.Close()
}

func decryptVerify(ctx *OperationContext) error {
	ctx.SetStatus("Verifying...")

	size, err := ctx.Provider.Size(ctx.TempFile)
	if err != nil {
		return err
	}

	// Recovered plaintext is the ciphertext minus padding, so it must be
	// strictly smaller than the payload and within one block of it.
	if size >= ctx.Total || ctx.Total-size > 16 {
		return errors.NewCryptoError("verify",
			errors.New("plaintext size mismatch after decryption"))
	}
	return nil
}
