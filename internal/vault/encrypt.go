package vault

import (
	"filevault/internal/crypto"
	"filevault/internal/errors"
	"filevault/internal/header"
	"filevault/internal/log"
	"filevault/internal/stream"
)

// Encrypt performs a complete file encryption operation.
// This is the main entry point for encryption.
func Encrypt(req *EncryptRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	log.Debug("starting encryption",
		log.String("input", req.InputFile),
		log.String("output", req.OutputFile),
		log.Bool("authenticated", req.Authenticated))

	ctx := newContext(req.InputFile, req.OutputFile, req.Reporter, req.Provider)
	defer ctx.Close() // Secure zeroing of key material

	if req.Authenticated {
		return encryptAuthenticated(ctx, req)
	}

	// Phase 1: Generate cryptographic values
	if err := encryptGenerateValues(ctx); err != nil {
		cleanup(ctx)
		return err
	}

	// Phase 2: Derive key
	if err := deriveKey(ctx, req.Password); err != nil {
		cleanup(ctx)
		return err
	}

	// Phase 3: Transform payload into the staging file
	if err := encryptPayload(ctx); err != nil {
		cleanup(ctx)
		return err
	}

	// Phase 4: Verify staging file size
	if err := encryptVerify(ctx); err != nil {
		cleanup(ctx)
		return err
	}

	// Phase 5: Finalize (publish, optionally delete source)
	if err := finalize(ctx, req.DeleteSource); err != nil {
		cleanup(ctx)
		return err
	}

	ctx.setState(StateDone)
	return nil
}

func encryptGenerateValues(ctx *OperationContext) error {
	ctx.SetStatus("Generating values...")

	var err error
	ctx.Salt, err = crypto.RandomBytes(crypto.SaltSize)
	if err != nil {
		return err
	}
	ctx.IV, err = crypto.RandomBytes(crypto.IVSize)
	if err != nil {
		return err
	}
	return nil
}

// deriveKey runs PBKDF2 over the password and the context's salt. Shared by
// both directions; decryption populates ctx.Salt from the header first.
func deriveKey(ctx *OperationContext, password string) error {
	ctx.setState(StateDeriving)
	ctx.SetStatus("Deriving key...")
	if ctx.Reporter != nil {
		ctx.Reporter.SetCanCancel(false)
	}

	key, err := crypto.DeriveKey([]byte(password), ctx.Salt)
	if err != nil {
		return err
	}
	ctx.Key = key

	if ctx.Reporter != nil {
		ctx.Reporter.SetCanCancel(true)
	}
	return ctx.checkCancelled()
}

func (ctx *OperationContext) checkCancelled() error {
	if ctx.IsCancelled() {
		return errors.ErrCancelled
	}
	return nil
}

func encryptPayload(ctx *OperationContext) error {
	ctx.setState(StateTransforming)
	ctx.SetStatus("Encrypting...")

	total, err := ctx.Provider.Size(ctx.InputFile)
	if err != nil {
		return err
	}
	ctx.Total = total

	src, err := ctx.Provider.OpenRead(ctx.InputFile)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := ctx.Provider.OpenWrite(ctx.TempFile, false)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := header.Write(dst, ctx.Salt, ctx.IV); err != nil {
		return err
	}

	codec, err := crypto.NewEncrypter(ctx.Key, ctx.IV)
	if err != nil {
		return err
	}

	tr := stream.New(stream.Options{
		Codec:    codec,
		Total:    total,
		Verb:     "Encrypting",
		Progress: ctx.UpdateProgress,
		Status:   ctx.SetStatus,
		Cancel:   ctx.IsCancelled,
	})
	if _, err := tr.Run(src, dst); err != nil {
		return err
	}

	return dst.Close()
}

// encryptVerify confirms the staging file has exactly the expected size:
// the header plus the PKCS#7-padded payload. A short or oversized staging
// file means a write went wrong and the container must not be published.
func encryptVerify(ctx *OperationContext) error {
	ctx.setState(StateVerifying)
	ctx.SetStatus("Verifying...")

	size, err := ctx.Provider.Size(ctx.TempFile)
	if err != nil {
		return err
	}

	expected := int64(header.Size) + paddedSize(ctx.Total)
	if size != expected {
		return errors.NewCryptoError("verify",
			errors.New("container size mismatch after encryption"))
	}
	return nil
}

// paddedSize returns the CBC ciphertext length for n plaintext bytes.
// Padding always adds at least one byte, so the result is the next block
// multiple strictly greater than n.
func paddedSize(n int64) int64 {
	const block = 16
	return n - n%block + block
}

// finalize publishes the staging file over the destination and, when
// requested, deletes the source. A source delete failure is logged but does
// not fail the operation; the container is already in place.
func finalize(ctx *OperationContext, deleteSource bool) error {
	ctx.setState(StateFinalizing)
	ctx.SetStatus("Finalizing...")

	if err := ctx.Provider.Rename(ctx.TempFile, ctx.OutputFile); err != nil {
		return err
	}

	if deleteSource {
		if err := ctx.Provider.Delete(ctx.InputFile); err != nil {
			log.Warn("could not delete source file",
				log.String("path", ctx.InputFile), log.Err(err))
		}
	}
	return nil
}

// cleanup removes the staging file after a failed run. The source file is
// never touched here, and an already-published destination is left alone.
func cleanup(ctx *OperationContext) {
	ctx.setState(StateRollingBack)
	if ctx.TempFile != "" && ctx.Provider.Exists(ctx.TempFile) {
		if err := ctx.Provider.Delete(ctx.TempFile); err != nil {
			log.Warn("could not remove staging file",
				log.String("path", ctx.TempFile), log.Err(err))
		}
	}
}
