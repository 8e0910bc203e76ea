package vault

import (
	"filevault/internal/errors"
	"filevault/internal/header"
	"filevault/internal/storage"
)

// Validate checks that the EncryptRequest has all required fields and valid
// configuration. Returns nil if valid, or an error describing the failure.
func (req *EncryptRequest) Validate() error {
	if req.InputFile == "" {
		return errors.ErrNoInputFiles
	}
	if req.Password == "" {
		return errors.ErrEmptyPassword
	}
	if req.OutputFile == "" {
		return errors.NewValidationError("OutputFile", "output file path is required")
	}
	if req.InputFile == req.OutputFile {
		return errors.NewValidationError("OutputFile", "output must differ from input")
	}

	p := req.provider()
	if !p.Exists(req.InputFile) {
		return errors.NewFileError("stat", req.InputFile, errors.ErrFileNotFound)
	}
	if !req.Overwrite && p.Exists(req.OutputFile) {
		return errors.NewFileError("create", req.OutputFile, errors.ErrFileExists)
	}

	return nil
}

func (req *EncryptRequest) provider() storage.Provider {
	if req.Provider != nil {
		return req.Provider
	}
	return storage.NewOS()
}

// Validate checks that the DecryptRequest has all required fields and valid
// configuration. The container size floor is enforced here so an obviously
// truncated file fails before any key derivation work.
func (req *DecryptRequest) Validate() error {
	if req.InputFile == "" {
		return errors.NewValidationError("InputFile", "input file path is required")
	}
	if req.Password == "" {
		return errors.ErrEmptyPassword
	}
	if req.OutputFile == "" {
		return errors.NewValidationError("OutputFile", "output file path is required")
	}
	if req.InputFile == req.OutputFile {
		return errors.NewValidationError("OutputFile", "output must differ from input")
	}

	p := req.provider()
	if !p.Exists(req.InputFile) {
		return errors.NewFileError("stat", req.InputFile, errors.ErrFileNotFound)
	}
	if !req.Overwrite && p.Exists(req.OutputFile) {
		return errors.NewFileError("create", req.OutputFile, errors.ErrFileExists)
	}

	size, err := p.Size(req.InputFile)
	if err != nil {
		return err
	}
	if !req.Authenticated && size < header.MinContainerSize {
		return errors.Wrap(errors.ErrMalformedContainer, "container too small")
	}
	if req.Authenticated && size <= header.SaltSize {
		return errors.Wrap(errors.ErrMalformedContainer, "container too small")
	}

	return nil
}

func (req *DecryptRequest) provider() storage.Provider {
	if req.Provider != nil {
		return req.Provider
	}
	return storage.NewOS()
}
