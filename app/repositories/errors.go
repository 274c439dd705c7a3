package repositories

import "errors"

// Store-independent errors. Implementations translate engine-specific
// failures into these so callers never depend on a driver package.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrConflict      = errors.New("conflicting reference")
	ErrUnsupported   = errors.New("operation not supported by this store")
)
