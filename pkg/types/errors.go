package types

import "errors"

// Domain errors for type validation
var (
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrNegativeSize     = errors.New("size cannot be negative")
	ErrInvalidExtension = errors.New("extension must start with a dot")
	ErrInvalidIndex     = errors.New("chunk index must be >= 0")
	ErrEmptyChunk       = errors.New("chunk text cannot be empty")
)
