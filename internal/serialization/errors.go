package serialization

import "errors"

// Common errors.
var (
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrTruncated          = errors.New("file too short for checkpoint prelude")
	ErrOutOfBounds        = errors.New("tensor extends beyond data section")
	ErrDuplicateTensor    = errors.New("duplicate tensor name")
	ErrTensorMissing      = errors.New("tensor not found in checkpoint")
	ErrShapeMismatch      = errors.New("tensor shape mismatch")
	ErrDTypeMismatch      = errors.New("tensor dtype mismatch")
	ErrUnknownDType       = errors.New("unknown dtype string")
)
