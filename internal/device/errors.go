package device

import "errors"

// Sentinel errors for device operations.
var (
	// ErrNotFound indicates the device does not exist.
	ErrNotFound = errors.New("device not found")

	// ErrInvalidName indicates the device name is empty or too long.
	ErrInvalidName = errors.New("invalid device name")

	// ErrInvalidKind indicates an unrecognised device kind.
	ErrInvalidKind = errors.New("invalid device kind")
)
