package device

import (
	"fmt"
	"strings"
)

const (
	maxNameLength     = 128
	maxLocationLength = 128
)

// Validate checks the mutable fields of a device before persistence.
// Identity and ownership fields are assigned by the repository and are
// not validated here.
func (d *Device) Validate() error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrInvalidName, maxNameLength)
	}

	if !isValidKind(d.Kind) {
		return fmt.Errorf("%w: %q", ErrInvalidKind, d.Kind)
	}

	if len(d.Location) > maxLocationLength {
		return fmt.Errorf("%w: location must be at most %d characters", ErrInvalidName, maxLocationLength)
	}

	return nil
}

// isValidKind reports whether kind is one of the known kinds.
func isValidKind(kind Kind) bool {
	for _, k := range AllKinds() {
		if k == kind {
			return true
		}
	}
	return false
}
