package backend

import (
	"errors"
)

// Backend name constants.
const (
	// Software is the name of the CPU backend.
	Software = "software"
	// Native is the name of the gogpu/wgpu HAL backend.
	Native = "native"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered.
	ErrBackendNotAvailable = errors.New("backend: not available")
)
