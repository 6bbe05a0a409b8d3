// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import "errors"

// Package errors for the native backend.
var (
	// ErrNoGPU is returned when no hardware adapter is available.
	ErrNoGPU = errors.New("native: no GPU adapter available")

	// ErrNilHALDevice is returned when wrapping a nil HAL device or queue.
	ErrNilHALDevice = errors.New("native: HAL device is nil")

	// ErrNotHALProvider is returned when a device provider does not expose
	// its HAL device and queue.
	ErrNotHALProvider = errors.New("native: provider does not expose HAL device")
)
