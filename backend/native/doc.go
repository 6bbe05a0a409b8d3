// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native implements render.Device on top of the gogpu/wgpu hardware
// abstraction layer.
//
// Importing the package registers the "native" backend, which opens the best
// hardware adapter (Vulkan first). Devices can also wrap an existing HAL
// device with NewFromHAL, or a gpucontext.DeviceProvider with
// NewFromProvider, so that a host application shares its GPU with the
// video graphics layer.
//
// All draw programs live in a single WGSL module (shaders/vidgfx.wgsl).
// Pipelines are built lazily per shader, blending mode, topology and target
// formats, and cached for the lifetime of the device.
//
// Staging textures are backed by host-visible buffers with rows aligned to
// 256 bytes. Copies into them are recorded on the GPU and MapTexture waits
// for the queue to go idle before exposing the bytes.
package native
