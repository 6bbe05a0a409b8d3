// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the device contract between vidgfx and a GPU.
//
// The vidgfx Context never talks to a graphics API directly. It drives a
// Device, which owns textures and vertex buffers and executes draw calls
// described by a DrawCall. Backends under vidgfx/backend implement Device:
//
//   - software: CPU textures and a triangle rasterizer, used for tests,
//     headless conversion and as a fallback
//   - native: gogpu/wgpu HAL device (Vulkan, Metal, DX12, GLES or noop)
//
// The package also holds the GPU state vocabulary shared by the Context and
// every backend: Shader, Filter, Blending, Topology, TextureFlags and
// TexelFormat, together with the small value types Point, Rect, Color and
// Mat4 used to describe geometry and shader uniforms.
//
// # Key Principle
//
// vidgfx RECEIVES a device, it does NOT select adapters or create surfaces.
// A host application that already owns a gogpu device hands it over through
// the native backend (see native.NewFromProvider); headless tools open a
// backend by name through the backend registry.
//
// # Architecture
//
//	                Application
//	                     │
//	                     ▼
//	              vidgfx.Context
//	  (targets, draw state, format conversion)
//	                     │
//	                     ▼
//	              render.Device
//	     ┌───────────────┼───────────────┐
//	     ▼               ▼               ▼
//	 software         native         recording
//	(CPU raster)   (wgpu HAL)      (decorator)
//
// # Thread Safety
//
// Devices are NOT thread-safe. All calls must come from the single rendering
// goroutine that owns the Context, matching the single-context model of the
// underlying graphics APIs.
package render
