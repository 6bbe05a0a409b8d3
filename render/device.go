// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"image"
)

// Device errors. Backends wrap these with fmt.Errorf("...: %w") so callers
// can match them with errors.Is.
var (
	// ErrInvalidSize is returned for textures or buffers with a zero or
	// negative dimension.
	ErrInvalidSize = errors.New("render: invalid size")

	// ErrUnsupported is returned when the device lacks a capability.
	ErrUnsupported = errors.New("render: operation not supported by device")

	// ErrDestroyed is returned when using a destroyed device or resource.
	ErrDestroyed = errors.New("render: resource has been destroyed")

	// ErrNotStaging is returned when mapping a texture without TexStaging.
	ErrNotStaging = errors.New("render: texture is not a staging texture")

	// ErrAlreadyMapped is returned when mapping a texture twice.
	ErrAlreadyMapped = errors.New("render: texture is already mapped")

	// ErrNotMapped is returned when unmapping a texture that is not mapped.
	ErrNotMapped = errors.New("render: texture is not mapped")

	// ErrTextureMapped is returned when a mapped texture is used by the GPU.
	ErrTextureMapped = errors.New("render: texture is mapped")

	// ErrFormatMismatch is returned when copying between texel formats.
	ErrFormatMismatch = errors.New("render: texel format mismatch")

	// ErrOutOfBounds is returned when a region exceeds a texture.
	ErrOutOfBounds = errors.New("render: region out of bounds")

	// ErrForeignResource is returned when a resource created by another
	// device is passed in.
	ErrForeignResource = errors.New("render: resource belongs to another device")

	// ErrInvalidDraw is returned for malformed draw calls.
	ErrInvalidDraw = errors.New("render: invalid draw call")
)

// Capabilities describes what a device supports.
type Capabilities struct {
	// BGRATextures reports native BGRA8 textures. Without it, BGRA requests
	// are served by RGBA8 textures with swizzled uploads.
	BGRATextures bool

	// SharedTextures reports cross-context texture sharing by handle.
	SharedTextures bool

	// GDITextures reports GDI-compatible textures.
	GDITextures bool

	// NonPowerOfTwo reports support for textures of arbitrary size as
	// render targets. Without it, scratch targets are rounded up.
	NonPowerOfTwo bool

	// MaxTextureSize is the largest texture dimension; 0 means unlimited.
	MaxTextureSize int
}

// TextureDesc describes a texture to create.
type TextureDesc struct {
	// Label is an optional debug name.
	Label string

	// Width and Height are the texture size in texels.
	Width, Height int

	// Format is the texel layout.
	Format TexelFormat

	// Flags are the requested capabilities.
	Flags TextureFlags
}

// Size returns the texture size as an image.Point.
func (d TextureDesc) Size() image.Point {
	return image.Point{X: d.Width, Y: d.Height}
}

// Bounds returns the texture rectangle anchored at the origin.
func (d TextureDesc) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.Width, d.Height)
}

// Texture is a device-owned texture.
type Texture interface {
	// Desc returns the texture description as created.
	Desc() TextureDesc

	// Destroy releases the texture. Destroying twice is a no-op.
	Destroy()
}

// Buffer is a device-owned vertex buffer holding float32 data.
type Buffer interface {
	// Cap returns the capacity in floats.
	Cap() int

	// Destroy releases the buffer. Destroying twice is a no-op.
	Destroy()
}

// Mapping is a CPU view of a mapped staging texture. Data is valid only until
// the matching UnmapTexture.
type Mapping struct {
	Data   []byte
	Stride int
}

// Uniforms are the per-draw shader constants.
type Uniforms struct {
	// Transform maps vertex positions to clip space.
	Transform Mat4

	// ModColor multiplies texture decal output.
	ModColor Color

	// Effects holds gamma, brightness, contrast and saturation for
	// ShaderTexDecalGbcs.
	Effects [4]float32

	// LayerRect is the layer rectangle the resize handles belong to.
	LayerRect Rect

	// BorderColor is the resize handle colour.
	BorderColor Color

	// PxSize is the size of one source texel in UV units for ShaderRgbNv16.
	PxSize Point
}

// DefaultEffects are the identity texture decal effects.
var DefaultEffects = [4]float32{1, 0, 1, 1}

// DrawCall is one draw submitted to a device.
type DrawCall struct {
	// Targets are the render targets, one per shader output.
	Targets []Texture

	// Viewport is the pixel rectangle of Targets[0] drawn into.
	Viewport Rect

	Shader   Shader
	Topology Topology
	Blending Blending
	Filter   Filter

	// Textures are the bound texture units; unused units are nil.
	Textures [3]Texture

	// Buffer holds VertSize floats per vertex.
	Buffer   Buffer
	VertSize int

	// First and Count select the vertex range.
	First, Count int

	Uniforms Uniforms
}

// Device executes the resource and draw operations of a Context.
type Device interface {
	// Name returns the backend identifier.
	Name() string

	// Capabilities returns the device capabilities.
	Capabilities() Capabilities

	// NewTexture creates a texture. If data is non-nil it holds the initial
	// contents, stride bytes per row.
	NewTexture(desc TextureDesc, data []byte, stride int) (Texture, error)

	// WriteTexture replaces the full contents of a texture.
	WriteTexture(tex Texture, data []byte, stride int) error

	// MapTexture maps a staging texture for CPU access.
	MapTexture(tex Texture) (Mapping, error)

	// UnmapTexture ends a mapping started by MapTexture.
	UnmapTexture(tex Texture) error

	// CopyTexture copies srcRect of src into dst at dstPos.
	CopyTexture(dst, src Texture, dstPos image.Point, srcRect image.Rectangle) error

	// NewBuffer creates a vertex buffer with room for numFloats floats.
	NewBuffer(numFloats int) (Buffer, error)

	// WriteBuffer uploads data to the start of buf.
	WriteBuffer(buf Buffer, data []float32) error

	// Clear fills every target with c.
	Clear(targets []Texture, c Color) error

	// Draw executes one draw call.
	Draw(call *DrawCall) error

	// Flush submits pending GPU work.
	Flush() error

	// Destroy releases the device. Resources must not be used afterwards.
	Destroy()
}

// SharedExporter is implemented by devices that can publish a texture for
// other contexts.
type SharedExporter interface {
	ExportShared(tex Texture) (uintptr, error)
}

// SharedOpener is implemented by devices that can open textures published by
// another context. Opened textures are not owned: destroying them releases
// only the local handle.
type SharedOpener interface {
	OpenShared(handle uintptr) (Texture, error)
}

// Backend opens devices. Backends register themselves with the backend
// package under their Name.
type Backend interface {
	// Name returns the backend identifier (e.g., "software", "native").
	Name() string

	// Open creates a new device.
	Open() (Device, error)
}
