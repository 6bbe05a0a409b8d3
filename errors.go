package vidgfx

import "errors"

// Context errors. Operations that report failure through a bool or an
// invalid *Texture record the reason, retrievable with Context.LastError.
var (
	// ErrNoDevice is returned when a Context is used before Init.
	ErrNoDevice = errors.New("vidgfx: context has no device")

	// ErrAlreadyInitialized is returned when Init is called twice.
	ErrAlreadyInitialized = errors.New("vidgfx: context already initialized")

	// ErrInvalidSize is returned for zero or negative texture sizes.
	ErrInvalidSize = errors.New("vidgfx: invalid size")

	// ErrInvalidTexture is returned when a nil or destroyed texture is used.
	ErrInvalidTexture = errors.New("vidgfx: invalid texture")

	// ErrNotStaging is returned when mapping a non-staging texture.
	ErrNotStaging = errors.New("vidgfx: texture is not a staging texture")

	// ErrNotWritable is returned when updating a texture created without
	// the writable flag.
	ErrNotWritable = errors.New("vidgfx: texture is not writable")

	// ErrAlreadyMapped is returned when mapping a texture twice.
	ErrAlreadyMapped = errors.New("vidgfx: texture is already mapped")

	// ErrNotMapped is returned when unmapping a texture that is not mapped.
	ErrNotMapped = errors.New("vidgfx: texture is not mapped")

	// ErrTextureMapped is returned when a mapped texture is drawn or copied.
	ErrTextureMapped = errors.New("vidgfx: texture is mapped")

	// ErrFormatMismatch is returned when textures have incompatible layouts.
	ErrFormatMismatch = errors.New("vidgfx: texture format mismatch")

	// ErrOutOfBounds is returned when a region exceeds a texture.
	ErrOutOfBounds = errors.New("vidgfx: region out of bounds")

	// ErrUnsupportedFormat is returned when converting a pixel format the
	// pipeline cannot handle.
	ErrUnsupportedFormat = errors.New("vidgfx: unsupported pixel format")

	// ErrNoTarget is returned when drawing to an unbound render target.
	ErrNoTarget = errors.New("vidgfx: render target not bound")

	// ErrInvalidBuffer is returned when a nil or destroyed vertex buffer is
	// drawn.
	ErrInvalidBuffer = errors.New("vidgfx: invalid vertex buffer")
)
