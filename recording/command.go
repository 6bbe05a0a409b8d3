package recording

import (
	"image"

	"github.com/gogpu/vidgfx/render"
)

// CommandType identifies the type of a command.
// Each command type corresponds to one render.Device operation.
type CommandType uint8

const (
	// Resource commands
	CmdNewTexture   CommandType = iota // Create a texture
	CmdOpenShared                      // Open a shared texture by handle
	CmdWriteTexture                    // Upload texel data
	CmdMapTexture                      // Map a staging texture
	CmdUnmapTexture                    // Unmap a staging texture
	CmdCopyTexture                     // Copy a texture region
	CmdNewBuffer                       // Create a vertex buffer
	CmdWriteBuffer                     // Upload vertex data

	// Drawing commands
	CmdClear // Clear render targets
	CmdDraw  // Issue a draw call
	CmdFlush // Submit pending work
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdNewTexture:   "NewTexture",
	CmdOpenShared:   "OpenShared",
	CmdWriteTexture: "WriteTexture",
	CmdMapTexture:   "MapTexture",
	CmdUnmapTexture: "UnmapTexture",
	CmdCopyTexture:  "CopyTexture",
	CmdNewBuffer:    "NewBuffer",
	CmdWriteBuffer:  "WriteBuffer",
	CmdClear:        "Clear",
	CmdDraw:         "Draw",
	CmdFlush:        "Flush",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is the interface implemented by all command types.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// --------------------------------------------------------------------------
// Reference Types
// --------------------------------------------------------------------------

// TextureRef is a reference to a texture in the resource pool.
type TextureRef uint32

// BufferRef is a reference to a vertex buffer in the resource pool.
type BufferRef uint32

// InvalidRef is the sentinel value for an invalid reference.
const InvalidRef = ^uint32(0)

// IsValid returns true if the reference points to a texture.
func (r TextureRef) IsValid() bool {
	return uint32(r) != InvalidRef
}

// IsValid returns true if the reference points to a buffer.
func (r BufferRef) IsValid() bool {
	return uint32(r) != InvalidRef
}

// --------------------------------------------------------------------------
// Resource Commands
// --------------------------------------------------------------------------

// NewTextureCommand creates a texture.
type NewTextureCommand struct {
	Texture TextureRef
	Desc    render.TextureDesc
	// Data is a copy of the initial contents, nil when none were given.
	Data   []byte
	Stride int
}

// Type implements Command.
func (NewTextureCommand) Type() CommandType { return CmdNewTexture }

// OpenSharedCommand opens a texture published by another context. Playback
// cannot reproduce foreign handles and creates a blank texture of the same
// description instead.
type OpenSharedCommand struct {
	Texture TextureRef
	Handle  uintptr
	Desc    render.TextureDesc
}

// Type implements Command.
func (OpenSharedCommand) Type() CommandType { return CmdOpenShared }

// WriteTextureCommand replaces texture contents.
type WriteTextureCommand struct {
	Texture TextureRef
	Data    []byte
	Stride  int
}

// Type implements Command.
func (WriteTextureCommand) Type() CommandType { return CmdWriteTexture }

// MapTextureCommand maps a staging texture.
type MapTextureCommand struct {
	Texture TextureRef
}

// Type implements Command.
func (MapTextureCommand) Type() CommandType { return CmdMapTexture }

// UnmapTextureCommand unmaps a staging texture.
type UnmapTextureCommand struct {
	Texture TextureRef
}

// Type implements Command.
func (UnmapTextureCommand) Type() CommandType { return CmdUnmapTexture }

// CopyTextureCommand copies a texture region.
type CopyTextureCommand struct {
	Dst, Src TextureRef
	DstPos   image.Point
	SrcRect  image.Rectangle
}

// Type implements Command.
func (CopyTextureCommand) Type() CommandType { return CmdCopyTexture }

// NewBufferCommand creates a vertex buffer.
type NewBufferCommand struct {
	Buffer    BufferRef
	NumFloats int
}

// Type implements Command.
func (NewBufferCommand) Type() CommandType { return CmdNewBuffer }

// WriteBufferCommand uploads vertex data.
type WriteBufferCommand struct {
	Buffer BufferRef
	Data   []float32
}

// Type implements Command.
func (WriteBufferCommand) Type() CommandType { return CmdWriteBuffer }

// --------------------------------------------------------------------------
// Drawing Commands
// --------------------------------------------------------------------------

// ClearCommand clears render targets.
type ClearCommand struct {
	Targets []TextureRef
	Color   render.Color
}

// Type implements Command.
func (ClearCommand) Type() CommandType { return CmdClear }

// DrawCommand is a draw call with its resources replaced by references.
type DrawCommand struct {
	Targets  []TextureRef
	Viewport render.Rect
	Shader   render.Shader
	Topology render.Topology
	Blending render.Blending
	Filter   render.Filter
	Textures [3]TextureRef
	Buffer   BufferRef
	VertSize int
	First    int
	Count    int
	Uniforms render.Uniforms
}

// Type implements Command.
func (DrawCommand) Type() CommandType { return CmdDraw }

// BoundUnits returns how many texture units the draw binds.
func (c DrawCommand) BoundUnits() int {
	n := 0
	for _, r := range c.Textures {
		if r.IsValid() {
			n++
		}
	}
	return n
}

// FlushCommand submits pending work.
type FlushCommand struct{}

// Type implements Command.
func (FlushCommand) Type() CommandType { return CmdFlush }
