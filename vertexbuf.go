package vidgfx

import "github.com/gogpu/vidgfx/render"

// DefaultVertSize is the number of floats per vertex of a new buffer:
// x, y, r, g, b, a, u, v.
const DefaultVertSize = 8

// VertexBuffer is CPU-side vertex data uploaded to the device when dirty.
// The float count is always NumVerts * VertSize.
type VertexBuffer struct {
	ctx      *Context
	data     []float32
	vertSize int
	dirty    bool

	gpu       render.Buffer
	destroyed bool
}

// newVertexBuffer creates a buffer with room for at least numFloats floats.
func newVertexBuffer(ctx *Context, numFloats int) *VertexBuffer {
	b := &VertexBuffer{ctx: ctx, vertSize: DefaultVertSize, dirty: true}
	numVerts := (max(numFloats, 0) + DefaultVertSize - 1) / DefaultVertSize
	b.data = make([]float32, numVerts*DefaultVertSize)
	return b
}

// IsValid reports whether b can be filled and drawn.
func (b *VertexBuffer) IsValid() bool {
	return b != nil && !b.destroyed
}

// Data returns the vertex floats. Writing through the slice requires a
// SetDirty call before the next draw.
func (b *VertexBuffer) Data() []float32 { return b.data }

// NumFloats returns the number of floats in the buffer.
func (b *VertexBuffer) NumFloats() int { return len(b.data) }

// SetNumVerts resizes the buffer to n vertices, keeping existing data.
func (b *VertexBuffer) SetNumVerts(n int) {
	b.resize(max(n, 0) * b.vertSize)
}

// NumVerts returns the number of vertices.
func (b *VertexBuffer) NumVerts() int {
	if b.vertSize == 0 {
		return 0
	}
	return len(b.data) / b.vertSize
}

// SetVertSize sets the floats per vertex, keeping the vertex count.
func (b *VertexBuffer) SetVertSize(size int) {
	if size <= 0 || size == b.vertSize {
		return
	}
	n := b.NumVerts()
	b.vertSize = size
	b.resize(n * size)
}

// VertSize returns the floats per vertex.
func (b *VertexBuffer) VertSize() int { return b.vertSize }

// SetDirty marks the buffer for upload before the next draw.
func (b *VertexBuffer) SetDirty(dirty bool) { b.dirty = dirty }

// IsDirty reports whether the buffer will be uploaded before the next draw.
func (b *VertexBuffer) IsDirty() bool { return b.dirty }

func (b *VertexBuffer) resize(numFloats int) {
	switch {
	case numFloats == len(b.data):
	case numFloats <= cap(b.data):
		b.data = b.data[:numFloats]
	default:
		grown := make([]float32, numFloats)
		copy(grown, b.data)
		b.data = grown
	}
	b.dirty = true
}

// reserve sets the layout for a builder and reports whether the buffer can
// hold it.
func (b *VertexBuffer) reserve(numVerts, vertSize int) bool {
	if !b.IsValid() {
		return false
	}
	b.vertSize = vertSize
	b.resize(numVerts * vertSize)
	return true
}

// upload writes dirty data to the device buffer, growing it if needed.
// The dirty flag is cleared exactly once per successful upload.
func (b *VertexBuffer) upload(dev render.Device) error {
	if !b.dirty && b.gpu != nil {
		return nil
	}
	if b.gpu == nil || b.gpu.Cap() < len(b.data) {
		if b.gpu != nil {
			b.gpu.Destroy()
			b.gpu = nil
		}
		buf, err := dev.NewBuffer(max(len(b.data), 1))
		if err != nil {
			return err
		}
		b.gpu = buf
	}
	if err := dev.WriteBuffer(b.gpu, b.data); err != nil {
		return err
	}
	b.dirty = false
	return nil
}

func (b *VertexBuffer) release() {
	if b.gpu != nil {
		b.gpu.Destroy()
		b.gpu = nil
	}
	b.destroyed = true
	b.data = nil
}
