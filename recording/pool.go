package recording

import "github.com/gogpu/vidgfx/render"

// ResourcePool assigns references to the textures and buffers seen by a
// Recorder. References are stable for the lifetime of the recording: a
// destroyed texture keeps its reference and a new texture never reuses it.
//
// ResourcePool is not safe for concurrent use. If concurrent access is needed,
// external synchronization must be provided.
type ResourcePool struct {
	textures   []render.TextureDesc
	textureIDs map[render.Texture]TextureRef
	buffers    []int
	bufferIDs  map[render.Buffer]BufferRef
}

// NewResourcePool creates an empty resource pool with pre-allocated capacity.
func NewResourcePool() *ResourcePool {
	return &ResourcePool{
		textures:   make([]render.TextureDesc, 0, 16),
		textureIDs: make(map[render.Texture]TextureRef),
		buffers:    make([]int, 0, 8),
		bufferIDs:  make(map[render.Buffer]BufferRef),
	}
}

// AddTexture registers tex and returns its reference.
func (p *ResourcePool) AddTexture(tex render.Texture) TextureRef {
	if ref, ok := p.textureIDs[tex]; ok {
		return ref
	}
	p.textures = append(p.textures, tex.Desc())
	// #nosec G115 -- pool size is bounded by available memory, well under uint32 max
	ref := TextureRef(uint32(len(p.textures) - 1))
	p.textureIDs[tex] = ref
	return ref
}

// TextureRef returns the reference of a registered texture, or InvalidRef.
func (p *ResourcePool) TextureRef(tex render.Texture) TextureRef {
	if tex == nil {
		return TextureRef(InvalidRef)
	}
	if ref, ok := p.textureIDs[tex]; ok {
		return ref
	}
	return TextureRef(InvalidRef)
}

// TextureDesc returns the description of the referenced texture.
func (p *ResourcePool) TextureDesc(ref TextureRef) (render.TextureDesc, bool) {
	if !ref.IsValid() || int(ref) >= len(p.textures) {
		return render.TextureDesc{}, false
	}
	return p.textures[ref], true
}

// AddBuffer registers buf and returns its reference.
func (p *ResourcePool) AddBuffer(buf render.Buffer) BufferRef {
	if ref, ok := p.bufferIDs[buf]; ok {
		return ref
	}
	p.buffers = append(p.buffers, buf.Cap())
	// #nosec G115 -- pool size is bounded by available memory, well under uint32 max
	ref := BufferRef(uint32(len(p.buffers) - 1))
	p.bufferIDs[buf] = ref
	return ref
}

// BufferRef returns the reference of a registered buffer, or InvalidRef.
func (p *ResourcePool) BufferRef(buf render.Buffer) BufferRef {
	if buf == nil {
		return BufferRef(InvalidRef)
	}
	if ref, ok := p.bufferIDs[buf]; ok {
		return ref
	}
	return BufferRef(InvalidRef)
}

// TextureCount returns the number of textures ever registered.
func (p *ResourcePool) TextureCount() int { return len(p.textures) }

// BufferCount returns the number of buffers ever registered.
func (p *ResourcePool) BufferCount() int { return len(p.buffers) }
