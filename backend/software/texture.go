package software

import (
	"sync"

	"github.com/gogpu/vidgfx/render"
)

// memory is the pixel storage of a texture. Exported textures share one
// memory between the owner and every opened handle.
type memory struct {
	pix      []byte
	stride   int
	released bool
}

// Texture is a CPU texture.
type Texture struct {
	dev       *Device
	desc      render.TextureDesc
	mem       *memory
	owned     bool
	mapped    bool
	destroyed bool
}

// Desc returns the texture description.
func (t *Texture) Desc() render.TextureDesc { return t.desc }

// Pix returns the texel bytes and row stride. Intended for tests and
// read-only inspection; staging textures should be mapped instead.
func (t *Texture) Pix() ([]byte, int) { return t.mem.pix, t.mem.stride }

// Owned reports whether destroying t releases the pixel memory.
func (t *Texture) Owned() bool { return t.owned }

// Destroy releases the texture. Destroying the owner of an exported texture
// invalidates every opened handle.
func (t *Texture) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	if t.owned {
		shared.release(t.mem)
		t.mem.released = true
	}
}

func (t *Texture) rowBytes() int {
	return t.desc.Width * t.desc.Format.BytesPerTexel()
}

// Buffer is a CPU vertex buffer.
type Buffer struct {
	dev  *Device
	data []float32
}

// Cap returns the capacity in floats.
func (b *Buffer) Cap() int { return len(b.data) }

// Floats returns the buffer contents.
func (b *Buffer) Floats() []float32 { return b.data }

// Destroy releases the buffer.
func (b *Buffer) Destroy() { b.data = nil }

// sharedTable maps exported handles to texture memory, process-wide, so
// that two devices can exchange textures the way two graphics contexts
// exchange shared resource handles.
type sharedTable struct {
	mu      sync.Mutex
	next    uintptr
	entries map[uintptr]sharedEntry
}

type sharedEntry struct {
	mem  *memory
	desc render.TextureDesc
}

var shared = &sharedTable{next: 0x1000, entries: make(map[uintptr]sharedEntry)}

func (s *sharedTable) publish(t *Texture) uintptr {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h, e := range s.entries {
		if e.mem == t.mem {
			return h
		}
	}
	s.next += 4
	s.entries[s.next] = sharedEntry{mem: t.mem, desc: t.desc}
	return s.next
}

func (s *sharedTable) open(h uintptr) (*memory, render.TextureDesc, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[h]
	if !ok || e.mem.released {
		return nil, render.TextureDesc{}, false
	}
	return e.mem, e.desc, true
}

func (s *sharedTable) release(mem *memory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h, e := range s.entries {
		if e.mem == mem {
			delete(s.entries, h)
		}
	}
}
