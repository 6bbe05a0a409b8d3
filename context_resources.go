package vidgfx

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/vidgfx/render"
)

// createTex creates a device texture and tracks it. Errors are returned
// unrecorded; the exported constructors record them.
func (c *Context) createTex(desc render.TextureDesc, data []byte, stride int, hack bool) (*Texture, error) {
	if c.dev == nil {
		return nil, ErrNoDevice
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, desc.Width, desc.Height)
	}
	tex, err := c.dev.NewTexture(desc, data, stride)
	if err != nil {
		return nil, err
	}
	t := &Texture{ctx: c, tex: tex, desc: tex.Desc(), srgbHack: hack, owned: true}
	c.textures[t] = struct{}{}
	return t, nil
}

// newTex wraps createTex for the exported constructors: failures return nil
// and set LastError.
func (c *Context) newTex(op string, desc render.TextureDesc, data []byte, stride int, hack bool) *Texture {
	t, err := c.createTex(desc, data, stride, hack)
	if err != nil {
		lvl := LogWarning
		if !errors.Is(err, ErrInvalidSize) && !errors.Is(err, render.ErrInvalidSize) && !errors.Is(err, render.ErrUnsupported) {
			lvl = LogCritical
		}
		c.setError(fmt.Errorf("vidgfx: %s: %w", op, err), lvl)
		return nil
	}
	c.debug("texture created", "label", desc.Label, "size", t.Size(), "format", t.desc.Format)
	return t
}

func texFlags(writable, targetable bool) render.TextureFlags {
	var f render.TextureFlags
	if writable {
		f |= render.TexWritable
	}
	if targetable {
		f |= render.TexTargetable
	}
	return f
}

// NewTexFromImage creates a BGRA texture holding img.
func (c *Context) NewTexFromImage(img image.Image, writable, targetable bool) *Texture {
	if img == nil {
		c.setError(fmt.Errorf("vidgfx: new texture from image: %w", ErrInvalidSize), LogWarning)
		return nil
	}
	f, hack := c.targetFormat()
	size := img.Bounds().Size()
	desc := render.TextureDesc{Label: "image", Width: size.X, Height: size.Y, Format: f, Flags: texFlags(writable, targetable)}
	if size.X <= 0 || size.Y <= 0 {
		return c.newTex("new texture from image", desc, nil, 0, hack)
	}
	data, stride, err := texelsFromImage(img, size, f)
	if err != nil {
		c.setError(fmt.Errorf("vidgfx: new texture from image: %w", err), LogWarning)
		return nil
	}
	return c.newTex("new texture from image", desc, data, stride, hack)
}

// NewTex creates an uninitialised colour texture. With useBGRA the texels
// are BGRA, or swizzled RGBA8 on devices without BGRA textures; otherwise
// they are RGBA8.
func (c *Context) NewTex(size image.Point, writable, targetable, useBGRA bool) *Texture {
	f, hack := render.TexelRGBA8, false
	if useBGRA {
		f, hack = c.targetFormat()
	}
	return c.newTex("new texture", render.TextureDesc{
		Width: size.X, Height: size.Y, Format: f, Flags: texFlags(writable, targetable),
	}, nil, 0, hack)
}

// NewTexSameFormat creates a texture with the texel layout of same.
func (c *Context) NewTexSameFormat(size image.Point, same *Texture, writable, targetable bool) *Texture {
	if !same.IsValid() {
		c.setError(fmt.Errorf("vidgfx: new texture: %w", ErrInvalidTexture), LogWarning)
		return nil
	}
	return c.newTex("new texture", render.TextureDesc{
		Width: size.X, Height: size.Y, Format: same.desc.Format, Flags: texFlags(writable, targetable),
	}, nil, 0, same.srgbHack)
}

// NewStagingTex creates a mappable texture in the render target layout.
// CPU-produced pixels are written to it between Map and Unmap and then
// moved to a GPU texture with CopyTexData. The same texture serves as the
// destination when reading render results back.
func (c *Context) NewStagingTex(size image.Point) *Texture {
	f, hack := c.targetFormat()
	return c.newTex("new staging texture", render.TextureDesc{
		Label: "staging", Width: size.X, Height: size.Y, Format: f, Flags: render.TexStaging,
	}, nil, 0, hack)
}

// NewGDITex creates a targetable GDI compatible texture.
func (c *Context) NewGDITex(size image.Point) *Texture {
	if !c.caps.GDITextures {
		c.setError(fmt.Errorf("vidgfx: new GDI texture: %w", render.ErrUnsupported), LogWarning)
		return nil
	}
	f, hack := c.targetFormat()
	return c.newTex("new GDI texture", render.TextureDesc{
		Label: "gdi", Width: size.X, Height: size.Y, Format: f, Flags: render.TexGDI | render.TexTargetable,
	}, nil, 0, hack)
}

// NewPlaneTex creates a texture for plane i of a frame in the given pixel
// format, ready to be passed to ConvertToBGRX.
func (c *Context) NewPlaneTex(format PixelFormat, plane int, frame image.Point, writable bool) *Texture {
	info, ok := format.Info()
	if !ok || plane < 0 || plane >= len(info.Planes) {
		c.setError(fmt.Errorf("vidgfx: new plane texture: %w: %v plane %d", ErrUnsupportedFormat, format, plane), LogWarning)
		return nil
	}
	p := info.Planes[plane]
	size := p.Size(frame)
	f, hack := p.Texel, false
	if f == render.TexelBGRA8 {
		f, hack = c.targetFormat()
	}
	return c.newTex("new plane texture", render.TextureDesc{
		Label:  fmt.Sprintf("%v plane %d", format, plane),
		Width:  size.X,
		Height: size.Y,
		Format: f,
		Flags:  texFlags(writable, false),
	}, nil, 0, hack)
}

// OpenSharedTex opens a texture published by another context. The result
// is not owned: destroying it leaves the producer's texture intact.
func (c *Context) OpenSharedTex(handle uintptr) *Texture {
	if c.dev == nil {
		c.setError(ErrNoDevice, LogWarning)
		return nil
	}
	opener, ok := c.dev.(render.SharedOpener)
	if !ok || !c.caps.SharedTextures {
		c.setError(fmt.Errorf("vidgfx: open shared texture: %w", render.ErrUnsupported), LogWarning)
		return nil
	}
	tex, err := opener.OpenShared(handle)
	if err != nil {
		c.setError(fmt.Errorf("vidgfx: open shared texture %#x: %w", handle, err), LogWarning)
		return nil
	}
	t := &Texture{ctx: c, tex: tex, desc: tex.Desc()}
	c.textures[t] = struct{}{}
	return t
}

// ExportSharedTex publishes tex for other contexts and returns its handle.
func (c *Context) ExportSharedTex(tex *Texture) (uintptr, bool) {
	if !tex.IsValid() {
		c.setError(fmt.Errorf("vidgfx: export shared texture: %w", ErrInvalidTexture), LogWarning)
		return 0, false
	}
	exporter, ok := c.dev.(render.SharedExporter)
	if !ok || !c.caps.SharedTextures {
		c.setError(fmt.Errorf("vidgfx: export shared texture: %w", render.ErrUnsupported), LogWarning)
		return 0, false
	}
	h, err := exporter.ExportShared(tex.tex)
	if err != nil {
		c.setError(fmt.Errorf("vidgfx: export shared texture: %w", err), LogWarning)
		return 0, false
	}
	return h, true
}

// DestroyTex releases a texture and unbinds it from the User target and the
// texture units. Render target textures belong to the Context and are
// ignored.
func (c *Context) DestroyTex(tex *Texture) {
	if !tex.IsValid() || tex.ctx != c || c.isTarget(tex) {
		return
	}
	c.releaseTex(tex)
}

func (c *Context) isTarget(tex *Texture) bool {
	for _, pair := range [][2]*Texture{c.screen, c.canvas, c.scratch} {
		if pair[0] == tex || pair[1] == tex {
			return true
		}
	}
	return false
}

func (c *Context) releaseTex(tex *Texture) {
	for i := range c.user {
		if c.user[i] == tex {
			c.user[i] = nil
		}
	}
	for i := range c.state.texs {
		if c.state.texs[i] == tex {
			c.state.texs[i] = nil
		}
	}
	if tex.mapped && c.dev != nil {
		_ = c.dev.UnmapTexture(tex.tex)
		tex.mapped = false
		tex.mapping = render.Mapping{}
	}
	if tex.tex != nil {
		tex.tex.Destroy()
		tex.tex = nil
	}
	delete(c.textures, tex)
}

// CopyTexData copies srcRect of src into dst at dstPos. Both textures must
// share a texel layout and neither may be mapped.
func (c *Context) CopyTexData(dst, src *Texture, dstPos image.Point, srcRect image.Rectangle) bool {
	err := func() error {
		switch {
		case c.dev == nil:
			return ErrNoDevice
		case !dst.IsValid() || !src.IsValid():
			return ErrInvalidTexture
		case dst.mapped || src.mapped:
			return ErrTextureMapped
		case dst.desc.Format != src.desc.Format:
			return fmt.Errorf("%w: %v to %v", ErrFormatMismatch, src.desc.Format, dst.desc.Format)
		case !srcRect.In(src.desc.Bounds()),
			!srcRect.Sub(srcRect.Min).Add(dstPos).In(dst.desc.Bounds()):
			return fmt.Errorf("%w: %v at %v", ErrOutOfBounds, srcRect, dstPos)
		}
		return c.dev.CopyTexture(dst.tex, src.tex, dstPos, srcRect)
	}()
	if err != nil {
		c.setError(fmt.Errorf("vidgfx: copy texture: %w", err), LogWarning)
		return false
	}
	return true
}

// NewVertBuf creates a vertex buffer with room for at least numFloats
// floats, rounded up to whole 8-float vertices.
func (c *Context) NewVertBuf(numFloats int) *VertexBuffer {
	b := newVertexBuffer(c, numFloats)
	c.buffers[b] = struct{}{}
	return b
}

// DestroyVertBuf releases a vertex buffer.
func (c *Context) DestroyVertBuf(buf *VertexBuffer) {
	if !buf.IsValid() {
		return
	}
	delete(c.buffers, buf)
	buf.release()
}
