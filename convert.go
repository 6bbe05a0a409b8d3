package vidgfx

import (
	"fmt"
	"image"

	"github.com/gogpu/vidgfx/render"
)

// ConvertToBGRX converts a frame stored in one to three plane textures into
// a BGRX texture with a single draw into the next scratch target. Planes are
// passed in the order of the format's Planes; unused ones may be nil. The
// scratch targets are resized to the output size when it differs.
//
// It returns nil and records the reason in LastError when the format is not
// convertible or the planes do not match it. No draw is issued in that case.
func (c *Context) ConvertToBGRX(format PixelFormat, a, b, cc *Texture) *Texture {
	if c.dev == nil {
		c.setError(ErrNoDevice, LogWarning)
		return nil
	}
	info, ok := format.Info()
	if !ok || info.CPUConverted {
		c.setError(fmt.Errorf("vidgfx: convert to BGRX: %w: %v", ErrUnsupportedFormat, format), LogCritical)
		return nil
	}
	planes := [3]*Texture{a, b, cc}
	out, err := c.checkPlanes(info, planes)
	if err != nil {
		c.setError(fmt.Errorf("vidgfx: convert %v to BGRX: %w", format, err), LogWarning)
		return nil
	}

	target := c.NextScratchTarget()
	if err := c.fitScratch(int(target-TargetScratch1), out); err != nil {
		return nil
	}
	var units [3]*Texture
	for i, p := range info.Units {
		units[i] = planes[p]
	}
	if err := c.drawQuad(target, info.Shader, units, render.FilterPoint, render.Pt(0, 0), render.Pt(1, 1)); err != nil {
		return nil
	}
	c.debug("frame converted", "format", format, "size", out, "target", target)
	return c.TargetTex(target)
}

// checkPlanes validates plane textures against a format entry and returns
// the output frame size.
func (c *Context) checkPlanes(info FormatInfo, planes [3]*Texture) (image.Point, error) {
	first := planes[0]
	if !first.IsValid() {
		return image.Point{}, fmt.Errorf("%w: plane 0", ErrInvalidTexture)
	}
	p0 := info.Planes[0]
	out := image.Point{X: first.Width() * p0.XDiv, Y: first.Height() * p0.YDiv}
	for i, layout := range info.Planes {
		t := planes[i]
		switch {
		case !t.IsValid():
			return out, fmt.Errorf("%w: plane %d", ErrInvalidTexture, i)
		case t.mapped:
			return out, fmt.Errorf("%w: plane %d", ErrTextureMapped, i)
		case !texelCompatible(t, layout.Texel):
			return out, fmt.Errorf("%w: plane %d is %v, want %v", ErrFormatMismatch, i, t.desc.Format, layout.Texel)
		case t.Size() != layout.Size(out):
			return out, fmt.Errorf("%w: plane %d is %v, want %v", ErrInvalidSize, i, t.Size(), layout.Size(out))
		}
	}
	return out, nil
}

// texelCompatible reports whether t can be sampled as want. BGRA planes
// may be served by sRGB-hack RGBA8 textures.
func texelCompatible(t *Texture, want render.TexelFormat) bool {
	if t.desc.Format == want {
		return true
	}
	return want == render.TexelBGRA8 && t.desc.Format == render.TexelRGBA8 && t.srgbHack
}

// Prepared is a texture ready to be sampled at a given size.
type Prepared struct {
	// Tex is the texture to sample: the input itself when no scaling was
	// needed, otherwise a scratch target.
	Tex *Texture

	// PxSize is the size of one texel of Tex in UV units.
	PxSize render.Point

	// TopLeft and BotRight are the UV corners of the prepared image in Tex.
	TopLeft, BotRight render.Point
}

// PrepareTex returns tex scaled to size. When tex already has that size it
// is returned unchanged; otherwise it is drawn with filter into the next
// scratch target. With setFilter the texture filter is set for sampling the
// result: filter when tex is returned, point sampling for a scaled copy.
func (c *Context) PrepareTex(tex *Texture, size image.Point, filter render.Filter, setFilter bool) (Prepared, bool) {
	if !tex.IsValid() {
		c.setError(fmt.Errorf("vidgfx: prepare texture: %w", ErrInvalidTexture), LogWarning)
		return Prepared{}, false
	}
	return c.PrepareTexCrop(tex, fullRect(tex), size, filter, setFilter)
}

// PrepareTexCrop is PrepareTex for the crop rectangle of tex.
func (c *Context) PrepareTexCrop(tex *Texture, crop image.Rectangle, size image.Point, filter render.Filter, setFilter bool) (Prepared, bool) {
	switch {
	case c.dev == nil:
		c.setError(ErrNoDevice, LogWarning)
		return Prepared{}, false
	case !tex.IsValid():
		c.setError(fmt.Errorf("vidgfx: prepare texture: %w", ErrInvalidTexture), LogWarning)
		return Prepared{}, false
	case size.X <= 0 || size.Y <= 0:
		c.setError(fmt.Errorf("vidgfx: prepare texture at %v: %w", size, ErrInvalidSize), LogWarning)
		return Prepared{}, false
	case crop.Empty() || !crop.In(fullRect(tex)):
		c.setError(fmt.Errorf("vidgfx: prepare texture crop %v: %w", crop, ErrOutOfBounds), LogWarning)
		return Prepared{}, false
	}

	tw, th := float32(tex.Width()), float32(tex.Height())
	tl := render.Pt(float32(crop.Min.X)/tw, float32(crop.Min.Y)/th)
	br := render.Pt(float32(crop.Max.X)/tw, float32(crop.Max.Y)/th)
	if crop.Size() == size {
		if setFilter {
			c.SetTexFilter(filter)
		}
		return Prepared{Tex: tex, PxSize: render.Pt(1/tw, 1/th), TopLeft: tl, BotRight: br}, true
	}

	if !filter.IsStandard() {
		filter = render.FilterBilinear
	}
	target := c.NextScratchTarget()
	if err := c.fitScratch(int(target-TargetScratch1), size); err != nil {
		return Prepared{}, false
	}
	if err := c.drawQuad(target, render.ShaderTexDecal, [3]*Texture{tex}, filter, tl, br); err != nil {
		return Prepared{}, false
	}
	if setFilter {
		c.SetTexFilter(render.FilterPoint)
	}
	out := c.TargetTex(target)
	ow, oh := float32(out.Width()), float32(out.Height())
	return Prepared{
		Tex:      out,
		PxSize:   render.Pt(1/ow, 1/oh),
		BotRight: render.Pt(float32(size.X)/ow, float32(size.Y)/oh),
	}, true
}
