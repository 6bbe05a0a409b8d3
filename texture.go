package vidgfx

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/vidgfx/render"
)

// Texture is a texture owned by a Context. A nil or destroyed Texture is
// invalid; creation failures return one with IsValid reporting false.
type Texture struct {
	ctx  *Context
	tex  render.Texture
	desc render.TextureDesc

	mapping render.Mapping
	mapped  bool

	// srgbHack marks a BGRA request served by an RGBA8 texture.
	srgbHack bool
	owned    bool
}

// IsValid reports whether t refers to a live texture.
func (t *Texture) IsValid() bool {
	return t != nil && t.tex != nil
}

// IsMapped reports whether t is mapped for CPU access.
func (t *Texture) IsMapped() bool {
	return t.IsValid() && t.mapped
}

// Data returns the mapped texels. It is nil unless the texture is mapped.
func (t *Texture) Data() []byte {
	if !t.IsMapped() {
		return nil
	}
	return t.mapping.Data
}

// Stride returns the bytes per row of the mapped texels, or 0 when unmapped.
func (t *Texture) Stride() int {
	if !t.IsMapped() {
		return 0
	}
	return t.mapping.Stride
}

// IsWritable reports whether the texture accepts UpdateData.
func (t *Texture) IsWritable() bool { return t.has(render.TexWritable) }

// IsTargetable reports whether the texture can be a render target.
func (t *Texture) IsTargetable() bool { return t.has(render.TexTargetable) }

// IsStaging reports whether the texture can be mapped.
func (t *Texture) IsStaging() bool { return t.has(render.TexStaging) }

// IsGDI reports whether the texture is GDI compatible.
func (t *Texture) IsGDI() bool { return t.has(render.TexGDI) }

// IsSRGBHack reports whether the texture stores swizzled RGBA8 texels in
// place of BGRA8 because the device lacks BGRA textures.
func (t *Texture) IsSRGBHack() bool { return t.IsValid() && t.srgbHack }

// IsOwned reports whether destroying the texture releases the underlying
// resource. Textures opened from a shared handle are not owned.
func (t *Texture) IsOwned() bool { return t.IsValid() && t.owned }

func (t *Texture) has(f render.TextureFlags) bool {
	return t.IsValid() && t.desc.Flags.Has(f)
}

// Size returns the texture size in texels.
func (t *Texture) Size() image.Point {
	if !t.IsValid() {
		return image.Point{}
	}
	return t.desc.Size()
}

// Width returns the texture width in texels.
func (t *Texture) Width() int { return t.Size().X }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return t.Size().Y }

// TexelFormat returns the texel layout of the underlying texture.
func (t *Texture) TexelFormat() render.TexelFormat {
	if !t.IsValid() {
		return render.TexelUnknown
	}
	return t.desc.Format
}

// Device returns the underlying device texture.
func (t *Texture) Device() render.Texture {
	if !t.IsValid() {
		return nil
	}
	return t.tex
}

// UpdateData replaces the contents of a writable colour texture with img,
// scaling it when the sizes differ.
func (t *Texture) UpdateData(img image.Image) error {
	if err := t.checkWrite(); err != nil {
		return t.fail("update texture", err)
	}
	data, stride, err := texelsFromImage(img, t.desc.Size(), t.desc.Format)
	if err != nil {
		return t.fail("update texture", err)
	}
	if err := t.ctx.dev.WriteTexture(t.tex, data, stride); err != nil {
		return t.fail("update texture", err)
	}
	return nil
}

// UpdatePlane replaces the contents of a writable texture with raw texels,
// stride bytes per row. BGRA data written to an sRGB-hack texture is
// swizzled on the way.
func (t *Texture) UpdatePlane(data []byte, stride int) error {
	if err := t.checkWrite(); err != nil {
		return t.fail("update plane", err)
	}
	if t.srgbHack {
		data = swapRB(data, stride, t.desc.Width, t.desc.Height)
	}
	if err := t.ctx.dev.WriteTexture(t.tex, data, stride); err != nil {
		return t.fail("update plane", err)
	}
	return nil
}

func (t *Texture) checkWrite() error {
	switch {
	case !t.IsValid():
		return ErrInvalidTexture
	case !t.desc.Flags.Has(render.TexWritable):
		return ErrNotWritable
	case t.mapped:
		return ErrTextureMapped
	}
	return nil
}

// Map maps a staging texture for CPU access. The texels are available from
// Data and Stride until Unmap.
func (t *Texture) Map() error {
	switch {
	case !t.IsValid():
		return t.fail("map texture", ErrInvalidTexture)
	case !t.desc.Flags.Has(render.TexStaging):
		return t.fail("map texture", ErrNotStaging)
	case t.mapped:
		return t.fail("map texture", ErrAlreadyMapped)
	}
	m, err := t.ctx.dev.MapTexture(t.tex)
	if err != nil {
		return t.fail("map texture", err)
	}
	t.mapping = m
	t.mapped = true
	return nil
}

// Unmap ends a mapping started by Map.
func (t *Texture) Unmap() error {
	switch {
	case !t.IsValid():
		return t.fail("unmap texture", ErrInvalidTexture)
	case !t.mapped:
		return t.fail("unmap texture", ErrNotMapped)
	}
	t.mapped = false
	t.mapping = render.Mapping{}
	if err := t.ctx.dev.UnmapTexture(t.tex); err != nil {
		return t.fail("unmap texture", err)
	}
	return nil
}

// ToImage copies a mapped colour staging texture into an NRGBA image.
func (t *Texture) ToImage() (*image.NRGBA, error) {
	if !t.IsMapped() {
		return nil, t.fail("read texture", ErrNotMapped)
	}
	w, h := t.desc.Width, t.desc.Height
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	f := t.desc.Format
	bpp := f.BytesPerTexel()
	for y := 0; y < h; y++ {
		src := t.mapping.Data[y*t.mapping.Stride:]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			v := f.Decode(src[x*bpp:])
			c := render.Color{R: v[0], G: v[1], B: v[2], A: v[3]}.NRGBA()
			dst[x*4], dst[x*4+1], dst[x*4+2], dst[x*4+3] = c.R, c.G, c.B, c.A
		}
	}
	return img, nil
}

func (t *Texture) fail(op string, err error) error {
	err = fmt.Errorf("vidgfx: %s: %w", op, err)
	if t != nil && t.ctx != nil {
		t.ctx.setError(err, LogWarning)
	}
	return err
}

// texelsFromImage converts img to tightly packed texels of the given format
// and size.
func texelsFromImage(img image.Image, size image.Point, f render.TexelFormat) ([]byte, int, error) {
	if f != render.TexelBGRA8 && f != render.TexelRGBA8 {
		return nil, 0, fmt.Errorf("%w: %v", ErrFormatMismatch, f)
	}
	rgba := image.NewNRGBA(image.Rectangle{Max: size})
	if img.Bounds().Size() == size {
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	} else {
		draw.BiLinear.Scale(rgba, rgba.Bounds(), img, img.Bounds(), draw.Src, nil)
	}
	if f == render.TexelBGRA8 {
		return swapRB(rgba.Pix, rgba.Stride, size.X, size.Y), rgba.Stride, nil
	}
	return rgba.Pix, rgba.Stride, nil
}

// swapRB returns a copy of 4-byte texels with the first and third channel
// exchanged.
func swapRB(data []byte, stride, w, h int) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	for y := 0; y < h; y++ {
		row := out[y*stride:]
		for x := 0; x < w && x*4+3 < len(row); x++ {
			row[x*4], row[x*4+2] = row[x*4+2], row[x*4]
		}
	}
	return out
}
