package vidgfx

import (
	"fmt"
	"image"

	"github.com/gogpu/vidgfx/render"
)

// targetFormat returns the texel layout of render targets and BGRA
// textures, and whether it is an RGBA8 stand-in.
func (c *Context) targetFormat() (render.TexelFormat, bool) {
	if c.caps.BGRATextures {
		return render.TexelBGRA8, false
	}
	return render.TexelRGBA8, true
}

// scratchAlloc returns the texture size backing a scratch target of the
// given logical size.
func (c *Context) scratchAlloc(size image.Point) image.Point {
	if c.caps.NonPowerOfTwo {
		return size
	}
	return image.Point{
		X: int(NextPowTwo(uint32(size.X))),
		Y: int(NextPowTwo(uint32(size.Y))),
	}
}

func (c *Context) newTarget(label string, size image.Point) (*Texture, error) {
	f, hack := c.targetFormat()
	return c.createTex(render.TextureDesc{
		Label:  label,
		Width:  size.X,
		Height: size.Y,
		Format: f,
		Flags:  render.TexTargetable,
	}, nil, 0, hack)
}

func (c *Context) createTargets() error {
	var err error
	for i, label := range []string{"screen front", "screen back"} {
		if c.screen[i], err = c.newTarget(label, c.opts.screenSize); err != nil {
			return err
		}
	}
	for i, label := range []string{"canvas 1", "canvas 2"} {
		if c.canvas[i], err = c.newTarget(label, c.opts.canvasSize); err != nil {
			return err
		}
	}
	for i, label := range []string{"scratch 1", "scratch 2"} {
		if c.scratch[i], err = c.newTarget(label, c.scratchAlloc(c.opts.scratchSize)); err != nil {
			return err
		}
		c.scratchSize[i] = c.opts.scratchSize
	}
	c.nextScratch = 0
	return nil
}

func (c *Context) releaseTargets() {
	for _, pair := range []*[2]*Texture{&c.screen, &c.canvas, &c.scratch} {
		for i, t := range pair {
			if t != nil {
				c.releaseTex(t)
			}
			pair[i] = nil
		}
	}
	c.scratchSize = [2]image.Point{}
}

// resizePair recreates both textures of a target pair at size.
func (c *Context) resizePair(pair *[2]*Texture, name string, size image.Point) error {
	if c.dev == nil {
		return c.setError(ErrNoDevice, LogWarning)
	}
	if size.X <= 0 || size.Y <= 0 {
		return c.setError(fmt.Errorf("vidgfx: resize %s target to %v: %w", name, size, ErrInvalidSize), LogWarning)
	}
	for i := range pair {
		if pair[i] != nil && pair[i].Size() == size {
			continue
		}
		t, err := c.newTarget(fmt.Sprintf("%s %d", name, i+1), size)
		if err != nil {
			return c.setError(fmt.Errorf("vidgfx: resize %s target: %w", name, err), LogCritical)
		}
		if pair[i] != nil {
			c.releaseTex(pair[i])
		}
		pair[i] = t
	}
	c.log(LogNotice, "render target resized", "target", name, "size", size)
	return nil
}

// ResizeScreenTarget resizes both screen buffers.
func (c *Context) ResizeScreenTarget(size image.Point) error {
	return c.resizePair(&c.screen, "screen", size)
}

// ResizeCanvasTarget resizes both canvas targets.
func (c *Context) ResizeCanvasTarget(size image.Point) error {
	return c.resizePair(&c.canvas, "canvas", size)
}

// ResizeScratchTarget sets the logical size of both scratch targets. On
// devices without non-power-of-two support the textures are rounded up;
// ScratchTargetToTexRatio gives the used fraction. The next scratch target
// becomes Scratch1.
func (c *Context) ResizeScratchTarget(size image.Point) error {
	if c.dev == nil {
		return c.setError(ErrNoDevice, LogWarning)
	}
	if size.X <= 0 || size.Y <= 0 {
		return c.setError(fmt.Errorf("vidgfx: resize scratch target to %v: %w", size, ErrInvalidSize), LogWarning)
	}
	for i := range c.scratch {
		if err := c.fitScratch(i, size); err != nil {
			return err
		}
	}
	c.nextScratch = 0
	return nil
}

// fitScratch gives scratch target i the logical size, reallocating only its
// own texture. The other scratch target may be the source of the pass that
// renders into i, so it is left untouched.
func (c *Context) fitScratch(i int, size image.Point) error {
	if c.scratch[i] != nil && c.scratchSize[i] == size {
		return nil
	}
	alloc := c.scratchAlloc(size)
	if c.scratch[i] == nil || c.scratch[i].Size() != alloc {
		t, err := c.newTarget(fmt.Sprintf("scratch %d", i+1), alloc)
		if err != nil {
			return c.setError(fmt.Errorf("vidgfx: resize scratch target: %w", err), LogCritical)
		}
		if c.scratch[i] != nil {
			c.releaseTex(c.scratch[i])
		}
		c.scratch[i] = t
	}
	c.scratchSize[i] = size
	c.log(LogNotice, "render target resized", "target", TargetScratch1+RenderTarget(i), "size", size)
	return nil
}

// SwapScreenBufs exchanges the screen front and back buffers.
func (c *Context) SwapScreenBufs() {
	c.screen[0], c.screen[1] = c.screen[1], c.screen[0]
}

// TargetTex returns the texture holding the contents of a render target. For
// Screen this is the front buffer.
func (c *Context) TargetTex(t RenderTarget) *Texture {
	switch t {
	case TargetScreen:
		return c.screen[0]
	case TargetCanvas1, TargetCanvas2:
		return c.canvas[t-TargetCanvas1]
	case TargetScratch1, TargetScratch2:
		return c.scratch[t-TargetScratch1]
	case TargetUser:
		return c.user[0]
	}
	return nil
}

// NextScratchTarget returns the scratch target that was not returned last.
// A pass reading the previous result never writes the texture it reads.
func (c *Context) NextScratchTarget() RenderTarget {
	t := TargetScratch1 + RenderTarget(c.nextScratch)
	c.nextScratch ^= 1
	return t
}

// ScratchTargetToTexRatio returns the fraction of the most recently
// returned scratch texture covered by its logical size.
func (c *Context) ScratchTargetToTexRatio() render.Point {
	i := c.nextScratch ^ 1
	t := c.scratch[i]
	if !t.IsValid() {
		return render.Pt(1, 1)
	}
	s := c.scratchSize[i]
	return render.Pt(float32(s.X)/float32(t.Width()), float32(s.Y)/float32(t.Height()))
}

// SetUserRenderTarget binds textures to the User target. b is only needed
// by shaders with two outputs and may be nil.
func (c *Context) SetUserRenderTarget(a, b *Texture) {
	c.user = [2]*Texture{a, b}
	c.userVP = image.Rectangle{}
}

// SetUserRenderTargetViewport limits drawing to rect of the User target.
func (c *Context) SetUserRenderTargetViewport(rect image.Rectangle) {
	c.userVP = rect
}

// SetUserRenderTargetViewportSize limits drawing to the top left size of
// the User target.
func (c *Context) SetUserRenderTargetViewportSize(size image.Point) {
	c.userVP = image.Rectangle{Max: size}
}

// targetTextures returns the textures drawn into for t: the back buffer for
// Screen and both user textures for a two-output User draw.
func (c *Context) targetTextures(t RenderTarget, outputs int) ([]*Texture, error) {
	var out []*Texture
	switch t {
	case TargetScreen:
		out = []*Texture{c.screen[1]}
	case TargetUser:
		out = c.user[:max(outputs, 1)]
	default:
		out = []*Texture{c.TargetTex(t)}
	}
	if outputs > len(out) {
		return nil, fmt.Errorf("%w: %v needs %d outputs", ErrNoTarget, t, outputs)
	}
	for _, tex := range out {
		if !tex.IsValid() {
			return nil, fmt.Errorf("%w: %v", ErrNoTarget, t)
		}
		if !tex.IsTargetable() {
			return nil, fmt.Errorf("%w: %v texture is not targetable", ErrNoTarget, t)
		}
	}
	return out, nil
}

// viewport returns the pixel rectangle drawn into for t.
func (c *Context) viewport(t RenderTarget) image.Rectangle {
	switch t {
	case TargetScratch1, TargetScratch2:
		return image.Rectangle{Max: c.scratchSize[t-TargetScratch1]}
	case TargetUser:
		if !c.userVP.Empty() {
			return c.userVP
		}
		return image.Rectangle{Max: c.user[0].Size()}
	case TargetScreen:
		return image.Rectangle{Max: c.screen[1].Size()}
	default:
		return image.Rectangle{Max: c.TargetTex(t).Size()}
	}
}
