package vidgfx

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/vidgfx/backend"
	"github.com/gogpu/vidgfx/render"
)

// Context coordinates render targets, textures, vertex buffers and draw state
// on top of one render.Device.
//
// A Context is not safe for concurrent use. All calls must come from the
// goroutine that renders.
type Context struct {
	opts contextOptions
	dev  render.Device
	caps render.Capabilities

	lastErr error

	// Render targets. screen holds the front and back buffers.
	screen      [2]*Texture
	canvas      [2]*Texture
	scratch     [2]*Texture
	scratchSize [2]image.Point // logical sizes
	nextScratch int
	user        [2]*Texture
	userVP      image.Rectangle

	state drawState

	view, proj             render.Mat4
	screenView, screenProj render.Mat4
	projSet, screenProjSet bool

	resizeLayerRect render.Rect
	nv16PxSize      render.Point
	modColor        render.Color
	effects         [4]float32
	borderColor     render.Color

	textures map[*Texture]struct{}
	buffers  map[*VertexBuffer]struct{}
	quad     *VertexBuffer

	callbacks callbackLists
}

// drawState is the pipeline state applied by DrawBuf.
type drawState struct {
	target   RenderTarget
	shader   render.Shader
	topology render.Topology
	blending render.Blending
	filter   render.Filter
	texs     [3]*Texture
}

// NewContext returns a Context with no device. Call Init before use.
func NewContext(opts ...ContextOption) *Context {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := &Context{
		opts:        o,
		view:        render.Identity4(),
		proj:        render.Identity4(),
		screenView:  render.Identity4(),
		screenProj:  render.Identity4(),
		modColor:    render.White,
		effects:     render.DefaultEffects,
		borderColor: o.borderColor,
		textures:    make(map[*Texture]struct{}),
		buffers:     make(map[*VertexBuffer]struct{}),
	}
	c.resetState()
	return c
}

// OpenContext opens a device from the named backend and initializes a
// Context on it. An empty name selects the best available backend.
func OpenContext(name string, opts ...ContextOption) (*Context, error) {
	var (
		dev render.Device
		err error
	)
	if name == "" {
		dev, err = backend.Default()
	} else {
		dev, err = backend.Open(name)
	}
	if err != nil {
		return nil, err
	}
	c := NewContext(opts...)
	if err := c.Init(dev); err != nil {
		dev.Destroy()
		return nil, err
	}
	return c, nil
}

func (c *Context) resetState() {
	c.state = drawState{
		target:   TargetCanvas1,
		shader:   render.ShaderSolid,
		topology: render.TriangleStrip,
		blending: render.BlendAlpha,
		filter:   c.opts.filter,
	}
}

// Init attaches the device and creates the render targets. The Context owns
// dev from now on and destroys it in Destroy. Capability callbacks fire
// first, then initialized callbacks.
func (c *Context) Init(dev render.Device) error {
	if dev == nil {
		return c.setError(ErrNoDevice, LogCritical)
	}
	if c.dev != nil {
		return c.setError(ErrAlreadyInitialized, LogWarning)
	}
	c.dev = dev
	c.caps = dev.Capabilities()
	c.quad = newVertexBuffer(c, TexDecalNumVerts*DefaultVertSize)

	if err := c.createTargets(); err != nil {
		c.releaseTargets()
		c.quad.release()
		c.quad = nil
		c.dev = nil
		return c.setError(fmt.Errorf("vidgfx: create render targets: %w", err), LogCritical)
	}

	c.log(LogNotice, "context initialized",
		"device", dev.Name(),
		"bgra", c.caps.BGRATextures,
		"shared", c.caps.SharedTextures)

	c.callbacks.fireBool(c, c.callbacks.sharedTexChanged, c.caps.SharedTextures)
	c.callbacks.fireBool(c, c.callbacks.bgraChanged, c.caps.BGRATextures)
	c.callbacks.fire(c, c.callbacks.initialized)
	return nil
}

// Destroy fires destroying callbacks, then releases every resource created
// through the Context and the device. Destroying twice is a no-op.
func (c *Context) Destroy() {
	if c.dev == nil {
		return
	}
	c.callbacks.fire(c, c.callbacks.destroying)

	for t := range c.textures {
		c.releaseTex(t)
	}
	for b := range c.buffers {
		b.release()
	}
	clear(c.buffers)
	c.releaseTargets()
	if c.quad != nil {
		c.quad.release()
		c.quad = nil
	}
	c.user = [2]*Texture{}
	c.resetState()

	c.dev.Destroy()
	c.dev = nil
	c.log(LogNotice, "context destroyed")
}

// IsValid reports whether the Context has a device.
func (c *Context) IsValid() bool {
	return c != nil && c.dev != nil
}

// Device returns the underlying device, or nil before Init.
func (c *Context) Device() render.Device { return c.dev }

// Capabilities returns the device capabilities.
func (c *Context) Capabilities() render.Capabilities { return c.caps }

// HasBGRATexSupport reports whether the device has native BGRA textures.
func (c *Context) HasBGRATexSupport() bool { return c.caps.BGRATextures }

// HasSharedTexSupport reports whether textures can be shared between
// contexts.
func (c *Context) HasSharedTexSupport() bool { return c.caps.SharedTextures }

// Flush submits pending device work.
func (c *Context) Flush() error {
	if c.dev == nil {
		return c.setError(ErrNoDevice, LogWarning)
	}
	if err := c.dev.Flush(); err != nil {
		return c.setError(fmt.Errorf("vidgfx: flush: %w", err), LogCritical)
	}
	return nil
}

// LastError returns the reason for the most recent failed operation, or nil.
func (c *Context) LastError() error { return c.lastErr }

// ClearError resets LastError.
func (c *Context) ClearError() { c.lastErr = nil }

func (c *Context) logger() *slog.Logger {
	if c.opts.logger != nil {
		return c.opts.logger
	}
	return Logger()
}

func (c *Context) log(lvl LogLevel, msg string, args ...any) {
	l := c.logger()
	sl := lvl.SlogLevel()
	if !l.Enabled(context.Background(), sl) {
		return
	}
	l.Log(context.Background(), sl, msg, append([]any{"cat", LogCategory}, args...)...)
}

func (c *Context) debug(msg string, args ...any) {
	c.logger().Debug(msg, append([]any{"cat", LogCategory}, args...)...)
}

// setError records err as the last error and logs it.
func (c *Context) setError(err error, lvl LogLevel) error {
	c.lastErr = err
	c.log(lvl, err.Error())
	return err
}

// ---------------------------------------------------------------------------
// Matrices

// SetViewMat sets the view matrix used for every target but Screen.
func (c *Context) SetViewMat(m render.Mat4) { c.view = m }

// ViewMat returns the view matrix.
func (c *Context) ViewMat() render.Mat4 { return c.view }

// SetProjMat sets the projection matrix used for every target but Screen.
// Until it is set, a pixel-space orthographic projection of the bound
// target's viewport is used.
func (c *Context) SetProjMat(m render.Mat4) {
	c.proj = m
	c.projSet = true
}

// ProjMat returns the projection matrix in effect for the bound target.
func (c *Context) ProjMat() render.Mat4 {
	if c.projSet {
		return c.proj
	}
	return c.defaultProj()
}

// SetScreenViewMat sets the view matrix used while Screen is bound.
func (c *Context) SetScreenViewMat(m render.Mat4) { c.screenView = m }

// ScreenViewMat returns the screen view matrix.
func (c *Context) ScreenViewMat() render.Mat4 { return c.screenView }

// SetScreenProjMat sets the projection matrix used while Screen is bound.
func (c *Context) SetScreenProjMat(m render.Mat4) {
	c.screenProj = m
	c.screenProjSet = true
}

// ScreenProjMat returns the screen projection matrix.
func (c *Context) ScreenProjMat() render.Mat4 {
	if c.screenProjSet {
		return c.screenProj
	}
	return c.defaultProj()
}

func (c *Context) defaultProj() render.Mat4 {
	vp := c.viewport(c.state.target)
	return render.PixelOrtho(float32(vp.Dx()), float32(vp.Dy()))
}

// transform returns projection times view for the bound target.
func (c *Context) transform() render.Mat4 {
	if c.state.target == TargetScreen {
		return c.ScreenProjMat().Mul(c.screenView)
	}
	return c.ProjMat().Mul(c.view)
}

// ---------------------------------------------------------------------------
// Shader uniforms

// SetResizeLayerRect sets the layer rectangle of ShaderResizeLayer.
func (c *Context) SetResizeLayerRect(r render.Rect) { c.resizeLayerRect = r }

// ResizeLayerRect returns the layer rectangle of ShaderResizeLayer.
func (c *Context) ResizeLayerRect() render.Rect { return c.resizeLayerRect }

// SetResizeBorderColor sets the handle colour of ShaderResizeLayer.
func (c *Context) SetResizeBorderColor(col render.Color) { c.borderColor = col }

// ResizeBorderColor returns the handle colour of ShaderResizeLayer.
func (c *Context) ResizeBorderColor() render.Color { return c.borderColor }

// SetRgbNv16PxSize sets the source texel size in UV units for
// ShaderRgbNv16.
func (c *Context) SetRgbNv16PxSize(size render.Point) { c.nv16PxSize = size }

// RgbNv16PxSize returns the source texel size of ShaderRgbNv16.
func (c *Context) RgbNv16PxSize() render.Point { return c.nv16PxSize }

// SetTexDecalModColor sets the colour texture decals are multiplied by.
func (c *Context) SetTexDecalModColor(col render.Color) { c.modColor = col }

// TexDecalModColor returns the texture decal colour multiplier.
func (c *Context) TexDecalModColor() render.Color { return c.modColor }

// SetTexDecalEffects sets the raw ShaderTexDecalGbcs parameters.
func (c *Context) SetTexDecalEffects(gamma, brightness, contrast, saturation float32) {
	c.effects = [4]float32{gamma, brightness, contrast, saturation}
}

// TexDecalEffects returns gamma, brightness, contrast and saturation.
func (c *Context) TexDecalEffects() [4]float32 { return c.effects }

// SetTexDecalEffectsHelper sets the ShaderTexDecalGbcs parameters from user
// facing values: brightness, contrast and saturation in [-100, 100] with 0
// as identity. It reports whether any effect is active, in which case
// ShaderTexDecalGbcs should be used instead of ShaderTexDecal.
func (c *Context) SetTexDecalEffectsHelper(gamma float32, brightness, contrast, saturation int) bool {
	brightness = clampInt(brightness, -100, 100)
	contrast = clampInt(contrast, -100, 100)
	saturation = clampInt(saturation, -100, 100)
	c.SetTexDecalEffects(
		gamma,
		float32(brightness)/200,
		float32(contrast+100)/100,
		float32(saturation+100)/100)
	return gamma != 1 || brightness != 0 || contrast != 0 || saturation != 0
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
