package vidgfx

import (
	"fmt"
	"image"

	"github.com/gogpu/vidgfx/render"
)

// SetRenderTarget selects the target of Clear and DrawBuf.
func (c *Context) SetRenderTarget(t RenderTarget) { c.state.target = t }

// RenderTarget returns the selected render target.
func (c *Context) RenderTarget() RenderTarget { return c.state.target }

// SetShader selects the shader of DrawBuf.
func (c *Context) SetShader(s render.Shader) { c.state.shader = s }

// Shader returns the selected shader.
func (c *Context) Shader() render.Shader { return c.state.shader }

// SetTopology selects how DrawBuf assembles vertices.
func (c *Context) SetTopology(t render.Topology) { c.state.topology = t }

// Topology returns the selected topology.
func (c *Context) Topology() render.Topology { return c.state.topology }

// SetBlending selects how DrawBuf combines with the target.
func (c *Context) SetBlending(b render.Blending) { c.state.blending = b }

// Blending returns the selected blending.
func (c *Context) Blending() render.Blending { return c.state.blending }

// SetTex binds up to three textures to the texture units. Unused units may
// be nil.
func (c *Context) SetTex(a, b, cc *Texture) {
	c.state.texs = [3]*Texture{a, b, cc}
}

// Tex returns the texture bound to unit i.
func (c *Context) Tex(i int) *Texture {
	if i < 0 || i >= len(c.state.texs) {
		return nil
	}
	return c.state.texs[i]
}

// SetTexFilter selects the sampling filter of the texture units.
func (c *Context) SetTexFilter(f render.Filter) { c.state.filter = f }

// TexFilter returns the selected sampling filter.
func (c *Context) TexFilter() render.Filter { return c.state.filter }

// Clear fills the selected render target with col. A User target with two
// textures clears both.
func (c *Context) Clear(col render.Color) error {
	if c.dev == nil {
		return c.setError(ErrNoDevice, LogWarning)
	}
	outputs := 1
	if c.state.target == TargetUser && c.user[1].IsValid() {
		outputs = 2
	}
	targets, err := c.targetTextures(c.state.target, outputs)
	if err != nil {
		return c.setError(fmt.Errorf("vidgfx: clear: %w", err), LogWarning)
	}
	if err := c.dev.Clear(deviceTextures(targets), col); err != nil {
		return c.setError(fmt.Errorf("vidgfx: clear %v: %w", c.state.target, err), LogWarning)
	}
	return nil
}

// DrawBuf draws numVerts vertices of buf starting at startVert with the
// current draw state. A negative numVerts draws every vertex from
// startVert on. The buffer is uploaded first if it is dirty.
func (c *Context) DrawBuf(buf *VertexBuffer, numVerts, startVert int) error {
	if c.dev == nil {
		return c.setError(ErrNoDevice, LogWarning)
	}
	if !buf.IsValid() {
		return c.setError(fmt.Errorf("vidgfx: draw: %w", ErrInvalidBuffer), LogWarning)
	}
	if numVerts < 0 {
		numVerts = buf.NumVerts() - startVert
	}
	if startVert < 0 || numVerts < 0 || startVert+numVerts > buf.NumVerts() {
		return c.setError(fmt.Errorf("vidgfx: draw %d vertices from %d of %d: %w",
			numVerts, startVert, buf.NumVerts(), ErrOutOfBounds), LogWarning)
	}

	s := c.state
	call, err := c.prepareDraw(s.target, s.shader, s.texs)
	if err != nil {
		return c.setError(fmt.Errorf("vidgfx: draw: %w", err), LogWarning)
	}
	call.Topology = s.topology
	call.Blending = s.blending
	call.Filter = s.filter
	call.Uniforms.Transform = c.transform()
	return c.submit(call, buf, startVert, numVerts)
}

// prepareDraw resolves targets and texture units into a draw call.
func (c *Context) prepareDraw(target RenderTarget, shader render.Shader, texs [3]*Texture) (*render.DrawCall, error) {
	if !shader.IsValid() {
		return nil, fmt.Errorf("%w: no shader selected", render.ErrInvalidDraw)
	}
	targets, err := c.targetTextures(target, shader.Targets())
	if err != nil {
		return nil, err
	}
	call := &render.DrawCall{
		Targets:  deviceTextures(targets),
		Viewport: render.RectFromImage(c.viewport(target)),
		Shader:   shader,
		Uniforms: render.Uniforms{
			ModColor:    c.modColor,
			Effects:     c.effects,
			LayerRect:   c.resizeLayerRect,
			BorderColor: c.borderColor,
			PxSize:      c.nv16PxSize,
		},
	}
	for i := 0; i < shader.TextureUnits(); i++ {
		t := texs[i]
		switch {
		case !t.IsValid():
			return nil, fmt.Errorf("%w: texture unit %d", ErrInvalidTexture, i)
		case t.mapped:
			return nil, fmt.Errorf("%w: texture unit %d", ErrTextureMapped, i)
		}
		call.Textures[i] = t.tex
	}
	return call, nil
}

// submit uploads buf if needed and issues the draw.
func (c *Context) submit(call *render.DrawCall, buf *VertexBuffer, first, count int) error {
	if err := buf.upload(c.dev); err != nil {
		return c.setError(fmt.Errorf("vidgfx: upload vertices: %w", err), LogCritical)
	}
	call.Buffer = buf.gpu
	call.VertSize = buf.vertSize
	call.First = first
	call.Count = count
	if err := c.dev.Draw(call); err != nil {
		return c.setError(fmt.Errorf("vidgfx: draw %v: %w", call.Shader, err), LogWarning)
	}
	return nil
}

// drawQuad draws a textured quad covering the viewport of target, mapping
// the UV rectangle from tl to br. It bypasses the user draw state and
// matrices so internal passes leave them untouched.
func (c *Context) drawQuad(target RenderTarget, shader render.Shader, texs [3]*Texture, filter render.Filter, tl, br render.Point) error {
	call, err := c.prepareDraw(target, shader, texs)
	if err != nil {
		return c.setError(fmt.Errorf("vidgfx: %v pass: %w", shader, err), LogWarning)
	}
	vp := c.viewport(target)
	rect := render.RectXYWH(0, 0, float32(vp.Dx()), float32(vp.Dy()))
	CreateTexDecalRectUV(c.quad, rect, tl, render.Pt(br.X, tl.Y), render.Pt(tl.X, br.Y), br)
	call.Topology = render.TriangleStrip
	call.Blending = render.BlendNone
	call.Filter = filter
	call.Uniforms.Transform = render.PixelOrtho(rect.W, rect.H)
	call.Uniforms.ModColor = render.White
	return c.submit(call, c.quad, 0, TexDecalNumVerts)
}

func deviceTextures(ts []*Texture) []render.Texture {
	out := make([]render.Texture, len(ts))
	for i, t := range ts {
		out[i] = t.tex
	}
	return out
}

// fullRect returns the rectangle of a texture anchored at the origin.
func fullRect(t *Texture) image.Rectangle {
	return image.Rectangle{Max: t.Size()}
}
