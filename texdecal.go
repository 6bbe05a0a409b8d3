package vidgfx

import (
	"math"

	"github.com/gogpu/vidgfx/render"
)

// TexDecalBuffer builds the vertices of a scrollable texture decal. Setters
// only mark the geometry dirty; it is regenerated by VertBuf.
type TexDecalBuffer struct {
	ctx   *Context
	buf   *VertexBuffer
	dirty bool

	rect        render.Rect
	offset      render.Point
	roundOffset bool
	uv          [4]render.Point // tl, tr, bl, br
}

// NewTexDecalBuffer returns a decal buffer mapping the full texture onto an
// empty rectangle. ctx may be nil and set later with SetContext.
func NewTexDecalBuffer(ctx *Context) *TexDecalBuffer {
	b := &TexDecalBuffer{ctx: ctx, dirty: true, roundOffset: true}
	b.uv[0], b.uv[1], b.uv[2], b.uv[3] = OrientedUVs(render.RectXYWH(0, 0, 1, 1), OrientUnchanged)
	return b
}

// SetContext moves the buffer to another context, releasing vertex data
// owned by the previous one.
func (b *TexDecalBuffer) SetContext(ctx *Context) {
	if b.ctx == ctx {
		return
	}
	b.DestroyVertBuf()
	b.ctx = ctx
}

// Context returns the owning context.
func (b *TexDecalBuffer) Context() *Context { return b.ctx }

// VertBuf returns the vertex buffer, regenerating it if any setting changed
// since the last call. It returns nil when the buffer has no context.
func (b *TexDecalBuffer) VertBuf() *VertexBuffer {
	if b.buf == nil {
		if b.ctx == nil {
			return nil
		}
		b.buf = b.ctx.NewVertBuf(ScrollRectNumFloats)
		b.dirty = true
	}
	if b.dirty {
		b.regenerate()
		b.dirty = false
	}
	return b.buf
}

// IsDirty reports whether the next VertBuf call regenerates the geometry.
func (b *TexDecalBuffer) IsDirty() bool { return b.dirty }

// Topology returns the topology of the generated geometry: a strip for an
// unscrolled decal and a list once it wraps.
func (b *TexDecalBuffer) Topology() render.Topology {
	if ox, oy := b.wrappedOffset(); ox != 0 || oy != 0 {
		return render.TriangleList
	}
	return render.TriangleStrip
}

// DestroyVertBuf releases the vertex buffer. The next VertBuf call creates a
// new one.
func (b *TexDecalBuffer) DestroyVertBuf() {
	if b.buf == nil {
		return
	}
	if b.ctx != nil {
		b.ctx.DestroyVertBuf(b.buf)
	} else {
		b.buf.release()
	}
	b.buf = nil
	b.dirty = true
}

// SetRect sets the destination rectangle.
func (b *TexDecalBuffer) SetRect(rect render.Rect) {
	if b.rect == rect {
		return
	}
	b.rect = rect
	b.dirty = true
}

// Rect returns the destination rectangle.
func (b *TexDecalBuffer) Rect() render.Rect { return b.rect }

// ScrollBy adds to the scroll offset.
func (b *TexDecalBuffer) ScrollBy(dx, dy float32) {
	if dx == 0 && dy == 0 {
		return
	}
	b.offset.X += dx
	b.offset.Y += dy
	b.dirty = true
}

// ScrollByPoint adds delta to the scroll offset.
func (b *TexDecalBuffer) ScrollByPoint(delta render.Point) {
	b.ScrollBy(delta.X, delta.Y)
}

// ScrollOffset returns the accumulated scroll offset.
func (b *TexDecalBuffer) ScrollOffset() render.Point { return b.offset }

// ResetScrolling zeroes the scroll offset.
func (b *TexDecalBuffer) ResetScrolling() {
	if b.offset == (render.Point{}) {
		return
	}
	b.offset = render.Point{}
	b.dirty = true
}

// SetRoundOffset sets whether the scroll offset snaps to whole pixels.
func (b *TexDecalBuffer) SetRoundOffset(round bool) {
	if b.roundOffset == round {
		return
	}
	b.roundOffset = round
	b.dirty = true
}

// RoundOffset reports whether the scroll offset snaps to whole pixels.
func (b *TexDecalBuffer) RoundOffset() bool { return b.roundOffset }

// SetTexUV sets the UV of each corner.
func (b *TexDecalBuffer) SetTexUV(tl, tr, bl, br render.Point) {
	uv := [4]render.Point{tl, tr, bl, br}
	if b.uv == uv {
		return
	}
	b.uv = uv
	b.dirty = true
}

// SetTexUVRect maps a normalised texture rectangle with an orientation.
func (b *TexDecalBuffer) SetTexUVRect(norm render.Rect, orient Orientation) {
	b.SetTexUV(OrientedUVs(norm, orient))
}

// SetTexUVBR maps the normalised texture rectangle from tl to br with an
// orientation.
func (b *TexDecalBuffer) SetTexUVBR(tl, br render.Point, orient Orientation) {
	b.SetTexUVRect(render.RectFromPoints(tl, br), orient)
}

// TexUV returns the UV of each corner.
func (b *TexDecalBuffer) TexUV() (tl, tr, bl, br render.Point) {
	return b.uv[0], b.uv[1], b.uv[2], b.uv[3]
}

// wrappedOffset returns the scroll offset wrapped into the rectangle and
// rounded when RoundOffset is set.
func (b *TexDecalBuffer) wrappedOffset() (ox, oy float32) {
	ox = wrap(b.offset.X, b.rect.W)
	oy = wrap(b.offset.Y, b.rect.H)
	if b.roundOffset {
		ox = wrap(float32(math.Round(float64(ox))), b.rect.W)
		oy = wrap(float32(math.Round(float64(oy))), b.rect.H)
	}
	return ox, oy
}

func (b *TexDecalBuffer) regenerate() {
	r := b.rect
	ox, oy := b.wrappedOffset()
	if ox == 0 && oy == 0 {
		CreateTexDecalRectUV(b.buf, r, b.uv[0], b.uv[1], b.uv[2], b.uv[3])
		return
	}

	// The texel at the start of the UV range moves to (X+ox, Y+oy); the
	// part that scrolled off the bottom right wraps to the top left.
	sx, sy := r.X+ox, r.Y+oy
	// A zero-extent axis never wraps.
	fx, fy := 1-frac(ox, 0, r.W), 1-frac(oy, 0, r.H)
	var verts []vertex
	quad := func(l, t, rr, bb, u0, v0, u1, v1 float32) {
		q := decalQuad(render.RectXYWH(l, t, rr-l, bb-t), [4]render.Point{
			b.uvAt(u0, v0), b.uvAt(u1, v0), b.uvAt(u0, v1), b.uvAt(u1, v1),
		})
		verts = append(verts, q[0], q[1], q[2], q[2], q[1], q[3])
	}
	quad(r.Left(), r.Top(), sx, sy, fx, fy, 1, 1)
	quad(sx, r.Top(), r.Right(), sy, 0, fy, fx, 1)
	quad(r.Left(), sy, sx, r.Bottom(), fx, 0, 1, fy)
	quad(sx, sy, r.Right(), r.Bottom(), 0, 0, fx, fy)
	fill(b.buf, DefaultVertSize, verts)
}

// uvAt interpolates the corner UVs at the fractional position (s, t).
func (b *TexDecalBuffer) uvAt(s, t float32) render.Point {
	top := lerpPt(b.uv[0], b.uv[1], s)
	bot := lerpPt(b.uv[2], b.uv[3], s)
	return lerpPt(top, bot, t)
}

func lerpPt(a, b render.Point, t float32) render.Point {
	return render.Pt(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t)
}

// wrap returns v modulo extent in [0, extent).
func wrap(v, extent float32) float32 {
	if extent <= 0 {
		return 0
	}
	m := float32(math.Mod(float64(v), float64(extent)))
	if m < 0 {
		m += extent
	}
	return m
}
