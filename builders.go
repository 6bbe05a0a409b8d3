package vidgfx

import "github.com/gogpu/vidgfx/render"

// Vertex counts of the geometry builders.
const (
	SolidRectNumVerts   = 4
	OutlineNumVerts     = 4 * 6
	TexDecalNumVerts    = 4
	ScrollRectNumVerts  = 4 * 6
	ResizeRectNumVerts  = 10 * OutlineNumVerts
	ResizeRectVertSize  = 4
	ScrollRectNumFloats = ScrollRectNumVerts * DefaultVertSize
)

// DefaultHalfWidth is the outline half width used by the original tools:
// a one pixel line centred on the rectangle edge.
var DefaultHalfWidth = render.Pt(0.5, 0.5)

// vertex is one builder vertex before it is packed into a buffer.
type vertex struct {
	pos render.Point
	col render.Color
	uv  render.Point
}

// put packs v as vertex i of a buffer with the given vertex size. 8-float
// vertices store x, y, r, g, b, a, u, v; 4-float vertices store x, y, 0, 1.
func put(data []float32, i, vertSize int, v vertex) {
	d := data[i*vertSize : (i+1)*vertSize]
	d[0], d[1] = v.pos.X, v.pos.Y
	if vertSize == ResizeRectVertSize {
		d[2], d[3] = 0, 1
		return
	}
	d[2], d[3], d[4], d[5] = v.col.R, v.col.G, v.col.B, v.col.A
	d[6], d[7] = v.uv.X, v.uv.Y
}

func fill(buf *VertexBuffer, vertSize int, verts []vertex) bool {
	if !buf.reserve(len(verts), vertSize) {
		return false
	}
	for i, v := range verts {
		put(buf.data, i, vertSize, v)
	}
	return true
}

// CreateSolidRect fills buf with a single-colour rectangle as a 4 vertex
// triangle strip.
func CreateSolidRect(buf *VertexBuffer, rect render.Rect, c render.Color) bool {
	return CreateSolidRectColors(buf, rect, c, c, c, c)
}

// CreateSolidRectColors fills buf with a rectangle whose corners have the
// given colours, as a 4 vertex triangle strip.
func CreateSolidRectColors(buf *VertexBuffer, rect render.Rect, tl, tr, bl, br render.Color) bool {
	return fill(buf, DefaultVertSize, []vertex{
		{rect.TopLeft(), tl, render.Pt(0, 0)},
		{rect.TopRight(), tr, render.Pt(1, 0)},
		{rect.BottomLeft(), bl, render.Pt(0, 1)},
		{rect.BottomRight(), br, render.Pt(1, 1)},
	})
}

// CreateSolidRectOutline fills buf with the outline of rect as a 24 vertex
// triangle list. The line is centred on the rectangle edge and extends
// halfWidth to each side.
func CreateSolidRectOutline(buf *VertexBuffer, rect render.Rect, c render.Color, halfWidth render.Point) bool {
	return CreateSolidRectOutlineColors(buf, rect, c, c, c, c, halfWidth)
}

// CreateSolidRectOutlineColors is CreateSolidRectOutline with a colour per
// corner. Colours are interpolated along each edge.
func CreateSolidRectOutlineColors(buf *VertexBuffer, rect render.Rect, tl, tr, bl, br render.Color, halfWidth render.Point) bool {
	return fill(buf, DefaultVertSize, outline(rect, halfWidth, [4]render.Color{tl, tr, bl, br}))
}

// outline returns the 4 edge quads of a rectangle outline. The top and
// bottom edges span the full outer width; the left and right edges fill the
// space between them.
func outline(rect render.Rect, hw render.Point, cols [4]render.Color) []vertex {
	outer := rect.Grow(hw.X, hw.Y)
	inner := rect.Grow(-hw.X, -hw.Y)
	ol, ot, or, ob := outer.Left(), outer.Top(), outer.Right(), outer.Bottom()
	il, it, ir, ib := inner.Left(), inner.Top(), inner.Right(), inner.Bottom()

	at := func(x, y float32) vertex {
		fx, fy := frac(x, ol, outer.W), frac(y, ot, outer.H)
		top := cols[0].Lerp(cols[1], fx)
		bot := cols[2].Lerp(cols[3], fx)
		return vertex{render.Pt(x, y), top.Lerp(bot, fy), render.Pt(fx, fy)}
	}
	quad := func(l, t, r, b float32) []vertex {
		vtl, vtr, vbl, vbr := at(l, t), at(r, t), at(l, b), at(r, b)
		return []vertex{vtl, vtr, vbl, vbl, vtr, vbr}
	}

	verts := make([]vertex, 0, OutlineNumVerts)
	verts = append(verts, quad(ol, ot, or, it)...) // Top
	verts = append(verts, quad(ol, ib, or, ob)...) // Bottom
	verts = append(verts, quad(ol, it, il, ib)...) // Left
	verts = append(verts, quad(ir, it, or, ib)...) // Right
	return verts
}

// frac returns the position of v within [start, start+extent] as 0..1.
func frac(v, start, extent float32) float32 {
	if extent == 0 {
		return 0
	}
	return (v - start) / extent
}

// CreateTexDecalRect fills buf with a textured rectangle mapping the full
// texture, as a 4 vertex triangle strip.
func CreateTexDecalRect(buf *VertexBuffer, rect render.Rect) bool {
	return CreateTexDecalRectBR(buf, rect, render.Pt(1, 1))
}

// CreateTexDecalRectBR is CreateTexDecalRect mapping the UV range from
// (0, 0) to brUV.
func CreateTexDecalRectBR(buf *VertexBuffer, rect render.Rect, brUV render.Point) bool {
	return CreateTexDecalRectUV(buf, rect,
		render.Pt(0, 0), render.Pt(brUV.X, 0), render.Pt(0, brUV.Y), brUV)
}

// CreateTexDecalRectUV is CreateTexDecalRect with explicit UVs per corner.
func CreateTexDecalRectUV(buf *VertexBuffer, rect render.Rect, tl, tr, bl, br render.Point) bool {
	return fill(buf, DefaultVertSize, decalQuad(rect, [4]render.Point{tl, tr, bl, br}))
}

func decalQuad(rect render.Rect, uv [4]render.Point) []vertex {
	return []vertex{
		{rect.TopLeft(), render.White, uv[0]},
		{rect.TopRight(), render.White, uv[1]},
		{rect.BottomLeft(), render.White, uv[2]},
		{rect.BottomRight(), render.White, uv[3]},
	}
}

// CreateResizeRect fills buf with the resize handles of a layer: two
// concentric outlines around rect and eight square handles of handleSize
// centred on its corners and edge midpoints. The buffer uses 4-float
// vertices as a triangle list drawn with ShaderResizeLayer.
func CreateResizeRect(buf *VertexBuffer, rect render.Rect, handleSize float32, halfWidth render.Point) bool {
	var none [4]render.Color
	verts := make([]vertex, 0, ResizeRectNumVerts)
	verts = append(verts, outline(rect, halfWidth, none)...)
	verts = append(verts, outline(rect.Grow(2*halfWidth.X, 2*halfWidth.Y), halfWidth, none)...)

	l, t, r, b := rect.Left(), rect.Top(), rect.Right(), rect.Bottom()
	cx, cy := rect.Center().X, rect.Center().Y
	for _, p := range []render.Point{
		{X: l, Y: t}, {X: cx, Y: t}, {X: r, Y: t},
		{X: l, Y: cy}, {X: r, Y: cy},
		{X: l, Y: b}, {X: cx, Y: b}, {X: r, Y: b},
	} {
		h := render.RectXYWH(p.X-handleSize/2, p.Y-handleSize/2, handleSize, handleSize)
		verts = append(verts, outline(h, halfWidth, none)...)
	}
	return fill(buf, ResizeRectVertSize, verts)
}

// NextPowTwo returns the smallest power of two that is at least n. Zero
// maps to one.
func NextPowTwo(n uint32) uint32 {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	return n + 1
}

// OrientedUVs returns the corner UVs of a normalised texture rectangle after
// applying an orientation, in the order top left, top right, bottom left,
// bottom right.
func OrientedUVs(norm render.Rect, orient Orientation) (tl, tr, bl, br render.Point) {
	l, t, r, b := norm.Left(), norm.Top(), norm.Right(), norm.Bottom()
	switch orient {
	case OrientFlipped:
		return render.Pt(l, b), render.Pt(r, b), render.Pt(l, t), render.Pt(r, t)
	case OrientMirrored:
		return render.Pt(r, t), render.Pt(l, t), render.Pt(r, b), render.Pt(l, b)
	case OrientFlippedMirrored:
		return render.Pt(r, b), render.Pt(l, b), render.Pt(r, t), render.Pt(l, t)
	default:
		return render.Pt(l, t), render.Pt(r, t), render.Pt(l, b), render.Pt(r, b)
	}
}
