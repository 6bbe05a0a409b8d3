package software

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/vidgfx/render"
)

// vertex is a transformed vertex in window coordinates.
type vertex struct {
	x, y  float32
	color [4]float32
	uv    [2]float32
}

// fragment is one covered pixel with its interpolated attributes.
type fragment struct {
	// x and y are the pixel centre in window coordinates.
	x, y  float32
	color [4]float32
	uv    [2]float32
}

// pass is a validated draw call ready to rasterize.
type pass struct {
	call    *render.DrawCall
	targets []*Texture
	units   [3]*Texture
	verts   []float32
	vp      render.Rect
	clip    image.Rectangle
	shade   shadeFunc
}

func (d *Device) preparePass(call *render.DrawCall) (*pass, error) {
	sh := call.Shader
	if !sh.IsValid() {
		return nil, fmt.Errorf("software: %w: shader %v", render.ErrInvalidDraw, sh)
	}
	if len(call.Targets) != sh.Targets() {
		return nil, fmt.Errorf("software: %w: %v writes %d targets, got %d",
			render.ErrInvalidDraw, sh, sh.Targets(), len(call.Targets))
	}
	if call.VertSize != sh.VertSize() {
		return nil, fmt.Errorf("software: %w: %v takes %d floats per vertex, got %d",
			render.ErrInvalidDraw, sh, sh.VertSize(), call.VertSize)
	}

	p := &pass{call: call, shade: shaders[sh]}
	bounds := image.Rectangle{}
	for i, tgt := range call.Targets {
		t, err := d.target(tgt)
		if err != nil {
			return nil, err
		}
		p.targets = append(p.targets, t)
		if i == 0 {
			bounds = t.desc.Bounds()
		} else {
			bounds = bounds.Intersect(t.desc.Bounds())
		}
	}

	for i := 0; i < sh.TextureUnits(); i++ {
		if call.Textures[i] == nil {
			return nil, fmt.Errorf("software: %w: %v needs texture unit %d", render.ErrInvalidDraw, sh, i)
		}
		t, err := d.texture(call.Textures[i])
		if err != nil {
			return nil, err
		}
		if t.mapped {
			return nil, render.ErrTextureMapped
		}
		if t.desc.Flags.Has(render.TexStaging) {
			return nil, fmt.Errorf("software: %w: staging texture bound to unit %d", render.ErrInvalidDraw, i)
		}
		for _, tgt := range p.targets {
			if tgt.mem == t.mem {
				return nil, fmt.Errorf("software: %w: unit %d is also a render target", render.ErrInvalidDraw, i)
			}
		}
		p.units[i] = t
	}

	b, err := d.buffer(call.Buffer)
	if err != nil {
		return nil, err
	}
	if call.First < 0 || call.Count < 0 || (call.First+call.Count)*call.VertSize > len(b.data) {
		return nil, fmt.Errorf("software: %w: vertices [%d, %d) of %d",
			render.ErrOutOfBounds, call.First, call.First+call.Count, len(b.data)/call.VertSize)
	}
	p.verts = b.data[call.First*call.VertSize : (call.First+call.Count)*call.VertSize]

	vp := call.Viewport
	if vp.IsEmpty() {
		vp = render.RectFromImage(bounds)
	}
	p.vp = vp
	p.clip = image.Rect(
		int(math.Floor(float64(vp.Left()))), int(math.Floor(float64(vp.Top()))),
		int(math.Ceil(float64(vp.Right()))), int(math.Ceil(float64(vp.Bottom()))),
	).Intersect(bounds)
	return p, nil
}

// vertex transforms vertex i to window coordinates.
func (p *pass) vertex(i int) vertex {
	vs := p.call.VertSize
	f := p.verts[i*vs : (i+1)*vs]
	clip := p.call.Uniforms.Transform.Apply(f[0], f[1])
	w := clip[3]
	if w == 0 {
		w = 1
	}
	vp := p.vp
	v := vertex{
		x: vp.X + (clip[0]/w+1)/2*vp.W,
		y: vp.Y + (1-clip[1]/w)/2*vp.H,
	}
	if vs >= 8 {
		copy(v.color[:], f[2:6])
		v.uv = [2]float32{f[6], f[7]}
	} else {
		v.color = [4]float32{1, 1, 1, 1}
	}
	return v
}

func (p *pass) run() {
	n := len(p.verts) / p.call.VertSize
	switch p.call.Topology {
	case render.TriangleStrip:
		for i := 0; i+2 < n; i++ {
			p.triangle(p.vertex(i), p.vertex(i+1), p.vertex(i+2))
		}
	default:
		for i := 0; i+2 < n; i += 3 {
			p.triangle(p.vertex(i), p.vertex(i+1), p.vertex(i+2))
		}
	}
}

func edge(a, b vertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// topLeft reports whether the edge a->b is a top or left edge of a
// triangle with positive area in y-down window coordinates.
func topLeft(a, b vertex) bool {
	dx, dy := b.x-a.x, b.y-a.y
	return (dy == 0 && dx > 0) || dy < 0
}

func (p *pass) triangle(v0, v1, v2 vertex) {
	area := edge(v0, v1, v2.x, v2.y)
	if area == 0 {
		return
	}
	if area < 0 {
		v1, v2 = v2, v1
		area = -area
	}

	minX := int(math.Floor(float64(min(v0.x, v1.x, v2.x))))
	maxX := int(math.Ceil(float64(max(v0.x, v1.x, v2.x))))
	minY := int(math.Floor(float64(min(v0.y, v1.y, v2.y))))
	maxY := int(math.Ceil(float64(max(v0.y, v1.y, v2.y))))
	box := image.Rect(minX, minY, maxX, maxY).Intersect(p.clip)
	if box.Empty() {
		return
	}

	tl0, tl1, tl2 := topLeft(v1, v2), topLeft(v2, v0), topLeft(v0, v1)
	var f fragment
	for y := box.Min.Y; y < box.Max.Y; y++ {
		cy := float32(y) + 0.5
		for x := box.Min.X; x < box.Max.X; x++ {
			cx := float32(x) + 0.5
			w0 := edge(v1, v2, cx, cy)
			w1 := edge(v2, v0, cx, cy)
			w2 := edge(v0, v1, cx, cy)
			if !covers(w0, tl0) || !covers(w1, tl1) || !covers(w2, tl2) {
				continue
			}
			l0, l1, l2 := w0/area, w1/area, w2/area
			f.x, f.y = cx, cy
			for c := range f.color {
				f.color[c] = l0*v0.color[c] + l1*v1.color[c] + l2*v2.color[c]
			}
			f.uv[0] = l0*v0.uv[0] + l1*v1.uv[0] + l2*v2.uv[0]
			f.uv[1] = l0*v0.uv[1] + l1*v1.uv[1] + l2*v2.uv[1]
			out := p.shade(p, &f)
			for i, t := range p.targets {
				p.write(t, x, y, out[i])
			}
		}
	}
}

func covers(w float32, tl bool) bool {
	return w > 0 || (w == 0 && tl)
}

func (p *pass) write(t *Texture, x, y int, src [4]float32) {
	bpp := t.desc.Format.BytesPerTexel()
	px := t.mem.pix[y*t.mem.stride+x*bpp : y*t.mem.stride+(x+1)*bpp]
	switch p.call.Blending {
	case render.BlendAlpha:
		dst := t.desc.Format.Decode(px)
		a := src[3]
		for c := 0; c < 3; c++ {
			src[c] = src[c]*a + dst[c]*(1-a)
		}
		src[3] = a + dst[3]*(1-a)
	case render.BlendPremultiplied:
		dst := t.desc.Format.Decode(px)
		a := src[3]
		for c := 0; c < 4; c++ {
			src[c] += dst[c] * (1 - a)
		}
	}
	t.desc.Format.Encode(px, src)
}
