package software

import (
	"math"

	"github.com/gogpu/vidgfx/render"
)

// shadeFunc computes the outputs of one fragment, one per render target.
type shadeFunc func(p *pass, f *fragment) [2][4]float32

var shaders = map[render.Shader]shadeFunc{
	render.ShaderSolid:        shadeSolid,
	render.ShaderTexDecal:     shadeTexDecal,
	render.ShaderTexDecalGbcs: shadeTexDecalGbcs,
	render.ShaderTexDecalRgb:  shadeTexDecalRgb,
	render.ShaderResizeLayer:  shadeResizeLayer,
	render.ShaderRgbNv16:      shadeRgbNv16,
	render.ShaderYv12Rgb:      shadeYv12,
	render.ShaderNv12Rgb:      shadeNv12,
	render.ShaderUyvyRgb:      shadeUyvy(bt601),
	render.ShaderHdycRgb:      shadeUyvy(bt709),
	render.ShaderYuy2Rgb:      shadeYuy2,
}

func (p *pass) sample(unit int, u, v float32) [4]float32 {
	return sampleTexture(p.units[unit], u, v, p.call.Filter.Linear())
}

func shadeSolid(_ *pass, f *fragment) [2][4]float32 {
	return [2][4]float32{f.color}
}

func decal(p *pass, f *fragment) [4]float32 {
	s := p.sample(0, f.uv[0], f.uv[1])
	m := p.call.Uniforms.ModColor.Vec4()
	for c := range s {
		s[c] *= m[c]
	}
	return s
}

func shadeTexDecal(p *pass, f *fragment) [2][4]float32 {
	return [2][4]float32{decal(p, f)}
}

func shadeTexDecalRgb(p *pass, f *fragment) [2][4]float32 {
	s := decal(p, f)
	s[3] = 1
	return [2][4]float32{s}
}

func shadeTexDecalGbcs(p *pass, f *fragment) [2][4]float32 {
	s := decal(p, f)
	e := p.call.Uniforms.Effects
	gamma, brightness, contrast, saturation := e[0], e[1], e[2], e[3]
	if gamma <= 0 {
		gamma = 1
	}
	for c := 0; c < 3; c++ {
		v := float32(math.Pow(float64(max(s[c], 0)), float64(1/gamma)))
		v = (v-0.5)*contrast + 0.5
		s[c] = v + brightness
	}
	luma := 0.299*s[0] + 0.587*s[1] + 0.114*s[2]
	for c := 0; c < 3; c++ {
		s[c] = clamp01(luma + (s[c]-luma)*saturation)
	}
	return [2][4]float32{s}
}

// shadeResizeLayer draws marching-ants dashes, four pixels long, anchored to
// the layer's top-left corner.
func shadeResizeLayer(p *pass, f *fragment) [2][4]float32 {
	u := p.call.Uniforms
	dash := int(math.Floor(float64((f.x - u.LayerRect.X + f.y - u.LayerRect.Y) / 4)))
	c := u.BorderColor.Vec4()
	if dash&1 != 0 {
		c[0], c[1], c[2] = 1-c[0], 1-c[1], 1-c[2]
	}
	return [2][4]float32{c}
}

// shadeRgbNv16 writes one output texel per two source pixels: luma of both
// into the first target, averaged chroma into the second.
func shadeRgbNv16(p *pass, f *fragment) [2][4]float32 {
	half := p.call.Uniforms.PxSize.X / 2
	s0 := p.sample(0, f.uv[0]-half, f.uv[1])
	s1 := p.sample(0, f.uv[0]+half, f.uv[1])
	y0 := rgbToY(s0)
	y1 := rgbToY(s1)
	avg := [4]float32{(s0[0] + s1[0]) / 2, (s0[1] + s1[1]) / 2, (s0[2] + s1[2]) / 2, 1}
	u, v := rgbToUV(avg)
	return [2][4]float32{{y0, y1, 0, 1}, {u, v, 0, 1}}
}

func shadeYv12(p *pass, f *fragment) [2][4]float32 {
	y := p.sample(0, f.uv[0], f.uv[1])[0]
	u := p.sample(1, f.uv[0], f.uv[1])[0]
	v := p.sample(2, f.uv[0], f.uv[1])[0]
	return [2][4]float32{bt601(y, u, v)}
}

func shadeNv12(p *pass, f *fragment) [2][4]float32 {
	y := p.sample(0, f.uv[0], f.uv[1])[0]
	uv := p.sample(1, f.uv[0], f.uv[1])
	return [2][4]float32{bt601(y, uv[0], uv[1])}
}

// firstOfPair reports whether the fragment falls on the first of the two
// pixels packed into one texel.
func (p *pass) firstOfPair(u float32) bool {
	x := float64(u) * float64(p.units[0].desc.Width)
	return x-math.Floor(x) < 0.5
}

func shadeUyvy(matrix func(y, u, v float32) [4]float32) shadeFunc {
	return func(p *pass, f *fragment) [2][4]float32 {
		s := p.sample(0, f.uv[0], f.uv[1])
		y := s[3]
		if p.firstOfPair(f.uv[0]) {
			y = s[1]
		}
		return [2][4]float32{matrix(y, s[0], s[2])}
	}
}

func shadeYuy2(p *pass, f *fragment) [2][4]float32 {
	s := p.sample(0, f.uv[0], f.uv[1])
	y := s[2]
	if p.firstOfPair(f.uv[0]) {
		y = s[0]
	}
	return [2][4]float32{bt601(y, s[1], s[3])}
}

// bt601 converts limited-range BT.601 YUV to RGB.
func bt601(y, u, v float32) [4]float32 {
	c := 1.164383 * (y - 0.062745)
	u -= 0.5
	v -= 0.5
	return [4]float32{
		clamp01(c + 1.596027*v),
		clamp01(c - 0.391762*u - 0.812968*v),
		clamp01(c + 2.017232*u),
		1,
	}
}

// bt709 converts limited-range BT.709 YUV to RGB.
func bt709(y, u, v float32) [4]float32 {
	c := 1.164383 * (y - 0.062745)
	u -= 0.5
	v -= 0.5
	return [4]float32{
		clamp01(c + 1.792741*v),
		clamp01(c - 0.213249*u - 0.532909*v),
		clamp01(c + 2.112402*u),
		1,
	}
}

func rgbToY(s [4]float32) float32 {
	return 0.0627 + 0.257*s[0] + 0.504*s[1] + 0.098*s[2]
}

func rgbToUV(s [4]float32) (float32, float32) {
	u := 0.5 - 0.148*s[0] - 0.291*s[1] + 0.439*s[2]
	v := 0.5 + 0.439*s[0] - 0.368*s[1] - 0.071*s[2]
	return u, v
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}

// sampleTexture samples t at normalised (u, v) with clamp-to-edge
// addressing.
func sampleTexture(t *Texture, u, v float32, linear bool) [4]float32 {
	w, h := t.desc.Width, t.desc.Height
	fx := float64(u) * float64(w)
	fy := float64(v) * float64(h)
	if !linear {
		return t.texel(int(math.Floor(fx)), int(math.Floor(fy)))
	}
	fx -= 0.5
	fy -= 0.5
	x0, y0 := math.Floor(fx), math.Floor(fy)
	tx, ty := float32(fx-x0), float32(fy-y0)
	ix, iy := int(x0), int(y0)
	a := t.texel(ix, iy)
	b := t.texel(ix+1, iy)
	c := t.texel(ix, iy+1)
	d := t.texel(ix+1, iy+1)
	var out [4]float32
	for i := range out {
		top := a[i] + (b[i]-a[i])*tx
		bot := c[i] + (d[i]-c[i])*tx
		out[i] = top + (bot-top)*ty
	}
	return out
}

func (t *Texture) texel(x, y int) [4]float32 {
	x = min(max(x, 0), t.desc.Width-1)
	y = min(max(y, 0), t.desc.Height-1)
	bpp := t.desc.Format.BytesPerTexel()
	return t.desc.Format.Decode(t.mem.pix[y*t.mem.stride+x*bpp:])
}
