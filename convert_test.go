package vidgfx

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/vidgfx/backend/software"
	"github.com/gogpu/vidgfx/pixconv"
	"github.com/gogpu/vidgfx/recording"
	"github.com/gogpu/vidgfx/render"
)

// uploadPlanes creates the planes of a frame filled with the given bytes.
func uploadPlanes(t *testing.T, ctx *Context, f PixelFormat, frame image.Point, fill ...[]byte) [3]*Texture {
	t.Helper()
	var planes [3]*Texture
	for i := 0; i < f.NumPlanes(); i++ {
		tex := ctx.NewPlaneTex(f, i, frame, true)
		if !tex.IsValid() {
			t.Fatalf("NewPlaneTex(%v, %d): %v", f, i, ctx.LastError())
		}
		if i < len(fill) {
			size := tex.Size()
			bpp := tex.TexelFormat().BytesPerTexel()
			row := bytes.Repeat(fill[i], size.X*bpp/len(fill[i]))
			if err := tex.UpdatePlane(bytes.Repeat(row, size.Y), len(row)); err != nil {
				t.Fatalf("UpdatePlane: %v", err)
			}
		}
		planes[i] = tex
	}
	return planes
}

func TestConvertYV12Frame(t *testing.T) {
	ctx, rec := newTestContext(t)
	frame := image.Pt(64, 64)
	planes := uploadPlanes(t, ctx, FormatYV12, frame, []byte{235}, []byte{128}, []byte{128})
	if planes[0].Size() != frame || planes[1].Size() != image.Pt(32, 32) || planes[2].Size() != image.Pt(32, 32) {
		t.Fatalf("plane sizes %v %v %v", planes[0].Size(), planes[1].Size(), planes[2].Size())
	}

	out := ctx.ConvertToBGRX(FormatYV12, planes[0], planes[1], planes[2])
	if !out.IsValid() {
		t.Fatalf("ConvertToBGRX: %v", ctx.LastError())
	}
	if out.Size() != frame || out.TexelFormat() != render.TexelBGRA8 {
		t.Errorf("output %v %v", out.Size(), out.TexelFormat())
	}

	draws := rec.Draws()
	if len(draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(draws))
	}
	d := draws[0]
	if d.Shader != render.ShaderYv12Rgb || d.BoundUnits() != 3 {
		t.Errorf("shader=%v units=%d", d.Shader, d.BoundUnits())
	}
	pool := rec.Resources()
	// YV12 stores V before U; the shader samples Y, U, V.
	wantUnits := [3]recording.TextureRef{
		pool.TextureRef(planes[0].Device()),
		pool.TextureRef(planes[2].Device()),
		pool.TextureRef(planes[1].Device()),
	}
	if d.Textures != wantUnits {
		t.Errorf("units = %v, want %v", d.Textures, wantUnits)
	}
	if d.Filter != render.FilterPoint || d.Blending != render.BlendNone {
		t.Errorf("filter=%v blending=%v", d.Filter, d.Blending)
	}

	if got := readPixels(t, ctx, out).NRGBAAt(10, 10); !nearColor(got, color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("converted pixel = %v, want white", got)
	}
}

// i420Frame returns Y, U and V planes with a luma gradient and chroma that
// differs between U and V in every block.
func i420Frame(frame image.Point) (y, u, v []byte) {
	cw, ch := frame.X/2, frame.Y/2
	y = make([]byte, frame.X*frame.Y)
	for py := 0; py < frame.Y; py++ {
		for px := 0; px < frame.X; px++ {
			y[py*frame.X+px] = byte(40 + (px*11+py*7)%180)
		}
	}
	u, v = make([]byte, cw*ch), make([]byte, cw*ch)
	for cy := 0; cy < ch; cy++ {
		for cx := 0; cx < cw; cx++ {
			u[cy*cw+cx] = byte(64 + (cx*23+cy*37)%128)
			v[cy*cw+cx] = byte(192 - (cx*19+cy*29)%128)
		}
	}
	return y, u, v
}

// TestConvertMatchesReference checks the planar YUV programs against the
// CPU converter, with chroma that exposes swapped U and V.
func TestConvertMatchesReference(t *testing.T) {
	frame := image.Pt(16, 8)
	cw := frame.X / 2
	y, u, v := i420Frame(frame)
	want := make([]byte, frame.X*frame.Y*4)
	if err := pixconv.I420ToBGRX(want, y, u, v, frame.X, frame.Y); err != nil {
		t.Fatal(err)
	}
	uv := make([]byte, 0, len(u)*2)
	for i := range u {
		uv = append(uv, u[i], v[i])
	}

	tests := []struct {
		format  PixelFormat
		data    [][]byte
		strides []int
	}{
		{FormatYV12, [][]byte{y, v, u}, []int{frame.X, cw, cw}},
		{FormatIYUV, [][]byte{y, u, v}, []int{frame.X, cw, cw}},
		{FormatNV12, [][]byte{y, uv}, []int{frame.X, cw * 2}},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			ctx, _ := newTestContext(t)
			var planes [3]*Texture
			for i, data := range tt.data {
				planes[i] = ctx.NewPlaneTex(tt.format, i, frame, true)
				if err := planes[i].UpdatePlane(data, tt.strides[i]); err != nil {
					t.Fatalf("plane %d: %v", i, err)
				}
			}
			out := ctx.ConvertToBGRX(tt.format, planes[0], planes[1], planes[2])
			if !out.IsValid() {
				t.Fatalf("ConvertToBGRX: %v", ctx.LastError())
			}
			img := readPixels(t, ctx, out)
			for py := 0; py < frame.Y; py++ {
				for px := 0; px < frame.X; px++ {
					ref := want[(py*frame.X+px)*4:]
					exp := color.NRGBA{R: ref[2], G: ref[1], B: ref[0], A: 255}
					if got := img.NRGBAAt(px, py); !nearColor(got, exp) {
						t.Fatalf("pixel (%d,%d) = %v, want %v", px, py, got, exp)
					}
				}
			}
		})
	}
}

func TestConvertRGB32Fill(t *testing.T) {
	ctx, _ := newTestContext(t)
	frame := image.Pt(8, 4)
	c := color.NRGBA{R: 200, G: 100, B: 50, A: 255}
	tex := ctx.NewPlaneTex(FormatRGB32, 0, frame, true)
	if err := tex.UpdatePlane(pixconv.Fill(frame.X, frame.Y, c), frame.X*4); err != nil {
		t.Fatal(err)
	}
	out := ctx.ConvertToBGRX(FormatRGB32, tex, nil, nil)
	if !out.IsValid() {
		t.Fatalf("ConvertToBGRX: %v", ctx.LastError())
	}
	if got := readPixels(t, ctx, out).NRGBAAt(5, 2); !nearColor(got, c) {
		t.Errorf("pixel = %v, want %v", got, c)
	}
}

func TestConvertEveryFormat(t *testing.T) {
	frame := image.Pt(16, 8)
	for _, f := range []PixelFormat{FormatRGB32, FormatARGB32, FormatYV12, FormatIYUV, FormatNV12, FormatUYVY, FormatHDYC, FormatYUY2} {
		t.Run(f.String(), func(t *testing.T) {
			ctx, rec := newTestContext(t)
			planes := uploadPlanes(t, ctx, f, frame)
			out := ctx.ConvertToBGRX(f, planes[0], planes[1], planes[2])
			if !out.IsValid() {
				t.Fatalf("ConvertToBGRX: %v", ctx.LastError())
			}
			if out.Size() != frame {
				t.Errorf("output size = %v, want %v", out.Size(), frame)
			}
			info, _ := f.Info()
			draws := rec.Draws()
			if len(draws) != 1 {
				t.Fatalf("draws = %d", len(draws))
			}
			if draws[0].Shader != info.Shader || draws[0].BoundUnits() != f.NumPlanes() {
				t.Errorf("shader=%v units=%d, want %v %d", draws[0].Shader, draws[0].BoundUnits(), info.Shader, f.NumPlanes())
			}
		})
	}
}

func TestConvertPackedYUVColors(t *testing.T) {
	tests := []struct {
		format PixelFormat
		texel  []byte
	}{
		{FormatUYVY, []byte{128, 235, 128, 16}},
		{FormatHDYC, []byte{128, 235, 128, 16}},
		{FormatYUY2, []byte{235, 128, 16, 128}},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			ctx, _ := newTestContext(t)
			planes := uploadPlanes(t, ctx, tt.format, image.Pt(8, 2), tt.texel)
			out := ctx.ConvertToBGRX(tt.format, planes[0], nil, nil)
			if !out.IsValid() {
				t.Fatalf("ConvertToBGRX: %v", ctx.LastError())
			}
			img := readPixels(t, ctx, out)
			if got := img.NRGBAAt(2, 0); !nearColor(got, color.NRGBA{255, 255, 255, 255}) {
				t.Errorf("first pixel of pair = %v, want white", got)
			}
			if got := img.NRGBAAt(3, 0); !nearColor(got, color.NRGBA{0, 0, 0, 255}) {
				t.Errorf("second pixel of pair = %v, want black", got)
			}
		})
	}
}

func TestConvertRGB32ForcesOpaque(t *testing.T) {
	ctx, _ := newTestContext(t)
	planes := uploadPlanes(t, ctx, FormatRGB32, image.Pt(4, 4), []byte{255, 0, 0, 0})
	out := ctx.ConvertToBGRX(FormatRGB32, planes[0], nil, nil)
	if got := readPixels(t, ctx, out).NRGBAAt(1, 1); got != (color.NRGBA{B: 255, A: 255}) {
		t.Errorf("pixel = %v, want opaque blue", got)
	}
}

func TestConvertWithoutBGRASupport(t *testing.T) {
	ctx, _ := newTestContext(t, software.WithCapabilities(render.Capabilities{NonPowerOfTwo: true}))
	planes := uploadPlanes(t, ctx, FormatARGB32, image.Pt(4, 4), []byte{0, 255, 0, 255})
	if !planes[0].IsSRGBHack() {
		t.Fatal("BGRA plane is not an sRGB-hack texture")
	}
	out := ctx.ConvertToBGRX(FormatARGB32, planes[0], nil, nil)
	if !out.IsValid() {
		t.Fatalf("ConvertToBGRX: %v", ctx.LastError())
	}
	if got := readPixels(t, ctx, out).NRGBAAt(0, 0); got != (color.NRGBA{G: 255, A: 255}) {
		t.Errorf("pixel = %v, want green", got)
	}
}

func TestConvertUnsupportedFormat(t *testing.T) {
	ctx, rec := newTestContext(t)
	tex := ctx.NewTex(image.Pt(8, 8), true, false, true)
	for _, f := range []PixelFormat{FormatNone, FormatRGB24, PixelFormat(99)} {
		if out := ctx.ConvertToBGRX(f, tex, nil, nil); out.IsValid() {
			t.Errorf("%v converted", f)
		}
		if !errors.Is(ctx.LastError(), ErrUnsupportedFormat) {
			t.Errorf("%v: LastError = %v", f, ctx.LastError())
		}
	}
	if len(rec.Draws()) != 0 {
		t.Errorf("draws issued for unsupported formats: %d", len(rec.Draws()))
	}
}

func TestConvertRejectsMismatchedPlanes(t *testing.T) {
	ctx, rec := newTestContext(t)
	planes := uploadPlanes(t, ctx, FormatYV12, image.Pt(16, 16))
	wrongSize := ctx.NewPlaneTex(FormatYV12, 1, image.Pt(32, 32), true)
	bgra := ctx.NewTex(image.Pt(8, 8), true, false, true)

	tests := []struct {
		name    string
		a, b, c *Texture
		want    error
	}{
		{"missing plane", planes[0], planes[1], nil, ErrInvalidTexture},
		{"wrong chroma size", planes[0], wrongSize, planes[2], ErrInvalidSize},
		{"wrong texel format", planes[0], bgra, planes[2], ErrFormatMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if out := ctx.ConvertToBGRX(FormatYV12, tt.a, tt.b, tt.c); out.IsValid() {
				t.Fatal("converted")
			}
			if !errors.Is(ctx.LastError(), tt.want) {
				t.Errorf("LastError = %v, want %v", ctx.LastError(), tt.want)
			}
		})
	}
	if len(rec.Draws()) != 0 {
		t.Errorf("draws = %d", len(rec.Draws()))
	}
}

func TestConvertAlternatesScratchTargets(t *testing.T) {
	ctx, _ := newTestContext(t)
	planes := uploadPlanes(t, ctx, FormatNV12, image.Pt(32, 16))
	first := ctx.ConvertToBGRX(FormatNV12, planes[0], planes[1], nil)
	second := ctx.ConvertToBGRX(FormatNV12, planes[0], planes[1], nil)
	if first == second {
		t.Error("consecutive conversions share a scratch target")
	}
	if first != ctx.TargetTex(TargetScratch1) || second != ctx.TargetTex(TargetScratch2) {
		t.Error("conversions did not land in Scratch1 then Scratch2")
	}
	if first.Size() != image.Pt(32, 16) {
		t.Errorf("scratch resized to %v", first.Size())
	}
}

// =============================================================================
// PrepareTex
// =============================================================================

func TestPrepareTexSameSize(t *testing.T) {
	ctx, rec := newTestContext(t)
	tex := ctx.NewTex(image.Pt(32, 16), true, false, true)
	p, ok := ctx.PrepareTex(tex, image.Pt(32, 16), render.FilterBilinear, true)
	if !ok {
		t.Fatal(ctx.LastError())
	}
	if p.Tex != tex || p.TopLeft != (render.Point{}) || p.BotRight != render.Pt(1, 1) {
		t.Errorf("prepared = %+v", p)
	}
	if p.PxSize != render.Pt(1.0/32, 1.0/16) {
		t.Errorf("PxSize = %v", p.PxSize)
	}
	if ctx.TexFilter() != render.FilterBilinear {
		t.Errorf("filter = %v", ctx.TexFilter())
	}
	if len(rec.Draws()) != 0 {
		t.Error("unscaled prepare drew")
	}
}

func TestPrepareTexScaled(t *testing.T) {
	ctx, rec := newTestContext(t, software.WithCapabilities(render.Capabilities{BGRATextures: true}))
	tex := ctx.NewTex(image.Pt(64, 64), true, false, true)
	p, ok := ctx.PrepareTex(tex, image.Pt(30, 10), render.FilterBilinear, true)
	if !ok {
		t.Fatal(ctx.LastError())
	}
	if p.Tex == tex || p.Tex != ctx.TargetTex(TargetScratch1) {
		t.Error("scaled texture is not the scratch target")
	}
	if p.Tex.Size() != image.Pt(32, 16) {
		t.Errorf("scratch texture = %v", p.Tex.Size())
	}
	if p.BotRight != render.Pt(30.0/32, 10.0/16) || p.PxSize != render.Pt(1.0/32, 1.0/16) {
		t.Errorf("prepared = %+v", p)
	}
	if ctx.TexFilter() != render.FilterPoint {
		t.Errorf("filter after scaling = %v", ctx.TexFilter())
	}
	d := rec.Draws()
	if len(d) != 1 || d[0].Shader != render.ShaderTexDecal || d[0].Filter != render.FilterBilinear {
		t.Errorf("draws = %+v", d)
	}
	if d[0].Viewport != render.RectXYWH(0, 0, 30, 10) {
		t.Errorf("viewport = %v", d[0].Viewport)
	}
}

func TestPrepareTexCrop(t *testing.T) {
	ctx, rec := newTestContext(t)
	src := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 16; y < 48; y++ {
		for x := 16; x < 48; x++ {
			src.SetNRGBA(x, y, opaqueRed)
		}
	}
	tex := ctx.NewTexFromImage(src, false, false)

	crop := image.Rect(16, 16, 48, 48)
	p, ok := ctx.PrepareTexCrop(tex, crop, image.Pt(32, 32), render.FilterPoint, false)
	if !ok {
		t.Fatal(ctx.LastError())
	}
	if p.Tex != tex || p.TopLeft != render.Pt(0.25, 0.25) || p.BotRight != render.Pt(0.75, 0.75) {
		t.Errorf("unscaled crop = %+v", p)
	}

	p, ok = ctx.PrepareTexCrop(tex, crop, image.Pt(8, 8), render.FilterPoint, false)
	if !ok {
		t.Fatal(ctx.LastError())
	}
	img := readPixels(t, ctx, p.Tex)
	for _, pt := range []image.Point{{0, 0}, {7, 7}, {3, 4}} {
		if got := img.NRGBAAt(pt.X, pt.Y); got != opaqueRed {
			t.Errorf("cropped pixel %v = %v", pt, got)
		}
	}
	if len(rec.Draws()) != 1 {
		t.Errorf("draws = %d", len(rec.Draws()))
	}

	if _, ok := ctx.PrepareTexCrop(tex, image.Rect(60, 60, 70, 70), image.Pt(8, 8), render.FilterPoint, false); ok {
		t.Error("crop outside texture accepted")
	}
}

func TestConvertThenPrepare(t *testing.T) {
	ctx, _ := newTestContext(t)
	planes := uploadPlanes(t, ctx, FormatNV12, image.Pt(64, 32), []byte{235}, []byte{128, 128})
	frame := ctx.ConvertToBGRX(FormatNV12, planes[0], planes[1], nil)
	p, ok := ctx.PrepareTex(frame, image.Pt(16, 8), render.FilterBilinear, false)
	if !ok {
		t.Fatal(ctx.LastError())
	}
	if !frame.IsValid() {
		t.Fatal("scaling released the converted frame")
	}
	if p.Tex == frame {
		t.Fatal("scaled into the source texture")
	}
	if got := readPixels(t, ctx, p.Tex).NRGBAAt(4, 4); !nearColor(got, color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("scaled pixel = %v", got)
	}
}
