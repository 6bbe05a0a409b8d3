package pixconv

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// ErrShortBuffer is returned when a frame or destination is too small for
// the requested dimensions.
var ErrShortBuffer = errors.New("pixconv: short buffer")

// Plane describes one tightly packed plane of a raw frame.
type Plane struct {
	W, H int
	BPP  int // bytes per texel
}

// Stride returns the bytes per row.
func (p Plane) Stride() int { return p.W * p.BPP }

// Len returns the plane size in bytes.
func (p Plane) Len() int { return p.Stride() * p.H }

// SplitPlanes slices data into consecutive planes. The returned slices alias
// data. Trailing bytes are ignored.
func SplitPlanes(data []byte, planes ...Plane) ([][]byte, error) {
	out := make([][]byte, len(planes))
	off := 0
	for i, p := range planes {
		n := p.Len()
		if n < 0 || off+n > len(data) {
			return nil, fmt.Errorf("%w: plane %d needs %d bytes at %d, have %d", ErrShortBuffer, i, n, off, len(data))
		}
		out[i] = data[off : off+n : off+n]
		off += n
	}
	return out, nil
}

// RGB24ToRGB32 widens packed B,G,R texels to B,G,R,X with X set to 0xFF.
// dst receives w*4 bytes per row. srcStride 0 means tightly packed.
func RGB24ToRGB32(dst, src []byte, w, h, srcStride int) error {
	if srcStride == 0 {
		srcStride = w * 3
	}
	if w <= 0 || h <= 0 {
		return nil
	}
	if len(src) < srcStride*(h-1)+w*3 || len(dst) < w*h*4 {
		return fmt.Errorf("%w: %dx%d RGB24", ErrShortBuffer, w, h)
	}
	for y := 0; y < h; y++ {
		s := src[y*srcStride:]
		d := dst[y*w*4:]
		for x := 0; x < w; x++ {
			d[x*4+0] = s[x*3+0]
			d[x*4+1] = s[x*3+1]
			d[x*4+2] = s[x*3+2]
			d[x*4+3] = 0xFF
		}
	}
	return nil
}

// I420ToBGRX converts planar 4:2:0 YUV to packed BGRX using limited-range
// BT.601, the same matrix the GPU programs use. Chroma planes are
// (w+1)/2 by (h+1)/2.
func I420ToBGRX(dst, y, u, v []byte, w, h int) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	cw, ch := (w+1)/2, (h+1)/2
	if len(y) < w*h || len(u) < cw*ch || len(v) < cw*ch || len(dst) < w*h*4 {
		return fmt.Errorf("%w: %dx%d I420", ErrShortBuffer, w, h)
	}
	for yy := 0; yy < h; yy++ {
		for xx := 0; xx < w; xx++ {
			ci := (yy/2)*cw + xx/2
			r, g, b := bt601(y[yy*w+xx], u[ci], v[ci])
			off := (yy*w + xx) * 4
			dst[off+0] = b
			dst[off+1] = g
			dst[off+2] = r
			dst[off+3] = 0xFF
		}
	}
	return nil
}

// bt601 converts one limited-range BT.601 sample in 8.8 fixed point.
func bt601(y, u, v byte) (r, g, b byte) {
	c := int(y) - 16
	d := int(u) - 128
	e := int(v) - 128
	if c < 0 {
		c = 0
	}
	return clamp8((298*c + 409*e + 128) >> 8),
		clamp8((298*c - 100*d - 208*e + 128) >> 8),
		clamp8((298*c + 516*d + 128) >> 8)
}

func clamp8(v int) byte {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return byte(v)
}

// ToImage copies BGRX texels into an opaque NRGBA image. When size is
// non-zero and differs from w by h the result is scaled to it with
// Catmull-Rom.
func ToImage(data []byte, stride, w, h int, size image.Point) (*image.NRGBA, error) {
	if w <= 0 || h <= 0 {
		return image.NewNRGBA(image.Rectangle{}), nil
	}
	if stride < w*4 || len(data) < stride*(h-1)+w*4 {
		return nil, fmt.Errorf("%w: %dx%d BGRX with stride %d", ErrShortBuffer, w, h, stride)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		s := data[y*stride:]
		d := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			d[x*4+0] = s[x*4+2]
			d[x*4+1] = s[x*4+1]
			d[x*4+2] = s[x*4+0]
			d[x*4+3] = 0xFF
		}
	}
	if size == (image.Point{}) || size == img.Bounds().Size() {
		return img, nil
	}
	return Scale(img, size), nil
}

// Scale resizes img to size with Catmull-Rom.
func Scale(img image.Image, size image.Point) *image.NRGBA {
	out := image.NewNRGBA(image.Rectangle{Max: size})
	draw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), draw.Src, nil)
	return out
}

// Orientation describes how stored rows map to display rows.
type Orientation int

const (
	OrientNormal Orientation = iota
	OrientFlipV              // bottom-up rows, as DIB frames store them
	OrientFlipH
	OrientRotate180
)

// Orient returns img corrected for o.
func Orient(img image.Image, o Orientation) *image.NRGBA {
	switch o {
	case OrientFlipV:
		return imaging.FlipV(img)
	case OrientFlipH:
		return imaging.FlipH(img)
	case OrientRotate180:
		return imaging.Rotate180(img)
	default:
		return imaging.Clone(img)
	}
}

// Gray returns the Y plane of a frame as an image, for inspecting luma
// alone.
func Gray(y []byte, w, h int) (*image.Gray, error) {
	if len(y) < w*h {
		return nil, fmt.Errorf("%w: %dx%d luma", ErrShortBuffer, w, h)
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	copy(img.Pix, y[:w*h])
	return img, nil
}

// Fill returns a BGRX frame of w by h set to c.
func Fill(w, h int, c color.Color) []byte {
	r, g, b, _ := c.RGBA()
	out := make([]byte, w*h*4)
	for i := 0; i < len(out); i += 4 {
		out[i+0] = byte(b >> 8)
		out[i+1] = byte(g >> 8)
		out[i+2] = byte(r >> 8)
		out[i+3] = 0xFF
	}
	return out
}
