package vidgfx

import (
	"fmt"
	"image"
	"strings"

	"github.com/gogpu/vidgfx/render"
)

// PixelFormat is the memory layout of a video frame.
type PixelFormat int

const (
	FormatNone PixelFormat = iota

	// Uncompressed RGB with a single packed plane
	FormatRGB24  // Converted to RGB32 on the CPU before upload
	FormatRGB32  // B, G, R, X bytes
	FormatARGB32 // B, G, R, A bytes

	// YUV 4:2:0 with 3 separate planes
	FormatYV12 // NxM Y, (N/2)x(M/2) V, (N/2)x(M/2) U
	FormatIYUV // NxM Y, (N/2)x(M/2) U, (N/2)x(M/2) V (a.k.a. I420)

	// YUV 4:2:0 with 2 separate planes
	FormatNV12 // NxM Y, (N/2)x(M/2) interleaved UV

	// YUV 4:2:2 with a single packed plane
	FormatUYVY // U Y0 V Y1
	FormatHDYC // UYVY with BT.709 colorimetry
	FormatYUY2 // Y0 U Y1 V

	numPixelFormats
)

var pixelFormatNames = [numPixelFormats]string{
	"Unknown", "RGB24", "RGB32", "ARGB32", "YV12", "IYUV", "NV12",
	"UYVY", "HDYC", "YUY2",
}

// String returns the display name of the format.
func (f PixelFormat) String() string {
	if f >= 0 && f < numPixelFormats {
		return pixelFormatNames[f]
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// ParsePixelFormat returns the format with the given display name,
// ignoring case. I420 is accepted as an alias of IYUV.
func ParsePixelFormat(s string) (PixelFormat, error) {
	if strings.EqualFold(s, "I420") {
		return FormatIYUV, nil
	}
	for f := FormatRGB24; f < numPixelFormats; f++ {
		if strings.EqualFold(s, pixelFormatNames[f]) {
			return f, nil
		}
	}
	return FormatNone, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// PlaneLayout describes one source plane of a pixel format.
type PlaneLayout struct {
	// Texel is the texture layout the plane is uploaded as.
	Texel render.TexelFormat
	// XDiv and YDiv divide the frame size to give the plane size in texels.
	XDiv, YDiv int
}

// Size returns the plane size for a frame of the given size, rounding up.
func (p PlaneLayout) Size(frame image.Point) image.Point {
	return image.Point{X: (frame.X + p.XDiv - 1) / p.XDiv, Y: (frame.Y + p.YDiv - 1) / p.YDiv}
}

// FormatInfo is one entry of the format table.
type FormatInfo struct {
	// Planes lists the planes in the order callers supply them.
	Planes []PlaneLayout

	// Shader converts the planes to RGB.
	Shader render.Shader

	// Units maps texture unit i to the index of the plane bound to it.
	Units []int

	// CPUConverted marks formats that never reach the GPU directly.
	CPUConverted bool
}

// formats is the single declarative table consulted by the conversion
// pipeline and every format check.
var formats = map[PixelFormat]FormatInfo{
	FormatRGB24: {CPUConverted: true},
	FormatRGB32: {
		Planes: []PlaneLayout{{render.TexelBGRA8, 1, 1}},
		Shader: render.ShaderTexDecalRgb,
		Units:  []int{0},
	},
	FormatARGB32: {
		Planes: []PlaneLayout{{render.TexelBGRA8, 1, 1}},
		Shader: render.ShaderTexDecal,
		Units:  []int{0},
	},
	FormatYV12: {
		Planes: []PlaneLayout{{render.TexelR8, 1, 1}, {render.TexelR8, 2, 2}, {render.TexelR8, 2, 2}},
		Shader: render.ShaderYv12Rgb,
		Units:  []int{0, 2, 1},
	},
	FormatIYUV: {
		Planes: []PlaneLayout{{render.TexelR8, 1, 1}, {render.TexelR8, 2, 2}, {render.TexelR8, 2, 2}},
		Shader: render.ShaderYv12Rgb,
		Units:  []int{0, 1, 2},
	},
	FormatNV12: {
		Planes: []PlaneLayout{{render.TexelR8, 1, 1}, {render.TexelRG8, 2, 2}},
		Shader: render.ShaderNv12Rgb,
		Units:  []int{0, 1},
	},
	FormatUYVY: {
		Planes: []PlaneLayout{{render.TexelRGBA8, 2, 1}},
		Shader: render.ShaderUyvyRgb,
		Units:  []int{0},
	},
	FormatHDYC: {
		Planes: []PlaneLayout{{render.TexelRGBA8, 2, 1}},
		Shader: render.ShaderHdycRgb,
		Units:  []int{0},
	},
	FormatYUY2: {
		Planes: []PlaneLayout{{render.TexelRGBA8, 2, 1}},
		Shader: render.ShaderYuy2Rgb,
		Units:  []int{0},
	},
}

// Info returns the table entry of f.
func (f PixelFormat) Info() (FormatInfo, bool) {
	info, ok := formats[f]
	return info, ok
}

// IsConvertible reports whether f can be passed to Context.ConvertToBGRX.
func (f PixelFormat) IsConvertible() bool {
	info, ok := formats[f]
	return ok && !info.CPUConverted
}

// IsYUV reports whether f stores luma and chroma.
func (f PixelFormat) IsYUV() bool {
	return f >= FormatYV12 && f < numPixelFormats
}

// NumPlanes returns the number of planes uploaded for f.
func (f PixelFormat) NumPlanes() int {
	return len(formats[f].Planes)
}

// PlaneSize returns the size in texels of plane i of a frame.
func (f PixelFormat) PlaneSize(i int, frame image.Point) image.Point {
	info := formats[f]
	if i < 0 || i >= len(info.Planes) {
		return image.Point{}
	}
	return info.Planes[i].Size(frame)
}

// FrameBytes returns the size of one tightly packed frame in bytes.
func (f PixelFormat) FrameBytes(frame image.Point) int {
	if f == FormatRGB24 {
		return frame.X * frame.Y * 3
	}
	n := 0
	for _, p := range formats[f].Planes {
		s := p.Size(frame)
		n += s.X * s.Y * p.Texel.BytesPerTexel()
	}
	return n
}

// RenderTarget names a render target owned by a Context.
type RenderTarget int

const (
	TargetScreen RenderTarget = iota
	TargetCanvas1
	TargetCanvas2
	TargetScratch1
	TargetScratch2
	// TargetUser is a dynamic target set with SetUserRenderTarget.
	TargetUser
)

// String returns the target name.
func (t RenderTarget) String() string {
	switch t {
	case TargetScreen:
		return "Screen"
	case TargetCanvas1:
		return "Canvas1"
	case TargetCanvas2:
		return "Canvas2"
	case TargetScratch1:
		return "Scratch1"
	case TargetScratch2:
		return "Scratch2"
	case TargetUser:
		return "User"
	default:
		return fmt.Sprintf("RenderTarget(%d)", int(t))
	}
}

// Orientation transforms a texture mapping.
type Orientation int

const (
	OrientUnchanged Orientation = iota
	// OrientFlipped mirrors vertically.
	OrientFlipped
	// OrientMirrored mirrors horizontally.
	OrientMirrored
	OrientFlippedMirrored
)

// String returns the orientation name.
func (o Orientation) String() string {
	switch o {
	case OrientUnchanged:
		return "Unchanged"
	case OrientFlipped:
		return "Flipped"
	case OrientMirrored:
		return "Mirrored"
	case OrientFlippedMirrored:
		return "FlippedMirrored"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}
