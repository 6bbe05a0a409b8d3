package pixconv

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// =============================================================================
// Plane slicing
// =============================================================================

func TestSplitPlanes(t *testing.T) {
	// 4x2 YV12: Y 8 bytes, then two 2x1 chroma planes.
	data := []byte{1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 3, 3, 9}
	planes, err := SplitPlanes(data, Plane{4, 2, 1}, Plane{2, 1, 1}, Plane{2, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []struct {
		n int
		v byte
	}{{8, 1}, {2, 2}, {2, 3}} {
		if len(planes[i]) != want.n || planes[i][0] != want.v {
			t.Errorf("plane %d = %v, want %d bytes of %d", i, planes[i], want.n, want.v)
		}
	}
	if cap(planes[2]) != 2 {
		t.Errorf("last plane cap = %d, trailing bytes leaked", cap(planes[2]))
	}
	if _, err := SplitPlanes(data[:11], Plane{4, 2, 1}, Plane{2, 1, 1}, Plane{2, 1, 1}); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("short frame err = %v, want ErrShortBuffer", err)
	}
}

// =============================================================================
// Conversions
// =============================================================================

func TestRGB24ToRGB32(t *testing.T) {
	src := []byte{
		1, 2, 3, 4, 5, 6, 0, 0, // row 0 plus padding
		7, 8, 9, 10, 11, 12, 0, 0,
	}
	dst := make([]byte, 2*2*4)
	if err := RGB24ToRGB32(dst, src, 2, 2, 8); err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 255, 4, 5, 6, 255, 7, 8, 9, 255, 10, 11, 12, 255}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
	if err := RGB24ToRGB32(dst[:4], src, 2, 2, 0); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("short dst err = %v", err)
	}
}

func TestI420ToBGRX(t *testing.T) {
	tests := []struct {
		name    string
		y, u, v byte
		want    [3]byte // b, g, r
	}{
		{"black", 16, 128, 128, [3]byte{0, 0, 0}},
		{"white", 235, 128, 128, [3]byte{255, 255, 255}},
		{"below black clamps", 0, 128, 128, [3]byte{0, 0, 0}},
		{"red", 81, 90, 240, [3]byte{0, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, 2*2*4)
			y := []byte{tt.y, tt.y, tt.y, tt.y}
			if err := I420ToBGRX(dst, y, []byte{tt.u}, []byte{tt.v}, 2, 2); err != nil {
				t.Fatal(err)
			}
			for i := 0; i < 4; i++ {
				px := dst[i*4 : i*4+4]
				for c := 0; c < 3; c++ {
					if d := int(px[c]) - int(tt.want[c]); d < -2 || d > 2 {
						t.Fatalf("pixel %d = %v, want %v", i, px, tt.want)
					}
				}
				if px[3] != 0xFF {
					t.Fatalf("pixel %d alpha = %d", i, px[3])
				}
			}
		})
	}
}

func TestI420OddSize(t *testing.T) {
	// 3x3 luma with 2x2 chroma.
	dst := make([]byte, 3*3*4)
	y := make([]byte, 9)
	for i := range y {
		y[i] = 235
	}
	if err := I420ToBGRX(dst, y, make([]byte, 4), make([]byte, 4), 3, 3); err != nil {
		t.Fatal(err)
	}
	if err := I420ToBGRX(dst, y, make([]byte, 1), make([]byte, 4), 3, 3); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("short chroma err = %v", err)
	}
}

// =============================================================================
// Images
// =============================================================================

func TestToImage(t *testing.T) {
	data := []byte{
		10, 20, 30, 0, 40, 50, 60, 0, 99, 99,
		70, 80, 90, 0, 1, 2, 3, 0, 99, 99,
	}
	img, err := ToImage(data, 10, 2, 2, image.Point{})
	if err != nil {
		t.Fatal(err)
	}
	if got := img.NRGBAAt(1, 0); got != (color.NRGBA{R: 60, G: 50, B: 40, A: 255}) {
		t.Errorf("(1,0) = %v", got)
	}
	if got := img.NRGBAAt(0, 1); got != (color.NRGBA{R: 90, G: 80, B: 70, A: 255}) {
		t.Errorf("(0,1) = %v", got)
	}

	scaled, err := ToImage(data, 10, 2, 2, image.Pt(4, 6))
	if err != nil {
		t.Fatal(err)
	}
	if scaled.Bounds().Size() != image.Pt(4, 6) {
		t.Errorf("scaled size = %v", scaled.Bounds().Size())
	}
	if _, err := ToImage(data, 4, 2, 2, image.Point{}); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("narrow stride err = %v", err)
	}
}

func TestOrient(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	top := color.NRGBA{R: 255, A: 255}
	src.SetNRGBA(0, 0, top)

	tests := []struct {
		o  Orientation
		at image.Point
	}{
		{OrientNormal, image.Pt(0, 0)},
		{OrientFlipV, image.Pt(0, 1)},
		{OrientFlipH, image.Pt(1, 0)},
		{OrientRotate180, image.Pt(1, 1)},
	}
	for _, tt := range tests {
		got := Orient(src, tt.o)
		if c := got.NRGBAAt(tt.at.X, tt.at.Y); c != top {
			t.Errorf("orientation %d: pixel at %v = %v, want %v", tt.o, tt.at, c, top)
		}
	}
}

func TestGrayAndFill(t *testing.T) {
	g, err := Gray([]byte{1, 2, 3, 4}, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if g.GrayAt(1, 1).Y != 4 {
		t.Errorf("gray (1,1) = %d", g.GrayAt(1, 1).Y)
	}
	if _, err := Gray([]byte{1}, 2, 2); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("short luma err = %v", err)
	}
	f := Fill(1, 1, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	if f[0] != 3 || f[1] != 2 || f[2] != 1 || f[3] != 255 {
		t.Errorf("Fill = %v", f)
	}
}
