package main

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/vidgfx/pixconv"
	"github.com/gogpu/vidgfx/render"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    image.Point
		wantErr bool
	}{
		{"", image.Point{}, false},
		{"640x480", image.Pt(640, 480), false},
		{"16X9", image.Pt(16, 9), false},
		{"640", image.Point{}, true},
		{"0x4", image.Point{}, true},
		{"ax4", image.Point{}, true},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseSize(%q) = %v, %v; want %v, err %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestParseFilterAndFlip(t *testing.T) {
	if f, err := parseFilter("point"); err != nil || f != render.FilterPoint {
		t.Errorf("parseFilter(point) = %v, %v", f, err)
	}
	if _, err := parseFilter("lanczos"); err == nil {
		t.Error("parseFilter(lanczos) should fail")
	}
	if o, err := parseFlip("vertical"); err != nil || o != pixconv.OrientFlipV {
		t.Errorf("parseFlip(vertical) = %v, %v", o, err)
	}
	if _, err := parseFlip("sideways"); err == nil {
		t.Error("parseFlip(sideways) should fail")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	data := "format: NV12\nsize: 32x16\nflip: vertical\nframes: 2\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := defaultConfig()
	if err := loadConfig(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Format != "NV12" || cfg.Size != "32x16" || cfg.Flip != "vertical" || cfg.Frames != 2 {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Prefix != "frame" || cfg.Filter != "bilinear" {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), &cfg); err == nil {
		t.Error("missing config should fail")
	}
}

// writeFrames writes n mid-grey frames of format f.
func writeFrames(t *testing.T, name string, size int, n int) {
	t.Helper()
	buf := make([]byte, size*n)
	for i := range buf {
		buf[i] = 128
	}
	if err := os.WriteFile(name, buf, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		format string
		bytes  int // per 8x4 frame
		scale  string
		want   image.Point
	}{
		{"yv12", "YV12", 8*4 + 2*4*2, "", image.Pt(8, 4)},
		{"nv12 scaled", "NV12", 8*4 + 4*2*2, "16x8", image.Pt(16, 8)},
		{"rgb24", "RGB24", 8 * 4 * 3, "", image.Pt(8, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, "in.raw")
			writeFrames(t, in, tt.bytes, 2)

			cfg := defaultConfig()
			cfg.Format = tt.format
			cfg.Size = "8x4"
			cfg.Scale = tt.scale
			cfg.Backend = "software"
			out := filepath.Join(dir, "out")
			if err := run(cfg, in, out); err != nil {
				t.Fatal(err)
			}

			for _, frame := range []string{"frame00000.png", "frame00001.png"} {
				f, err := os.Open(filepath.Join(out, frame))
				if err != nil {
					t.Fatal(err)
				}
				img, err := png.Decode(f)
				f.Close()
				if err != nil {
					t.Fatal(err)
				}
				if img.Bounds().Size() != tt.want {
					t.Errorf("%s size = %v, want %v", frame, img.Bounds().Size(), tt.want)
				}
			}
		})
	}
}

func TestRunLuma(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.raw")
	writeFrames(t, in, 8*4+2*4*2, 1)

	cfg := defaultConfig()
	cfg.Format = "IYUV"
	cfg.Size = "8x4"
	cfg.Backend = "software"
	cfg.Luma = true
	out := filepath.Join(dir, "out")
	if err := run(cfg, in, out); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(filepath.Join(out, "frame00000_luma.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("luma image is %T, want *image.Gray", img)
	}
	if gray.Bounds().Size() != image.Pt(8, 4) || gray.GrayAt(3, 2).Y != 128 {
		t.Errorf("luma %v with sample %d", gray.Bounds().Size(), gray.GrayAt(3, 2).Y)
	}

	// Packed formats have no separate Y plane.
	cfg.Format = "YUY2"
	writeFrames(t, in, 8*4*2, 1)
	packed := filepath.Join(dir, "packed")
	if err := run(cfg, in, packed); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(packed, "frame00000_luma.png")); !os.IsNotExist(err) {
		t.Errorf("packed frame wrote a luma image: %v", err)
	}
}

func TestRunErrors(t *testing.T) {
	in := filepath.Join(t.TempDir(), "in.raw")
	writeFrames(t, in, 48, 1)
	tests := []struct {
		name   string
		mutate func(*config)
	}{
		{"bad format", func(c *config) { c.Format = "MJPG" }},
		{"no size", func(c *config) { c.Size = "" }},
		{"bad flip", func(c *config) { c.Flip = "diagonal" }},
		{"unknown backend", func(c *config) { c.Backend = "nonexistent" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Size = "8x4"
			cfg.Backend = "software"
			tt.mutate(&cfg)
			if err := run(cfg, in, t.TempDir()); err == nil {
				t.Error("run succeeded")
			}
		})
	}
}
