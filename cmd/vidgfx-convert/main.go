// Command vidgfx-convert converts raw video frames to PNG images through the
// vidgfx conversion pipeline.
//
//	vidgfx-convert -format YV12 -size 640x480 -in frames.yuv -out dir
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/gogpu/vidgfx"
	_ "github.com/gogpu/vidgfx/backend/native"
	_ "github.com/gogpu/vidgfx/backend/software"
	"github.com/gogpu/vidgfx/pixconv"
	"github.com/gogpu/vidgfx/render"
)

func main() {
	var (
		format     = flag.String("format", "", "pixel format of the input frames (YV12, IYUV, NV12, UYVY, HDYC, YUY2, RGB24, RGB32, ARGB32)")
		size       = flag.String("size", "", "frame size as WxH")
		in         = flag.String("in", "", "raw frame file")
		out        = flag.String("out", ".", "output directory")
		configPath = flag.String("config", "", "YAML config file")
		backendArg = flag.String("backend", "", "render backend (default: best available)")
		scale      = flag.String("scale", "", "output size as WxH")
		luma       = flag.Bool("luma", false, "also write the luma plane of planar YUV frames")
	)
	flag.Parse()

	cfg := defaultConfig()
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			log.Fatal(err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Format = *format
		case "size":
			cfg.Size = *size
		case "backend":
			cfg.Backend = *backendArg
		case "scale":
			cfg.Scale = *scale
		case "luma":
			cfg.Luma = *luma
		}
	})
	if *in == "" {
		log.Fatal("missing -in")
	}

	if err := run(cfg, *in, *out); err != nil {
		log.Fatal(err)
	}
}

// job is a validated conversion request.
type job struct {
	pf     vidgfx.PixelFormat
	frame  image.Point
	scale  image.Point
	filter render.Filter
	flip   pixconv.Orientation
}

func run(cfg config, in, outDir string) error {
	pf, err := vidgfx.ParsePixelFormat(cfg.Format)
	if err != nil {
		return err
	}
	frame, err := parseSize(cfg.Size)
	if err != nil {
		return err
	}
	if frame == (image.Point{}) {
		return errors.New("missing frame size")
	}
	scale, err := parseSize(cfg.Scale)
	if err != nil {
		return err
	}
	filter, err := parseFilter(cfg.Filter)
	if err != nil {
		return err
	}
	flip, err := parseFlip(cfg.Flip)
	if err != nil {
		return err
	}
	j := job{pf: pf, frame: frame, scale: scale, filter: filter, flip: flip}

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	total := int64(-1)
	if st, err := f.Stat(); err == nil {
		total = st.Size() / int64(pf.FrameBytes(frame))
	}
	if cfg.Frames > 0 && (total < 0 || int64(cfg.Frames) < total) {
		total = int64(cfg.Frames)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	ctx, err := vidgfx.OpenContext(cfg.Backend, vidgfx.WithLogger(logger), vidgfx.WithDefaultFilter(filter))
	if err != nil {
		return fmt.Errorf("open context: %w", err)
	}
	defer ctx.Destroy()

	conv, err := newConverter(ctx, j)
	if err != nil {
		return err
	}
	defer conv.destroy()

	bar := progressbar.Default(total, "converting")
	buf := make([]byte, pf.FrameBytes(frame))
	for n := 0; cfg.Frames == 0 || n < cfg.Frames; n++ {
		if _, err := io.ReadFull(f, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return err
		}
		img, err := conv.convert(buf)
		if err != nil {
			return fmt.Errorf("frame %d: %w", n, err)
		}
		name := filepath.Join(outDir, fmt.Sprintf("%s%05d.png", cfg.Prefix, n))
		if err := writePNG(name, img); err != nil {
			return err
		}
		if cfg.Luma && conv.hasLuma() {
			gray, err := conv.luma(buf)
			if err != nil {
				return fmt.Errorf("frame %d: %w", n, err)
			}
			name := filepath.Join(outDir, fmt.Sprintf("%s%05d_luma.png", cfg.Prefix, n))
			if err := writePNG(name, gray); err != nil {
				return err
			}
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return nil
}

func writePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return f.Close()
}
