package vidgfx

import (
	"image"
	"log/slog"

	"github.com/gogpu/vidgfx/render"
)

// ContextOption configures a Context during creation.
//
// Example:
//
//	ctx := vidgfx.NewContext(
//	    vidgfx.WithScreenSize(1920, 1080),
//	    vidgfx.WithCanvasSize(1920, 1080),
//	)
type ContextOption func(*contextOptions)

// contextOptions holds optional configuration for Context creation.
type contextOptions struct {
	screenSize  image.Point
	canvasSize  image.Point
	scratchSize image.Point
	borderColor render.Color
	filter      render.Filter
	logger      *slog.Logger
}

// defaultSize is the initial size of every render target.
var defaultSize = image.Point{X: 1280, Y: 720}

// defaultOptions returns the default context options.
func defaultOptions() contextOptions {
	return contextOptions{
		screenSize:  defaultSize,
		canvasSize:  defaultSize,
		scratchSize: defaultSize,
		borderColor: render.RGB(0.5, 0.5, 1),
		filter:      render.FilterBilinear,
	}
}

// WithScreenSize sets the initial size of the screen target pair.
func WithScreenSize(w, h int) ContextOption {
	return func(o *contextOptions) {
		o.screenSize = image.Point{X: w, Y: h}
	}
}

// WithCanvasSize sets the initial size of both canvas targets.
func WithCanvasSize(w, h int) ContextOption {
	return func(o *contextOptions) {
		o.canvasSize = image.Point{X: w, Y: h}
	}
}

// WithScratchSize sets the initial logical size of both scratch targets.
func WithScratchSize(w, h int) ContextOption {
	return func(o *contextOptions) {
		o.scratchSize = image.Point{X: w, Y: h}
	}
}

// WithResizeBorderColor sets the colour of resize handles drawn with
// ShaderResizeLayer.
func WithResizeBorderColor(c render.Color) ContextOption {
	return func(o *contextOptions) {
		o.borderColor = c
	}
}

// WithDefaultFilter sets the texture filter bound after Init.
func WithDefaultFilter(f render.Filter) ContextOption {
	return func(o *contextOptions) {
		o.filter = f
	}
}

// WithLogger sets a logger for this Context only. Without it, the
// package logger from Logger is used.
func WithLogger(l *slog.Logger) ContextOption {
	return func(o *contextOptions) {
		o.logger = l
	}
}
