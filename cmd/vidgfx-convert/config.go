package main

import (
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/vidgfx/pixconv"
	"github.com/gogpu/vidgfx/render"
)

// config holds the conversion settings. Flags given on the command line
// override values read from the YAML file.
type config struct {
	Format  string `yaml:"format"`
	Size    string `yaml:"size"`
	Scale   string `yaml:"scale"`
	Backend string `yaml:"backend"`
	Filter  string `yaml:"filter"` // "point" or "bilinear"
	Flip    string `yaml:"flip"`   // "", "vertical", "horizontal" or "both"
	Frames  int    `yaml:"frames"` // 0 converts every frame
	Prefix  string `yaml:"prefix"`
	Luma    bool   `yaml:"luma"` // also write the Y plane of planar frames
	Verbose bool   `yaml:"verbose"`
}

func defaultConfig() config {
	return config{Format: "YV12", Filter: "bilinear", Prefix: "frame"}
}

// loadConfig merges the YAML file at path into c.
func loadConfig(path string, c *config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// parseSize parses "WxH". An empty string yields the zero point.
func parseSize(s string) (image.Point, error) {
	if s == "" {
		return image.Point{}, nil
	}
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return image.Point{}, fmt.Errorf("size %q: want WxH", s)
	}
	x, err := strconv.Atoi(w)
	if err != nil {
		return image.Point{}, fmt.Errorf("size %q: %w", s, err)
	}
	y, err := strconv.Atoi(h)
	if err != nil {
		return image.Point{}, fmt.Errorf("size %q: %w", s, err)
	}
	if x <= 0 || y <= 0 {
		return image.Point{}, fmt.Errorf("size %q: dimensions must be positive", s)
	}
	return image.Pt(x, y), nil
}

func parseFilter(s string) (render.Filter, error) {
	switch strings.ToLower(s) {
	case "", "bilinear", "linear":
		return render.FilterBilinear, nil
	case "point", "nearest":
		return render.FilterPoint, nil
	}
	return 0, fmt.Errorf("filter %q: want point or bilinear", s)
}

func parseFlip(s string) (pixconv.Orientation, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return pixconv.OrientNormal, nil
	case "vertical", "v":
		return pixconv.OrientFlipV, nil
	case "horizontal", "h":
		return pixconv.OrientFlipH, nil
	case "both", "180":
		return pixconv.OrientRotate180, nil
	}
	return 0, fmt.Errorf("flip %q: want vertical, horizontal or both", s)
}
