// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image/color"
	"testing"
)

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#fff", color.NRGBA{255, 255, 255, 255}},
		{"f008", color.NRGBA{255, 0, 0, 136}},
		{"#8080FF", color.NRGBA{128, 128, 255, 255}},
		{"00ff0080", color.NRGBA{0, 255, 0, 128}},
		{"", color.NRGBA{0, 0, 0, 255}},
		{"12345", color.NRGBA{0, 0, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Hex(tt.in).NRGBA(); got != tt.want {
				t.Errorf("Hex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromColorRoundTrip(t *testing.T) {
	c := color.NRGBA{R: 200, G: 100, B: 50, A: 128}
	if got := FromColor(c).NRGBA(); got != c {
		t.Errorf("FromColor(%v).NRGBA() = %v", c, got)
	}
	if got := RGBA8(1, 2, 3, 4).NRGBA(); got != (color.NRGBA{1, 2, 3, 4}) {
		t.Errorf("RGBA8 round trip = %v", got)
	}
}

func TestColorArithmetic(t *testing.T) {
	c := RGBA(1, 0.5, 0, 0.5)
	if got := c.Premultiply(); got != RGBA(0.5, 0.25, 0, 0.5) {
		t.Errorf("Premultiply = %v", got)
	}
	if got := c.Mul(RGBA(0.5, 0.5, 1, 1)); got != RGBA(0.5, 0.25, 0, 0.5) {
		t.Errorf("Mul = %v", got)
	}
	if got := Black.Lerp(White, 0.5); got != RGB(0.5, 0.5, 0.5) {
		t.Errorf("Lerp = %v", got)
	}
	if got := c.Vec4(); got != [4]float32{1, 0.5, 0, 0.5} {
		t.Errorf("Vec4 = %v", got)
	}
}

func TestTo8(t *testing.T) {
	tests := []struct {
		in   float32
		want uint8
	}{
		{-1, 0}, {0, 0}, {0.5, 128}, {1, 255}, {2, 255}, {1.0 / 255, 1},
	}
	for _, tt := range tests {
		if got := To8(tt.in); got != tt.want {
			t.Errorf("To8(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
