// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "testing"

func TestShaderProperties(t *testing.T) {
	tests := []struct {
		shader           Shader
		units, vert, out int
	}{
		{ShaderSolid, 0, 8, 1},
		{ShaderTexDecal, 1, 8, 1},
		{ShaderTexDecalGbcs, 1, 8, 1},
		{ShaderTexDecalRgb, 1, 8, 1},
		{ShaderResizeLayer, 0, 4, 1},
		{ShaderRgbNv16, 1, 8, 2},
		{ShaderYv12Rgb, 3, 8, 1},
		{ShaderNv12Rgb, 2, 8, 1},
		{ShaderUyvyRgb, 1, 8, 1},
		{ShaderHdycRgb, 1, 8, 1},
		{ShaderYuy2Rgb, 1, 8, 1},
	}
	if len(tests) != len(Shaders()) {
		t.Fatalf("table covers %d shaders, Shaders() has %d", len(tests), len(Shaders()))
	}
	for _, tt := range tests {
		t.Run(tt.shader.String(), func(t *testing.T) {
			if !tt.shader.IsValid() {
				t.Error("not valid")
			}
			if got := tt.shader.TextureUnits(); got != tt.units {
				t.Errorf("TextureUnits = %d, want %d", got, tt.units)
			}
			if got := tt.shader.VertSize(); got != tt.vert {
				t.Errorf("VertSize = %d, want %d", got, tt.vert)
			}
			if got := tt.shader.Targets(); got != tt.out {
				t.Errorf("Targets = %d, want %d", got, tt.out)
			}
		})
	}
	if ShaderNone.IsValid() || Shader(99).IsValid() {
		t.Error("invalid shader reported valid")
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		f                Filter
		standard, linear bool
		quality          string
	}{
		{FilterPoint, true, false, "Low (Nearest neighbour)"},
		{FilterBilinear, true, true, "Medium (Bilinear)"},
		{FilterResizeLayer, false, true, "Resize layer"},
		{Filter(-1), false, false, "Filter(-1)"},
	}
	for _, tt := range tests {
		if tt.f.IsStandard() != tt.standard || tt.f.Linear() != tt.linear || tt.f.QualityString() != tt.quality {
			t.Errorf("%v: standard=%v linear=%v quality=%q", tt.f, tt.f.IsStandard(), tt.f.Linear(), tt.f.QualityString())
		}
	}
}

func TestTextureFlags(t *testing.T) {
	f := TexWritable | TexTargetable
	if !f.Has(TexWritable) || !f.Has(TexWritable|TexTargetable) || f.Has(TexStaging) {
		t.Errorf("Has on %v", f)
	}
	if got := f.String(); got != "writable|targetable" {
		t.Errorf("String = %q", got)
	}
	if got := TextureFlags(0).String(); got != "none" {
		t.Errorf("String = %q", got)
	}
}

func TestTexelCodec(t *testing.T) {
	v := [4]float32{1, 0.5, 0, 1}
	tests := []struct {
		format TexelFormat
		bytes  []byte
		back   [4]float32
	}{
		{TexelBGRA8, []byte{0, 128, 255, 255}, [4]float32{1, 128.0 / 255, 0, 1}},
		{TexelRGBA8, []byte{255, 128, 0, 255}, [4]float32{1, 128.0 / 255, 0, 1}},
		{TexelRG8, []byte{255, 128}, [4]float32{1, 128.0 / 255, 0, 1}},
		{TexelR8, []byte{255}, [4]float32{1, 0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if n := tt.format.BytesPerTexel(); n != len(tt.bytes) {
				t.Fatalf("BytesPerTexel = %d", n)
			}
			p := make([]byte, len(tt.bytes))
			tt.format.Encode(p, v)
			if string(p) != string(tt.bytes) {
				t.Errorf("Encode = %v, want %v", p, tt.bytes)
			}
			if got := tt.format.Decode(p); got != tt.back {
				t.Errorf("Decode = %v, want %v", got, tt.back)
			}
		})
	}
	if TexelUnknown.BytesPerTexel() != 0 {
		t.Error("unknown format has a size")
	}
}
