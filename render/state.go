// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "fmt"

// Topology selects how vertices are assembled into primitives.
// Line topologies are deliberately absent.
type Topology int

const (
	// TriangleList draws every three vertices as an independent triangle.
	TriangleList Topology = iota
	// TriangleStrip draws each vertex after the second as a triangle with
	// the previous two.
	TriangleStrip
)

// String returns the topology name.
func (t Topology) String() string {
	switch t {
	case TriangleList:
		return "TriangleList"
	case TriangleStrip:
		return "TriangleStrip"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// Shader selects the pixel program used by a draw call.
type Shader int

const (
	// ShaderNone leaves the shader unset; draws are rejected.
	ShaderNone Shader = iota
	// ShaderSolid outputs the interpolated vertex colour.
	ShaderSolid
	// ShaderTexDecal samples texture A and multiplies by the decal
	// modulation colour.
	ShaderTexDecal
	// ShaderTexDecalGbcs is ShaderTexDecal followed by gamma, brightness,
	// contrast and saturation adjustment.
	ShaderTexDecalGbcs
	// ShaderTexDecalRgb is ShaderTexDecal with the alpha channel forced
	// to one.
	ShaderTexDecalRgb
	// ShaderResizeLayer draws the dashed resize handles of a layer using
	// 4-float vertices.
	ShaderResizeLayer
	// ShaderRgbNv16 converts RGB texture A into NV16 luma and chroma planes
	// written to two simultaneous targets.
	ShaderRgbNv16
	// ShaderYv12Rgb converts three-plane 4:2:0 YUV (Y, U, V units).
	ShaderYv12Rgb
	// ShaderNv12Rgb converts two-plane 4:2:0 YUV (Y, interleaved UV).
	ShaderNv12Rgb
	// ShaderUyvyRgb converts packed 4:2:2 U Y0 V Y1 using BT.601.
	ShaderUyvyRgb
	// ShaderHdycRgb converts packed 4:2:2 U Y0 V Y1 using BT.709.
	ShaderHdycRgb
	// ShaderYuy2Rgb converts packed 4:2:2 Y0 U Y1 V using BT.601.
	ShaderYuy2Rgb

	numShaders
)

var shaderNames = [numShaders]string{
	"None", "Solid", "TexDecal", "TexDecalGbcs", "TexDecalRgb",
	"ResizeLayer", "RgbNv16", "Yv12Rgb", "Nv12Rgb", "UyvyRgb", "HdycRgb",
	"Yuy2Rgb",
}

// String returns the shader name.
func (s Shader) String() string {
	if s >= 0 && s < numShaders {
		return shaderNames[s]
	}
	return fmt.Sprintf("Shader(%d)", int(s))
}

// IsValid reports whether s names a selectable shader.
func (s Shader) IsValid() bool {
	return s > ShaderNone && s < numShaders
}

// TextureUnits returns how many texture units the shader samples.
func (s Shader) TextureUnits() int {
	switch s {
	case ShaderTexDecal, ShaderTexDecalGbcs, ShaderTexDecalRgb, ShaderRgbNv16,
		ShaderUyvyRgb, ShaderHdycRgb, ShaderYuy2Rgb:
		return 1
	case ShaderNv12Rgb:
		return 2
	case ShaderYv12Rgb:
		return 3
	default:
		return 0
	}
}

// VertSize returns the number of floats per vertex the shader consumes.
func (s Shader) VertSize() int {
	if s == ShaderResizeLayer {
		return 4
	}
	return 8
}

// Targets returns how many simultaneous render targets the shader writes.
func (s Shader) Targets() int {
	if s == ShaderRgbNv16 {
		return 2
	}
	return 1
}

// Shaders returns every selectable shader, excluding ShaderNone.
func Shaders() []Shader {
	out := make([]Shader, 0, numShaders-1)
	for s := ShaderSolid; s < numShaders; s++ {
		out = append(out, s)
	}
	return out
}

// Filter selects texture sampling.
type Filter int

const (
	// FilterPoint samples the nearest texel.
	FilterPoint Filter = iota
	// FilterBilinear interpolates the four nearest texels.
	FilterBilinear

	// NumStandardFilters counts the user-selectable filters.
	NumStandardFilters = 2

	// FilterResizeLayer is internal: bilinear sampling used while a layer
	// is being interactively resized.
	FilterResizeLayer Filter = NumStandardFilters
)

// String returns the filter's display name.
func (f Filter) String() string {
	switch f {
	case FilterPoint:
		return "Nearest neighbour"
	case FilterBilinear:
		return "Bilinear"
	case FilterResizeLayer:
		return "Resize layer"
	default:
		return fmt.Sprintf("Filter(%d)", int(f))
	}
}

// QualityString returns the filter's quality label for settings UIs.
func (f Filter) QualityString() string {
	switch f {
	case FilterPoint:
		return "Low (Nearest neighbour)"
	case FilterBilinear:
		return "Medium (Bilinear)"
	default:
		return f.String()
	}
}

// IsStandard reports whether f is user-selectable.
func (f Filter) IsStandard() bool {
	return f >= 0 && f < NumStandardFilters
}

// Linear reports whether the filter interpolates between texels.
func (f Filter) Linear() bool {
	return f == FilterBilinear || f == FilterResizeLayer
}

// Blending selects how fragment output combines with the target.
type Blending int

const (
	// BlendNone replaces the target.
	BlendNone Blending = iota
	// BlendAlpha blends straight-alpha output: src*a + dst*(1-a).
	BlendAlpha
	// BlendPremultiplied blends premultiplied output: src + dst*(1-a).
	BlendPremultiplied
)

// String returns the blending mode name.
func (b Blending) String() string {
	switch b {
	case BlendNone:
		return "None"
	case BlendAlpha:
		return "Alpha"
	case BlendPremultiplied:
		return "Premultiplied"
	default:
		return fmt.Sprintf("Blending(%d)", int(b))
	}
}

// TextureFlags is the capability set of a texture.
type TextureFlags uint32

const (
	// TexWritable textures accept CPU uploads of their full contents.
	TexWritable TextureFlags = 1 << 0
	// TexTargetable textures can be bound as render targets.
	TexTargetable TextureFlags = 1 << 1
	// TexStaging textures live in CPU-mappable memory and are never drawn
	// from directly.
	TexStaging TextureFlags = 1 << 2
	// TexGDI textures expose a platform device context for GDI interop.
	TexGDI TextureFlags = 1 << 3
)

// Has reports whether all bits of f2 are set.
func (f TextureFlags) Has(f2 TextureFlags) bool {
	return f&f2 == f2
}

// String lists the set flags.
func (f TextureFlags) String() string {
	if f == 0 {
		return "none"
	}
	s := ""
	add := func(bit TextureFlags, name string) {
		if f&bit != 0 {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	add(TexWritable, "writable")
	add(TexTargetable, "targetable")
	add(TexStaging, "staging")
	add(TexGDI, "gdi")
	return s
}
