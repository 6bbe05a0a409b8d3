// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "fmt"

// TexelFormat is the memory layout of one texel.
type TexelFormat int

const (
	// TexelUnknown is the zero value and never valid for a texture.
	TexelUnknown TexelFormat = iota
	// TexelBGRA8 stores B, G, R, A bytes. Sampling returns (R, G, B, A).
	TexelBGRA8
	// TexelRGBA8 stores R, G, B, A bytes.
	TexelRGBA8
	// TexelR8 stores a single byte, sampled into the red channel.
	TexelR8
	// TexelRG8 stores two bytes, sampled into red and green.
	TexelRG8
)

// BytesPerTexel returns the size of one texel in bytes.
func (f TexelFormat) BytesPerTexel() int {
	switch f {
	case TexelBGRA8, TexelRGBA8:
		return 4
	case TexelRG8:
		return 2
	case TexelR8:
		return 1
	default:
		return 0
	}
}

// String returns the format name.
func (f TexelFormat) String() string {
	switch f {
	case TexelBGRA8:
		return "BGRA8"
	case TexelRGBA8:
		return "RGBA8"
	case TexelR8:
		return "R8"
	case TexelRG8:
		return "RG8"
	default:
		return fmt.Sprintf("TexelFormat(%d)", int(f))
	}
}

// Decode expands the texel at the start of p into normalised (R, G, B, A)
// as a shader would sample it. Missing channels read as 0 and missing alpha
// as 1.
func (f TexelFormat) Decode(p []byte) [4]float32 {
	switch f {
	case TexelBGRA8:
		return [4]float32{n8(p[2]), n8(p[1]), n8(p[0]), n8(p[3])}
	case TexelRGBA8:
		return [4]float32{n8(p[0]), n8(p[1]), n8(p[2]), n8(p[3])}
	case TexelRG8:
		return [4]float32{n8(p[0]), n8(p[1]), 0, 1}
	case TexelR8:
		return [4]float32{n8(p[0]), 0, 0, 1}
	default:
		return [4]float32{}
	}
}

// Encode stores normalised (R, G, B, A) into the texel at the start of p.
func (f TexelFormat) Encode(p []byte, v [4]float32) {
	switch f {
	case TexelBGRA8:
		p[0], p[1], p[2], p[3] = To8(v[2]), To8(v[1]), To8(v[0]), To8(v[3])
	case TexelRGBA8:
		p[0], p[1], p[2], p[3] = To8(v[0]), To8(v[1]), To8(v[2]), To8(v[3])
	case TexelRG8:
		p[0], p[1] = To8(v[0]), To8(v[1])
	case TexelR8:
		p[0] = To8(v[0])
	}
}

func n8(b byte) float32 { return float32(b) / 255 }
