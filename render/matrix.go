// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "math"

// Mat4 is a 4x4 transformation matrix stored in column-major order, the
// layout WGSL expects for a mat4x4<f32> uniform. Element (row r, column c)
// lives at index c*4+r.
type Mat4 [16]float32

// Identity4 returns the identity matrix.
func Identity4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate4 returns a translation matrix.
func Translate4(x, y, z float32) Mat4 {
	m := Identity4()
	m[12], m[13], m[14] = x, y, z
	return m
}

// Scale4 returns a scaling matrix.
func Scale4(x, y, z float32) Mat4 {
	m := Identity4()
	m[0], m[5], m[10] = x, y, z
	return m
}

// Ortho returns an orthographic projection mapping the box
// [left,right]x[bottom,top]x[near,far] onto clip space with depth in [0, 1].
func Ortho(left, right, bottom, top, near, far float32) Mat4 {
	m := Mat4{}
	m[0] = 2 / (right - left)
	m[5] = 2 / (top - bottom)
	m[10] = 1 / (near - far)
	m[12] = -(right + left) / (right - left)
	m[13] = -(top + bottom) / (top - bottom)
	m[14] = near / (near - far)
	m[15] = 1
	return m
}

// PixelOrtho returns the projection used for pixel-space geometry on a
// w by h target: (0,0) is the top-left pixel corner and (w,h) the
// bottom-right one.
func PixelOrtho(w, h float32) Mat4 {
	return Ortho(0, w, h, 0, -1, 1)
}

// Mul returns m*o, the transform that applies o first and then m.
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for c := 0; c < 4; c++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * o[c*4+k]
			}
			r[c*4+row] = sum
		}
	}
	return r
}

// Apply transforms the point (x, y, 0, 1) and returns the resulting
// homogeneous coordinates.
func (m Mat4) Apply(x, y float32) [4]float32 {
	return [4]float32{
		m[0]*x + m[4]*y + m[12],
		m[1]*x + m[5]*y + m[13],
		m[2]*x + m[6]*y + m[14],
		m[3]*x + m[7]*y + m[15],
	}
}

// IsIdentity reports whether m is the identity within float tolerance.
func (m Mat4) IsIdentity() bool {
	id := Identity4()
	for i := range m {
		if math.Abs(float64(m[i]-id[i])) > 1e-6 {
			return false
		}
	}
	return true
}
