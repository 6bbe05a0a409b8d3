// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"math"
)

// Point is a 2D position or vector, in pixels or in UV units.
type Point struct {
	X, Y float32
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float32) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns p scaled by s.
func (p Point) Mul(s float32) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Round returns p with both components rounded to the nearest integer.
func (p Point) Round() Point {
	return Point{
		X: float32(math.Round(float64(p.X))),
		Y: float32(math.Round(float64(p.Y))),
	}
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
// A Rect with zero or negative extent is valid and simply empty.
type Rect struct {
	X, Y, W, H float32
}

// RectXYWH is shorthand for Rect{X: x, Y: y, W: w, H: h}.
func RectXYWH(x, y, w, h float32) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// RectFromPoints returns the rectangle spanning tl to br.
func RectFromPoints(tl, br Point) Rect {
	return Rect{X: tl.X, Y: tl.Y, W: br.X - tl.X, H: br.Y - tl.Y}
}

// RectFromImage converts an integer rectangle.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{
		X: float32(r.Min.X),
		Y: float32(r.Min.Y),
		W: float32(r.Dx()),
		H: float32(r.Dy()),
	}
}

// Left returns the X coordinate of the left edge.
func (r Rect) Left() float32 { return r.X }

// Top returns the Y coordinate of the top edge.
func (r Rect) Top() float32 { return r.Y }

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float32 { return r.X + r.W }

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float32 { return r.Y + r.H }

// TopLeft returns the top-left corner.
func (r Rect) TopLeft() Point { return Point{X: r.X, Y: r.Y} }

// TopRight returns the top-right corner.
func (r Rect) TopRight() Point { return Point{X: r.X + r.W, Y: r.Y} }

// BottomLeft returns the bottom-left corner.
func (r Rect) BottomLeft() Point { return Point{X: r.X, Y: r.Y + r.H} }

// BottomRight returns the bottom-right corner.
func (r Rect) BottomRight() Point { return Point{X: r.X + r.W, Y: r.Y + r.H} }

// Size returns the extent as a Point.
func (r Rect) Size() Point { return Point{X: r.W, Y: r.H} }

// Center returns the centre point.
func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// Translate returns r moved by d.
func (r Rect) Translate(d Point) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, W: r.W, H: r.H}
}

// Grow returns r expanded by dx on the left and right and dy on the top and
// bottom. Negative values shrink the rectangle.
func (r Rect) Grow(dx, dy float32) Rect {
	return Rect{X: r.X - dx, Y: r.Y - dy, W: r.W + 2*dx, H: r.H + 2*dy}
}

// IsEmpty reports whether r has no area.
func (r Rect) IsEmpty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}
