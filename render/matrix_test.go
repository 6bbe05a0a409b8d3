// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"math"
	"testing"
)

func near4(a, b [4]float32) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-5 {
			return false
		}
	}
	return true
}

func TestPixelOrtho(t *testing.T) {
	m := PixelOrtho(64, 32)
	tests := []struct {
		x, y float32
		want [4]float32
	}{
		{0, 0, [4]float32{-1, 1, 0.5, 1}},
		{64, 32, [4]float32{1, -1, 0.5, 1}},
		{32, 16, [4]float32{0, 0, 0.5, 1}},
	}
	for _, tt := range tests {
		if got := m.Apply(tt.x, tt.y); !near4(got, tt.want) {
			t.Errorf("Apply(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestMat4Mul(t *testing.T) {
	m := Translate4(10, 20, 0).Mul(Scale4(2, 3, 1))
	// Scale applies first.
	if got := m.Apply(1, 1); !near4(got, [4]float32{12, 23, 0, 1}) {
		t.Errorf("Apply = %v", got)
	}
	if !Identity4().Mul(Identity4()).IsIdentity() {
		t.Error("identity product is not identity")
	}
	if Translate4(1, 0, 0).IsIdentity() {
		t.Error("translation reported as identity")
	}
	if got := Scale4(2, 2, 1).Mul(Identity4()); got != Scale4(2, 2, 1) {
		t.Errorf("m * I = %v", got)
	}
}
