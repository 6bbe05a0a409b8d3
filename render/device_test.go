// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"image"
	"testing"
)

func TestTextureDescGeometry(t *testing.T) {
	d := TextureDesc{Width: 30, Height: 20, Format: TexelBGRA8}
	if d.Size() != image.Pt(30, 20) {
		t.Errorf("Size = %v", d.Size())
	}
	if d.Bounds() != image.Rect(0, 0, 30, 20) {
		t.Errorf("Bounds = %v", d.Bounds())
	}
}

func TestDefaultEffectsAreIdentity(t *testing.T) {
	gamma, brightness, contrast, saturation := DefaultEffects[0], DefaultEffects[1], DefaultEffects[2], DefaultEffects[3]
	if gamma != 1 || brightness != 0 || contrast != 1 || saturation != 1 {
		t.Errorf("DefaultEffects = %v", DefaultEffects)
	}
}

func TestErrorsWrap(t *testing.T) {
	err := fmt.Errorf("software: new texture 0x0: %w", ErrInvalidSize)
	if !errors.Is(err, ErrInvalidSize) || errors.Is(err, ErrUnsupported) {
		t.Errorf("wrapped error %v does not match", err)
	}
}
