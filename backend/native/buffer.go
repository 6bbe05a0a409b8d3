// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vidgfx/render"
)

// Buffer is a GPU vertex buffer.
type Buffer struct {
	dev       *Device
	buf       hal.Buffer
	numFloats int
	destroyed bool
}

// Cap returns the capacity in floats.
func (b *Buffer) Cap() int { return b.numFloats }

// Destroy releases the buffer. Pending GPU work is waited for first.
func (b *Buffer) Destroy() {
	if b.destroyed || b.dev == nil {
		return
	}
	b.dev.mu.Lock()
	defer b.dev.mu.Unlock()
	b.destroyed = true
	if b.dev.destroyed {
		return
	}
	if len(b.dev.pending) > 0 {
		if err := b.dev.waitIdle(); err != nil {
			render.Logger().Warn("native: destroy buffer", "err", err)
		}
	}
	b.dev.dev.DestroyBuffer(b.buf)
	b.buf = nil
}

// NewBuffer creates a vertex buffer holding numFloats floats.
func (d *Device) NewBuffer(numFloats int) (render.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return nil, render.ErrDestroyed
	}
	if numFloats <= 0 {
		return nil, fmt.Errorf("native: %w: %d floats", render.ErrInvalidSize, numFloats)
	}
	buf, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: d.label("vertices"),
		Size:  uint64(numFloats) * 4,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create vertex buffer: %w", err)
	}
	return &Buffer{dev: d, buf: buf, numFloats: numFloats}, nil
}

// WriteBuffer uploads vertex data to the start of buf.
func (d *Device) WriteBuffer(buf render.Buffer, data []float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, err := d.buffer(buf)
	if err != nil {
		return err
	}
	if len(data) > b.numFloats {
		return fmt.Errorf("native: %w: %d floats into %d", render.ErrOutOfBounds, len(data), b.numFloats)
	}
	if len(data) == 0 {
		return nil
	}
	if err := d.queue.WriteBuffer(b.buf, 0, encodeFloats(data)); err != nil {
		return fmt.Errorf("native: write vertex buffer: %w", err)
	}
	return nil
}

func (d *Device) buffer(buf render.Buffer) (*Buffer, error) {
	if d.destroyed {
		return nil, render.ErrDestroyed
	}
	b, ok := buf.(*Buffer)
	if !ok || b == nil || b.dev != d {
		return nil, fmt.Errorf("native: %w: %T", render.ErrForeignResource, buf)
	}
	if b.destroyed {
		return nil, render.ErrDestroyed
	}
	return b, nil
}

// encodeFloats packs vertex floats little-endian.
func encodeFloats(data []float32) []byte {
	out := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
