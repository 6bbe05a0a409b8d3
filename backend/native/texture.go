// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vidgfx/render"
)

// copyPitchAlignment is the row alignment buffer-texture copies require.
const copyPitchAlignment = 256

// Texture is a GPU texture, or for staging textures a host-visible buffer
// laid out with aligned rows.
type Texture struct {
	dev  *Device
	desc render.TextureDesc

	format gputypes.TextureFormat
	tex    hal.Texture
	view   hal.TextureView

	// usage is the usage the texture was last transitioned to.
	usage gputypes.TextureUsage

	buf    hal.Buffer // staging only
	stride int
	mapped bool

	destroyed bool
}

// Desc returns the texture description.
func (t *Texture) Desc() render.TextureDesc { return t.desc }

// Format returns the HAL texel format, or TextureFormatUndefined for
// staging textures.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Destroy releases the texture. Pending GPU work is waited for first.
func (t *Texture) Destroy() {
	if t.destroyed || t.dev == nil {
		return
	}
	t.dev.mu.Lock()
	defer t.dev.mu.Unlock()
	if t.dev.destroyed {
		t.destroyed = true
		return
	}
	if len(t.dev.pending) > 0 {
		if err := t.dev.waitIdle(); err != nil {
			render.Logger().Warn("native: destroy texture", "label", t.desc.Label, "err", err)
		}
	}
	t.destroy()
}

func (t *Texture) destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	d := t.dev.dev
	if t.mapped {
		_ = d.UnmapBuffer(t.buf)
		t.mapped = false
	}
	if t.view != nil {
		d.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		d.DestroyTexture(t.tex)
		t.tex = nil
	}
	if t.buf != nil {
		d.DestroyBuffer(t.buf)
		t.buf = nil
	}
}

func (t *Texture) isStaging() bool { return t.buf != nil }

// barrier returns the transition of t to usage and records it, or false if
// t is already there.
func (t *Texture) barrier(usage gputypes.TextureUsage) (hal.TextureBarrier, bool) {
	if t.usage == usage {
		return hal.TextureBarrier{}, false
	}
	b := hal.TextureBarrier{
		Texture: t.tex,
		Range:   hal.TextureRange{Aspect: gputypes.TextureAspectAll},
		Usage:   hal.TextureUsageTransition{OldUsage: t.usage, NewUsage: usage},
	}
	t.usage = usage
	return b, true
}

// halFormat maps a texel format to the HAL format sampled the same way.
func halFormat(f render.TexelFormat) (gputypes.TextureFormat, bool) {
	switch f {
	case render.TexelBGRA8:
		return gputypes.TextureFormatBGRA8Unorm, true
	case render.TexelRGBA8:
		return gputypes.TextureFormatRGBA8Unorm, true
	case render.TexelR8:
		return gputypes.TextureFormatR8Unorm, true
	case render.TexelRG8:
		return gputypes.TextureFormatRG8Unorm, true
	default:
		return gputypes.TextureFormatUndefined, false
	}
}

// alignedStride returns the row pitch of a staging texture.
func alignedStride(rowBytes int) int {
	return (rowBytes + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// NewTexture creates a texture. Staging textures become mappable buffers.
func (d *Device) NewTexture(desc render.TextureDesc, data []byte, stride int) (render.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return nil, render.ErrDestroyed
	}
	return d.newTexture(desc, data, stride)
}

func (d *Device) newTexture(desc render.TextureDesc, data []byte, stride int) (*Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("native: %w: %dx%d", render.ErrInvalidSize, desc.Width, desc.Height)
	}
	if m := d.caps.MaxTextureSize; m > 0 && (desc.Width > m || desc.Height > m) {
		return nil, fmt.Errorf("native: %w: %dx%d exceeds %d", render.ErrInvalidSize, desc.Width, desc.Height, m)
	}
	if desc.Flags.Has(render.TexGDI) {
		return nil, fmt.Errorf("native: %w: GDI textures", render.ErrUnsupported)
	}
	format, ok := halFormat(desc.Format)
	if !ok {
		return nil, fmt.Errorf("native: %w: texel format %v", render.ErrUnsupported, desc.Format)
	}

	t := &Texture{dev: d, desc: desc}
	if desc.Flags.Has(render.TexStaging) {
		if err := d.createStaging(t); err != nil {
			return nil, err
		}
	} else {
		if err := d.createGPUTexture(t, format); err != nil {
			return nil, err
		}
	}
	if data != nil {
		if err := d.writeTexture(t, data, stride); err != nil {
			t.destroy()
			return nil, err
		}
	}
	return t, nil
}

func (d *Device) createStaging(t *Texture) error {
	t.stride = alignedStride(t.rowBytes())
	buf, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: d.label(t.desc.Label + " staging"),
		Size:  uint64(t.stride) * uint64(t.desc.Height),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageMapWrite |
			gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("native: create staging buffer: %w", err)
	}
	t.buf = buf
	return nil
}

func (d *Device) createGPUTexture(t *Texture, format gputypes.TextureFormat) error {
	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc
	if t.desc.Flags.Has(render.TexTargetable) {
		usage |= gputypes.TextureUsageRenderAttachment
	}
	tex, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label:         d.label(t.desc.Label),
		Size:          hal.Extent3D{Width: uint32(t.desc.Width), Height: uint32(t.desc.Height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return fmt.Errorf("native: create texture %q: %w", t.desc.Label, err)
	}
	view, err := d.dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         d.label(t.desc.Label + " view"),
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.dev.DestroyTexture(tex)
		return fmt.Errorf("native: create texture view %q: %w", t.desc.Label, err)
	}
	t.tex, t.view, t.format = tex, view, format
	t.usage = gputypes.TextureUsageNone
	return nil
}

func (t *Texture) rowBytes() int {
	return t.desc.Width * t.desc.Format.BytesPerTexel()
}

// WriteTexture replaces the contents of tex.
func (d *Device) WriteTexture(tex render.Texture, data []byte, stride int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, err := d.texture(tex)
	if err != nil {
		return err
	}
	if t.mapped {
		return render.ErrTextureMapped
	}
	return d.writeTexture(t, data, stride)
}

func (d *Device) writeTexture(t *Texture, data []byte, stride int) error {
	rowLen, rows := t.rowBytes(), t.desc.Height
	if stride <= 0 {
		stride = rowLen
	}
	if stride < rowLen || len(data) < stride*(rows-1)+rowLen {
		return fmt.Errorf("native: %w: %d bytes for %d rows of %d", render.ErrOutOfBounds, len(data), rows, rowLen)
	}

	if t.isStaging() {
		packed := make([]byte, t.stride*rows)
		for y := 0; y < rows; y++ {
			copy(packed[y*t.stride:y*t.stride+rowLen], data[y*stride:y*stride+rowLen])
		}
		if err := d.queue.WriteBuffer(t.buf, 0, packed); err != nil {
			return fmt.Errorf("native: write staging %q: %w", t.desc.Label, err)
		}
		return nil
	}

	err := d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, Aspect: gputypes.TextureAspectAll},
		data[:stride*(rows-1)+rowLen],
		&hal.ImageDataLayout{BytesPerRow: uint32(stride), RowsPerImage: uint32(rows)},
		&hal.Extent3D{Width: uint32(t.desc.Width), Height: uint32(rows), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("native: write texture %q: %w", t.desc.Label, err)
	}
	t.usage = gputypes.TextureUsageCopyDst
	return nil
}

// MapTexture waits for the queue and maps a staging texture.
func (d *Device) MapTexture(tex render.Texture) (render.Mapping, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, err := d.texture(tex)
	if err != nil {
		return render.Mapping{}, err
	}
	if !t.isStaging() {
		return render.Mapping{}, render.ErrNotStaging
	}
	if t.mapped {
		return render.Mapping{}, render.ErrAlreadyMapped
	}
	if err := d.waitIdle(); err != nil {
		return render.Mapping{}, err
	}
	size := t.stride * t.desc.Height
	m, err := d.dev.MapBuffer(t.buf, 0, uint64(size))
	if err != nil {
		return render.Mapping{}, fmt.Errorf("native: map %q: %w", t.desc.Label, err)
	}
	t.mapped = true
	return render.Mapping{Data: unsafe.Slice((*byte)(m.Ptr), size), Stride: t.stride}, nil
}

// UnmapTexture ends a mapping.
func (d *Device) UnmapTexture(tex render.Texture) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, err := d.texture(tex)
	if err != nil {
		return err
	}
	if !t.mapped {
		return render.ErrNotMapped
	}
	t.mapped = false
	if err := d.dev.UnmapBuffer(t.buf); err != nil {
		return fmt.Errorf("native: unmap %q: %w", t.desc.Label, err)
	}
	return nil
}

// CopyTexture records a GPU copy of srcRect of src into dst at dstPos.
// Staging textures take part through their buffers, so CPU-written pixels
// can be uploaded and rendered pixels read back.
func (d *Device) CopyTexture(dst, src render.Texture, dstPos image.Point, srcRect image.Rectangle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	dt, err := d.texture(dst)
	if err != nil {
		return err
	}
	st, err := d.texture(src)
	if err != nil {
		return err
	}
	if dt.mapped || st.mapped {
		return render.ErrTextureMapped
	}
	if dt.desc.Format != st.desc.Format {
		return fmt.Errorf("native: %w: %v to %v", render.ErrFormatMismatch, st.desc.Format, dt.desc.Format)
	}
	dstRect := image.Rectangle{Min: dstPos, Max: dstPos.Add(srcRect.Size())}
	if srcRect.Empty() || !srcRect.In(st.desc.Bounds()) || !dstRect.In(dt.desc.Bounds()) {
		return fmt.Errorf("native: %w: src %v dst %v", render.ErrOutOfBounds, srcRect, dstRect)
	}

	enc, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: d.label("copy")})
	if err != nil {
		return fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(d.label("copy")); err != nil {
		enc.DiscardEncoding()
		return fmt.Errorf("native: begin encoding: %w", err)
	}
	encodeCopy(enc, dt, st, dstPos, srcRect)
	cmd, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}
	return d.submit(inflight{cmd: cmd})
}

// encodeCopy records one validated copy. Buffer rows of staging textures
// are addressed with their aligned stride.
func encodeCopy(enc hal.CommandEncoder, dt, st *Texture, dstPos image.Point, srcRect image.Rectangle) {
	bpp := st.desc.Format.BytesPerTexel()
	size := hal.Extent3D{Width: uint32(srcRect.Dx()), Height: uint32(srcRect.Dy()), DepthOrArrayLayers: 1}
	layout := func(t *Texture, at image.Point) hal.ImageDataLayout {
		return hal.ImageDataLayout{
			Offset:       uint64(at.Y*t.stride + at.X*bpp),
			BytesPerRow:  uint32(t.stride),
			RowsPerImage: size.Height,
		}
	}
	base := func(t *Texture, at image.Point) hal.ImageCopyTexture {
		return hal.ImageCopyTexture{
			Texture: t.tex,
			Origin:  hal.Origin3D{X: uint32(at.X), Y: uint32(at.Y)},
			Aspect:  gputypes.TextureAspectAll,
		}
	}

	var barriers []hal.TextureBarrier
	if !st.isStaging() {
		if b, ok := st.barrier(gputypes.TextureUsageCopySrc); ok {
			barriers = append(barriers, b)
		}
	}
	if !dt.isStaging() {
		if b, ok := dt.barrier(gputypes.TextureUsageCopyDst); ok {
			barriers = append(barriers, b)
		}
	}
	if len(barriers) > 0 {
		enc.TransitionTextures(barriers)
	}

	switch {
	case st.isStaging() && dt.isStaging():
		rows := make([]hal.BufferCopy, srcRect.Dy())
		for y := range rows {
			rows[y] = hal.BufferCopy{
				SrcOffset: uint64((srcRect.Min.Y+y)*st.stride + srcRect.Min.X*bpp),
				DstOffset: uint64((dstPos.Y+y)*dt.stride + dstPos.X*bpp),
				Size:      uint64(srcRect.Dx() * bpp),
			}
		}
		enc.CopyBufferToBuffer(st.buf, dt.buf, rows)
	case st.isStaging():
		enc.CopyBufferToTexture(st.buf, dt.tex, []hal.BufferTextureCopy{{
			BufferLayout: layout(st, srcRect.Min),
			TextureBase:  base(dt, dstPos),
			Size:         size,
		}})
	case dt.isStaging():
		enc.CopyTextureToBuffer(st.tex, dt.buf, []hal.BufferTextureCopy{{
			BufferLayout: layout(dt, dstPos),
			TextureBase:  base(st, srcRect.Min),
			Size:         size,
		}})
	default:
		enc.CopyTextureToTexture(st.tex, dt.tex, []hal.TextureCopy{{
			SrcBase: base(st, srcRect.Min),
			DstBase: base(dt, dstPos),
			Size:    size,
		}})
	}
}

func (d *Device) texture(tex render.Texture) (*Texture, error) {
	if d.destroyed {
		return nil, render.ErrDestroyed
	}
	t, ok := tex.(*Texture)
	if !ok || t == nil || t.dev != d {
		return nil, fmt.Errorf("native: %w: %T", render.ErrForeignResource, tex)
	}
	if t.destroyed {
		return nil, render.ErrDestroyed
	}
	return t, nil
}

func (d *Device) target(tex render.Texture) (*Texture, error) {
	t, err := d.texture(tex)
	if err != nil {
		return nil, err
	}
	if !t.desc.Flags.Has(render.TexTargetable) || t.isStaging() {
		return nil, fmt.Errorf("native: %w: texture %q is not targetable", render.ErrInvalidDraw, t.desc.Label)
	}
	if t.mapped {
		return nil, render.ErrTextureMapped
	}
	return t, nil
}
