// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vidgfx/render"
)

// drawPass is a validated draw call ready to encode.
type drawPass struct {
	call    *render.DrawCall
	targets []*Texture
	units   [3]*Texture
	buffer  *Buffer
	vp      render.Rect
	clip    image.Rectangle
}

func (d *Device) prepareDraw(call *render.DrawCall) (*drawPass, error) {
	sh := call.Shader
	if !sh.IsValid() {
		return nil, fmt.Errorf("native: %w: shader %v", render.ErrInvalidDraw, sh)
	}
	if len(call.Targets) != sh.Targets() {
		return nil, fmt.Errorf("native: %w: %v writes %d targets, got %d",
			render.ErrInvalidDraw, sh, sh.Targets(), len(call.Targets))
	}
	if call.VertSize != sh.VertSize() {
		return nil, fmt.Errorf("native: %w: %v takes %d floats per vertex, got %d",
			render.ErrInvalidDraw, sh, sh.VertSize(), call.VertSize)
	}

	p := &drawPass{call: call}
	bounds := image.Rectangle{}
	for i, tgt := range call.Targets {
		t, err := d.target(tgt)
		if err != nil {
			return nil, err
		}
		p.targets = append(p.targets, t)
		if i == 0 {
			bounds = t.desc.Bounds()
		} else {
			bounds = bounds.Intersect(t.desc.Bounds())
		}
	}

	for i := range p.units {
		if i >= sh.TextureUnits() {
			p.units[i] = d.placeholder
			continue
		}
		if call.Textures[i] == nil {
			return nil, fmt.Errorf("native: %w: %v needs texture unit %d", render.ErrInvalidDraw, sh, i)
		}
		t, err := d.texture(call.Textures[i])
		if err != nil {
			return nil, err
		}
		if t.mapped {
			return nil, render.ErrTextureMapped
		}
		if t.isStaging() {
			return nil, fmt.Errorf("native: %w: staging texture bound to unit %d", render.ErrInvalidDraw, i)
		}
		for _, tgt := range p.targets {
			if tgt == t {
				return nil, fmt.Errorf("native: %w: unit %d is also a render target", render.ErrInvalidDraw, i)
			}
		}
		p.units[i] = t
	}

	b, err := d.buffer(call.Buffer)
	if err != nil {
		return nil, err
	}
	if call.First < 0 || call.Count < 0 || (call.First+call.Count)*call.VertSize > b.numFloats {
		return nil, fmt.Errorf("native: %w: vertices [%d, %d) of %d",
			render.ErrOutOfBounds, call.First, call.First+call.Count, b.numFloats/call.VertSize)
	}
	p.buffer = b

	vp := call.Viewport
	if vp.IsEmpty() {
		vp = render.RectFromImage(bounds)
	}
	p.vp = vp
	p.clip = image.Rect(
		int(math.Floor(float64(vp.Left()))), int(math.Floor(float64(vp.Top()))),
		int(math.Ceil(float64(vp.Right()))), int(math.Ceil(float64(vp.Bottom()))),
	).Intersect(bounds)
	return p, nil
}

// Draw encodes and submits one draw call.
func (d *Device) Draw(call *render.DrawCall) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return render.ErrDestroyed
	}
	if call == nil {
		return render.ErrInvalidDraw
	}
	p, err := d.prepareDraw(call)
	if err != nil {
		return err
	}
	if call.Count == 0 || p.clip.Empty() {
		d.draws++
		return nil
	}

	key := pipelineKey{shader: call.Shader, blending: call.Blending, topology: call.Topology}
	for _, t := range p.targets {
		key.formats = append(key.formats, t.format)
	}
	pipe, err := d.pipeline(key)
	if err != nil {
		return err
	}

	work, err := d.bindDraw(p)
	if err != nil {
		return err
	}
	cmd, err := d.encodeDraw(p, pipe, work.group)
	if err != nil {
		d.dev.DestroyBindGroup(work.group)
		d.dev.DestroyBuffer(work.uniforms)
		return err
	}
	work.cmd = cmd
	if err := d.submit(work); err != nil {
		return err
	}
	d.draws++
	return nil
}

// bindDraw uploads the uniforms of p and creates its bind group.
func (d *Device) bindDraw(p *drawPass) (inflight, error) {
	ub, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: d.label("uniforms"),
		Size:  uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return inflight{}, fmt.Errorf("native: create uniform buffer: %w", err)
	}
	if err := d.queue.WriteBuffer(ub, 0, encodeUniforms(&p.call.Uniforms)); err != nil {
		d.dev.DestroyBuffer(ub)
		return inflight{}, fmt.Errorf("native: write uniforms: %w", err)
	}

	sampler := d.samplers[0]
	if p.call.Filter.Linear() {
		sampler = d.samplers[1]
	}
	entries := []gputypes.BindGroupEntry{
		{Binding: bindingUniforms, Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: uniformSize}},
		{Binding: bindingSampler, Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()}},
	}
	for i, t := range p.units {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  bindingTexA + uint32(i),
			Resource: gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()},
		})
	}
	group, err := d.dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   d.label("draw bind group"),
		Layout:  d.programs.bindLayout,
		Entries: entries,
	})
	if err != nil {
		d.dev.DestroyBuffer(ub)
		return inflight{}, fmt.Errorf("native: create bind group: %w", err)
	}
	return inflight{uniforms: ub, group: group}, nil
}

func (d *Device) encodeDraw(p *drawPass, pipe hal.RenderPipeline, group hal.BindGroup) (hal.CommandBuffer, error) {
	enc, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: d.label("draw")})
	if err != nil {
		return nil, fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(d.label("draw")); err != nil {
		enc.DiscardEncoding()
		return nil, fmt.Errorf("native: begin encoding: %w", err)
	}

	var barriers []hal.TextureBarrier
	for _, t := range p.units {
		if b, ok := t.barrier(gputypes.TextureUsageTextureBinding); ok {
			barriers = append(barriers, b)
		}
	}
	attachments := make([]hal.RenderPassColorAttachment, len(p.targets))
	for i, t := range p.targets {
		if b, ok := t.barrier(gputypes.TextureUsageRenderAttachment); ok {
			barriers = append(barriers, b)
		}
		attachments[i] = hal.RenderPassColorAttachment{
			View:    t.view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}
	}
	if len(barriers) > 0 {
		enc.TransitionTextures(barriers)
	}

	rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            d.label(p.call.Shader.String()),
		ColorAttachments: attachments,
	})
	rp.SetPipeline(pipe)
	rp.SetBindGroup(0, group, nil)
	rp.SetVertexBuffer(0, p.buffer.buf, 0)
	rp.SetViewport(p.vp.X, p.vp.Y, p.vp.W, p.vp.H, 0, 1)
	rp.SetScissorRect(uint32(p.clip.Min.X), uint32(p.clip.Min.Y), uint32(p.clip.Dx()), uint32(p.clip.Dy()))
	rp.Draw(uint32(p.call.Count), 1, uint32(p.call.First), 0)
	rp.End()

	cmd, err := enc.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("native: end encoding: %w", err)
	}
	return cmd, nil
}

// Clear fills every target with c using a clearing render pass.
func (d *Device) Clear(targets []render.Texture, c render.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return render.ErrDestroyed
	}
	ts := make([]*Texture, 0, len(targets))
	for _, tgt := range targets {
		t, err := d.target(tgt)
		if err != nil {
			return err
		}
		ts = append(ts, t)
	}
	if len(ts) == 0 {
		return nil
	}

	enc, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: d.label("clear")})
	if err != nil {
		return fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(d.label("clear")); err != nil {
		enc.DiscardEncoding()
		return fmt.Errorf("native: begin encoding: %w", err)
	}
	var barriers []hal.TextureBarrier
	attachments := make([]hal.RenderPassColorAttachment, len(ts))
	for i, t := range ts {
		if b, ok := t.barrier(gputypes.TextureUsageRenderAttachment); ok {
			barriers = append(barriers, b)
		}
		attachments[i] = hal.RenderPassColorAttachment{
			View:       t.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)},
		}
	}
	if len(barriers) > 0 {
		enc.TransitionTextures(barriers)
	}
	rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            d.label("clear"),
		ColorAttachments: attachments,
	})
	rp.End()

	cmd, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}
	return d.submit(inflight{cmd: cmd})
}
