// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vidgfx/render"
)

// pipelineKey identifies a render pipeline. Filter is not part of the key:
// it selects a sampler in the bind group.
type pipelineKey struct {
	shader   render.Shader
	blending render.Blending
	topology render.Topology
	formats  []gputypes.TextureFormat
}

// hash returns the FNV-1a hash of the key.
func (k pipelineKey) hash() uint64 {
	h := fnv.New64a()
	var b [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(b[:], v)
		_, _ = h.Write(b[:])
	}
	write(uint64(k.shader))
	write(uint64(k.blending))
	write(uint64(k.topology))
	write(uint64(len(k.formats)))
	for _, f := range k.formats {
		write(uint64(f))
	}
	return h.Sum64()
}

// pipelineCache caches render pipelines by key.
//
// It is safe for concurrent use: lookups take a read lock and creation
// double-checks under the write lock.
type pipelineCache struct {
	mu        sync.RWMutex
	pipelines map[uint64]hal.RenderPipeline

	hits   uint64
	misses uint64
}

func newPipelineCache() *pipelineCache {
	return &pipelineCache{pipelines: make(map[uint64]hal.RenderPipeline)}
}

// getOrCreate returns the cached pipeline for key, creating it with
// create on a miss.
func (c *pipelineCache) getOrCreate(key pipelineKey, create func() (hal.RenderPipeline, error)) (hal.RenderPipeline, error) {
	h := key.hash()

	c.mu.RLock()
	if p, ok := c.pipelines[h]; ok {
		c.mu.RUnlock()
		atomic.AddUint64(&c.hits, 1)
		return p, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pipelines[h]; ok {
		atomic.AddUint64(&c.hits, 1)
		return p, nil
	}
	p, err := create()
	if err != nil {
		return nil, err
	}
	c.pipelines[h] = p
	atomic.AddUint64(&c.misses, 1)
	return p, nil
}

// Len returns the number of cached pipelines.
func (c *pipelineCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pipelines)
}

// Stats returns the hit and miss counts.
func (c *pipelineCache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

// Destroy releases every cached pipeline.
func (c *pipelineCache) Destroy(dev hal.Device) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for h, p := range c.pipelines {
		dev.DestroyRenderPipeline(p)
		delete(c.pipelines, h)
	}
}

// blendState maps a blending mode to the HAL blend state; BlendNone
// disables blending.
func blendState(b render.Blending) *gputypes.BlendState {
	switch b {
	case render.BlendAlpha:
		s := gputypes.BlendStateAlpha()
		return &s
	case render.BlendPremultiplied:
		s := gputypes.BlendStatePremultiplied()
		return &s
	default:
		return nil
	}
}

// vertexLayout returns the vertex buffer layout consumed by a shader.
func vertexLayout(sh render.Shader) gputypes.VertexBufferLayout {
	if sh.VertSize() == 4 {
		return gputypes.VertexBufferLayout{
			ArrayStride: 16,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},
			},
		}
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: 32,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}
}

// pipeline returns the render pipeline for key, building it on first use.
func (d *Device) pipeline(key pipelineKey) (hal.RenderPipeline, error) {
	return d.pipelines.getOrCreate(key, func() (hal.RenderPipeline, error) {
		entry, ok := entryPoints[key.shader]
		if !ok {
			return nil, fmt.Errorf("native: %w: shader %v", render.ErrInvalidDraw, key.shader)
		}
		topology := gputypes.PrimitiveTopologyTriangleList
		if key.topology == render.TriangleStrip {
			topology = gputypes.PrimitiveTopologyTriangleStrip
		}
		targets := make([]gputypes.ColorTargetState, len(key.formats))
		for i, f := range key.formats {
			targets[i] = gputypes.ColorTargetState{
				Format:    f,
				Blend:     blendState(key.blending),
				WriteMask: gputypes.ColorWriteMaskAll,
			}
		}

		p, err := d.dev.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
			Label:  d.label(key.shader.String() + " pipeline"),
			Layout: d.programs.pipeLayout,
			Vertex: hal.VertexState{
				Module:     d.programs.module,
				EntryPoint: entry[0],
				Buffers:    []gputypes.VertexBufferLayout{vertexLayout(key.shader)},
			},
			Primitive: gputypes.PrimitiveState{
				Topology:  topology,
				FrontFace: gputypes.FrontFaceCCW,
				CullMode:  gputypes.CullModeNone,
			},
			Multisample: gputypes.DefaultMultisampleState(),
			Fragment: &hal.FragmentState{
				Module:     d.programs.module,
				EntryPoint: entry[1],
				Targets:    targets,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("native: create %v pipeline: %w", key.shader, err)
		}
		render.Logger().Debug("native pipeline created",
			"shader", key.shader, "blending", key.blending, "topology", key.topology)
		return p, nil
	})
}
