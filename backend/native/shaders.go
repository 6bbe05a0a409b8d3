// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vidgfx/render"
)

//go:embed shaders/vidgfx.wgsl
var vidgfxShaderSource string

// uniformSize is the size of the Uniforms block in the WGSL module:
// a mat4x4 followed by five vec4.
const uniformSize = 64 + 5*16

// Bind group 0 layout.
const (
	bindingUniforms = 0
	bindingSampler  = 1
	bindingTexA     = 2
)

// entryPoints maps each shader to its vertex and fragment entry points.
var entryPoints = map[render.Shader][2]string{
	render.ShaderSolid:        {"vs_main", "fs_solid"},
	render.ShaderTexDecal:     {"vs_main", "fs_tex_decal"},
	render.ShaderTexDecalGbcs: {"vs_main", "fs_tex_decal_gbcs"},
	render.ShaderTexDecalRgb:  {"vs_main", "fs_tex_decal_rgb"},
	render.ShaderResizeLayer:  {"vs_pos", "fs_resize_layer"},
	render.ShaderRgbNv16:      {"vs_main", "fs_rgb_nv16"},
	render.ShaderYv12Rgb:      {"vs_main", "fs_yv12"},
	render.ShaderNv12Rgb:      {"vs_main", "fs_nv12"},
	render.ShaderUyvyRgb:      {"vs_main", "fs_uyvy"},
	render.ShaderHdycRgb:      {"vs_main", "fs_hdyc"},
	render.ShaderYuy2Rgb:      {"vs_main", "fs_yuy2"},
}

// ShaderSource returns the WGSL source of the draw programs.
func ShaderSource() string {
	return vidgfxShaderSource
}

// CompileSPIRV compiles the draw programs to SPIR-V words.
func CompileSPIRV() ([]uint32, error) {
	code, err := naga.Compile(vidgfxShaderSource)
	if err != nil {
		return nil, fmt.Errorf("native: compile shaders: %w", err)
	}
	if len(code)%4 != 0 {
		return nil, fmt.Errorf("native: SPIR-V size %d is not a multiple of 4", len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words, nil
}

// programs holds the shader module and the layouts shared by every
// pipeline.
type programs struct {
	module     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
}

func newPrograms(dev hal.Device, cfg config) (*programs, error) {
	src := hal.ShaderSource{WGSL: vidgfxShaderSource}
	if cfg.spirv {
		words, err := CompileSPIRV()
		if err != nil {
			return nil, err
		}
		src = hal.ShaderSource{SPIRV: words}
	}

	p := &programs{}
	var err error
	p.module, err = dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  cfg.label + " shaders",
		Source: src,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create shader module: %w", err)
	}

	texture := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		}
	}
	p.bindLayout, err = dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: cfg.label + " bind group layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    bindingUniforms,
				Visibility: gputypes.ShaderStagesVertexFragment,
				Buffer: &gputypes.BufferBindingLayout{
					Type:           gputypes.BufferBindingTypeUniform,
					MinBindingSize: uniformSize,
				},
			},
			{
				Binding:    bindingSampler,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
			texture(bindingTexA),
			texture(bindingTexA + 1),
			texture(bindingTexA + 2),
		},
	})
	if err != nil {
		p.destroy(dev)
		return nil, fmt.Errorf("native: create bind group layout: %w", err)
	}

	p.pipeLayout, err = dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            cfg.label + " pipeline layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		p.destroy(dev)
		return nil, fmt.Errorf("native: create pipeline layout: %w", err)
	}
	return p, nil
}

// destroy releases the programs in reverse creation order.
func (p *programs) destroy(dev hal.Device) {
	if p.pipeLayout != nil {
		dev.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		dev.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.module != nil {
		dev.DestroyShaderModule(p.module)
		p.module = nil
	}
}

// encodeUniforms packs u in the std140 layout of the Uniforms block.
func encodeUniforms(u *render.Uniforms) []byte {
	buf := make([]byte, uniformSize)
	off := 0
	put := func(vs ...float32) {
		for _, v := range vs {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
			off += 4
		}
	}
	put(u.Transform[:]...)
	put(u.ModColor.R, u.ModColor.G, u.ModColor.B, u.ModColor.A)
	put(u.Effects[:]...)
	put(u.LayerRect.X, u.LayerRect.Y, u.LayerRect.W, u.LayerRect.H)
	put(u.BorderColor.R, u.BorderColor.G, u.BorderColor.B, u.BorderColor.A)
	put(u.PxSize.X, u.PxSize.Y, 0, 0)
	return buf
}
