package recording

import (
	"fmt"
	"image"
	"slices"

	"github.com/gogpu/vidgfx/render"
)

// Recorder is a render.Device that forwards every operation to an inner
// device and records the successful ones as commands. Resources are passed
// through unchanged, so a Recorder can replace its inner device anywhere.
//
// Recorder is not safe for concurrent use, matching render.Device.
type Recorder struct {
	inner     render.Device
	commands  []Command
	resources *ResourcePool
	stats     Stats
}

// Stats summarizes the recorded commands.
type Stats struct {
	Draws          int
	DrawsByShader  map[render.Shader]int
	Clears         int
	Copies         int
	TextureUploads int
	BufferUploads  int
	Flushes        int
}

// NewRecorder wraps inner.
func NewRecorder(inner render.Device) *Recorder {
	return &Recorder{
		inner:     inner,
		commands:  make([]Command, 0, 64),
		resources: NewResourcePool(),
		stats:     Stats{DrawsByShader: make(map[render.Shader]int)},
	}
}

// Inner returns the wrapped device.
func (r *Recorder) Inner() render.Device { return r.inner }

// Commands returns the commands recorded so far.
func (r *Recorder) Commands() []Command { return r.commands }

// Resources returns the resource pool.
func (r *Recorder) Resources() *ResourcePool { return r.resources }

// Stats returns a copy of the statistics.
func (r *Recorder) Stats() Stats {
	s := r.stats
	s.DrawsByShader = make(map[render.Shader]int, len(r.stats.DrawsByShader))
	for k, v := range r.stats.DrawsByShader {
		s.DrawsByShader[k] = v
	}
	return s
}

// Draws returns the recorded draw commands in order.
func (r *Recorder) Draws() []DrawCommand {
	var out []DrawCommand
	for _, c := range r.commands {
		if d, ok := c.(DrawCommand); ok {
			out = append(out, d)
		}
	}
	return out
}

// Reset discards recorded commands and statistics. References already
// assigned stay valid.
func (r *Recorder) Reset() {
	r.commands = r.commands[:0]
	r.stats = Stats{DrawsByShader: make(map[render.Shader]int)}
}

// FinishRecording returns an immutable snapshot of the recorded commands.
func (r *Recorder) FinishRecording() *Recording {
	return &Recording{
		commands:  slices.Clone(r.commands),
		resources: r.resources,
	}
}

func (r *Recorder) record(c Command) {
	r.commands = append(r.commands, c)
}

// --------------------------------------------------------------------------
// render.Device
// --------------------------------------------------------------------------

// Name returns the inner device name.
func (r *Recorder) Name() string { return r.inner.Name() }

// Capabilities returns the inner device capabilities.
func (r *Recorder) Capabilities() render.Capabilities { return r.inner.Capabilities() }

// NewTexture implements render.Device.
func (r *Recorder) NewTexture(desc render.TextureDesc, data []byte, stride int) (render.Texture, error) {
	tex, err := r.inner.NewTexture(desc, data, stride)
	if err != nil {
		return nil, err
	}
	ref := r.resources.AddTexture(tex)
	r.record(NewTextureCommand{Texture: ref, Desc: desc, Data: slices.Clone(data), Stride: stride})
	if data != nil {
		r.stats.TextureUploads++
	}
	return tex, nil
}

// WriteTexture implements render.Device.
func (r *Recorder) WriteTexture(tex render.Texture, data []byte, stride int) error {
	if err := r.inner.WriteTexture(tex, data, stride); err != nil {
		return err
	}
	r.record(WriteTextureCommand{Texture: r.resources.AddTexture(tex), Data: slices.Clone(data), Stride: stride})
	r.stats.TextureUploads++
	return nil
}

// MapTexture implements render.Device.
func (r *Recorder) MapTexture(tex render.Texture) (render.Mapping, error) {
	m, err := r.inner.MapTexture(tex)
	if err != nil {
		return m, err
	}
	r.record(MapTextureCommand{Texture: r.resources.AddTexture(tex)})
	return m, nil
}

// UnmapTexture implements render.Device.
func (r *Recorder) UnmapTexture(tex render.Texture) error {
	if err := r.inner.UnmapTexture(tex); err != nil {
		return err
	}
	r.record(UnmapTextureCommand{Texture: r.resources.AddTexture(tex)})
	return nil
}

// CopyTexture implements render.Device.
func (r *Recorder) CopyTexture(dst, src render.Texture, dstPos image.Point, srcRect image.Rectangle) error {
	if err := r.inner.CopyTexture(dst, src, dstPos, srcRect); err != nil {
		return err
	}
	r.record(CopyTextureCommand{
		Dst:     r.resources.AddTexture(dst),
		Src:     r.resources.AddTexture(src),
		DstPos:  dstPos,
		SrcRect: srcRect,
	})
	r.stats.Copies++
	return nil
}

// NewBuffer implements render.Device.
func (r *Recorder) NewBuffer(numFloats int) (render.Buffer, error) {
	buf, err := r.inner.NewBuffer(numFloats)
	if err != nil {
		return nil, err
	}
	r.record(NewBufferCommand{Buffer: r.resources.AddBuffer(buf), NumFloats: numFloats})
	return buf, nil
}

// WriteBuffer implements render.Device.
func (r *Recorder) WriteBuffer(buf render.Buffer, data []float32) error {
	if err := r.inner.WriteBuffer(buf, data); err != nil {
		return err
	}
	r.record(WriteBufferCommand{Buffer: r.resources.AddBuffer(buf), Data: slices.Clone(data)})
	r.stats.BufferUploads++
	return nil
}

// Clear implements render.Device.
func (r *Recorder) Clear(targets []render.Texture, c render.Color) error {
	if err := r.inner.Clear(targets, c); err != nil {
		return err
	}
	r.record(ClearCommand{Targets: r.textureRefs(targets), Color: c})
	r.stats.Clears++
	return nil
}

// Draw implements render.Device.
func (r *Recorder) Draw(call *render.DrawCall) error {
	if err := r.inner.Draw(call); err != nil {
		return err
	}
	cmd := DrawCommand{
		Targets:  r.textureRefs(call.Targets),
		Viewport: call.Viewport,
		Shader:   call.Shader,
		Topology: call.Topology,
		Blending: call.Blending,
		Filter:   call.Filter,
		Buffer:   r.resources.AddBuffer(call.Buffer),
		VertSize: call.VertSize,
		First:    call.First,
		Count:    call.Count,
		Uniforms: call.Uniforms,
	}
	for i, tex := range call.Textures {
		cmd.Textures[i] = TextureRef(InvalidRef)
		if tex != nil {
			cmd.Textures[i] = r.resources.AddTexture(tex)
		}
	}
	r.record(cmd)
	r.stats.Draws++
	r.stats.DrawsByShader[call.Shader]++
	return nil
}

// Flush implements render.Device.
func (r *Recorder) Flush() error {
	if err := r.inner.Flush(); err != nil {
		return err
	}
	r.record(FlushCommand{})
	r.stats.Flushes++
	return nil
}

// Destroy destroys the inner device.
func (r *Recorder) Destroy() { r.inner.Destroy() }

// ExportShared forwards to the inner device when it supports sharing.
func (r *Recorder) ExportShared(tex render.Texture) (uintptr, error) {
	exp, ok := r.inner.(render.SharedExporter)
	if !ok {
		return 0, render.ErrUnsupported
	}
	return exp.ExportShared(tex)
}

// OpenShared forwards to the inner device when it supports sharing.
func (r *Recorder) OpenShared(handle uintptr) (render.Texture, error) {
	op, ok := r.inner.(render.SharedOpener)
	if !ok {
		return nil, render.ErrUnsupported
	}
	tex, err := op.OpenShared(handle)
	if err != nil {
		return nil, err
	}
	r.record(OpenSharedCommand{Texture: r.resources.AddTexture(tex), Handle: handle, Desc: tex.Desc()})
	return tex, nil
}

func (r *Recorder) textureRefs(texs []render.Texture) []TextureRef {
	refs := make([]TextureRef, len(texs))
	for i, t := range texs {
		refs[i] = r.resources.AddTexture(t)
	}
	return refs
}

// --------------------------------------------------------------------------
// Recording
// --------------------------------------------------------------------------

// Recording is an immutable list of recorded device commands.
// It can be replayed onto any render.Device.
type Recording struct {
	commands  []Command
	resources *ResourcePool
}

// Commands returns the recorded commands.
func (r *Recording) Commands() []Command {
	return r.commands
}

// Resources returns the resource pool.
func (r *Recording) Resources() *ResourcePool {
	return r.resources
}

// Replay holds the resources created by Playback.
type Replay struct {
	textures map[TextureRef]render.Texture
	buffers  map[BufferRef]render.Buffer
}

// Texture returns the texture created for ref, or nil.
func (p *Replay) Texture(ref TextureRef) render.Texture {
	return p.textures[ref]
}

// Destroy releases every replayed resource.
func (p *Replay) Destroy() {
	for _, t := range p.textures {
		t.Destroy()
	}
	for _, b := range p.buffers {
		b.Destroy()
	}
}

// Playback replays the recording onto dev. Map and unmap commands are
// CPU-side and skipped. Shared textures are recreated blank.
func (r *Recording) Playback(dev render.Device) (*Replay, error) {
	p := &Replay{
		textures: make(map[TextureRef]render.Texture),
		buffers:  make(map[BufferRef]render.Buffer),
	}
	for i, cmd := range r.commands {
		if err := p.apply(dev, cmd); err != nil {
			return p, fmt.Errorf("recording: command %d (%v): %w", i, cmd.Type(), err)
		}
	}
	return p, nil
}

func (p *Replay) tex(ref TextureRef) (render.Texture, error) {
	t, ok := p.textures[ref]
	if !ok {
		return nil, fmt.Errorf("texture %d was not created in this recording", ref)
	}
	return t, nil
}

func (p *Replay) texs(refs []TextureRef) ([]render.Texture, error) {
	out := make([]render.Texture, len(refs))
	for i, ref := range refs {
		t, err := p.tex(ref)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func (p *Replay) buf(ref BufferRef) (render.Buffer, error) {
	b, ok := p.buffers[ref]
	if !ok {
		return nil, fmt.Errorf("buffer %d was not created in this recording", ref)
	}
	return b, nil
}

func (p *Replay) apply(dev render.Device, cmd Command) error {
	switch c := cmd.(type) {
	case NewTextureCommand:
		t, err := dev.NewTexture(c.Desc, c.Data, c.Stride)
		if err != nil {
			return err
		}
		p.textures[c.Texture] = t
	case OpenSharedCommand:
		t, err := dev.NewTexture(c.Desc, nil, 0)
		if err != nil {
			return err
		}
		p.textures[c.Texture] = t
	case WriteTextureCommand:
		t, err := p.tex(c.Texture)
		if err != nil {
			return err
		}
		return dev.WriteTexture(t, c.Data, c.Stride)
	case MapTextureCommand, UnmapTextureCommand:
	case CopyTextureCommand:
		dst, err := p.tex(c.Dst)
		if err != nil {
			return err
		}
		src, err := p.tex(c.Src)
		if err != nil {
			return err
		}
		return dev.CopyTexture(dst, src, c.DstPos, c.SrcRect)
	case NewBufferCommand:
		b, err := dev.NewBuffer(c.NumFloats)
		if err != nil {
			return err
		}
		p.buffers[c.Buffer] = b
	case WriteBufferCommand:
		b, err := p.buf(c.Buffer)
		if err != nil {
			return err
		}
		return dev.WriteBuffer(b, c.Data)
	case ClearCommand:
		targets, err := p.texs(c.Targets)
		if err != nil {
			return err
		}
		return dev.Clear(targets, c.Color)
	case DrawCommand:
		targets, err := p.texs(c.Targets)
		if err != nil {
			return err
		}
		b, err := p.buf(c.Buffer)
		if err != nil {
			return err
		}
		call := &render.DrawCall{
			Targets:  targets,
			Viewport: c.Viewport,
			Shader:   c.Shader,
			Topology: c.Topology,
			Blending: c.Blending,
			Filter:   c.Filter,
			Buffer:   b,
			VertSize: c.VertSize,
			First:    c.First,
			Count:    c.Count,
			Uniforms: c.Uniforms,
		}
		for i, ref := range c.Textures {
			if !ref.IsValid() {
				continue
			}
			if call.Textures[i], err = p.tex(ref); err != nil {
				return err
			}
		}
		return dev.Draw(call)
	case FlushCommand:
		return dev.Flush()
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
	return nil
}

var (
	_ render.Device         = (*Recorder)(nil)
	_ render.SharedExporter = (*Recorder)(nil)
	_ render.SharedOpener   = (*Recorder)(nil)
)
