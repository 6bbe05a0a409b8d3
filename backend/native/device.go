// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vidgfx/backend"
	"github.com/gogpu/vidgfx/render"

	// Vulkan is the preferred hardware API; other HAL backends register
	// themselves when imported by the application.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// maxInflight bounds the submissions recorded between two Flush calls.
// Reaching it waits for the queue and releases per-draw resources.
const maxInflight = 256

func init() {
	backend.Register(backend.Native, func() render.Backend {
		return nativeBackend{}
	})
}

type nativeBackend struct{}

func (nativeBackend) Name() string { return backend.Native }

func (nativeBackend) Open() (render.Device, error) { return New() }

// Option configures a Device.
type Option func(*config)

type config struct {
	label string
	spirv bool
}

// WithLabel sets the debug label prefix of every GPU object.
func WithLabel(label string) Option {
	return func(c *config) {
		c.label = label
	}
}

// WithSPIRV compiles the draw programs to SPIR-V with naga before handing
// them to the driver, instead of passing WGSL source.
func WithSPIRV() Option {
	return func(c *config) {
		c.spirv = true
	}
}

// inflight holds the per-draw objects of one submission. They are released
// once the queue is idle.
type inflight struct {
	cmd      hal.CommandBuffer
	uniforms hal.Buffer
	group    hal.BindGroup
}

// Device is a render.Device backed by a HAL device.
//
// Device is safe for concurrent use; operations are serialised.
type Device struct {
	mu sync.Mutex

	dev      hal.Device
	queue    hal.Queue
	instance hal.Instance
	owned    bool

	cfg     config
	adapter string
	caps    render.Capabilities

	programs    *programs
	pipelines   *pipelineCache
	samplers    [2]hal.Sampler // point, linear
	placeholder *Texture

	pending   []inflight
	draws     int
	destroyed bool
}

// New opens a device on the best hardware adapter. It fails with ErrNoGPU
// when only the noop HAL backend is registered.
func New(opts ...Option) (*Device, error) {
	b, err := hal.SelectBestBackend()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoGPU, err)
	}
	if b.Variant() == gputypes.BackendEmpty {
		return nil, ErrNoGPU
	}
	inst, err := b.CreateInstance(&hal.InstanceDescriptor{})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}

	exposed, ok := pickAdapter(inst.EnumerateAdapters(nil))
	if !ok {
		inst.Destroy()
		return nil, ErrNoGPU
	}
	open, err := exposed.Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		inst.Destroy()
		return nil, fmt.Errorf("native: open adapter %q: %w", exposed.Info.Name, err)
	}

	d, err := newDevice(open.Device, open.Queue, exposed.Capabilities.Limits, opts)
	if err != nil {
		open.Device.Destroy()
		inst.Destroy()
		return nil, err
	}
	d.instance = inst
	d.owned = true
	d.adapter = exposed.Info.Name
	render.Logger().Info("native device opened",
		"adapter", exposed.Info.Name, "backend", b.Variant())
	return d, nil
}

// pickAdapter prefers a discrete GPU, then an integrated one, then anything
// that is not a CPU rasterizer.
func pickAdapter(adapters []hal.ExposedAdapter) (hal.ExposedAdapter, bool) {
	rank := func(t gputypes.DeviceType) int {
		switch t {
		case gputypes.DeviceTypeDiscreteGPU:
			return 3
		case gputypes.DeviceTypeIntegratedGPU:
			return 2
		case gputypes.DeviceTypeVirtualGPU:
			return 1
		default:
			return 0
		}
	}
	best, found := hal.ExposedAdapter{}, false
	for _, a := range adapters {
		if a.Info.DeviceType == gputypes.DeviceTypeCPU {
			continue
		}
		if !found || rank(a.Info.DeviceType) > rank(best.Info.DeviceType) {
			best, found = a, true
		}
	}
	return best, found
}

// NewFromHAL wraps an existing HAL device and queue. The caller keeps
// ownership: Destroy releases only the objects created by this device.
func NewFromHAL(dev hal.Device, queue hal.Queue, opts ...Option) (*Device, error) {
	if dev == nil || queue == nil {
		return nil, ErrNilHALDevice
	}
	return newDevice(dev, queue, gputypes.DefaultLimits(), opts)
}

// NewFromProvider wraps the HAL device of a gpucontext.DeviceProvider, such
// as a gogpu application window, so that composited frames are drawn on the
// host's GPU. The provider must expose HalDevice and HalQueue.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNotHALProvider
	}
	dev, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNotHALProvider, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNotHALProvider, hp.HalQueue())
	}
	d, err := NewFromHAL(dev, queue, opts...)
	if err != nil {
		return nil, err
	}
	d.adapter = provider.AdapterInfo().Name
	return d, nil
}

func newDevice(dev hal.Device, queue hal.Queue, limits gputypes.Limits, opts []Option) (*Device, error) {
	cfg := config{label: "vidgfx"}
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Device{
		dev:   dev,
		queue: queue,
		cfg:   cfg,
		caps: render.Capabilities{
			BGRATextures:   true,
			SharedTextures: false,
			GDITextures:    false,
			NonPowerOfTwo:  true,
			MaxTextureSize: int(limits.MaxTextureDimension2D),
		},
		pipelines: newPipelineCache(),
	}

	progs, err := newPrograms(dev, cfg)
	if err != nil {
		return nil, err
	}
	d.programs = progs

	for i, f := range []gputypes.FilterMode{gputypes.FilterModeNearest, gputypes.FilterModeLinear} {
		s, err := dev.CreateSampler(&hal.SamplerDescriptor{
			Label:        d.label("sampler"),
			AddressModeU: gputypes.AddressModeClampToEdge,
			AddressModeV: gputypes.AddressModeClampToEdge,
			AddressModeW: gputypes.AddressModeClampToEdge,
			MagFilter:    f,
			MinFilter:    f,
			MipmapFilter: gputypes.FilterModeNearest,
			LodMaxClamp:  32,
			Anisotropy:   1,
		})
		if err != nil {
			d.release()
			return nil, fmt.Errorf("native: create sampler: %w", err)
		}
		d.samplers[i] = s
	}

	ph, err := d.newTexture(render.TextureDesc{
		Label: "placeholder", Width: 1, Height: 1, Format: render.TexelRGBA8,
	}, []byte{0, 0, 0, 255}, 4)
	if err != nil {
		d.release()
		return nil, err
	}
	d.placeholder = ph
	return d, nil
}

func (d *Device) label(name string) string {
	return d.cfg.label + " " + name
}

// Name returns the backend identifier.
func (d *Device) Name() string { return backend.Native }

// Adapter returns the adapter name, or "" for wrapped HAL devices.
func (d *Device) Adapter() string { return d.adapter }

// Capabilities returns the device capabilities.
func (d *Device) Capabilities() render.Capabilities { return d.caps }

// Draws returns the number of draw calls submitted so far.
func (d *Device) Draws() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draws
}

// PipelineStats returns pipeline cache hits and misses.
func (d *Device) PipelineStats() (hits, misses uint64) {
	return d.pipelines.Stats()
}

// Flush waits for submitted work and releases per-draw resources.
func (d *Device) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return render.ErrDestroyed
	}
	return d.waitIdle()
}

func (d *Device) waitIdle() error {
	if err := d.dev.WaitIdle(); err != nil {
		return fmt.Errorf("native: wait idle: %w", err)
	}
	for _, p := range d.pending {
		if p.group != nil {
			d.dev.DestroyBindGroup(p.group)
		}
		if p.uniforms != nil {
			d.dev.DestroyBuffer(p.uniforms)
		}
		if p.cmd != nil {
			d.dev.FreeCommandBuffer(p.cmd)
		}
	}
	d.pending = d.pending[:0]
	return nil
}

// submit queues one command buffer and tracks its per-draw objects.
func (d *Device) submit(work inflight) error {
	if _, err := d.queue.Submit([]hal.CommandBuffer{work.cmd}); err != nil {
		d.pending = append(d.pending, work)
		return fmt.Errorf("native: submit: %w", err)
	}
	d.pending = append(d.pending, work)
	if len(d.pending) >= maxInflight {
		return d.waitIdle()
	}
	return nil
}

// Destroy waits for the GPU and releases every object the device created.
func (d *Device) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return
	}
	if err := d.waitIdle(); err != nil {
		render.Logger().Warn("native: destroy", "err", err)
	}
	d.release()
	d.destroyed = true
}

func (d *Device) release() {
	if d.placeholder != nil {
		d.placeholder.destroy()
		d.placeholder = nil
	}
	for i, s := range d.samplers {
		if s != nil {
			d.dev.DestroySampler(s)
			d.samplers[i] = nil
		}
	}
	d.pipelines.Destroy(d.dev)
	if d.programs != nil {
		d.programs.destroy(d.dev)
		d.programs = nil
	}
	if d.owned {
		d.dev.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
}

var _ render.Device = (*Device)(nil)
