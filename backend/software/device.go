package software

import (
	"fmt"
	"image"

	"github.com/gogpu/vidgfx/backend"
	"github.com/gogpu/vidgfx/render"
)

// DefaultCapabilities are the capabilities of a device created without
// WithCapabilities.
var DefaultCapabilities = render.Capabilities{
	BGRATextures:   true,
	SharedTextures: true,
	GDITextures:    false,
	NonPowerOfTwo:  true,
	MaxTextureSize: 16384,
}

func init() {
	backend.Register(backend.Software, func() render.Backend {
		return softwareBackend{}
	})
}

type softwareBackend struct{}

func (softwareBackend) Name() string { return backend.Software }

func (softwareBackend) Open() (render.Device, error) { return New(), nil }

// Option configures a Device.
type Option func(*Device)

// WithCapabilities overrides the reported capabilities. Textures requested
// with capabilities the device does not report are rejected.
func WithCapabilities(c render.Capabilities) Option {
	return func(d *Device) {
		d.caps = c
	}
}

// Device is a CPU implementation of render.Device.
type Device struct {
	caps      render.Capabilities
	destroyed bool
	draws     int
}

// New creates a software device.
func New(opts ...Option) *Device {
	d := &Device{caps: DefaultCapabilities}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the backend identifier.
func (d *Device) Name() string { return backend.Software }

// Capabilities returns the device capabilities.
func (d *Device) Capabilities() render.Capabilities { return d.caps }

// Draws returns the number of draw calls executed so far.
func (d *Device) Draws() int { return d.draws }

// NewTexture creates a texture in CPU memory.
func (d *Device) NewTexture(desc render.TextureDesc, data []byte, stride int) (render.Texture, error) {
	if d.destroyed {
		return nil, render.ErrDestroyed
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("software: %w: %dx%d", render.ErrInvalidSize, desc.Width, desc.Height)
	}
	if m := d.caps.MaxTextureSize; m > 0 && (desc.Width > m || desc.Height > m) {
		return nil, fmt.Errorf("software: %w: %dx%d exceeds %d", render.ErrInvalidSize, desc.Width, desc.Height, m)
	}
	bpp := desc.Format.BytesPerTexel()
	if bpp == 0 {
		return nil, fmt.Errorf("software: %w: texel format %v", render.ErrUnsupported, desc.Format)
	}
	if desc.Flags.Has(render.TexGDI) && !d.caps.GDITextures {
		return nil, fmt.Errorf("software: %w: GDI textures", render.ErrUnsupported)
	}
	if desc.Format == render.TexelBGRA8 && !d.caps.BGRATextures {
		return nil, fmt.Errorf("software: %w: BGRA textures", render.ErrUnsupported)
	}

	mem := &memory{
		pix:    make([]byte, desc.Width*desc.Height*bpp),
		stride: desc.Width * bpp,
	}
	t := &Texture{dev: d, desc: desc, mem: mem, owned: true}
	if data != nil {
		if err := copyRows(mem.pix, mem.stride, data, stride, desc.Width*bpp, desc.Height); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// WriteTexture replaces the contents of tex.
func (d *Device) WriteTexture(tex render.Texture, data []byte, stride int) error {
	t, err := d.texture(tex)
	if err != nil {
		return err
	}
	if t.mapped {
		return render.ErrTextureMapped
	}
	return copyRows(t.mem.pix, t.mem.stride, data, stride, t.rowBytes(), t.desc.Height)
}

// MapTexture maps a staging texture.
func (d *Device) MapTexture(tex render.Texture) (render.Mapping, error) {
	t, err := d.texture(tex)
	if err != nil {
		return render.Mapping{}, err
	}
	if !t.desc.Flags.Has(render.TexStaging) {
		return render.Mapping{}, render.ErrNotStaging
	}
	if t.mapped {
		return render.Mapping{}, render.ErrAlreadyMapped
	}
	t.mapped = true
	return render.Mapping{Data: t.mem.pix, Stride: t.mem.stride}, nil
}

// UnmapTexture ends a mapping.
func (d *Device) UnmapTexture(tex render.Texture) error {
	t, err := d.texture(tex)
	if err != nil {
		return err
	}
	if !t.mapped {
		return render.ErrNotMapped
	}
	t.mapped = false
	return nil
}

// CopyTexture copies srcRect of src into dst at dstPos.
func (d *Device) CopyTexture(dst, src render.Texture, dstPos image.Point, srcRect image.Rectangle) error {
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
		return fmt.Errorf("software: %w: %v to %v", render.ErrFormatMismatch, st.desc.Format, dt.desc.Format)
	}
	dstRect := image.Rectangle{Min: dstPos, Max: dstPos.Add(srcRect.Size())}
	if srcRect.Empty() || !srcRect.In(st.desc.Bounds()) || !dstRect.In(dt.desc.Bounds()) {
		return fmt.Errorf("software: %w: src %v dst %v", render.ErrOutOfBounds, srcRect, dstRect)
	}

	bpp := st.desc.Format.BytesPerTexel()
	rowLen := srcRect.Dx() * bpp
	rows := make([][]byte, srcRect.Dy())
	for y := range rows {
		off := (srcRect.Min.Y+y)*st.mem.stride + srcRect.Min.X*bpp
		rows[y] = append([]byte(nil), st.mem.pix[off:off+rowLen]...)
	}
	for y, row := range rows {
		off := (dstPos.Y+y)*dt.mem.stride + dstPos.X*bpp
		copy(dt.mem.pix[off:off+rowLen], row)
	}
	return nil
}

// NewBuffer creates a vertex buffer.
func (d *Device) NewBuffer(numFloats int) (render.Buffer, error) {
	if d.destroyed {
		return nil, render.ErrDestroyed
	}
	if numFloats <= 0 {
		return nil, fmt.Errorf("software: %w: %d floats", render.ErrInvalidSize, numFloats)
	}
	return &Buffer{dev: d, data: make([]float32, numFloats)}, nil
}

// WriteBuffer uploads vertex data.
func (d *Device) WriteBuffer(buf render.Buffer, data []float32) error {
	b, err := d.buffer(buf)
	if err != nil {
		return err
	}
	if len(data) > len(b.data) {
		return fmt.Errorf("software: %w: %d floats into %d", render.ErrOutOfBounds, len(data), len(b.data))
	}
	copy(b.data, data)
	return nil
}

// Clear fills every target with c.
func (d *Device) Clear(targets []render.Texture, c render.Color) error {
	for _, tgt := range targets {
		t, err := d.target(tgt)
		if err != nil {
			return err
		}
		bpp := t.desc.Format.BytesPerTexel()
		texel := make([]byte, bpp)
		t.desc.Format.Encode(texel, c.Vec4())
		for i := 0; i < len(t.mem.pix); i += bpp {
			copy(t.mem.pix[i:i+bpp], texel)
		}
	}
	return nil
}

// Draw rasterizes one draw call.
func (d *Device) Draw(call *render.DrawCall) error {
	if d.destroyed {
		return render.ErrDestroyed
	}
	if call == nil {
		return render.ErrInvalidDraw
	}
	p, err := d.preparePass(call)
	if err != nil {
		return err
	}
	p.run()
	d.draws++
	return nil
}

// Flush is a no-op: every operation completes synchronously.
func (d *Device) Flush() error {
	if d.destroyed {
		return render.ErrDestroyed
	}
	return nil
}

// Destroy releases the device.
func (d *Device) Destroy() {
	d.destroyed = true
}

// ExportShared publishes tex under a process-wide handle.
func (d *Device) ExportShared(tex render.Texture) (uintptr, error) {
	if !d.caps.SharedTextures {
		return 0, render.ErrUnsupported
	}
	t, err := d.texture(tex)
	if err != nil {
		return 0, err
	}
	return shared.publish(t), nil
}

// OpenShared opens a texture exported by any software device.
func (d *Device) OpenShared(handle uintptr) (render.Texture, error) {
	if !d.caps.SharedTextures {
		return nil, render.ErrUnsupported
	}
	mem, desc, ok := shared.open(handle)
	if !ok {
		return nil, fmt.Errorf("software: unknown shared handle %#x", handle)
	}
	return &Texture{dev: d, desc: desc, mem: mem, owned: false}, nil
}

func (d *Device) texture(tex render.Texture) (*Texture, error) {
	if d.destroyed {
		return nil, render.ErrDestroyed
	}
	t, ok := tex.(*Texture)
	if !ok || t == nil {
		return nil, fmt.Errorf("software: %w: %T", render.ErrForeignResource, tex)
	}
	if t.destroyed || t.mem.released {
		return nil, render.ErrDestroyed
	}
	return t, nil
}

func (d *Device) target(tex render.Texture) (*Texture, error) {
	t, err := d.texture(tex)
	if err != nil {
		return nil, err
	}
	if !t.desc.Flags.Has(render.TexTargetable) {
		return nil, fmt.Errorf("software: %w: texture %q is not targetable", render.ErrInvalidDraw, t.desc.Label)
	}
	if t.mapped {
		return nil, render.ErrTextureMapped
	}
	return t, nil
}

func (d *Device) buffer(buf render.Buffer) (*Buffer, error) {
	if d.destroyed {
		return nil, render.ErrDestroyed
	}
	b, ok := buf.(*Buffer)
	if !ok || b == nil {
		return nil, fmt.Errorf("software: %w: %T", render.ErrForeignResource, buf)
	}
	if b.data == nil {
		return nil, render.ErrDestroyed
	}
	return b, nil
}

func copyRows(dst []byte, dstStride int, src []byte, srcStride, rowLen, rows int) error {
	if srcStride <= 0 {
		srcStride = rowLen
	}
	if srcStride < rowLen || len(src) < srcStride*(rows-1)+rowLen {
		return fmt.Errorf("software: %w: %d bytes for %d rows of %d", render.ErrOutOfBounds, len(src), rows, rowLen)
	}
	for y := 0; y < rows; y++ {
		copy(dst[y*dstStride:y*dstStride+rowLen], src[y*srcStride:y*srcStride+rowLen])
	}
	return nil
}

var (
	_ render.Device         = (*Device)(nil)
	_ render.SharedExporter = (*Device)(nil)
	_ render.SharedOpener   = (*Device)(nil)
)
