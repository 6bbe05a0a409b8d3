package main

import (
	"fmt"
	"image"

	"github.com/gogpu/vidgfx"
	"github.com/gogpu/vidgfx/pixconv"
)

// converter owns the plane textures and the read-back staging texture
// reused for every frame.
type converter struct {
	ctx     *vidgfx.Context
	job     job
	upload  vidgfx.PixelFormat // format of the uploaded planes
	layout  []pixconv.Plane
	planes  [3]*vidgfx.Texture
	staging *vidgfx.Texture
	out     image.Point
	rgb32   []byte
}

func newConverter(ctx *vidgfx.Context, j job) (*converter, error) {
	c := &converter{ctx: ctx, job: j, upload: j.pf, out: j.frame}
	if j.pf == vidgfx.FormatRGB24 {
		c.upload = vidgfx.FormatRGB32
		c.rgb32 = make([]byte, j.frame.X*j.frame.Y*4)
	}
	if !c.upload.IsConvertible() {
		return nil, fmt.Errorf("%v frames cannot be converted", j.pf)
	}
	if j.scale != (image.Point{}) {
		c.out = j.scale
	}

	info, _ := c.upload.Info()
	for i, p := range info.Planes {
		s := p.Size(j.frame)
		c.layout = append(c.layout, pixconv.Plane{W: s.X, H: s.Y, BPP: p.Texel.BytesPerTexel()})
		c.planes[i] = ctx.NewPlaneTex(c.upload, i, j.frame, true)
		if !c.planes[i].IsValid() {
			c.destroy()
			return nil, fmt.Errorf("create plane %d: %w", i, ctx.LastError())
		}
	}
	c.staging = ctx.NewStagingTex(c.out)
	if !c.staging.IsValid() {
		c.destroy()
		return nil, fmt.Errorf("create staging texture: %w", ctx.LastError())
	}
	return c, nil
}

func (c *converter) destroy() {
	for _, t := range c.planes {
		if t.IsValid() {
			c.ctx.DestroyTex(t)
		}
	}
	if c.staging.IsValid() {
		c.ctx.DestroyTex(c.staging)
	}
}

// hasLuma reports whether the frame starts with a separate Y plane.
func (c *converter) hasLuma() bool {
	return c.upload.IsYUV() && c.layout[0].BPP == 1
}

// luma returns the Y plane of a planar frame as a grey image.
func (c *converter) luma(frame []byte) (image.Image, error) {
	data, err := pixconv.SplitPlanes(frame, c.layout[0])
	if err != nil {
		return nil, err
	}
	return pixconv.Gray(data[0], c.layout[0].W, c.layout[0].H)
}

// convert uploads one raw frame, converts it to BGRX on the device,
// resizes it when requested and reads it back.
func (c *converter) convert(frame []byte) (image.Image, error) {
	if c.rgb32 != nil {
		if err := pixconv.RGB24ToRGB32(c.rgb32, frame, c.job.frame.X, c.job.frame.Y, 0); err != nil {
			return nil, err
		}
		frame = c.rgb32
	}
	data, err := pixconv.SplitPlanes(frame, c.layout...)
	if err != nil {
		return nil, err
	}
	for i, p := range data {
		if err := c.planes[i].UpdatePlane(p, c.layout[i].Stride()); err != nil {
			return nil, err
		}
	}

	bgrx := c.ctx.ConvertToBGRX(c.upload, c.planes[0], c.planes[1], c.planes[2])
	if bgrx == nil {
		return nil, fmt.Errorf("convert: %w", c.ctx.LastError())
	}
	src := bgrx
	if c.out != c.job.frame {
		// Scratch targets are rounded up on devices without NPOT textures.
		var (
			prep vidgfx.Prepared
			ok   bool
		)
		if bgrx.Size() == c.job.frame {
			prep, ok = c.ctx.PrepareTex(bgrx, c.out, c.job.filter, false)
		} else {
			prep, ok = c.ctx.PrepareTexCrop(bgrx, image.Rectangle{Max: c.job.frame}, c.out, c.job.filter, false)
		}
		if !ok {
			return nil, fmt.Errorf("resize: %w", c.ctx.LastError())
		}
		src = prep.Tex
	}
	if !c.ctx.CopyTexData(c.staging, src, image.Point{}, image.Rectangle{Max: c.out}) {
		return nil, fmt.Errorf("read back: %w", c.ctx.LastError())
	}
	if err := c.ctx.Flush(); err != nil {
		return nil, err
	}

	if err := c.staging.Map(); err != nil {
		return nil, err
	}
	defer func() { _ = c.staging.Unmap() }()

	var img image.Image
	if c.staging.IsSRGBHack() {
		img, err = c.staging.ToImage()
	} else {
		img, err = pixconv.ToImage(c.staging.Data(), c.staging.Stride(), c.out.X, c.out.Y, image.Point{})
	}
	if err != nil {
		return nil, err
	}
	if c.job.flip != pixconv.OrientNormal {
		img = pixconv.Orient(img, c.job.flip)
	}
	return img, nil
}
