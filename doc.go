// Package vidgfx is the graphics layer of a real-time video compositor.
//
// # Overview
//
// vidgfx turns decoded video frames into BGRX textures and composites them
// with textured and solid quads into off-screen render targets. A Context
// owns one render.Device, a fixed set of render targets and the draw state;
// devices come from the backend registry (software, native).
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/vidgfx"
//	    _ "github.com/gogpu/vidgfx/backend/software"
//	)
//
//	ctx, err := vidgfx.OpenContext("software", vidgfx.WithCanvasSize(1280, 720))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Destroy()
//
//	// Upload a YV12 frame and convert it
//	y := ctx.NewPlaneTex(vidgfx.FormatYV12, 0, size, true)
//	v := ctx.NewPlaneTex(vidgfx.FormatYV12, 1, size, true)
//	u := ctx.NewPlaneTex(vidgfx.FormatYV12, 2, size, true)
//	// ... UpdatePlane on each ...
//	frame := ctx.ConvertToBGRX(vidgfx.FormatYV12, y, v, u)
//
//	// Draw it onto the canvas
//	buf := ctx.NewVertBuf(vidgfx.TexDecalNumVerts * vidgfx.DefaultVertSize)
//	vidgfx.CreateTexDecalRect(buf, render.RectXYWH(0, 0, 1280, 720))
//	ctx.SetRenderTarget(vidgfx.TargetCanvas1)
//	ctx.SetShader(render.ShaderTexDecal)
//	ctx.SetTex(frame, nil, nil)
//	ctx.DrawBuf(buf, -1, 0)
//
// # Render Targets
//
// Screen is double buffered: draws go to the back buffer and SwapScreenBufs
// presents it. Canvas1 and Canvas2 hold composited scenes. Scratch1 and
// Scratch2 are intermediate targets for multi-pass work; NextScratchTarget
// alternates between them so a pass never samples the texture it renders
// into. User is any targetable texture, optionally paired with a second
// texture for shaders with two outputs.
//
// # Coordinate System
//
// Geometry is in pixels with the origin at the top left of the target and
// Y increasing down. Unless a projection matrix is set, each target uses an
// orthographic projection of its viewport. UV (0, 0) is the top left texel.
//
// # Errors
//
// Texture constructors return nil and conversion returns a nil texture on
// failure; the reason is available from Context.LastError and is logged
// through the package logger (see SetLogger).
//
// # Concurrency
//
// A Context and everything created from it must be used from one goroutine.
package vidgfx
