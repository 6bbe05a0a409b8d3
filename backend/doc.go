// Package backend selects render.Device implementations by name.
//
// Backends register a render.Backend from an init() function, following the
// database/sql driver pattern, and are opened at runtime:
//
//	import _ "github.com/gogpu/vidgfx/backend/software"
//
//	dev, err := backend.Open("software")
//	if err != nil {
//		log.Fatal(err)
//	}
//	ctx := vidgfx.NewContext(vidgfx.WithScreenSize(image.Pt(1280, 720)))
//	if err := ctx.Init(dev); err != nil {
//		log.Fatal(err)
//	}
//
// # Backend Selection
//
// Default opens the best registered backend. The priority is
// native > software: the GPU device is preferred and the CPU device is the
// fallback that is always available once imported.
//
// # Available Backends
//
//   - "native": gogpu/wgpu HAL device (backend/native)
//   - "software": CPU rasterizer (backend/software)
package backend
