// Package software implements render.Device on the CPU.
//
// Textures live in ordinary Go memory and draws are executed by a scanline
// triangle rasterizer that interpolates vertex attributes and runs each
// render.Shader as a Go fragment function. The device is deterministic and
// needs no GPU, which makes it the reference implementation for tests and
// the fallback for headless conversion tools.
//
// Importing the package registers it with the backend registry:
//
//	import _ "github.com/gogpu/vidgfx/backend/software"
//
//	dev, err := backend.Open("software")
//
// Rasterization follows the Direct3D conventions: pixel centres are sampled
// at half-integer coordinates and the top-left rule decides ownership of
// shared edges, so adjacent triangles never touch a pixel twice.
package software
