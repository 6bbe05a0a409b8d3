// Package recording captures the operations issued to a render.Device.
//
// A Recorder wraps any device and forwards every call unchanged. Successful
// calls are also stored as typed command structs, so tests and tools can
// inspect exactly what a graphics context asked of the GPU: which shader a
// conversion selected, how many texture units it bound, which scratch target
// it drew into.
//
// # Architecture
//
// The package follows the Command pattern:
//
//   - Recorder: a render.Device decorator that captures commands
//   - Recording: an immutable snapshot of commands and resource references
//   - Replay: the resources created when a Recording is played back
//
// Resources are not copied. Textures and buffers are assigned stable
// references (TextureRef, BufferRef) in a ResourcePool the first time they
// are seen, and commands refer to them by reference.
//
// # Basic Usage
//
//	rec := recording.NewRecorder(software.New())
//	ctx := vidgfx.NewContext()
//	ctx.Init(rec)
//
//	ctx.ConvertToBGRX(vidgfx.FormatYV12, y, u, v)
//
//	for _, d := range rec.Draws() {
//	    fmt.Println(d.Shader, d.BoundUnits())
//	}
//
// # Playback
//
// A Recording can be replayed onto another device, for example to compare
// the output of two backends:
//
//	r := rec.FinishRecording()
//	replay, err := r.Playback(otherDevice)
//	defer replay.Destroy()
//
// Map and unmap commands are CPU-side and skipped during playback. Textures
// opened from shared handles are recreated blank with the same description.
//
// # Thread Safety
//
// Recorder is not safe for concurrent use, matching render.Device.
package recording
