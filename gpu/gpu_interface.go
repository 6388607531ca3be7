package gpu

import "blackhole/sim"

// View is the per-frame input to the compositor: destination geometry plus
// the current lens center in pixels. Pitch is the row stride in pixels and
// may exceed Width when the presentation surface pads its rows.
type View struct {
	Width  int
	Height int
	Pitch  int
	CX     float32
	CY     float32
}

// Compute is the contract every backend implements.
//
// GenerateOutcomes runs exactly once, strictly before the first RenderFrame;
// the table it produces is immutable for the rest of the process. RenderFrame
// fills dst (Pitch*Height*4 RGBA bytes) and must not return before the frame
// has been fully written, so the caller may hand dst to the presentation
// surface immediately. The frame for iteration n+1 is never submitted before
// iteration n has returned.
type Compute interface {
	GenerateOutcomes() (*sim.Table, error)
	RenderFrame(v View, dst []byte) error
	Name() string
	Cleanup()
}
