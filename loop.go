package main

import (
	"fmt"
	"time"

	"blackhole/config"
	"blackhole/gpu"
)

// fpsReportInterval is in frames, not time, matching the report cadence the
// -fps flag documents.
const fpsReportInterval = 100

// viewState is the per-iteration state of the interaction loop. It is passed
// explicitly through each transition; there are no ambient globals.
type viewState struct {
	effX, effY float64 // smoothed lens center
	rawX, rawY float64 // last reported pointer position
	smoothing  float64
}

// newViewState centers both positions so the filter starts at its fixed point.
func newViewState(width, height int, smoothing float64) viewState {
	cx := float64(width) / 2
	cy := float64(height) / 2
	return viewState{effX: cx, effY: cy, rawX: cx, rawY: cy, smoothing: smoothing}
}

// step advances the first-order low-pass filter one frame. Each frame the
// effective center moves a fixed fraction of the way toward the pointer, so
// small jitters never cause a visible jump.
func (s *viewState) step() {
	s.effX = (1-s.smoothing)*s.effX + s.smoothing*s.rawX
	s.effY = (1-s.smoothing)*s.effY + s.smoothing*s.rawY
}

func (s *viewState) setRaw(x, y float64) {
	s.rawX = x
	s.rawY = y
}

// runLoop drives per-frame compositing until the user quits: smooth the lens
// center, render, present, poll input, report cadence. RenderFrame blocks
// until the frame is fully read back, so presentation never sees a frame
// that is still being written.
func runLoop(cfg config.Settings, comp gpu.Compute, disp *display, stats *statsServer) error {
	state := newViewState(cfg.Width, cfg.Height, cfg.Smoothing)

	pitch := disp.pitch()
	frame := make([]byte, pitch*cfg.Height*4)

	frames := 0
	var totalFrames uint64
	start := time.Now()

	for !disp.shouldClose() {
		state.step()

		v := gpu.View{
			Width:  cfg.Width,
			Height: cfg.Height,
			Pitch:  pitch,
			CX:     float32(state.effX),
			CY:     float32(state.effY),
		}
		if err := comp.RenderFrame(v, frame); err != nil {
			return fmt.Errorf("rendering frame: %w", err)
		}
		disp.present(frame)

		state.setRaw(disp.mouse())

		frames++
		totalFrames++
		if frames == fpsReportInterval {
			elapsed := time.Since(start)
			fps := float64(frames) / elapsed.Seconds()
			if cfg.ReportFPS {
				fmt.Printf("%d frames in %dms = %.1f fps\n", frames, elapsed.Milliseconds(), fps)
			}
			if stats != nil {
				stats.publish(frameStats{
					FPS:         fps,
					FrameMillis: elapsed.Seconds() * 1000 / float64(frames),
					Frames:      totalFrames,
					CenterX:     state.effX,
					CenterY:     state.effY,
				}, frame)
			}
			start = time.Now()
			frames = 0
		}
	}

	return nil
}
