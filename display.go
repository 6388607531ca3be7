package main

import (
	"fmt"
	"image/color"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// display owns the window and the streaming texture completed frames are
// presented through.
type display struct {
	width  int
	height int
	tex    rl.Texture2D
}

// newDisplay opens the window and verifies the streaming texture has the
// RGBA8 layout the compositor writes. Any other layout is a startup error.
func newDisplay(width, height int) (*display, error) {
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(int32(width), int32(height), "Schwarzschild black hole visualizer")
	if !rl.IsWindowReady() {
		return nil, fmt.Errorf("could not create a %dx%d window", width, height)
	}

	img := rl.GenImageColor(width, height, rl.Black)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	if tex.Format != rl.UncompressedR8g8b8a8 {
		rl.UnloadTexture(tex)
		rl.CloseWindow()
		return nil, fmt.Errorf("can only handle an RGBA8 streaming texture; got format %d", tex.Format)
	}

	return &display{width: width, height: height, tex: tex}, nil
}

// pitch is the row stride in pixels. raylib streams tightly packed rows.
func (d *display) pitch() int { return d.width }

// present uploads a completed RGBA frame and draws it.
func (d *display) present(frame []byte) {
	pixels := unsafe.Slice((*color.RGBA)(unsafe.Pointer(&frame[0])), d.width*d.height)
	rl.UpdateTexture(d.tex, pixels)

	rl.BeginDrawing()
	rl.DrawTexture(d.tex, 0, 0, rl.White)
	rl.EndDrawing()
}

// shouldClose reports a pending quit: window close button or the escape key.
func (d *display) shouldClose() bool { return rl.WindowShouldClose() }

// mouse returns the current pointer position in pixels.
func (d *display) mouse() (float64, float64) {
	m := rl.GetMousePosition()
	return float64(m.X), float64(m.Y)
}

func (d *display) close() {
	rl.UnloadTexture(d.tex)
	rl.CloseWindow()
}
