package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Settings holds every value fixed at startup. Nothing in here is mutated
// after Validate has passed.
type Settings struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Antialias factor per axis; rays per pixel is the square of this.
	Antialias int `json:"antialias"`

	// Outcome table resolution over [MinAngle, MaxAngle].
	TableSize int     `json:"tableSize"`
	MinAngle  float64 `json:"minAngle"`
	MaxAngle  float64 `json:"maxAngle"`

	// Radial coordinate rays are launched from.
	StartRadius float64 `json:"startRadius"`

	// Screen-space radius (normalized by width/2) is multiplied by this to
	// obtain a value in the simulated angle range. Ties the visible field of
	// view to the table domain.
	FOVScale float64 `json:"fovScale"`

	// Divisor converting lens-center pixels into sky pan angles (radians).
	RotationScale float64 `json:"rotationScale"`

	// Per-frame low-pass coefficient for the lens center.
	Smoothing float64 `json:"smoothing"`

	Backend     string `json:"backend"` // "opencl" or "cpu"
	SkyFile     string `json:"skyFile"`
	SurfaceFile string `json:"surfaceFile"`
	ReportFPS   bool   `json:"reportFps"`

	// Port for the stats/snapshot server; 0 disables it.
	ServePort int `json:"servePort"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Width:         1600,
		Height:        1200,
		Antialias:     4,
		TableSize:     8192,
		MinAngle:      0,
		MaxAngle:      5,
		StartRadius:   100,
		FOVScale:      3,
		RotationScale: 200,
		Smoothing:     0.25,
		Backend:       "opencl",
	}
}

// Load returns defaults, overlaid with settings.json when one exists next to
// the binary. Flags are applied on top by the caller.
func Load() (Settings, error) {
	s := Default()

	file, err := os.Open("settings.json")
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&s); err != nil {
		return s, fmt.Errorf("error parsing settings.json: %v", err)
	}
	fmt.Println("Loaded settings.json")
	return s, nil
}

// Validate rejects configurations before any device resource is created.
func (s Settings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid resolution %dx%d", s.Width, s.Height)
	}
	if s.Antialias < 1 {
		return fmt.Errorf("antialias factor must be at least 1, got %d", s.Antialias)
	}
	if s.TableSize < 2 {
		return fmt.Errorf("table size must be at least 2, got %d", s.TableSize)
	}
	if s.MaxAngle <= s.MinAngle {
		return fmt.Errorf("angle range [%g, %g] is empty", s.MinAngle, s.MaxAngle)
	}
	if s.StartRadius <= 0 {
		return fmt.Errorf("start radius must be positive, got %g", s.StartRadius)
	}
	if s.Smoothing <= 0 || s.Smoothing > 1 {
		return fmt.Errorf("smoothing coefficient must be in (0, 1], got %g", s.Smoothing)
	}
	if s.Backend != "opencl" && s.Backend != "cpu" {
		return fmt.Errorf("unknown compute backend %q", s.Backend)
	}
	if s.SkyFile == "" {
		return fmt.Errorf("a sky texture file is required (-sky)")
	}
	return nil
}
