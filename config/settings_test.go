package config

import "testing"

func validSettings() Settings {
	s := Default()
	s.SkyFile = "sky.jpg"
	return s
}

func TestDefaults(t *testing.T) {
	s := Default()
	if s.Width != 1600 || s.Height != 1200 {
		t.Errorf("default resolution %dx%d", s.Width, s.Height)
	}
	if s.Antialias != 4 {
		t.Errorf("default antialias %d", s.Antialias)
	}
	if s.MinAngle != 0 || s.MaxAngle != 5 {
		t.Errorf("default angle range [%g, %g]", s.MinAngle, s.MaxAngle)
	}
	if s.Backend != "opencl" {
		t.Errorf("default backend %q", s.Backend)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		ok     bool
	}{
		{"defaults with a sky file", func(s *Settings) {}, true},
		{"cpu backend", func(s *Settings) { s.Backend = "cpu" }, true},
		{"zero width", func(s *Settings) { s.Width = 0 }, false},
		{"negative height", func(s *Settings) { s.Height = -1 }, false},
		{"zero antialias", func(s *Settings) { s.Antialias = 0 }, false},
		{"one-entry table", func(s *Settings) { s.TableSize = 1 }, false},
		{"empty angle range", func(s *Settings) { s.MaxAngle = s.MinAngle }, false},
		{"zero start radius", func(s *Settings) { s.StartRadius = 0 }, false},
		{"zero smoothing", func(s *Settings) { s.Smoothing = 0 }, false},
		{"smoothing above one", func(s *Settings) { s.Smoothing = 1.5 }, false},
		{"unknown backend", func(s *Settings) { s.Backend = "cuda" }, false},
		{"missing sky file", func(s *Settings) { s.SkyFile = "" }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := validSettings()
			tc.mutate(&s)
			err := s.Validate()
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected an error")
			}
		})
	}
}
