package gpu

import (
	"bytes"
	"testing"

	"blackhole/config"
	"blackhole/texture"
)

func testConfig() config.Settings {
	cfg := config.Default()
	cfg.Width = 4
	cfg.Height = 4
	cfg.Antialias = 1
	cfg.TableSize = 64
	cfg.Backend = "cpu"
	cfg.SkyFile = "sky.png" // never opened; textures are injected directly
	return cfg
}

func solidTexture(w, h int, r, g, b, a byte) *texture.Texture {
	pix := make([]byte, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i] = r
		pix[i+1] = g
		pix[i+2] = b
		pix[i+3] = a
	}
	return &texture.Texture{Width: w, Height: h, Pix: pix}
}

func newTestCompute(t *testing.T, cfg config.Settings, sky, surface *texture.Texture) *CPUCompute {
	t.Helper()
	c, err := NewCPUCompute(cfg, sky, surface)
	if err != nil {
		t.Fatalf("NewCPUCompute: %v", err)
	}
	if _, err := c.GenerateOutcomes(); err != nil {
		t.Fatalf("GenerateOutcomes: %v", err)
	}
	return c
}

func render(t *testing.T, c *CPUCompute, v View) []byte {
	t.Helper()
	dst := make([]byte, v.Pitch*v.Height*4)
	if err := c.RenderFrame(v, dst); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	return dst
}

func TestRenderBeforeGenerateFails(t *testing.T) {
	cfg := testConfig()
	c, err := NewCPUCompute(cfg, solidTexture(2, 2, 1, 2, 3, 255), texture.Placeholder())
	if err != nil {
		t.Fatalf("NewCPUCompute: %v", err)
	}

	v := View{Width: 4, Height: 4, Pitch: 4, CX: 2, CY: 2}
	if err := c.RenderFrame(v, make([]byte, 4*4*4)); err == nil {
		t.Error("rendering without an outcome table should fail")
	}
}

func TestRenderRejectsShortBuffer(t *testing.T) {
	cfg := testConfig()
	c := newTestCompute(t, cfg, solidTexture(2, 2, 1, 2, 3, 255), texture.Placeholder())

	v := View{Width: 4, Height: 4, Pitch: 4, CX: 2, CY: 2}
	if err := c.RenderFrame(v, make([]byte, 7)); err == nil {
		t.Error("a too-small destination buffer should be rejected")
	}
}

// With a solid sky, no surface texture and the lens center on the middle of
// a 4x4 frame, only the exact center pixel looks into the hole; it must
// resolve to the placeholder's transparent black, everything else to the
// sky color.
func TestSolidSkyEndToEnd(t *testing.T) {
	cfg := testConfig()
	c := newTestCompute(t, cfg, solidTexture(2, 2, 9, 99, 199, 255), texture.Placeholder())

	v := View{Width: 4, Height: 4, Pitch: 4, CX: 2, CY: 2}
	dst := render(t, c, v)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			i := (y*4 + x) * 4
			got := [4]byte{dst[i], dst[i+1], dst[i+2], dst[i+3]}
			want := [4]byte{9, 99, 199, 255}
			if x == 2 && y == 2 {
				want = [4]byte{0, 0, 0, 0}
			}
			if got != want {
				t.Errorf("pixel (%d, %d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

// A captured lookup against a 1x1 surface must resolve to its single texel
// no matter what result angle the table produced.
func TestCapturedSurfaceSingleTexel(t *testing.T) {
	cfg := testConfig()
	c := newTestCompute(t, cfg, solidTexture(2, 2, 9, 99, 199, 255), solidTexture(1, 1, 9, 8, 7, 6))

	v := View{Width: 4, Height: 4, Pitch: 4, CX: 2, CY: 2}
	dst := render(t, c, v)

	i := (2*4 + 2) * 4
	got := [4]byte{dst[i], dst[i+1], dst[i+2], dst[i+3]}
	if got != [4]byte{9, 8, 7, 6} {
		t.Errorf("center pixel: got %v, want the surface texel", got)
	}
}

// Supersampling must not alter flat regions: with a uniform sky and the lens
// center far off screen (so no sub-sample is captured), aa=1 and aa=2
// produce identical frames.
func TestSupersamplingFlatSky(t *testing.T) {
	sky := solidTexture(2, 2, 40, 120, 250, 255)

	cfg1 := testConfig()
	cfg1.Width = 8
	cfg1.Height = 8
	cfg2 := cfg1
	cfg2.Antialias = 2

	v := View{Width: 8, Height: 8, Pitch: 8, CX: -100, CY: -100}

	frame1 := render(t, newTestCompute(t, cfg1, sky, texture.Placeholder()), v)
	frame2 := render(t, newTestCompute(t, cfg2, sky, texture.Placeholder()), v)

	if !bytes.Equal(frame1, frame2) {
		t.Error("aa=1 and aa=2 frames differ on a uniform sky")
	}
}

// Rows must honor the destination pitch: pixels land at row*pitch and the
// padding bytes past each row stay untouched.
func TestRowPitchPadding(t *testing.T) {
	cfg := testConfig()
	c := newTestCompute(t, cfg, solidTexture(2, 2, 9, 99, 199, 255), texture.Placeholder())

	v := View{Width: 4, Height: 4, Pitch: 7, CX: 2, CY: 2}
	dst := render(t, c, v)

	for y := 0; y < v.Height; y++ {
		row := y * v.Pitch * 4
		for x := 0; x < v.Width; x++ {
			if a := dst[row+x*4+3]; a != 255 && !(x == 2 && y == 2) {
				t.Errorf("pixel (%d, %d) not written (alpha %d)", x, y, a)
			}
		}
		for b := row + v.Width * 4; b < row+v.Pitch*4; b++ {
			if dst[b] != 0 {
				t.Errorf("row %d: padding byte %d was written", y, b)
			}
		}
	}
}
