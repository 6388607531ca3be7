package texture

import (
	"math"
	"testing"
)

func TestPlaceholderNeverLeavesItsTexel(t *testing.T) {
	p := Placeholder()

	coords := [][2]float64{
		{0, 0}, {0.5, 0.5}, {123.4, -77.9}, {-0.001, 1.001}, {1e6, 3},
	}
	for _, c := range coords {
		r, g, b, a := p.Sample(c[0], c[1])
		if r != 0 || g != 0 || b != 0 || a != 0 {
			t.Errorf("Sample(%g, %g) = (%v, %v, %v, %v), want transparent black", c[0], c[1], r, g, b, a)
		}
	}
}

func TestSampleUniformColor(t *testing.T) {
	tex := &Texture{Width: 2, Height: 2, Pix: []byte{
		9, 99, 199, 255, 9, 99, 199, 255,
		9, 99, 199, 255, 9, 99, 199, 255,
	}}

	for _, uv := range [][2]float64{{0.1, 0.9}, {0.5, 0.5}, {-2.3, 4.7}} {
		r, g, b, a := tex.Sample(uv[0], uv[1])
		if math.Abs(r-9) > 1e-9 || math.Abs(g-99) > 1e-9 || math.Abs(b-199) > 1e-9 || math.Abs(a-255) > 1e-9 {
			t.Errorf("Sample(%g, %g) = (%v, %v, %v, %v)", uv[0], uv[1], r, g, b, a)
		}
	}
}

func TestSampleBilinear(t *testing.T) {
	// Two texels: red 0 on the left, red 100 on the right.
	tex := &Texture{Width: 2, Height: 1, Pix: []byte{
		0, 0, 0, 255, 100, 0, 0, 255,
	}}

	tests := []struct {
		name string
		u    float64
		want float64
	}{
		{"left texel center", 0.25, 0},
		{"right texel center", 0.75, 100},
		{"halfway blends evenly", 0.5, 50},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, _, _, _ := tex.Sample(tc.u, 0.5)
			if math.Abs(r-tc.want) > 1e-9 {
				t.Errorf("red at u=%g: got %v, want %v", tc.u, r, tc.want)
			}
		})
	}
}

func TestSampleRepeats(t *testing.T) {
	tex := &Texture{Width: 2, Height: 1, Pix: []byte{
		10, 0, 0, 255, 200, 0, 0, 255,
	}}

	base, _, _, _ := tex.Sample(0.25, 0.5)
	wrapped, _, _, _ := tex.Sample(1.25, 0.5)
	negative, _, _, _ := tex.Sample(-0.75, 0.5)

	if base != wrapped {
		t.Errorf("u+1 should wrap: %v != %v", wrapped, base)
	}
	if base != negative {
		t.Errorf("negative u should wrap: %v != %v", negative, base)
	}
}
