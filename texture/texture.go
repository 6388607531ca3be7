package texture

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"os"

	_ "image/jpeg"
	_ "image/png"
)

// Texture is an immutable RGBA image. Sampling uses normalized coordinates,
// repeat addressing and bilinear filtering, matching the device sampler the
// render kernel uses.
type Texture struct {
	Width  int
	Height int
	Pix    []byte // 4 bytes per texel, RGBA order
}

// Load decodes an image file into a texture. PNG and JPEG are supported.
func Load(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", path, err)
	}

	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	return &Texture{Width: b.Dx(), Height: b.Dy(), Pix: rgba.Pix}, nil
}

// Placeholder is the 1x1 transparent black surface used when no event
// horizon texture is supplied.
func Placeholder() *Texture {
	return &Texture{Width: 1, Height: 1, Pix: []byte{0, 0, 0, 0}}
}

// texel fetches one texel with repeat wrapping on both axes.
func (t *Texture) texel(x, y int) (r, g, b, a float64) {
	x = ((x % t.Width) + t.Width) % t.Width
	y = ((y % t.Height) + t.Height) % t.Height
	i := (y*t.Width + x) * 4
	return float64(t.Pix[i]), float64(t.Pix[i+1]), float64(t.Pix[i+2]), float64(t.Pix[i+3])
}

// Sample returns the bilinearly filtered color at normalized coordinates
// (u, v). Coordinates outside [0,1) wrap, including negative ones.
func (t *Texture) Sample(u, v float64) (r, g, b, a float64) {
	x := u*float64(t.Width) - 0.5
	y := v*float64(t.Height) - 0.5

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	r00, g00, b00, a00 := t.texel(x0, y0)
	r10, g10, b10, a10 := t.texel(x0+1, y0)
	r01, g01, b01, a01 := t.texel(x0, y0+1)
	r11, g11, b11, a11 := t.texel(x0+1, y0+1)

	lerp2 := func(c00, c10, c01, c11 float64) float64 {
		top := c00*(1-fx) + c10*fx
		bot := c01*(1-fx) + c11*fx
		return top*(1-fy) + bot*fy
	}

	return lerp2(r00, r10, r01, r11),
		lerp2(g00, g10, g01, g11),
		lerp2(b00, b10, b01, b11),
		lerp2(a00, a10, a01, a11)
}
