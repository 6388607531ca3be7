package gpu

import "math"

// renderRow shades every pixel of row y, averaging an aa x aa grid of
// deterministic sub-samples per pixel.
func (c *CPUCompute) renderRow(v View, y int, dst []byte) {
	aa := c.cfg.Antialias
	inv := 1.0 / float64(aa*aa)
	halfW := float64(v.Width) / 2

	// Moving the lens center pans the sky: horizontal position rotates the
	// look direction about the vertical axis, vertical offset from the
	// screen middle tilts it.
	xPan := float64(v.CX) / c.cfg.RotationScale
	yPan := (float64(v.CY) - float64(v.Height)/2) / c.cfg.RotationScale

	for x := 0; x < v.Width; x++ {
		var sr, sg, sb, sa float64
		for ax := 0; ax < aa; ax++ {
			for ay := 0; ay < aa; ay++ {
				sx := float64(x) + float64(ax)/float64(aa)
				sy := float64(y) + float64(ay)/float64(aa)

				// Sub-sample position relative to the lens center, both
				// axes normalized by the half width so pixels stay square.
				px := (sx - float64(v.CX)) / halfW
				py := (sy - float64(v.CY)) / halfW

				r, g, b, a := c.shade(px, py, xPan, yPan)
				sr += r
				sg += g
				sb += b
				sa += a
			}
		}

		i := (y*v.Pitch + x) * 4
		dst[i] = clampByte(sr * inv)
		dst[i+1] = clampByte(sg * inv)
		dst[i+2] = clampByte(sb * inv)
		dst[i+3] = clampByte(sa * inv)
	}
}

// shade resolves a single sub-sample: screen distance maps into the table's
// incidence-angle domain, the table decides capture vs escape, and the
// matching texture is sampled along the lensed look direction.
func (c *CPUCompute) shade(px, py, xPan, yPan float64) (r, g, b, a float64) {
	screenAngle := math.Hypot(px, py) * c.cfg.FOVScale
	pos := (screenAngle - c.cfg.MinAngle) / (c.cfg.MaxAngle - c.cfg.MinAngle) * float64(c.table.Size())

	angle32, captured := c.table.Lookup(pos)
	angleOut := float64(angle32)

	pixelAngle := math.Atan2(py, px)

	// Start on the equator at the result angle, then swing the direction
	// around the optical axis by the sub-sample's polar angle.
	lx := math.Cos(angleOut)
	ly := math.Sin(angleOut)
	lz := 0.0
	lx, lz = math.Cos(pixelAngle)*lx+math.Sin(pixelAngle)*lz,
		-math.Sin(pixelAngle)*lx+math.Cos(pixelAngle)*lz

	// Apply the pan rotations from the lens center.
	ly, lz = math.Cos(yPan)*ly+math.Sin(yPan)*lz,
		-math.Sin(yPan)*ly+math.Cos(yPan)*lz
	lx, ly = math.Cos(xPan)*lx+math.Sin(xPan)*ly,
		-math.Sin(xPan)*lx+math.Cos(xPan)*ly

	if lz > 1 {
		lz = 1
	} else if lz < -1 {
		lz = -1
	}
	phi := math.Acos(lz) / math.Pi
	theta := (math.Atan2(ly, lx) + math.Pi) / (2 * math.Pi)

	if captured {
		return c.surface.Sample(theta, phi)
	}
	// Negated here and not above: we see the front of the event horizon but
	// the back of the sky sphere.
	return c.sky.Sample(-theta, phi)
}

func clampByte(v float64) byte {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
