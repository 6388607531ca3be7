package sim

import "math"

// Geometrized units with c = 1. The event horizon sits at 2*GM.
const GM = 10.0

const (
	// Euler step and iteration cap for the integrator.
	timeStep = 0.01
	maxSteps = 1000000

	// Integration stops once a ray is this far out; from there its direction
	// no longer changes meaningfully.
	escapeRadius = 500.0
)

// captureRadius sits a hair above the horizon. Euler stepping blows up if
// integration continues all the way down to 2*GM.
const captureRadius = 2*GM + 0.0001

// Second derivative of r along a null geodesic.
func d2r(r, dt, dr, dtheta float64) float64 {
	return -GM/(r*r*r)*(r-2*GM)*dt*dt +
		GM/(r*(r-2*GM))*dr*dr +
		(r-2*GM)*dtheta*dtheta
}

// Second derivative of theta.
func d2theta(r, dr, dtheta float64) float64 {
	return -2.0 / r * dtheta * dr
}

// nullDt returns the dt that keeps the path null for the given r, dr and
// dtheta. Recomputing it every step keeps the trajectory from drifting off
// the light cone.
func nullDt(r, dr, dtheta float64) float64 {
	q := 1.0 - 2.0*GM/r
	return math.Sqrt(dr*dr/(q*q) + r*r*dtheta*dtheta/q)
}

// TraceRay integrates a photon launched inward from startRadius. The slope
// argument is the transverse component of the launch direction relative to a
// unit radial component; slope 0 aims straight at the hole.
//
// Captured rays report the azimuthal position angle at horizon crossing.
// Escaping rays report the angle of their outgoing direction.
func TraceRay(slope, startRadius float64) (resultAngle float64, captured bool) {
	dx := slope
	dz := 1.0

	r := startRadius
	theta := math.Pi // launch point is on the negative z axis

	// Launch direction in Schwarzschild coordinates.
	dr := -startRadius * dz / r
	dtheta := -startRadius * dx / (r * r)

	hit := false
	for t := 0; t < maxSteps; t++ {
		dt := nullDt(r, dr, dtheta)

		ddr := d2r(r, dt, dr, dtheta)
		ddtheta := d2theta(r, dr, dtheta)

		dr += timeStep * ddr
		dtheta += timeStep * ddtheta

		r += timeStep * dr
		theta += timeStep * dtheta

		if r <= captureRadius {
			hit = true
			break
		}
		if r > escapeRadius {
			break
		}
	}

	if hit {
		return math.Pi/2 - theta, true
	}

	// Convert the final spherical velocity back to rectangular components.
	outX := r*math.Cos(theta)*dtheta + math.Sin(theta)*dr
	outZ := -r*math.Sin(theta)*dtheta + math.Cos(theta)*dr
	return math.Atan2(outZ, outX), false
}
