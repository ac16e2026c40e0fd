package potential

import (
	"math"

	"github.com/starsweep/galpop/internal/phase"
)

// Field is a time-independent gravitational potential field.
type Field interface {
	// Acceleration returns the gravitational acceleration at pos
	// in kpc/Myr^2.
	Acceleration(pos phase.Vec3) phase.Vec3

	// Describe returns the parameter description used by the on-disk
	// potential sidecar file.
	Describe() string
}

// CircularVelocity returns the circular velocity in km/s supported by the
// field at the cylindrical radius of pos, evaluated in the z=0 plane.
func CircularVelocity(f Field, pos phase.Vec3) float64 {
	r := math.Hypot(pos[0], pos[1])
	if r == 0 {
		return 0
	}
	a := f.Acceleration(phase.Vec3{pos[0], pos[1], 0})
	// radially inward component
	aR := -(a[0]*pos[0] + a[1]*pos[1]) / r
	if aR <= 0 {
		return 0
	}
	return math.Sqrt(r*aR) / phase.KpcMyrPerKms
}

// Zero is the empty field. Useful for tests: orbits through it are
// straight lines.
type Zero struct{}

func (Zero) Acceleration(phase.Vec3) phase.Vec3 { return phase.Vec3{} }

func (Zero) Describe() string { return "potential zero\n" }

// PointMass is a Keplerian point mass at the origin.
type PointMass struct {
	Mass float64 // Msun
}

func (p PointMass) Acceleration(pos phase.Vec3) phase.Vec3 {
	r := pos.Norm()
	if r == 0 {
		return phase.Vec3{}
	}
	return pos.Scale(-phase.G * p.Mass / (r * r * r))
}

func (p PointMass) Describe() string {
	return "potential pointmass\n" + describeParams(map[string]float64{"m": p.Mass})
}
