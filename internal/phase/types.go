package phase

import "math"

// Unit conversion constants for the kpc / km/s / Myr system.
const (
	// KpcMyrPerKms converts a velocity in km/s to kpc/Myr.
	KpcMyrPerKms = 1.0227121650537077e-3

	// G is the gravitational constant in kpc^3 / (Msun Myr^2).
	G = 4.498502151469552e-12
)

type Vec3 [3]float64

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v[0] * f, v[1] * f, v[2] * f}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

func (v Vec3) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Inf returns the vector with +Inf in every coordinate, used as the
// missing-value sentinel in final-state tables.
func Inf() Vec3 {
	return Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
}

// State is an instantaneous phase-space state: galactocentric position in
// kpc and velocity in km/s.
type State struct {
	Pos Vec3
	Vel Vec3
}

func (s State) Valid() bool {
	return s.Pos.IsFinite() && s.Vel.IsFinite()
}

// Kick returns the state with dv added to the velocity, position unchanged.
func (s State) Kick(dv Vec3) State {
	return State{Pos: s.Pos, Vel: s.Vel.Add(dv)}
}
