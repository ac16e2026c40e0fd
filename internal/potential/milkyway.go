package potential

import (
	"math"

	"github.com/starsweep/galpop/internal/phase"
)

// MilkyWay is a four-component Milky Way model: a Miyamoto-Nagai disk,
// Hernquist bulge and nucleus, and an NFW halo. Default parameters give a
// flat rotation curve near 220 km/s at the solar radius.
type MilkyWay struct {
	DiskMass float64 // Msun
	DiskA    float64 // kpc, radial scale length
	DiskB    float64 // kpc, vertical scale height

	BulgeMass float64 // Msun
	BulgeC    float64 // kpc

	NucleusMass float64 // Msun
	NucleusC    float64 // kpc

	HaloMass float64 // Msun, NFW scale mass
	HaloRs   float64 // kpc, NFW scale radius
}

func NewMilkyWay() *MilkyWay {
	return &MilkyWay{
		DiskMass:    6.8e10,
		DiskA:       3.0,
		DiskB:       0.28,
		BulgeMass:   5.0e9,
		BulgeC:      1.0,
		NucleusMass: 1.71e9,
		NucleusC:    0.07,
		HaloMass:    5.4e11,
		HaloRs:      15.62,
	}
}

func (mw *MilkyWay) Acceleration(pos phase.Vec3) phase.Vec3 {
	a := mw.disk(pos)
	a = a.Add(hernquist(mw.BulgeMass, mw.BulgeC, pos))
	a = a.Add(hernquist(mw.NucleusMass, mw.NucleusC, pos))
	return a.Add(mw.halo(pos))
}

func (mw *MilkyWay) disk(pos phase.Vec3) phase.Vec3 {
	x, y, z := pos[0], pos[1], pos[2]
	r2 := x*x + y*y
	bz := math.Sqrt(z*z + mw.DiskB*mw.DiskB)
	ab := mw.DiskA + bz
	d2 := r2 + ab*ab
	d3 := d2 * math.Sqrt(d2)
	gm := phase.G * mw.DiskMass
	return phase.Vec3{
		-gm * x / d3,
		-gm * y / d3,
		-gm * z * ab / (bz * d3),
	}
}

func hernquist(m, c float64, pos phase.Vec3) phase.Vec3 {
	r := pos.Norm()
	if r == 0 {
		return phase.Vec3{}
	}
	rc := r + c
	return pos.Scale(-phase.G * m / (r * rc * rc))
}

func (mw *MilkyWay) halo(pos phase.Vec3) phase.Vec3 {
	r := pos.Norm()
	if r == 0 {
		return phase.Vec3{}
	}
	x := r / mw.HaloRs
	gm := phase.G * mw.HaloMass
	// dPhi/dr for Phi = -(G M / r) ln(1 + r/rs)
	dphi := gm/(r*r)*math.Log1p(x) - gm/(r*mw.HaloRs*(1+x))
	return pos.Scale(-dphi / r)
}

func (mw *MilkyWay) Describe() string {
	return "potential milkyway\n" + describeParams(map[string]float64{
		"disk.m":    mw.DiskMass,
		"disk.a":    mw.DiskA,
		"disk.b":    mw.DiskB,
		"bulge.m":   mw.BulgeMass,
		"bulge.c":   mw.BulgeC,
		"nucleus.m": mw.NucleusMass,
		"nucleus.c": mw.NucleusC,
		"halo.m":    mw.HaloMass,
		"halo.rs":   mw.HaloRs,
	})
}
