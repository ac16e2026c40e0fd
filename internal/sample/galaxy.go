package sample

import (
	"math"
	"math/rand"

	"github.com/starsweep/galpop/internal/phase"
	"github.com/starsweep/galpop/internal/potential"
)

// Disk model constants.
const (
	scaleLength = 2.6  // kpc, exponential radial scale
	scaleHeight = 0.3  // kpc, sech^2 vertical scale
	maxRadius   = 30.0 // kpc, truncation

	fehGradient  = -0.075 // dex/kpc
	fehSolarR    = 8.122  // kpc
	fehScatter   = 0.15   // dex
	metallicityZ = 0.014  // solar metal fraction reference
)

// Galaxy holds the per-binary birth kinematics in cylindrical
// galactocentric coordinates, index-aligned with the binary tables.
type Galaxy struct {
	Rho         []float64 // kpc
	Phi         []float64 // rad
	Z           []float64 // kpc
	Tau         []float64 // Myr, birth lookback time
	Metallicity []float64
	VR          []float64 // km/s
	VT          []float64 // km/s
	VZ          []float64 // km/s
}

func (g *Galaxy) Len() int { return len(g.Rho) }

// DrawGalaxy samples n birth places and times. Birth lookback times are
// uniform on [0, maxEvTime]; metallicities follow a radial gradient with
// scatter.
func DrawGalaxy(n int, maxEvTime float64, rng *rand.Rand) *Galaxy {
	g := &Galaxy{
		Rho:         make([]float64, n),
		Phi:         make([]float64, n),
		Z:           make([]float64, n),
		Tau:         make([]float64, n),
		Metallicity: make([]float64, n),
		VR:          make([]float64, n),
		VT:          make([]float64, n),
		VZ:          make([]float64, n),
	}
	for i := 0; i < n; i++ {
		r := maxRadius + 1
		for r > maxRadius {
			r = -scaleLength * math.Log(1-rng.Float64())
		}
		g.Rho[i] = r
		g.Phi[i] = 2 * math.Pi * rng.Float64()
		g.Z[i] = scaleHeight * math.Atanh(2*rng.Float64()-1)
		g.Tau[i] = maxEvTime * rng.Float64()

		feh := fehGradient*(r-fehSolarR) + rng.NormFloat64()*fehScatter
		g.Metallicity[i] = metallicityZ * math.Pow(10, feh)
	}
	return g
}

// AssignVelocities sets each binary's birth velocity to the local circular
// velocity plus isotropic dispersion (total dispersion split evenly over
// the three cylindrical components).
func (g *Galaxy) AssignVelocities(f potential.Field, dispersion float64, rng *rand.Rand) {
	sigma := dispersion / math.Sqrt(3)
	for i := range g.Rho {
		pos := g.Position(i)
		vc := potential.CircularVelocity(f, pos)
		g.VR[i] = rng.NormFloat64() * sigma
		g.VT[i] = vc + rng.NormFloat64()*sigma
		g.VZ[i] = rng.NormFloat64() * sigma
	}
}

// Position returns the Cartesian birth position of binary i.
func (g *Galaxy) Position(i int) phase.Vec3 {
	sin, cos := math.Sincos(g.Phi[i])
	return phase.Vec3{g.Rho[i] * cos, g.Rho[i] * sin, g.Z[i]}
}

// PhaseState returns the full Cartesian birth state of binary i,
// converting the cylindrical velocity components.
func (g *Galaxy) PhaseState(i int) phase.State {
	sin, cos := math.Sincos(g.Phi[i])
	return phase.State{
		Pos: g.Position(i),
		Vel: phase.Vec3{
			g.VR[i]*cos - g.VT[i]*sin,
			g.VR[i]*sin + g.VT[i]*cos,
			g.VZ[i],
		},
	}
}

// Filter keeps only the entries where keep is true, preserving relative
// order across every per-binary array.
func (g *Galaxy) Filter(keep []bool) {
	w := 0
	for i := range keep {
		if !keep[i] {
			continue
		}
		g.Rho[w] = g.Rho[i]
		g.Phi[w] = g.Phi[i]
		g.Z[w] = g.Z[i]
		g.Tau[w] = g.Tau[i]
		g.Metallicity[w] = g.Metallicity[i]
		g.VR[w] = g.VR[i]
		g.VT[w] = g.VT[i]
		g.VZ[w] = g.VZ[i]
		w++
	}
	g.Rho = g.Rho[:w]
	g.Phi = g.Phi[:w]
	g.Z = g.Z[:w]
	g.Tau = g.Tau[:w]
	g.Metallicity = g.Metallicity[:w]
	g.VR = g.VR[:w]
	g.VT = g.VT[:w]
	g.VZ = g.VZ[:w]
}
