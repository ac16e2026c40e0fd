// Package phot computes present-day photometric observables from the final
// stellar states and positions. It is a pure function of its inputs: no
// population state is read or written.
package phot

import (
	"math"

	"github.com/starsweep/galpop/internal/evolve"
	"github.com/starsweep/galpop/internal/phase"
)

// Sun's galactocentric position in kpc.
var sunPosition = phase.Vec3{-8.122, 0, 0.0208}

const mBolSun = 4.74

// Crude bolometric corrections per filter.
var corrections = map[string]float64{
	"J":  -0.90,
	"H":  -1.05,
	"K":  -1.10,
	"G":  -0.25,
	"BP": -0.10,
	"RP": -0.45,
}

// Row holds the observables of one binary. For bound and merged systems
// only the first-component columns are populated; for disrupted systems
// each component carries its own magnitudes.
type Row struct {
	BinNum  int
	AbsBol1 float64
	AbsBol2 float64
	App1    map[string]float64
	App2    map[string]float64
}

// Observables computes apparent magnitudes in the requested filters.
// Non-luminous remnants and missing components come out as +Inf, matching
// the final-state sentinel convention so a single inequality masks both.
func Observables(final []evolve.FinalRow, primary, secondary []phase.State, filters []string) []Row {
	out := make([]Row, len(final))
	for i, fr := range final {
		row := Row{
			BinNum: fr.BinNum,
			App1:   make(map[string]float64, len(filters)),
			App2:   make(map[string]float64, len(filters)),
		}

		if fr.BinState == evolve.StateDisrupted {
			row.AbsBol1 = absBol(fr.Mass1, fr.KStar1)
			row.AbsBol2 = absBol(fr.Mass2, fr.KStar2)
		} else {
			// bound or merged: combined light in the first component
			row.AbsBol1 = combineMags(absBol(fr.Mass1, fr.KStar1), absBol(fr.Mass2, fr.KStar2))
			row.AbsBol2 = math.Inf(1)
		}

		d1 := distanceModulus(primary[i])
		d2 := distanceModulus(secondary[i])
		for _, f := range filters {
			bc := corrections[f]
			row.App1[f] = row.AbsBol1 + bc + d1
			row.App2[f] = row.AbsBol2 + bc + d2
		}
		out[i] = row
	}
	return out
}

// absBol is the absolute bolometric magnitude from a mass-luminosity
// relation. Compact remnants and massless companions are dark.
func absBol(mass float64, kstar int) float64 {
	if mass <= 0 || kstar >= evolve.KStarNS {
		return math.Inf(1)
	}
	lum := math.Pow(mass, 3.5)
	return mBolSun - 2.5*math.Log10(lum)
}

func combineMags(m1, m2 float64) float64 {
	f := math.Pow(10, -0.4*m1) + math.Pow(10, -0.4*m2)
	if f == 0 {
		return math.Inf(1)
	}
	return -2.5 * math.Log10(f)
}

// distanceModulus from the sun to the state's position. Infinite
// (missing-sentinel) positions stay infinite.
func distanceModulus(s phase.State) float64 {
	if !s.Pos.IsFinite() {
		return math.Inf(1)
	}
	dPc := s.Pos.Sub(sunPosition).Norm() * 1e3
	if dPc <= 0 {
		dPc = 1e-3
	}
	return 5 * math.Log10(dPc/10)
}
