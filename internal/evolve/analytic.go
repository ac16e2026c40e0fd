package evolve

import (
	"math"
	"math/rand"
)

// AnalyticEvolver is a toy stand-in for a real binary-evolution code. It
// uses power-law main-sequence lifetimes, fixed remnant masses and
// Maxwellian natal kicks. Results are deterministic per binary: each
// binary's draws come from a stream seeded by Settings.Seed and its
// BinNum, so removing one binary from a batch never changes another's
// outcome.
type AnalyticEvolver struct{}

func NewAnalyticEvolver() AnalyticEvolver { return AnalyticEvolver{} }

const (
	snMassThreshold = 8.0  // Msun, below this no supernova
	bhMassThreshold = 20.0 // Msun, above this the remnant is a BH
	nsMass          = 1.4  // Msun
	mergerPorbCut   = 10.0 // days
)

// msLifetime is a crude main-sequence lifetime in Myr for mass in Msun.
func msLifetime(m float64) float64 {
	return 1.0e4 * math.Pow(m, -2.5)
}

// semiMajorAxis returns a in Rsun from Kepler's third law.
func semiMajorAxis(mtot, porbDays float64) float64 {
	pYr := porbDays / 365.25
	aAU := math.Cbrt(mtot * pYr * pYr)
	return aAU * 215.032
}

// orbitalVelocity returns the relative orbital velocity scale in km/s.
func orbitalVelocity(mtot, aRsun float64) float64 {
	aAU := aRsun / 215.032
	return 29.78 * math.Sqrt(mtot/aAU)
}

func (AnalyticEvolver) Evolve(initial []InitialBinary, settings Settings) (Tables, error) {
	var t Tables
	t.InitC = append(t.InitC, initial...)

	for _, b := range initial {
		rng := rand.New(rand.NewSource(settings.Seed ^ (int64(b.BinNum)+1)*0x9e3779b9))
		evolveOne(&t, b, settings, rng)
	}
	return t, nil
}

func evolveOne(t *Tables, b InitialBinary, settings Settings, rng *rand.Rand) {
	mtot := b.Mass1 + b.Mass2
	sep := semiMajorAxis(mtot, b.Porb)

	row := EvolRow{
		BinNum: b.BinNum,
		Mass1:  b.Mass1, Mass2: b.Mass2,
		KStar1: KStarMS, KStar2: KStarMS,
		Sep: sep, BinState: StateBound,
	}
	t.History = append(t.History, row)

	// tight systems merge during the primary's evolution
	if b.Porb < mergerPorbCut {
		merged := row
		merged.Time = math.Min(0.1*msLifetime(b.Mass1), b.TPhysF)
		merged.Mass1 = b.Mass1 + b.Mass2
		merged.Mass2 = 0
		merged.KStar2 = KStarRemnant
		merged.Sep = 0
		merged.BinState = StateMerged
		t.History = append(t.History, merged)
		finish(t, b, merged)
		return
	}

	state := row
	for _, star := range []int{1, 2} {
		mass := state.Mass1
		if star == 2 {
			mass = state.Mass2
		}
		if mass < snMassThreshold {
			continue
		}
		tSN := msLifetime(mass)
		if tSN >= b.TPhysF || tSN < state.Time {
			continue
		}

		rem, kstar := nsMass, KStarNS
		if mass >= bhMassThreshold {
			rem, kstar = mass/3.0, KStarBH
		}
		kick := maxwellianKick(rng, settings.KickSigma*nsMass/rem)

		state.Time = tSN
		if star == 1 {
			state.Mass1, state.KStar1 = rem, kstar
		} else {
			state.Mass2, state.KStar2 = rem, kstar
		}

		vorb := orbitalVelocity(state.Mass1+state.Mass2, state.Sep)
		if state.BinState == StateBound && kickMag(kick) > vorb {
			state.BinState = StateDisrupted
			state.Sep = 0
			// kicked star carries the kick, companion keeps a share of
			// the orbital velocity in a random direction
			companion := maxwellianKick(rng, vorb/math.Sqrt(3))
			t.Kicks = append(t.Kicks,
				KickRow{BinNum: b.BinNum, Star: star,
					DeltaVX: kick[0], DeltaVY: kick[1], DeltaVZ: kick[2], Disrupted: true},
				KickRow{BinNum: b.BinNum, Star: other(star),
					DeltaVX: companion[0], DeltaVY: companion[1], DeltaVZ: companion[2], Disrupted: true})
		} else {
			// systemic kick while bound, or a kick to an already free star
			t.Kicks = append(t.Kicks,
				KickRow{BinNum: b.BinNum, Star: star,
					DeltaVX: kick[0], DeltaVY: kick[1], DeltaVZ: kick[2]})
		}
		t.History = append(t.History, state)
	}

	finish(t, b, state)
}

// finish appends the present-day row and the final-state table entry.
func finish(t *Tables, b InitialBinary, last EvolRow) {
	if last.Time < b.TPhysF {
		last.Time = b.TPhysF
		t.History = append(t.History, last)
	}
	t.Final = append(t.Final, FinalRow{
		BinNum: last.BinNum, Time: last.Time,
		Mass1: last.Mass1, Mass2: last.Mass2,
		KStar1: last.KStar1, KStar2: last.KStar2,
		Sep: last.Sep, BinState: last.BinState,
		Metallicity: b.Metallicity,
	})
}

func maxwellianKick(rng *rand.Rand, sigma float64) [3]float64 {
	return [3]float64{
		rng.NormFloat64() * sigma,
		rng.NormFloat64() * sigma,
		rng.NormFloat64() * sigma,
	}
}

func kickMag(k [3]float64) float64 {
	return math.Sqrt(k[0]*k[0] + k[1]*k[1] + k[2]*k[2])
}

func other(star int) int {
	if star == 1 {
		return 2
	}
	return 1
}
