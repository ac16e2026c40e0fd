package sample

import (
	"math"
	"math/rand"

	"github.com/starsweep/galpop/internal/evolve"
)

// IMF and orbital-parameter distribution constants.
const (
	imfMin   = 0.08  // Msun
	imfBreak = 0.5   // Msun
	imfMax   = 150.0 // Msun
	imfA1    = 1.3   // low-mass slope
	imfA2    = 2.3   // high-mass slope

	logPorbMin   = 0.15 // log10 days
	logPorbMax   = 5.5
	logPorbSlope = 0.55

	eccMax   = 0.9
	eccSlope = 0.42
)

// Totals records what the sampler had to draw to deliver the requested
// number of binaries.
type Totals struct {
	MassSingles  float64
	MassBinaries float64
	NSinglesReq  int
	NBinReq      int
}

// powerlaw draws from pdf(x) ~ x^-alpha on [xmin, xmax].
func powerlaw(rng *rand.Rand, xmin, xmax, alpha float64) float64 {
	u := rng.Float64()
	p := 1 - alpha
	lo := math.Pow(xmin, p)
	hi := math.Pow(xmax, p)
	return math.Pow(lo+u*(hi-lo), 1/p)
}

// kroupa draws a primary mass from the two-segment Kroupa (2001) IMF.
func kroupa(rng *rand.Rand) float64 {
	// segment weights from the analytic integrals, continuous at the break
	w1 := (math.Pow(imfBreak, 1-imfA1) - math.Pow(imfMin, 1-imfA1)) / (1 - imfA1)
	w2 := math.Pow(imfBreak, imfA2-imfA1) *
		(math.Pow(imfMax, 1-imfA2) - math.Pow(imfBreak, 1-imfA2)) / (1 - imfA2)
	if rng.Float64() < w1/(w1+w2) {
		return powerlaw(rng, imfMin, imfBreak, imfA1)
	}
	return powerlaw(rng, imfBreak, imfMax, imfA2)
}

// DrawBinaries samples systems until n binaries exist, drawing single
// stars alongside according to binFrac. Only the binaries are returned;
// the singles contribute to the totals so the population can be
// normalised to a star-formation mass.
func DrawBinaries(n int, binFrac float64, rng *rand.Rand) ([]evolve.InitialBinary, Totals) {
	binaries := make([]evolve.InitialBinary, 0, n)
	var tot Totals

	for len(binaries) < n {
		m1 := kroupa(rng)
		if rng.Float64() >= binFrac {
			tot.MassSingles += m1
			tot.NSinglesReq++
			continue
		}

		qmin := imfMin / m1
		q := qmin + rng.Float64()*(1-qmin)
		m2 := q * m1

		logP := powerlaw(rng, logPorbMin, logPorbMax, logPorbSlope)
		ecc := powerlaw(rng, 1e-4, eccMax, eccSlope)

		tot.MassBinaries += m1 + m2
		tot.NBinReq++
		binaries = append(binaries, evolve.InitialBinary{
			BinNum: len(binaries),
			Mass1:  m1,
			Mass2:  m2,
			Porb:   math.Pow(10, logP),
			Ecc:    ecc,
		})
	}
	return binaries, tot
}
