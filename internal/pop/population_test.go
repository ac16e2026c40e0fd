package pop_test

import (
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/starsweep/galpop/internal/evolve"
	"github.com/starsweep/galpop/internal/orbit"
	"github.com/starsweep/galpop/internal/pop"
	"github.com/starsweep/galpop/internal/potential"
)

// nanEvolver corrupts the first final row so the quarantine path has
// something to catch.
type nanEvolver struct{}

func (nanEvolver) Evolve(initial []evolve.InitialBinary, s evolve.Settings) (evolve.Tables, error) {
	t, err := evolve.NewAnalyticEvolver().Evolve(initial, s)
	if err == nil && len(t.Final) > 0 {
		t.Final[0].Sep = math.NaN()
	}
	return t, err
}

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func smallConfig(seed int64) pop.Config {
	return pop.Config{
		NBinaries:    30,
		Processes:    2,
		M1Cutoff:     0.1, // keep every binary
		VDispersion:  5,
		MaxEvTime:    500,
		TimestepSize: 1,
		Seed:         seed,
		Potential:    potential.Zero{},
		Logger:       quiet(),
	}
}

var _ = Describe("Population", func() {
	Describe("sampling", func() {
		It("is deterministic under a fixed seed", func() {
			a := pop.New(smallConfig(42))
			b := pop.New(smallConfig(42))
			Expect(a.SampleInitialBinaries()).To(Succeed())
			Expect(b.SampleInitialBinaries()).To(Succeed())

			Expect(a.InitialBinaries).To(Equal(b.InitialBinaries))
			Expect(a.Galaxy).To(Equal(b.Galaxy))
			Expect(a.NBinariesMatch).To(Equal(b.NBinariesMatch))
		})

		It("applies the primary mass cutoff", func() {
			cfg := smallConfig(1)
			cfg.M1Cutoff = 7
			p := pop.New(cfg)
			Expect(p.SampleInitialBinaries()).To(Succeed())

			for _, b := range p.InitialBinaries {
				Expect(b.Mass1).To(BeNumerically(">=", 7))
			}
			Expect(p.NBinariesMatch).To(Equal(len(p.InitialBinaries)))
		})

		It("aligns the galaxy with the binary table", func() {
			p := pop.New(smallConfig(7))
			Expect(p.SampleInitialBinaries()).To(Succeed())

			Expect(p.Galaxy.Len()).To(Equal(p.NBinariesMatch))
			for i, b := range p.InitialBinaries {
				Expect(b.TPhysF).To(Equal(p.Galaxy.Tau[i]))
				Expect(b.Metallicity).To(BeNumerically(">=", 1e-4))
				Expect(b.Metallicity).To(BeNumerically("<=", 0.03))
			}
			Expect(p.Phase()).To(Equal(pop.Sampled))
		})
	})

	Describe("stellar evolution", func() {
		It("walks the phase machine and fills the tables", func() {
			p := pop.New(smallConfig(42))
			Expect(p.PerformStellarEvolution()).To(Succeed())

			Expect(p.Phase()).To(Equal(pop.StellarEvolved))
			Expect(p.InitC).To(HaveLen(p.NBinariesMatch))
			Expect(p.Final).To(HaveLen(p.NBinariesMatch))
			Expect(p.History).NotTo(BeEmpty())
		})

		It("invalidates downstream results on re-sampling", func() {
			p := pop.New(smallConfig(42))
			Expect(p.PerformStellarEvolution()).To(Succeed())
			Expect(p.History).NotTo(BeEmpty())

			Expect(p.SampleInitialBinaries()).To(Succeed())
			Expect(p.History).To(BeNil())
			Expect(p.Final).To(BeNil())
			Expect(p.Orbits).To(BeNil())
		})

		It("quarantines binaries with non-finite output", func() {
			dir := GinkgoT().TempDir()
			cfg := smallConfig(42)
			cfg.Evolver = nanEvolver{}
			cfg.QuarantineDir = dir
			p := pop.New(cfg)

			Expect(p.SampleInitialBinaries()).To(Succeed())
			before := p.NBinariesMatch
			Expect(p.PerformStellarEvolution()).To(Succeed())

			Expect(p.NBinariesMatch).To(Equal(before - 1))
			Expect(p.Final).To(HaveLen(before - 1))
			Expect(p.InitC).To(HaveLen(before - 1))
			Expect(p.Galaxy.Len()).To(Equal(before - 1))

			entries, err := os.ReadDir(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Name()).To(HavePrefix("quarantine-"))

			data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Count(string(data), "\n")).To(BeNumerically(">", 1))
		})

		It("keeps the tables index-aligned after quarantine", func() {
			cfg := smallConfig(42)
			cfg.Evolver = nanEvolver{}
			cfg.QuarantineDir = GinkgoT().TempDir()
			p := pop.New(cfg)
			Expect(p.PerformStellarEvolution()).To(Succeed())

			for i, b := range p.InitC {
				Expect(p.Final[i].BinNum).To(Equal(b.BinNum))
			}
		})
	})

	Describe("galactic evolution", func() {
		It("produces one orbit per surviving binary", func() {
			p := pop.New(smallConfig(42))
			Expect(p.PerformGalacticEvolution()).To(Succeed())

			Expect(p.Phase()).To(Equal(pop.GalacticEvolved))
			Expect(p.Orbits).To(HaveLen(p.NBinariesMatch))
			for _, o := range p.Orbits {
				Expect(o.Kind).NotTo(Equal(orbit.Missing))
			}
		})

		It("gives identical results for any worker count", func() {
			serial := pop.New(smallConfig(42))
			serial.Processes = 1
			parallel := pop.New(smallConfig(42))
			parallel.Processes = 8

			Expect(serial.PerformGalacticEvolution()).To(Succeed())
			Expect(parallel.PerformGalacticEvolution()).To(Succeed())
			Expect(parallel.Orbits).To(Equal(serial.Orbits))
		})

		It("ends every trajectory at present day", func() {
			p := pop.New(smallConfig(42))
			Expect(p.PerformGalacticEvolution()).To(Succeed())

			for _, o := range p.Orbits {
				if o.Kind == orbit.Missing {
					continue
				}
				last := o.Primary.Times[o.Primary.Len()-1]
				Expect(last).To(Equal(p.MaxEvTime))
			}
		})

		It("reports progress through the callback", func() {
			var phases []string
			cfg := smallConfig(42)
			cfg.Progress = func(phase string, done, total int) {
				phases = append(phases, phase)
			}
			cfg.Processes = 1 // keep the callback single-threaded
			p := pop.New(cfg)
			Expect(p.CreatePopulation()).To(Succeed())

			Expect(phases).To(ContainElement("sample"))
			Expect(phases).To(ContainElement("evolve"))
			Expect(phases).To(ContainElement("orbits"))
		})
	})

	Describe("derived results", func() {
		It("computes final states with the +Inf sentinel convention", func() {
			p := pop.New(smallConfig(42))
			primary, secondary, err := p.FinalStates()
			Expect(err).NotTo(HaveOccurred())
			Expect(primary).To(HaveLen(p.NBinariesMatch))
			Expect(secondary).To(HaveLen(p.NBinariesMatch))

			for i, o := range p.Orbits {
				switch o.Kind {
				case orbit.Bound:
					Expect(primary[i].Valid()).To(BeTrue())
					Expect(secondary[i].Pos.IsFinite()).To(BeFalse())
				case orbit.Disrupted:
					Expect(primary[i].Valid()).To(BeTrue())
					Expect(secondary[i].Valid()).To(BeTrue())
				case orbit.Missing:
					Expect(primary[i].Pos.IsFinite()).To(BeFalse())
				}
			}
		})

		It("reduces the history to one final row per binary", func() {
			p := pop.New(smallConfig(42))
			rows, err := p.FinalHistoryRows()
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(p.NBinariesMatch))

			seen := map[int]bool{}
			for _, r := range rows {
				Expect(seen[r.BinNum]).To(BeFalse())
				seen[r.BinNum] = true
			}
		})

		It("caches observables per filter set", func() {
			p := pop.New(smallConfig(42))
			a, err := p.Observables([]string{"G"})
			Expect(err).NotTo(HaveOccurred())
			Expect(a).To(HaveLen(p.NBinariesMatch))

			b, err := p.Observables([]string{"G"})
			Expect(err).NotTo(HaveOccurred())
			// same backing slice: the cache answered
			Expect(&b[0]).To(BeIdenticalTo(&a[0]))

			c, err := p.Observables([]string{"J", "K"})
			Expect(err).NotTo(HaveOccurred())
			Expect(c[0].App1).To(HaveKey("J"))
			Expect(c[0].App1).NotTo(HaveKey("G"))
		})
	})
})
