package pop

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/starsweep/galpop/internal/evolve"
	"github.com/starsweep/galpop/internal/orbit"
	"github.com/starsweep/galpop/internal/phase"
	"github.com/starsweep/galpop/internal/phot"
	"github.com/starsweep/galpop/internal/potential"
	"github.com/starsweep/galpop/internal/sample"
)

// Phase is the driver's lifecycle state.
type Phase int

const (
	Uninitialized Phase = iota
	Sampled
	StellarEvolved
	GalacticEvolved
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Sampled:
		return "sampled"
	case StellarEvolved:
		return "stellar-evolved"
	case GalacticEvolved:
		return "galactic-evolved"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Metallicity range accepted by the stellar-evolution solver.
const (
	metallicityMin = 1e-4
	metallicityMax = 0.03
)

// Config collects the population parameters. Zero values fall back to the
// fiducial run: 8 workers, 7 Msun primary cutoff, 5 km/s dispersion,
// 12 Gyr evolution span with 1 Myr steps through the Milky Way potential.
type Config struct {
	NBinaries    int
	Processes    int
	M1Cutoff     float64 // Msun
	VDispersion  float64 // km/s
	MaxEvTime    float64 // Myr
	TimestepSize float64 // Myr
	Seed         int64

	Potential potential.Field
	Evolver   evolve.Evolver
	Settings  evolve.Settings

	QuarantineDir string
	Logger        *log.Logger

	// Progress, when set, receives per-phase completion counts.
	Progress func(phase string, done, total int)
}

// Population owns the binary tables, birth galaxy, orbits and derived
// caches. The potential field is shared read-only across all integration
// workers; nothing mutates it after construction.
type Population struct {
	NBinaries      int
	NBinariesMatch int
	Processes      int
	M1Cutoff       float64
	VDispersion    float64
	MaxEvTime      float64
	TimestepSize   float64
	Seed           int64

	Potential potential.Field
	Evolver   evolve.Evolver
	Settings  evolve.Settings

	// sampling totals
	MassSingles  float64
	MassBinaries float64
	NSinglesReq  int
	NBinReq      int

	// phase outputs
	InitialBinaries []evolve.InitialBinary
	Galaxy          *sample.Galaxy
	History         []evolve.EvolRow
	Final           []evolve.FinalRow
	InitC           []evolve.InitialBinary
	Kicks           []evolve.KickRow
	Orbits          []orbit.Orbit

	QuarantineDir string

	phase Phase

	// caches, cleared through the invalidation table
	finalRows      []evolve.FinalRow
	finalPrimary   []phase.State
	finalSecondary []phase.State
	observables    []phot.Row
	observedIn     string

	logger   *log.Logger
	progress func(string, int, int)
}

func New(cfg Config) *Population {
	if cfg.NBinaries <= 0 {
		cfg.NBinaries = 1000
	}
	if cfg.Processes <= 0 {
		cfg.Processes = 8
	}
	if cfg.M1Cutoff == 0 {
		cfg.M1Cutoff = 7
	}
	if cfg.VDispersion == 0 {
		cfg.VDispersion = 5
	}
	if cfg.MaxEvTime == 0 {
		cfg.MaxEvTime = 12000
	}
	if cfg.TimestepSize == 0 {
		cfg.TimestepSize = 1
	}
	if cfg.Potential == nil {
		cfg.Potential = potential.NewMilkyWay()
	}
	if cfg.Evolver == nil {
		cfg.Evolver = evolve.NewAnalyticEvolver()
	}
	if cfg.Settings.KickSigma == 0 && cfg.Settings.BinFrac == 0 {
		cfg.Settings = evolve.DefaultSettings()
		cfg.Settings.Seed = cfg.Seed
	}
	if cfg.QuarantineDir == "" {
		cfg.QuarantineDir = "."
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "galpop: ", log.LstdFlags)
	}

	return &Population{
		NBinaries:      cfg.NBinaries,
		NBinariesMatch: cfg.NBinaries,
		Processes:      cfg.Processes,
		M1Cutoff:       cfg.M1Cutoff,
		VDispersion:    cfg.VDispersion,
		MaxEvTime:      cfg.MaxEvTime,
		TimestepSize:   cfg.TimestepSize,
		Seed:           cfg.Seed,
		Potential:      cfg.Potential,
		Evolver:        cfg.Evolver,
		Settings:       cfg.Settings,
		QuarantineDir:  cfg.QuarantineDir,
		logger:         cfg.Logger,
		progress:       cfg.Progress,
	}
}

func (p *Population) Phase() Phase { return p.phase }

// SetPhase restores the lifecycle state of a reloaded population. It is
// meant for the persistence layer, not for skipping phases.
func (p *Population) SetPhase(ph Phase) { p.phase = ph }

// invalidate walks the dependency table after a phase transition and
// clears everything derived from the changed phase:
//
//	Sampled          -> history, final, initC, kicks, orbits + all caches
//	StellarEvolved   -> orbits, finalRows + downstream caches
//	GalacticEvolved  -> finalStates, observables
func (p *Population) invalidate(changed Phase) {
	switch changed {
	case Sampled:
		p.History = nil
		p.Final = nil
		p.InitC = nil
		p.Kicks = nil
		fallthrough
	case StellarEvolved:
		p.Orbits = nil
		p.finalRows = nil
		fallthrough
	case GalacticEvolved:
		p.finalPrimary = nil
		p.finalSecondary = nil
		p.observables = nil
		p.observedIn = ""
	}
}

// SampleInitialBinaries draws binaries until the post-cutoff count is
// known, places them in the galaxy and assigns birth velocities.
func (p *Population) SampleInitialBinaries() error {
	rng := rand.New(rand.NewSource(p.Seed))

	drawn, tot := sample.DrawBinaries(p.NBinaries, p.Settings.BinFrac, rng)
	p.MassSingles = tot.MassSingles
	p.MassBinaries = tot.MassBinaries
	p.NSinglesReq = tot.NSinglesReq
	p.NBinReq = tot.NBinReq

	matched := drawn[:0:0]
	for _, b := range drawn {
		if b.Mass1 >= p.M1Cutoff {
			matched = append(matched, b)
		}
	}
	p.NBinariesMatch = len(matched)

	p.Galaxy = sample.DrawGalaxy(p.NBinariesMatch, p.MaxEvTime, rng)
	p.Galaxy.AssignVelocities(p.Potential, p.VDispersion, rng)

	for i := range matched {
		z := p.Galaxy.Metallicity[i]
		if z < metallicityMin {
			z = metallicityMin
		}
		if z > metallicityMax {
			z = metallicityMax
		}
		matched[i].Metallicity = z
		matched[i].TPhysF = p.Galaxy.Tau[i]
	}
	p.InitialBinaries = matched

	p.phase = Sampled
	p.invalidate(Sampled)
	p.report("sample", p.NBinariesMatch, p.NBinariesMatch)
	return nil
}

// PerformStellarEvolution runs the solver over the whole batch and
// quarantines binaries with non-finite output.
func (p *Population) PerformStellarEvolution() error {
	if p.phase < Sampled {
		if len(p.InitC) > 0 {
			// reloaded population: reuse the solver's initial conditions
			p.InitialBinaries = p.InitC
			p.phase = Sampled
		} else {
			p.logger.Printf("initial binaries not yet sampled, sampling now")
			if err := p.SampleInitialBinaries(); err != nil {
				return err
			}
		}
	}

	tables, err := p.Evolver.Evolve(p.InitialBinaries, p.Settings)
	if err != nil {
		return fmt.Errorf("pop: stellar evolution: %w", err)
	}
	p.History = tables.History
	p.Final = tables.Final
	p.InitC = tables.InitC
	p.Kicks = tables.Kicks

	if err := p.quarantineNaNs(); err != nil {
		return err
	}

	p.phase = StellarEvolved
	p.invalidate(StellarEvolved)
	p.report("evolve", p.NBinariesMatch, p.NBinariesMatch)
	return nil
}

// CreatePopulation runs every phase in order with timing output.
func (p *Population) CreatePopulation() error {
	start := time.Now()
	p.logger.Printf("run for %d binaries", p.NBinaries)

	if err := p.SampleInitialBinaries(); err != nil {
		return err
	}
	p.logger.Printf("[%.1fs] sampled %d binaries with primary mass above %g Msun",
		time.Since(start).Seconds(), p.NBinariesMatch, p.M1Cutoff)

	lap := time.Now()
	if err := p.PerformStellarEvolution(); err != nil {
		return err
	}
	p.logger.Printf("[%.1fs] stellar evolution", time.Since(lap).Seconds())

	lap = time.Now()
	if err := p.PerformGalacticEvolution(); err != nil {
		return err
	}
	p.logger.Printf("[%.1fs] galactic orbits", time.Since(lap).Seconds())

	p.logger.Printf("overall: %.1fs", time.Since(start).Seconds())
	return nil
}

func (p *Population) report(phase string, done, total int) {
	if p.progress != nil {
		p.progress(phase, done, total)
	}
}
