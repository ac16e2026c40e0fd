package evolve

// Stellar type codes, following the usual binary-evolution convention for
// the types this module cares about.
const (
	KStarMS      = 1
	KStarNS      = 13
	KStarBH      = 14
	KStarRemnant = 15
)

// Binary-state flag carried on history rows.
const (
	StateBound     = 0
	StateMerged    = 1
	StateDisrupted = 2
)

// InitialBinary is one row of the initial binary table.
type InitialBinary struct {
	BinNum      int
	Mass1       float64 // Msun
	Mass2       float64 // Msun
	Porb        float64 // days
	Ecc         float64
	Metallicity float64
	TPhysF      float64 // Myr, evolution span (birth lookback time)
}

// EvolRow is one row of the evolutionary history table, ordered by Time
// within each binary.
type EvolRow struct {
	BinNum   int
	Time     float64 // Myr since birth
	Mass1    float64
	Mass2    float64
	KStar1   int
	KStar2   int
	Sep      float64 // Rsun
	BinState int
}

// FinalRow is one row of the final stellar state table.
type FinalRow struct {
	BinNum      int
	Time        float64
	Mass1       float64
	Mass2       float64
	KStar1      int
	KStar2      int
	Sep         float64
	BinState    int
	Metallicity float64
}

// KickRow records one natal kick. When a kick unbinds the binary the
// solver emits one row per component at the same epoch, both flagged
// Disrupted, carrying each component's velocity change.
type KickRow struct {
	BinNum    int
	Star      int // 1 or 2
	DeltaVX   float64
	DeltaVY   float64
	DeltaVZ   float64
	Disrupted bool
}

// Tables is the batch output of a solver run.
type Tables struct {
	History []EvolRow
	Final   []FinalRow
	InitC   []InitialBinary
	Kicks   []KickRow
}

// Evolver is the external stellar-evolution solver contract.
type Evolver interface {
	Evolve(initial []InitialBinary, settings Settings) (Tables, error)
}

// Settings holds the solver knobs plus a free-form block passed through to
// persistence untouched.
type Settings struct {
	KickSigma float64 `yaml:"kick_sigma" json:"kick_sigma"` // Maxwellian dispersion, km/s
	BinFrac   float64 `yaml:"binfrac" json:"binfrac"`
	ZSun      float64 `yaml:"zsun" json:"zsun"`
	Seed      int64   `yaml:"seed" json:"seed"`

	Extra map[string]string `yaml:"extra,omitempty" json:"extra,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		KickSigma: 265.0,
		BinFrac:   0.5,
		ZSun:      0.014,
		Seed:      1,
	}
}
