package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/starsweep/galpop/internal/evolve"
	"github.com/starsweep/galpop/internal/orbit"
	"github.com/starsweep/galpop/internal/pop"
	"github.com/starsweep/galpop/internal/potential"
)

// ErrExists is returned when the target directory already holds a saved
// population and overwrite was not requested.
var ErrExists = errors.New("storage: population already exists")

const (
	paramsFile    = "params.json"
	historyFile   = "bpp.csv"
	finalFile     = "bcm.csv"
	initCFile     = "initC.csv"
	kicksFile     = "kick_info.csv"
	galaxyFile    = "initial_galaxy.csv"
	potentialFile = "potential.txt"
	orbitsFile    = "orbits.json"
)

type params struct {
	NBinaries      int             `json:"n_binaries"`
	NBinariesMatch int             `json:"n_binaries_match"`
	Processes      int             `json:"processes"`
	M1Cutoff       float64         `json:"m1_cutoff"`
	VDispersion    float64         `json:"v_dispersion"`
	MaxEvTime      float64         `json:"max_ev_time"`
	TimestepSize   float64         `json:"timestep_size"`
	MassSingles    float64         `json:"mass_singles"`
	MassBinaries   float64         `json:"mass_binaries"`
	NSinglesReq    int             `json:"n_singles_req"`
	NBinReq        int             `json:"n_bin_req"`
	Seed           int64           `json:"seed"`
	Phase          int             `json:"phase"`
	Settings       evolve.Settings `json:"settings"`
}

type trajRec struct {
	T []float64    `json:"t"`
	X [][6]float64 `json:"x"`
}

type orbitRec struct {
	Kind      string   `json:"kind"`
	Primary   *trajRec `json:"primary,omitempty"`
	Secondary *trajRec `json:"secondary,omitempty"`
}

func fstr(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// Save writes p under dir. With overwrite false an existing dir is
// refused, never truncated.
func Save(dir string, p *pop.Population, overwrite bool) error {
	if _, err := os.Stat(dir); err == nil {
		if !overwrite {
			return fmt.Errorf("%w: %s (pass overwrite to replace)", ErrExists, dir)
		}
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	if err := writeParams(filepath.Join(dir, paramsFile), p); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, historyFile), historyHeader, historyRecords(p.History)); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, finalFile), finalHeader, finalRecords(p.Final)); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, initCFile), initHeader, initRecords(p.InitC)); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, kicksFile), kickHeader, kickRecords(p.Kicks)); err != nil {
		return err
	}
	if err := writeGalaxy(filepath.Join(dir, galaxyFile), p); err != nil {
		return err
	}
	if err := potential.Save(p.Potential, filepath.Join(dir, potentialFile)); err != nil {
		return err
	}
	return writeOrbits(filepath.Join(dir, orbitsFile), p.Orbits)
}

func writeParams(path string, p *pop.Population) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(params{
		NBinaries:      p.NBinaries,
		NBinariesMatch: p.NBinariesMatch,
		Processes:      p.Processes,
		M1Cutoff:       p.M1Cutoff,
		VDispersion:    p.VDispersion,
		MaxEvTime:      p.MaxEvTime,
		TimestepSize:   p.TimestepSize,
		MassSingles:    p.MassSingles,
		MassBinaries:   p.MassBinaries,
		NSinglesReq:    p.NSinglesReq,
		NBinReq:        p.NBinReq,
		Seed:           p.Seed,
		Phase:          int(p.Phase()),
		Settings:       p.Settings,
	})
}

func writeCSV(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

var historyHeader = []string{"bin_num", "tphys", "mass_1", "mass_2", "kstar_1", "kstar_2", "sep", "bin_state"}

func historyRecords(rows []evolve.EvolRow) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{
			strconv.Itoa(r.BinNum), fstr(r.Time), fstr(r.Mass1), fstr(r.Mass2),
			strconv.Itoa(r.KStar1), strconv.Itoa(r.KStar2), fstr(r.Sep), strconv.Itoa(r.BinState),
		}
	}
	return out
}

var finalHeader = []string{"bin_num", "tphys", "mass_1", "mass_2", "kstar_1", "kstar_2", "sep", "bin_state", "metallicity"}

func finalRecords(rows []evolve.FinalRow) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{
			strconv.Itoa(r.BinNum), fstr(r.Time), fstr(r.Mass1), fstr(r.Mass2),
			strconv.Itoa(r.KStar1), strconv.Itoa(r.KStar2), fstr(r.Sep), strconv.Itoa(r.BinState),
			fstr(r.Metallicity),
		}
	}
	return out
}

var initHeader = []string{"bin_num", "mass_1", "mass_2", "porb", "ecc", "metallicity", "tphysf"}

func initRecords(rows []evolve.InitialBinary) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{
			strconv.Itoa(r.BinNum), fstr(r.Mass1), fstr(r.Mass2), fstr(r.Porb),
			fstr(r.Ecc), fstr(r.Metallicity), fstr(r.TPhysF),
		}
	}
	return out
}

var kickHeader = []string{"bin_num", "star", "dvx", "dvy", "dvz", "disrupted"}

func kickRecords(rows []evolve.KickRow) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		d := "0"
		if r.Disrupted {
			d = "1"
		}
		out[i] = []string{
			strconv.Itoa(r.BinNum), strconv.Itoa(r.Star),
			fstr(r.DeltaVX), fstr(r.DeltaVY), fstr(r.DeltaVZ), d,
		}
	}
	return out
}

var galaxyHeader = []string{"rho", "phi", "z", "tau", "metallicity", "v_R", "v_T", "v_z"}

func writeGalaxy(path string, p *pop.Population) error {
	g := p.Galaxy
	records := [][]string{}
	if g != nil {
		records = make([][]string, g.Len())
		for i := 0; i < g.Len(); i++ {
			records[i] = []string{
				fstr(g.Rho[i]), fstr(g.Phi[i]), fstr(g.Z[i]), fstr(g.Tau[i]),
				fstr(g.Metallicity[i]), fstr(g.VR[i]), fstr(g.VT[i]), fstr(g.VZ[i]),
			}
		}
	}
	return writeCSV(path, galaxyHeader, records)
}

func writeOrbits(path string, orbits []orbit.Orbit) error {
	recs := make([]orbitRec, len(orbits))
	for i, o := range orbits {
		recs[i] = orbitRec{Kind: o.Kind.String()}
		switch o.Kind {
		case orbit.Bound:
			recs[i].Primary = encodeTraj(o.Primary)
		case orbit.Disrupted:
			recs[i].Primary = encodeTraj(o.Primary)
			recs[i].Secondary = encodeTraj(o.Secondary)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(recs)
}

func encodeTraj(t orbit.Trajectory) *trajRec {
	rec := &trajRec{T: t.Times, X: make([][6]float64, len(t.States))}
	for i, s := range t.States {
		rec.X[i] = [6]float64{s.Pos[0], s.Pos[1], s.Pos[2], s.Vel[0], s.Vel[1], s.Vel[2]}
	}
	return rec
}
