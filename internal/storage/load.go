package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/starsweep/galpop/internal/evolve"
	"github.com/starsweep/galpop/internal/orbit"
	"github.com/starsweep/galpop/internal/phase"
	"github.com/starsweep/galpop/internal/pop"
	"github.com/starsweep/galpop/internal/potential"
	"github.com/starsweep/galpop/internal/sample"
)

// Load reconstructs a saved population. The result is bit-identical to
// the saved one in its scalar parameters, tables, potential description
// and orbits.
func Load(dir string) (*pop.Population, error) {
	var prm params
	data, err := os.ReadFile(filepath.Join(dir, paramsFile))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &prm); err != nil {
		return nil, fmt.Errorf("storage: parsing %s: %w", paramsFile, err)
	}

	field, err := potential.Load(filepath.Join(dir, potentialFile))
	if err != nil {
		return nil, err
	}

	p := pop.New(pop.Config{
		NBinaries:    prm.NBinaries,
		Processes:    prm.Processes,
		M1Cutoff:     prm.M1Cutoff,
		VDispersion:  prm.VDispersion,
		MaxEvTime:    prm.MaxEvTime,
		TimestepSize: prm.TimestepSize,
		Seed:         prm.Seed,
		Potential:    field,
		Settings:     prm.Settings,
	})
	p.NBinariesMatch = prm.NBinariesMatch
	p.MassSingles = prm.MassSingles
	p.MassBinaries = prm.MassBinaries
	p.NSinglesReq = prm.NSinglesReq
	p.NBinReq = prm.NBinReq

	if p.History, err = readHistory(filepath.Join(dir, historyFile)); err != nil {
		return nil, err
	}
	if p.Final, err = readFinal(filepath.Join(dir, finalFile)); err != nil {
		return nil, err
	}
	if p.InitC, err = readInit(filepath.Join(dir, initCFile)); err != nil {
		return nil, err
	}
	if p.Kicks, err = readKicks(filepath.Join(dir, kicksFile)); err != nil {
		return nil, err
	}
	if p.Galaxy, err = readGalaxy(filepath.Join(dir, galaxyFile)); err != nil {
		return nil, err
	}
	if p.Orbits, err = readOrbits(filepath.Join(dir, orbitsFile)); err != nil {
		return nil, err
	}

	p.SetPhase(pop.Phase(prm.Phase))
	return p, nil
}

func readCSV(path string, wantCols int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = wantCols
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("storage: %s has no header", path)
	}
	return records[1:], nil
}

func atof(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func readHistory(path string) ([]evolve.EvolRow, error) {
	records, err := readCSV(path, len(historyHeader))
	if err != nil {
		return nil, err
	}
	rows := make([]evolve.EvolRow, len(records))
	for i, rec := range records {
		rows[i] = evolve.EvolRow{
			BinNum: atoi(rec[0]), Time: atof(rec[1]),
			Mass1: atof(rec[2]), Mass2: atof(rec[3]),
			KStar1: atoi(rec[4]), KStar2: atoi(rec[5]),
			Sep: atof(rec[6]), BinState: atoi(rec[7]),
		}
	}
	return rows, nil
}

func readFinal(path string) ([]evolve.FinalRow, error) {
	records, err := readCSV(path, len(finalHeader))
	if err != nil {
		return nil, err
	}
	rows := make([]evolve.FinalRow, len(records))
	for i, rec := range records {
		rows[i] = evolve.FinalRow{
			BinNum: atoi(rec[0]), Time: atof(rec[1]),
			Mass1: atof(rec[2]), Mass2: atof(rec[3]),
			KStar1: atoi(rec[4]), KStar2: atoi(rec[5]),
			Sep: atof(rec[6]), BinState: atoi(rec[7]),
			Metallicity: atof(rec[8]),
		}
	}
	return rows, nil
}

func readInit(path string) ([]evolve.InitialBinary, error) {
	records, err := readCSV(path, len(initHeader))
	if err != nil {
		return nil, err
	}
	rows := make([]evolve.InitialBinary, len(records))
	for i, rec := range records {
		rows[i] = evolve.InitialBinary{
			BinNum: atoi(rec[0]),
			Mass1:  atof(rec[1]), Mass2: atof(rec[2]),
			Porb: atof(rec[3]), Ecc: atof(rec[4]),
			Metallicity: atof(rec[5]), TPhysF: atof(rec[6]),
		}
	}
	return rows, nil
}

func readKicks(path string) ([]evolve.KickRow, error) {
	records, err := readCSV(path, len(kickHeader))
	if err != nil {
		return nil, err
	}
	rows := make([]evolve.KickRow, len(records))
	for i, rec := range records {
		rows[i] = evolve.KickRow{
			BinNum: atoi(rec[0]), Star: atoi(rec[1]),
			DeltaVX: atof(rec[2]), DeltaVY: atof(rec[3]), DeltaVZ: atof(rec[4]),
			Disrupted: rec[5] == "1",
		}
	}
	return rows, nil
}

func readGalaxy(path string) (*sample.Galaxy, error) {
	records, err := readCSV(path, len(galaxyHeader))
	if err != nil {
		return nil, err
	}
	g := &sample.Galaxy{}
	for _, rec := range records {
		g.Rho = append(g.Rho, atof(rec[0]))
		g.Phi = append(g.Phi, atof(rec[1]))
		g.Z = append(g.Z, atof(rec[2]))
		g.Tau = append(g.Tau, atof(rec[3]))
		g.Metallicity = append(g.Metallicity, atof(rec[4]))
		g.VR = append(g.VR, atof(rec[5]))
		g.VT = append(g.VT, atof(rec[6]))
		g.VZ = append(g.VZ, atof(rec[7]))
	}
	return g, nil
}

func readOrbits(path string) ([]orbit.Orbit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var recs []orbitRec
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("storage: parsing %s: %w", orbitsFile, err)
	}

	orbits := make([]orbit.Orbit, len(recs))
	for i, rec := range recs {
		switch rec.Kind {
		case orbit.Missing.String():
			orbits[i] = orbit.Orbit{Kind: orbit.Missing}
		case orbit.Bound.String():
			orbits[i] = orbit.Orbit{Kind: orbit.Bound, Primary: decodeTraj(rec.Primary)}
		case orbit.Disrupted.String():
			orbits[i] = orbit.Orbit{
				Kind:      orbit.Disrupted,
				Primary:   decodeTraj(rec.Primary),
				Secondary: decodeTraj(rec.Secondary),
			}
		default:
			return nil, fmt.Errorf("storage: unknown orbit kind %q at index %d", rec.Kind, i)
		}
	}
	return orbits, nil
}

func decodeTraj(rec *trajRec) orbit.Trajectory {
	if rec == nil {
		return orbit.Trajectory{}
	}
	t := orbit.Trajectory{Times: rec.T, States: make([]phase.State, len(rec.X))}
	for i, x := range rec.X {
		t.States[i] = phase.State{
			Pos: phase.Vec3{x[0], x[1], x[2]},
			Vel: phase.Vec3{x[3], x[4], x[5]},
		}
	}
	return t
}
