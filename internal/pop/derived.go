package pop

import (
	"strings"

	"github.com/starsweep/galpop/internal/evolve"
	"github.com/starsweep/galpop/internal/orbit"
	"github.com/starsweep/galpop/internal/phase"
	"github.com/starsweep/galpop/internal/phot"
)

// FinalHistoryRows reduces the evolutionary history to its last row per
// binary, annotated with the initial metallicity. Cached until the next
// stellar-evolution run.
func (p *Population) FinalHistoryRows() ([]evolve.FinalRow, error) {
	if p.finalRows != nil {
		return p.finalRows, nil
	}
	if p.phase < StellarEvolved {
		if err := p.PerformStellarEvolution(); err != nil {
			return nil, err
		}
	}

	met := make(map[int]float64, len(p.InitC))
	for _, b := range p.InitC {
		met[b.BinNum] = b.Metallicity
	}

	idx := map[int]int{}
	rows := []evolve.FinalRow{}
	for _, r := range p.History {
		fr := evolve.FinalRow{
			BinNum: r.BinNum, Time: r.Time,
			Mass1: r.Mass1, Mass2: r.Mass2,
			KStar1: r.KStar1, KStar2: r.KStar2,
			Sep: r.Sep, BinState: r.BinState,
			Metallicity: met[r.BinNum],
		}
		if i, seen := idx[r.BinNum]; seen {
			rows[i] = fr
		} else {
			idx[r.BinNum] = len(rows)
			rows = append(rows, fr)
		}
	}
	p.finalRows = rows
	return rows, nil
}

// FinalStates reduces the orbits to present-day phase-space states: one
// record per binary plus a second record used only by disrupted
// components. Missing trajectories come back as +Inf in every coordinate
// so downstream filtering can mask them with a plain inequality.
func (p *Population) FinalStates() (primary, secondary []phase.State, err error) {
	if p.finalPrimary != nil {
		return p.finalPrimary, p.finalSecondary, nil
	}
	if p.phase < GalacticEvolved {
		if err := p.PerformGalacticEvolution(); err != nil {
			return nil, nil, err
		}
	}

	inf := phase.State{Pos: phase.Inf(), Vel: phase.Inf()}
	primary = make([]phase.State, len(p.Orbits))
	secondary = make([]phase.State, len(p.Orbits))
	for i, o := range p.Orbits {
		primary[i], secondary[i] = inf, inf
		switch o.Kind {
		case orbit.Missing:
			p.logger.Printf("WARNING: missing orbit at index %d, recording +Inf coordinates", i)
		case orbit.Bound:
			primary[i] = o.Primary.Final()
		case orbit.Disrupted:
			primary[i] = o.Primary.Final()
			secondary[i] = o.Secondary.Final()
		}
	}
	p.finalPrimary, p.finalSecondary = primary, secondary
	return primary, secondary, nil
}

// DefaultFilters is the filter set used when none are requested.
var DefaultFilters = []string{"J", "H", "K", "G", "BP", "RP"}

// Observables computes present-day photometry for the population. The
// result is cached per filter set and invalidated with the final states.
func (p *Population) Observables(filters []string) ([]phot.Row, error) {
	if len(filters) == 0 {
		filters = DefaultFilters
	}
	key := strings.Join(filters, ",")
	if p.observables != nil && p.observedIn == key {
		return p.observables, nil
	}

	rows, err := p.FinalHistoryRows()
	if err != nil {
		return nil, err
	}
	primary, secondary, err := p.FinalStates()
	if err != nil {
		return nil, err
	}

	p.observables = phot.Observables(rows, primary, secondary, filters)
	p.observedIn = key
	return p.observables, nil
}
