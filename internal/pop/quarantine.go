package pop

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/starsweep/galpop/internal/evolve"
)

// quarantineNaNs detects binaries whose stellar-evolution output contains
// non-finite values, writes their rows to a side file and removes them
// from every per-binary table so index alignment is preserved. This is a
// warning, not an error: processing continues with the reduced population.
func (p *Population) quarantineNaNs() error {
	bad := map[int]bool{}
	for _, fr := range p.Final {
		if !finite(fr.Sep) || !finite(fr.Mass1) || !finite(fr.Mass2) {
			bad[fr.BinNum] = true
		}
	}
	for _, k := range p.Kicks {
		if !finite(k.DeltaVX) || !finite(k.DeltaVY) || !finite(k.DeltaVZ) {
			bad[k.BinNum] = true
		}
	}
	if len(bad) == 0 {
		return nil
	}

	sideFile, err := p.writeQuarantine(bad)
	if err != nil {
		return fmt.Errorf("pop: writing quarantine file: %w", err)
	}

	ids := make([]int, 0, len(bad))
	for bin := range bad {
		ids = append(ids, bin)
	}
	sort.Ints(ids)
	p.logger.Printf("WARNING: non-finite stellar evolution output detected")
	p.logger.Printf("WARNING: removed %d binaries %v; offending rows saved to %s", len(bad), ids, sideFile)

	// the galaxy arrays are aligned with the final-row order, so build
	// the keep mask before filtering the tables
	keep := make([]bool, len(p.Final))
	for i, fr := range p.Final {
		keep[i] = !bad[fr.BinNum]
	}
	p.Galaxy.Filter(keep)

	p.History = filterEvol(p.History, bad)
	p.Final = filterFinal(p.Final, bad)
	p.InitC = filterInit(p.InitC, bad)
	p.Kicks = filterKicks(p.Kicks, bad)
	p.InitialBinaries = filterInit(p.InitialBinaries, bad)
	p.NBinariesMatch -= len(bad)
	return nil
}

// writeQuarantine dumps the offending binaries' history and kick rows to
// a uniquely named CSV in the quarantine directory.
func (p *Population) writeQuarantine(bad map[int]bool) (string, error) {
	path := filepath.Join(p.QuarantineDir, "quarantine-"+uuid.NewString()+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"table", "bin_num", "time", "mass_1", "mass_2",
		"kstar_1", "kstar_2", "sep", "bin_state", "star", "dvx", "dvy", "dvz"}); err != nil {
		return "", err
	}
	for _, r := range p.History {
		if !bad[r.BinNum] {
			continue
		}
		rec := []string{"history", strconv.Itoa(r.BinNum), ff(r.Time), ff(r.Mass1), ff(r.Mass2),
			strconv.Itoa(r.KStar1), strconv.Itoa(r.KStar2), ff(r.Sep), strconv.Itoa(r.BinState), "", "", "", ""}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	for _, k := range p.Kicks {
		if !bad[k.BinNum] {
			continue
		}
		rec := []string{"kick", strconv.Itoa(k.BinNum), "", "", "", "", "", "", "",
			strconv.Itoa(k.Star), ff(k.DeltaVX), ff(k.DeltaVY), ff(k.DeltaVZ)}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	w.Flush()
	return path, w.Error()
}

func ff(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func filterEvol(rows []evolve.EvolRow, bad map[int]bool) []evolve.EvolRow {
	out := rows[:0]
	for _, r := range rows {
		if !bad[r.BinNum] {
			out = append(out, r)
		}
	}
	return out
}

func filterFinal(rows []evolve.FinalRow, bad map[int]bool) []evolve.FinalRow {
	out := rows[:0]
	for _, r := range rows {
		if !bad[r.BinNum] {
			out = append(out, r)
		}
	}
	return out
}

func filterInit(rows []evolve.InitialBinary, bad map[int]bool) []evolve.InitialBinary {
	out := rows[:0]
	for _, r := range rows {
		if !bad[r.BinNum] {
			out = append(out, r)
		}
	}
	return out
}

func filterKicks(rows []evolve.KickRow, bad map[int]bool) []evolve.KickRow {
	out := rows[:0]
	for _, r := range rows {
		if !bad[r.BinNum] {
			out = append(out, r)
		}
	}
	return out
}
