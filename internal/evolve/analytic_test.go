package evolve

import (
	"math"
	"reflect"
	"testing"
)

func TestAnalyticEvolver_Deterministic(t *testing.T) {
	ev := NewAnalyticEvolver()
	s := DefaultSettings()
	initial := []InitialBinary{
		{BinNum: 0, Mass1: 25, Mass2: 12, Porb: 1000, TPhysF: 8000},
		{BinNum: 1, Mass1: 9, Mass2: 3, Porb: 500, TPhysF: 10000},
	}

	a, err := ev.Evolve(initial, s)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ev.Evolve(initial, s)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("same inputs produced different tables")
	}
}

func TestAnalyticEvolver_PerBinaryStreams(t *testing.T) {
	ev := NewAnalyticEvolver()
	s := DefaultSettings()
	full := []InitialBinary{
		{BinNum: 0, Mass1: 25, Mass2: 12, Porb: 1000, TPhysF: 8000},
		{BinNum: 1, Mass1: 30, Mass2: 20, Porb: 2000, TPhysF: 9000},
		{BinNum: 2, Mass1: 22, Mass2: 10, Porb: 1500, TPhysF: 7000},
	}

	tf, err := ev.Evolve(full, s)
	if err != nil {
		t.Fatal(err)
	}
	// dropping the middle binary must not change the others' outcomes
	tp, err := ev.Evolve([]InitialBinary{full[0], full[2]}, s)
	if err != nil {
		t.Fatal(err)
	}

	for _, bin := range []int{0, 2} {
		if !reflect.DeepEqual(kicksFor(tf.Kicks, bin), kicksFor(tp.Kicks, bin)) {
			t.Errorf("binary %d kicks changed when the batch shrank", bin)
		}
		if !reflect.DeepEqual(historyFor(tf.History, bin), historyFor(tp.History, bin)) {
			t.Errorf("binary %d history changed when the batch shrank", bin)
		}
	}
}

func TestAnalyticEvolver_LowMassStaysQuiet(t *testing.T) {
	ev := NewAnalyticEvolver()
	tbl, err := ev.Evolve([]InitialBinary{
		{BinNum: 0, Mass1: 2, Mass2: 1, Porb: 300, TPhysF: 5000},
	}, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}

	if len(tbl.Kicks) != 0 {
		t.Errorf("low-mass binary got kicks: %v", tbl.Kicks)
	}
	fr := tbl.Final[0]
	if fr.BinState != StateBound {
		t.Errorf("final state %d, want bound", fr.BinState)
	}
	if fr.KStar1 != KStarMS || fr.KStar2 != KStarMS {
		t.Errorf("stellar types changed: %d, %d", fr.KStar1, fr.KStar2)
	}
	if fr.Time != 5000 {
		t.Errorf("final time %g, want the evolution span", fr.Time)
	}
}

func TestAnalyticEvolver_TightBinaryMerges(t *testing.T) {
	ev := NewAnalyticEvolver()
	tbl, err := ev.Evolve([]InitialBinary{
		{BinNum: 0, Mass1: 5, Mass2: 4, Porb: 2, TPhysF: 6000},
	}, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}

	fr := tbl.Final[0]
	if fr.BinState != StateMerged {
		t.Fatalf("final state %d, want merged", fr.BinState)
	}
	if fr.Mass1 != 9 || fr.Mass2 != 0 {
		t.Errorf("merged masses %g, %g", fr.Mass1, fr.Mass2)
	}
	if fr.Sep != 0 {
		t.Errorf("merged separation %g", fr.Sep)
	}
}

func TestAnalyticEvolver_MassiveStarLeavesRemnant(t *testing.T) {
	ev := NewAnalyticEvolver()
	tbl, err := ev.Evolve([]InitialBinary{
		{BinNum: 0, Mass1: 30, Mass2: 2, Porb: 5000, TPhysF: 11000},
	}, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}

	fr := tbl.Final[0]
	if fr.KStar1 != KStarBH {
		t.Errorf("kstar1 = %d, want BH", fr.KStar1)
	}
	if fr.Mass1 != 10 {
		t.Errorf("BH mass %g, want a third of the progenitor", fr.Mass1)
	}
	if len(tbl.Kicks) == 0 {
		t.Fatal("supernova produced no kick rows")
	}
	for _, k := range tbl.Kicks {
		mag := math.Sqrt(k.DeltaVX*k.DeltaVX + k.DeltaVY*k.DeltaVY + k.DeltaVZ*k.DeltaVZ)
		if mag == 0 {
			t.Errorf("zero-magnitude kick row: %+v", k)
		}
	}
}

func TestAnalyticEvolver_DisruptionEmitsPairedRows(t *testing.T) {
	// a very wide orbit has a tiny orbital velocity, so any natal kick
	// above it unbinds the pair
	ev := NewAnalyticEvolver()
	tbl, err := ev.Evolve([]InitialBinary{
		{BinNum: 0, Mass1: 15, Mass2: 1, Porb: 90000, TPhysF: 11000},
	}, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}

	fr := tbl.Final[0]
	if fr.BinState != StateDisrupted {
		t.Fatalf("final state %d, want disrupted", fr.BinState)
	}

	var disrupting []KickRow
	for _, k := range tbl.Kicks {
		if k.Disrupted {
			disrupting = append(disrupting, k)
		}
	}
	if len(disrupting) != 2 {
		t.Fatalf("expected paired disrupting rows, got %d", len(disrupting))
	}
	if disrupting[0].Star == disrupting[1].Star {
		t.Errorf("both rows address star %d", disrupting[0].Star)
	}
}

func TestAnalyticEvolver_InitCEchoesInput(t *testing.T) {
	ev := NewAnalyticEvolver()
	initial := []InitialBinary{
		{BinNum: 4, Mass1: 10, Mass2: 8, Porb: 100, Ecc: 0.3, Metallicity: 0.02, TPhysF: 9000},
	}
	tbl, err := ev.Evolve(initial, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tbl.InitC, initial) {
		t.Errorf("initC differs from input: %+v", tbl.InitC)
	}
}

func kicksFor(rows []KickRow, bin int) []KickRow {
	var out []KickRow
	for _, r := range rows {
		if r.BinNum == bin {
			out = append(out, r)
		}
	}
	return out
}

func historyFor(rows []EvolRow, bin int) []EvolRow {
	var out []EvolRow
	for _, r := range rows {
		if r.BinNum == bin {
			out = append(out, r)
		}
	}
	return out
}
