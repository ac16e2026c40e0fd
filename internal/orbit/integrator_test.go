package orbit

import (
	"errors"
	"math"
	"testing"

	"github.com/starsweep/galpop/internal/events"
	"github.com/starsweep/galpop/internal/phase"
	"github.com/starsweep/galpop/internal/potential"
)

func TestIntegrate_StraightLine(t *testing.T) {
	in := New(potential.Zero{})
	w0 := phase.State{Pos: phase.Vec3{1, 0, 0}, Vel: phase.Vec3{10, 0, 0}}

	o, err := in.Integrate(0, &w0, nil, 0, 100, 1)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	if o.Kind != Bound {
		t.Fatalf("kind = %v, want bound", o.Kind)
	}
	if o.Primary.Len() != 101 {
		t.Fatalf("expected 101 samples, got %d", o.Primary.Len())
	}

	final := o.Primary.Final()
	wantX := 1 + 10*phase.KpcMyrPerKms*100
	if math.Abs(final.Pos[0]-wantX) > 1e-9 {
		t.Errorf("final x = %g, want %g", final.Pos[0], wantX)
	}
	if final.Vel != w0.Vel {
		t.Errorf("velocity changed in a zero field: %v", final.Vel)
	}
	for i := 1; i < o.Primary.Len(); i++ {
		if o.Primary.Times[i] <= o.Primary.Times[i-1] {
			t.Fatalf("times not strictly increasing at %d", i)
		}
	}
}

func TestIntegrate_KickDiscontinuity(t *testing.T) {
	in := New(potential.Zero{})
	w0 := phase.State{Pos: phase.Vec3{1, 0, 0}, Vel: phase.Vec3{10, 0, 0}}
	evs := []events.Event{
		{Time: 50, Kind: events.KickStar1, DeltaV1: phase.Vec3{0, 20, 0}, Components: events.CompPrimary},
	}

	o, err := in.Integrate(0, &w0, evs, 0, 100, 1)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	tr := o.Primary
	if tr.Len() != 101 {
		t.Fatalf("expected 101 samples, got %d", tr.Len())
	}

	// the jump sits exactly at the t=50 sample: velocity changes there,
	// position stays continuous
	if tr.Times[50] != 50 {
		t.Fatalf("sample 50 at t=%g", tr.Times[50])
	}
	if tr.States[49].Vel != (phase.Vec3{10, 0, 0}) {
		t.Errorf("pre-kick velocity: %v", tr.States[49].Vel)
	}
	if tr.States[50].Vel != (phase.Vec3{10, 20, 0}) {
		t.Errorf("post-kick velocity: %v", tr.States[50].Vel)
	}
	if tr.States[50].Pos[1] != 0 {
		t.Errorf("position jumped at the kick: y=%g", tr.States[50].Pos[1])
	}

	// transverse motion starts only after the kick
	wantY := 20 * phase.KpcMyrPerKms * 50
	if math.Abs(tr.Final().Pos[1]-wantY) > 1e-9 {
		t.Errorf("final y = %g, want %g", tr.Final().Pos[1], wantY)
	}
}

func TestIntegrate_Disruption(t *testing.T) {
	in := New(potential.Zero{})
	w0 := phase.State{Pos: phase.Vec3{1, 0, 0}, Vel: phase.Vec3{10, 0, 0}}
	evs := []events.Event{
		{
			Time: 50, Kind: events.Disruption,
			DeltaV1:    phase.Vec3{0, 15, 0},
			DeltaV2:    phase.Vec3{0, -5, 0},
			Components: events.CompPrimary | events.CompSecondary,
		},
	}

	o, err := in.Integrate(0, &w0, evs, 0, 100, 1)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	if o.Kind != Disrupted {
		t.Fatalf("kind = %v, want disrupted", o.Kind)
	}
	if o.Primary.Len() != 101 || o.Secondary.Len() != 101 {
		t.Fatalf("lengths %d, %d", o.Primary.Len(), o.Secondary.Len())
	}

	// identical prefixes strictly before the event-time sample
	for i := 0; i < 50; i++ {
		if o.Primary.States[i] != o.Secondary.States[i] {
			t.Fatalf("prefixes diverge at %d", i)
		}
	}
	if o.Primary.States[50].Vel != (phase.Vec3{10, 15, 0}) {
		t.Errorf("primary post-split velocity: %v", o.Primary.States[50].Vel)
	}
	if o.Secondary.States[50].Vel != (phase.Vec3{10, -5, 0}) {
		t.Errorf("secondary post-split velocity: %v", o.Secondary.States[50].Vel)
	}
	if o.Primary.States[50].Pos != o.Secondary.States[50].Pos {
		t.Errorf("positions diverged at the split sample")
	}
}

func TestIntegrate_PostDisruptionKicks(t *testing.T) {
	in := New(potential.Zero{})
	w0 := phase.State{Pos: phase.Vec3{0, 0, 0}, Vel: phase.Vec3{0, 0, 0}}
	both := events.CompPrimary | events.CompSecondary
	evs := []events.Event{
		{Time: 20, Kind: events.Disruption, DeltaV1: phase.Vec3{1, 0, 0}, DeltaV2: phase.Vec3{-1, 0, 0}, Components: both},
		{Time: 60, Kind: events.KickStar2, DeltaV2: phase.Vec3{0, 0, 7}, Components: both},
	}

	o, err := in.Integrate(0, &w0, evs, 0, 100, 1)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}

	// only the secondary receives the later kick
	if o.Primary.Final().Vel != (phase.Vec3{1, 0, 0}) {
		t.Errorf("primary final velocity: %v", o.Primary.Final().Vel)
	}
	if o.Secondary.Final().Vel != (phase.Vec3{-1, 0, 7}) {
		t.Errorf("secondary final velocity: %v", o.Secondary.Final().Vel)
	}
	if o.Secondary.States[59].Vel[2] != 0 || o.Secondary.States[60].Vel[2] != 7 {
		t.Errorf("secondary kick not at the t=60 sample")
	}
}

func TestIntegrate_OffGridEvent(t *testing.T) {
	in := New(potential.Zero{})
	w0 := phase.State{Vel: phase.Vec3{10, 0, 0}}
	evs := []events.Event{
		{Time: 50.5, Kind: events.KickStar1, DeltaV1: phase.Vec3{0, 1, 0}, Components: events.CompPrimary},
	}

	o, err := in.Integrate(0, &w0, evs, 0, 100, 1)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	tr := o.Primary

	found := -1
	for i, tm := range tr.Times {
		if tm == 50.5 {
			found = i
			break
		}
	}
	if found < 0 {
		t.Fatal("no sample at the event time 50.5")
	}
	if tr.States[found].Vel != (phase.Vec3{10, 1, 0}) {
		t.Errorf("kick not applied at the irregular sample: %v", tr.States[found].Vel)
	}
	for i := 1; i < tr.Len(); i++ {
		if tr.Times[i] <= tr.Times[i-1] {
			t.Fatalf("times not strictly increasing at %d", i)
		}
	}
	if tr.Times[tr.Len()-1] != 100 {
		t.Errorf("final time %g, want 100", tr.Times[tr.Len()-1])
	}
}

func TestIntegrate_EventAtStart(t *testing.T) {
	in := New(potential.Zero{})
	w0 := phase.State{Pos: phase.Vec3{1, 0, 0}}
	evs := []events.Event{
		{Time: 0, Kind: events.KickStar1, DeltaV1: phase.Vec3{10, 0, 0}, Components: events.CompPrimary},
	}

	o, err := in.Integrate(0, &w0, evs, 0, 100, 1)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	tr := o.Primary

	// the kick applies before any step: the very first sample carries it
	if tr.States[0].Vel != (phase.Vec3{10, 0, 0}) {
		t.Errorf("initial sample velocity: %v", tr.States[0].Vel)
	}
	wantX := 1 + 10*phase.KpcMyrPerKms*100
	if math.Abs(tr.Final().Pos[0]-wantX) > 1e-9 {
		t.Errorf("final x = %g, want %g", tr.Final().Pos[0], wantX)
	}
}

func TestIntegrate_EventPastEndIgnored(t *testing.T) {
	in := New(potential.Zero{})
	w0 := phase.State{Vel: phase.Vec3{10, 0, 0}}
	evs := []events.Event{
		{Time: 200, Kind: events.KickStar1, DeltaV1: phase.Vec3{0, 1, 0}, Components: events.CompPrimary},
	}

	o, err := in.Integrate(0, &w0, evs, 0, 100, 1)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	if o.Primary.Final().Vel != w0.Vel {
		t.Errorf("event past t2 applied: %v", o.Primary.Final().Vel)
	}
}

func TestIntegrate_MergerContinues(t *testing.T) {
	in := New(potential.Zero{})
	w0 := phase.State{Vel: phase.Vec3{10, 0, 0}}
	evs := []events.Event{
		{Time: 30, Kind: events.Merger, Components: events.CompPrimary},
	}

	o, err := in.Integrate(0, &w0, evs, 0, 100, 1)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	if o.Kind != Bound {
		t.Errorf("kind = %v, want bound", o.Kind)
	}
	if o.Primary.Len() != 101 {
		t.Errorf("merger truncated the trajectory: %d samples", o.Primary.Len())
	}
	if o.Primary.Final().Vel != w0.Vel {
		t.Errorf("merger changed the velocity: %v", o.Primary.Final().Vel)
	}
}

func TestIntegrate_NilStateIsMissing(t *testing.T) {
	in := New(potential.Zero{})
	o, err := in.Integrate(3, nil, nil, 0, 100, 1)
	if err != nil {
		t.Fatalf("nil state should not error: %v", err)
	}
	if o.Kind != Missing {
		t.Errorf("kind = %v, want missing", o.Kind)
	}
}

func TestIntegrate_InvalidInput(t *testing.T) {
	in := New(potential.Zero{})
	valid := phase.State{Vel: phase.Vec3{1, 0, 0}}

	if _, err := in.Integrate(0, &valid, nil, 0, 100, 0); err == nil {
		t.Error("dt=0 accepted")
	}
	if _, err := in.Integrate(0, &valid, nil, 100, 0, 1); err == nil {
		t.Error("t2 < t1 accepted")
	}

	bad := phase.State{Pos: phase.Vec3{math.NaN(), 0, 0}}
	_, err := in.Integrate(5, &bad, nil, 0, 100, 1)
	var div *IntegrationDivergedError
	if !errors.As(err, &div) {
		t.Fatalf("expected IntegrationDivergedError, got %v", err)
	}
	if div.BinNum != 5 {
		t.Errorf("error names binary %d, want 5", div.BinNum)
	}
}

func TestIntegrate_CircularOrbitStaysCircular(t *testing.T) {
	field := potential.PointMass{Mass: 1e11}
	in := New(field)

	r := 8.0
	vc := potential.CircularVelocity(field, phase.Vec3{r, 0, 0})
	w0 := phase.State{Pos: phase.Vec3{r, 0, 0}, Vel: phase.Vec3{0, vc, 0}}

	o, err := in.Integrate(0, &w0, nil, 0, 1000, 1)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	for i, s := range o.Primary.States {
		rad := s.Pos.Norm()
		if math.Abs(rad-r) > 1e-3*r {
			t.Fatalf("radius drifted to %g at sample %d", rad, i)
		}
	}
}
