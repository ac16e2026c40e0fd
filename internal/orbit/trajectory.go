package orbit

import "github.com/starsweep/galpop/internal/phase"

// Kind tags the outcome variant of one binary's galactic evolution.
type Kind int

const (
	// Missing marks a component that never formed (or a failed
	// integration); it carries no trajectory.
	Missing Kind = iota
	// Bound covers bound binaries and merged systems: one trajectory.
	Bound
	// Disrupted systems carry independent primary and secondary
	// trajectories sharing the pre-disruption prefix.
	Disrupted
)

func (k Kind) String() string {
	switch k {
	case Missing:
		return "missing"
	case Bound:
		return "bound"
	case Disrupted:
		return "disrupted"
	}
	return "unknown"
}

// Trajectory is a time-ordered sequence of phase-space samples. Times are
// strictly increasing; a state discontinuity at an event shows up as a
// velocity jump at the boundary sample.
type Trajectory struct {
	Times  []float64
	States []phase.State
}

func (t *Trajectory) Len() int { return len(t.Times) }

func (t *Trajectory) Final() phase.State {
	return t.States[len(t.States)-1]
}

func (t *Trajectory) Clone() Trajectory {
	c := Trajectory{
		Times:  make([]float64, len(t.Times)),
		States: make([]phase.State, len(t.States)),
	}
	copy(c.Times, t.Times)
	copy(c.States, t.States)
	return c
}

func (t *Trajectory) append(time float64, s phase.State) {
	t.Times = append(t.Times, time)
	t.States = append(t.States, s)
}

func (t *Trajectory) setLast(s phase.State) {
	t.States[len(t.States)-1] = s
}

// Orbit is the tagged outcome of one binary: Bound carries Primary only,
// Disrupted carries both, Missing carries neither.
type Orbit struct {
	Kind      Kind
	Primary   Trajectory
	Secondary Trajectory
}
