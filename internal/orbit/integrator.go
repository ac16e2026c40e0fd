package orbit

import (
	"fmt"
	"math"

	"github.com/starsweep/galpop/internal/events"
	"github.com/starsweep/galpop/internal/integrate"
	"github.com/starsweep/galpop/internal/phase"
	"github.com/starsweep/galpop/internal/potential"
)

// IntegrationDivergedError reports a non-finite orbit state. It names the
// binary and the time at which the state left the finite domain.
type IntegrationDivergedError struct {
	BinNum int
	Time   float64
}

func (e *IntegrationDivergedError) Error() string {
	return fmt.Sprintf("orbit: binary %d: non-finite state at t=%g Myr", e.BinNum, e.Time)
}

// Integrator integrates orbits through a shared read-only potential field.
// A single Integrator value is safe for concurrent use as long as Field
// and Stepper are.
type Integrator struct {
	Field   potential.Field
	Stepper integrate.Stepper
}

func New(field potential.Field) *Integrator {
	return &Integrator{Field: field, Stepper: integrate.NewDormandPrince()}
}

// Integrate produces the orbit of one binary from t1 to t2 (absolute Myr)
// with output step dt. Event times are elapsed Myr since birth, i.e.
// relative to t1. A nil initial state yields a Missing orbit, not an
// error; events scheduled past t2 are ignored.
func (in *Integrator) Integrate(binNum int, w0 *phase.State, evs []events.Event, t1, t2, dt float64) (Orbit, error) {
	if w0 == nil {
		return Orbit{Kind: Missing}, nil
	}
	if dt <= 0 {
		return Orbit{}, fmt.Errorf("orbit: dt must be positive, got %g", dt)
	}
	if t2 < t1 {
		return Orbit{}, fmt.Errorf("orbit: t2 (%g) before t1 (%g)", t2, t1)
	}
	if !w0.Valid() {
		return Orbit{}, &IntegrationDivergedError{BinNum: binNum, Time: t1}
	}

	r := &runner{
		field:   in.Field,
		stepper: in.Stepper,
		bin:     binNum,
		t1:      t1,
		dt:      dt,
	}
	r.deriv = func(t float64, s phase.State) phase.State {
		return phase.State{
			Pos: s.Vel.Scale(phase.KpcMyrPerKms),
			Vel: r.field.Acceleration(s.Pos).Scale(1 / phase.KpcMyrPerKms),
		}
	}

	tr := Trajectory{}
	cur := *w0
	t := t1
	tr.append(t1, cur)

	for i := 0; i < len(evs); i++ {
		ev := evs[i]
		te := t1 + ev.Time
		if te > t2 {
			break
		}
		if err := r.extend(&tr, &cur, &t, te); err != nil {
			return Orbit{}, err
		}
		switch ev.Kind {
		case events.KickStar1:
			cur = cur.Kick(ev.DeltaV1)
			tr.setLast(cur)
		case events.KickStar2:
			cur = cur.Kick(ev.DeltaV2)
			tr.setLast(cur)
		case events.Merger:
			// the merged system keeps its velocity; no events can follow
		case events.Disruption:
			return r.split(tr, cur, ev, evs[i+1:], t, t2)
		}
	}

	if err := r.extend(&tr, &cur, &t, t2); err != nil {
		return Orbit{}, err
	}
	return Orbit{Kind: Bound, Primary: tr}, nil
}

type runner struct {
	field   potential.Field
	stepper integrate.Stepper
	deriv   integrate.Derivative
	bin     int
	t1      float64
	dt      float64
}

// extend integrates cur forward from *t to tTo, appending every sample.
// Full dt steps are taken from *t; a shorter final sub-step lands exactly
// on tTo when it falls between grid points.
func (r *runner) extend(tr *Trajectory, cur *phase.State, t *float64, tTo float64) error {
	span := tTo - *t
	if span <= 0 {
		return nil
	}
	eps := 1e-9 * r.dt

	base := *t
	n := int(math.Floor(span/r.dt + 1e-9))
	for k := 1; k <= n; k++ {
		tk := base + float64(k)*r.dt
		next := r.stepper.Step(r.deriv, *cur, *t, r.dt)
		if !next.Valid() {
			return &IntegrationDivergedError{BinNum: r.bin, Time: tk}
		}
		tr.append(tk, next)
		*cur = next
		*t = tk
	}

	if rem := tTo - *t; rem > eps {
		next := r.stepper.Step(r.deriv, *cur, *t, rem)
		if !next.Valid() {
			return &IntegrationDivergedError{BinNum: r.bin, Time: tTo}
		}
		tr.append(tTo, next)
		*cur = next
	} else if n > 0 {
		// grid landed within rounding of tTo; pin the boundary sample
		tr.Times[tr.Len()-1] = tTo
	}
	*t = tTo
	return nil
}

// split handles a disruption: both components clone the accumulated
// prefix, diverge in velocity at the boundary sample, and integrate
// independently through their remaining kick schedules.
func (r *runner) split(prefix Trajectory, cur phase.State, ev events.Event, rest []events.Event, t, t2 float64) (Orbit, error) {
	o := Orbit{Kind: Disrupted}

	tr1 := prefix.Clone()
	s1 := cur.Kick(ev.DeltaV1)
	tr1.setLast(s1)
	if err := r.branch(&tr1, s1, rest, events.KickStar1, t, t2); err != nil {
		return Orbit{}, err
	}

	tr2 := prefix
	s2 := cur.Kick(ev.DeltaV2)
	tr2.setLast(s2)
	if err := r.branch(&tr2, s2, rest, events.KickStar2, t, t2); err != nil {
		return Orbit{}, err
	}

	o.Primary, o.Secondary = tr1, tr2
	return o, nil
}

// branch integrates one post-disruption component to t2, applying only the
// kick events addressed to it.
func (r *runner) branch(tr *Trajectory, cur phase.State, evs []events.Event, kick events.Kind, t, t2 float64) error {
	for _, ev := range evs {
		if ev.Kind != kick {
			continue
		}
		te := r.t1 + ev.Time
		if te > t2 {
			break
		}
		if err := r.extend(tr, &cur, &t, te); err != nil {
			return err
		}
		dv := ev.DeltaV1
		if kick == events.KickStar2 {
			dv = ev.DeltaV2
		}
		cur = cur.Kick(dv)
		tr.setLast(cur)
	}
	return r.extend(tr, &cur, &t, t2)
}
