package integrate

import "github.com/starsweep/galpop/internal/phase"

// Derivative evaluates the equations of motion at time t: the returned
// state carries dPos/dt in Pos and dVel/dt in Vel.
type Derivative func(t float64, s phase.State) phase.State

// Stepper advances a phase-space state by a single step of size dt.
type Stepper interface {
	Step(f Derivative, s phase.State, t, dt float64) phase.State
}

// axpy returns s + h*k, component-wise over position and velocity.
func axpy(s phase.State, k phase.State, h float64) phase.State {
	return phase.State{
		Pos: s.Pos.Add(k.Pos.Scale(h)),
		Vel: s.Vel.Add(k.Vel.Scale(h)),
	}
}

type Euler struct{}

func NewEuler() Euler { return Euler{} }

func (Euler) Step(f Derivative, s phase.State, t, dt float64) phase.State {
	return axpy(s, f(t, s), dt)
}

type RK4 struct{}

func NewRK4() RK4 { return RK4{} }

func (RK4) Step(f Derivative, s phase.State, t, dt float64) phase.State {
	k1 := f(t, s)
	k2 := f(t+dt*0.5, axpy(s, k1, dt*0.5))
	k3 := f(t+dt*0.5, axpy(s, k2, dt*0.5))
	k4 := f(t+dt, axpy(s, k3, dt))

	dt6 := dt / 6.0
	out := s
	out = axpy(out, k1, dt6)
	out = axpy(out, k2, 2*dt6)
	out = axpy(out, k3, 2*dt6)
	out = axpy(out, k4, dt6)
	return out
}
