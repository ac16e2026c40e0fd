package integrate

import (
	"math"

	"github.com/starsweep/galpop/internal/phase"
)

// Dormand-Prince 5(4) coefficients
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// DormandPrince is the embedded 5(4) Runge-Kutta pair. Step takes the
// fifth-order solution; StepErr additionally reports the embedded error
// estimate normalised by the state scale.
type DormandPrince struct{}

func NewDormandPrince() DormandPrince { return DormandPrince{} }

func (d DormandPrince) Step(f Derivative, s phase.State, t, dt float64) phase.State {
	out, _ := d.StepErr(f, s, t, dt)
	return out
}

func (DormandPrince) StepErr(f Derivative, s phase.State, t, dt float64) (phase.State, float64) {
	k1 := f(t, s)

	s2 := axpy(s, k1, dt*b21)
	k2 := f(t+a2*dt, s2)

	s3 := axpy(axpy(s, k1, dt*b31), k2, dt*b32)
	k3 := f(t+a3*dt, s3)

	s4 := axpy(axpy(axpy(s, k1, dt*b41), k2, dt*b42), k3, dt*b43)
	k4 := f(t+a4*dt, s4)

	s5 := axpy(axpy(axpy(axpy(s, k1, dt*b51), k2, dt*b52), k3, dt*b53), k4, dt*b54)
	k5 := f(t+a5*dt, s5)

	s6 := axpy(axpy(axpy(axpy(axpy(s, k1, dt*b61), k2, dt*b62), k3, dt*b63), k4, dt*b64), k5, dt*b65)
	k6 := f(t+dt, s6)

	out := s
	out = axpy(out, k1, dt*c1)
	out = axpy(out, k3, dt*c3)
	out = axpy(out, k4, dt*c4)
	out = axpy(out, k5, dt*c5)
	out = axpy(out, k6, dt*c6)

	k7 := f(t+dt, out)

	errEst := phase.State{}
	errEst = axpy(errEst, k1, dt*dc1)
	errEst = axpy(errEst, k3, dt*dc3)
	errEst = axpy(errEst, k4, dt*dc4)
	errEst = axpy(errEst, k5, dt*dc5)
	errEst = axpy(errEst, k6, dt*dc6)
	errEst = axpy(errEst, k7, dt*dc7)

	scale := s.Pos.Norm() + s.Vel.Norm() + 1e-10
	errMax := math.Max(errEst.Pos.Norm(), errEst.Vel.Norm()) / scale

	return out, errMax
}
