// Package integrate provides deterministic Runge-Kutta steppers over
// phase-space states. The orbit integrator drives these on a fixed output
// grid; the embedded Dormand-Prince pair is the default.
package integrate
