// Package phase provides the phase-space primitives shared by the orbit
// integrator and the population driver: 3-vectors and position/velocity
// state pairs in galactocentric Cartesian coordinates.
//
// Units are kpc for positions, km/s for velocities and Myr for times
// throughout the module.
package phase
