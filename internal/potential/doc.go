// Package potential implements the time-independent gravitational fields
// that orbits are integrated through. Fields map a galactocentric position
// to an acceleration and are read-only once constructed, so a single field
// value is safely shared across integration workers.
package potential
