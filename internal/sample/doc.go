// Package sample draws the initial binary population and its birth places
// in the galaxy: a Kroupa primary mass function, Sana-style period and
// eccentricity laws, an exponential-disk birth distribution and circular
// velocities with dispersion. All draws are deterministic under a seed.
package sample
