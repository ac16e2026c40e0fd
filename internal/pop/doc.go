// Package pop drives a population from sampling through stellar evolution
// to galactic orbit integration.
//
// The driver is an explicit state machine
//
//	Uninitialized -> Sampled -> StellarEvolved -> GalacticEvolved
//
// whose phase methods are re-enterable: triggering a later phase with
// missing prerequisites first forces the earlier phases to run. Derived
// state (final history rows, final phase-space states, observables) is
// cached and invalidated through an explicit dependency table walked after
// each phase, never recomputed behind an attribute access.
package pop
