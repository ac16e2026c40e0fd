// Package evolve defines the contract with the stellar-evolution solver.
// The population driver treats the solver as an opaque batch call that maps
// an initial binary table to four output tables: the evolutionary history,
// the final stellar state, the (possibly adjusted) initial conditions and
// the natal-kick table.
//
// A deterministic analytic evolver is bundled so the pipeline runs end to
// end without an external code; it is not a physics model.
package evolve
