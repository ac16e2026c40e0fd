// Package storage persists populations to a composite on-disk format: a
// directory holding the four stellar-evolution tables as CSV, the orbits
// as a JSON dataset with explicit missing-orbit sentinels, the potential
// description as a text sidecar, the initial galaxy table and a JSON
// scalar-parameter block. Floats are written in the shortest form that
// parses back bit-identical, so a load reproduces the saved population
// exactly. An existing target is refused unless overwrite is requested.
package storage
