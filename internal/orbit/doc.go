// Package orbit integrates phase-space states through a galactic potential
// between discrete stellar events. The integration is piecewise: the span
// from birth to present day is partitioned at each event time, every
// sub-interval is integrated on a fixed step grid with an exact (irregular)
// final sub-step onto the event time, and the event's state discontinuity
// is spliced in at the boundary sample. A disruption event splits the
// single trajectory into two independent ballistic components.
package orbit
