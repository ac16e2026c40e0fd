// Package events turns the stellar-evolution output tables into per-binary
// schedules of discrete orbit events: natal kicks, disruption and merger.
//
// Events at the same epoch apply in a fixed order: kicks first (star 1
// before star 2), then disruption, then merger. A kick describes the
// velocity state the components carry into unbinding, so it must land
// before the disruption split.
package events
