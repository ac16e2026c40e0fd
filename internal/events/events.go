package events

import (
	"fmt"
	"sort"

	"github.com/starsweep/galpop/internal/evolve"
	"github.com/starsweep/galpop/internal/phase"
)

type Kind int

const (
	KickStar1 Kind = iota
	KickStar2
	Disruption
	Merger
)

func (k Kind) String() string {
	switch k {
	case KickStar1:
		return "kick-1"
	case KickStar2:
		return "kick-2"
	case Disruption:
		return "disruption"
	case Merger:
		return "merger"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Component bitmask: which trajectories are live after the event.
const (
	CompPrimary   uint8 = 1 << 0
	CompSecondary uint8 = 1 << 1
)

// Event is one discontinuous change applied to an orbit.
//
// For a kick while the system is bound the set delta is the systemic
// velocity change. After disruption KickStar1 applies DeltaV1 to the
// primary's trajectory and KickStar2 applies DeltaV2 to the secondary's.
// A Disruption event carries both components' post-split velocity changes.
type Event struct {
	Time       float64 // Myr since birth
	Kind       Kind
	DeltaV1    phase.Vec3 // km/s
	DeltaV2    phase.Vec3 // km/s
	Components uint8
}

// MalformedHistoryError reports a history or kick table the extractor
// cannot interpret for one binary.
type MalformedHistoryError struct {
	BinNum int
	Reason string
}

func (e *MalformedHistoryError) Error() string {
	return fmt.Sprintf("events: binary %d: %s", e.BinNum, e.Reason)
}

// kindPriority fixes the order of simultaneous events.
func kindPriority(k Kind) int { return int(k) }

// Extract scans the evolutionary history and kick tables and returns the
// ordered event schedule for every binary that appears in the history.
func Extract(history []evolve.EvolRow, kicks []evolve.KickRow) (map[int][]Event, error) {
	rowsByBin := map[int][]evolve.EvolRow{}
	order := []int{}
	for _, r := range history {
		if _, seen := rowsByBin[r.BinNum]; !seen {
			order = append(order, r.BinNum)
		}
		rowsByBin[r.BinNum] = append(rowsByBin[r.BinNum], r)
	}

	kicksByBin := map[int][]evolve.KickRow{}
	for _, k := range kicks {
		kicksByBin[k.BinNum] = append(kicksByBin[k.BinNum], k)
	}
	for bin := range kicksByBin {
		if _, ok := rowsByBin[bin]; !ok {
			return nil, &MalformedHistoryError{BinNum: bin, Reason: "kick rows but no history rows"}
		}
	}

	out := make(map[int][]Event, len(order))
	for _, bin := range order {
		evs, err := extractOne(bin, rowsByBin[bin], kicksByBin[bin])
		if err != nil {
			return nil, err
		}
		out[bin] = evs
	}
	return out, nil
}

func extractOne(bin int, rows []evolve.EvolRow, kicks []evolve.KickRow) ([]Event, error) {
	if len(rows) == 0 {
		return nil, &MalformedHistoryError{BinNum: bin, Reason: "no history rows"}
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Time < rows[i-1].Time {
			return nil, &MalformedHistoryError{
				BinNum: bin,
				Reason: fmt.Sprintf("history times not monotone at row %d (%g < %g)", i, rows[i].Time, rows[i-1].Time),
			}
		}
	}

	var evs []Event

	// remnant-formation epochs per star, in row order; the j-th kick row
	// for a star matches the j-th formation epoch
	formations := map[int][]float64{1: nil, 2: nil}
	for i := 1; i < len(rows); i++ {
		if isRemnant(rows[i].KStar1) && !isRemnant(rows[i-1].KStar1) {
			formations[1] = append(formations[1], rows[i].Time)
		}
		if isRemnant(rows[i].KStar2) && !isRemnant(rows[i-1].KStar2) {
			formations[2] = append(formations[2], rows[i].Time)
		}
	}

	var disruption *Event
	disruptionPlaced := false
	taken := map[int]int{}
	for _, k := range kicks {
		dv := phase.Vec3{k.DeltaVX, k.DeltaVY, k.DeltaVZ}
		if dv.Norm() == 0 {
			continue
		}
		if k.Disrupted {
			// both components' rows feed the single disruption event;
			// its epoch comes from the history transition below
			if disruption == nil {
				disruption = &Event{Kind: Disruption}
			}
			if k.Star == 1 {
				disruption.DeltaV1 = dv
			} else {
				disruption.DeltaV2 = dv
			}
			continue
		}

		idx := taken[k.Star]
		taken[k.Star]++
		epochs := formations[k.Star]
		if idx >= len(epochs) {
			return nil, &MalformedHistoryError{
				BinNum: bin,
				Reason: fmt.Sprintf("kick row for star %d has no matching history row", k.Star),
			}
		}
		ev := Event{Time: epochs[idx]}
		if k.Star == 1 {
			ev.Kind = KickStar1
			ev.DeltaV1 = dv
		} else {
			ev.Kind = KickStar2
			ev.DeltaV2 = dv
		}
		evs = append(evs, ev)
	}

	// state-flag transitions
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1].BinState, rows[i].BinState
		if cur == prev {
			continue
		}
		switch cur {
		case evolve.StateDisrupted:
			if disruption == nil {
				disruption = &Event{Kind: Disruption}
			}
			disruption.Time = rows[i].Time
			evs = append(evs, *disruption)
			disruptionPlaced = true
		case evolve.StateMerged:
			evs = append(evs, Event{Time: rows[i].Time, Kind: Merger})
		}
	}
	if rows[0].BinState == evolve.StateDisrupted && disruption != nil && !disruptionPlaced {
		disruption.Time = rows[0].Time
		evs = append(evs, *disruption)
		disruptionPlaced = true
	}
	if disruption != nil && !disruptionPlaced {
		return nil, &MalformedHistoryError{BinNum: bin, Reason: "disrupting kick rows but no disrupted history row"}
	}

	sort.SliceStable(evs, func(i, j int) bool {
		if evs[i].Time != evs[j].Time {
			return evs[i].Time < evs[j].Time
		}
		return kindPriority(evs[i].Kind) < kindPriority(evs[j].Kind)
	})

	// active-component mask after each event
	active := CompPrimary
	for i := range evs {
		switch evs[i].Kind {
		case Disruption:
			active = CompPrimary | CompSecondary
		case Merger:
			active = CompPrimary
		}
		evs[i].Components = active
	}
	return evs, nil
}

func isRemnant(kstar int) bool {
	return kstar >= evolve.KStarNS
}
