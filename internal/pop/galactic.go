package pop

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/starsweep/galpop/internal/events"
	"github.com/starsweep/galpop/internal/orbit"
)

// PerformGalacticEvolution integrates every binary's orbit from birth to
// present day across a fixed-size worker pool. One task per binary index,
// assignment by contiguous chunks, results written straight to the task's
// index: the aggregated order never depends on completion order. A failed
// integration leaves a Missing orbit at its index and is logged; it never
// aborts the batch. The pool is scoped to this call and fully drained on
// every path.
func (p *Population) PerformGalacticEvolution() error {
	if p.phase < StellarEvolved {
		if err := p.PerformStellarEvolution(); err != nil {
			return err
		}
	}

	schedule, err := events.Extract(p.History, p.Kicks)
	if err != nil {
		return fmt.Errorf("pop: extracting events: %w", err)
	}

	integ := orbit.New(p.Potential)
	n := p.NBinariesMatch
	results := make([]orbit.Orbit, n)

	var done int64
	task := func(i int) {
		bin := p.InitC[i].BinNum
		w0 := p.Galaxy.PhaseState(i)
		t1 := p.MaxEvTime - p.Galaxy.Tau[i]

		o, err := integ.Integrate(bin, &w0, schedule[bin], t1, p.MaxEvTime, p.TimestepSize)
		if err != nil {
			p.logger.Printf("WARNING: %v; orbit left missing", err)
			o = orbit.Orbit{Kind: orbit.Missing}
		}
		results[i] = o
		p.report("orbits", int(atomic.AddInt64(&done, 1)), n)
	}

	workers := p.Processes
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	if workers <= 1 {
		for i := 0; i < n; i++ {
			task(i)
		}
	} else {
		chunk := (n + workers - 1) / workers
		var wg sync.WaitGroup
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			start, end := w*chunk, (w+1)*chunk
			if end > n {
				end = n
			}
			go func(s, e int) {
				defer wg.Done()
				for i := s; i < e; i++ {
					task(i)
				}
			}(start, end)
		}
		wg.Wait()
	}

	p.Orbits = results
	p.phase = GalacticEvolved
	p.invalidate(GalacticEvolved)
	return nil
}
