package main

import (
	"context"
	"runtime"
	"sync"
)

// RunOptions controls how a batch is executed. None of these fields change
// the numbers a seeded batch produces.
type RunOptions struct {
	Seed    uint64
	Workers int // 0 = runtime.NumCPU()
	RunID   string
	Logger  *Logger

	// SkipSearch leaves out the per-trial withdrawal search and the vehicle
	// mix, for analyses that only read path statistics
	SkipSearch bool
}

func (o RunOptions) workerCount(trials int) int {
	w := o.Workers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	if w > trials {
		w = trials
	}
	if w < 1 {
		w = 1
	}
	return w
}

// runTrials calls trial(i) for every i in [0, n) on a fixed pool of workers.
// Worker w owns trials w, w+workers, ...; each trial writes only its own
// outcome slot, so no locking is needed. Cancellation is checked between
// trials.
func runTrials(ctx context.Context, n, workers int, trial func(i int)) error {
	if n == 0 {
		return ctx.Err()
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < n; i += workers {
				if ctx.Err() != nil {
					return
				}
				trial(i)
			}
		}(w)
	}
	wg.Wait()

	return ctx.Err()
}
