// Package parallel chunks index ranges across goroutines for the
// data-parallel loops in training and prediction.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize splits items across one goroutine per CPU core and calls fn
// with half-open [start, end) ranges covering [0, items).
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeWorkers(items, runtime.NumCPU(), fn)
}

// ParallelizeWorkers is Parallelize with an explicit worker cap. A cap below
// one falls back to the CPU core count. ParallelizeWorkers blocks until
// every chunk has been processed.
func ParallelizeWorkers(items, numWorkers int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if numWorkers < 1 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > items {
		numWorkers = items
	}

	// Ceiling division so the last chunk absorbs the remainder.
	chunk := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for start := 0; start < items; start += chunk {
		end := start + chunk
		if end > items {
			end = items
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn(0, items) on the calling goroutine when
// items does not exceed threshold, and fans out like Parallelize otherwise.
// It suits loops whose per-item work is too small to pay for goroutine
// startup on short inputs.
func ParallelizeWithThreshold(items, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, fn)
}
