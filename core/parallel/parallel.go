// Package parallel fans independent work items out over the available CPU cores.
package parallel

import (
	"context"
	"runtime"
	"sync"
)

// Parallelize divides the specified total number (items) according to the number of CPU cores,
// and executes the specified function (fn) in parallel for each range (start, end)
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// ceiling division
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold performs parallelization only when the number of items exceeds the threshold
// If below threshold, normal sequential processing is performed
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

// ForEach calls fn(ctx, i) for every i in [0, items) across the CPU cores and
// returns the first error. Items not yet started are skipped once ctx is
// cancelled or an item fails.
func ForEach(ctx context.Context, items int, fn func(ctx context.Context, i int) error) error {
	if items <= 0 {
		return ctx.Err()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		once     sync.Once
		firstErr error
	)
	record := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	Parallelize(items, func(start, end int) {
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				record(err)
				return
			}
			if err := fn(ctx, i); err != nil {
				record(err)
				return
			}
		}
	})
	return firstErr
}
