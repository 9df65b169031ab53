package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// runConcurrent runs n independent invocations of scenario, each tagged with
// its own run identifier, bounding how many execute at once with a weighted
// semaphore. Each invocation gets an isolated Scheduler/Allocator, so this
// is concurrency across independent scenario instances, not within one.
func runConcurrent(n, concurrency int, scenario func(runID string) string) []string {
	if concurrency < 1 {
		concurrency = 1
	}
	sem := semaphore.NewWeighted(int64(concurrency))
	ctx := context.Background()

	results := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = fmt.Sprintf("run skipped: %v", err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = scenario(uuid.NewString())
		}()
	}
	wg.Wait()
	return results
}
