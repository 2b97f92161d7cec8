package engine

import "sync"

// runIndexedParallel executes fn for indices [0,n) using a worker pool and
// returns the results in index order.
func runIndexedParallel[T any](n, workers int, fn func(int) T) []T {
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int)
	out := make([]T, n)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range jobs {
			out[idx] = fn(idx)
		}
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go worker()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}
