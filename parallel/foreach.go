// Package parallel contains the worker pool and the corpus partitioning used
// by training.
package parallel

import "sync"

// ForEach executes body for every integer from 0 to length with at most
// limit goroutines running at once, and waits for all of them. It returns
// the error of the lowest index that failed.
func ForEach(length, limit int, body func(i int) error) error {
	if limit <= 0 {
		limit = 1 // Default to 1 if limit is zero or negative
	}
	if length <= 0 {
		return nil // No iterations to perform
	}

	sem := make(chan struct{}, limit) // Semaphore with buffer size 'limit'
	errs := make([]error, length)
	var wg sync.WaitGroup
	wg.Add(length)

	for i := 0; i < length; i++ {
		sem <- struct{}{} // Acquire semaphore
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }() // Release semaphore after function exits

			errs[i] = body(i)
		}(i)
	}

	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
