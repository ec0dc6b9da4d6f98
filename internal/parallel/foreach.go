package parallel

import "sync"

// ForEach runs body(i) for i in [0, length) on at most limit goroutines and
// returns once every call has finished.
func ForEach(length, limit int, body func(i int)) {
	if limit <= 0 {
		limit = 1
	}
	if length <= 0 {
		return
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	wg.Add(length)

	for i := 0; i < length; i++ {
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			body(i)
		}(i)
	}

	wg.Wait()
}

// Map runs fn over every index and collects results and errors by position,
// so the output order never depends on scheduling.
func Map[T any](length, limit int, fn func(i int) (T, error)) ([]T, error) {
	out := make([]T, length)
	errs := make([]error, length)
	ForEach(length, limit, func(i int) {
		out[i], errs[i] = fn(i)
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
