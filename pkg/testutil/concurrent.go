package testutil

import (
	"errors"
	"sync"

	"vaxtrack/pkg/platform/sentinel"
)

// Outcomes tallies the results of RunConcurrent.
type Outcomes struct {
	Successes int32
	Conflicts int32
	NotFounds int32
	Others    []error
}

// RunConcurrent starts n goroutines, releases them together and waits for
// all of them. Errors matching sentinel.ErrConflict or sentinel.ErrNotFound
// are counted; anything else is collected in Others.
func RunConcurrent(n int, fn func(idx int) error) Outcomes {
	var (
		out   Outcomes
		mu    sync.Mutex
		wg    sync.WaitGroup
		start = make(chan struct{})
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := fn(i)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				out.Successes++
			case errors.Is(err, sentinel.ErrConflict):
				out.Conflicts++
			case errors.Is(err, sentinel.ErrNotFound):
				out.NotFounds++
			default:
				out.Others = append(out.Others, err)
			}
		}()
	}
	close(start)
	wg.Wait()
	return out
}
