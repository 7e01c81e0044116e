// Package async runs independent computations on a bounded worker pool and
// collects their results by name. The dashboard handlers use it to fan out
// aggregator calls for one response.
package async

import (
	"context"
	"sync"
)

// Task is one named unit of work.
type Task struct {
	Name    string
	Execute func() (any, error)
}

// Result pairs a task name with its outcome.
type Result struct {
	Name string
	Data any
	Err  error
}

// Pool bounds how many tasks run concurrently. It holds no per-batch
// state, so one Pool can serve any number of Execute calls.
type Pool struct {
	workerCount int
}

func NewPool(workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{workerCount: workerCount}
}

// Execute runs all tasks and returns their results keyed by task name.
// Cancellation returns whatever results arrived before ctx was done.
func (p *Pool) Execute(ctx context.Context, tasks []Task) map[string]Result {
	pending := make(chan Task)
	done := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range pending {
				data, err := task.Execute()
				done <- Result{Name: task.Name, Data: data, Err: err}
			}
		}()
	}

	go func() {
		defer close(pending)
		for _, task := range tasks {
			select {
			case pending <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	results := make(map[string]Result, len(tasks))
	for range tasks {
		select {
		case result := <-done:
			results[result.Name] = result
		case <-ctx.Done():
			return results
		}
	}

	wg.Wait()
	return results
}
