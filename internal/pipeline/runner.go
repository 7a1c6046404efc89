// Package pipeline provides the bounded worker pool used to fan analytic
// jobs out over the inventory.
package pipeline

import (
	"context"
	"sync"
)

// Job is one independent unit of work in a batch.
type Job func(ctx context.Context) error

// Runner executes job batches over a fixed-size worker pool.
type Runner struct {
	workers int
}

func NewRunner(workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{workers: workers}
}

// Run executes all jobs and returns the first error encountered. A job
// failure does not stop the remaining jobs; a cancelled context does, and
// Run then returns the context error. Callers that need per-job results
// collect them inside the job closures.
func (r *Runner) Run(ctx context.Context, jobs []Job) error {
	jobChan := make(chan Job, len(jobs))
	errChan := make(chan error, r.workers)
	var wg sync.WaitGroup

	// Start workers. Each checks the context before every job so
	// cancellation stops the batch between jobs.
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				if ctx.Err() != nil {
					return
				}
				if err := job(ctx); err != nil {
					select {
					case errChan <- err:
					default:
					}
				}
			}
		}()
	}

	// Enqueue jobs; the channel is buffered to the batch size.
	for _, job := range jobs {
		jobChan <- job
	}
	close(jobChan)

	// Wait for all workers
	wg.Wait()
	close(errChan)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := <-errChan; err != nil {
		return err
	}

	return nil
}
