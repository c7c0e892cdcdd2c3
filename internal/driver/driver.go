// Package driver runs a batch of independent jobs across a bounded
// number of goroutines. It is the replacement for the original
// implementation's multiprocessing.Pool: rather than forking OS
// processes to sidestep the interpreter's global lock, a Go worker
// needs nothing heavier than a goroutine, so the pool here is built
// directly on golang.org/x/sync/errgroup and golang.org/x/sync/semaphore.
package driver

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Job is a single unit of work submitted to a Pool. ctx carries the
// caller's cancellation and, where applicable, a workspace via
// workspace.WithCurrent.
type Job func(ctx context.Context) error

// Pool runs Jobs with at most Concurrency running at once.
type Pool struct {
	sem *semaphore.Weighted
	n   int64
}

// New returns a Pool that runs at most concurrency jobs at a time.
// concurrency <= 0 is treated as 1.
func New(concurrency int) *Pool {
	if concurrency <= 0 {
		concurrency = 1
	}
	n := int64(concurrency)
	return &Pool{sem: semaphore.NewWeighted(n), n: n}
}

// Run submits jobs and blocks until all of them have finished or ctx is
// canceled. It returns the first error encountered, same as
// errgroup.Group.Wait — a job panicking is converted into an error
// rather than being allowed to crash the pool, so a single bad job
// never takes down jobs running concurrently with it.
func (p *Pool) Run(ctx context.Context, jobs []Job) error {
	g, ctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		if err := p.sem.Acquire(ctx, 1); err != nil {
			if werr := g.Wait(); werr != nil {
				return werr
			}
			return fmt.Errorf("driver: acquiring slot for job %d: %w", i, err)
		}
		g.Go(func() (err error) {
			defer p.sem.Release(1)
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("driver: job %d panicked: %v\n%s", i, r, debug.Stack())
				}
			}()
			return job(ctx)
		})
	}
	return g.Wait()
}

// RunCollecting is like Run but does not stop submitting or abort
// sibling jobs when one fails — every job runs to completion (or
// cancellation of ctx by the caller) and all results, including nil
// errors for jobs that succeeded, are returned in submission order.
// This is the shape BatchTest and RegressionTest need: one failing
// design must not hide the results of the others in the same batch.
func (p *Pool) RunCollecting(ctx context.Context, jobs []Job) []error {
	results := make([]error, len(jobs))
	g := new(errgroup.Group)
	for i, job := range jobs {
		i, job := i, job
		if err := p.sem.Acquire(ctx, 1); err != nil {
			results[i] = fmt.Errorf("driver: acquiring slot for job %d: %w", i, err)
			continue
		}
		g.Go(func() error {
			defer p.sem.Release(1)
			results[i] = runRecovered(ctx, i, job)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func runRecovered(ctx context.Context, index int, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("driver: job %d panicked: %v\n%s", index, r, debug.Stack())
		}
	}()
	return job(ctx)
}

// Concurrency returns the configured maximum number of simultaneously
// running jobs.
func (p *Pool) Concurrency() int {
	return int(p.n)
}
