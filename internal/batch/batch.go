// Package batch runs independent jobs over a bounded set of workers.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job processes one input.
type Job[In, Out any] func(ctx context.Context, index int, in In) (Out, error)

// Result is the outcome of one job. Results keep the order of their inputs.
type Result[Out any] struct {
	Index  int
	Output Out
	Err    error
}

// Stats counts how a batch went.
type Stats struct {
	Attempted int
	Succeeded int
	Failed    int
}

// Run executes fn for every input with at most workers jobs in flight. A
// failing job never stops the others; its error is kept in its Result. Jobs
// not yet started when ctx is cancelled fail with the context error.
func Run[In, Out any](ctx context.Context, inputs []In, workers int, fn Job[In, Out]) []Result[Out] {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result[Out], len(inputs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, in := range inputs {
		g.Go(func() error {
			results[i].Index = i
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Output, results[i].Err = fn(ctx, i, in)
			return nil
		})
	}
	// Jobs report through results, so Wait has nothing to return.
	_ = g.Wait()
	return results
}

// Summarize counts the successes and failures in results.
func Summarize[Out any](results []Result[Out]) Stats {
	s := Stats{Attempted: len(results)}
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
		} else {
			s.Succeeded++
		}
	}
	return s
}
