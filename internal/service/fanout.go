package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const sweepConcurrency = 4

// SweepResult summarizes one pass of a periodic job.
type SweepResult struct {
	Found   int
	Done    int
	Skipped int
	Failed  int
}

// forEach runs fn for every item with bounded concurrency. Each item's
// error lands in its own slot; one failure never cancels the others.
func forEach[T any](ctx context.Context, items []T, fn func(context.Context, T) error) []error {
	errs := make([]error, len(items))

	var g errgroup.Group
	g.SetLimit(sweepConcurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("panic: %v", r)
				}
			}()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
