// Package workpool runs independent units of work on a bounded number of
// goroutines. It knows nothing about what the work is.
package workpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Size resolves a requested pool size: values <= 0 mean one worker per
// available CPU.
func Size(jobs int) int {
	if jobs <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return jobs
}

// Map calls fn for every item using at most Size(jobs) goroutines and
// returns the results in item order. The first error returned by fn cancels
// the remaining work and is returned; results of items that completed are
// kept.
func Map[T, R any](ctx context.Context, jobs int, items []T, fn func(ctx context.Context, i int, item T) (R, error)) ([]R, error) {
	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	jobs = min(Size(jobs), len(items))
	if jobs == 1 {
		for i, item := range items {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			r, err := fn(ctx, i, item)
			if err != nil {
				return results, err
			}
			results[i] = r
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, item := range items {
		g.Go(func() error {
			// проверка отмены
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			r, err := fn(gctx, i, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	return results, g.Wait()
}
