// Package concurrent runs independent jobs over slices with bounded
// parallelism.
package concurrent

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// normalizeWorkers maps non-positive worker counts to the number of CPUs.
func normalizeWorkers(workers int) int {
	if workers <= 0 {
		return runtime.NumCPU()
	}
	return workers
}

// ForEach calls action for every element with at most workers calls in
// flight. The first error cancels the context passed to the remaining calls
// and is returned once all started calls finished.
func ForEach[T any](ctx context.Context, in []T, workers int, action func(ctx context.Context, idx int, value T) error) error {
	errGroup, groupCtx := errgroup.WithContext(ctx)
	errGroup.SetLimit(normalizeWorkers(workers))

	for idx, value := range in {
		if groupCtx.Err() != nil {
			break
		}
		idx, value := idx, value
		errGroup.Go(func() error {
			return action(groupCtx, idx, value)
		})
	}

	if err := errGroup.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// ParallelMap applies mapFn to every element, preserving order. On error the
// partial results are discarded.
func ParallelMap[T any, R any](ctx context.Context, in []T, workers int, mapFn func(ctx context.Context, value T) (R, error)) ([]R, error) {
	out := make([]R, len(in))
	err := ForEach(ctx, in, workers, func(ctx context.Context, idx int, value T) error {
		r, err := mapFn(ctx, value)
		if err != nil {
			return err
		}
		out[idx] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
