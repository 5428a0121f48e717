package mrc

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// OpenMany opens multiple MRC files concurrently. Results are returned in
// input order. If any open fails, every file opened so far is closed and the
// first error is returned, annotated with its path. Concurrency is limited
// to the CPU count.
func OpenMany(ctx context.Context, paths ...string) ([]*File, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*File, len(paths))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			f, err := Open(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = f
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, f := range results {
			if f != nil {
				_ = f.Close()
			}
		}
		return nil, err
	}
	return results, nil
}
