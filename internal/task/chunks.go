package task

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ForEachChunk splits [0,n) into chunks and runs fn on them with bounded
// parallelism. Each chunk is a checkpoint: cancellation of t stops new
// chunks from starting and is returned as ErrCancelled. Progress is counted
// in items on a scope of its own.
func ForEachChunk(t *Task, n, chunk int, fn func(ctx context.Context, lo, hi int) error) error {
	if n <= 0 {
		return t.Checkpoint()
	}
	if chunk <= 0 {
		chunk = 1024
	}
	progress := t.Progress(int64(n))
	defer progress.Done()

	g, ctx := errgroup.WithContext(t.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for lo := 0; lo < n; lo += chunk {
		if err := t.Checkpoint(); err != nil {
			break
		}
		lo, hi := lo, min(lo+chunk, n)
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := fn(ctx, lo, hi); err != nil {
				return err
			}
			progress.Add(int64(hi - lo))
			return nil
		})
	}
	err := g.Wait()
	if cerr := t.Checkpoint(); cerr != nil {
		return cerr
	}
	return err
}
