package modifiers

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jward/modifiers/internal/store"
)

// workItem holds everything an extraction worker needs.
type workItem struct {
	path    string
	lang    string
	fileID  int64
	content []byte
	batch   *store.BatchedStore
}

// IndexFilesParallel indexes files using a three-phase pipeline:
//
//	Phase A (serial):   Hash check, delete old data, prepare file records.
//	Phase B (parallel): Tokenize and scan on an errgroup bounded by the
//	                    worker count, each file writing to its own batch.
//	Phase C (serial):   Commit batches to SQLite.
func (e *Engine) IndexFilesParallel(ctx context.Context, paths []string) error {
	// ---- Phase A: Serial file preparation ----
	var items []workItem
	var failed []error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			e.dropPrepared(items)
			return err
		}
		item, skip, err := e.prepareFile(ctx, path)
		if err != nil {
			e.logger.Warn("prepare file", "path", path, "error", err)
			failed = append(failed, fmt.Errorf("prepare %s: %w", path, err))
			continue
		}
		if skip {
			continue
		}
		item.batch = store.NewBatchedStore(e.store)
		items = append(items, item)
	}

	if len(items) == 0 {
		return joinFailed(failed)
	}

	// ---- Phase B: Parallel extraction ----
	workers := e.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = max(1, min(workers, len(items)))

	// Per-file failures are kept in errs so one bad file does not cancel the
	// others; only context cancellation stops the group.
	errs := make([]error, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			errs[i] = e.extractFile(gctx, items[i], items[i].batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.dropPrepared(items)
		return err
	}

	// ---- Phase C: Serial commit ----
	for i, item := range items {
		if errs[i] != nil {
			e.logger.Warn("extract file", "path", item.path, "error", errs[i])
			// Drop the record so the file is retried on the next run.
			_ = e.store.DeleteFile(item.fileID)
			failed = append(failed, fmt.Errorf("extract %s: %w", item.path, errs[i]))
			continue
		}
		if err := e.store.CommitBatch(item.batch); err != nil {
			_ = e.store.DeleteFile(item.fileID)
			failed = append(failed, fmt.Errorf("commit %s: %w", item.path, err))
			continue
		}
		e.logger.Debug("indexed", "path", item.path, "call_sites", item.batch.Len())
	}

	return joinFailed(failed)
}

// dropPrepared deletes the file records of items so an interrupted run does
// not leave them looking indexed.
func (e *Engine) dropPrepared(items []workItem) {
	for _, item := range items {
		_ = e.store.DeleteFile(item.fileID)
	}
}

func joinFailed(failed []error) error {
	if len(failed) > 0 {
		return fmt.Errorf("parallel indexing had %d error(s): %w", len(failed), failed[0])
	}
	return nil
}
