package engine

import (
	"context"

	"github.com/felixgeelhaar/taskweave/internal/backlog"
)

// FileOptions control runs against a document on disk.
type FileOptions struct {
	// Lock serializes writers through the document's advisory lock.
	Lock bool
	// DryRun computes the result without writing the document.
	DryRun bool
}

// ReorganizeFile locks, loads, reorganizes and saves the document at path.
// With DryRun set it previews instead and never writes.
func (e *Engine) ReorganizeFile(ctx context.Context, path string, opts FileOptions) (*Report, error) {
	return e.withDocument(path, opts, func(doc *backlog.Document) (*Report, error) {
		if opts.DryRun {
			return e.Preview(ctx, doc)
		}
		return e.Reorganize(ctx, doc)
	})
}

// PreviewFile loads the document at path and previews a reorganize.
func (e *Engine) PreviewFile(ctx context.Context, path string) (*Report, error) {
	return e.ReorganizeFile(ctx, path, FileOptions{DryRun: true})
}

// InsertFile inserts task into the document at path and saves it. With
// DryRun set the document is left unchanged on disk.
func (e *Engine) InsertFile(ctx context.Context, path string, task backlog.Task, priorityOverride bool, opts FileOptions) (*Report, error) {
	return e.withDocument(path, opts, func(doc *backlog.Document) (*Report, error) {
		report, err := e.Insert(ctx, doc, task, priorityOverride)
		if err == nil && opts.DryRun {
			report.Applied = false
		}
		return report, err
	})
}

// withDocument brackets fn with the lock and the load/save of the
// document. The document is written only when the report was applied.
func (e *Engine) withDocument(path string, opts FileOptions, fn func(*backlog.Document) (*Report, error)) (*Report, error) {
	if opts.Lock && !opts.DryRun {
		lock := backlog.NewLock(path)
		if err := lock.Acquire(); err != nil {
			e.logger.LogError(err)
			return nil, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				e.logger.WithError(err).Warn("failed to release document lock", "path", lock.Path())
			}
		}()
	}

	doc, err := e.repo.Load(path)
	if err != nil {
		e.logger.LogError(err)
		return nil, err
	}

	report, err := fn(doc)
	if err != nil {
		return nil, err
	}

	if report.Applied {
		if err := e.repo.Save(doc, path); err != nil {
			e.logger.LogError(err)
			return nil, err
		}
		e.logger.Info("document saved", "path", path, "run_id", report.RunID)
	}
	return report, nil
}
