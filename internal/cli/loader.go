package cli

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/sqlir/internal/loader"
)

// LoadMode controls how errors are handled during document loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// loadedFile is one input path and what came of loading it.
type loadedFile struct {
	Path string
	Doc  *loader.Document
	Err  error
}

// loadDocuments expands paths and loads every document with at most jobs
// loads in flight. Results are in input order whatever order the loads
// finish in.
//
// The error is only for path expansion. Per-file failures are in the
// results; with LoadModeFailFast the remaining loads are cancelled and
// only files that finished are returned with a non-nil Doc.
func loadDocuments(ctx context.Context, paths []string, mode LoadMode, jobs int, logger *slog.Logger) ([]loadedFile, error) {
	files, err := loader.Find(paths)
	if err != nil {
		return nil, err
	}
	if jobs < 1 {
		jobs = 1
	}

	results := make([]loadedFile, len(files))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)

	for i, path := range files {
		i, path := i, path
		results[i].Path = path
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}

			doc, err := loader.LoadFile(path)
			if err != nil {
				logger.Debug("load failed", "path", path, "error", err)
				results[i].Err = err
				if mode == LoadModeFailFast {
					return err
				}
				return nil
			}

			logger.Debug("document loaded", "path", path, "format", string(doc.Format), "statements", len(doc.Statements))
			results[i].Doc = doc
			return nil
		})
	}
	// The first failure is already recorded in its result.
	_ = eg.Wait()
	return results, nil
}

// firstLoadError returns the first load failure in input order, skipping
// cancellations caused by it.
func firstLoadError(results []loadedFile) *loadedFile {
	var cancelled *loadedFile
	for i := range results {
		r := &results[i]
		if r.Err == nil {
			continue
		}
		if errors.Is(r.Err, context.Canceled) {
			if cancelled == nil {
				cancelled = r
			}
			continue
		}
		return r
	}
	return cancelled
}
