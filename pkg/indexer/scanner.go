package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gnana997/splash/pkg/util"
)

// WorkspaceScanner extracts the models of a whole source tree in parallel.
//
// **Three-Phase Pipeline:**
//  1. File Discovery - Walk the tree and apply include/exclude globs
//  2. Parallel Extraction - One traversal per file on the worker pool
//  3. Indexing - Store every result in the ModelIndex
//
// **Usage:**
//
//	scanner := NewWorkspaceScanner(ext, index, logger)
//	stats, err := scanner.ScanWorkspace(ctx, "/path/to/ns-3/src", DefaultScanOptions())
type WorkspaceScanner struct {
	extractor FileExtractor
	index     *ModelIndex
	logger    *slog.Logger
}

// NewWorkspaceScanner creates a new workspace scanner.
func NewWorkspaceScanner(ext FileExtractor, index *ModelIndex, logger *slog.Logger) *WorkspaceScanner {
	return &WorkspaceScanner{
		extractor: ext,
		index:     index,
		logger:    util.OrDefault(logger),
	}
}

// Extractor returns the extractor the scanner runs.
func (ws *WorkspaceScanner) Extractor() FileExtractor {
	return ws.extractor
}

// Index returns the index the scanner fills.
func (ws *WorkspaceScanner) Index() *ModelIndex {
	return ws.index
}

// ScanWorkspace discovers the matching files under rootPath and indexes
// their models.
//
// A file that fails to load is recorded in the stats and does not stop
// the scan. Cancelling ctx stops the scan; the stats gathered so far are
// returned with the context error.
func (ws *WorkspaceScanner) ScanWorkspace(ctx context.Context, rootPath string, options ScanOptions) (*ScanStats, error) {
	startTime := time.Now()
	stats := &ScanStats{
		StartTime: startTime,
		Errors:    make([]FileError, 0),
	}

	ws.logger.Info("Starting workspace scan", "root", rootPath)

	files, err := DiscoverFiles(rootPath, options)
	if err != nil {
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}
	stats.FilesDiscovered = len(files)

	ws.logger.Debug("File discovery complete", "files_found", len(files))

	if len(files) == 0 {
		ws.logger.Warn("No files found matching criteria", "root", rootPath)
		ws.finish(stats)
		return stats, nil
	}

	err = ws.processFilesParallel(ctx, files, options, stats)
	ws.finish(stats)
	if err != nil {
		return stats, err
	}

	ws.logger.Info("Workspace scan complete",
		"files_processed", stats.FilesProcessed,
		"files_failed", stats.FilesFailed,
		"models_extracted", stats.ModelsExtracted,
		"duration_ms", stats.TotalTimeMs)

	return stats, nil
}

func (ws *WorkspaceScanner) finish(stats *ScanStats) {
	stats.EndTime = time.Now()
	stats.TotalTimeMs = stats.EndTime.Sub(stats.StartTime).Milliseconds()
}

// processFilesParallel runs the files through a worker pool. One goroutine
// submits jobs while another collects results, so a full jobs channel can
// never block the collector.
func (ws *WorkspaceScanner) processFilesParallel(
	ctx context.Context,
	files []string,
	options ScanOptions,
	stats *ScanStats,
) error {
	total := len(files)

	pool := NewWorkerPool(options.MaxWorkers, ws.extractor, ws.logger)
	stats.WorkerCount = pool.GetStats().NumWorkers
	pool.Start()
	defer pool.Stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer pool.FinishSubmitting()
		for i, file := range files {
			if err := pool.Submit(gctx, FileJob{FilePath: file, JobID: i}); err != nil {
				return fmt.Errorf("failed to submit job for %s: %w", file, err)
			}
		}
		return nil
	})

	g.Go(func() error {
		for done := 0; done < total; done++ {
			var path string
			select {
			case <-gctx.Done():
				return gctx.Err()

			case result := <-pool.Results():
				path = result.FilePath
				ws.index.AddFileModels(result.FilePath, result.Result.Models, result.Result.Stats)
				stats.FilesProcessed++
				stats.ModelsExtracted += len(result.Result.Models)
				for _, m := range result.Result.Models {
					stats.AttributesExtracted += len(m.Attributes)
				}

			case fileErr := <-pool.Errors():
				path = fileErr.FilePath
				stats.Errors = append(stats.Errors, fileErr)
				stats.FilesFailed++
				ws.logger.Warn("File extraction failed", "file", fileErr.FilePath, "error", fileErr.Error)
			}

			if options.ProgressCallback != nil {
				options.ProgressCallback(done+1, total, path)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return ctxErr
		}
		return err
	}
	return nil
}

// IndexFile extracts one file and stores its models under its absolute
// path, the key ScanWorkspace uses. The watcher calls it for incremental
// updates.
func (ws *WorkspaceScanner) IndexFile(ctx context.Context, path string) (*FileModels, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	result, err := ws.extractor.ExtractFile(ctx, abs)
	if err != nil {
		return nil, err
	}
	return ws.index.AddFileModels(abs, result.Models, result.Stats), nil
}
