package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gnana997/splash/pkg/extractor"
	"github.com/gnana997/splash/pkg/util"
)

// FileExtractor extracts the models of one file. *extractor.Extractor
// satisfies it.
type FileExtractor interface {
	ExtractFile(ctx context.Context, path string) (*extractor.Result, error)
}

// FileJob represents a file to be processed by the worker pool.
type FileJob struct {
	FilePath string
	JobID    int
}

// FileResult contains the extraction result for a file.
type FileResult struct {
	FilePath string
	Result   *extractor.Result
	JobID    int
}

// WorkerPool manages a pool of goroutines for parallel file extraction.
//
// **Architecture:**
//   - Buffered channels for job distribution
//   - Separate result and error channels
//   - Every job runs its own traversal, so workers share nothing but the
//     extractor configuration and the loader's parser pool
//
// **Usage:**
//
//	pool := NewWorkerPool(numWorkers, ext, logger)
//	pool.Start()
//	defer pool.Stop()
//
//	go func() {
//	    for i, file := range files {
//	        pool.Submit(ctx, FileJob{FilePath: file, JobID: i})
//	    }
//	    pool.FinishSubmitting()
//	}()
//
//	for i := 0; i < len(files); i++ {
//	    select {
//	    case result := <-pool.Results():
//	        // Process result
//	    case err := <-pool.Errors():
//	        // Handle error
//	    }
//	}
type WorkerPool struct {
	numWorkers int
	jobs       chan FileJob
	results    chan FileResult
	errors     chan FileError
	wg         sync.WaitGroup
	extractor  FileExtractor
	logger     *slog.Logger

	// Lifecycle management
	ctx        context.Context
	cancel     context.CancelFunc
	started    atomic.Bool
	stopped    atomic.Bool
	jobsClosed atomic.Bool

	// Statistics
	jobsSubmitted atomic.Int64
	jobsProcessed atomic.Int64
	jobsFailed    atomic.Int64
}

// NewWorkerPool creates a new worker pool.
//
// Parameters:
//   - numWorkers: Number of worker goroutines (0 = util.WorkerCount)
//   - ext: Extractor run for every job
//   - logger: Logger for worker messages
func NewWorkerPool(numWorkers int, ext FileExtractor, logger *slog.Logger) *WorkerPool {
	numWorkers = util.WorkerCount(numWorkers)

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		numWorkers: numWorkers,
		jobs:       make(chan FileJob, numWorkers*2),
		results:    make(chan FileResult, numWorkers),
		errors:     make(chan FileError, numWorkers),
		extractor:  ext,
		logger:     util.OrDefault(logger),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start spawns all worker goroutines.
//
// **IMPORTANT:** Must be called before submitting jobs.
func (wp *WorkerPool) Start() {
	if !wp.started.CompareAndSwap(false, true) {
		wp.logger.Warn("WorkerPool already started")
		return
	}

	wp.logger.Debug("Starting worker pool", "workers", wp.numWorkers)

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// worker receives jobs until the jobs channel is closed or the pool is
// stopped.
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return

		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.processJob(id, job)
		}
	}
}

func (wp *WorkerPool) processJob(workerID int, job FileJob) {
	result, err := wp.extractor.ExtractFile(wp.ctx, job.FilePath)
	if err != nil {
		wp.logger.Debug("Extraction error", "worker_id", workerID, "file", job.FilePath, "error", err)
		wp.jobsFailed.Add(1)
		wp.sendError(FileError{
			FilePath: job.FilePath,
			Error:    fmt.Errorf("extraction failed: %w", err),
		})
		return
	}

	wp.logger.Debug("Extracted file", "worker_id", workerID, "file", job.FilePath, "models", len(result.Models))

	wp.jobsProcessed.Add(1)
	select {
	case <-wp.ctx.Done():
	case wp.results <- FileResult{FilePath: job.FilePath, Result: result, JobID: job.JobID}:
	}
}

func (wp *WorkerPool) sendError(fe FileError) {
	select {
	case <-wp.ctx.Done():
	case wp.errors <- fe:
	}
}

// Submit enqueues a job for processing.
//
// **Blocking:** Blocks while the jobs channel is full, until ctx is done
// or the pool is stopped.
func (wp *WorkerPool) Submit(ctx context.Context, job FileJob) error {
	if wp.stopped.Load() || wp.jobsClosed.Load() {
		return fmt.Errorf("worker pool is not accepting jobs")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool cancelled")
	case wp.jobs <- job:
		wp.jobsSubmitted.Add(1)
		return nil
	}
}

// Results returns the results channel.
func (wp *WorkerPool) Results() <-chan FileResult {
	return wp.results
}

// Errors returns the errors channel.
func (wp *WorkerPool) Errors() <-chan FileError {
	return wp.errors
}

// FinishSubmitting closes the jobs channel to signal no more jobs will be
// submitted. Workers exit once the queue is drained.
//
// **Thread Safety:** Safe to call multiple times (idempotent). Must not
// race with Submit.
func (wp *WorkerPool) FinishSubmitting() {
	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
		wp.logger.Debug("Jobs channel closed", "total_submitted", wp.jobsSubmitted.Load())
	}
}

// Wait blocks until all workers have finished. Call it after
// FinishSubmitting, while results are being consumed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Stop shuts down the worker pool.
//
// **Steps:**
//  1. Closes the jobs channel if not already closed
//  2. Cancels in-flight extractions; undelivered results are dropped
//  3. Waits for the workers, then closes result and error channels
//
// Consume every expected result before calling Stop.
//
// **Thread Safety:** Safe to call multiple times (idempotent).
func (wp *WorkerPool) Stop() {
	if !wp.stopped.CompareAndSwap(false, true) {
		return
	}

	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
	}

	wp.cancel()
	wp.wg.Wait()

	close(wp.results)
	close(wp.errors)

	wp.logger.Debug("Worker pool stopped",
		"jobs_submitted", wp.jobsSubmitted.Load(),
		"jobs_processed", wp.jobsProcessed.Load(),
		"jobs_failed", wp.jobsFailed.Load())
}

// GetStats returns current worker pool statistics.
func (wp *WorkerPool) GetStats() WorkerPoolStats {
	return WorkerPoolStats{
		NumWorkers:    wp.numWorkers,
		JobsSubmitted: wp.jobsSubmitted.Load(),
		JobsProcessed: wp.jobsProcessed.Load(),
		JobsFailed:    wp.jobsFailed.Load(),
		QueueLength:   len(wp.jobs),
		ResultsQueued: len(wp.results),
		ErrorsQueued:  len(wp.errors),
	}
}

// WorkerPoolStats contains statistics about the worker pool.
type WorkerPoolStats struct {
	NumWorkers    int
	JobsSubmitted int64
	JobsProcessed int64
	JobsFailed    int64
	QueueLength   int // Current jobs in queue
	ResultsQueued int // Results waiting to be consumed
	ErrorsQueued  int // Errors waiting to be consumed
}
