package scanner

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gnana997/apidoc/pkg/extractor"
	"github.com/gnana997/apidoc/pkg/util"
)

// extractionJob is one source file and the module it documents.
type extractionJob struct {
	path   string
	module string
}

// extractAll runs extractor.ExtractFile on each job in parallel, reading
// sources through cache.
//
// Errors on individual files are logged but don't stop the pipeline. Workers
// stop taking jobs once ctx is cancelled; the caller checks ctx.Err().
// onDone, if set, is called from the collecting goroutine after every job.
func extractAll(
	ctx context.Context,
	jobs []extractionJob,
	ext *extractor.Extractor,
	cache *util.SourceCache,
	workers int,
	logger *slog.Logger,
	onDone func(module string),
) ([]FileExtractionResult, int) {
	if len(jobs) == 0 {
		return nil, 0
	}
	if logger == nil {
		logger = slog.Default()
	}

	numWorkers := util.GetOptimalPoolSizeWithOverride(workers)
	if numWorkers > len(jobs) {
		numWorkers = len(jobs)
	}

	queue := make(chan extractionJob, numWorkers*2)
	type resultOrError struct {
		result FileExtractionResult
		err    error
		job    extractionJob
	}
	results := make(chan resultOrError, numWorkers)

	// Start workers.
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				if ctx.Err() != nil {
					continue
				}
				source, err := cache.Read(job.path)
				if err != nil {
					results <- resultOrError{err: err, job: job}
					continue
				}
				fr, err := ext.ExtractFile(job.path, source)
				if err != nil {
					results <- resultOrError{err: err, job: job}
					continue
				}
				results <- resultOrError{
					result: FileExtractionResult{
						FilePath: job.path,
						Module:   job.module,
						Result:   fr,
					},
					job: job,
				}
			}
		}()
	}

	// Submit jobs.
	go func() {
		defer close(queue)
		for _, job := range jobs {
			select {
			case queue <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results.
	var extracted []FileExtractionResult
	failed := 0
	for r := range results {
		if onDone != nil {
			onDone(r.job.module)
		}
		if r.err != nil {
			logger.Warn("extraction failed", "file", r.job.path, "module", r.job.module, "error", r.err)
			failed++
			continue
		}
		extracted = append(extracted, r.result)
	}

	return extracted, failed
}
