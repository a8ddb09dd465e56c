package imports

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dtnitsch/url-importer/models"
	"github.com/dtnitsch/url-importer/pkg/webimport"
)

// ThreadImporter is satisfied by *nitter.Importer.
type ThreadImporter interface {
	Handles(rawURL string) bool
	Import(ctx context.Context, rawURL string) (*models.ImportResult, error)
}

// WebImporter is satisfied by *webimport.Importer.
type WebImporter interface {
	Import(ctx context.Context, req webimport.Request) (*models.ImportResult, error)
}

// Ledger records finished imports. Failures are logged, never fatal.
type Ledger interface {
	RecordImport(result *models.ImportResult) (int64, error)
	CountImportsBySource(sourceURL string) (int, error)
}

// Job defines one URL to import.
type Job struct {
	URL string
}

// Result holds the outcome of a processed job.
type Result struct {
	URL      string
	Import   *models.ImportResult
	Error    error
	Duration time.Duration
	Imports  int // ledger rows for the source URL, 0 when unknown
}

// Dispatcher routes each URL to the thread or web importer.
type Dispatcher struct {
	Threads ThreadImporter
	Web     WebImporter
	Ledger  Ledger // may be nil
	Form    webimport.Request
	Logger  *slog.Logger
}

// Dispatch imports one URL.
func (d *Dispatcher) Dispatch(ctx context.Context, rawURL string) (*models.ImportResult, error) {
	var result *models.ImportResult
	var err error

	if d.Threads.Handles(rawURL) {
		result, err = d.Threads.Import(ctx, rawURL)
	} else {
		req := d.Form
		req.URL = rawURL
		result, err = d.Web.Import(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	if d.Ledger != nil && result.Status == models.StatusImported {
		if _, err := d.Ledger.RecordImport(result); err != nil {
			d.Logger.Warn("failed to record import in ledger", "url", rawURL, "error", err)
		}
	}
	return result, nil
}

// timesImported looks up how often result's source was imported.
func (d *Dispatcher) timesImported(result *models.ImportResult) int {
	if d.Ledger == nil || result == nil || result.Status == models.StatusAborted {
		return 0
	}
	n, err := d.Ledger.CountImportsBySource(result.SourceURL)
	if err != nil {
		d.Logger.Warn("failed to count imports in ledger", "url", result.SourceURL, "error", err)
		return 0
	}
	return n
}

// run imports every URL with workerCount workers and returns the results in
// input order.
func run(ctx context.Context, d *Dispatcher, urls []string, workerCount int) []Result {
	if workerCount < 1 {
		workerCount = 1
	}

	d.Logger.Debug("starting import workers", "url_count", len(urls), "workers", workerCount)

	type indexedJob struct {
		index int
		job   Job
	}

	var wg sync.WaitGroup
	jobs := make(chan indexedJob, len(urls))
	results := make([]Result, len(urls))

	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for ij := range jobs {
				results[ij.index] = worker(ctx, id, d, ij.job)
			}
		}(w)
	}

	for i, u := range urls {
		jobs <- indexedJob{index: i, job: Job{URL: u}}
	}
	close(jobs)
	wg.Wait()

	d.Logger.Debug("all import workers finished")
	return results
}

func worker(ctx context.Context, id int, d *Dispatcher, job Job) Result {
	start := time.Now()
	d.Logger.Debug("worker started job", "worker_id", id, "url", job.URL)

	imported, err := d.Dispatch(ctx, job.URL)
	if err != nil {
		d.Logger.Error("import failed", "worker_id", id, "url", job.URL, "error", err)
	}
	return Result{URL: job.URL, Import: imported, Error: err, Duration: time.Since(start), Imports: d.timesImported(imported)}
}
