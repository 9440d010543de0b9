package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"jpegscaler/internal/config"
	"jpegscaler/internal/pipeline"
	"jpegscaler/internal/scale"
	"jpegscaler/internal/storage"
)

var (
	// ErrStopped is returned by Submit once the worker no longer accepts jobs.
	ErrStopped = errors.New("worker stopped")
	// ErrNotStarted is returned by Submit before Start.
	ErrNotStarted = errors.New("worker not started")
)

// staleTempAge is how old a leftover temp file must be before
// SweepStaleTemp removes it.
const staleTempAge = time.Hour

// Job is one file to scale.
type Job struct {
	ID      int64
	Input   string
	Output  string // empty: derived from Input under the storage base dir
	Request scale.Request
	Quality pipeline.Quality
}

// Result reports the outcome of a Job.
type Result struct {
	Job    Job
	Output string
	Source scale.Dimensions
	Target scale.Dimensions
	Size   int
	Err    error
}

// Worker scales images in the background and reports each outcome on
// Results. Results must be drained while jobs are running.
type Worker struct {
	store       *storage.Storage
	cfg         *config.Config
	concurrency int
	jobs        chan Job
	results     chan Result
	done        <-chan struct{}

	mu      sync.RWMutex
	started bool
	stopped bool
	wg      sync.WaitGroup // WaitGroup to wait for active jobs to finish
}

// NewWorker creates a worker that runs up to concurrency jobs at once.
func NewWorker(store *storage.Storage, cfg *config.Config, concurrency int) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Worker{
		store:       store,
		cfg:         cfg,
		concurrency: concurrency,
		jobs:        make(chan Job, concurrency),
		results:     make(chan Result, concurrency),
	}
}

// Start launches the processing goroutines. Cancelling ctx stops them after
// their current job.
func (w *Worker) Start(ctx context.Context) {
	log.Printf("Worker: started with %d slot(s)", w.concurrency)
	w.mu.Lock()
	w.done = ctx.Done()
	w.started = true
	w.mu.Unlock()

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for {
				select {
				case <-ctx.Done():
					log.Println("Worker: context cancelled, stopping loop")
					return
				case job, ok := <-w.jobs:
					if !ok {
						return
					}
					w.results <- w.process(ctx, job)
				}
			}
		}()
	}
}

// Submit queues job. It blocks while all slots are busy and fails with
// ErrStopped after Stop or once the Start context is cancelled, and with
// ErrNotStarted before Start.
func (w *Worker) Submit(job Job) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrStopped
	}
	if !w.started {
		return ErrNotStarted
	}
	select {
	case <-w.done:
		return ErrStopped
	default:
	}

	select {
	case w.jobs <- job:
		return nil
	case <-w.done:
		return ErrStopped
	}
}

// SweepStaleTemp removes temp files that interrupted writes left in the
// storage base dir. Only files carrying the storage temp prefix are touched.
func (w *Worker) SweepStaleTemp() int {
	n, err := storage.CleanStaleTempFiles(w.store.BaseDir, staleTempAge)
	if err != nil {
		log.Printf("Worker: temp cleanup in %s failed: %v", w.store.BaseDir, err)
		return 0
	}
	if n > 0 {
		log.Printf("Worker: removed %d stale temp file(s) from %s", n, w.store.BaseDir)
	}
	return n
}

// Results delivers one Result per processed job. It is closed by Stop.
func (w *Worker) Results() <-chan Result {
	return w.results
}

// Stop stops accepting jobs, waits for queued and active jobs to finish and
// closes Results. Jobs left unprocessed by a cancelled context are reported
// with ErrStopped.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.jobs)
	w.mu.Unlock()

	log.Println("Worker: waiting for active jobs to finish...")
	w.wg.Wait()
	// jobs still queued when the context was cancelled
	for job := range w.jobs {
		w.results <- Result{Job: job, Output: job.Output, Err: ErrStopped}
	}
	close(w.results)
	log.Println("Worker: stopped")
}

func (w *Worker) process(ctx context.Context, job Job) Result {
	res := Result{Job: job, Output: job.Output}
	if res.Output == "" {
		res.Output = w.store.PathFor(job.Input)
		// a derived path must never clobber the original
		if err := storage.CheckDistinct(job.Input, res.Output); err != nil {
			res.Err = err
			log.Printf("Worker: job %d failed: %v", job.ID, err)
			return res
		}
	}

	log.Printf("Worker: processing job %d for file %s (%s)", job.ID, job.Input, job.Request)

	data, err := readInput(job.Input, w.cfg.MaxUploadBytes)
	if err != nil {
		res.Err = err
		log.Printf("Worker: job %d failed: %v", job.ID, err)
		return res
	}

	out, err := pipeline.Process(ctx, data, pipeline.Options{
		Request:      job.Request,
		Quality:      job.Quality,
		Workers:      w.cfg.Workers,
		MaxDimension: w.cfg.MaxDimension,
		AutoOrient:   w.cfg.AutoOrient,
	})
	if err != nil {
		res.Err = err
		log.Printf("Worker: job %d failed: %v", job.ID, err)
		return res
	}
	res.Source, res.Target, res.Size = out.Source, out.Target, len(out.Data)

	if err := w.store.Save(res.Output, out.Data); err != nil {
		res.Err = fmt.Errorf("save %s: %w", res.Output, err)
		log.Printf("Worker: job %d failed: %v", job.ID, res.Err)
		return res
	}

	log.Printf("Worker: job %d done %s -> %s (%s)", job.ID, res.Source, res.Target, res.Output)
	return res
}

func readInput(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("input file does not exist: %s", path)
		}
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	data, err := pipeline.ReadLimited(f, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
