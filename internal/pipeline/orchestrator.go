package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mwaldrep/sigsplit/internal/blobstore"
	"github.com/mwaldrep/sigsplit/internal/config"
	"github.com/mwaldrep/sigsplit/internal/docstore"
	"github.com/mwaldrep/sigsplit/internal/extract"
	"github.com/mwaldrep/sigsplit/internal/ocr"
	"github.com/mwaldrep/sigsplit/internal/pagecache"
	"github.com/mwaldrep/sigsplit/internal/pagemap"
)

// Orchestrator manages the document processing pipeline.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	worker    *Worker
	extractor *Extractor
	registry  *docstore.Registry
	log       *slog.Logger
	cfg       config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator wires the pipeline together. The detector may not be
// nil: pages without a usable text layer are OCR'd during the scan.
func NewOrchestrator(cfg config.Config, claude *extract.ClaudeClient, store blobstore.Store, textCache *ocr.TextCache, detector pagemap.TextDetector, cache *pagecache.Cache, registry *docstore.Registry, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:      NewJobStore(cfg.JobTTL),
		queue:     make(chan *Job, cfg.MaxQueueSize),
		worker:    NewWorker(store, textCache, detector, registry, log),
		extractor: NewExtractor(claude, cache, textCache, detector, cfg.MaxConcurrentExtract, log),
		registry:  registry,
		log:       log,
		cfg:       cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.worker.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Extractor returns the field extractor for direct use by API handlers.
func (o *Orchestrator) Extractor() *Extractor {
	return o.extractor
}
