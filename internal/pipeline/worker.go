package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mwaldrep/sigsplit/internal/blobstore"
	"github.com/mwaldrep/sigsplit/internal/docstore"
	"github.com/mwaldrep/sigsplit/internal/extract"
	"github.com/mwaldrep/sigsplit/internal/ocr"
	"github.com/mwaldrep/sigsplit/internal/pagemap"
	"github.com/mwaldrep/sigsplit/internal/pdfdoc"
	"github.com/mwaldrep/sigsplit/internal/segment"
)

// Worker processes a single document job.
type Worker struct {
	store     blobstore.Store
	textCache *ocr.TextCache
	detector  pagemap.TextDetector
	registry  *docstore.Registry
	log       *slog.Logger
}

func NewWorker(store blobstore.Store, textCache *ocr.TextCache, detector pagemap.TextDetector, registry *docstore.Registry, log *slog.Logger) *Worker {
	return &Worker{
		store:     store,
		textCache: textCache,
		detector:  detector,
		registry:  registry,
		log:       log,
	}
}

// Process runs the full segmentation pipeline for a job: read the PDF,
// split the combined text into account chunks, scan pages against the
// found account numbers, resolve per-account page ranges, and persist the
// mapping and registry record.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Read
	job.SetStatus(StatusReading, "reading pdf")
	data := job.FileData()
	if _, err := pdfdoc.Validate(data); err != nil {
		log.Error("pdf validation failed", "error", err)
		job.AddError(fmt.Sprintf("validate: %s", err))
		job.SetStatus(StatusFailed, "reading pdf")
		return
	}
	doc, err := pdfdoc.Load(data, job.DocID, job.Filename)
	if err != nil {
		log.Error("pdf load failed", "error", err)
		job.AddError(fmt.Sprintf("load: %s", err))
		job.SetStatus(StatusFailed, "reading pdf")
		return
	}
	job.SetTotalPages(doc.PageCount())
	job.ContentHash = ContentHashHex(data)

	// Register the document right away so it is visible while processing.
	w.registry.Put(docstore.Document{
		ID:        job.DocID,
		Filename:  job.Filename,
		PageCount: doc.PageCount(),
		Status:    "processing",
		CreatedAt: job.CreatedAt,
		Raw:       data,
	})

	fullText := doc.FullText()
	kind := extract.DetectKind(fullText)

	// Phase 2: Segment
	job.SetStatus(StatusSegmenting, "segmenting accounts")
	chunks := segment.Segment(fullText)
	accounts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		accounts = append(accounts, c.AccountNumber)
	}
	job.SetAccountsFound(len(accounts))
	log.Info("segmented document", "accounts", len(accounts), "kind", kind.String())

	// Phase 3: Map pages to accounts. A prior run over the same content
	// already paid for the scan (and its OCR calls), so reuse its mapping.
	job.SetStatus(StatusMapping, "scanning pages")
	var res pagemap.Result
	if m, ambiguous, ok := w.priorMapping(ctx, job); ok {
		log.Info("reusing persisted mapping", "mapped", len(m))
		res = pagemap.Result{Pages: m, Ambiguous: ambiguous}
	} else {
		src := &pagemap.TextSource{
			Doc:      doc,
			Raw:      data,
			Cache:    w.textCache,
			Detector: w.detector,
		}
		res = pagemap.Build(ctx, src, accounts, log)
	}
	job.SetScanResult(doc.PageCount(), len(res.Pages))
	log.Info("page scan complete", "mapped", len(res.Pages), "ambiguous", len(res.Ambiguous))

	// Phase 4: Resolve ranges
	job.SetStatus(StatusResolving, "resolving page ranges")
	ranges := pagemap.Ranges(res.Pages, accounts, doc.PageCount())

	// Phase 5: Persist
	job.SetStatus(StatusStoring, "storing results")
	hadErrors := len(job.Snapshot().Progress.Errors) > 0
	if err := pagemap.Save(ctx, w.store, job.DocID, res.Pages); err != nil {
		log.Error("mapping persist failed", "error", err)
		job.AddError(fmt.Sprintf("mapping: %s", err))
		hadErrors = true
	}

	recAccounts := make([]docstore.Account, len(accounts))
	for i, number := range accounts {
		recAccounts[i] = docstore.Account{Number: number, Pages: ranges[i]}
	}

	meta := map[string]any{
		"filename":        job.Filename,
		"page_count":      doc.PageCount(),
		"kind":            kind.String(),
		"accounts":        recAccounts,
		"ambiguous_pages": res.Ambiguous,
		"content_hash":    job.ContentHash,
		"created_at":      job.CreatedAt.Format(time.RFC3339),
	}
	if err := w.store.Put(ctx, metaKey(job.DocID), meta); err != nil {
		log.Error("meta persist failed", "error", err)
		job.AddError(fmt.Sprintf("meta: %s", err))
		hadErrors = true
	}

	status := StatusCompleted
	if hadErrors {
		status = StatusPartial
	}
	w.registry.Update(job.DocID, func(d *docstore.Document) {
		d.Kind = kind.String()
		d.Accounts = recAccounts
		d.Ambiguous = res.Ambiguous
		d.Status = string(status)
	})

	job.SetStatus(status, "done")
	log.Info("processing complete", "status", status, "accounts", len(accounts))
}

func metaKey(docID string) string {
	return fmt.Sprintf("docs/%s/meta.json", docID)
}

// priorMapping returns the mapping persisted by an earlier run over the
// same content. Any miss (no meta, different content hash, no mapping
// blob) means the page scan runs as usual.
func (w *Worker) priorMapping(ctx context.Context, job *Job) (pagemap.Mapping, []int, bool) {
	var meta struct {
		ContentHash string `json:"content_hash"`
		Ambiguous   []int  `json:"ambiguous_pages"`
	}
	found, err := w.store.Get(ctx, metaKey(job.DocID), &meta)
	if err != nil || !found || meta.ContentHash == "" || meta.ContentHash != job.ContentHash {
		return nil, nil, false
	}
	m, ok, err := pagemap.Load(ctx, w.store, job.DocID)
	if err != nil || !ok {
		return nil, nil, false
	}
	return m, meta.Ambiguous, true
}
