package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mwaldrep/sigsplit/internal/docstore"
	"github.com/mwaldrep/sigsplit/internal/extract"
	"github.com/mwaldrep/sigsplit/internal/ocr"
	"github.com/mwaldrep/sigsplit/internal/pagecache"
	"github.com/mwaldrep/sigsplit/internal/pagemap"
	"github.com/mwaldrep/sigsplit/internal/pdfdoc"
)

// Extractor computes per-page field data on cache misses. Extraction calls
// the language model, so its concurrency is bounded much tighter than the
// page scan.
type Extractor struct {
	claude        *extract.ClaudeClient
	cache         *pagecache.Cache
	textCache     *ocr.TextCache
	detector      pagemap.TextDetector
	maxConcurrent int
	log           *slog.Logger
}

func NewExtractor(claude *extract.ClaudeClient, cache *pagecache.Cache, textCache *ocr.TextCache, detector pagemap.TextDetector, maxConcurrent int, log *slog.Logger) *Extractor {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	return &Extractor{
		claude:        claude,
		cache:         cache,
		textCache:     textCache,
		detector:      detector,
		maxConcurrent: maxConcurrent,
		log:           log,
	}
}

// PageData returns cached field data for one page, computing and storing
// it on a miss. The bool reports whether the entry came from the cache.
func (e *Extractor) PageData(ctx context.Context, rec docstore.Document, accountIdx, page int) (*pagecache.Entry, bool, error) {
	if page < 0 || page >= rec.PageCount {
		return nil, false, fmt.Errorf("page %d out of range [0,%d)", page, rec.PageCount)
	}
	doc, err := pdfdoc.Load(rec.Raw, rec.ID, rec.Filename)
	if err != nil {
		return nil, false, fmt.Errorf("load pdf: %w", err)
	}
	src := &pagemap.TextSource{
		Doc:      doc,
		Raw:      rec.Raw,
		Cache:    e.textCache,
		Detector: e.detector,
	}
	return e.pageData(ctx, src, rec, accountIdx, page)
}

func (e *Extractor) pageData(ctx context.Context, src *pagemap.TextSource, rec docstore.Document, accountIdx, page int) (*pagecache.Entry, bool, error) {
	account := ""
	if accountIdx >= 0 && accountIdx < len(rec.Accounts) {
		account = rec.Accounts[accountIdx].Number
	}
	kind := extract.ParseKind(rec.Kind)
	key := pagecache.Key(rec.ID, accountIdx, page)

	return e.cache.GetOrCompute(ctx, key, func(ctx context.Context) (map[string]any, string, error) {
		text, err := src.PageText(ctx, page)
		if err != nil {
			return nil, "", fmt.Errorf("page text: %w", err)
		}
		prompt := extract.BuildPagePrompt(kind, account, text)

		var fields map[string]any
		var lastErr error
		for attempt := range MaxRetries {
			fields, lastErr = e.claude.ExtractFields(ctx, prompt)
			if lastErr == nil || !IsRetryable(lastErr) {
				break
			}
			e.log.Warn("retryable extraction error", "doc_id", rec.ID, "page", page, "attempt", attempt, "error", lastErr)
			select {
			case <-time.After(Backoff(attempt)):
			case <-ctx.Done():
				return nil, "", ctx.Err()
			}
		}
		if lastErr != nil {
			return nil, "", lastErr
		}
		return fields, account, nil
	})
}

// ExtractAccount computes field data for every page of one account with
// bounded concurrency. A failed page does not abort the batch. Returns
// how many pages succeeded out of how many were attempted.
func (e *Extractor) ExtractAccount(ctx context.Context, rec docstore.Document, accountIdx int) (int, int, error) {
	if accountIdx < 0 || accountIdx >= len(rec.Accounts) {
		return 0, 0, fmt.Errorf("account index %d out of range [0,%d)", accountIdx, len(rec.Accounts))
	}
	pages := rec.Accounts[accountIdx].Pages
	if len(pages) == 0 {
		return 0, 0, nil
	}

	doc, err := pdfdoc.Load(rec.Raw, rec.ID, rec.Filename)
	if err != nil {
		return 0, len(pages), fmt.Errorf("load pdf: %w", err)
	}
	src := &pagemap.TextSource{
		Doc:      doc,
		Raw:      rec.Raw,
		Cache:    e.textCache,
		Detector: e.detector,
	}

	sem := make(chan struct{}, e.maxConcurrent)
	results := make(chan error, len(pages))
	for _, page := range pages {
		sem <- struct{}{}
		go func(page int) {
			defer func() { <-sem }()
			_, _, err := e.pageData(ctx, src, rec, accountIdx, page)
			if err != nil {
				e.log.Error("page extraction failed", "doc_id", rec.ID, "account_idx", accountIdx, "page", page, "error", err)
			}
			results <- err
		}(page)
	}

	succeeded := 0
	for range pages {
		if err := <-results; err == nil {
			succeeded++
		}
	}
	return succeeded, len(pages), nil
}
