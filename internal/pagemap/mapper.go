// Package pagemap determines which account each physical page belongs to
// and resolves per-account contiguous page ranges.
package pagemap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/mwaldrep/sigsplit/internal/blobstore"
	"github.com/mwaldrep/sigsplit/internal/ocr"
	"github.com/mwaldrep/sigsplit/internal/pdfdoc"
	"github.com/mwaldrep/sigsplit/internal/textnorm"
)

// Mapping is the sparse page index → account number function. It is built
// in one parallel scan and replaced wholesale on recomputation, never
// partially invalidated.
type Mapping map[int]string

// Result is a full document scan: the mapping plus the pages where more
// than one account number matched, flagged for manual review.
type Result struct {
	Pages     Mapping
	Ambiguous []int
}

// TextDetector runs OCR on a page image.
type TextDetector interface {
	DetectText(ctx context.Context, image []byte) ([]string, error)
}

// TextSource resolves usable text for a page: OCR cache first, then the
// native text layer if trustworthy, then the OCR fallback. OCR results are
// written through the cache for reuse by field extraction.
type TextSource struct {
	Doc      *pdfdoc.Document
	Raw      []byte
	Cache    *ocr.TextCache
	Detector TextDetector

	// RenderImage overrides page-image extraction; tests stub it.
	RenderImage func(data []byte, pageIndex int) ([]byte, error)
}

// PageText returns text for the given page. An empty result with a nil
// error means the page genuinely has no text.
func (s *TextSource) PageText(ctx context.Context, page int) (string, error) {
	if s.Cache != nil {
		if text, ok, err := s.Cache.Get(ctx, s.Doc.ID, page); err == nil && ok {
			return text, nil
		}
	}

	p := s.Doc.Pages[page]
	if !pdfdoc.NeedsOCR(p.Text, p.Watermarked) {
		return p.Text, nil
	}

	render := s.RenderImage
	if render == nil {
		render = pdfdoc.PageImage
	}
	img, err := render(s.Raw, page)
	if err != nil {
		return "", fmt.Errorf("render page %d: %w", page, err)
	}
	lines, err := s.Detector.DetectText(ctx, img)
	if err != nil {
		return "", fmt.Errorf("ocr page %d: %w", page, err)
	}
	text := strings.Join(lines, "\n")

	if s.Cache != nil {
		if err := s.Cache.Put(ctx, s.Doc.ID, page, text); err != nil {
			// Cache write failure is not fatal to the scan.
			return text, nil
		}
	}
	return text, nil
}

// maxScanWorkers bounds the page-scan pool. Scans are I/O-bound (OCR
// calls) and cheap to run wide.
const maxScanWorkers = 10

// Build scans every page in parallel and returns the page→account mapping.
// A page whose text cannot be obtained is a soft failure: it is logged,
// left unmapped, and does not abort the scan.
func Build(ctx context.Context, src *TextSource, accounts []string, log *slog.Logger) Result {
	pageCount := src.Doc.PageCount()
	res := Result{Pages: make(Mapping)}
	if pageCount == 0 || len(accounts) == 0 {
		return res
	}

	candidates := normalizeCandidates(accounts)

	workers := maxScanWorkers
	if pageCount < workers {
		workers = pageCount
	}

	type pageResult struct {
		page      int
		account   string
		ambiguous bool
	}
	results := make(chan pageResult, pageCount)
	sem := make(chan struct{}, workers)

	for i := 0; i < pageCount; i++ {
		sem <- struct{}{}
		go func(page int) {
			defer func() { <-sem }()
			text, err := src.PageText(ctx, page)
			if err != nil {
				log.Warn("page text unavailable", "doc_id", src.Doc.ID, "page", page, "error", err)
				results <- pageResult{page: page}
				return
			}
			account, ambiguous := matchAccount(text, candidates)
			results <- pageResult{page: page, account: account, ambiguous: ambiguous}
		}(i)
	}

	// Workers complete in any order; the mapping is a union of per-page
	// results, so collection order does not matter.
	for range pageCount {
		r := <-results
		if r.account != "" {
			res.Pages[r.page] = r.account
		}
		if r.ambiguous {
			res.Ambiguous = append(res.Ambiguous, r.page)
		}
	}
	sort.Ints(res.Ambiguous)
	return res
}

type candidate struct {
	account string
	norm    string
}

// normalizeCandidates orders account numbers longest-normalized-first so
// that when one number is a substring of another, the longer match wins.
func normalizeCandidates(accounts []string) []candidate {
	cands := make([]candidate, 0, len(accounts))
	for _, a := range accounts {
		cands = append(cands, candidate{account: a, norm: textnorm.Normalize(a)})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return len(cands[i].norm) > len(cands[j].norm)
	})
	return cands
}

// matchAccount tests normalized substring containment of each candidate in
// the page text. Returns the longest matching account and whether more
// than one distinct account matched.
func matchAccount(text string, candidates []candidate) (string, bool) {
	norm := textnorm.Normalize(text)
	if norm == "" {
		return "", false
	}
	matched := ""
	count := 0
	for _, c := range candidates {
		if c.norm == "" {
			continue
		}
		if strings.Contains(norm, c.norm) {
			if matched == "" {
				matched = c.account
			}
			count++
		}
	}
	return matched, count > 1
}

// MappingKey is the blob key for a document's persisted mapping.
func MappingKey(docID string) string {
	return fmt.Sprintf("pagedata/%s/mapping.json", docID)
}

// Save persists the mapping, replacing any prior blob for the document.
func Save(ctx context.Context, store blobstore.Store, docID string, m Mapping) error {
	encoded := make(map[string]string, len(m))
	for p, a := range m {
		encoded[strconv.Itoa(p)] = a
	}
	if err := store.Put(ctx, MappingKey(docID), encoded); err != nil {
		return fmt.Errorf("persist mapping: %w", err)
	}
	return nil
}

// Load reads a persisted mapping. A corrupt blob reports absent so the
// caller recomputes.
func Load(ctx context.Context, store blobstore.Store, docID string) (Mapping, bool, error) {
	var encoded map[string]string
	found, err := store.Get(ctx, MappingKey(docID), &encoded)
	if err != nil {
		var de *blobstore.DecodeError
		if errors.As(err, &de) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	m := make(Mapping, len(encoded))
	for k, a := range encoded {
		if p, err := strconv.Atoi(k); err == nil {
			m[p] = a
		}
	}
	return m, true, nil
}
