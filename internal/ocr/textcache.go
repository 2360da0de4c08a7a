package ocr

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/mwaldrep/sigsplit/internal/blobstore"
)

// TextCache is the read-through cache of already-OCR'd page text, keyed by
// (document, page). Page mapping and field extraction both read through it
// so a page is OCR'd at most once.
//
// Persisted as one blob per document (map of page index to text) so a
// restarted service does not redo OCR. A corrupt blob is treated as an
// empty cache, never as a fatal error.
type TextCache struct {
	store blobstore.Store

	mu   sync.Mutex
	docs map[string]map[int]string
}

func NewTextCache(store blobstore.Store) *TextCache {
	return &TextCache{
		store: store,
		docs:  make(map[string]map[int]string),
	}
}

func textKey(docID string) string {
	return fmt.Sprintf("ocrtext/%s.json", docID)
}

// Get returns the cached OCR text for a page, if any.
func (c *TextCache) Get(ctx context.Context, docID string, page int) (string, bool, error) {
	pages, err := c.load(ctx, docID)
	if err != nil {
		return "", false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	text, ok := pages[page]
	return text, ok, nil
}

// Put records OCR text for a page and persists the document's whole text
// map. Concurrent writers for different pages of one document are
// serialized here; the persisted blob always holds the merged map.
func (c *TextCache) Put(ctx context.Context, docID string, page int, text string) error {
	pages, err := c.load(ctx, docID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	pages[page] = text
	encoded := make(map[string]string, len(pages))
	for p, t := range pages {
		encoded[strconv.Itoa(p)] = t
	}
	c.mu.Unlock()

	if err := c.store.Put(ctx, textKey(docID), encoded); err != nil {
		return fmt.Errorf("persist ocr text: %w", err)
	}
	return nil
}

// load returns the in-memory page map for a document, reading it from the
// store on first access.
func (c *TextCache) load(ctx context.Context, docID string) (map[int]string, error) {
	c.mu.Lock()
	if pages, ok := c.docs[docID]; ok {
		c.mu.Unlock()
		return pages, nil
	}
	c.mu.Unlock()

	var encoded map[string]string
	found, err := c.store.Get(ctx, textKey(docID), &encoded)
	var de *blobstore.DecodeError
	if errors.As(err, &de) {
		found = false
	} else if err != nil {
		return nil, fmt.Errorf("load ocr text: %w", err)
	}

	pages := make(map[int]string)
	if found {
		for k, t := range encoded {
			if p, err := strconv.Atoi(k); err == nil {
				pages[p] = t
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have loaded it first; keep the existing map so
	// all callers share one instance.
	if existing, ok := c.docs[docID]; ok {
		return existing, nil
	}
	c.docs[docID] = pages
	return pages, nil
}

// Forget drops a document's in-memory entry and deletes its persisted
// blob. Used by the admin cache-clear path.
func (c *TextCache) Forget(ctx context.Context, docID string) error {
	c.mu.Lock()
	delete(c.docs, docID)
	c.mu.Unlock()
	return c.store.Delete(ctx, textKey(docID))
}
