// Package pagecache is the durable per-page field-data cache: get,
// compute-once, and add/edit/delete mutations with read-after-write
// verification.
package pagecache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mwaldrep/sigsplit/internal/blobstore"
)

// Entry is one page's cached field data. Field values are scalars, lists
// of scalars, or one level of supporting-document records.
type Entry struct {
	Fields        map[string]any `json:"fields"`
	AccountNumber string         `json:"account_number,omitempty"`
	Edited        bool           `json:"edited"`
	CreatedAt     time.Time      `json:"created_at"`
	EditedAt      *time.Time     `json:"edited_at,omitempty"`
}

// Action is a client-requested field mutation kind.
type Action string

const (
	ActionAdd    Action = "add"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// ComputeFn produces field data for a page on a cache miss (OCR if needed
// plus a field-extraction call). Returns the fields and the owning account
// number.
type ComputeFn func(ctx context.Context) (map[string]any, string, error)

// Cache stores one entry per (document, optional account, page). Entries
// are independent blobs: concurrent writers to different keys never
// conflict, and same-key races resolve last-write-wins.
type Cache struct {
	store blobstore.Store
}

func New(store blobstore.Store) *Cache {
	return &Cache{store: store}
}

// Key builds the blob key for a page entry. accountIdx < 0 means the page
// is not attributed to any account.
func Key(docID string, accountIdx, page int) string {
	if accountIdx < 0 {
		return fmt.Sprintf("pagedata/%s/page_%d.json", docID, page)
	}
	return fmt.Sprintf("pagedata/%s/account_%d/page_%d.json", docID, accountIdx, page)
}

// Get is a pure lookup; it never triggers computation. A corrupt blob
// reports absent so the caller recomputes.
func (c *Cache) Get(ctx context.Context, key string) (*Entry, bool, error) {
	var entry Entry
	found, err := c.store.Get(ctx, key, &entry)
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
	if entry.Fields == nil {
		entry.Fields = map[string]any{}
	}
	return &entry, true, nil
}

// GetOrCompute returns the cached entry, or invokes compute and stores the
// result. Concurrent callers for the same key may both compute; the last
// writer wins, which is accepted for this cache.
//
// The second return value reports whether the entry came from the cache.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute ComputeFn) (*Entry, bool, error) {
	if entry, found, err := c.Get(ctx, key); err != nil {
		return nil, false, err
	} else if found {
		return entry, true, nil
	}

	fields, account, err := compute(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("compute %s: %w", key, err)
	}

	entry := &Entry{
		Fields:        Flatten(fields),
		AccountNumber: account,
		Edited:        false,
		CreatedAt:     time.Now().UTC(),
	}
	if err := c.store.Put(ctx, key, entry); err != nil {
		return nil, false, fmt.Errorf("store %s: %w", key, err)
	}
	return entry, false, nil
}

// ApplyUpdate merges a client-supplied field delta into the entry at key,
// creating it from an empty field map when absent. For add and edit, each
// delta key overwrites or inserts; for delete, deletedFields are removed.
// The entry is persisted and then read back; the read-back entry is
// returned so the caller observes exactly what was stored.
func (c *Cache) ApplyUpdate(ctx context.Context, key string, delta map[string]any, deletedFields []string, action Action) (*Entry, error) {
	entry, found, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		entry = &Entry{
			Fields:    map[string]any{},
			CreatedAt: time.Now().UTC(),
		}
	}

	switch action {
	case ActionAdd, ActionEdit:
		for k, v := range Flatten(delta) {
			entry.Fields[k] = v
		}
	case ActionDelete:
		for _, name := range deletedFields {
			delete(entry.Fields, name)
		}
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}

	now := time.Now().UTC()
	entry.Edited = true
	entry.EditedAt = &now

	if err := c.store.Put(ctx, key, entry); err != nil {
		return nil, fmt.Errorf("store %s: %w", key, err)
	}

	// Read-after-write verification: the caller gets what the store now
	// holds, not what we intended to write.
	stored, found, err := c.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("verify %s: %w", key, err)
	}
	if !found {
		return nil, fmt.Errorf("verify %s: entry missing after write", key)
	}
	return stored, nil
}

// Clear deletes every blob under a document's page-data namespace,
// including the persisted mapping. Returns the number of keys removed.
func (c *Cache) Clear(ctx context.Context, docID string) (int, error) {
	prefix := fmt.Sprintf("pagedata/%s/", docID)
	keys, err := c.store.List(ctx, prefix, 0)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", prefix, err)
	}
	removed := 0
	for _, key := range keys {
		if err := c.store.Delete(ctx, key); err != nil {
			return removed, fmt.Errorf("delete %s: %w", key, err)
		}
		removed++
	}
	return removed, nil
}

// Migrate rewrites every page entry of a document through Flatten.
// Flattening is idempotent, so re-running a migration changes nothing.
// Corrupt entries are skipped, not fatal.
func (c *Cache) Migrate(ctx context.Context, docID string) (int, error) {
	prefix := fmt.Sprintf("pagedata/%s/", docID)
	keys, err := c.store.List(ctx, prefix, 0)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", prefix, err)
	}
	migrated := 0
	for _, key := range keys {
		if !strings.Contains(key, "/page_") {
			continue
		}
		entry, found, err := c.Get(ctx, key)
		if err != nil || !found {
			continue
		}
		entry.Fields = Flatten(entry.Fields)
		if err := c.store.Put(ctx, key, entry); err != nil {
			return migrated, fmt.Errorf("store %s: %w", key, err)
		}
		migrated++
	}
	return migrated, nil
}
