// Package docstore keeps an in-memory registry of processed documents and
// their account segmentation results.
package docstore

import (
	"sort"
	"sync"
	"time"
)

// Account is one account found in a document and the pages assigned to it.
type Account struct {
	Number string `json:"account_number"`
	Pages  []int  `json:"pages"`
}

// Document is the registry record for one uploaded PDF.
type Document struct {
	ID        string    `json:"doc_id"`
	Filename  string    `json:"filename"`
	PageCount int       `json:"page_count"`
	Kind      string    `json:"kind"`
	Accounts  []Account `json:"accounts"`
	Ambiguous []int     `json:"ambiguous_pages,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Raw holds the original PDF bytes for re-extraction. Never serialized.
	Raw []byte `json:"-"`
}

// Registry is a thread-safe in-memory document registry.
type Registry struct {
	mu   sync.Mutex
	docs map[string]Document
}

func NewRegistry() *Registry {
	return &Registry{docs: make(map[string]Document)}
}

// Put inserts or replaces a document record.
func (r *Registry) Put(doc Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = doc.UpdatedAt
	}
	r.docs[doc.ID] = doc
}

// Get returns a document record by ID.
func (r *Registry) Get(id string) (Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	return doc, ok
}

// Update applies fn to the record under the lock. Returns false when the
// document does not exist.
func (r *Registry) Update(id string, fn func(*Document)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return false
	}
	fn(&doc)
	doc.UpdatedAt = time.Now()
	r.docs[id] = doc
	return true
}

// List returns all records, newest first.
func (r *Registry) List() []Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Document, 0, len(r.docs))
	for _, doc := range r.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Delete removes a record. Returns true when something was removed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.docs[id]
	delete(r.docs, id)
	return ok
}
