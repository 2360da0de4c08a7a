// Package blobstore is the persistence boundary: JSON blobs addressed by
// hierarchical string keys like "pagedata/<doc>/account_0/page_3.json".
package blobstore

import (
	"context"
	"fmt"
)

// Store is the key/value contract backing the OCR text cache, the
// page-account mapping, and the page extraction cache.
type Store interface {
	// Put stores value (JSON-encoded) at key, replacing any prior blob.
	Put(ctx context.Context, key string, value any) error
	// Get loads the blob at key into out. Returns false with a nil error
	// when the key is absent.
	Get(ctx context.Context, key string, out any) (bool, error)
	// Delete removes the blob at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns up to limit keys under the given prefix.
	List(ctx context.Context, prefix string, limit int) ([]string, error)
}

// DecodeError marks a blob that exists but cannot be deserialized. Cache
// layers treat these as absent and recompute rather than failing.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode blob %s: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
