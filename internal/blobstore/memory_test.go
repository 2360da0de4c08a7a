package blobstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemory_PutGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Put(ctx, "ns/doc1/page_0.json", map[string]string{"x": "1"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	var out map[string]string
	found, err := m.Get(ctx, "ns/doc1/page_0.json", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found {
		t.Fatal("expected key to be found")
	}
	if out["x"] != "1" {
		t.Errorf("expected x=1, got %q", out["x"])
	}
}

func TestMemory_GetMissing(t *testing.T) {
	m := NewMemory()
	var out map[string]string
	found, err := m.Get(context.Background(), "nope", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Error("expected missing key to report absent")
	}
}

func TestMemory_CorruptBlobIsDecodeError(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Put(ctx, "k", map[string]string{"a": "b"})
	m.Corrupt("k")

	var out map[string]string
	_, err := m.Get(ctx, "k", &out)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if de.Key != "k" {
		t.Errorf("expected key %q in error, got %q", "k", de.Key)
	}
}

func TestMemory_ListPrefixAndLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Put(ctx, "pagedata/d1/page_0.json", 1)
	m.Put(ctx, "pagedata/d1/page_1.json", 2)
	m.Put(ctx, "pagedata/d2/page_0.json", 3)

	keys, err := m.List(ctx, "pagedata/d1/", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d: %v", len(keys), keys)
	}

	keys, _ = m.List(ctx, "pagedata/", 2)
	if len(keys) != 2 {
		t.Errorf("expected limit to cap results at 2, got %d", len(keys))
	}
}

func TestMemory_DeleteMissingIsNoop(t *testing.T) {
	if err := NewMemory().Delete(context.Background(), "nope"); err != nil {
		t.Errorf("expected nil error deleting missing key, got %v", err)
	}
}
