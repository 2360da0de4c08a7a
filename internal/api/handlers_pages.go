package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mwaldrep/sigsplit/internal/pagecache"
)

// handleGetPageData returns a page's field data. By default a cache miss
// triggers extraction; cached_only=true makes misses report 404 instead.
// The optional account query parameter scopes the entry to one account.
func (s *Server) handleGetPageData(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.registry.Get(chi.URLParam(r, "docID"))
	if !ok {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 0 || page >= doc.PageCount {
		jsonError(w, "page out of range", http.StatusNotFound)
		return
	}

	accountIdx := -1
	if v := r.URL.Query().Get("account"); v != "" {
		accountIdx, err = strconv.Atoi(v)
		if err != nil || accountIdx < 0 || accountIdx >= len(doc.Accounts) {
			jsonError(w, "account index out of range", http.StatusBadRequest)
			return
		}
	}
	key := pagecache.Key(doc.ID, accountIdx, page)

	if r.URL.Query().Get("cached_only") == "true" {
		entry, found, err := s.cache.Get(r.Context(), key)
		if err != nil {
			jsonError(w, "cache read failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if !found {
			jsonError(w, "no data for this page", http.StatusNotFound)
			return
		}
		writePageData(w, entry, true, "cache")
		return
	}

	entry, cached, err := s.orchestrator.Extractor().PageData(r.Context(), doc, accountIdx, page)
	if err != nil {
		s.log.Error("page extraction failed", "doc_id", doc.ID, "page", page, "error", err)
		jsonError(w, "extraction failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	source := "extraction"
	if cached {
		source = "cache"
	}
	writePageData(w, entry, cached, source)
}

// handleUpdatePageData applies a client field edit to a page's cached
// entry and returns the stored result.
func (s *Server) handleUpdatePageData(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.registry.Get(chi.URLParam(r, "docID"))
	if !ok {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 0 || page >= doc.PageCount {
		jsonError(w, "page out of range", http.StatusNotFound)
		return
	}

	var req struct {
		Action        string         `json:"action"`
		Account       *int           `json:"account,omitempty"`
		Fields        map[string]any `json:"fields,omitempty"`
		DeletedFields []string       `json:"deleted_fields,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	action := pagecache.Action(req.Action)
	switch action {
	case pagecache.ActionAdd, pagecache.ActionEdit, pagecache.ActionDelete:
	default:
		jsonError(w, fmt.Sprintf("unknown action %q", req.Action), http.StatusBadRequest)
		return
	}

	accountIdx := -1
	if req.Account != nil {
		accountIdx = *req.Account
		if accountIdx < 0 || accountIdx >= len(doc.Accounts) {
			jsonError(w, "account index out of range", http.StatusBadRequest)
			return
		}
	}
	key := pagecache.Key(doc.ID, accountIdx, page)

	entry, err := s.cache.ApplyUpdate(r.Context(), key, req.Fields, req.DeletedFields, action)
	if err != nil {
		jsonError(w, "update failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writePageData(w, entry, true, "cache")
}

// handleExtractAccount runs batch extraction over every page of one
// account. Page failures are soft; the response reports the tally.
func (s *Server) handleExtractAccount(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.registry.Get(chi.URLParam(r, "docID"))
	if !ok {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "accountIdx"))
	if err != nil || idx < 0 || idx >= len(doc.Accounts) {
		jsonError(w, "account index out of range", http.StatusNotFound)
		return
	}

	succeeded, total, err := s.orchestrator.Extractor().ExtractAccount(r.Context(), doc, idx)
	if err != nil {
		jsonError(w, "batch extraction failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":         doc.ID,
		"account_index":  idx,
		"account_number": doc.Accounts[idx].Number,
		"succeeded":      succeeded,
		"total":          total,
		"message":        fmt.Sprintf("%d of %d pages succeeded", succeeded, total),
	})
}

// handleClearCache drops every cached blob for a document, including the
// persisted page mapping and OCR text. The next read recomputes.
func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	removed, err := s.cache.Clear(r.Context(), docID)
	if err != nil {
		jsonError(w, "clear failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.textCache.Forget(r.Context(), docID); err != nil {
		s.log.Warn("ocr text delete failed", "doc_id", docID, "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":        docID,
		"blobs_removed": removed,
	})
}

// handleMigrateCache rewrites a document's cached entries through the
// current field-flattening rules.
func (s *Server) handleMigrateCache(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	migrated, err := s.cache.Migrate(r.Context(), docID)
	if err != nil {
		jsonError(w, "migrate failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":   docID,
		"migrated": migrated,
	})
}

func writePageData(w http.ResponseWriter, entry *pagecache.Entry, cached bool, source string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success":      true,
		"data":         entry,
		"cached":       cached,
		"cache_source": source,
	})
}
