package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mwaldrep/sigsplit/internal/docstore"
)

// handleListDocuments lists all registered documents.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.registry.List()
	out := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		out = append(out, docSummary(doc))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": out})
}

// handleGetDocument returns one document's segmentation result.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.registry.Get(chi.URLParam(r, "docID"))
	if !ok {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	body := docSummary(doc)
	body["accounts"] = doc.Accounts
	body["ambiguous_pages"] = doc.Ambiguous
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

// handleAccountPages returns the resolved page list for one account.
func (s *Server) handleAccountPages(w http.ResponseWriter, r *http.Request) {
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
	account := doc.Accounts[idx]
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":         doc.ID,
		"account_index":  idx,
		"account_number": account.Number,
		"pages":          account.Pages,
	})
}

// handleDeleteDocument removes a document's registry record and all of its
// cached page data and OCR text.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if _, ok := s.registry.Get(docID); !ok {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	removed, err := s.cache.Clear(r.Context(), docID)
	if err != nil {
		jsonError(w, "failed to clear cache: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.textCache.Forget(r.Context(), docID); err != nil {
		s.log.Warn("ocr text delete failed", "doc_id", docID, "error", err)
	}
	s.registry.Delete(docID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":        docID,
		"blobs_removed": removed,
	})
}

func docSummary(doc docstore.Document) map[string]any {
	return map[string]any{
		"doc_id":     doc.ID,
		"filename":   doc.Filename,
		"page_count": doc.PageCount,
		"kind":       doc.Kind,
		"accounts":   len(doc.Accounts),
		"status":     doc.Status,
		"created_at": doc.CreatedAt,
		"updated_at": doc.UpdatedAt,
	}
}
