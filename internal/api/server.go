// Package api is the HTTP surface: document upload and status, account
// page lookups, cached page-data reads and edits, batch extraction, and
// cache administration.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mwaldrep/sigsplit/internal/config"
	"github.com/mwaldrep/sigsplit/internal/docstore"
	"github.com/mwaldrep/sigsplit/internal/extract"
	"github.com/mwaldrep/sigsplit/internal/ocr"
	"github.com/mwaldrep/sigsplit/internal/pagecache"
	"github.com/mwaldrep/sigsplit/internal/pipeline"
)

// Server is the HTTP API server.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	registry     *docstore.Registry
	cache        *pagecache.Cache
	textCache    *ocr.TextCache
	claude       *extract.ClaudeClient
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, registry *docstore.Registry, cache *pagecache.Cache, textCache *ocr.TextCache, claude *extract.ClaudeClient, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		registry:     registry,
		cache:        cache,
		textCache:    textCache,
		claude:       claude,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.ServiceAPIKey, s.log))

		r.Post("/api/documents", s.handleUpload)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)

		r.Get("/api/documents", s.handleListDocuments)
		r.Get("/api/documents/{docID}", s.handleGetDocument)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)
		r.Get("/api/documents/{docID}/accounts/{accountIdx}/pages", s.handleAccountPages)

		r.Get("/api/documents/{docID}/pages/{page}/data", s.handleGetPageData)
		r.Post("/api/documents/{docID}/pages/{page}/data", s.handleUpdatePageData)
		r.Post("/api/documents/{docID}/accounts/{accountIdx}/extract", s.handleExtractAccount)

		r.Delete("/api/admin/documents/{docID}/cache", s.handleClearCache)
		r.Post("/api/admin/documents/{docID}/cache/migrate", s.handleMigrateCache)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
