package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mwaldrep/sigsplit/internal/api"
	"github.com/mwaldrep/sigsplit/internal/blobstore"
	"github.com/mwaldrep/sigsplit/internal/config"
	"github.com/mwaldrep/sigsplit/internal/docstore"
	"github.com/mwaldrep/sigsplit/internal/extract"
	"github.com/mwaldrep/sigsplit/internal/ocr"
	"github.com/mwaldrep/sigsplit/internal/pagecache"
	"github.com/mwaldrep/sigsplit/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	store := blobstore.NewClient(cfg.BlobstoreURL, cfg.BlobstoreAPIKey)
	ocrClient := ocr.NewClient(cfg.OCRURL, cfg.OCRAPIKey)
	claude := extract.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)

	// Initialize caches and registry.
	textCache := ocr.NewTextCache(store)
	cache := pagecache.New(store)
	registry := docstore.NewRegistry()

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, claude, store, textCache, ocrClient, cache, registry, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, registry, cache, textCache, claude, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		claude.Close()
		ocrClient.Close()
		store.Close()
	}()

	log.Info("starting sigsplit", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
