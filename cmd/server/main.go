package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ChrisW-priv/html-chunking/internal/api"
	"github.com/ChrisW-priv/html-chunking/internal/config"
	"github.com/ChrisW-priv/html-chunking/internal/convert"
	"github.com/ChrisW-priv/html-chunking/internal/enrich"
	"github.com/ChrisW-priv/html-chunking/internal/fetch"
	"github.com/ChrisW-priv/html-chunking/internal/pipeline"
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

	registry := convert.DefaultRegistry()
	registry[convert.FormatPDF] = &convert.PDFConverter{FallbackPdftotext: cfg.PDFFallbackPdftotext}

	var enricher *enrich.Client
	if cfg.EnrichEnabled {
		enricher = enrich.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	}
	fetcher := fetch.NewClient(cfg.FetchTimeout, cfg.MaxUploadBytes)

	orch := pipeline.NewOrchestrator(cfg, registry, enricher, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, fetcher, log, cfg)

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

		if enricher != nil {
			enricher.Close()
		}
		fetcher.Close()
	}()

	log.Info("starting htmlchunk server", "port", cfg.Port, "enrich", cfg.EnrichEnabled)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
