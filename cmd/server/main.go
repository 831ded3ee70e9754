package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/designmark/internal/api"
	"github.com/dgallion1/designmark/internal/config"
	"github.com/dgallion1/designmark/internal/pipeline"
	"github.com/dgallion1/designmark/internal/textgen"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if cfg.HeuristicsFile != "" {
		h, err := config.LoadHeuristics(cfg.HeuristicsFile)
		if err != nil {
			log.Error("invalid heuristics file", "error", err)
			os.Exit(1)
		}
		cfg.Heuristics = h
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Copy enrichment is optional.
	var (
		tg        *textgen.Client
		completer textgen.Completer
	)
	if cfg.EnrichEnabled() {
		var err error
		tg, err = textgen.NewClient(textgen.Config{
			Provider: cfg.TextgenProvider,
			Endpoint: cfg.TextgenEndpoint,
			APIKey:   cfg.TextgenAPIKey,
			Model:    cfg.TextgenModel,
			Timeout:  cfg.TextgenTimeout,
		})
		if err != nil {
			log.Error("invalid text provider", "error", err)
			os.Exit(1)
		}
		completer = tg
		log.Info("copy enrichment enabled", "provider", tg.Provider(), "model", tg.Model())
	}

	// Initialize pipeline.
	conv := pipeline.NewConverter(cfg.Heuristics, completer, pipeline.EnrichConfig{
		Concurrency: cfg.TextgenConcurrency,
		Timeout:     cfg.TextgenTimeout,
	}, log)
	orch := pipeline.NewOrchestrator(cfg, conv, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, tg, log, cfg)

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

		if tg != nil {
			tg.Close()
		}
	}()

	log.Info("starting designmark", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
