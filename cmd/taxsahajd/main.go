package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/taxsahaj/taxsahaj/internal/batch"
	"github.com/taxsahaj/taxsahaj/internal/common"
	"github.com/taxsahaj/taxsahaj/internal/llm/ollama"
	"github.com/taxsahaj/taxsahaj/internal/pipeline"
	"github.com/taxsahaj/taxsahaj/internal/repository"
	"github.com/taxsahaj/taxsahaj/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.NewFromConfig(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("store init failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	completer := batch.NewRetryCompleter(
		ollama.NewClient(ollama.Config{
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger),
		uint(cfg.LLM.MaxRetries)+1,
		logger,
	)

	analyzer := pipeline.NewAnalyzer(completer, logger)
	analyzer.CompletionTimeout = cfg.LLM.Timeout

	svc := server.New(analyzer, store, cfg.Tax.DefaultYear, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: svc.Router(),
	}

	go func() {
		logger.Info("http.serve", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("stopped")
}
