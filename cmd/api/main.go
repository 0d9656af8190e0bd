package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booksvc/internal/app"
	"booksvc/internal/book"
	"booksvc/internal/config"
	"booksvc/internal/httpx"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := httpx.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := app.OpenRepository(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}

	service := book.NewService(repo, book.WithLegacyCompat(cfg.LegacyCompat))
	server := app.NewServer(cfg, service)
	defer server.Close()

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      server.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("book server listening", "addr", httpServer.Addr, "store", cfg.StoreDriver)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	if err := closeStore(shutdownCtx); err != nil {
		logger.Error("close store", "err", err)
	}
}
