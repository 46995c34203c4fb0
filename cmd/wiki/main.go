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

	"notestack/internal/config"
	"notestack/internal/logging"
	"notestack/internal/web"
)

func main() {
	cfg := config.Load()
	closeLog, err := logging.Setup(os.Stdout, logging.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		DevLog: cfg.DevLog,
	})
	if err != nil {
		slog.Error("open dev log", "path", cfg.DevLog, "err", err)
	}
	defer closeLog()

	slog.Info("startup", "build_version", web.BuildVersion)
	if cfg.RepoPath == "" {
		slog.Error("NOTESTACK_REPO_PATH is required")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "err", err)
		os.Exit(1)
	}

	srv, err := web.NewServer(cfg)
	if err != nil {
		slog.Error("server init", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Watch(ctx); err != nil {
			slog.Error("watcher", "err", err)
		}
	}()

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown", "err", err)
		}
	}()

	slog.Info("listening", "addr", cfg.ListenAddr, "repo", cfg.RepoPath)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
