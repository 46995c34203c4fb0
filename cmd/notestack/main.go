package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"notestack/internal/config"
	"notestack/internal/logging"
	"notestack/internal/web"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.Load()
	if v := cmd.String("url"); v != "" {
		cfg.StartURL = v
	}
	if v := cmd.String("repo"); v != "" {
		cfg.RepoPath = v
	}
	if v := cmd.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	closeLog, err := logging.Setup(os.Stderr, logging.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		DevLog: cfg.DevLog,
	})
	if err != nil {
		return fmt.Errorf("open dev log: %w", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.StartURL == "" && cfg.RepoPath != "" {
		startURL, shutdown, err := serveRepo(ctx, cfg)
		if err != nil {
			return err
		}
		defer shutdown()
		cfg.StartURL = startURL
	}
	if cfg.StartURL == "" {
		return errors.New("either --url or --repo is required")
	}

	nav, err := newNavigator(ctx, cfg)
	if err != nil {
		return err
	}
	r := newREPL(nav, os.Stdout)
	r.prompt = logging.IsTerminal(os.Stdin) && logging.IsTerminal(os.Stdout)
	return r.run(ctx, os.Stdin)
}

// serveRepo starts the note server for cfg.RepoPath on a loopback port and
// returns the address of its home page.
func serveRepo(ctx context.Context, cfg config.Config) (string, func(), error) {
	srv, err := web.NewServer(cfg)
	if err != nil {
		return "", nil, err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("listen: %w", err)
	}
	httpSrv := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
	watchCtx, cancel := context.WithCancel(ctx)
	go func() {
		if err := srv.Watch(watchCtx); err != nil {
			slog.Warn("watcher", "err", err)
		}
	}()
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
		}
	}()
	startURL := "http://" + ln.Addr().String() + "/"
	slog.Info("serving repository", "repo", cfg.RepoPath, "url", startURL)

	shutdown := func() {
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
		defer done()
		_ = httpSrv.Shutdown(shutdownCtx)
	}
	return startURL, shutdown, nil
}

func main() {
	cmd := &cli.Command{
		Name:   "notestack",
		Usage:  "Browse a note site as a horizontal stack of notes",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "Start page; a stacked-notes query is restored",
				Sources: cli.EnvVars("NOTESTACK_URL"),
			},
			&cli.StringFlag{
				Name:    "repo",
				Aliases: []string{"r"},
				Usage:   "Serve this markdown repository locally and browse it",
				Sources: cli.EnvVars("NOTESTACK_REPO_PATH"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars("NOTESTACK_LOG_LEVEL"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
