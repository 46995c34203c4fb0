package web

import (
	"log/slog"
	"os"
	"testing"

	"notestack/internal/logging"
)

func TestMain(m *testing.M) {
	level := os.Getenv("NOTESTACK_LOG_LEVEL")
	if level == "" {
		level = "error"
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logging.ParseLevel(level)})))
	os.Exit(m.Run())
}
