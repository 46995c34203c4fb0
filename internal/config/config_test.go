package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"NOTESTACK_LISTEN_ADDR", "NOTESTACK_FETCH_TIMEOUT", "NOTESTACK_COLUMNS", "NOTESTACK_LOG_PRETTY"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.ListenAddr != "127.0.0.1:8080" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.FetchTimeout != 0 {
		t.Fatalf("fetch timeout must default to none, got %v", cfg.FetchTimeout)
	}
	if cfg.Columns != 72 || cfg.TitleSeparator != " » " || cfg.LogPretty {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NOTESTACK_FETCH_TIMEOUT", "5s")
	t.Setenv("NOTESTACK_COLUMNS", "not-a-number")
	t.Setenv("NOTESTACK_LOG_PRETTY", "true")
	t.Setenv("NOTESTACK_URL", "http://127.0.0.1:8080/")
	cfg := Load()
	if cfg.FetchTimeout != 5*time.Second {
		t.Fatalf("expected 5s, got %v", cfg.FetchTimeout)
	}
	if cfg.Columns != 72 {
		t.Fatalf("bad integers fall back to the default, got %d", cfg.Columns)
	}
	if !cfg.LogPretty {
		t.Fatalf("expected pretty logs")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("NOTESTACK_SITE_TITLE", "")
	os.Unsetenv("NOTESTACK_SITE_TITLE")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("NOTESTACK_SITE_TITLE=Garden\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	if cfg := Load(); cfg.SiteTitle != "Garden" {
		t.Fatalf("expected title from .env, got %q", cfg.SiteTitle)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Config{ListenAddr: "", LogLevel: "loud", Columns: 2, AsideColumns: 28, LineHeight: 24}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}
