package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
)

type Config struct {
	RepoPath       string
	ListenAddr     string
	SiteTitle      string
	StartURL       string
	TitleSeparator string
	HighlightStyle string
	LogLevel       string
	LogPretty      bool
	DevLog         string
	FetchTimeout   time.Duration
	MaxNoteBytes   int
	Columns        int
	AsideColumns   int
	LineHeight     int
}

// Load reads NOTESTACK_* variables. Values in a .env file in the working
// directory fill in whatever the environment leaves unset.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		RepoPath:       os.Getenv("NOTESTACK_REPO_PATH"),
		ListenAddr:     envOr("NOTESTACK_LISTEN_ADDR", "127.0.0.1:8080"),
		SiteTitle:      envOr("NOTESTACK_SITE_TITLE", "Notes"),
		StartURL:       os.Getenv("NOTESTACK_URL"),
		TitleSeparator: envOr("NOTESTACK_TITLE_SEPARATOR", " » "),
		HighlightStyle: envOr("NOTESTACK_HIGHLIGHT_STYLE", "github"),
		LogLevel:       envOr("NOTESTACK_LOG_LEVEL", "info"),
		LogPretty:      parseBoolOr("NOTESTACK_LOG_PRETTY", false),
		DevLog:         os.Getenv("NOTESTACK_DEV_LOG"),
	}

	cfg.FetchTimeout = parseDurationOr("NOTESTACK_FETCH_TIMEOUT", 0)
	cfg.MaxNoteBytes = parseIntOr("NOTESTACK_MAX_NOTE_BYTES", 8<<20)
	cfg.Columns = parseIntOr("NOTESTACK_COLUMNS", 72)
	cfg.AsideColumns = parseIntOr("NOTESTACK_ASIDE_COLUMNS", 28)
	cfg.LineHeight = parseIntOr("NOTESTACK_LINE_HEIGHT", 24)
	return cfg
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ListenAddr, validation.Required),
		validation.Field(&c.StartURL, is.URL),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&c.FetchTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.Columns, validation.Min(8)),
		validation.Field(&c.AsideColumns, validation.Min(8)),
		validation.Field(&c.LineHeight, validation.Min(1)),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func parseIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

func parseBoolOr(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return fallback
}
