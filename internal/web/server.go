package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"notestack/internal/config"
	"notestack/internal/render"
)

// BuildVersion is set at link time.
var BuildVersion = "dev"

type Server struct {
	cfg      config.Config
	mux      *http.ServeMux
	views    *Templates
	renderer *render.Renderer
	cache    *noteCache
}

func NewServer(cfg config.Config) (*Server, error) {
	info, err := os.Stat(cfg.RepoPath)
	if err != nil {
		return nil, fmt.Errorf("note repository: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("note repository %s is not a directory", cfg.RepoPath)
	}
	s := &Server{
		cfg:      cfg,
		mux:      http.NewServeMux(),
		views:    MustParseTemplates(),
		renderer: render.New(cfg.HighlightStyle),
		cache:    newNoteCache(),
	}
	s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// Watch drops cached renders as files in the repository change. It blocks
// until ctx is cancelled.
func (s *Server) Watch(ctx context.Context) error {
	return Watch(ctx, s.cfg.RepoPath, func(kind, notePath string) {
		s.cache.invalidate(notePath)
		slog.Debug("note cache invalidated", "path", notePath, "change", kind)
	})
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleHome)
	s.mux.HandleFunc("/notes/", s.handleNotes)
	s.mux.HandleFunc("/assets/chroma.css", s.handleChromaCSS)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "dur", time.Since(start))
	})
}
