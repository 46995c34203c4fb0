package web

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"notestack/internal/storage/fs"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !allowRead(w, r) {
		return
	}
	note, err := s.loadNote(indexNote)
	if errors.Is(err, os.ErrNotExist) {
		note, err = s.emptyHome()
	}
	if err != nil {
		slog.Error("render home", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.renderNotePage(w, noteHref(indexNote), note)
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}
	if r.URL.Path == notesPrefix {
		http.NotFound(w, r)
		return
	}
	notePath, ok := parseNoteRef(r.URL.Path)
	if !ok {
		http.Error(w, fs.ErrUnsafePath.Error(), http.StatusBadRequest)
		return
	}
	note, err := s.loadNote(notePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		if errors.Is(err, fs.ErrUnsafePath) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("render note", "path", notePath, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.renderNotePage(w, noteHref(notePath), note)
}

func (s *Server) handleChromaCSS(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	if err := s.renderer.WriteCSS(w); err != nil {
		slog.Error("write chroma css", "err", err)
	}
}

func (s *Server) loadNote(notePath string) (renderedNote, error) {
	if note, ok := s.cache.get(notePath); ok {
		return note, nil
	}
	fullPath, err := fs.NoteFilePath(s.cfg.RepoPath, notePath)
	if err != nil {
		return renderedNote{}, err
	}
	content, err := os.ReadFile(fullPath)
	if err != nil {
		return renderedNote{}, err
	}
	htmlStr, meta, err := s.renderer.Note(noteHref(notePath), content)
	if err != nil {
		return renderedNote{}, err
	}
	note := renderedNote{Title: meta.Title, HTML: template.HTML(htmlStr)}
	s.cache.put(notePath, note)
	return note, nil
}

func (s *Server) emptyHome() (renderedNote, error) {
	htmlStr, meta, err := s.renderer.Note("/", []byte("# "+s.cfg.SiteTitle+"\n"))
	if err != nil {
		return renderedNote{}, err
	}
	return renderedNote{Title: meta.Title, HTML: template.HTML(htmlStr)}, nil
}

func (s *Server) renderNotePage(w http.ResponseWriter, address string, note renderedNote) {
	s.views.RenderPage(w, ViewData{
		Version:   strings.TrimSpace(BuildVersion),
		SiteTitle: s.cfg.SiteTitle,
		Title:     note.Title,
		Address:   address,
		Note:      note.HTML,
	})
}

func allowRead(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}
