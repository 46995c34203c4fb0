package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"notestack/internal/config"
	"notestack/internal/surface"
)

func newTestServer(t *testing.T, files map[string]string) (*Server, string) {
	t.Helper()
	repo := t.TempDir()
	for name, content := range files {
		full := filepath.Join(repo, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	srv, err := NewServer(config.Config{RepoPath: repo, SiteTitle: "Garden", HighlightStyle: "github"})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, repo
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestHomeServesStackablePage(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{
		"index.md": "# Home\n\nStart at [idea](notes/idea.md).\n",
	})
	rec := get(t, srv.Handler(), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	page, err := surface.Parse(rec.Body, "http://wiki.test/")
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	if page.Title() != "Garden · Home" {
		t.Fatalf("unexpected title %q", page.Title())
	}
	if page.Sidebar() == nil || page.NewPlaceholder() == nil {
		t.Fatalf("page must carry a sidebar and a placeholder template")
	}
	var rendered strings.Builder
	if err := page.Render(&rendered); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := rendered.String()
	if !strings.Contains(out, `<article class="note" data-href="/">`) {
		t.Fatalf("root note must be addressed at /: %s", out)
	}
	if !strings.Contains(out, `href="/notes/idea.md"`) {
		t.Fatalf("relative link must resolve from the root: %s", out)
	}
}

func TestHomeWithoutIndex(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := get(t, srv.Handler(), "/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<h1>Garden</h1>") {
		t.Fatalf("expected generated home, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestNoteRoutes(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{
		"dir/idea.md": "# Idea\n\nSee [sib](sib.md).\n",
	})
	h := srv.Handler()

	for _, target := range []string{"/notes/dir/idea.md", "/notes/dir/idea"} {
		rec := get(t, h, target)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, `data-href="/notes/dir/idea.md"`) {
			t.Fatalf("%s: note must carry its canonical address: %s", target, body)
		}
		if !strings.Contains(body, `href="/notes/dir/sib.md"`) {
			t.Fatalf("%s: sibling link not resolved: %s", target, body)
		}
	}

	if rec := get(t, h, "/notes/missing.md"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a missing note, got %d", rec.Code)
	}
	if rec := get(t, h, "/notes/"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for the bare prefix, got %d", rec.Code)
	}
	if rec := get(t, h, "/notes/.git/config"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a hidden path, got %d", rec.Code)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notes/dir/idea.md", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestChromaCSS(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := get(t, srv.Handler(), "/assets/chroma.css")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/css") {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), ".chroma") {
		t.Fatalf("expected chroma rules")
	}
}

func TestWatchInvalidatesCache(t *testing.T) {
	srv, repo := newTestServer(t, map[string]string{
		"idea.md": "# First\n",
	})
	h := srv.Handler()
	if rec := get(t, h, "/notes/idea.md"); !strings.Contains(rec.Body.String(), "<h1>First</h1>") {
		t.Fatalf("unexpected first render: %s", rec.Body.String())
	}
	if srv.cache.len() != 1 {
		t.Fatalf("expected the render to be cached")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(repo, "idea.md"), []byte("# Second\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		rec := get(t, h, "/notes/idea.md")
		body, _ := io.ReadAll(rec.Body)
		return strings.Contains(string(body), "<h1>Second</h1>")
	}, "edited note was not re-rendered")
}

func TestNewServerRequiresRepo(t *testing.T) {
	if _, err := NewServer(config.Config{RepoPath: filepath.Join(t.TempDir(), "absent")}); err == nil {
		t.Fatalf("expected an error for a missing repository")
	}
}

func TestParseNoteRef(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"/notes/idea", "idea.md", true},
		{"/notes/dir/idea.md", "dir/idea.md", true},
		{"/notes/dir/", "dir.md", true},
		{"/notes/", "", false},
		{"/notes/.hidden.md", "", false},
	}
	for _, c := range cases {
		got, ok := parseNoteRef(c.in)
		if got != c.want || ok != c.ok {
			t.Fatalf("%q: expected %q/%v, got %q/%v", c.in, c.want, c.ok, got, ok)
		}
	}
	if noteHref("index.md") != "/" || noteHref("dir/idea.md") != "/notes/dir/idea.md" {
		t.Fatalf("unexpected hrefs")
	}
}
