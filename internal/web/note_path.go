package web

import (
	"path"
	"strings"

	"notestack/internal/storage/fs"
)

const (
	notesPrefix = "/notes/"
	indexNote   = "index.md"
)

// parseNoteRef turns a request path under /notes/ into a repository note
// path. "/notes/dir/idea" and "/notes/dir/idea.md" name the same note.
func parseNoteRef(urlPath string) (string, bool) {
	ref := strings.TrimPrefix(strings.TrimSpace(urlPath), notesPrefix)
	ref = strings.TrimSuffix(ref, "/")
	if ref == "" {
		return "", false
	}
	clean, err := fs.NormalizeNotePath(ref)
	if err != nil {
		return "", false
	}
	return fs.EnsureMDExt(clean), true
}

// noteHref is the address a note is served and stacked under.
func noteHref(notePath string) string {
	if notePath == indexNote {
		return "/"
	}
	return notesPrefix + strings.TrimPrefix(path.Clean(notePath), "/")
}
