package fs

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
)

var ErrUnsafePath = errors.New("unsafe path")

func NormalizeNotePath(p string) (string, error) {
	if strings.ContainsRune(p, 0) {
		return "", ErrUnsafePath
	}
	p = strings.ReplaceAll(p, "\\", "/")
	if strings.HasPrefix(p, "/") {
		return "", ErrUnsafePath
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrUnsafePath
	}
	for _, part := range strings.Split(clean, "/") {
		if strings.HasPrefix(part, ".") {
			return "", ErrUnsafePath
		}
	}
	return clean, nil
}

// NoteFilePath maps a slash-separated note path onto a file under repoPath.
// The result never escapes the repository.
func NoteFilePath(repoPath, notePath string) (string, error) {
	rel, err := NormalizeNotePath(notePath)
	if err != nil {
		return "", err
	}
	root := filepath.Clean(repoPath)
	full := filepath.Join(root, filepath.FromSlash(rel))
	check, err := filepath.Rel(root, full)
	if err != nil || check == ".." || strings.HasPrefix(check, ".."+string(filepath.Separator)) {
		return "", ErrUnsafePath
	}
	return full, nil
}

func EnsureMDExt(p string) string {
	if strings.HasSuffix(strings.ToLower(p), ".md") {
		return p
	}
	return p + ".md"
}
