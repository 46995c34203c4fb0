package web

import "sync"

// noteCache holds rendered notes keyed by repository note path until the
// watcher reports a change to the file.
type noteCache struct {
	mu    sync.RWMutex
	notes map[string]renderedNote
}

func newNoteCache() *noteCache {
	return &noteCache{notes: make(map[string]renderedNote)}
}

func (c *noteCache) get(notePath string) (renderedNote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	note, ok := c.notes[notePath]
	return note, ok
}

func (c *noteCache) put(notePath string, note renderedNote) {
	c.mu.Lock()
	c.notes[notePath] = note
	c.mu.Unlock()
}

func (c *noteCache) invalidate(notePath string) {
	c.mu.Lock()
	delete(c.notes, notePath)
	c.mu.Unlock()
}

func (c *noteCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.notes)
}
