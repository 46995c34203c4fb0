package history

import (
	"strings"

	"github.com/google/uuid"
)

// Entry is one navigable history entry.
type Entry struct {
	ID    uuid.UUID
	URL   string
	Title string
	State []byte
}

// Session is an in-memory navigation history with back/forward traversal.
// Pushing after going back drops the forward entries.
type Session struct {
	entries []Entry
	current int
}

func NewSession(url, title string) *Session {
	return &Session{entries: []Entry{{ID: uuid.New(), URL: url, Title: title}}}
}

func (s *Session) Current() Entry {
	return s.entries[s.current]
}

func (s *Session) Len() int {
	return len(s.entries)
}

func (s *Session) Push(state []byte, title, url string) Entry {
	s.entries = append(s.entries[:s.current+1], Entry{ID: uuid.New(), URL: url, Title: title, State: state})
	s.current = len(s.entries) - 1
	return s.entries[s.current]
}

func (s *Session) Replace(state []byte, title, url string) Entry {
	e := s.entries[s.current]
	e.State = state
	e.Title = title
	e.URL = url
	s.entries[s.current] = e
	return e
}

// Back moves to the previous entry and returns it as the pop event payload.
func (s *Session) Back() (Entry, bool) {
	if s.current == 0 {
		return Entry{}, false
	}
	s.current--
	return s.entries[s.current], true
}

func (s *Session) Forward() (Entry, bool) {
	if s.current >= len(s.entries)-1 {
		return Entry{}, false
	}
	s.current++
	return s.entries[s.current], true
}

// Entries lists the history oldest first.
func (s *Session) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Go moves to the entry with the given id, in either direction, and returns
// it as the pop event payload.
func (s *Session) Go(id uuid.UUID) (Entry, bool) {
	for i, e := range s.entries {
		if e.ID == id {
			s.current = i
			return e, true
		}
	}
	return Entry{}, false
}

// Lookup resolves a full id or an unambiguous prefix of its string form.
func (s *Session) Lookup(ref string) (uuid.UUID, bool) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, true
	}
	var found uuid.UUID
	matches := 0
	for _, e := range s.entries {
		if strings.HasPrefix(e.ID.String(), strings.ToLower(ref)) {
			found = e.ID
			matches++
		}
	}
	return found, ref != "" && matches == 1
}
