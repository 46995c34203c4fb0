package stack

import (
	"strconv"

	"golang.org/x/net/html"

	"notestack/internal/dom"
)

// Sidebar mirrors the stack as a list of lightweight entries, index for
// index.
type Sidebar struct {
	list    *html.Node
	entries []*html.Node
}

func newSidebar(list *html.Node) *Sidebar {
	return &Sidebar{list: list}
}

func (s *Sidebar) Len() int { return len(s.entries) }

func (s *Sidebar) Entry(i int) *html.Node {
	if i < 0 || i >= len(s.entries) {
		return nil
	}
	return s.entries[i]
}

func (s *Sidebar) append(n *Note) *html.Node {
	entry := newEntry(n, len(s.entries))
	s.list.AppendChild(entry)
	s.entries = append(s.entries, entry)
	return entry
}

func (s *Sidebar) replace(i int, n *Note) *html.Node {
	entry := newEntry(n, i)
	old := s.entries[i]
	if old.Parent != nil {
		dom.ReplaceWith(old, entry)
	} else {
		s.list.AppendChild(entry)
	}
	s.entries[i] = entry
	return entry
}

func (s *Sidebar) truncate(n int) {
	for i := len(s.entries) - 1; i >= n; i-- {
		dom.Detach(s.entries[i])
		s.entries[i] = nil
	}
	if n < len(s.entries) {
		s.entries = s.entries[:n]
	}
}

func newEntry(n *Note, index int) *html.Node {
	li := dom.Element("li", "class", "stack-entry", "data-level", strconv.Itoa(n.Level))
	a := dom.Element("a", "href", n.Address, "data-stack-index", strconv.Itoa(index))
	dom.SetText(a, n.Title)
	li.AppendChild(a)
	return li
}
