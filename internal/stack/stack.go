// Package stack keeps the horizontal stack of open notes, its sidebar
// mirror and the fetch placeholder consistent with each other.
package stack

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"

	"notestack/internal/dom"
	"notestack/internal/loader"
	"notestack/internal/surface"
)

var ErrLevelMismatch = errors.New("note level does not match its stack position")

// Note is a stacked note. Content and Entry belong to the stack until the
// note is removed, at which point both are detached and never reused.
type Note struct {
	Address   string
	Title     string
	Level     int
	Content   *html.Node
	Entry     *html.Node
	destroyed bool
}

func (n *Note) Destroyed() bool { return n.destroyed }

// Stack holds notes[0..n) with notes[i].Level == i+1. Only Truncate,
// AppendLoaded and ReplaceAt change it.
type Stack struct {
	page        *surface.Page
	notes       []*Note
	sidebar     *Sidebar
	placeholder *Placeholder
}

func newStack(page *surface.Page) *Stack {
	return &Stack{
		page:        page,
		sidebar:     newSidebar(page.Sidebar()),
		placeholder: newPlaceholder(page.NewPlaceholder()),
	}
}

func (s *Stack) Len() int { return len(s.notes) }

func (s *Stack) At(i int) *Note {
	if i < 0 || i >= len(s.notes) {
		return nil
	}
	return s.notes[i]
}

func (s *Stack) Notes() []*Note {
	return append([]*Note(nil), s.notes...)
}

func (s *Stack) Sidebar() *Sidebar { return s.sidebar }

func (s *Stack) Placeholder() *Placeholder { return s.placeholder }

func (s *Stack) Index(address string) int {
	for i, n := range s.notes {
		if n.Address == address {
			return i
		}
	}
	return -1
}

func (s *Stack) Addresses() []string {
	out := make([]string, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.Address
	}
	return out
}

func (s *Stack) Titles() []string {
	out := make([]string, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.Title
	}
	return out
}

// Truncate removes the notes at index >= level, deepest first.
func (s *Stack) Truncate(level int) {
	if level < 0 {
		level = 0
	}
	for i := len(s.notes) - 1; i >= level; i-- {
		n := s.notes[i]
		s.notes[i] = nil
		s.notes = s.notes[:i]
		s.sidebar.truncate(i)
		destroy(n)
	}
}

// AppendLoaded stacks ln as the deepest note. Its content takes the
// placeholder's position when the placeholder sits at the tail.
func (s *Stack) AppendLoaded(ln *loader.LoadedNote) (*Note, error) {
	if ln.Level != len(s.notes)+1 {
		return nil, fmt.Errorf("append %s at level %d onto %d notes: %w", ln.Address, ln.Level, len(s.notes), ErrLevelMismatch)
	}
	n := &Note{Address: ln.Address, Title: ln.Title, Level: ln.Level, Content: ln.Content}
	if s.placeholder.Attached() {
		dom.InsertBefore(n.Content, s.placeholder.Node())
	} else {
		dom.Append(s.page.Container(), n.Content)
	}
	n.Entry = s.sidebar.append(n)
	s.notes = append(s.notes, n)
	return n, nil
}

// ReplaceAt swaps the note at index for ln in place. The old note is
// destroyed.
func (s *Stack) ReplaceAt(index int, ln *loader.LoadedNote) (*Note, error) {
	if index < 0 || index >= len(s.notes) {
		return nil, fmt.Errorf("replace index %d of %d notes: out of range", index, len(s.notes))
	}
	if ln.Level != index+1 {
		return nil, fmt.Errorf("replace %s at level %d into index %d: %w", ln.Address, ln.Level, index, ErrLevelMismatch)
	}
	old := s.notes[index]
	n := &Note{Address: ln.Address, Title: ln.Title, Level: ln.Level, Content: ln.Content}
	switch {
	case s.placeholder.Attached():
		dom.InsertBefore(n.Content, s.placeholder.Node())
	case old.Content.Parent != nil:
		dom.InsertBefore(n.Content, old.Content)
	default:
		dom.Append(s.page.Container(), n.Content)
	}
	n.Entry = s.sidebar.replace(index, n)
	s.notes[index] = n
	destroy(old)
	return n, nil
}

// showPlaceholder puts the placeholder into the slot at index: after the
// tail when index == Len, in place of the note's content otherwise.
func (s *Stack) showPlaceholder(index int) {
	ph := s.placeholder
	ph.clear()
	if index < len(s.notes) {
		dom.ReplaceWith(s.notes[index].Content, ph.Node())
	}
	if !ph.Attached() {
		dom.Append(s.page.Container(), ph.Node())
	}
	ph.loading()
}

func (s *Stack) failPlaceholder(err error) {
	s.placeholder.fail(err)
}

func (s *Stack) clearPlaceholder() {
	s.placeholder.clear()
}

// seed adopts content already present on the page.
func (s *Stack) seed(ln *loader.LoadedNote) *Note {
	n := &Note{Address: ln.Address, Title: ln.Title, Level: ln.Level, Content: ln.Content}
	n.Entry = s.sidebar.append(n)
	s.notes = append(s.notes, n)
	return n
}

func destroy(n *Note) {
	dom.Detach(n.Content)
	dom.Detach(n.Entry)
	n.destroyed = true
}
