// Package loader turns an address into a note fragment ready to be stacked.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"notestack/internal/aside"
	"notestack/internal/dom"
	"notestack/internal/links"
)

const NoteClass = "note"

var (
	ErrNoteMissing  = errors.New("note element missing")
	ErrTitleMissing = errors.New("note heading missing")
)

// LoadedNote is a parsed note whose links already route through the stack.
type LoadedNote struct {
	Address string
	Title   string
	Level   int
	Content *html.Node
}

type Loader struct {
	fetcher    Fetcher
	classifier *links.Classifier
	measurer   aside.Measurer
}

func New(fetcher Fetcher, classifier *links.Classifier, measurer aside.Measurer) *Loader {
	if measurer == nil {
		measurer = aside.DefaultMeasurer()
	}
	return &Loader{fetcher: fetcher, classifier: classifier, measurer: measurer}
}

// Load fetches address and prepares the note it contains for nesting level
// level.
func (l *Loader) Load(ctx context.Context, address string, level int) (*LoadedNote, error) {
	raw, err := l.fetcher.Fetch(ctx, address)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", address, err)
	}
	el := dom.Find(doc, IsNote)
	if el == nil {
		return nil, fmt.Errorf("%s: %w", address, ErrNoteMissing)
	}
	dom.Detach(el)
	return l.Prepare(el, address, level)
}

func IsNote(n *html.Node) bool {
	return dom.HasClass(n, NoteClass)
}

// Prepare tags el with its level, rewires its links and lays out its
// annotations. It is also used for notes already present on the page.
func (l *Loader) Prepare(el *html.Node, address string, level int) (*LoadedNote, error) {
	h1 := dom.Find(el, dom.Tag("h1"))
	if h1 == nil {
		return nil, fmt.Errorf("%s: %w", address, ErrTitleMissing)
	}
	title := strings.TrimSpace(dom.Text(h1))

	dom.SetAttr(el, "data-level", strconv.Itoa(level))
	dom.SetAttr(el, "data-href", address)
	l.rewriteLinks(el, level)
	aside.Layout(el, l.measurer)

	return &LoadedNote{Address: address, Title: title, Level: level, Content: el}, nil
}

func (l *Loader) rewriteLinks(el *html.Node, level int) {
	for _, a := range dom.FindAll(el, dom.Tag("a")) {
		href, ok := dom.Attr(a, "href")
		if !ok {
			continue
		}
		if path, internal := l.classifier.Classify(href); internal {
			dom.SetAttr(a, "data-level", strconv.Itoa(level))
			dom.SetAttr(a, "data-stack-href", path)
			continue
		}
		dom.AddClass(a, "external-link")
		dom.SetAttr(a, "target", "_blank")
		dom.SetAttr(a, "rel", "noopener noreferrer")
	}
}

// Link is an internal link as recorded by Prepare.
type Link struct {
	Node    *html.Node
	Address string
	Level   int
	Text    string
}

// StackLink reads the routing data Prepare stored on an anchor.
func StackLink(a *html.Node) (Link, bool) {
	if !dom.IsElement(a, "a") {
		return Link{}, false
	}
	href, ok := dom.Attr(a, "data-stack-href")
	if !ok {
		return Link{}, false
	}
	level := 0
	if raw, ok := dom.Attr(a, "data-level"); ok {
		level, _ = strconv.Atoi(raw)
	}
	return Link{Node: a, Address: href, Level: level, Text: strings.TrimSpace(dom.Text(a))}, true
}

// StackLinks lists the internal links of a prepared note in document order.
func StackLinks(el *html.Node) []Link {
	var out []Link
	for _, a := range dom.FindAll(el, dom.Tag("a")) {
		if link, ok := StackLink(a); ok {
			out = append(out, link)
		}
	}
	return out
}
