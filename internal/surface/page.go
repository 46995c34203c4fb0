package surface

import (
	"errors"
	"fmt"
	"io"
	"net/url"

	"golang.org/x/net/html"

	"notestack/internal/dom"
)

const (
	ContainerID   = "notes-container"
	SidebarID     = "stack-sidebar"
	PlaceholderID = "template-note-placeholder"
)

var ErrNoContainer = errors.New("notes container missing")

// Page is the in-memory document the navigator mutates. It owns the notes
// container, the sidebar list and the placeholder prototype.
type Page struct {
	doc         *html.Node
	container   *html.Node
	sidebar     *html.Node
	title       *html.Node
	placeholder *html.Node
	focused     *html.Node
	location    *url.URL
}

func Parse(r io.Reader, location string) (*Page, error) {
	loc, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse location: %w", err)
	}
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	container := dom.ByID(doc, ContainerID)
	if container == nil {
		return nil, ErrNoContainer
	}
	p := &Page{doc: doc, container: container, location: loc}

	p.title = dom.Find(doc, dom.Tag("title"))
	if p.title == nil {
		p.title = dom.Element("title")
		head := dom.Find(doc, dom.Tag("head"))
		if head == nil {
			head = doc
		}
		head.AppendChild(p.title)
	}

	p.sidebar = dom.ByID(doc, SidebarID)
	if p.sidebar == nil {
		p.sidebar = dom.Element("ol", "id", SidebarID)
		body := dom.Find(doc, dom.Tag("body"))
		if body == nil {
			body = container.Parent
		}
		body.AppendChild(p.sidebar)
	}

	if tpl := dom.ByID(doc, PlaceholderID); tpl != nil {
		if proto := dom.FirstElementChild(tpl); proto != nil {
			p.placeholder = dom.Clone(proto)
		}
	}
	if p.placeholder == nil {
		p.placeholder = dom.Element("div", "class", "note note-placeholder")
		msg := dom.Element("p", "class", "placeholder-message")
		dom.SetText(msg, "Loading…")
		p.placeholder.AppendChild(msg)
	}
	return p, nil
}

func (p *Page) Container() *html.Node { return p.container }

func (p *Page) Sidebar() *html.Node { return p.sidebar }

// NewPlaceholder returns a fresh copy of the placeholder prototype.
func (p *Page) NewPlaceholder() *html.Node {
	return dom.Clone(p.placeholder)
}

func (p *Page) Title() string {
	return dom.Text(p.title)
}

func (p *Page) SetTitle(title string) {
	dom.SetText(p.title, title)
}

// ScrollIntoView records n as the element the viewport is centred on.
func (p *Page) ScrollIntoView(n *html.Node) {
	p.focused = n
}

func (p *Page) Focused() *html.Node { return p.focused }

func (p *Page) Location() *url.URL {
	u := *p.location
	return &u
}

func (p *Page) SetLocation(u *url.URL) {
	cp := *u
	p.location = &cp
}

func (p *Page) Render(w io.Writer) error {
	return dom.Render(w, p.doc)
}
