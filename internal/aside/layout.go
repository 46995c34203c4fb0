// Package aside positions floating side notes next to the text they annotate.
//
// An annotation is an <aside name="X"> element; its anchor is the
// <span name="X"> inside the same note. Each annotation is aligned with the
// top of its anchor and pushed down when it would overlap the annotation
// placed before it. The pass is a single forward sweep: an annotation pushed
// past a later anchor is not revisited.
package aside

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"golang.org/x/net/html"

	"notestack/internal/dom"
)

const FloatingClass = "floating-aside"

// Box is a vertical extent in pixels relative to the top of the note.
type Box struct {
	Top    float64
	Height float64
}

func (b Box) Bottom() float64 { return b.Top + b.Height }

// Measurer reports the geometry of the elements of a note.
type Measurer interface {
	Measure(note *html.Node) map[*html.Node]Box
}

type Placement struct {
	Name   string
	Aside  *html.Node
	Anchor *html.Node
	Box    Box
}

// Layout floats every annotation of note that has a resolvable anchor and
// demotes the others to inline display.
func Layout(note *html.Node, m Measurer) []Placement {
	type candidate struct {
		name   string
		aside  *html.Node
		anchor *html.Node
	}
	var valid []candidate
	for _, a := range dom.FindAll(note, dom.Tag("aside")) {
		name, _ := dom.Attr(a, "name")
		if name == "" {
			slog.Warn("aside without name", "aside", snippet(a))
			demote(a)
			continue
		}
		anchor := findAnchor(note, name)
		if anchor == nil {
			slog.Warn("aside without anchor", "name", name)
			demote(a)
			continue
		}
		dom.AddClass(a, FloatingClass)
		valid = append(valid, candidate{name: name, aside: a, anchor: anchor})
	}
	if len(valid) == 0 {
		return nil
	}

	boxes := m.Measure(note)
	out := make([]Placement, 0, len(valid))
	var prev *Placement
	for _, c := range valid {
		box := Box{Top: boxes[c.anchor].Top, Height: boxes[c.aside].Height}
		if prev != nil && box.Top < prev.Box.Bottom() {
			box.Top = prev.Box.Bottom()
		}
		dom.SetAttr(c.aside, "style", fmt.Sprintf("top: %gpx", box.Top))
		out = append(out, Placement{Name: c.name, Aside: c.aside, Anchor: c.anchor, Box: box})
		prev = &out[len(out)-1]
	}
	return out
}

func findAnchor(note *html.Node, name string) *html.Node {
	return dom.Find(note, func(n *html.Node) bool {
		if !dom.IsElement(n, "span") {
			return false
		}
		v, ok := dom.Attr(n, "name")
		return ok && v == name
	})
}

func demote(a *html.Node) {
	dom.RemoveClass(a, FloatingClass)
	dom.RemoveAttr(a, "style")
}

func snippet(n *html.Node) string {
	s := dom.OuterHTML(n)
	if utf8.RuneCountInString(s) <= 80 {
		return s
	}
	return string([]rune(s)[:80]) + "…"
}
