package surface

import (
	"errors"
	"strings"
	"testing"

	"notestack/internal/dom"
)

func TestParseFindsParts(t *testing.T) {
	src := `<html><head><title>Garden · Home</title></head><body>
<main id="notes-container"><article class="note" data-href="/">x</article></main>
<nav><ol id="stack-sidebar"></ol></nav>
<template id="template-note-placeholder"><div class="note spinner">wait</div></template>
</body></html>`
	p, err := Parse(strings.NewReader(src), "http://example.test/")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Title() != "Garden · Home" {
		t.Fatalf("unexpected title %q", p.Title())
	}
	if v, _ := dom.Attr(p.Sidebar(), "id"); v != SidebarID {
		t.Fatalf("sidebar not found")
	}
	ph := p.NewPlaceholder()
	if !dom.HasClass(ph, "spinner") || ph.Parent != nil {
		t.Fatalf("placeholder should be a detached clone of the template, got %s", dom.OuterHTML(ph))
	}
	if p.NewPlaceholder() == ph {
		t.Fatalf("each placeholder must be a new node")
	}
}

func TestParseDefaults(t *testing.T) {
	p, err := Parse(strings.NewReader(`<div id="notes-container"></div>`), "http://example.test/")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Sidebar() == nil || p.Sidebar().Parent == nil {
		t.Fatalf("expected sidebar to be created")
	}
	if !dom.HasClass(p.NewPlaceholder(), "note-placeholder") {
		t.Fatalf("expected default placeholder")
	}
	p.SetTitle("A » B")
	var b strings.Builder
	if err := p.Render(&b); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(b.String(), "<title>A » B</title>") {
		t.Fatalf("title not rendered: %s", b.String())
	}
}

func TestParseRequiresContainer(t *testing.T) {
	_, err := Parse(strings.NewReader(`<p>nothing</p>`), "http://example.test/")
	if !errors.Is(err, ErrNoContainer) {
		t.Fatalf("expected ErrNoContainer, got %v", err)
	}
}
