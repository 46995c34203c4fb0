package dom

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parse(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestFindAllDocumentOrder(t *testing.T) {
	doc := parse(t, `<div><a href="1">one</a><p><a href="2">two</a></p></div><a href="3">three</a>`)
	links := FindAll(doc, Tag("a"))
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(links))
	}
	for i, want := range []string{"1", "2", "3"} {
		got, _ := Attr(links[i], "href")
		if got != want {
			t.Fatalf("link %d: expected href %q, got %q", i, want, got)
		}
	}
}

func TestClassHelpers(t *testing.T) {
	n := Element("div", "class", "note  wide")
	if !HasClass(n, "note") || !HasClass(n, "wide") {
		t.Fatalf("expected both classes, got %q", OuterHTML(n))
	}
	AddClass(n, "note")
	AddClass(n, "floating")
	if v, _ := Attr(n, "class"); v != "note wide floating" {
		t.Fatalf("unexpected class attr %q", v)
	}
	RemoveClass(n, "wide")
	RemoveClass(n, "note")
	RemoveClass(n, "floating")
	if _, ok := Attr(n, "class"); ok {
		t.Fatalf("expected class attribute removed, got %q", OuterHTML(n))
	}
}

func TestCloneIsDetachedAndDeep(t *testing.T) {
	doc := parse(t, `<div id="src"><p>hello <b>there</b></p></div>`)
	src := ByID(doc, "src")
	cp := Clone(src)
	if cp.Parent != nil {
		t.Fatalf("clone must be detached")
	}
	SetText(Find(cp, Tag("b")), "you")
	if Text(src) != "hello there" {
		t.Fatalf("original mutated: %q", Text(src))
	}
	if Text(cp) != "hello you" {
		t.Fatalf("unexpected clone text %q", Text(cp))
	}
}

func TestReplaceWithAndDetach(t *testing.T) {
	doc := parse(t, `<ul id="l"><li>a</li><li>b</li></ul>`)
	list := ByID(doc, "l")
	items := ElementChildren(list)
	repl := Element("li")
	SetText(repl, "x")
	ReplaceWith(items[0], repl)
	if items[0].Parent != nil {
		t.Fatalf("replaced node still attached")
	}
	if got := Text(list); got != "xb" {
		t.Fatalf("expected xb, got %q", got)
	}
	Detach(items[0])
	Detach(repl)
	if got := Text(list); got != "b" {
		t.Fatalf("expected b, got %q", got)
	}
}
