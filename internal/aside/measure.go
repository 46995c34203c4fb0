package aside

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"

	"notestack/internal/dom"
)

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "details": true, "div": true, "dl": true, "dt": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"tr": true, "ul": true,
}

// TextMeasurer estimates layout without a browser: blocks stack vertically
// and inline text wraps after Columns display cells.
type TextMeasurer struct {
	Columns      int
	AsideColumns int
	LineHeight   float64
	BlockGap     float64
}

func DefaultMeasurer() TextMeasurer {
	return TextMeasurer{Columns: 72, AsideColumns: 28, LineHeight: 24, BlockGap: 16}
}

func (m TextMeasurer) Measure(note *html.Node) map[*html.Node]Box {
	boxes := make(map[*html.Node]Box)
	h := m.block(note, 0, m.columns(), boxes)
	boxes[note] = Box{Top: 0, Height: h}
	return boxes
}

func (m TextMeasurer) columns() int {
	if m.Columns <= 0 {
		return 72
	}
	return m.Columns
}

func (m TextMeasurer) asideColumns() int {
	if m.AsideColumns <= 0 {
		return m.columns()
	}
	return m.AsideColumns
}

func isBlock(n *html.Node) bool {
	return n.Type == html.ElementNode && blockTags[n.Data]
}

func isFloating(n *html.Node) bool {
	return dom.IsElement(n, "aside") && dom.HasClass(n, FloatingClass)
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlock(c) {
			return true
		}
	}
	return false
}

// block lays out the children of n starting at top and returns the height
// they occupy in the flow.
func (m TextMeasurer) block(n *html.Node, top float64, cols int, boxes map[*html.Node]Box) float64 {
	if dom.IsElement(n, "pre") {
		rows := strings.Count(strings.TrimRight(dom.Text(n), "\n"), "\n") + 1
		return float64(rows) * m.LineHeight
	}
	if !hasBlockChild(n) {
		return m.inline(childNodes(n), top, cols, boxes)
	}

	y := top
	started := false
	gap := func() {
		if started {
			y += m.BlockGap
		}
		started = true
	}
	var run []*html.Node
	flush := func() {
		if len(run) == 0 {
			return
		}
		if h := m.inline(run, y+m.gapIf(started), cols, boxes); h > 0 {
			gap()
			y += h
		}
		run = nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case isFloating(c):
			flush()
			h := m.block(c, y, m.asideColumns(), boxes)
			boxes[c] = Box{Top: y, Height: h}
		case isBlock(c):
			flush()
			gap()
			h := m.block(c, y, cols, boxes)
			boxes[c] = Box{Top: y, Height: h}
			y += h
		default:
			run = append(run, c)
		}
	}
	flush()
	return y - top
}

func (m TextMeasurer) gapIf(started bool) float64 {
	if started {
		return m.BlockGap
	}
	return 0
}

// inline measures a run of inline nodes as one paragraph starting at top.
func (m TextMeasurer) inline(nodes []*html.Node, top float64, cols int, boxes map[*html.Node]Box) float64 {
	l := &line{cols: cols}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			l.text(n.Data)
		case html.ElementNode:
			rowTop := top + float64(l.row())*m.LineHeight
			if isFloating(n) {
				h := m.block(n, rowTop, m.asideColumns(), boxes)
				boxes[n] = Box{Top: rowTop, Height: h}
				return
			}
			if n.Data == "br" {
				l.breakLine()
			}
			startRow := l.row()
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			span := l.rows() - startRow
			if span < 1 {
				span = 1
			}
			boxes[n] = Box{Top: rowTop, Height: float64(span) * m.LineHeight}
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return float64(l.rows()) * m.LineHeight
}

func childNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// line tracks the wrapped width of a paragraph in display cells. Whitespace
// collapses the way it does in normal flow.
type line struct {
	cols  int
	width int
	space bool
}

func (l *line) text(s string) {
	if s == "" {
		return
	}
	if isSpace(s[0]) {
		l.space = true
	}
	for i, word := range strings.Fields(s) {
		if i > 0 {
			l.space = true
		}
		if l.space && l.width > 0 {
			l.width++
		}
		l.width += runewidth.StringWidth(word)
		l.space = false
	}
	if isSpace(s[len(s)-1]) {
		l.space = true
	}
}

func (l *line) breakLine() {
	l.width = (l.width/l.cols + 1) * l.cols
	l.space = false
}

// row is the zero-based row the next character lands on.
func (l *line) row() int {
	return l.width / l.cols
}

func (l *line) rows() int {
	return (l.width + l.cols - 1) / l.cols
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}
