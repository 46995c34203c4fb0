// Package render converts markdown notes into the note markup the navigator
// stacks.
package render

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

type Renderer struct {
	md        goldmark.Markdown
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// New builds a renderer. Raw HTML is passed through so notes can carry
// <aside name> annotations and their <span name> anchors.
func New(styleName string) *Renderer {
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	code := &codeRenderer{style: style, formatter: formatter}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(linkResolver{}, 100)),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(code, 100)),
		),
	)
	return &Renderer{md: md, style: style, formatter: formatter}
}

func (r *Renderer) convert(src []byte, address string) (string, error) {
	body := StripFrontmatter(string(src))
	pc := parser.NewContext()
	pc.Set(addressKey, address)
	var b strings.Builder
	if err := r.md.Convert([]byte(body), &b, parser.WithContext(pc)); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Note renders src as a single note element addressed by address. A note
// without a level-one heading gets one from its frontmatter title or file
// name.
func (r *Renderer) Note(address string, src []byte) (string, Metadata, error) {
	meta := ParseMetadata(string(src))
	body, err := r.convert(src, address)
	if err != nil {
		return "", meta, fmt.Errorf("render %s: %w", address, err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, `<article class="note" data-href="%s">`, html.EscapeString(address))
	b.WriteString("\n")
	if !meta.HasTitle {
		if meta.Title == "" {
			meta.Title = titleFromAddress(address)
		}
		fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(meta.Title))
	}
	b.WriteString(body)
	b.WriteString("</article>\n")
	return b.String(), meta, nil
}

// WriteCSS writes the stylesheet for highlighted code blocks.
func (r *Renderer) WriteCSS(w io.Writer) error {
	return r.formatter.WriteCSS(w, r.style)
}

func titleFromAddress(address string) string {
	base := path.Base(strings.TrimSuffix(address, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.ReplaceAll(base, "-", " ")
	if base == "" || base == "." || base == "/" {
		return "Home"
	}
	return base
}

type codeRenderer struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

func (r *codeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCode)
}

func (r *codeRenderer) renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}
	lexer := lexers.Get(string(n.Language(source)))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code.String())
	if err != nil {
		return ast.WalkStop, err
	}
	if err := r.formatter.Format(w, r.style, iterator); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}

var addressKey = parser.NewContextKey()

// linkResolver rewrites relative link destinations so they are relative to
// the note's own address rather than to whatever page ends up showing it.
type linkResolver struct{}

func (linkResolver) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	address, _ := pc.Get(addressKey).(string)
	if address == "" {
		return
	}
	base, err := url.Parse(address)
	if err != nil {
		return
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		dest := string(link.Destination)
		if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "/") {
			return ast.WalkContinue, nil
		}
		ref, err := url.Parse(dest)
		if err != nil || ref.IsAbs() || ref.Host != "" {
			return ast.WalkContinue, nil
		}
		link.Destination = []byte(base.ResolveReference(ref).String())
		return ast.WalkContinue, nil
	})
}
