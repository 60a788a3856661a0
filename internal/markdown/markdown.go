// Package markdown renders the short Markdown snippets that can be configured
// for the generated page.
package markdown

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	ferrors "git.home.luguber.info/inful/overfastsite/internal/foundation/errors"
)

// Options controls how Markdown is converted.
type Options struct {
	// GFM enables tables, strikethrough, task lists and autolinks.
	GFM bool
}

func newEngine(opts Options) goldmark.Markdown {
	var exts []goldmark.Extender
	if opts.GFM {
		exts = append(exts, extension.GFM)
	}
	// Raw HTML is dropped and dangerous link schemes are filtered (goldmark defaults).
	return goldmark.New(goldmark.WithExtensions(exts...))
}

// Render converts body to HTML. Blank input renders to "".
func Render(body string, opts Options) (template.HTML, error) {
	if strings.TrimSpace(body) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := newEngine(opts).Convert([]byte(body), &buf); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryRender, "render markdown").Build()
	}
	return template.HTML(buf.String()), nil // #nosec G203 -- goldmark output with raw HTML disabled
}

// Links returns the destinations of inline links and images in body, in
// document order.
func Links(body string, opts Options) []string {
	src := []byte(body)
	root := newEngine(opts).Parser().Parse(text.NewReader(src), parser.WithContext(parser.NewContext()))

	var links []string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, string(node.URL(src)))
		case *gmast.Image:
			links = append(links, string(node.Destination))
		case *gmast.Link:
			links = append(links, string(node.Destination))
		}
		return gmast.WalkContinue, nil
	})
	return links
}
