// Package render converts lesson Markdown to HTML for the preview server and
// extracts link targets from the rendered output for validation.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	xhtml "golang.org/x/net/html"
)

// LessonRenderer renders lesson bodies to HTML fragments.
type LessonRenderer struct {
	md goldmark.Markdown
}

// NewLessonRenderer creates a renderer with GitHub-flavored Markdown enabled,
// matching how the lessons are written (tables, task lists, strikethrough).
func NewLessonRenderer() *LessonRenderer {
	return &LessonRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
			),
		),
	}
}

// Render converts lesson Markdown to an HTML fragment.
func (r *LessonRenderer) Render(body string) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtractLinks walks rendered HTML and returns the destinations of anchor
// hrefs and image sources, in document order.
func ExtractLinks(rendered []byte) ([]string, error) {
	doc, err := xhtml.Parse(bytes.NewReader(rendered))
	if err != nil {
		return nil, fmt.Errorf("parsing rendered HTML: %w", err)
	}

	var links []string
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode {
			var attr string
			switch n.Data {
			case "a":
				attr = "href"
			case "img":
				attr = "src"
			}
			if attr != "" {
				for _, a := range n.Attr {
					if a.Key == attr && strings.TrimSpace(a.Val) != "" {
						links = append(links, a.Val)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}
