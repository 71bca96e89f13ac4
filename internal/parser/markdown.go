package parser

import (
	"bytes"
	"fmt"

	"github.com/dgallion1/docshell/internal/doctree"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmparser "github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// MarkdownConverter renders Markdown pages with goldmark. Headings get
// "sec-<slug>" ids unless they carry an explicit {#id} attribute.
type MarkdownConverter struct {
	md goldmark.Markdown
}

func NewMarkdownConverter() *MarkdownConverter {
	return &MarkdownConverter{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
				),
			),
			goldmark.WithParserOptions(
				gmparser.WithAutoHeadingID(),
				gmparser.WithAttribute(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithUnsafe(),
			),
		),
	}
}

func (c *MarkdownConverter) Convert(data []byte, filename string) (string, error) {
	var buf bytes.Buffer
	ctx := gmparser.NewContext(gmparser.WithIDs(newSectionIDs()))
	if err := c.md.Convert(data, &buf, gmparser.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("convert markdown %s: %w", filename, err)
	}
	return buf.String(), nil
}

// sectionIDs generates unique "sec-<slug>" heading ids.
type sectionIDs struct {
	used map[string]bool
}

func newSectionIDs() *sectionIDs {
	return &sectionIDs{used: make(map[string]bool)}
}

func (s *sectionIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	slug := doctree.Slugify(string(value))
	if slug == "" {
		slug = "heading"
	}
	id := "sec-" + slug
	for i := 2; s.used[id]; i++ {
		id = fmt.Sprintf("sec-%s-%d", slug, i)
	}
	s.used[id] = true
	return []byte(id)
}

func (s *sectionIDs) Put(value []byte) {
	s.used[string(value)] = true
}
