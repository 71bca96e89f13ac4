package parser

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/dgallion1/docshell/internal/doctree"
)

// Parser turns a structured document into a DocTree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.DocTree, error)
}

// Converter turns a fetched page resource into HTML markup.
type Converter interface {
	Convert(data []byte, filename string) (string, error)
}

// Options tunes converter behavior.
type Options struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the converter for a page href. Query strings and
// fragments are ignored when looking at the extension.
func ForFile(href string, opts Options) Converter {
	switch Ext(href) {
	case ".md", ".markdown":
		return NewMarkdownConverter()
	case ".txt":
		return TreeConverter{Parser: &TextParser{}}
	case ".csv":
		return &CSVConverter{}
	case ".pdf":
		return TreeConverter{Parser: &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}}
	case ".docx":
		return TreeConverter{Parser: &DOCXParser{}}
	default:
		return HTMLConverter{}
	}
}

// Ext returns the lowercased extension of an href's path.
func Ext(href string) string {
	p := href
	if u, err := url.Parse(href); err == nil {
		p = u.Path
	}
	return strings.ToLower(path.Ext(p))
}

// BaseName returns the last path element of an href without its extension.
func BaseName(href string) string {
	p := href
	if u, err := url.Parse(href); err == nil {
		p = u.Path
	}
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// HTMLConverter passes markup through; sanitizing happens afterwards.
type HTMLConverter struct{}

func (HTMLConverter) Convert(data []byte, filename string) (string, error) {
	return string(data), nil
}

// TreeConverter renders any Parser's DocTree as HTML.
type TreeConverter struct {
	Parser Parser
}

func (c TreeConverter) Convert(data []byte, filename string) (string, error) {
	tree, err := c.Parser.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", filename, err)
	}
	return tree.HTML(), nil
}
