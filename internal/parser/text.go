package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docshell/internal/doctree"
)

// TextParser handles plain text pages.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	tree := &doctree.DocTree{Title: BaseName(filename)}

	// A paragraph whose single line is underlined with "===" or "---" is a
	// heading for the paragraphs that follow it.
	var section *doctree.DocNode
	for _, para := range paragraphs {
		if title, ok := underlinedHeading(para); ok {
			section = &doctree.DocNode{Title: title}
			tree.Children = append(tree.Children, section)
			continue
		}
		if section == nil {
			tree.Children = append(tree.Children, &doctree.DocNode{Text: para})
			continue
		}
		if section.Text != "" {
			section.Text += "\n\n"
		}
		section.Text += para
	}

	return tree, nil
}

func underlinedHeading(para string) (string, bool) {
	title, rule, ok := strings.Cut(para, "\n")
	if !ok || strings.Contains(rule, "\n") {
		return "", false
	}
	title, rule = strings.TrimSpace(title), strings.TrimSpace(rule)
	if title == "" || len(rule) < 3 {
		return "", false
	}
	if strings.Trim(rule, "=") != "" && strings.Trim(rule, "-") != "" {
		return "", false
	}
	return title, true
}
