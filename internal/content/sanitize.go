// Package content turns a resolved page into the markup shown in the
// content area: fetch, convert, sanitize, number sections, and describe
// where to scroll.
package content

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Sanitize drops script, style, and stylesheet link elements from a page
// fragment. The markup is parsed inside a detached <div>; if that fails the
// raw markup is returned.
func Sanitize(markup string) string {
	root, err := parseWrapped(markup)
	if err != nil {
		return markup
	}
	strip(root)
	out, err := innerHTML(root)
	if err != nil {
		return markup
	}
	return out
}

// parseWrapped parses markup as the children of a fresh <div>.
func parseWrapped(markup string) (*html.Node, error) {
	wrapper := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), wrapper)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	for _, n := range nodes {
		wrapper.AppendChild(n)
	}
	return wrapper, nil
}

// strip removes unwanted elements below n.
func strip(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if unwanted(c) {
			n.RemoveChild(c)
		} else {
			strip(c)
		}
		c = next
	}
}

func unwanted(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Script, atom.Style:
		return true
	case atom.Link:
		return hasToken(attr(n, "rel"), "stylesheet")
	}
	return false
}

func innerHTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render fragment: %w", err)
		}
	}
	return buf.String(), nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// hasToken reports whether the space separated list contains tok,
// ignoring case.
func hasToken(list, tok string) bool {
	for _, f := range strings.Fields(list) {
		if strings.EqualFold(f, tok) {
			return true
		}
	}
	return false
}
