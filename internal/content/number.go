package content

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docshell/internal/manifest"
	"github.com/dgallion1/docshell/internal/route"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	numberClass   = "sec-num"
	numberedAttr  = "data-numbered"
	numberedValue = "true"
)

// NumberSections prefixes every section heading below root with a
// "M.S " label taken from the section tree. M is the 1-based position of
// the module the fragment names; S is the position of the section whose
// slug matches the heading id "sec-<slug>". Headings already marked
// data-numbered are left alone, so running it twice adds nothing. It
// returns the number of headings marked. A panic while walking the tree
// is returned as an error.
func NumberSections(root *html.Node, f route.Fragment, tree manifest.SectionTree) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("number sections: %v", r)
		}
	}()

	modNum, sections := ordinals(f, tree)
	if modNum == 0 {
		return 0, nil
	}

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && isHeading(node.DataAtom) {
			if numberHeading(node, modNum, sections) {
				n++
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return n, nil
}

// ordinals finds the module's position in the tree and indexes its
// sections by slug. A zero module number means the fragment names no
// module in the tree.
func ordinals(f route.Fragment, tree manifest.SectionTree) (int, map[string]int) {
	if f.ModuleID == "" {
		return 0, nil
	}
	for i, m := range tree {
		if route.Parse(route.FragmentOf(m.Href)).ModuleID != f.ModuleID {
			continue
		}
		sections := make(map[string]int, len(m.Children))
		for j, s := range m.Children {
			if slug := route.Parse(route.FragmentOf(s.Href)).SectionSlug; slug != "" {
				sections[slug] = j + 1
			}
		}
		return i + 1, sections
	}
	return 0, nil
}

func numberHeading(h *html.Node, modNum int, sections map[string]int) bool {
	id := attr(h, "id")
	slug, ok := strings.CutPrefix(id, route.SectionIDPrefix)
	if !ok {
		return false
	}
	secNum := sections[slug]
	if secNum == 0 || attr(h, numberedAttr) != "" {
		return false
	}
	if first := firstElementChild(h); first == nil || !hasToken(attr(first, "class"), numberClass) {
		span := &html.Node{
			Type:     html.ElementNode,
			Data:     "span",
			DataAtom: atom.Span,
			Attr:     []html.Attribute{{Key: "class", Val: numberClass}},
		}
		span.AppendChild(&html.Node{Type: html.TextNode, Data: fmt.Sprintf("%d.%d ", modNum, secNum)})
		h.InsertBefore(span, h.FirstChild)
	}
	setAttr(h, numberedAttr, numberedValue)
	return true
}

func isHeading(a atom.Atom) bool {
	switch a {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func firstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// NumberMarkup runs NumberSections over a markup string. On any failure
// the markup is returned unchanged.
func NumberMarkup(markup string, f route.Fragment, tree manifest.SectionTree) string {
	root, err := parseWrapped(markup)
	if err != nil {
		return markup
	}
	if _, err := NumberSections(root, f, tree); err != nil {
		return markup
	}
	out, err := innerHTML(root)
	if err != nil {
		return markup
	}
	return out
}
