package doctree

import (
	"fmt"
	"html"
	"strings"
	"unicode"
)

// DocTree is the root of a parsed page.
type DocTree struct {
	Title    string     // Page title (from metadata or filename)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the page tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	ID       string     // Element id of the heading, when known
	Text     string     // Text content of this node (may be empty for container nodes)
	Page     int        // Source page/line (0 if N/A)
	Children []*DocNode // Subsections
}

// IDs returns every heading id in document order.
func (t *DocTree) IDs() []string {
	var ids []string
	var walk func([]*DocNode)
	walk = func(nodes []*DocNode) {
		for _, n := range nodes {
			if n.ID != "" {
				ids = append(ids, n.ID)
			}
			walk(n.Children)
		}
	}
	walk(t.Children)
	return ids
}

// HTML renders the tree as a page fragment. Top-level headings become h2;
// headings without an id get "sec-<slug>" so numbering can find them.
func (t *DocTree) HTML() string {
	var b strings.Builder
	used := make(map[string]int)
	var render func(nodes []*DocNode, level int)
	render = func(nodes []*DocNode, level int) {
		for _, n := range nodes {
			if n.Title != "" {
				id := n.ID
				if id == "" {
					id = uniqueID("sec-"+Slugify(n.Title), used)
				}
				lvl := min(level, 6)
				fmt.Fprintf(&b, "<h%d id=\"%s\">%s</h%d>\n", lvl, html.EscapeString(id), html.EscapeString(n.Title), lvl)
			}
			writeParagraphs(&b, n.Text)
			render(n.Children, level+1)
		}
	}
	render(t.Children, 2)
	return b.String()
}

func writeParagraphs(b *strings.Builder, text string) {
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i, l := range lines {
			lines[i] = html.EscapeString(l)
		}
		b.WriteString("<p>" + strings.Join(lines, "<br>\n") + "</p>\n")
	}
}

func uniqueID(id string, used map[string]int) string {
	n := used[id]
	used[id] = n + 1
	if n == 0 {
		return id
	}
	return fmt.Sprintf("%s-%d", id, n+1)
}

// Slugify lowercases s and joins its letter and digit runs with '-'.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}
