// Package sidebar builds the navigation tree shown next to the content and
// tracks the mobile panel state. Everything here is a pure function of the
// section tree and the current fragment; the browser script only attaches
// handlers to the markup.
package sidebar

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/dgallion1/docshell/internal/manifest"
	"github.com/dgallion1/docshell/internal/route"
)

// Item is one sidebar link.
type Item struct {
	Label    string `json:"label"`
	Href     string `json:"href"`
	Fragment string `json:"fragment"`
	Active   bool   `json:"active"`
	Children []Item `json:"children,omitempty"`
}

// Nav is the whole sidebar, in manifest order.
type Nav struct {
	Items []Item `json:"items"`
}

// Build renders the section tree into a Nav and highlights the links that
// match current. Sections are labeled "M.S title".
func Build(tree manifest.SectionTree, current string) Nav {
	nav := Nav{Items: make([]Item, 0, len(tree))}
	for i, m := range tree {
		item := Item{
			Label:    m.Title,
			Href:     m.Href,
			Fragment: route.FragmentOf(m.Href),
		}
		for j, s := range m.Children {
			item.Children = append(item.Children, Item{
				Label:    fmt.Sprintf("%d.%d %s", i+1, j+1, s.Title),
				Href:     s.Href,
				Fragment: route.FragmentOf(s.Href),
			})
		}
		nav.Items = append(nav.Items, item)
	}
	Highlight(&nav, current)
	return nav
}

// Highlight sets Active on every item whose href fragment equals current
// exactly and clears it elsewhere. Both sides are compared percent-decoded,
// so an address-bar fragment matches the href it came from. An empty
// current fragment leaves nothing active.
func Highlight(nav *Nav, current string) {
	current = route.Decode(current)
	var mark func(items []Item)
	mark = func(items []Item) {
		for i := range items {
			items[i].Active = current != "" && strings.Contains(items[i].Href, "#") &&
				route.Decode(route.FragmentOf(items[i].Href)) == current
			mark(items[i].Children)
		}
	}
	mark(nav.Items)
}

// Active returns the hrefs of the active items in document order.
func (n Nav) Active() []string {
	var out []string
	var walk func(items []Item)
	walk = func(items []Item) {
		for _, it := range items {
			if it.Active {
				out = append(out, it.Href)
			}
			walk(it.Children)
		}
	}
	walk(n.Items)
	return out
}

// ActiveHrefs is Build followed by Active.
func ActiveHrefs(tree manifest.SectionTree, current string) []string {
	return Build(tree, current).Active()
}

var navTemplate = template.Must(template.New("nav").Parse(
	`{{define "items"}}{{range .}}<li><a href="{{.Href}}" data-fragment="{{.Fragment}}"{{if .Active}} class="active"{{end}}>{{.Label}}</a>` +
		`{{if .Children}}<ul>{{template "items" .Children}}</ul>{{end}}</li>{{end}}{{end}}` +
		`{{template "items" .Items}}`))

// HTML renders the list items that go inside the sidebar list element.
func (n Nav) HTML() (template.HTML, error) {
	var buf bytes.Buffer
	if err := navTemplate.Execute(&buf, n); err != nil {
		return "", fmt.Errorf("render sidebar: %w", err)
	}
	return template.HTML(buf.String()), nil
}
