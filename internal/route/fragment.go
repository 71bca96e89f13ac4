// Package route decodes URL fragments of the form
// moduleId--pageSlug--sectionSlug and resolves them to page hrefs.
package route

import (
	"net/url"
	"strings"
)

// Delimiter separates fragment components.
const Delimiter = "--"

// Fragment is a decoded navigation target. An empty field means the
// component was absent.
type Fragment struct {
	ModuleID    string `json:"module_id,omitempty"`
	PageSlug    string `json:"page_slug,omitempty"`
	SectionSlug string `json:"section_slug,omitempty"`
}

// Parse decodes a fragment with or without its leading '#'. Components past
// the third are ignored.
func Parse(raw string) Fragment {
	raw = Decode(raw)
	if raw == "" {
		return Fragment{}
	}
	parts := strings.SplitN(raw, Delimiter, 4)
	var f Fragment
	f.ModuleID = parts[0]
	if len(parts) > 1 {
		f.PageSlug = parts[1]
	}
	if len(parts) > 2 {
		f.SectionSlug = parts[2]
	}
	return f
}

// String encodes the fragment without the leading '#'. Trailing absent
// components are dropped; interior ones stay as empty components so the
// result parses back to the same Fragment.
func (f Fragment) String() string {
	parts := []string{f.ModuleID, f.PageSlug, f.SectionSlug}
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, Delimiter)
}

// SectionID is the element id a section heading carries, or "" when no
// section was requested.
func (f Fragment) SectionID() string {
	if f.SectionSlug == "" {
		return ""
	}
	return SectionIDPrefix + f.SectionSlug
}

// SectionIDPrefix marks heading ids that take part in numbering.
const SectionIDPrefix = "sec-"

// Decode strips a leading '#' and percent-decodes the rest once, the way a
// browser's location.hash arrives. Malformed escapes are kept as written.
func Decode(raw string) string {
	raw = strings.TrimPrefix(raw, "#")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		return unescaped
	}
	return raw
}

// FragmentOf returns the fragment of an href as written, without the '#',
// or "" when the href has none. Pass it through Parse or Decode before
// comparing it with a fragment from the address bar.
func FragmentOf(href string) string {
	i := strings.IndexByte(href, '#')
	if i < 0 {
		return ""
	}
	return href[i+1:]
}
