package route

import (
	"strings"

	"github.com/dgallion1/docshell/internal/manifest"
)

// ResolveModule finds the module a fragment names, by id or by an href
// ending in "#<id>". It falls back to the first module and returns false
// only when the manifest is empty.
func ResolveModule(pm manifest.PageManifest, f Fragment) (manifest.PageModule, bool) {
	if len(pm.Modules) == 0 {
		return manifest.PageModule{}, false
	}
	if m, ok := FindModule(pm, f.ModuleID); ok {
		return m, true
	}
	return pm.Modules[0], true
}

// FindModule looks a module up without falling back.
func FindModule(pm manifest.PageManifest, id string) (manifest.PageModule, bool) {
	for _, m := range pm.Modules {
		if m.ID == id || (m.Href != "" && hrefNames(m.Href, id)) {
			return m, true
		}
	}
	return manifest.PageModule{}, false
}

// Resolve maps a fragment to the href of the page to show. A missing or
// unknown page slug falls back to the module's first page; the result is
// false when the manifest is empty or the module has no pages.
func Resolve(pm manifest.PageManifest, f Fragment) (string, bool) {
	m, ok := ResolveModule(pm, f)
	if !ok {
		return "", false
	}
	if f.PageSlug != "" {
		for _, p := range m.Pages {
			if p.Slug == f.PageSlug {
				return p.Href, true
			}
		}
	}
	if len(m.Pages) == 0 {
		return "", false
	}
	return m.Pages[0].Href, true
}

// hrefNames reports whether href ends in "#"+id, comparing decoded forms.
func hrefNames(href, id string) bool {
	return strings.HasSuffix(href, "#"+id) || (strings.Contains(href, "#") && Decode(FragmentOf(href)) == id)
}
