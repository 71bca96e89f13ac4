// Package manifest holds the two navigation manifests: the Section Tree
// that drives the sidebar and numbering, and the Page Manifest that maps
// modules to page fragments.
package manifest

// SectionTree is the ordered list of modules shown in the sidebar. Order
// determines numbering.
type SectionTree []Module

// Module is a top-level sidebar entry.
type Module struct {
	Title    string    `json:"title"`
	Href     string    `json:"href"`
	Children []Section `json:"children,omitempty"`
}

// Section is a numbered subsection of a module.
type Section struct {
	Title string `json:"title"`
	Href  string `json:"href"`
}

// PageManifest maps module ids to the page fragments they contain.
type PageManifest struct {
	Modules []PageModule `json:"modules"`
}

// PageModule is one module's page list. Href is optional and only used to
// match legacy fragments.
type PageModule struct {
	ID    string `json:"id"`
	Href  string `json:"href,omitempty"`
	Pages []Page `json:"pages"`
}

type Page struct {
	Slug string `json:"slug"`
	Href string `json:"href"`
}

// Set is one loaded pair of manifests. A Set is never mutated after it is
// published to a Store.
type Set struct {
	Sections SectionTree  `json:"sections"`
	Pages    PageManifest `json:"pages"`

	// Candidates that answered, empty when the default was substituted.
	SectionsFrom string `json:"sections_from,omitempty"`
	PagesFrom    string `json:"pages_from,omitempty"`
}

// Empty returns the default Set substituted when nothing could be loaded.
func Empty() *Set {
	return &Set{
		Sections: SectionTree{},
		Pages:    PageManifest{Modules: []PageModule{}},
	}
}
