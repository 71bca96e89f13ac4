package route

import (
	"fmt"

	"github.com/dgallion1/docshell/internal/manifest"
)

// IssueKind classifies a manifest inconsistency.
type IssueKind string

const (
	IssueUnknownModule    IssueKind = "unknown_module"
	IssueUnknownPage      IssueKind = "unknown_page"
	IssueMissingSection   IssueKind = "missing_section_slug"
	IssueEmptyModule      IssueKind = "empty_module"
	IssueDuplicateModule  IssueKind = "duplicate_module"
	IssueDuplicatePage    IssueKind = "duplicate_page"
	IssueDuplicateSection IssueKind = "duplicate_section"

	// Page-level kinds, reported when page content is checked.
	IssueUnreachablePage IssueKind = "unreachable_page"
	IssueMissingHeading  IssueKind = "missing_heading"
)

// Issue is one inconsistency between the section tree and the page manifest.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Href    string    `json:"href,omitempty"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Kind, i.Message)
}

// Validate cross-checks the two manifests. Navigation never depends on the
// result: mismatches still degrade to the first module or page at runtime.
func Validate(set *manifest.Set) []Issue {
	var issues []Issue
	add := func(kind IssueKind, href, format string, args ...any) {
		issues = append(issues, Issue{Kind: kind, Href: href, Message: fmt.Sprintf(format, args...)})
	}

	seenModules := make(map[string]bool)
	for _, m := range set.Pages.Modules {
		if seenModules[m.ID] {
			add(IssueDuplicateModule, m.Href, "module id %q appears more than once in the page manifest", m.ID)
		}
		seenModules[m.ID] = true

		if len(m.Pages) == 0 {
			add(IssueEmptyModule, m.Href, "module %q has no pages", m.ID)
		}
		seenPages := make(map[string]bool)
		for _, p := range m.Pages {
			if seenPages[p.Slug] {
				add(IssueDuplicatePage, p.Href, "page slug %q appears more than once in module %q", p.Slug, m.ID)
			}
			seenPages[p.Slug] = true
		}
	}

	seenTreeModules := make(map[string]bool)
	for _, mod := range set.Sections {
		f := Parse(FragmentOf(mod.Href))
		if seenTreeModules[f.ModuleID] {
			add(IssueDuplicateModule, mod.Href, "module %q appears more than once in the section tree", f.ModuleID)
		}
		seenTreeModules[f.ModuleID] = true

		pm, ok := FindModule(set.Pages, f.ModuleID)
		if !ok {
			add(IssueUnknownModule, mod.Href, "section tree module %q (%s) is not in the page manifest", mod.Title, f.ModuleID)
		}

		seenSections := make(map[string]bool)
		for _, sec := range mod.Children {
			sf := Parse(FragmentOf(sec.Href))
			if sf.SectionSlug == "" {
				add(IssueMissingSection, sec.Href, "section %q has no section slug and cannot be numbered", sec.Title)
			} else if seenSections[sf.SectionSlug] {
				add(IssueDuplicateSection, sec.Href, "section slug %q appears more than once in module %q", sf.SectionSlug, f.ModuleID)
			}
			seenSections[sf.SectionSlug] = true

			if sf.ModuleID != f.ModuleID {
				add(IssueUnknownModule, sec.Href, "section %q points at module %q, not its parent %q", sec.Title, sf.ModuleID, f.ModuleID)
			}
			if ok && sf.PageSlug != "" && !hasPage(pm, sf.PageSlug) {
				add(IssueUnknownPage, sec.Href, "section %q points at page %q, which module %q does not list", sec.Title, sf.PageSlug, pm.ID)
			}
		}
	}
	return issues
}

func hasPage(m manifest.PageModule, slug string) bool {
	for _, p := range m.Pages {
		if p.Slug == slug {
			return true
		}
	}
	return false
}
